package scoring

import (
	"time"

	"github.com/adawatch/drep-radar/internal/types"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func adaToLovelace(ada uint64) uint64 {
	return ada * types.LovelacePerAda
}

func treasuryProposal(txHash string, withdrawalsAda ...uint64) types.RawProposal {
	p := types.RawProposal{
		TxHash:        txHash,
		Index:         0,
		Type:          types.ProposalTreasuryWithdrawals,
		ProposedEpoch: 540,
		BlockTime:     testTime,
	}
	for _, ada := range withdrawalsAda {
		p.WithdrawalsLovelace = append(p.WithdrawalsLovelace, adaToLovelace(ada))
	}
	return p
}

func proposalOfType(txHash string, typ types.ProposalType) types.RawProposal {
	return types.RawProposal{
		TxHash:        txHash,
		Index:         0,
		Type:          typ,
		ProposedEpoch: 540,
		BlockTime:     testTime,
	}
}

func voteOn(drepID, txHash string, choice types.VoteChoice, withRationale bool) types.DRepVote {
	v := types.DRepVote{
		DRepID:         drepID,
		ProposalTxHash: txHash,
		ProposalIndex:  0,
		VoteTxHash:     "vote-" + txHash,
		Choice:         choice,
		BlockTime:      testTime,
	}
	if withRationale {
		v.Rationale = &types.VoteRationale{
			URL:  "ipfs://rationale/" + txHash,
			Hash: "deadbeef",
		}
	}
	return v
}

// matchedAgainst classifies the proposals and joins the votes to them.
func matchedAgainst(votes []types.DRepVote, proposals ...types.RawProposal) []MatchedVote {
	return MatchVotes(votes, ClassifyProposals(proposals))
}
