package scoring

import (
	apperrors "github.com/adawatch/drep-radar/internal/errors"
	"github.com/adawatch/drep-radar/internal/types"
)

// Structural validation for engine inputs. Missing optional fields are
// always fine; these reject records that are the wrong shape entirely,
// which indicates a bug upstream of the ingestion layer's own validation.

// ValidateProposal rejects proposals without an identity.
func ValidateProposal(p types.RawProposal) error {
	if p.TxHash == "" {
		return apperrors.NewValidationError("proposal missing transaction hash")
	}
	if p.Index < 0 {
		return apperrors.NewValidationError("proposal index must be non-negative")
	}
	return nil
}

// ValidateVote rejects votes without an identity or with an unknown
// ballot choice.
func ValidateVote(v types.DRepVote) error {
	if v.DRepID == "" {
		return apperrors.NewValidationError("vote missing DRep id")
	}
	if v.ProposalTxHash == "" {
		return apperrors.NewValidationError("vote missing proposal transaction hash")
	}
	if _, ok := types.ParseVoteChoice(string(v.Choice)); !ok {
		return apperrors.NewValidationError("unknown vote choice", string(v.Choice))
	}
	return nil
}

// ValidatePollVote rejects poll responses without an identity or choice.
func ValidatePollVote(pv types.PollVote) error {
	if pv.DelegatorID == "" {
		return apperrors.NewValidationError("poll vote missing delegator id")
	}
	if pv.ProposalTxHash == "" {
		return apperrors.NewValidationError("poll vote missing proposal transaction hash")
	}
	if _, ok := types.ParseVoteChoice(string(pv.Choice)); !ok {
		return apperrors.NewValidationError("unknown poll vote choice", string(pv.Choice))
	}
	return nil
}
