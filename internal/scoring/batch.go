package scoring

import (
	"sync"
	"time"

	"github.com/adawatch/drep-radar/internal/types"
)

// ComputeScorecards scores the whole DRep population for one epoch.
// Every DRep is an independent pure computation, so the work fans out
// across a bounded worker pool; results land at the same index as their
// input DRep.
func ComputeScorecards(dreps []types.EnrichedDRep, votesByDRep map[string][]types.DRepVote, proposals []types.RawProposal, selected []types.PreferenceKey, epoch, workers int, now time.Time) []Scorecard {
	if workers <= 0 {
		workers = 4
	}

	classified := ClassifyProposals(proposals)
	cards := make([]Scorecard, len(dreps))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range dreps {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			drep := dreps[i]
			matched := MatchVotes(votesByDRep[drep.ID], classified)
			cards[i] = BuildScorecard(drep, matched, selected, epoch, now)
		}(i)
	}
	wg.Wait()

	return cards
}
