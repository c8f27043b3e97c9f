package reweight

import (
	"errors"

	"github.com/dkainer/iRF-LOOP/engine"
)

var ErrEmptyHistory = errors.New("no completed rounds in history")

// History is the ordered record of one reweighting run. With SaveAll the entry
// for every completed round is retained; otherwise only the best fitting round
// survives, though Rounds still reports how many completed.
type History struct {
	entries []*engine.Result
	rounds  []int

	bestIdx   int
	completed int
	saveAll   bool
}

func newHistory(saveAll bool) *History {
	return &History{bestIdx: -1, saveAll: saveAll}
}

// add records a completed round. When history is not retained, only the entry
// improving on the best fit quality so far replaces the stored one, so ties
// keep the earliest round.
func (h *History) add(round int, res *engine.Result) {
	h.completed++
	if h.saveAll {
		h.entries = append(h.entries, res)
		h.rounds = append(h.rounds, round)
		if h.bestIdx < 0 || res.FitQuality > h.entries[h.bestIdx].FitQuality {
			h.bestIdx = len(h.entries) - 1
		}
		return
	}

	if len(h.entries) == 0 || res.FitQuality > h.entries[0].FitQuality {
		h.entries = []*engine.Result{res}
		h.rounds = []int{round}
		h.bestIdx = 0
	}
}

// Rounds returns the number of completed rounds.
func (h *History) Rounds() int {
	if h == nil {
		return 0
	}
	return h.completed
}

// Results returns the retained round results in round order.
func (h *History) Results() []*engine.Result {
	if h == nil {
		return nil
	}
	out := make([]*engine.Result, len(h.entries))
	copy(out, h.entries)
	return out
}

// Best returns the retained result with the highest fit quality and the round
// number that produced it. Ties resolve to the earliest round.
func (h *History) Best() (*engine.Result, int, error) {
	if h == nil || h.bestIdx < 0 {
		return nil, 0, ErrEmptyHistory
	}
	return h.entries[h.bestIdx], h.rounds[h.bestIdx], nil
}
