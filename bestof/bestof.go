// Package bestof implements C5: aggregating a match's child MatchGames into
// the parent match's opponents. A parent with ChildCount > 0 never accepts
// a direct score/result update (engine.Validate already rejects that with
// ErrUseMatchGameUpdate) — its outcome only ever derives from its games.
package bestof

import (
	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/internal/utils"
)

// Threshold is the number of game wins needed to take the series: the
// smallest majority of ChildCount games, ⌈(ChildCount+1)/2⌉.
func Threshold(childCount int) int {
	return childCount/2 + 1
}

// ValidateChildCount rejects series lengths that can play out every game
// without either side reaching the win threshold (only possible when
// ChildCount is even and the games split exactly in half). Best-of series
// are conventionally odd for exactly this reason; this is enforced at
// create time rather than discovered mid-series.
func ValidateChildCount(childCount int) error {
	if childCount < 1 {
		return bracketry.NewError(bracketry.ErrInvalidInput, "match games child count must be at least 1")
	}
	if childCount%2 == 0 {
		return bracketry.NewError(bracketry.ErrInvalidInput, "match games child count should be odd so the series always has a winner")
	}
	return nil
}

// Outcome is the parent-level result of aggregating a series of games.
type Outcome struct {
	Opponent1Wins int
	Opponent2Wins int
	Decided       bool
	Winner        bracketry.Slot // meaningful only when Decided
}

// Aggregate tallies completed games and reports whether the series has been
// decided under Threshold(childCount).
func Aggregate(childCount int, games []bracketry.MatchGame) Outcome {
	var out Outcome
	for _, g := range games {
		if g.Status != bracketry.StatusCompleted {
			continue
		}
		if g.Opponent1.Won() {
			out.Opponent1Wins++
		}
		if g.Opponent2.Won() {
			out.Opponent2Wins++
		}
	}
	threshold := Threshold(childCount)
	if out.Opponent1Wins >= threshold {
		out.Decided = true
		out.Winner = bracketry.SlotOpponent1
	} else if out.Opponent2Wins >= threshold {
		out.Decided = true
		out.Winner = bracketry.SlotOpponent2
	}
	return out
}

// ApplyOutcome projects an Outcome's win tallies onto the parent match's
// opponent scores (§3: score always mirrors games won) and, once decided,
// writes the win/loss result too, then reclassifies status.
func ApplyOutcome(match *bracketry.Match, outcome Outcome) {
	o1, o2 := match.Opponent1, match.Opponent2
	o1.Score, o2.Score = &outcome.Opponent1Wins, &outcome.Opponent2Wins

	if outcome.Decided {
		win, loss := utils.Ptr(bracketry.ResultWin), utils.Ptr(bracketry.ResultLoss)
		if outcome.Winner == bracketry.SlotOpponent1 {
			o1.Result, o2.Result = win, loss
		} else {
			o2.Result, o1.Result = win, loss
		}
	} else {
		o1.Result, o1.Forfeit = nil, false
		o2.Result, o2.Forfeit = nil, false
	}

	match.Opponent1, match.Opponent2 = o1, o2
	match.Status = bracketry.ClassifyStatus(match.Opponent1, match.Opponent2)
}

// GamesToArchive returns the ids of not-yet-completed games that should be
// archived because the series was already decided by earlier games (§4's
// early-completion rule: a best-of-5 finishing 3-0 never plays games 4-5).
func GamesToArchive(games []bracketry.MatchGame) []int64 {
	var out []int64
	for _, g := range games {
		if g.Status != bracketry.StatusCompleted && g.Status != bracketry.StatusArchived {
			out = append(out, g.ID)
		}
	}
	return out
}
