package layout

import (
	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/seeding"
)

// seat is one bracket slot before pairing: either a real participant or a BYE.
type seat struct {
	id  int64
	bye bool
}

// seedSlots pads participantIDs to size with BYEs (packed last, per §4.2
// step 1) and applies the configured seed ordering, or settings.ManualOrdering
// when present (§4.1 supplement: manual overrides skip automatic ordering).
func seedSlots(participantIDs []int64, size int, settings bracketry.StageSettings) []seat {
	if len(settings.ManualOrdering) > 0 {
		return manualSeedSlots(participantIDs, size, settings.ManualOrdering)
	}

	slots := make([]seat, size)
	for i := 0; i < size; i++ {
		if i < len(participantIDs) {
			slots[i] = seat{id: participantIDs[i]}
		} else {
			slots[i] = seat{bye: true}
		}
	}

	method := seeding.Method(settings.SeedOrdering)
	if method == "" {
		method = seeding.InnerOuter
	}
	ordered := seeding.Order(method, slots)

	if settings.BalanceByes {
		ordered = balanceByes(ordered)
	}
	return ordered
}

// manualSeedSlots flattens a caller-supplied round-1 pairing list
// (ManualOrdering[i] = [slotA, slotB], 0-based indices into participantIDs,
// -1 meaning BYE) directly into bracket slots, bypassing Order entirely.
func manualSeedSlots(participantIDs []int64, size int, ordering [][]int) []seat {
	slots := make([]seat, size)
	for i, pair := range ordering {
		for j := 0; j < 2 && j < len(pair); j++ {
			idx := pair[j]
			slotIdx := i*2 + j
			if slotIdx >= size {
				continue
			}
			if idx < 0 || idx >= len(participantIDs) {
				slots[slotIdx] = seat{bye: true}
			} else {
				slots[slotIdx] = seat{id: participantIDs[idx]}
			}
		}
	}
	return slots
}

// balanceByes spreads BYE seats one-per-match across as many round-1 matches
// as possible instead of letting the seed ordering leave several matches
// with both slots empty. It preserves the relative order of real entrants.
func balanceByes(slots []seat) []seat {
	var reals, byes []seat
	for _, s := range slots {
		if s.bye {
			byes = append(byes, s)
		} else {
			reals = append(reals, s)
		}
	}
	if len(byes) == 0 || len(byes) <= len(slots)/2 && countDoubleByeMatches(slots) == 0 {
		return slots
	}

	out := make([]seat, 0, len(slots))
	ri := 0
	matches := len(slots) / 2
	for m := 0; m < matches; m++ {
		left, matchesLeft := len(reals)-ri, matches-m
		switch {
		case left == 0:
			out = append(out, seat{bye: true}, seat{bye: true})
		case left-1 <= 2*(matchesLeft-1):
			out = append(out, reals[ri], seat{bye: true})
			ri++
		default:
			out = append(out, reals[ri], reals[ri+1])
			ri += 2
		}
	}
	// a match only takes a BYE while the remaining entrants still fit into
	// the remaining matches, so every real entrant is placed.
	return out
}

func countDoubleByeMatches(slots []seat) int {
	n := 0
	for i := 0; i+1 < len(slots); i += 2 {
		if slots[i].bye && slots[i+1].bye {
			n++
		}
	}
	return n
}

func seatOpponent(s seat) bracketry.Opponent {
	if s.bye {
		return bracketry.EmptyOpponent()
	}
	return bracketry.ParticipantOpponent(s.id)
}

// GenerateSingleElimination builds a single-elimination Main group (and,
// when requested, a Consolation group for the 3rd-place match) from an
// already seed-ordered participant list.
func GenerateSingleElimination(participantIDs []int64, settings bracketry.StageSettings) (*Generated, error) {
	if len(participantIDs) < 2 {
		return nil, bracketry.NewError(bracketry.ErrInvalidInput, "single elimination requires at least 2 participants")
	}

	size := settings.Size
	if size < len(participantIDs) {
		size = nextPow2(len(participantIDs))
	}
	totalRounds := log2(size)

	slots := seedSlots(participantIDs, size, settings)
	main := buildEliminationGroup(bracketry.GroupMain, slots, totalRounds, settings.MatchesChildCount)

	gen := &Generated{Groups: []GroupSpec{main}}

	if settings.ConsolationFinal && totalRounds >= 2 {
		consolation := buildConsolationFinal(&main, totalRounds, settings.MatchesChildCount)
		gen.Groups = append(gen.Groups, consolation)
	}

	return gen, nil
}

// buildEliminationGroup generates round 1 from slots and every subsequent
// round as Position placeholders (one per pair of predecessor matches),
// then cascades any generation-time BYE resolutions forward. Shared by
// single elimination's Main group and double elimination's Winners group.
func buildEliminationGroup(groupNumber int, slots []seat, totalRounds, childCount int) GroupSpec {
	group := GroupSpec{Number: groupNumber}

	round1 := RoundSpec{Number: 1}
	for i := 0; i < len(slots)/2; i++ {
		o1 := seatOpponent(slots[2*i])
		o2 := seatOpponent(slots[2*i+1])
		round1.Matches = append(round1.Matches, newMatch(i+1, o1, o2, childCount))
	}
	group.Rounds = append(group.Rounds, round1)

	for r := 2; r <= totalRounds; r++ {
		prevCount := len(group.Rounds[r-2].Matches)
		round := RoundSpec{Number: r}
		for i := 0; i < prevCount/2; i++ {
			o1 := bracketry.PositionOpponent(2*i + 1)
			o2 := bracketry.PositionOpponent(2*i + 2)
			round.Matches = append(round.Matches, newMatch(i+1, o1, o2, childCount))
		}
		group.Rounds = append(group.Rounds, round)
	}

	propagateWinners(&group)
	return group
}

// propagateWinners cascades BYE auto-advances forward through the bracket:
// once a match resolves (at generation time, only possible via a BYE), its
// winner (or, for a double BYE, another empty slot) fills the Position
// placeholder of the round it feeds.
func propagateWinners(group *GroupSpec) {
	for r := 0; r < len(group.Rounds)-1; r++ {
		round := &group.Rounds[r]
		next := &group.Rounds[r+1]
		for i := range round.Matches {
			m := &round.Matches[i]
			if m.Status != bracketry.StatusCompleted {
				continue
			}
			resolved := bracketry.EmptyOpponent()
			if winner, ok := bracketry.Winner(m.Opponent1, m.Opponent2); ok {
				resolved = bracketry.ParticipantOpponent(winner)
			}
			for j := range next.Matches {
				fillPosition(&next.Matches[j], m.Number, resolved)
			}
		}
	}
}

func buildConsolationFinal(main *GroupSpec, totalRounds, childCount int) GroupSpec {
	semis := main.round(totalRounds - 1)
	consolation := GroupSpec{
		Number: bracketry.GroupConsolation,
		Rounds: []RoundSpec{{
			Number: 1,
			Matches: []MatchSpec{
				newMatch(1, bracketry.PositionOpponent(1), bracketry.PositionOpponent(2), childCount),
			},
		}},
	}
	if semis == nil {
		return consolation
	}
	match := &consolation.Rounds[0].Matches[0]
	for _, sm := range semis.Matches {
		if sm.Status != bracketry.StatusCompleted {
			continue
		}
		resolved := bracketry.EmptyOpponent()
		if loser, ok := bracketry.Loser(sm.Opponent1, sm.Opponent2); ok {
			resolved = bracketry.ParticipantOpponent(loser)
		}
		fillPosition(match, sm.Number, resolved)
	}
	return consolation
}
