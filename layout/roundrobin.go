package layout

import (
	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/seeding"
)

// GenerateRoundRobin partitions participantIDs into settings.GroupCount
// pools (or a single pool) and schedules each with the circle method, once
// for RoundRobinSimple or twice (return fixtures) for RoundRobinDouble.
func GenerateRoundRobin(participantIDs []int64, settings bracketry.StageSettings) (*Generated, error) {
	if len(participantIDs) < 2 {
		return nil, bracketry.NewError(bracketry.ErrInvalidInput, "round robin requires at least 2 participants")
	}

	groupCount := settings.GroupCount
	if groupCount < 1 {
		groupCount = 1
	}

	method := seeding.GroupMethod(settings.SeedOrdering)
	if method == "" {
		method = seeding.GroupsSnake
	}
	pools := seeding.Groups(method, participantIDs, groupCount)

	gen := &Generated{}
	for gi, pool := range pools {
		if len(pool) == 0 {
			continue
		}
		group := GroupSpec{Number: bracketry.RoundRobinGroupBase + gi}
		group.Rounds = scheduleCircle(pool, settings)
		gen.Groups = append(gen.Groups, group)
	}
	return gen, nil
}

// scheduleCircle runs the standard round-robin circle method: fix entrant 0,
// rotate the rest one position each round, for n-1 rounds (n padded to even
// with a BYE that simply skips a fixture rather than generating a match).
// RoundRobinDouble repeats the schedule with opponents swapped.
func scheduleCircle(pool []int64, settings bracketry.StageSettings) []RoundSpec {
	n := len(pool)
	bye := n%2 != 0
	if bye {
		n++
	}

	entrants := make([]int64, n)
	copy(entrants, pool)
	byeSlot := int64(-1)
	if bye {
		entrants[n-1] = byeSlot
	}

	rounds := n - 1
	var out []RoundSpec
	roundNum := 0

	playSchedule := func(swap bool) {
		fixed := entrants[0]
		rest := append([]int64(nil), entrants[1:]...)
		for r := 0; r < rounds; r++ {
			roundNum++
			round := RoundSpec{Number: roundNum}
			matchNum := 0
			cur := append([]int64{fixed}, rest...)
			for i := 0; i < n/2; i++ {
				a, b := cur[i], cur[n-1-i]
				if a == byeSlot || b == byeSlot {
					continue
				}
				matchNum++
				o1, o2 := bracketry.ParticipantOpponent(a), bracketry.ParticipantOpponent(b)
				if swap {
					o1, o2 = o2, o1
				}
				round.Matches = append(round.Matches, newMatch(matchNum, o1, o2, settings.MatchesChildCount))
			}
			out = append(out, round)
			// rotate: last element of rest moves to front
			last := rest[len(rest)-1]
			rest = append([]int64{last}, rest[:len(rest)-1]...)
		}
	}

	playSchedule(false)
	if settings.RoundRobinMode == bracketry.RoundRobinDouble {
		playSchedule(true)
	}
	return out
}
