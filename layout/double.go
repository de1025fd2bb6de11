package layout

import "github.com/coinflip-gg/bracketry"

// combineRoundNumber maps winner-bracket round r (1-based, including the WB
// final) to the loser-bracket round that receives its losers: round 1's
// losers enter LB round 1, and every later WB round r drops into LB round
// 2(r-1), so from LB round 2 on the combine rounds are two apart with one
// pure-consolidation round between them (§4.2.2's "skip-1" pattern).
func combineRoundNumber(r int) int {
	if r == 1 {
		return 1
	}
	return 2 * (r - 1)
}

// GenerateDoubleElimination builds Winners, Losers and (unless
// GrandFinal == GrandFinalNone) Final groups.
func GenerateDoubleElimination(participantIDs []int64, settings bracketry.StageSettings) (*Generated, error) {
	if len(participantIDs) < 2 {
		return nil, bracketry.NewError(bracketry.ErrInvalidInput, "double elimination requires at least 2 participants")
	}

	size := settings.Size
	if size < len(participantIDs) {
		size = nextPow2(len(participantIDs))
	}
	k := log2(size)

	slots := seedSlots(participantIDs, size, settings)
	wb := buildEliminationGroup(bracketry.GroupWinners, slots, k, settings.MatchesChildCount)

	lb := buildLosersBracket(size, k, settings.MatchesChildCount)
	fillLBFromWB(&wb, &lb, k)
	propagateWinners(&lb)
	// a second pass: LB-internal propagation may have completed matches
	// that themselves feed later combine rounds' LB-side opponent, which
	// propagateWinners already chains round-by-round, so one pass suffices.

	gen := &Generated{Groups: []GroupSpec{wb}}
	if k >= 2 {
		gen.Groups = append(gen.Groups, lb)
	}

	grandFinal := settings.GrandFinal
	if grandFinal == "" {
		grandFinal = bracketry.GrandFinalSimple
	}
	if grandFinal != bracketry.GrandFinalNone {
		settings.GrandFinal = grandFinal
		gf := buildGrandFinal(&wb, &lb, k, settings)
		gen.Groups = append(gen.Groups, gf)
	}

	return gen, nil
}

// buildLosersBracket constructs the empty-opponent skeleton of the loser
// bracket: round 1 pairs WB round-1 losers with each other; each later
// combine round pairs the previous LB round's winners with the next WB
// round's losers; the rounds in between are pure consolidation (halving).
// WB-sourced slots are tagged with a negative Position (the WB match
// number, negated) so fillLBFromWB and the LB-internal propagateWinners
// pass never collide when both address the same round.
func buildLosersBracket(size, k, childCount int) GroupSpec {
	lb := GroupSpec{Number: bracketry.GroupLosers}
	if k < 2 {
		return lb
	}

	lbRoundNum := 0
	prevCount := 0

	for r := 1; r <= k; r++ {
		wbLoserCount := size / (1 << r)
		if wbLoserCount == 0 {
			break
		}

		if r == 1 {
			lbRoundNum = 1
			matches := wbLoserCount / 2
			round := RoundSpec{Number: lbRoundNum}
			for i := 0; i < matches; i++ {
				o1 := bracketry.PositionOpponent(-(2*i + 1))
				o2 := bracketry.PositionOpponent(-(2*i + 2))
				round.Matches = append(round.Matches, newMatch(i+1, o1, o2, childCount))
			}
			lb.Rounds = append(lb.Rounds, round)
			prevCount = matches
			continue
		}

		for prevCount > wbLoserCount {
			lbRoundNum++
			matches := prevCount / 2
			round := RoundSpec{Number: lbRoundNum}
			for i := 0; i < matches; i++ {
				o1 := bracketry.PositionOpponent(2*i + 1)
				o2 := bracketry.PositionOpponent(2*i + 2)
				round.Matches = append(round.Matches, newMatch(i+1, o1, o2, childCount))
			}
			lb.Rounds = append(lb.Rounds, round)
			prevCount = matches
		}

		lbRoundNum++
		round := RoundSpec{Number: lbRoundNum}
		for i := 0; i < wbLoserCount; i++ {
			o1 := bracketry.PositionOpponent(i + 1)       // previous LB round survivor
			o2 := bracketry.PositionOpponent(-(i + 1))     // WB round r loser
			round.Matches = append(round.Matches, newMatch(i+1, o1, o2, childCount))
		}
		lb.Rounds = append(lb.Rounds, round)
		prevCount = wbLoserCount
	}

	return lb
}

// fillLBFromWB resolves any LB slot tagged with a negative Position (a WB
// loser reference) whose source WB match already completed at generation
// time (only possible via BYE auto-advance).
func fillLBFromWB(wb, lb *GroupSpec, k int) {
	for r := 1; r <= k; r++ {
		wbRound := wb.round(r)
		if wbRound == nil {
			continue
		}
		lbRound := lb.round(combineRoundNumber(r))
		if lbRound == nil {
			continue
		}
		for _, wm := range wbRound.Matches {
			if wm.Status != bracketry.StatusCompleted {
				continue
			}
			resolved := bracketry.EmptyOpponent()
			if loser, ok := bracketry.Loser(wm.Opponent1, wm.Opponent2); ok {
				resolved = bracketry.ParticipantOpponent(loser)
			}
			for i := range lbRound.Matches {
				fillPosition(&lbRound.Matches[i], -wm.Number, resolved)
			}
		}
	}
}

// buildGrandFinal creates the Final group: a single match pairing the WB
// and LB champions, plus (for GrandFinalDouble) a second, initially
// Archived "reset" match the engine activates only if the LB-path finalist
// wins the first.
func buildGrandFinal(wb, lb *GroupSpec, k int, settings bracketry.StageSettings) GroupSpec {
	gf := GroupSpec{Number: bracketry.GroupFinal}

	wbFinal := wb.round(k)
	var wbOpp bracketry.Opponent = bracketry.PositionOpponent(1)
	var lbOpp bracketry.Opponent = bracketry.PositionOpponent(1)

	if wbFinal != nil && len(wbFinal.Matches) == 1 {
		m := wbFinal.Matches[0]
		if winner, ok := bracketry.Winner(m.Opponent1, m.Opponent2); ok {
			wbOpp = bracketry.ParticipantOpponent(winner)
		}
	}

	if k < 2 {
		// No loser bracket: the GF's second finalist is directly the
		// WB round-1 match's loser.
		if wbFinal != nil && len(wbFinal.Matches) == 1 {
			m := wbFinal.Matches[0]
			if loser, ok := bracketry.Loser(m.Opponent1, m.Opponent2); ok {
				lbOpp = bracketry.ParticipantOpponent(loser)
			}
		}
	} else if lbFinal := lb.round(len(lb.Rounds)); lbFinal != nil && len(lbFinal.Matches) == 1 {
		m := lbFinal.Matches[0]
		if winner, ok := bracketry.Winner(m.Opponent1, m.Opponent2); ok {
			lbOpp = bracketry.ParticipantOpponent(winner)
		}
	}

	game1 := newMatch(1, wbOpp, lbOpp, settings.MatchesChildCount)
	gf.Rounds = append(gf.Rounds, RoundSpec{Number: 1, Matches: []MatchSpec{game1}})

	if settings.GrandFinal == bracketry.GrandFinalDouble {
		reset := MatchSpec{
			Number:     1,
			Opponent1:  bracketry.PositionOpponent(1),
			Opponent2:  bracketry.PositionOpponent(2),
			ChildCount: settings.MatchesChildCount,
			Status:     bracketry.StatusArchived,
		}
		gf.Rounds = append(gf.Rounds, RoundSpec{Number: 2, Matches: []MatchSpec{reset}})
	}

	return gf
}
