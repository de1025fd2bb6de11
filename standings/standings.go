// Package standings implements C6: deriving final (or in-progress) rankings
// and a few lookup helpers from a stage's generated matches. It never
// mutates a match — it only reads the bracketry.Match/Group/Round shape the
// other components produced.
package standings

import (
	"sort"

	"github.com/coinflip-gg/bracketry"
)

// Entry is one participant's placement.
type Entry struct {
	ParticipantID int64
	Rank          int
}

// MatchRef locates a match the way the rest of the package addresses it:
// by its stage-type-specific group number, round number and per-round
// match number (the same triple graph.Edge uses).
type MatchRef struct {
	Group, Round, Number int
	Match                bracketry.Match
}

// SingleElimination ranks by round of elimination: the champion and
// runner-up come from the final match; each earlier round's losers tie for
// the next rank band, except the semifinal round when a consolation final
// decided individual 3rd/4th place.
func SingleElimination(main []MatchRef, consolation []MatchRef, totalRounds int) []Entry {
	var out []Entry
	rank := 1

	finalMatch, ok := findMatch(main, totalRounds, 1)
	if ok {
		if w, ok := bracketry.Winner(finalMatch.Opponent1, finalMatch.Opponent2); ok {
			out = append(out, Entry{ParticipantID: w, Rank: rank})
		}
		rank++
		if l, ok := bracketry.Loser(finalMatch.Opponent1, finalMatch.Opponent2); ok {
			out = append(out, Entry{ParticipantID: l, Rank: rank})
		}
		rank++
	}

	for r := totalRounds - 1; r >= 1; r-- {
		if r == totalRounds-1 && len(consolation) > 0 {
			if cf, ok := findMatch(consolation, 1, 1); ok {
				if w, ok := bracketry.Winner(cf.Opponent1, cf.Opponent2); ok {
					out = append(out, Entry{ParticipantID: w, Rank: rank})
				}
				rank++
				if l, ok := bracketry.Loser(cf.Opponent1, cf.Opponent2); ok {
					out = append(out, Entry{ParticipantID: l, Rank: rank})
				}
				rank++
				continue
			}
		}
		losers := roundLosers(main, r)
		for _, id := range losers {
			out = append(out, Entry{ParticipantID: id, Rank: rank})
		}
		rank += len(losers)
	}
	return out
}

// DoubleElimination ranks the grand-final winner 1st, its loser 2nd, then
// loser-bracket eliminees by loser-bracket round (later round = better
// rank). Eliminees of the same loser-bracket round share one rank; the
// winner-bracket round they dropped from is not used to separate them.
func DoubleElimination(gf []MatchRef, losers []MatchRef, lbRounds int) []Entry {
	var out []Entry
	rank := 1

	gfMatch, ok := latestDecided(gf)
	if ok {
		if w, ok := bracketry.Winner(gfMatch.Opponent1, gfMatch.Opponent2); ok {
			out = append(out, Entry{ParticipantID: w, Rank: rank})
		}
		rank++
		if l, ok := bracketry.Loser(gfMatch.Opponent1, gfMatch.Opponent2); ok {
			out = append(out, Entry{ParticipantID: l, Rank: rank})
		}
		rank++
	}

	for r := lbRounds; r >= 1; r-- {
		eliminated := roundLosers(losers, r)
		for _, id := range eliminated {
			out = append(out, Entry{ParticipantID: id, Rank: rank})
		}
		rank += len(eliminated)
	}
	return out
}

// RoundRobinRecord is one participant's accumulated match record, used both
// to rank and, via ScoreFor/ScoreAgainst, to break ties.
type RoundRobinRecord struct {
	ParticipantID          int64
	Wins, Draws, Losses    int
	ScoreFor, ScoreAgainst int
}

func (r RoundRobinRecord) diff() int { return r.ScoreFor - r.ScoreAgainst }

// RoundRobin tallies every match in matches into a per-participant record,
// then ranks by wins desc, draws desc, losses asc, head-to-head result (only
// applied when exactly two participants are tied on every prior criterion),
// score differential desc, and finally seedOrder (original seed position) to
// guarantee a total, deterministic order.
func RoundRobin(matches []bracketry.Match, seedOrder []int64) []Entry {
	records := map[int64]*RoundRobinRecord{}
	get := func(id int64) *RoundRobinRecord {
		if records[id] == nil {
			records[id] = &RoundRobinRecord{ParticipantID: id}
		}
		return records[id]
	}
	headToHead := map[[2]int64]int64{} // {loser,winner} unordered key -> winner id; 0 means draw

	for _, m := range matches {
		if m.Status != bracketry.StatusCompleted && m.Status != bracketry.StatusArchived {
			continue
		}
		o1, o2 := m.Opponent1, m.Opponent2
		if o1.Kind != bracketry.OpponentParticipant || o2.Kind != bracketry.OpponentParticipant {
			continue
		}
		r1, r2 := get(o1.ParticipantID), get(o2.ParticipantID)
		if o1.Score != nil {
			r1.ScoreFor += *o1.Score
			r2.ScoreAgainst += *o1.Score
		}
		if o2.Score != nil {
			r2.ScoreFor += *o2.Score
			r1.ScoreAgainst += *o2.Score
		}
		key := pairKey(o1.ParticipantID, o2.ParticipantID)
		switch {
		case o1.Won():
			r1.Wins++
			r2.Losses++
			headToHead[key] = o1.ParticipantID
		case o2.Won():
			r2.Wins++
			r1.Losses++
			headToHead[key] = o2.ParticipantID
		default:
			r1.Draws++
			r2.Draws++
			headToHead[key] = 0
		}
	}

	seedRank := make(map[int64]int, len(seedOrder))
	for i, id := range seedOrder {
		seedRank[id] = i
	}

	list := make([]*RoundRobinRecord, 0, len(records))
	for _, r := range records {
		list = append(list, r)
	}
	tied := map[[3]int]int{}
	for _, r := range list {
		tied[[3]int{r.Wins, r.Draws, r.Losses}]++
	}

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Draws != b.Draws {
			return a.Draws > b.Draws
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		if tied[[3]int{a.Wins, a.Draws, a.Losses}] == 2 {
			if w, ok := headToHead[pairKey(a.ParticipantID, b.ParticipantID)]; ok && w != 0 {
				return w == a.ParticipantID
			}
		}
		if a.diff() != b.diff() {
			return a.diff() > b.diff()
		}
		return seedRank[a.ParticipantID] < seedRank[b.ParticipantID]
	})

	out := make([]Entry, len(list))
	for i, r := range list {
		out[i] = Entry{ParticipantID: r.ParticipantID, Rank: i + 1}
	}
	return out
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

// CurrentRace returns the most advanced not-yet-completed match a
// participant still appears in — the supplemented get.currentRace
// operation, useful for a client polling "what does this entrant play
// next". It reports false once the participant has no more matches ahead
// of them (eliminated, or the stage is fully resolved for them).
func CurrentRace(matches []MatchRef, participantID int64) (MatchRef, bool) {
	best := MatchRef{Round: -1}
	found := false
	for _, ref := range matches {
		if ref.Match.Status == bracketry.StatusCompleted || ref.Match.Status == bracketry.StatusArchived {
			continue
		}
		if !matchHasParticipant(ref.Match, participantID) {
			continue
		}
		if ref.Round > best.Round {
			best = ref
			found = true
		}
	}
	return best, found
}

// MatchLocation finds the (group, round, number) of the match with the
// given database id — the supplemented find.matchLocation operation.
func MatchLocation(matches []MatchRef, matchID int64) (MatchRef, bool) {
	for _, ref := range matches {
		if ref.Match.ID == matchID {
			return ref, true
		}
	}
	return MatchRef{}, false
}

func matchHasParticipant(m bracketry.Match, id int64) bool {
	return (m.Opponent1.Kind == bracketry.OpponentParticipant && m.Opponent1.ParticipantID == id) ||
		(m.Opponent2.Kind == bracketry.OpponentParticipant && m.Opponent2.ParticipantID == id)
}

func findMatch(refs []MatchRef, round, number int) (bracketry.Match, bool) {
	for _, ref := range refs {
		if ref.Round == round && ref.Number == number {
			return ref.Match, true
		}
	}
	return bracketry.Match{}, false
}

func roundLosers(refs []MatchRef, round int) []int64 {
	var matches []MatchRef
	for _, ref := range refs {
		if ref.Round == round {
			matches = append(matches, ref)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Number < matches[j].Number })

	var out []int64
	for _, ref := range matches {
		if l, ok := bracketry.Loser(ref.Match.Opponent1, ref.Match.Opponent2); ok {
			out = append(out, l)
		}
	}
	return out
}

// latestDecided returns the highest-round match in refs that has actually
// completed — for the grand final group, that's the reset match (round 2)
// when a double grand final went the distance, otherwise round 1.
func latestDecided(refs []MatchRef) (bracketry.Match, bool) {
	var best MatchRef
	found := false
	for _, ref := range refs {
		if ref.Match.Status != bracketry.StatusCompleted {
			continue
		}
		if !found || ref.Round > best.Round {
			best = ref
			found = true
		}
	}
	return best.Match, found
}
