// Package match implements match records and their decomposition into
// the experience sequences that training and validation consume.
package match

import (
	"sfneuman.com/godraft/draft"
)

// Outcome encodes which side won a match. UnknownOutcome marks
// synthetic matches, such as the winner-less record used to reward
// learner-generated submissions.
type Outcome int

const (
	UnknownOutcome Outcome = iota
	BlueWin
	RedWin
)

func (o Outcome) String() string {
	switch o {
	case BlueWin:
		return "blue"
	case RedWin:
		return "red"
	}
	return "unknown"
}

// Pick is a single role-tagged champion selection.
type Pick struct {
	ChampionID int
	Position   draft.Position
}

// TeamDraft is the draft submitted by one team, in submission order.
// A skipped ban is recorded as draft.NoChampion.
type TeamDraft struct {
	Bans  []int
	Picks []Pick
}

// Match is a single historical match record: the winner and both
// teams' drafts.
type Match struct {
	Winner Outcome
	Blue   TeamDraft
	Red    TeamDraft
}

// Team returns the draft submitted by the given team.
func (m Match) Team(t draft.Team) TeamDraft {
	if t == draft.RedTeam {
		return m.Red
	}
	return m.Blue
}

// WinningTeam returns the winner of the match, and false if the
// outcome is unknown.
func (m Match) WinningTeam() (draft.Team, bool) {
	switch m.Winner {
	case BlueWin:
		return draft.BlueTeam, true
	case RedWin:
		return draft.RedTeam, true
	}
	return draft.BlueTeam, false
}

// Blank returns the winner-less match used to compute rewards for
// states produced by learner predictions, for which no ground-truth
// outcome exists.
func Blank() Match {
	return Match{Winner: UnknownOutcome}
}
