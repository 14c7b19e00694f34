package trainer

import (
	"github.com/pkg/errors"

	"sfneuman.com/godraft/draft"
	"sfneuman.com/godraft/expreplay"
	"sfneuman.com/godraft/match"
	"sfneuman.com/godraft/network"
)

// winningTeam returns the perspective from which a match should be
// replayed during evaluation. Matches without a recorded winner replay
// from the blue side.
func winningTeam(m match.Match) draft.Team {
	if team, ok := m.WinningTeam(); ok {
		return team
	}
	return draft.BlueTeam
}

// Validate measures the online network against a set of matches. It
// returns the squared loss of the network over the winning teams'
// experiences and the fraction of matches whose winner the network
// predicts correctly.
func (t *Trainer) Validate(matches []match.Match) (loss float64,
	accuracy float64, err error) {
	if len(matches) == 0 {
		return 0, 0, errors.New("validate: no matches")
	}

	buffer, err := expreplay.New(10*len(matches), t.rng.Uint64())
	if err != nil {
		return 0, 0, errors.Wrap(err, "validate")
	}

	for _, m := range matches {
		experiences, err := t.adapter.Decompose(m, winningTeam(m))
		if err != nil {
			return 0, 0, errors.Wrap(err, "validate")
		}
		for _, exp := range experiences {
			if exp.Action.Null() {
				continue
			}
			buffer.Store([]expreplay.Experience{exp})
		}
	}

	batch, err := buffer.Sample(buffer.Size())
	if err != nil {
		return 0, 0, errors.Wrap(err, "validate")
	}

	targets, err := t.computeTargets(batch)
	if err != nil {
		return 0, 0, errors.Wrap(err, "validate")
	}

	states := make([]float64, 0, len(batch)*len(batch[0].State.Encode()))
	actions := make([]int, len(batch))
	for i, exp := range batch {
		states = append(states, exp.State.Encode()...)
		actions[i] = exp.State.ActionIndex(exp.Action.ChampionID,
			exp.Action.Position)
	}

	loss, err = t.online.Loss(states, actions, targets)
	if err != nil {
		return 0, 0, errors.Wrap(err, "validate")
	}

	correct := 0
	for _, m := range matches {
		blue, err := ScoreMatch(t.online, t.adapter, m, draft.BlueTeam)
		if err != nil {
			return 0, 0, errors.Wrap(err, "validate")
		}
		red, err := ScoreMatch(t.online, t.adapter, m, draft.RedTeam)
		if err != nil {
			return 0, 0, errors.Wrap(err, "validate")
		}

		// Ties go to blue, matching the fallback for unknown winners
		predicted := draft.BlueTeam
		if blue < red {
			predicted = draft.RedTeam
		}
		if predicted == winningTeam(m) {
			correct++
		}
	}
	accuracy = float64(correct) / float64(len(matches))

	return loss, accuracy, nil
}

// ScoreMatch replays a match from one team's perspective and returns
// the sum of the network's action values for the submissions that team
// actually made. Higher scores mean the network rates the team's draft
// more favourably.
func ScoreMatch(net network.QNetwork, adapter Adapter, m match.Match,
	team draft.Team) (float64, error) {
	experiences, err := adapter.Decompose(m, team)
	if err != nil {
		return 0, errors.Wrap(err, "score match")
	}

	var states [][]float64
	var actions []int
	for _, exp := range experiences {
		if exp.Action.Null() {
			continue
		}
		states = append(states, exp.State.Encode())
		actions = append(actions, exp.State.ActionIndex(exp.Action.ChampionID,
			exp.Action.Position))
	}
	if len(states) == 0 {
		return 0, nil
	}

	q, err := net.BatchQ(states)
	if err != nil {
		return 0, errors.Wrap(err, "score match")
	}
	rows, _ := q.Dims()
	if rows != len(actions) {
		return 0, errors.Errorf("score match: got %d value rows for %d "+
			"submissions", rows, len(actions))
	}

	score := 0.0
	for i, action := range actions {
		score += q.At(i, action)
	}
	return score, nil
}
