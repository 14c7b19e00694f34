package trainer

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"sfneuman.com/godraft/draft"
	"sfneuman.com/godraft/expreplay"
	"sfneuman.com/godraft/match"
	"sfneuman.com/godraft/network"
)

// synthesize lets the network choose its own action at state and turns
// the choice into extra training signal. An illegal choice becomes a
// penalized experience. A legal choice that disagrees with the recorded
// action becomes a neutral experience with probability epsilon, teaching
// the network that other legal drafts exist without endorsing them. A
// choice that matches the recorded action adds nothing.
//
// The returned code is the evaluation of the state reached by the
// network's chosen action, so callers can tally the kinds of mistakes
// the network still makes.
func synthesize(state *draft.DraftState, trueAction draft.Action,
	net network.QNetwork, blank match.Match, epsilon float64,
	rng *rand.Rand) ([]expreplay.Experience, draft.Code, error) {
	index, err := net.Predict(state.Encode())
	if err != nil {
		return nil, draft.InProgress, errors.Wrap(err, "synthesize")
	}

	championID, position := state.DecodeAction(index)
	next := state.ApplyAction(championID, position)
	code := next.Evaluate()

	if code.Invalid() {
		exp := expreplay.Experience{
			State: state,
			Action: draft.Action{
				ChampionID: championID,
				Position:   position,
			},
			Reward:    match.Reward(next, blank),
			NextState: next,
		}
		return []expreplay.Experience{exp}, code, nil
	}

	trueIndex := state.ActionIndex(trueAction.ChampionID, trueAction.Position)
	if index != trueIndex && rng.Float64() < epsilon {
		exp := expreplay.Experience{
			State: state,
			Action: draft.Action{
				ChampionID: championID,
				Position:   position,
			},
			Reward:    match.Reward(next, blank),
			NextState: next,
		}
		return []expreplay.Experience{exp}, code, nil
	}

	return nil, code, nil
}
