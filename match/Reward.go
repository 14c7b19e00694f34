package match

import (
	"sfneuman.com/godraft/draft"
)

// Reward magnitudes. An invalid submission is penalized harder than a
// terminal loss so that the structural signal dominates the outcome
// signal.
const (
	winReward     = 1.0
	lossReward    = -1.0
	invalidReward = -2.0
)

// Reward returns the scalar reward for arriving at state s within
// match m, from the perspective of the state's team. Invalid states
// earn invalidReward regardless of outcome; terminal states earn the
// win/loss reward, or zero when the match outcome is unknown. All
// other transitions earn zero.
func Reward(s *draft.DraftState, m Match) float64 {
	code := s.Evaluate()
	if code.Invalid() {
		return invalidReward
	}
	if code != draft.Complete {
		return 0
	}

	winner, ok := m.WinningTeam()
	if !ok {
		return 0
	}
	if winner == s.Team() {
		return winReward
	}
	return lossReward
}
