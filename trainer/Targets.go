package trainer

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"sfneuman.com/godraft/draft"
	"sfneuman.com/godraft/expreplay"
)

// computeTargets returns the regression target for each experience in
// the batch. Terminal transitions take their reward verbatim. All
// others bootstrap from the target network: reward plus the discounted
// maximum target-network action value at the successor state. The
// successor values are computed in a single batched forward pass.
func (t *Trainer) computeTargets(batch []expreplay.Experience) ([]float64,
	error) {
	targets := make([]float64, len(batch))
	var pending []int
	var pendingStates [][]float64

	for i, exp := range batch {
		if exp.NextState.Evaluate() == draft.Complete {
			targets[i] = exp.Reward
			continue
		}
		pending = append(pending, i)
		pendingStates = append(pendingStates, exp.NextState.Encode())
	}

	if len(pending) == 0 {
		return targets, nil
	}

	q, err := t.target.BatchQ(pendingStates)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute successor values")
	}
	rows, _ := q.Dims()
	if rows != len(pending) {
		return nil, errors.Errorf("got %d value rows for %d states", rows,
			len(pending))
	}

	for j, i := range pending {
		targets[i] = batch[i].Reward +
			t.config.Discount*floats.Max(q.RawRowView(j))
	}
	return targets, nil
}
