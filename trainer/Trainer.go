// Package trainer implements the double-Q training loop: experience
// generation from match records, synthetic experience injection from
// the learner's own predictions, target-value computation, periodic
// online/target synchronization, and validation scoring by simulated
// match outcome prediction.
package trainer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"sfneuman.com/godraft/draft"
	"sfneuman.com/godraft/expreplay"
	"sfneuman.com/godraft/match"
	"sfneuman.com/godraft/network"
	"sfneuman.com/godraft/utils/floatutils"
	"sfneuman.com/godraft/utils/progressbar"
)

const (
	minEpsilon    = 0.01
	lrDecayFactor = 0.5
	stashDirName  = "stash"
)

// Adapter decomposes a match record, seen from one team's perspective,
// into its ordered experience sequence.
type Adapter interface {
	Decompose(m match.Match, team draft.Team) ([]expreplay.Experience, error)
}

// Trainer trains an online Q-network against a slowly tracking target
// network using historical match records. Training is single threaded:
// every step mutates the replay buffer and the parameter pair, so no
// operation of an epoch may run concurrently with another.
type Trainer struct {
	online  network.QNetwork
	target  network.QNetwork
	adapter Adapter
	config  Config

	rng     *rand.Rand
	epsilon float64
	blank   match.Match
}

// Stats aggregates the statistical measures recorded over a training
// run.
type Stats struct {
	LossPerEpoch       []float64
	TrainAccuracy      float64
	ValidationLoss     float64
	ValidationAccuracy float64
}

// New returns a Trainer that updates online against targets computed
// by target. The target network is hard-initialized to the online
// parameters, so the pair starts identical. New fails fast on any
// configuration that could not sample a full batch.
func New(online, target network.QNetwork, adapter Adapter, config Config) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	if online == nil || target == nil {
		return nil, errors.New("new: both networks must be non-nil")
	}
	if adapter == nil {
		return nil, errors.New("new: adapter must be non-nil")
	}

	if err := network.HardCopy(target.Params(), online.Params()); err != nil {
		return nil, errors.Wrap(err, "new: could not initialize target")
	}

	if config.CheckpointDir != "" {
		if err := os.MkdirAll(config.CheckpointDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "new: could not create checkpoint dir")
		}
		if config.StashInterval > 0 {
			stash := filepath.Join(config.CheckpointDir, stashDirName)
			if err := os.MkdirAll(stash, 0o755); err != nil {
				return nil, errors.Wrap(err, "new: could not create stash dir")
			}
		}
	}

	return &Trainer{
		online:  online,
		target:  target,
		adapter: adapter,
		config:  config,
		rng:     rand.New(rand.NewSource(config.Seed)),
		epsilon: 1.0,
		blank:   match.Blank(),
	}, nil
}

// Train runs the full training schedule over the given matches,
// validating against the held-out validation set after every epoch.
func (t *Trainer) Train(training, validation []match.Match) (*Stats, error) {
	if len(training) == 0 {
		return nil, errors.New("train: no training matches")
	}

	t.epsilon = 1.0
	decrement := 1.0 / float64(10*len(training)*t.config.Epochs)
	teams := [2]draft.Team{draft.BlueTeam, draft.RedTeam}
	stats := &Stats{}

	shuffled := make([]match.Match, len(training))
	copy(shuffled, training)

	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		start := time.Now()

		if epoch > 0 && epoch%t.config.LRDecayFreq == 0 &&
			t.online.LearningRate() >= t.config.MinLearningRate {
			t.online.SetLearningRate(lrDecayFactor * t.online.LearningRate())
		}

		// The replay buffer lives for exactly one epoch
		buffer, err := expreplay.New(t.config.BufferSize, t.rng.Uint64())
		if err != nil {
			return nil, errors.Wrap(err, "train: could not create buffer")
		}

		t.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		var bar *progressbar.ManualProgressBar
		if t.config.Verbose {
			bar = progressbar.NewManualProgressBar(40, len(shuffled))
		}

		totalSteps := 0
		nullActions := 0
		learnerSubmissions := 0
		badStates := make(map[draft.Code]int)

		for _, m := range shuffled {
			for _, team := range teams {
				experiences, err := t.adapter.Decompose(m, team)
				if err != nil {
					return nil, errors.Wrapf(err, "train: epoch %d", epoch)
				}

				for _, exp := range experiences {
					// Null submissions (skipped bans) never enter the
					// buffer: the learner cannot submit them
					if exp.Action.Null() {
						nullActions++
						continue
					}
					buffer.Store([]expreplay.Experience{exp})

					if totalSteps >= t.config.ObservationSteps() {
						synthesized, code, err := synthesize(exp.State,
							exp.Action, t.online, t.blank, t.epsilon, t.rng)
						if err != nil {
							return nil, errors.Wrapf(err, "train: epoch %d",
								epoch)
						}
						if code.Invalid() {
							badStates[code]++
						} else if len(synthesized) > 0 {
							learnerSubmissions++
						}
						buffer.Store(synthesized)
					}

					t.epsilon = floatutils.Clip(t.epsilon-decrement,
						minEpsilon, 1.0)
					totalSteps++

					if totalSteps >= t.config.PreTrainingSteps() &&
						totalSteps%t.config.UpdateFreq == 0 {
						if err := t.trainBatch(buffer); err != nil {
							return nil, errors.Wrapf(err, "train: epoch %d",
								epoch)
						}
					}
				}
			}
			if bar != nil {
				bar.Increment()
				bar.SetSuffix(fmt.Sprintf("[epsilon: %.4f]", t.epsilon))
				bar.Display()
			}
		}

		valLoss, valAccuracy, err := t.Validate(validation)
		if err != nil {
			return nil, errors.Wrapf(err, "train: epoch %d: validation set",
				epoch)
		}
		trainLoss, trainAccuracy, err := t.Validate(training)
		if err != nil {
			return nil, errors.Wrapf(err, "train: epoch %d: training set",
				epoch)
		}

		stats.LossPerEpoch = append(stats.LossPerEpoch, trainLoss)
		stats.TrainAccuracy = trainAccuracy
		stats.ValidationLoss = valLoss
		stats.ValidationAccuracy = valAccuracy

		if err := t.checkpoint(epoch); err != nil {
			return nil, errors.Wrapf(err, "train: epoch %d", epoch)
		}

		klog.V(1).Infof("epoch %d/%d: dt %.2fs, steps %d, loss %.6f, "+
			"train acc %.6f, val loss %.6f, val acc %.6f",
			epoch+1, t.config.Epochs, time.Since(start).Seconds(),
			totalSteps+nullActions, trainLoss, trainAccuracy, valLoss,
			valAccuracy)
		klog.V(1).Infof("  alpha %.4e, epsilon %.4f",
			t.online.LearningRate(), t.epsilon)
		klog.V(2).Infof("  null actions %d, learner submissions %d",
			nullActions, learnerSubmissions)
		for code, count := range badStates {
			klog.V(2).Infof("  %v -> %d counts", code, count)
		}
	}

	return stats, nil
}

// trainBatch samples one batch, computes its targets, updates the
// online network, and then blends the target network toward the fresh
// online parameters.
func (t *Trainer) trainBatch(buffer *expreplay.Buffer) error {
	batch, err := buffer.Sample(t.config.BatchSize)
	if err != nil {
		return errors.Wrap(err, "could not sample batch")
	}

	targets, err := t.computeTargets(batch)
	if err != nil {
		return err
	}
	// A silently misshapen target vector would corrupt training
	if len(targets) != t.config.BatchSize {
		return errors.Errorf("got %d targets for batch of %d", len(targets),
			t.config.BatchSize)
	}

	states := make([]float64, 0, t.config.BatchSize*len(batch[0].State.Encode()))
	actions := make([]int, len(batch))
	for i, exp := range batch {
		states = append(states, exp.State.Encode()...)
		actions[i] = exp.State.ActionIndex(exp.Action.ChampionID,
			exp.Action.Position)
	}

	if err := t.online.Update(states, actions, targets); err != nil {
		return errors.Wrap(err, "could not update online network")
	}

	// The target network blends only after the online update for this
	// batch, so it always tracks fresh parameters
	err = network.SoftUpdate(t.target.Params(), t.online.Params(),
		t.config.Tau)
	return errors.Wrap(err, "could not update target network")
}

// checkpoint persists the online network's parameters keyed by epoch
// index.
func (t *Trainer) checkpoint(epoch int) error {
	if t.config.CheckpointDir == "" {
		return nil
	}

	name := fmt.Sprintf("model_E%d.bin", epoch)
	if t.config.StashInterval > 0 && epoch > 0 &&
		epoch%t.config.StashInterval == 0 && epoch != t.config.Epochs-1 {
		stash := filepath.Join(t.config.CheckpointDir, stashDirName, name)
		if err := t.online.Save(stash); err != nil {
			return errors.Wrap(err, "could not stash checkpoint")
		}
		klog.V(1).Infof("stashed a copy of the current model in %v", stash)
	}

	path := filepath.Join(t.config.CheckpointDir, name)
	return errors.Wrap(t.online.Save(path), "could not save checkpoint")
}
