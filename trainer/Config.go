package trainer

import (
	"github.com/pkg/errors"
)

// Config implements a configuration of a Trainer.
type Config struct {
	Epochs     int
	BatchSize  int
	BufferSize int // replay buffer capacity

	Discount float64 // discount on bootstrapped target Q-values
	Tau      float64 // Polyak averaging constant for target updates

	// UpdateFreq is the number of steps between batch updates.
	// LRDecayFreq is the number of epochs between learning rate
	// halvings; the rate never decays below MinLearningRate.
	UpdateFreq      int
	LRDecayFreq     int
	MinLearningRate float64

	// CheckpointDir receives one parameter blob per epoch. When
	// StashInterval > 0, an extra copy is stashed every StashInterval
	// epochs before the final epoch. An empty CheckpointDir disables
	// checkpointing.
	CheckpointDir string
	StashInterval int

	Seed    uint64
	Verbose bool
}

// PreTrainingSteps returns the number of steps taken before any batch
// update. It must cover at least one full batch sample.
func (c Config) PreTrainingSteps() int {
	return 10 * c.BatchSize
}

// ObservationSteps returns the number of steps the learner observes
// recorded submissions before synthesizing its own experiences.
func (c Config) ObservationSteps() int {
	return 2 * c.PreTrainingSteps()
}

// Validate checks that the configuration can train at all. Training
// with an undersized replay buffer fails here, fast, rather than at
// the first batch sample.
func (c Config) Validate() error {
	if c.Epochs < 1 {
		return errors.Errorf("config: epochs must be positive, got %d",
			c.Epochs)
	}
	if c.BatchSize < 1 {
		return errors.Errorf("config: batch size must be positive, got %d",
			c.BatchSize)
	}
	if c.BufferSize < 1 {
		return errors.Errorf("config: buffer size must be positive, got %d",
			c.BufferSize)
	}
	if c.PreTrainingSteps() > c.BufferSize {
		return errors.Errorf("config: replay buffer (capacity %d) not large "+
			"enough for %d pre-training steps", c.BufferSize,
			c.PreTrainingSteps())
	}
	if c.Discount < 0 || c.Discount > 1 {
		return errors.Errorf("config: discount must be in [0, 1], got %v",
			c.Discount)
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return errors.Errorf("config: tau must be in (0, 1], got %v", c.Tau)
	}
	if c.UpdateFreq < 1 {
		return errors.Errorf("config: update frequency must be positive, "+
			"got %d", c.UpdateFreq)
	}
	if c.LRDecayFreq < 1 {
		return errors.Errorf("config: learning rate decay frequency must "+
			"be positive, got %d", c.LRDecayFreq)
	}
	if c.MinLearningRate < 0 {
		return errors.Errorf("config: minimum learning rate must be "+
			"non-negative, got %v", c.MinLearningRate)
	}
	if c.StashInterval < 0 {
		return errors.Errorf("config: stash interval must be non-negative, "+
			"got %d", c.StashInterval)
	}
	return nil
}
