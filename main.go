// Command godraft trains a champion-drafting Q-network from a file of
// historical match records.
package main

import (
	"encoding/gob"
	"flag"
	"fmt"
	"os"

	G "gorgonia.org/gorgonia"
	"k8s.io/klog/v2"

	"sfneuman.com/godraft/draft"
	"sfneuman.com/godraft/match"
	"sfneuman.com/godraft/network"
	"sfneuman.com/godraft/trainer"
)

var (
	matchFile     = flag.String("matches", "matches.bin", "gob file of match records")
	numChampions  = flag.Int("champions", 158, "size of the champion pool")
	numBans       = flag.Int("bans", 5, "bans per team")
	epochs        = flag.Int("epochs", 10, "training epochs")
	batchSize     = flag.Int("batch", 64, "batch size for updates")
	bufferSize    = flag.Int("buffer", 100_000, "replay buffer capacity")
	learningRate  = flag.Float64("alpha", 1e-4, "initial learning rate")
	minLR         = flag.Float64("minAlpha", 1e-6, "learning rate decay floor")
	discount      = flag.Float64("gamma", 0.9, "discount factor")
	tau           = flag.Float64("tau", 0.001, "target network update rate")
	updateFreq    = flag.Int("updateFreq", 4, "steps between batch updates")
	lrDecayFreq   = flag.Int("lrDecayFreq", 4, "epochs between learning rate halvings")
	checkpointDir = flag.String("checkpoints", "models", "checkpoint directory, empty to disable")
	stashInterval = flag.Int("stash", 5, "epochs between stashed checkpoint copies, 0 to disable")
	valFraction   = flag.Float64("valFraction", 0.1, "fraction of matches held out for validation")
	seed          = flag.Uint64("seed", 192382, "random seed")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	matches, err := loadMatches(*matchFile)
	if err != nil {
		klog.Exitf("could not load matches: %v", err)
	}

	split := len(matches) - int(*valFraction*float64(len(matches)))
	if split < 1 || split >= len(matches) {
		klog.Exitf("cannot split %d matches with validation fraction %v",
			len(matches), *valFraction)
	}
	training, validation := matches[:split], matches[split:]
	klog.Infof("loaded %d matches: %d training, %d validation",
		len(matches), len(training), len(validation))

	features := draft.Features(*numChampions)
	numActions := draft.NumActions(*numChampions)
	hiddenSizes := []int{features, features / 2}
	biases := []bool{true, true}
	activations := []*network.Activation{network.ReLU(), network.ReLU()}
	init := G.GlorotU(1.0)

	online, err := network.NewQNet(features, numActions, *batchSize,
		hiddenSizes, biases, activations, init, *learningRate)
	if err != nil {
		klog.Exitf("could not create online network: %v", err)
	}
	target, err := network.NewQNet(features, numActions, *batchSize,
		hiddenSizes, biases, activations, init, *learningRate)
	if err != nil {
		klog.Exitf("could not create target network: %v", err)
	}

	processor, err := match.NewProcessor(*numChampions, *numBans)
	if err != nil {
		klog.Exitf("could not create match processor: %v", err)
	}

	config := trainer.Config{
		Epochs:          *epochs,
		BatchSize:       *batchSize,
		BufferSize:      *bufferSize,
		Discount:        *discount,
		Tau:             *tau,
		UpdateFreq:      *updateFreq,
		LRDecayFreq:     *lrDecayFreq,
		MinLearningRate: *minLR,
		CheckpointDir:   *checkpointDir,
		StashInterval:   *stashInterval,
		Seed:            *seed,
		Verbose:         true,
	}

	t, err := trainer.New(online, target, processor, config)
	if err != nil {
		klog.Exitf("could not create trainer: %v", err)
	}

	stats, err := t.Train(training, validation)
	if err != nil {
		klog.Exitf("training failed: %v", err)
	}

	fmt.Printf("final training accuracy:   %.6f\n", stats.TrainAccuracy)
	fmt.Printf("final validation accuracy: %.6f\n", stats.ValidationAccuracy)
	fmt.Printf("final validation loss:     %.6f\n", stats.ValidationLoss)
}

func loadMatches(path string) ([]match.Match, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var matches []match.Match
	if err := gob.NewDecoder(file).Decode(&matches); err != nil {
		return nil, err
	}
	return matches, nil
}
