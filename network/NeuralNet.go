// Package network implements the function approximators used to
// estimate draft action values: gorgonia-backed feedforward networks
// and the named-parameter synchronization that keeps an online/target
// pair loosely coupled.
package network

import (
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
)

// NeuralNet is a feedforward network on a gorgonia graph. A NeuralNet
// is tied to a fixed input batch size; CloneWithBatch produces a copy
// of the architecture and weights on a fresh graph with a new batch
// size.
type NeuralNet interface {
	Graph() *G.ExprGraph
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Set(NeuralNet) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Output() G.Value
	Prediction() *G.Node
}

// QNetwork is the function approximator contract the trainer consumes.
// Predict returns the greedy action index for a single encoded state.
// BatchQ returns estimated Q-values for every action of every state in
// a batch, one row per state. Update performs one gradient step toward
// the supplied per-example targets; Loss computes the same objective
// without updating any weights.
//
// Params returns the live named parameter collection: mutating the
// returned slices changes the network. The collection must be fetched
// fresh for every synchronization; cached copies may go stale after an
// Update.
type QNetwork interface {
	Predict(state []float64) (int, error)
	BatchQ(states [][]float64) (*mat.Dense, error)
	Update(states []float64, actions []int, targets []float64) error
	Loss(states []float64, actions []int, targets []float64) (float64, error)
	LearningRate() float64
	SetLearningRate(float64)
	Params() []Param
	Save(path string) error
}
