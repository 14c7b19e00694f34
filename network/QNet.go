package network

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"sfneuman.com/godraft/utils/floatutils"
)

// QNet is a gorgonia-backed QNetwork. The network proper lives on a
// batch-1 graph used for greedy prediction; gradient updates run on a
// lazily built fixed-batch clone whose learned weights are copied back
// after every step. BatchQ and Loss build transient clones at the
// requested batch size, so both work at arbitrary batch sizes.
type QNet struct {
	base   NeuralNet
	baseVM G.VM

	train     *batchGraph // lazily built on first Update
	batchSize int
	solver    G.Solver
	lr        float64

	features   int
	numActions int
}

// NewQNet returns a new QNet predicting numActions action values from
// states of length features. The batch parameter fixes the batch size
// of gradient updates. The hiddenSizes, biases, activations, and init
// parameters describe the MLP as in NewMultiHeadMLP.
func NewQNet(features, numActions, batch int, hiddenSizes []int,
	biases []bool, activations []*Activation, init G.InitWFn,
	learningRate float64) (*QNet, error) {
	if learningRate <= 0 {
		return nil, fmt.Errorf("newqnet: learning rate must be positive"+
			"\n\thave(%v)", learningRate)
	}
	if batch < 1 {
		return nil, fmt.Errorf("newqnet: batch size must be positive"+
			"\n\thave(%v)", batch)
	}

	g := G.NewGraph()
	base, err := NewMultiHeadMLP(features, 1, numActions, g, hiddenSizes,
		biases, init, activations)
	if err != nil {
		return nil, fmt.Errorf("newqnet: could not create network: %v", err)
	}

	q := &QNet{
		base:       base,
		baseVM:     G.NewTapeMachine(g),
		batchSize:  batch,
		lr:         learningRate,
		features:   features,
		numActions: numActions,
	}
	q.solver = q.newSolver()
	return q, nil
}

func (q *QNet) newSolver() G.Solver {
	return G.NewVanillaSolver(
		G.WithLearnRate(q.lr),
		G.WithBatchSize(float64(q.batchSize)),
	)
}

// Features returns the length of state encodings the network accepts.
func (q *QNet) Features() int {
	return q.features
}

// NumActions returns the size of the action space.
func (q *QNet) NumActions() int {
	return q.numActions
}

// Predict returns the greedy action index for a single encoded state.
func (q *QNet) Predict(state []float64) (int, error) {
	if len(state) != q.features {
		return 0, fmt.Errorf("predict: invalid state size\n\twant(%v)"+
			"\n\thave(%v)", q.features, len(state))
	}
	if err := q.base.SetInput(state); err != nil {
		return 0, fmt.Errorf("predict: could not set input: %v", err)
	}
	if err := q.baseVM.RunAll(); err != nil {
		return 0, fmt.Errorf("predict: could not run forward pass: %v", err)
	}
	defer q.baseVM.Reset()

	out, ok := q.base.Output().Data().([]float64)
	if !ok {
		return 0, fmt.Errorf("predict: output is not float64")
	}
	_, indices := floatutils.MaxSlice(out)
	return indices[0], nil
}

// BatchQ returns the estimated Q-values for every action of every
// state in the batch, one row per state.
func (q *QNet) BatchQ(states [][]float64) (*mat.Dense, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("batchq: no states given")
	}

	flat := make([]float64, 0, len(states)*q.features)
	for i, state := range states {
		if len(state) != q.features {
			return nil, fmt.Errorf("batchq: state %v has invalid size"+
				"\n\twant(%v)\n\thave(%v)", i, q.features, len(state))
		}
		flat = append(flat, state...)
	}

	clone, err := q.base.CloneWithBatch(len(states))
	if err != nil {
		return nil, fmt.Errorf("batchq: could not clone network: %v", err)
	}
	if err := clone.Set(q.base); err != nil {
		return nil, fmt.Errorf("batchq: could not copy weights: %v", err)
	}

	vm := G.NewTapeMachine(clone.Graph())
	defer vm.Close()

	if err := clone.SetInput(flat); err != nil {
		return nil, fmt.Errorf("batchq: could not set input: %v", err)
	}
	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("batchq: could not run forward pass: %v", err)
	}

	out, ok := clone.Output().Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("batchq: output is not float64")
	}
	backing := make([]float64, len(out))
	copy(backing, out)

	return mat.NewDense(len(states), q.numActions, backing), nil
}

// Update performs one gradient step of the mean squared error between
// the Q-values of the taken actions and the supplied targets. The
// states parameter holds batch stacked state encodings; actions and
// targets hold one entry per example.
func (q *QNet) Update(states []float64, actions []int, targets []float64) error {
	if q.train == nil {
		train, err := q.newBatchGraph(q.batchSize)
		if err != nil {
			return fmt.Errorf("update: %v", err)
		}
		q.train = train
	}

	if _, err := q.train.run(states, actions, targets); err != nil {
		return fmt.Errorf("update: %v", err)
	}
	if err := q.solver.Step(q.train.net.Model()); err != nil {
		return fmt.Errorf("update: could not step solver: %v", err)
	}
	q.train.vm.Reset()

	// The prediction network must see the learned weights
	if err := q.base.Set(q.train.net); err != nil {
		return fmt.Errorf("update: could not propagate weights: %v", err)
	}
	return nil
}

// Loss computes the update objective for a batch without changing any
// weights. The batch size is taken from len(targets) and need not
// match the update batch size.
func (q *QNet) Loss(states []float64, actions []int, targets []float64) (float64, error) {
	if len(targets) == 0 {
		return 0, fmt.Errorf("loss: no targets given")
	}
	bg, err := q.newBatchGraph(len(targets))
	if err != nil {
		return 0, fmt.Errorf("loss: %v", err)
	}
	defer bg.vm.Close()

	loss, err := bg.run(states, actions, targets)
	if err != nil {
		return 0, fmt.Errorf("loss: %v", err)
	}
	return loss, nil
}

// LearningRate returns the current learning rate.
func (q *QNet) LearningRate() float64 {
	return q.lr
}

// SetLearningRate sets the learning rate used by subsequent updates.
func (q *QNet) SetLearningRate(lr float64) {
	q.lr = lr
	q.solver = q.newSolver()
}

// Params returns the live named parameter collection of the network.
// The collection must be fetched fresh for every use; see QNetwork.
func (q *QNet) Params() []Param {
	learnables := q.base.Learnables()
	params := make([]Param, len(learnables))
	for i, node := range learnables {
		params[i] = Param{
			Name: node.Name(),
			Data: node.Value().Data().([]float64),
		}
	}
	return params
}

// Save persists the network's parameters to path as an opaque blob.
func (q *QNet) Save(path string) error {
	return SaveParams(path, q.Params())
}

// Load restores parameters previously written by Save. The stored
// collection must match the network's architecture.
func (q *QNet) Load(path string) error {
	params, err := LoadParams(path)
	if err != nil {
		return fmt.Errorf("load: %v", err)
	}
	if err := HardCopy(q.Params(), params); err != nil {
		return fmt.Errorf("load: %v", err)
	}
	// The training clone holds stale weights now; rebuild on next use
	if q.train != nil {
		q.train.vm.Close()
		q.train = nil
	}
	return nil
}

// batchGraph is a training view of a QNet: a fixed-batch clone of the
// network extended with the loss of predicted action values against
// per-example targets.
type batchGraph struct {
	net      NeuralNet
	vm       G.VM
	selected *G.Node // one-hot matrix of the taken actions
	targets  *G.Node
	lossVal  G.Value
}

func (q *QNet) newBatchGraph(batch int) (*batchGraph, error) {
	clone, err := q.base.CloneWithBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("could not clone network: %v", err)
	}
	if err := clone.Set(q.base); err != nil {
		return nil, fmt.Errorf("could not copy weights: %v", err)
	}
	g := clone.Graph()

	selected := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, q.numActions), G.WithName("selectedActions"),
		G.WithInit(G.Zeroes()))
	targets := G.NewVector(g, tensor.Float64, G.WithShape(batch),
		G.WithName("targetQ"), G.WithInit(G.Zeroes()))

	// Q-value of the action actually taken in each example
	selectedQ := G.Must(G.HadamardProd(clone.Prediction(), selected))
	selectedQ = G.Must(G.Sum(selectedQ, 1))

	// Mean squared TD error
	losses := G.Must(G.Sub(targets, selectedQ))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	bg := &batchGraph{
		net:      clone,
		selected: selected,
		targets:  targets,
	}
	G.Read(cost, &bg.lossVal)

	if _, err := G.Grad(cost, clone.Learnables()...); err != nil {
		return nil, fmt.Errorf("could not compute gradient: %v", err)
	}
	bg.vm = G.NewTapeMachine(g, G.BindDualValues(clone.Learnables()...))

	return bg, nil
}

// run feeds one batch through the graph and returns the loss. The
// caller owns resetting or stepping the VM afterwards.
func (bg *batchGraph) run(states []float64, actions []int, targets []float64) (float64, error) {
	batch := bg.net.BatchSize()
	outputs := bg.net.Outputs()
	if len(actions) != batch || len(targets) != batch {
		msg := "invalid batch\n\twant(%v)\n\thave(%v actions, %v targets)"
		return 0, fmt.Errorf(msg, batch, len(actions), len(targets))
	}

	oneHot := make([]float64, batch*outputs)
	for i, action := range actions {
		if action < 0 || action >= outputs {
			return 0, fmt.Errorf("action %v out of range [0, %v)", action,
				outputs)
		}
		oneHot[i*outputs+action] = 1.0
	}
	selectedTensor := tensor.New(tensor.WithShape(batch, outputs),
		tensor.WithBacking(oneHot))
	if err := G.Let(bg.selected, selectedTensor); err != nil {
		return 0, fmt.Errorf("could not set selected actions: %v", err)
	}

	targetBacking := make([]float64, batch)
	copy(targetBacking, targets)
	targetTensor := tensor.New(tensor.WithShape(batch),
		tensor.WithBacking(targetBacking))
	if err := G.Let(bg.targets, targetTensor); err != nil {
		return 0, fmt.Errorf("could not set targets: %v", err)
	}

	if err := bg.net.SetInput(states); err != nil {
		return 0, fmt.Errorf("could not set input: %v", err)
	}
	if err := bg.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("could not run update pass: %v", err)
	}

	loss, ok := bg.lossVal.Data().(float64)
	if !ok {
		return 0, fmt.Errorf("loss is not float64")
	}
	return loss, nil
}
