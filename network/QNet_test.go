package network

import (
	"math"
	"path/filepath"
	"testing"

	G "gorgonia.org/gorgonia"
)

const (
	testFeatures = 4
	testActions  = 3
	testBatch    = 2
)

func newTestQNet(t *testing.T) *QNet {
	t.Helper()
	net, err := NewQNet(testFeatures, testActions, testBatch, []int{5},
		[]bool{true}, []*Activation{ReLU()}, G.GlorotU(1.0), 0.01)
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func testStates(n int) [][]float64 {
	states := make([][]float64, n)
	for i := range states {
		states[i] = make([]float64, testFeatures)
		states[i][i%testFeatures] = 1
	}
	return states
}

func TestNewQNetErrors(t *testing.T) {
	_, err := NewQNet(testFeatures, testActions, testBatch, []int{5},
		[]bool{true}, []*Activation{ReLU()}, G.GlorotU(1.0), 0)
	if err == nil {
		t.Error("expected error for non-positive learning rate")
	}

	_, err = NewQNet(testFeatures, testActions, 0, []int{5}, []bool{true},
		[]*Activation{ReLU()}, G.GlorotU(1.0), 0.01)
	if err == nil {
		t.Error("expected error for non-positive batch size")
	}
}

func TestPredict(t *testing.T) {
	net := newTestQNet(t)
	state := testStates(1)[0]

	action, err := net.Predict(state)
	if err != nil {
		t.Fatal(err)
	}
	if action < 0 || action >= testActions {
		t.Fatalf("action %d outside [0, %d)", action, testActions)
	}

	// Prediction is deterministic
	again, err := net.Predict(state)
	if err != nil {
		t.Fatal(err)
	}
	if again != action {
		t.Errorf("prediction changed between calls: %d then %d", action,
			again)
	}

	if _, err := net.Predict(make([]float64, testFeatures+1)); err == nil {
		t.Error("expected error for misshapen state")
	}
}

func TestBatchQ(t *testing.T) {
	net := newTestQNet(t)

	// Batch size is independent of the update batch size
	states := testStates(5)
	q, err := net.BatchQ(states)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := q.Dims()
	if rows != len(states) || cols != testActions {
		t.Fatalf("expected %dx%d values, got %dx%d", len(states),
			testActions, rows, cols)
	}

	// Identical states get identical rows
	q, err = net.BatchQ([][]float64{states[0], states[0]})
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < testActions; j++ {
		if math.Abs(q.At(0, j)-q.At(1, j)) > 1e-12 {
			t.Errorf("column %d: rows differ for identical states: %v vs %v",
				j, q.At(0, j), q.At(1, j))
		}
	}
}

func TestUpdateChangesParams(t *testing.T) {
	net := newTestQNet(t)

	before := make([][]float64, 0)
	for _, p := range net.Params() {
		data := make([]float64, len(p.Data))
		copy(data, p.Data)
		before = append(before, data)
	}

	states := testStates(testBatch)
	flat := make([]float64, 0, testBatch*testFeatures)
	for _, s := range states {
		flat = append(flat, s...)
	}
	if err := net.Update(flat, []int{0, 1}, []float64{1, -1}); err != nil {
		t.Fatal(err)
	}

	changed := false
	for i, p := range net.Params() {
		for j := range p.Data {
			if p.Data[j] != before[i][j] {
				changed = true
			}
		}
	}
	if !changed {
		t.Error("update left every parameter unchanged")
	}
}

func TestUpdateInvalidBatch(t *testing.T) {
	net := newTestQNet(t)
	states := make([]float64, testBatch*testFeatures)

	if err := net.Update(states, []int{0}, []float64{1, -1}); err == nil {
		t.Error("expected error for short action list")
	}
	if err := net.Update(states, []int{0, testActions}, []float64{1, -1}); err == nil {
		t.Error("expected error for out-of-range action")
	}
}

func TestLoss(t *testing.T) {
	net := newTestQNet(t)

	// Loss works at batch sizes other than the update batch size
	states := testStates(3)
	flat := make([]float64, 0, 3*testFeatures)
	for _, s := range states {
		flat = append(flat, s...)
	}

	loss, err := net.Loss(flat, []int{0, 1, 2}, []float64{1, 0, -1})
	if err != nil {
		t.Fatal(err)
	}
	if loss < 0 || math.IsNaN(loss) {
		t.Errorf("expected finite non-negative loss, got %v", loss)
	}

	before := net.Params()[0].Data[0]
	if _, err := net.Loss(flat, []int{0, 1, 2}, []float64{1, 0, -1}); err != nil {
		t.Fatal(err)
	}
	if net.Params()[0].Data[0] != before {
		t.Error("loss computation changed the network's weights")
	}
}

func TestLearningRate(t *testing.T) {
	net := newTestQNet(t)
	if net.LearningRate() != 0.01 {
		t.Fatalf("expected learning rate 0.01, got %v", net.LearningRate())
	}
	net.SetLearningRate(0.005)
	if net.LearningRate() != 0.005 {
		t.Errorf("expected learning rate 0.005, got %v", net.LearningRate())
	}
}

func TestSaveLoad(t *testing.T) {
	net := newTestQNet(t)
	path := filepath.Join(t.TempDir(), "model.bin")

	if err := net.Save(path); err != nil {
		t.Fatal(err)
	}

	// A fresh network holds different random weights until loading
	other := newTestQNet(t)
	if err := other.Load(path); err != nil {
		t.Fatal(err)
	}

	saved := net.Params()
	loaded := other.Params()
	if len(saved) != len(loaded) {
		t.Fatalf("expected %d parameters, got %d", len(saved), len(loaded))
	}
	for i := range saved {
		for j := range saved[i].Data {
			if saved[i].Data[j] != loaded[i].Data[j] {
				t.Fatalf("parameter %v index %d differs after load",
					saved[i].Name, j)
			}
		}
	}
}
