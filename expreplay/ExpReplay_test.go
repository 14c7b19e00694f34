package expreplay

import (
	"testing"
)

// exp returns an experience tagged by reward so tests can tell stored
// entries apart without building full draft states.
func exp(reward float64) Experience {
	return Experience{Reward: reward}
}

func TestNewInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -10} {
		if _, err := New(capacity, 1); err == nil {
			t.Errorf("expected error for capacity %d", capacity)
		}
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	buffer, err := New(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 8; i++ {
		buffer.Store([]Experience{exp(float64(i))})
	}

	if buffer.Size() != 5 {
		t.Fatalf("expected occupancy 5, got %d", buffer.Size())
	}

	sampled, err := buffer.Sample(5)
	if err != nil {
		t.Fatal(err)
	}

	// Only the five newest experiences (4..8) may remain
	seen := make(map[float64]bool)
	for _, e := range sampled {
		if e.Reward < 4 || e.Reward > 8 {
			t.Errorf("evicted experience %v still in buffer", e.Reward)
		}
		if seen[e.Reward] {
			t.Errorf("experience %v sampled twice without replacement",
				e.Reward)
		}
		seen[e.Reward] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 distinct experiences, got %d", len(seen))
	}
}

func TestOccupancy(t *testing.T) {
	tests := []struct {
		capacity int
		stored   int
		want     int
	}{
		{10, 0, 0},
		{10, 3, 3},
		{10, 10, 10},
		{10, 25, 10},
		{1, 4, 1},
	}

	for _, test := range tests {
		buffer, err := New(test.capacity, 1)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < test.stored; i++ {
			buffer.Store([]Experience{exp(float64(i))})
		}
		if buffer.Size() != test.want {
			t.Errorf("capacity %d after %d stores: expected occupancy %d, "+
				"got %d", test.capacity, test.stored, test.want,
				buffer.Size())
		}
		if buffer.Capacity() != test.capacity {
			t.Errorf("expected capacity %d, got %d", test.capacity,
				buffer.Capacity())
		}
	}
}

func TestSampleEmptyBuffer(t *testing.T) {
	buffer, err := New(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	_, err = buffer.Sample(1)
	if !IsEmptyBuffer(err) {
		t.Errorf("expected empty buffer error, got %v", err)
	}
}

func TestSampleInsufficient(t *testing.T) {
	buffer, err := New(5, 1)
	if err != nil {
		t.Fatal(err)
	}
	buffer.Store([]Experience{exp(1), exp(2), exp(3)})

	_, err = buffer.Sample(4)
	if !IsInsufficientSamples(err) {
		t.Errorf("expected insufficient samples error, got %v", err)
	}

	// Sampling exactly the occupancy is legal
	sampled, err := buffer.Sample(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(sampled) != 3 {
		t.Errorf("expected 3 experiences, got %d", len(sampled))
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	buffer, err := New(100, 42)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		buffer.Store([]Experience{exp(float64(i))})
	}

	for trial := 0; trial < 10; trial++ {
		sampled, err := buffer.Sample(50)
		if err != nil {
			t.Fatal(err)
		}
		seen := make(map[float64]bool)
		for _, e := range sampled {
			if seen[e.Reward] {
				t.Fatalf("trial %d: experience %v sampled twice", trial,
					e.Reward)
			}
			seen[e.Reward] = true
		}
	}
}
