package agent

import (
	"math"
	"testing"

	"github.com/vpepe/twentyq/internal/domain"
)

func closeTo(got, want float64) bool {
	return got > want-0.001 && got < want+0.001
}

func TestBinaryEntropy(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"zero", 0, 0},
		{"one", 1, 0},
		{"half", 0.5, 1.0},
		{"epsilon default", 0.1, 0.469},
		{"seven tenths", 0.7, 0.881},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BinaryEntropy(tt.p); !closeTo(got, tt.want) {
				t.Errorf("BinaryEntropy(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	t.Run("NaN outside unit interval", func(t *testing.T) {
		for _, p := range []float64{-0.1, 1.1, -5, 2} {
			if got := BinaryEntropy(p); !math.IsNaN(got) {
				t.Errorf("BinaryEntropy(%v) = %v, want NaN", p, got)
			}
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		for _, p := range []float64{0, 0.1, 0.25, 0.4, 0.5, 0.9} {
			a, b := BinaryEntropy(p), BinaryEntropy(1-p)
			if !closeTo(a, b) {
				t.Errorf("BinaryEntropy(%v) = %v, BinaryEntropy(%v) = %v, want equal", p, a, 1-p, b)
			}
		}
	})
}

func TestExpectedInformationGain(t *testing.T) {
	const epsilon = 0.1

	t.Run("perfect 50/50 split", func(t *testing.T) {
		state := domain.BeliefState{"apple": 1, "car": 1}
		cm := domain.ConsistencyMap{"apple": "yes", "car": "no"}
		// H(0.1 + 0.8*0.5) - H(0.1) = 1.0 - 0.469
		if got := ExpectedInformationGain(state, cm, epsilon); !closeTo(got, 0.531) {
			t.Errorf("EIG = %v, want 0.531", got)
		}
	})

	t.Run("one-sided question scores zero", func(t *testing.T) {
		state := domain.BeliefState{"apple": 1, "banana": 1}
		cm := domain.ConsistencyMap{"apple": "yes", "banana": "yes"}
		if got := ExpectedInformationGain(state, cm, epsilon); got != 0 {
			t.Errorf("EIG = %v, want exactly 0", got)
		}
	})

	t.Run("empty consistency map scores zero", func(t *testing.T) {
		state := domain.BeliefState{"apple": 1, "car": 1}
		if got := ExpectedInformationGain(state, domain.ConsistencyMap{}, epsilon); got != 0 {
			t.Errorf("EIG = %v, want exactly 0", got)
		}
	})

	t.Run("protocol violation yields NaN", func(t *testing.T) {
		state := domain.BeliefState{"apple": 1, "car": 1}
		cm := domain.ConsistencyMap{"apple": "yes", "car": "maybe"}
		if got := ExpectedInformationGain(state, cm, epsilon); !math.IsNaN(got) {
			t.Errorf("EIG = %v, want NaN", got)
		}
	})

	t.Run("absent candidates are ignored", func(t *testing.T) {
		state := domain.BeliefState{"apple": 1, "car": 1, "plane": 1}
		cm := domain.ConsistencyMap{"apple": "yes", "car": "no"}
		if got := ExpectedInformationGain(state, cm, epsilon); !closeTo(got, 0.531) {
			t.Errorf("EIG = %v, want 0.531", got)
		}
	})

	t.Run("weights skew the split", func(t *testing.T) {
		state := domain.BeliefState{"apple": 3, "car": 1}
		cm := domain.ConsistencyMap{"apple": "yes", "car": "no"}
		// p = 0.75, so H(0.1 + 0.8*0.75) - H(0.1) = H(0.7) - H(0.1)
		if got := ExpectedInformationGain(state, cm, epsilon); !closeTo(got, 0.412) {
			t.Errorf("EIG = %v, want 0.412", got)
		}
	})
}
