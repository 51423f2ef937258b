package mining

import (
	"math"
	"testing"
)

func TestPassesHeuristic_TrialDivision(t *testing.T) {
	// Multiples of the small prime set are proven composite regardless of
	// how permissive the density threshold is.
	for _, n := range []uint64{4, 6, 9, 10, 15, 21, 22, 26, 1000000} {
		if PassesHeuristic(n, 0.0001) {
			t.Errorf("PassesHeuristic(%d) = true, want false (small factor)", n)
		}
	}

	// The small primes themselves are not self-rejected.
	for _, p := range smallPrimes {
		if !PassesHeuristic(p, 0.0001) {
			t.Errorf("PassesHeuristic(%d) = false, want true", p)
		}
	}
}

func TestPassesHeuristic_DensityThreshold(t *testing.T) {
	// 1/ln(10^9) is about 0.048: a 9-digit candidate passes a 0.04 bar but
	// not a 0.05 bar.
	n := uint64(1000000007) // prime, no small factors
	if !PassesHeuristic(n, 0.04) {
		t.Errorf("PassesHeuristic(%d, 0.04) = false, want true", n)
	}
	if PassesHeuristic(n, 0.05) {
		t.Errorf("PassesHeuristic(%d, 0.05) = true, want false", n)
	}
}

func TestPassesHeuristic_NeverRejectsPrimeByDivision(t *testing.T) {
	// Primes above the trial set must only ever be rejected by density.
	for _, p := range []uint64{17, 19, 23, 97, 7919, 1000003} {
		if !PassesHeuristic(p, 0.0001) {
			t.Errorf("PassesHeuristic(%d) = false, want true", p)
		}
	}
}

func TestPrimeDensity(t *testing.T) {
	if got := PrimeDensity(0); got != 0 {
		t.Errorf("PrimeDensity(0) = %v, want 0", got)
	}
	want := 1 / math.Log(1e6)
	if got := PrimeDensity(1000000); math.Abs(got-want) > 1e-12 {
		t.Errorf("PrimeDensity(1e6) = %v, want %v", got, want)
	}
}
