package mining

import (
	"math"
)

// smallPrimes are trial divisors applied before the density estimate. A hit
// proves compositeness, so this stage never rejects a genuine prime.
var smallPrimes = [...]uint64{2, 3, 5, 7, 11, 13}

// PrimeDensity returns the Prime Number Theorem estimate 1/ln(n) of the
// chance that a number near n is prime.
func PrimeDensity(n uint64) float64 {
	if n < 2 {
		return 0
	}
	return 1 / math.Log(float64(n))
}

// PassesHeuristic decides whether n is worth a full Miller-Rabin run. It
// first trial-divides by a small fixed prime set, then requires the prime
// density estimate to clear minProb. The density stage is a throughput
// filter, not a divisibility test.
func PassesHeuristic(n uint64, minProb float64) bool {
	if n < 2 {
		return false
	}
	for _, p := range smallPrimes {
		if n != p && n%p == 0 {
			return false
		}
	}
	return PrimeDensity(n) >= minProb
}
