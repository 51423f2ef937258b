package mining

import (
	"math/rand"
	"testing"
)

func TestIsProbablePrime_KnownPrimes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	primes := []uint64{2, 3, 5, 7, 11, 13, 97, 7919, 2147483647, 9223372036854775783}

	for _, p := range primes {
		for k := 1; k <= MillerRabinRounds; k++ {
			if !IsProbablePrime(p, k, rng) {
				t.Errorf("IsProbablePrime(%d, k=%d) = false, want true", p, k)
			}
		}
	}
}

func TestIsProbablePrime_KnownComposites(t *testing.T) {
	rng := rand.New(rand.NewSource(43))

	// 561 is a Carmichael number: it fools Fermat tests for every coprime
	// base, so it is the adversarial case Miller-Rabin must still catch.
	composites := []uint64{4, 9, 15, 21, 100, 561, 1105, 6601, 4294967297}

	for _, c := range composites {
		for trial := 0; trial < 100; trial++ {
			if IsProbablePrime(c, MillerRabinRounds, rng) {
				t.Errorf("IsProbablePrime(%d) = true, want false", c)
			}
		}
	}
}

func TestIsProbablePrime_EdgeCases(t *testing.T) {
	rng := rand.New(rand.NewSource(44))

	cases := []struct {
		n    uint64
		want bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{3, true},
		{4, false},
		{5, true},
	}
	for _, tc := range cases {
		if got := IsProbablePrime(tc.n, MillerRabinRounds, rng); got != tc.want {
			t.Errorf("IsProbablePrime(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

// With k rounds the false-positive rate is bounded by 4^-k. Run single-round
// tests against a composite many times and check the empirical rate stays
// well under the k=1 bound of 0.25.
func TestIsProbablePrime_ErrorRateBound(t *testing.T) {
	rng := rand.New(rand.NewSource(45))

	const trials = 4000
	falsePositives := 0
	for i := 0; i < trials; i++ {
		if IsProbablePrime(561, 1, rng) {
			falsePositives++
		}
	}

	// Strong liars are at most a quarter of the bases; allow slack for
	// sampling noise on top of the theoretical bound.
	if rate := float64(falsePositives) / trials; rate > 0.30 {
		t.Errorf("single-round false positive rate %.3f exceeds bound", rate)
	}
}

func TestModPow(t *testing.T) {
	cases := []struct {
		base, exp, mod, want uint64
	}{
		{2, 10, 1000, 24},
		{3, 0, 7, 1},
		{7, 1, 5, 2},
		{5, 3, 13, 8},
		{2, 64, 97, 61}, // 2^64 mod 97
		{1 << 62, 2, (1 << 61) - 1, 4},
	}
	for _, tc := range cases {
		if got := modPow(tc.base, tc.exp, tc.mod); got != tc.want {
			t.Errorf("modPow(%d, %d, %d) = %d, want %d", tc.base, tc.exp, tc.mod, got, tc.want)
		}
	}
}

func TestMulMod_NoOverflow(t *testing.T) {
	// Both operands near 2^63: the plain product wraps, the 128-bit path
	// must not.
	m := uint64(9223372036854775783) // largest prime below 2^63
	a := m - 1
	got := mulMod(a, a, m)
	// (m-1)^2 mod m == 1
	if got != 1 {
		t.Errorf("mulMod(m-1, m-1, m) = %d, want 1", got)
	}
}
