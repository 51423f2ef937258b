package mining

import (
	"math/bits"
	"math/rand"
)

// MillerRabinRounds is the number of independent witness rounds per primality
// check. With k rounds the probability of declaring a composite prime is at
// most 4^-k, so 12 rounds gives roughly 6e-8 per call.
const MillerRabinRounds = 12

// IsProbablePrime runs k rounds of the Miller-Rabin test on n using random
// bases drawn from rng. It returns false for composites (always, once a
// witness is found) and true for probable primes. Small n is handled by
// direct rules rather than the randomized path.
func IsProbablePrime(n uint64, k int, rng *rand.Rand) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 {
		return false
	}

	// Write n-1 = d * 2^r with d odd.
	d := n - 1
	r := 0
	for d%2 == 0 {
		d /= 2
		r++
	}

rounds:
	for i := 0; i < k; i++ {
		a := 2 + rng.Uint64()%(n-3) // base in [2, n-2]
		x := modPow(a, d, n)
		if x == 1 || x == n-1 {
			continue
		}
		for j := 0; j < r-1; j++ {
			x = mulMod(x, x, n)
			if x == n-1 {
				continue rounds
			}
		}
		return false // a witnesses that n is composite
	}
	return true
}

// modPow computes base^exp mod m by square-and-multiply.
func modPow(base, exp, m uint64) uint64 {
	if m == 1 {
		return 0
	}
	result := uint64(1)
	base %= m
	for exp > 0 {
		if exp&1 == 1 {
			result = mulMod(result, base, m)
		}
		base = mulMod(base, base, m)
		exp >>= 1
	}
	return result
}

// mulMod computes a*b mod m through a 128-bit intermediate so the product
// cannot wrap before reduction. Requires a, b < m.
func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, m)
	return rem
}
