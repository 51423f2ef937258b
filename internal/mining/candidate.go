package mining

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
)

// ErrConfigOverflow means the difficulty parameters describe candidates that
// cannot be constructed inside uint64. The controller's caps prevent this;
// seeing it indicates a misconfigured initial parameter set.
var ErrConfigOverflow = errors.New("difficulty parameters overflow uint64 candidate construction")

// Candidate is one four-factor draw. N = A*D + B*C is the number submitted
// to the heuristic filter and the primality verifier.
type Candidate struct {
	A, B, C, D uint64
	N          uint64
}

// rejectReason classifies why Next discarded a draw.
type rejectReason int

const (
	rejectNone     rejectReason = iota
	rejectGCD                   // a factor pair was not coprime
	rejectOverflow              // combined value wrapped uint64 (retried, not counted)
)

// Generator draws four-factor candidates for one worker. Each worker owns its
// own Generator with an independent random source, so concurrent workers
// explore disjoint candidate streams.
type Generator struct {
	rng *rand.Rand

	nLimit  uint64
	digitLo uint64 // inclusive lower bound for a and c
	digitHi uint64 // exclusive upper bound for a and c
}

// NewGenerator validates params and returns a generator backed by rng.
// It fails with ErrConfigOverflow when 10^MinDigits or the worst-case
// candidate a*d + b*c does not fit in uint64.
func NewGenerator(params Params, rng *rand.Rand) (*Generator, error) {
	if params.MinDigits < 1 {
		return nil, fmt.Errorf("min digits must be at least 1")
	}
	if params.NLimit < 1 {
		return nil, fmt.Errorf("n limit must be at least 1")
	}

	hi, ok := pow10(params.MinDigits)
	if !ok {
		return nil, ErrConfigOverflow
	}
	lo, _ := pow10(params.MinDigits - 1)

	// Worst case is 2 * (10^digits - 1) * nLimit; refuse parameter sets
	// where it can wrap rather than silently producing garbage candidates.
	carry, prod := bits.Mul64(hi-1, params.NLimit)
	if carry != 0 || prod > (1<<63)-1 {
		return nil, ErrConfigOverflow
	}

	return &Generator{
		rng:     rng,
		nLimit:  params.NLimit,
		digitLo: lo,
		digitHi: hi,
	}, nil
}

// Next draws one candidate. A non-none reason means the draw was discarded
// and the caller should retry: rejectGCD when a factor pair shares a common
// divisor, rejectOverflow when the combined value wrapped (unreachable for
// parameter sets accepted by NewGenerator, kept as a local retry guard).
func (g *Generator) Next() (Candidate, rejectReason) {
	a := g.digitLo + g.rng.Uint64()%(g.digitHi-g.digitLo)
	b := 1 + g.rng.Uint64()%g.nLimit
	c := g.digitLo + g.rng.Uint64()%(g.digitHi-g.digitLo)
	d := 1 + g.rng.Uint64()%g.nLimit

	// Keep both factor pairs in lowest terms before any arithmetic on n.
	if gcd(a, b) != 1 || gcd(c, d) != 1 {
		return Candidate{}, rejectGCD
	}

	n, ok := combineFactors(a, b, c, d)
	if !ok {
		return Candidate{}, rejectOverflow
	}

	return Candidate{A: a, B: b, C: c, D: d, N: n}, rejectNone
}

// combineFactors computes a*d + b*c with overflow detection.
func combineFactors(a, b, c, d uint64) (uint64, bool) {
	hi1, ad := bits.Mul64(a, d)
	hi2, bc := bits.Mul64(b, c)
	if hi1 != 0 || hi2 != 0 {
		return 0, false
	}
	sum, carry := bits.Add64(ad, bc, 0)
	if carry != 0 {
		return 0, false
	}
	return sum, true
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// pow10 returns 10^e, reporting false when it exceeds uint64.
func pow10(e uint32) (uint64, bool) {
	if e > 19 {
		return 0, false
	}
	n := uint64(1)
	for i := uint32(0); i < e; i++ {
		n *= 10
	}
	return n, true
}
