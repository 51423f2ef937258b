package mining

import (
	"sync"
)

const (
	// DefaultTargetTime is the desired wall-clock seconds per mining round.
	DefaultTargetTime = 10.0

	// RetargetLowBand and RetargetHighBand bound the acceptable round
	// duration as fractions of the target time. Durations inside the band
	// leave the parameters unchanged.
	RetargetLowBand  = 0.6
	RetargetHighBand = 1.4

	// NLimitGrowth and NLimitDecay scale the factor bound on retarget.
	NLimitGrowth = 1.5
	NLimitDecay  = 0.7

	// NLimitFloor keeps the search space from collapsing; NLimitCap keeps
	// a*d + b*c inside uint64 for max-digit factors.
	NLimitFloor = 100
	NLimitCap   = 1 << 32

	// MinProbGrowth and MinProbDecay scale the heuristic threshold.
	MinProbGrowth = 1.2
	MinProbDecay  = 0.8

	// MinProbCap and MinProbFloor clamp the heuristic threshold.
	MinProbCap   = 0.1
	MinProbFloor = 0.005

	// MaxMinDigits bounds the digit count of factors a and c. At 9 digits
	// the largest candidate is below 2^63 even at NLimitCap, so candidate
	// construction can never overflow.
	MaxMinDigits = 9
)

// Params is one consistent difficulty parameter set. Workers receive a value
// snapshot at round start; only the Controller mutates the live set.
type Params struct {
	// NLimit is the inclusive upper bound on factors b and d.
	NLimit uint64

	// MinDigits is the decimal digit count of factors a and c.
	MinDigits uint32

	// MinProb is the minimum heuristic prime-probability estimate a
	// candidate must reach before Miller-Rabin is paid for.
	MinProb float64
}

// DefaultParams returns the starting difficulty.
func DefaultParams() Params {
	return Params{
		NLimit:    1000,
		MinDigits: 7,
		MinProb:   0.01,
	}
}

// Controller owns the process-wide difficulty parameters and retunes them
// after every round to steer the round duration toward the target time.
// Updates replace the whole parameter set under a lock, so readers never
// observe a partially applied transition.
type Controller struct {
	mu         sync.RWMutex
	params     Params
	targetTime float64
}

// NewController creates a controller starting from initial.
func NewController(initial Params, targetTime float64) *Controller {
	if targetTime <= 0 {
		targetTime = DefaultTargetTime
	}
	return &Controller{
		params:     initial,
		targetTime: targetTime,
	}
}

// Snapshot returns the current parameter set by value.
func (c *Controller) Snapshot() Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params
}

// TargetTime returns the configured seconds-per-round target.
func (c *Controller) TargetTime() float64 {
	return c.targetTime
}

// Retarget feeds one measured round duration (seconds) into the controller.
// It returns the parameter set now in effect and whether it changed. Fast
// rounds ratchet the difficulty up, slow rounds ratchet it down, and rounds
// inside the band leave it alone.
func (c *Controller) Retarget(elapsed float64) (Params, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.params

	switch {
	case elapsed < c.targetTime*RetargetLowBand:
		next.NLimit = uint64(float64(next.NLimit) * NLimitGrowth)
		if next.NLimit > NLimitCap {
			next.NLimit = NLimitCap
		}
		if next.MinDigits < MaxMinDigits {
			next.MinDigits++
		}
		next.MinProb = next.MinProb * MinProbGrowth
		if next.MinProb > MinProbCap {
			next.MinProb = MinProbCap
		}

	case elapsed > c.targetTime*RetargetHighBand:
		next.NLimit = uint64(float64(next.NLimit) * NLimitDecay)
		if next.NLimit < NLimitFloor {
			next.NLimit = NLimitFloor
		}
		next.MinProb = next.MinProb * MinProbDecay
		if next.MinProb < MinProbFloor {
			next.MinProb = MinProbFloor
		}

	default:
		return next, false
	}

	changed := next != c.params
	c.params = next
	return next, changed
}
