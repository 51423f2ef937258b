package mining

import (
	"context"
	"errors"
	"math/rand"

	"github.com/primechain/primechain/internal/chain"

	"go.uber.org/zap"
)

// ErrIterationsExhausted means a bounded worker gave up before finding a
// probable prime.
var ErrIterationsExhausted = errors.New("worker iteration bound exhausted")

// Stats accumulates the rejection counts of one worker over one round. Only
// the winning worker's stats survive; losers' counts are discarded with them.
type Stats struct {
	Candidates          uint64  `json:"candidates"`
	GCDRejected         uint64  `json:"gcd_rejected"`
	HeuristicRejected   uint64  `json:"heuristic_rejected"`
	MillerRabinRejected uint64  `json:"miller_rabin_rejected"`
	Probability         float64 `json:"probability"`
}

// Worker drives the generate-filter-verify pipeline until it finds a
// probable prime or is cancelled. Each worker owns an independent random
// source shared by its generator and its Miller-Rabin bases.
type Worker struct {
	id      int
	gen     *Generator
	rng     *rand.Rand
	minProb float64

	// maxIterations bounds the search loop; 0 means unbounded. Production
	// runs unbounded, tests set a bound to guarantee liveness.
	maxIterations uint64

	logger *zap.Logger
}

// NewWorker builds a worker for one round. The params snapshot is fixed for
// the worker's lifetime.
func NewWorker(id int, params Params, maxIterations uint64, rng *rand.Rand, logger *zap.Logger) (*Worker, error) {
	gen, err := NewGenerator(params, rng)
	if err != nil {
		return nil, err
	}
	return &Worker{
		id:            id,
		gen:           gen,
		rng:           rng,
		minProb:       params.MinProb,
		maxIterations: maxIterations,
		logger:        logger,
	}, nil
}

// Mine searches for the next block extending prev. It checks ctx once per
// pipeline iteration, so cancellation latency is bounded by a single
// generate-filter-verify pass. Termination is probabilistic unless a
// maxIterations bound was set.
func (w *Worker) Mine(ctx context.Context, prev chain.Block) (chain.Block, Stats, error) {
	var stats Stats

	for i := uint64(0); w.maxIterations == 0 || i < w.maxIterations; i++ {
		select {
		case <-ctx.Done():
			return chain.Block{}, stats, ctx.Err()
		default:
		}

		stats.Candidates++

		cand, reason := w.gen.Next()
		switch reason {
		case rejectGCD:
			stats.GCDRejected++
			continue
		case rejectOverflow:
			// Local arithmetic failure; retry with a fresh draw.
			continue
		}

		if !PassesHeuristic(cand.N, w.minProb) {
			stats.HeuristicRejected++
			continue
		}

		if !IsProbablePrime(cand.N, MillerRabinRounds, w.rng) {
			stats.MillerRabinRejected++
			continue
		}

		stats.Probability = PrimeDensity(cand.N)

		w.logger.Debug("probable prime found",
			zap.Int("worker", w.id),
			zap.Uint64("prime", cand.N),
			zap.Uint64("candidates", stats.Candidates),
		)

		return chain.NewBlock(prev, cand.N, cand.A, cand.B, cand.C, cand.D), stats, nil
	}

	return chain.Block{}, stats, ErrIterationsExhausted
}
