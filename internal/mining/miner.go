package mining

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/primechain/primechain/internal/chain"

	"go.uber.org/zap"
)

// DefaultWorkers is the number of concurrent workers raced per round.
const DefaultWorkers = 4

// ErrMiningFailed means a round finished with no worker producing a block.
// Unbounded workers cannot reach this; it surfaces when every worker
// exhausted its iteration bound.
var ErrMiningFailed = errors.New("mining round produced no block")

// Result is the winning worker's output for one round.
type Result struct {
	Block    chain.Block
	Stats    Stats
	WorkerID int
}

// Miner races a fixed pool of workers for each round. The first worker to
// emit a block wins; the rest are cancelled and stop within one pipeline
// iteration instead of burning CPU on a result nobody will read.
type Miner struct {
	workers       int
	maxIterations uint64
	logger        *zap.Logger
}

// NewMiner creates a miner racing the given number of workers per round.
// maxIterations bounds each worker's search (0 = unbounded).
func NewMiner(workers int, maxIterations uint64, logger *zap.Logger) *Miner {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Miner{
		workers:       workers,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// MineBlock runs one round extending prev under the given params snapshot.
// Which worker wins is intentionally nondeterministic: scheduling and
// independent random draws decide the race.
func (m *Miner) MineBlock(ctx context.Context, prev chain.Block, params Params) (Result, error) {
	// Validate params once before spawning anything, so a bad parameter
	// set fails the round instead of four workers.
	if _, err := NewGenerator(params, rand.New(rand.NewSource(1))); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan Result, m.workers)
	var wg sync.WaitGroup

	for i := 0; i < m.workers; i++ {
		// Distinct seeds per worker so the candidate streams are
		// statistically disjoint.
		rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(i)<<32))

		worker, err := NewWorker(i, params, m.maxIterations, rng, m.logger)
		if err != nil {
			return Result{}, err
		}

		wg.Add(1)
		go func(id int, w *Worker) {
			defer wg.Done()
			block, stats, err := w.Mine(ctx, prev)
			if err != nil {
				// Cancelled loser or exhausted bound; nothing to report.
				return
			}
			select {
			case results <- Result{Block: block, Stats: stats, WorkerID: id}:
			default:
			}
		}(i, worker)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	res, ok := <-results
	if !ok {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		return Result{}, ErrMiningFailed
	}

	// Winner decided; signal the losers to stop.
	cancel()

	m.logger.Debug("round won",
		zap.Int("worker", res.WorkerID),
		zap.Uint64("prime", res.Block.Prime),
	)

	return res, nil
}
