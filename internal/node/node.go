package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/primechain/primechain/internal/chain"
	"github.com/primechain/primechain/internal/config"
	"github.com/primechain/primechain/internal/metrics"
	"github.com/primechain/primechain/internal/mining"

	"go.uber.org/zap"
)

// RoundResult is the outcome of one completed mining round.
type RoundResult struct {
	Block    chain.Block
	Stats    mining.Stats
	Duration time.Duration
	// Params is the difficulty in effect after the post-round retarget.
	Params   mining.Params
	Height   int
	WorkerID int
}

// Status is a point-in-time view of the node for the dashboard and API.
type Status struct {
	Height     int     `json:"height"`
	TipIndex   uint64  `json:"tip_index"`
	TipPrime   uint64  `json:"tip_prime"`
	TipHash    string  `json:"tip_hash"`
	NLimit     uint64  `json:"n_limit"`
	MinDigits  uint32  `json:"min_digits"`
	MinProb    float64 `json:"min_prob"`
	TargetTime float64 `json:"target_time_secs"`
	Workers    int     `json:"workers"`
	Rounds     uint64  `json:"rounds"`
	Candidates uint64  `json:"candidates_total"`
	UptimeSecs int64   `json:"uptime_secs"`
}

// Node ties the ledger, the miner and the difficulty controller together and
// runs mining rounds against them.
type Node struct {
	cfg    *config.Config
	ledger *chain.Ledger
	miner  *mining.Miner
	diff   *mining.Controller
	logger *zap.Logger

	startTime time.Time

	// roundMu serializes mining rounds: concurrent triggers would race on
	// the tip and on the difficulty parameters, so only one round is ever
	// in flight.
	roundMu sync.Mutex

	// Cumulative round totals for the status surface.
	totalsMu        sync.Mutex
	rounds          uint64
	totalCandidates uint64
}

// NewNode creates a node over an already-constructed ledger.
func NewNode(cfg *config.Config, ledger *chain.Ledger, logger *zap.Logger) *Node {
	initial := mining.Params{
		NLimit:    cfg.NLimit,
		MinDigits: cfg.MinDigits,
		MinProb:   cfg.MinProb,
	}

	n := &Node{
		cfg:       cfg,
		ledger:    ledger,
		miner:     mining.NewMiner(cfg.Workers, cfg.MaxIterations, logger),
		diff:      mining.NewController(initial, cfg.TargetTime.Seconds()),
		logger:    logger,
		startTime: time.Now(),
	}

	metrics.ChainHeight.Set(float64(ledger.Height()))
	n.publishDifficulty(initial)
	return n
}

// MineRound runs exactly one mining round: read the tip and a difficulty
// snapshot, race the workers, append the winner, then feed the measured
// duration back into the controller. Exactly one block is appended per
// successful round.
func (n *Node) MineRound(ctx context.Context) (RoundResult, error) {
	n.roundMu.Lock()
	defer n.roundMu.Unlock()

	prev := n.ledger.Tip()
	params := n.diff.Snapshot()

	start := time.Now()
	res, err := n.miner.MineBlock(ctx, prev, params)
	if err != nil {
		metrics.RoundsFailed.Inc()
		return RoundResult{}, fmt.Errorf("mining round: %w", err)
	}
	duration := time.Since(start)

	if err := n.ledger.Append(res.Block); err != nil {
		metrics.RoundsFailed.Inc()
		return RoundResult{}, err
	}

	next, changed := n.diff.Retarget(duration.Seconds())

	metrics.BlocksMined.Inc()
	metrics.RoundDuration.Observe(duration.Seconds())
	metrics.CandidatesTested.Add(float64(res.Stats.Candidates))
	metrics.GCDRejected.Add(float64(res.Stats.GCDRejected))
	metrics.HeuristicRejected.Add(float64(res.Stats.HeuristicRejected))
	metrics.MillerRabinRejected.Add(float64(res.Stats.MillerRabinRejected))
	metrics.ChainHeight.Set(float64(n.ledger.Height()))
	n.publishDifficulty(next)

	n.totalsMu.Lock()
	n.rounds++
	n.totalCandidates += res.Stats.Candidates
	n.totalsMu.Unlock()

	n.logger.Info("block mined",
		zap.Uint64("index", res.Block.Index),
		zap.Uint64("prime", res.Block.Prime),
		zap.Int("worker", res.WorkerID),
		zap.Duration("duration", duration),
		zap.Uint64("candidates", res.Stats.Candidates),
		zap.Bool("difficulty_changed", changed),
	)

	return RoundResult{
		Block:    res.Block,
		Stats:    res.Stats,
		Duration: duration,
		Params:   next,
		Height:   n.ledger.Height(),
		WorkerID: res.WorkerID,
	}, nil
}

// Chain returns a snapshot of the full block sequence.
func (n *Node) Chain() []chain.Block {
	return n.ledger.Snapshot()
}

// Status returns the current node status.
func (n *Node) Status() Status {
	tip := n.ledger.Tip()
	params := n.diff.Snapshot()

	n.totalsMu.Lock()
	rounds := n.rounds
	candidates := n.totalCandidates
	n.totalsMu.Unlock()

	return Status{
		Height:     n.ledger.Height(),
		TipIndex:   tip.Index,
		TipPrime:   tip.Prime,
		TipHash:    tip.Hash,
		NLimit:     params.NLimit,
		MinDigits:  params.MinDigits,
		MinProb:    params.MinProb,
		TargetTime: n.diff.TargetTime(),
		Workers:    n.cfg.Workers,
		Rounds:     rounds,
		Candidates: candidates,
		UptimeSecs: int64(time.Since(n.startTime).Seconds()),
	}
}

// Close releases the ledger's underlying store.
func (n *Node) Close() error {
	return n.ledger.Close()
}

func (n *Node) publishDifficulty(p mining.Params) {
	metrics.DifficultyNLimit.Set(float64(p.NLimit))
	metrics.DifficultyMinDigits.Set(float64(p.MinDigits))
	metrics.DifficultyMinProb.Set(p.MinProb)
}
