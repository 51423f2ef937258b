package mining

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/primechain/primechain/internal/chain"

	"go.uber.org/zap"
)

func TestMiner_RaceProducesValidBlock(t *testing.T) {
	m := NewMiner(4, 100000, zap.NewNop())

	prev := chain.Genesis()
	res, err := m.MineBlock(context.Background(), prev, tinyParams())
	if err != nil {
		t.Fatalf("MineBlock: %v", err)
	}

	if err := res.Block.CheckLink(prev); err != nil {
		t.Errorf("winning block does not extend tip: %v", err)
	}
	if res.Block.Prime != res.Block.A*res.Block.D+res.Block.B*res.Block.C {
		t.Errorf("prime identity broken: %+v", res.Block)
	}
	if res.Stats.Candidates < 1 {
		t.Errorf("stats.Candidates = %d, want >= 1", res.Stats.Candidates)
	}
	if res.WorkerID < 0 || res.WorkerID >= 4 {
		t.Errorf("WorkerID = %d, want 0-3", res.WorkerID)
	}
}

func TestMiner_SequentialRoundsChain(t *testing.T) {
	m := NewMiner(4, 100000, zap.NewNop())
	params := tinyParams()

	prev := chain.Genesis()
	for i := 0; i < 5; i++ {
		res, err := m.MineBlock(context.Background(), prev, params)
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		if err := res.Block.CheckLink(prev); err != nil {
			t.Fatalf("round %d link: %v", i, err)
		}
		prev = res.Block
	}
	if prev.Index != 5 {
		t.Errorf("tip index = %d, want 5", prev.Index)
	}
}

// Losing workers have no iteration bound here, so the only thing that stops
// them is the cancel signal sent once a winner is decided. If that signal
// regressed, the loser goroutines would spin forever and never drain back to
// the baseline count.
func TestMiner_CancelsLosersAfterWin(t *testing.T) {
	baseline := runtime.NumGoroutine()

	m := NewMiner(4, 0, zap.NewNop())
	prev := chain.Genesis()
	for i := 0; i < 3; i++ {
		res, err := m.MineBlock(context.Background(), prev, tinyParams())
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		prev = res.Block
	}

	// Cancellation latency is bounded by one pipeline iteration, so the
	// losers must exit well within the deadline.
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("goroutines did not drain after rounds: baseline %d, now %d",
		baseline, runtime.NumGoroutine())
}

func TestMiner_AllWorkersExhaustedFailsRound(t *testing.T) {
	// The heuristic rejects everything under these params (density of a
	// 9-digit candidate is well below the cap), so every bounded worker
	// exhausts and the round must fail instead of hanging.
	m := NewMiner(4, 25, zap.NewNop())
	params := Params{NLimit: 100, MinDigits: 9, MinProb: MinProbCap}

	_, err := m.MineBlock(context.Background(), chain.Genesis(), params)
	if !errors.Is(err, ErrMiningFailed) {
		t.Fatalf("MineBlock err = %v, want ErrMiningFailed", err)
	}
}

func TestMiner_ConfigOverflowFailsRound(t *testing.T) {
	m := NewMiner(4, 0, zap.NewNop())
	params := Params{NLimit: 1 << 50, MinDigits: 19, MinProb: 0.01}

	_, err := m.MineBlock(context.Background(), chain.Genesis(), params)
	if !errors.Is(err, ErrConfigOverflow) {
		t.Fatalf("MineBlock err = %v, want ErrConfigOverflow", err)
	}
}

func TestMiner_ParentCancellationPropagates(t *testing.T) {
	m := NewMiner(2, 0, zap.NewNop())
	params := Params{NLimit: 1 << 30, MinDigits: 9, MinProb: 0.005}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.MineBlock(ctx, chain.Genesis(), params)
	if err == nil {
		t.Fatal("expected an error from a cancelled round")
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrMiningFailed) {
		t.Errorf("MineBlock err = %v, want context.Canceled", err)
	}
}
