package chain

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrInvalidBlock means a proposed block failed the ledger's index or
// prev_hash check. The chain is left unchanged.
var ErrInvalidBlock = errors.New("invalid block")

// Ledger is the append-only chain of accepted blocks behind exclusive-write,
// shared-read access. Genesis is inserted at construction and every appended
// block is validated against the tip before it is committed.
type Ledger struct {
	mu     sync.RWMutex
	store  BlockStore
	logger *zap.Logger
}

// NewLedger wraps store in a ledger. An empty store receives the genesis
// block; a non-empty store (loaded from disk) is replay-validated from
// genesis to tip, and any broken link refuses to load.
func NewLedger(store BlockStore, logger *zap.Logger) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		logger: logger,
	}

	if store.Count() == 0 {
		if err := store.Append(Genesis()); err != nil {
			return nil, fmt.Errorf("insert genesis: %w", err)
		}
		return l, nil
	}

	if err := l.validateLoaded(); err != nil {
		return nil, err
	}
	return l, nil
}

// validateLoaded walks the stored chain genesis-first, checking the genesis
// sentinel and every link. Blocks were validated when first appended; this
// catches on-disk corruption or tampering with the store file.
func (l *Ledger) validateLoaded() error {
	blocks := l.store.All()

	if blocks[0] != Genesis() {
		return fmt.Errorf("%w: stored genesis does not match sentinel", ErrInvalidBlock)
	}
	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].CheckLink(blocks[i-1]); err != nil {
			return fmt.Errorf("%w: stored block %d: %v", ErrInvalidBlock, i, err)
		}
	}

	l.logger.Info("loaded chain validated", zap.Int("blocks", len(blocks)))
	return nil
}

// Append validates b against the current tip and commits it. On any
// validation failure the error wraps ErrInvalidBlock and no state changes.
func (l *Ledger) Append(b Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tip, ok := l.store.Tip()
	if !ok {
		return fmt.Errorf("%w: ledger has no tip", ErrInvalidBlock)
	}
	if err := b.CheckLink(tip); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	if b.Index != uint64(l.store.Count()) {
		return fmt.Errorf("%w: index %d does not match height %d", ErrInvalidBlock, b.Index, l.store.Count())
	}

	if err := l.store.Append(b); err != nil {
		return fmt.Errorf("append block: %w", err)
	}

	l.logger.Info("block appended",
		zap.Uint64("index", b.Index),
		zap.Uint64("prime", b.Prime),
		zap.String("hash", b.Hash),
	)
	return nil
}

// Tip returns the current highest block.
func (l *Ledger) Tip() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tip, _ := l.store.Tip()
	return tip
}

// Height returns the number of blocks including genesis.
func (l *Ledger) Height() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Count()
}

// Snapshot returns a copy of the full chain for readers.
func (l *Ledger) Snapshot() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.All()
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}
