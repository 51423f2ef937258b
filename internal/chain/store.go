package chain

import (
	"fmt"
	"sync"
)

// BlockStore defines ordered storage for blocks, indexed by height.
type BlockStore interface {
	// Append adds the next block. The block's index must equal Count().
	Append(b Block) error
	Get(index uint64) (Block, bool)
	// Tip returns the highest block, if any.
	Tip() (Block, bool)
	Count() int
	// All returns the full sequence in index order.
	All() []Block
	Close() error
}

// MemoryStore is an in-memory implementation of BlockStore.
type MemoryStore struct {
	mu     sync.RWMutex
	blocks []Block
}

// NewMemoryStore creates a new in-memory block store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(b Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Index != uint64(len(s.blocks)) {
		return fmt.Errorf("block index %d, store has %d blocks", b.Index, len(s.blocks))
	}
	s.blocks = append(s.blocks, b)
	return nil
}

func (s *MemoryStore) Get(index uint64) (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index >= uint64(len(s.blocks)) {
		return Block{}, false
	}
	return s.blocks[index], true
}

func (s *MemoryStore) Tip() (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.blocks) == 0 {
		return Block{}, false
	}
	return s.blocks[len(s.blocks)-1], true
}

func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}

func (s *MemoryStore) All() []Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

func (s *MemoryStore) Close() error { return nil }
