package chain

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var bucketBlocks = []byte("blocks")

// BoltStore is a write-through persistent BlockStore backed by bbolt.
// All reads come from an in-memory copy; appends go to both memory and disk.
type BoltStore struct {
	mu     sync.RWMutex
	db     *bbolt.DB
	blocks []Block
	logger *zap.Logger
}

// NewBoltStore opens (or creates) a bbolt database at path and loads the
// stored chain into memory. Blocks are keyed by big-endian index, so a
// cursor walk yields them in height order.
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlocks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	s := &BoltStore{
		db:     db,
		logger: logger,
	}

	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBlocks)
		return b.ForEach(func(k, v []byte) error {
			blk, err := decodeBlock(v)
			if err != nil {
				return fmt.Errorf("decode block %x: %w", k, err)
			}
			if blk.Index != uint64(len(s.blocks)) {
				return fmt.Errorf("stored chain has a gap at index %d", len(s.blocks))
			}
			s.blocks = append(s.blocks, blk)
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load blocks: %w", err)
	}

	logger.Info("chain loaded from disk",
		zap.Int("blocks_loaded", len(s.blocks)),
	)

	return s, nil
}

func (s *BoltStore) Append(b Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Index != uint64(len(s.blocks)) {
		return fmt.Errorf("block index %d, store has %d blocks", b.Index, len(s.blocks))
	}

	data, err := encodeBlock(b)
	if err != nil {
		return fmt.Errorf("encode block: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlocks).Put(indexKey(b.Index), data)
	})
	if err != nil {
		return fmt.Errorf("persist block: %w", err)
	}

	s.blocks = append(s.blocks, b)
	return nil
}

func (s *BoltStore) Get(index uint64) (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index >= uint64(len(s.blocks)) {
		return Block{}, false
	}
	return s.blocks[index], true
}

func (s *BoltStore) Tip() (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.blocks) == 0 {
		return Block{}, false
	}
	return s.blocks[len(s.blocks)-1], true
}

func (s *BoltStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}

func (s *BoltStore) All() []Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func indexKey(index uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], index)
	return k[:]
}

func encodeBlock(b Block) ([]byte, error) {
	return cbor.Marshal(b)
}

func decodeBlock(data []byte) (Block, error) {
	var b Block
	err := cbor.Unmarshal(data, &b)
	return b, err
}
