package chain

import (
	"fmt"
	"strconv"
)

// Block is one entry in the chain, immutable once appended. Prime is the
// probable prime found for this block and A..D are the factors it was built
// from, satisfying Prime == A*D + B*C with gcd(A,B) == gcd(C,D) == 1.
//
// Hash is the hex encoding of Prime XOR the previous block's Prime. It is a
// deterministic link field with no tamper resistance whatsoever; treat it as
// chain plumbing, never as a cryptographic digest.
type Block struct {
	Index    uint64 `json:"index" cbor:"1,keyasint"`
	PrevHash string `json:"prev_hash" cbor:"2,keyasint"`
	Prime    uint64 `json:"prime" cbor:"3,keyasint"`
	A        uint64 `json:"a" cbor:"4,keyasint"`
	B        uint64 `json:"b" cbor:"5,keyasint"`
	C        uint64 `json:"c" cbor:"6,keyasint"`
	D        uint64 `json:"d" cbor:"7,keyasint"`
	Hash     string `json:"hash" cbor:"8,keyasint"`
}

// Genesis returns the fixed sentinel first block. Every chain starts with
// exactly this value and it is never mutated.
func Genesis() Block {
	return Block{
		Index:    0,
		PrevHash: "0",
		Prime:    2,
		A:        1,
		B:        1,
		C:        1,
		D:        1,
		Hash:     "genesis",
	}
}

// NewBlock builds the successor of prev for a freshly found prime and its
// four factors.
func NewBlock(prev Block, prime, a, b, c, d uint64) Block {
	return Block{
		Index:    prev.Index + 1,
		PrevHash: prev.Hash,
		Prime:    prime,
		A:        a,
		B:        b,
		C:        c,
		D:        d,
		Hash:     strconv.FormatUint(prime^prev.Prime, 16),
	}
}

// CheckLink verifies that b is a valid successor of prev.
func (b Block) CheckLink(prev Block) error {
	if b.Index != prev.Index+1 {
		return fmt.Errorf("index %d does not follow %d", b.Index, prev.Index)
	}
	if b.PrevHash != prev.Hash {
		return fmt.Errorf("prev_hash %q does not match tip hash %q", b.PrevHash, prev.Hash)
	}
	return nil
}
