package game

import (
	"encoding/binary"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

type StateHash uint64

// State is an immutable bit vector with one slot per base proposition.
// The zero State carries no bits and is used where a state is inherited.
type State struct {
	bits *bitset.BitSet
	size int
	hash StateHash
}

// NewState takes ownership of bits; callers must not modify them afterwards.
func NewState(size int, bits *bitset.BitSet) State {
	return State{bits: bits, size: size, hash: hashBits(bits)}
}

// StateOf builds a State of the given size with the listed slots set.
func StateOf(size int, on ...int) State {
	bits := bitset.New(uint(size))
	for _, i := range on {
		bits.Set(uint(i))
	}
	return NewState(size, bits)
}

func hashBits(bits *bitset.BitSet) StateHash {
	d := xxhash.New()
	var buf [8]byte
	for _, w := range bits.Bytes() {
		binary.LittleEndian.PutUint64(buf[:], w)
		_, _ = d.Write(buf[:])
	}
	return StateHash(d.Sum64())
}

func (s State) IsZero() bool {
	return s.bits == nil
}

func (s State) Len() int {
	return s.size
}

func (s State) Test(i int) bool {
	if s.bits == nil {
		return false
	}
	return s.bits.Test(uint(i))
}

func (s State) Hash() StateHash {
	return s.hash
}

// Equal compares the bit vectors.
func (s State) Equal(other State) bool {
	if s.bits == nil || other.bits == nil {
		return s.bits == other.bits
	}
	if s.size != other.size || s.hash != other.hash {
		return false
	}
	return s.bits.Equal(other.bits)
}

// Count returns the number of true base propositions.
func (s State) Count() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

func (s State) String() string {
	var b strings.Builder
	b.Grow(s.size)
	for i := 0; i < s.size; i++ {
		if s.Test(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
