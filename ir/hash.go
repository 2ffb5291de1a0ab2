package ir

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/gomlx/exceptions"
)

// Hash is the structural hash of a node, or of any value participating in one.
type Hash uint64

// HashSeed is the seed used for nodes whose op kind alone should seed the hash.
const HashSeed Hash = 0x5a2d296e9f5d5d27

// String implements fmt.Stringer.
func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// HashCombine mixes b into a. The order of the arguments matters.
func HashCombine(a, b Hash) Hash {
	return a ^ (b + 0x9e3779b97f4a7c15 + (a << 6) + (a >> 2))
}

// MHash hashes the given values together.
//
// Supported values are integers, bools, strings, Hash, OpKind and slices of int or int64.
// Anything else is a programming error and panics.
func MHash(values ...any) Hash {
	buf := make([]byte, 0, 8*(len(values)+1))
	for _, v := range values {
		switch x := v.(type) {
		case int:
			buf = appendTagged(buf, 'i', uint64(x))
		case int32:
			buf = appendTagged(buf, 'i', uint64(x))
		case int64:
			buf = appendTagged(buf, 'i', uint64(x))
		case uint64:
			buf = appendTagged(buf, 'u', x)
		case bool:
			var b uint64
			if x {
				b = 1
			}
			buf = appendTagged(buf, 'b', b)
		case Hash:
			buf = appendTagged(buf, 'h', uint64(x))
		case string:
			buf = appendTagged(buf, 's', uint64(len(x)))
			buf = append(buf, x...)
		case OpKind:
			buf = appendTagged(buf, 'o', uint64(len(x)))
			buf = append(buf, x...)
		case []int:
			buf = appendTagged(buf, 'l', uint64(len(x)))
			for _, e := range x {
				buf = binary.LittleEndian.AppendUint64(buf, uint64(e))
			}
		case []int64:
			buf = appendTagged(buf, 'l', uint64(len(x)))
			for _, e := range x {
				buf = binary.LittleEndian.AppendUint64(buf, uint64(e))
			}
		default:
			exceptions.Panicf("ir.MHash: unsupported value type %T", v)
		}
	}
	return Hash(xxhash.Sum64(buf))
}

func appendTagged(buf []byte, tag byte, v uint64) []byte {
	buf = append(buf, tag)
	return binary.LittleEndian.AppendUint64(buf, v)
}
