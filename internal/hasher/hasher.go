package hasher

import (
	"encoding/binary"
	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/maphash"
	"github.com/google/uuid"
	"golang.org/x/exp/constraints"
	"math"
	"math/bits"
	"unsafe"
)

// Hasher maps a key to a fixed-width hash code.
// Implementations must be pure: the same key always yields the same hash code for the lifetime of a table.
type Hasher[K any] interface {
	GetHashCode(key K) uint64
}

// Func adapts an ordinary function to the Hasher interface
type Func[K any] func(key K) uint64

// GetHashCode calls fn(key)
func (fn Func[K]) GetHashCode(key K) uint64 {
	return fn(key)
}

const (
	fnvOffsetBasis uint64 = 14695981039346656037
	fnvPrime       uint64 = 1099511628211
)

// String hashes string keys using 64-bit FNV-1a
type String[S ~string] struct{}

// GetHashCode returns the FNV-1a hash of the bytes of key
func (String[S]) GetHashCode(key S) uint64 {
	hash := fnvOffsetBasis
	for i := 0; i < len(key); i++ {
		hash ^= uint64(key[i])
		hash *= fnvPrime
	}
	return hash
}

// Bytes hashes byte slice keys using XXH64
type Bytes struct{}

// GetHashCode returns the XXH64 hash of key
func (Bytes) GetHashCode(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// Number hashes integer and floating point keys using XXH64 over their little-endian representation.
// Negative floating point zero hashes like positive zero, as both compare equal.
type Number[T constraints.Integer | constraints.Float] struct{}

// GetHashCode returns the XXH64 hash of the raw bytes of key
func (Number[T]) GetHashCode(key T) uint64 {
	var buf [8]byte
	size := int(unsafe.Sizeof(key))
	var one T = 1
	if key == 0 {
		key = 0
	}
	switch {
	case one/2 == 0:
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
	case size == 4:
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(key)))
	default:
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(float64(key)))
	}
	return xxhash.Sum64(buf[:size])
}

// Bool hashes boolean keys the same way Number hashes a single byte
type Bool struct{}

// GetHashCode returns the XXH64 hash of the byte representation of key
func (Bool) GetHashCode(key bool) uint64 {
	var b uint8
	if key {
		b = 1
	}
	return Number[uint8]{}.GetHashCode(b)
}

// UUID hashes UUID keys using XXH64 over their 16 bytes
type UUID struct{}

// GetHashCode returns the XXH64 hash of key
func (UUID) GetHashCode(key uuid.UUID) uint64 {
	return xxhash.Sum64(key[:])
}

// Pointer hashes pointer keys by their address.
// The low bits that are always zero because of the pointee's alignment are shifted out.
type Pointer[T any] struct{}

// GetHashCode returns the shifted address of key
func (Pointer[T]) GetHashCode(key *T) uint64 {
	var zero T
	shift := bits.Len64(uint64(1+unsafe.Sizeof(zero))) - 1
	return uint64(uintptr(unsafe.Pointer(key))) >> shift
}

// Maphash hashes any comparable key using the Go runtime's map hash function.
// Hash codes are seeded per Maphash instance, so they are stable only for that instance.
type Maphash[K comparable] struct {
	hasher maphash.Hasher[K]
}

// NewMaphash creates a new randomly seeded runtime hasher
func NewMaphash[K comparable]() *Maphash[K] {
	return &Maphash[K]{
		hasher: maphash.NewHasher[K](),
	}
}

// GetHashCode returns the runtime hash of key
func (obj *Maphash[K]) GetHashCode(key K) uint64 {
	return obj.hasher.Hash(key)
}

// Default returns the hasher used by tables that were not configured with an explicit one.
// Strings, numbers, booleans and UUIDs use the dedicated hashers of this package; every other key type falls back to
// Maphash.
func Default[K comparable]() Hasher[K] {
	var key K
	var hasher any
	switch any(key).(type) {
	case string:
		hasher = String[string]{}
	case int:
		hasher = Number[int]{}
	case int8:
		hasher = Number[int8]{}
	case int16:
		hasher = Number[int16]{}
	case int32:
		hasher = Number[int32]{}
	case int64:
		hasher = Number[int64]{}
	case uint:
		hasher = Number[uint]{}
	case uint8:
		hasher = Number[uint8]{}
	case uint16:
		hasher = Number[uint16]{}
	case uint32:
		hasher = Number[uint32]{}
	case uint64:
		hasher = Number[uint64]{}
	case uintptr:
		hasher = Number[uintptr]{}
	case float32:
		hasher = Number[float32]{}
	case float64:
		hasher = Number[float64]{}
	case bool:
		hasher = Bool{}
	case uuid.UUID:
		hasher = UUID{}
	default:
		return NewMaphash[K]()
	}
	return hasher.(Hasher[K])
}

// Combine mixes several hash codes into seed, in order
func Combine(seed uint64, hashes ...uint64) uint64 {
	for _, hash := range hashes {
		seed ^= hash + 0x9e3779b9 + (seed << 6) + (seed >> 2)
	}
	return seed
}
