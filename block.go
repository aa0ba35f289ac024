package region

import "github.com/pkg/errors"

// DefaultBlockSize is the block size used when a Pool is constructed
// with size <= 0 (64 KiB).
const DefaultBlockSize = 1 << 16

// ErrAllocationFailed is returned when the underlying host allocator
// cannot provide a block or an oversized chunk. This leaves no partial
// state: neither the pool nor the requesting region is mutated before
// this error surfaces.
var ErrAllocationFailed = errors.New("region: host allocator exhausted")

// block is a fixed-size owned byte buffer used as a bump-allocation
// slab. It carries no header; it is pure capacity. Contents are
// uninitialized whether freshly allocated or recycled from a pool.
type block struct {
	buf []byte
}

// newBlock allocates a fresh block of the given size, recovering from
// the runtime OOM panic that a failing make([]byte, n) raises and
// turning it into ErrAllocationFailed so callers get an ordinary error
// instead of a process-ending panic.
func newBlock(size int) (b block, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = block{}
			err = errors.Wrapf(ErrAllocationFailed, "allocate %d-byte block: %v", size, r)
		}
	}()
	return block{buf: make([]byte, size)}, nil
}
