package region

import (
	"unsafe"

	"go.uber.org/zap"
)

// Region bump-allocates out of a current block, chaining full blocks
// into usedBlocks and tracking oversized allocations separately in
// bigChunks. It may also hold parent references to other regions,
// extending their lifetime for as long as this region is live.
//
// A Region is never constructed directly; it is always owned by
// exactly one Pool and reached through a RegionHandle.
type Region struct {
	pool *Pool // non-owning back-reference; relation only

	refCount uint32

	currentBlock block
	blockOffset  uintptr

	usedBlocks []block  // owned, previously filled blocks, oldest first
	bigChunks  [][]byte // owned oversized allocations, one per request > block size

	parents []*RegionHandle // index-addressable; entries may be nil
}

// Align advances the region's allocation offset to the next multiple of
// a, which must be a power of two. If the advance overshoots the pool's
// block size, the current block is left "full": align itself does not
// roll the region to a new block, the next Allocate/AlignAllocate call
// does.
func (r *Region) Align(a uintptr) {
	if r == nil {
		panicNilRegion()
	}
	if !isPowerOfTwo(a) {
		panicNotPowerOfTwo(a)
	}
	mask := a - 1
	r.blockOffset = (r.blockOffset + mask) &^ mask
}

// Allocate reserves n bytes with no alignment requirement stricter than
// 1. It is equivalent to AlignAllocate(1, n).
func (r *Region) Allocate(n uintptr) ([]byte, error) {
	return r.AlignAllocate(1, n)
}

// AlignAllocate aligns the region's offset to a, then reserves n bytes,
// returning a slice over the reserved memory. Requests larger than the
// pool's block size get a dedicated, unpooled chunk; requests that fit
// in the current block are served by the bump pointer; requests that
// don't fit roll the region onto a fresh block from the pool.
//
// A zero-sized request returns a valid, aligned zero-length slice
// without rolling the region to a new block, unless aligning to a has
// pushed the offset past the end of the current block; it then rolls
// like any other request that does not fit.
//
// On failure the region is left as it was, its offset included.
func (r *Region) AlignAllocate(a, n uintptr) ([]byte, error) {
	if r == nil {
		panicNilRegion()
	}
	prevOffset := r.blockOffset
	r.Align(a)

	blockSize := uintptr(r.pool.blockSize)

	if n > blockSize {
		buf, err := newBlock(int(n))
		if err != nil {
			r.blockOffset = prevOffset
			r.pool.log.Warn("oversized chunk allocation failed", zap.Uintptr("requested_bytes", n), zap.Error(err))
			return nil, err
		}
		r.bigChunks = append(r.bigChunks, buf.buf)
		return buf.buf, nil
	}

	if r.blockOffset+n <= blockSize {
		start := r.blockOffset
		r.blockOffset += n
		return sliceAt(r.currentBlock.buf, start, n), nil
	}

	b, err := r.allocateNewBlock(n)
	if err != nil {
		r.blockOffset = prevOffset
	}
	return b, err
}

// allocateNewBlock retires the current block to usedBlocks, acquires a
// fresh block from the owning pool, and serves n bytes from its start.
func (r *Region) allocateNewBlock(n uintptr) ([]byte, error) {
	newB, err := r.pool.GetBlock()
	if err != nil {
		return nil, err
	}
	r.usedBlocks = append(r.usedBlocks, r.currentBlock)
	r.currentBlock = newB
	r.blockOffset = n
	return sliceAt(r.currentBlock.buf, 0, n), nil
}

// sliceAt returns buf[start:start+n] via unsafe.Slice, avoiding the
// bounds-check overhead of a plain slice expression on the hot
// allocation path.
func sliceAt(buf []byte, start, n uintptr) []byte {
	if n == 0 {
		if int(start) >= len(buf) {
			return buf[len(buf):]
		}
		return buf[start:start]
	}
	return unsafe.Slice(&buf[start], n)
}

// BlockOffset reports the next free byte offset in the region's current
// block. Exposed for diagnostics and testing.
func (r *Region) BlockOffset() uintptr { return r.blockOffset }

// NumUsedBlocks reports how many full blocks this region has retired
// since its last clear.
func (r *Region) NumUsedBlocks() int { return len(r.usedBlocks) }

// NumBigChunks reports how many oversized, unpooled chunks this region
// currently owns.
func (r *Region) NumBigChunks() int { return len(r.bigChunks) }

// AddReferenceTo appends other to this region's parent list, taking an
// independent reference: the caller's own handle to other remains valid
// and must still be released separately.
func (r *Region) AddReferenceTo(other *RegionHandle) {
	if r == nil {
		panicNilRegion()
	}
	r.parents = append(r.parents, other.clone())
}

// NumParents reports the current size of the parent slot array.
func (r *Region) NumParents() int { return len(r.parents) }

// SetNumParents resizes the parent slot array to exactly n, padding new
// slots with null handles and releasing any handles truncated off the
// end.
func (r *Region) SetNumParents(n int) {
	if r == nil {
		panicNilRegion()
	}
	switch {
	case n < len(r.parents):
		for _, h := range r.parents[n:] {
			h.Release()
		}
		r.parents = r.parents[:n:n]
	case n > len(r.parents):
		grown := make([]*RegionHandle, n)
		copy(grown, r.parents)
		r.parents = grown
	}
}

// SetParentReference installs other at parent slot i, releasing
// whatever handle previously occupied that slot.
func (r *Region) SetParentReference(other *RegionHandle, i int) {
	if r == nil {
		panicNilRegion()
	}
	if i < 0 || i >= len(r.parents) {
		panicParentIndex(i, len(r.parents))
	}
	old := r.parents[i]
	r.parents[i] = other.clone()
	old.Release()
}

// GetParentReference returns a fresh reference to the handle at parent
// slot i, or nil if the slot is empty. The slot itself is unchanged.
func (r *Region) GetParentReference(i int) *RegionHandle {
	if r == nil {
		panicNilRegion()
	}
	if i < 0 || i >= len(r.parents) {
		panicParentIndex(i, len(r.parents))
	}
	return r.parents[i].clone()
}

// NewParentReference asks this region's pool for a fresh region,
// installs it at parent slot i, and returns a reference to it. Used by
// the binding layer to lazily materialize a parent slot on first
// access.
func (r *Region) NewParentReference(i int) (*RegionHandle, error) {
	if r == nil {
		panicNilRegion()
	}
	if i < 0 || i >= len(r.parents) {
		panicParentIndex(i, len(r.parents))
	}
	h, err := r.pool.GetRegion()
	if err != nil {
		return nil, err
	}
	old := r.parents[i]
	r.parents[i] = h.clone()
	old.Release()
	return h, nil
}

// ClearParentReference releases and nulls parent slot i.
func (r *Region) ClearParentReference(i int) {
	if r == nil {
		panicNilRegion()
	}
	if i < 0 || i >= len(r.parents) {
		panicParentIndex(i, len(r.parents))
	}
	old := r.parents[i]
	r.parents[i] = nil
	old.Release()
}

// Clear performs the bulk-reclamation protocol: the current block is
// kept (the region stays armed for its next user), used blocks return
// to the pool's block cache, oversized chunks are freed outright, and
// parent handles release — which may itself cascade into further
// clears if this region held the last reference to a parent.
//
// Clear runs as part of the last-release protocol, and may also be
// called on a live region to reset it in place; slices the region
// returned before the call then point into blocks the pool may hand to
// other regions.
func (r *Region) Clear() {
	r.blockOffset = 0

	if len(r.usedBlocks) > 0 {
		r.pool.recycleBlocks(r.usedBlocks)
		r.usedBlocks = nil
	}

	r.bigChunks = nil

	parents := r.parents
	r.parents = nil
	for _, h := range parents {
		h.Release()
	}
}
