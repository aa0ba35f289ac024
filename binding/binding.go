// Package binding is the thin adapter that exposes the region package's
// pool/region operations to an external host runtime. A host runtime
// addresses regions by slot — an opaque, mutable cell that may be
// refreshed or dropped in place — rather than by Go pointer, the same
// way the allocator's original JNI glue addressed regions by a native
// pointer stashed on a managed-side object.
//
// Nothing in this package allocates or frees memory itself; every
// operation here forwards to the region package and translates its
// results (byte slices, handles) into the flatter vocabulary — raw
// addresses, slots — a foreign-function boundary expects.
package binding

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/GreatBrando/hail"
)

// PoolHandle is the host-visible wrapper around a region.Pool.
type PoolHandle struct {
	pool *region.Pool
	log  *zap.Logger
}

// NewPool constructs a pool-backed PoolHandle. If blockSize <= 0,
// region.DefaultBlockSize is used.
func NewPool(blockSize int, log *zap.Logger) *PoolHandle {
	if log == nil {
		log = zap.NewNop()
	}
	return &PoolHandle{
		pool: region.NewPool(blockSize, region.WithLogger(log)),
		log:  log,
	}
}

// NumRegions implements pool_num_regions.
func (p *PoolHandle) NumRegions() int { return p.pool.NumRegions() }

// NumFreeRegions implements pool_num_free_regions.
func (p *PoolHandle) NumFreeRegions() int { return p.pool.NumFreeRegions() }

// NumFreeBlocks implements pool_num_free_blocks.
func (p *PoolHandle) NumFreeBlocks() int { return p.pool.NumFreeBlocks() }

// Own implements the BindingLayer's ownership-transfer operation: every
// still-live region under other migrates into p, and other is left
// exhausted. This is the only permitted cross-pool transfer, intended
// for handing a transient builder pool's survivors to a long-lived one
// without copying allocations.
func (p *PoolHandle) Own(other *PoolHandle) {
	p.pool.Own(other.pool)
	p.log.Debug("pool took ownership of transient pool's live regions")
}

// RegionSlot is a mutable cell holding a *region.RegionHandle (possibly
// null), addressed by the host in place of a Go pointer. Its region_*
// family of slot operations — refresh, drop, and the indexed parent
// accessors — all mutate the slot rather than returning a new one.
type RegionSlot struct {
	handle *region.RegionHandle
}

// NewRegionSlot implements region_new: acquires a region from p and
// stores its handle in a fresh slot.
func NewRegionSlot(p *PoolHandle) (*RegionSlot, error) {
	h, err := p.pool.GetRegion()
	if err != nil {
		return nil, err
	}
	return &RegionSlot{handle: h}, nil
}

// NewEmptyRegionSlot implements region_new_empty: a slot holding a null
// handle, to be populated later via Refresh or GetParentInto.
func NewEmptyRegionSlot() *RegionSlot {
	return &RegionSlot{}
}

// Region returns the underlying region.Region for direct access to
// allocation/parent primitives not re-exposed here, or nil if the slot
// is empty.
func (s *RegionSlot) Region() *region.Region {
	return s.handle.Region()
}

// Clear implements region_clear: clears the region in place without
// releasing the slot's handle, equivalent to the observable effects of
// dropping the last handle but retaining the slot for reuse.
func (s *RegionSlot) Clear() {
	if r := s.handle.Region(); r != nil {
		r.Clear()
	}
}

// Align implements region_align.
func (s *RegionSlot) Align(a uintptr) {
	s.requireRegion().Align(a)
}

// AlignAllocate implements region_align_allocate, returning a raw
// address into pool-owned memory valid until the region next clears or
// its last handle drops.
func (s *RegionSlot) AlignAllocate(a, n uintptr) (uintptr, error) {
	b, err := s.requireRegion().AlignAllocate(a, n)
	if err != nil {
		return 0, err
	}
	return addrOf(b), nil
}

// Allocate implements region_allocate.
func (s *RegionSlot) Allocate(n uintptr) (uintptr, error) {
	b, err := s.requireRegion().Allocate(n)
	if err != nil {
		return 0, err
	}
	return addrOf(b), nil
}

// AddReference implements region_add_reference.
func (s *RegionSlot) AddReference(other *RegionSlot) {
	s.requireRegion().AddReferenceTo(other.handle)
}

// Refresh implements region_refresh: releases the slot's current
// handle and acquires a fresh region from the same pool into the same
// slot.
func (s *RegionSlot) Refresh() error {
	pool := s.handle.Pool()
	if pool == nil {
		panic("binding: region_refresh on a null region slot")
	}
	s.handle.Release()
	h, err := pool.GetRegion()
	if err != nil {
		s.handle = nil
		return err
	}
	s.handle = h
	return nil
}

// Drop implements region_drop: releases the slot's handle and nulls it.
func (s *RegionSlot) Drop() {
	s.handle.Release()
	s.handle = nil
}

// NumParents implements region_num_parents.
func (s *RegionSlot) NumParents() int {
	return s.requireRegion().NumParents()
}

// SetNumParents implements region_set_num_parents.
func (s *RegionSlot) SetNumParents(n int) {
	s.requireRegion().SetNumParents(n)
}

// SetParent implements region_set_parent.
func (s *RegionSlot) SetParent(other *RegionSlot, i int) {
	s.requireRegion().SetParentReference(other.handle, i)
}

// GetParentInto implements region_get_parent_into: fetches the handle
// at parent slot i and deposits it into dest. If the slot is empty, a
// fresh region is auto-allocated via new_parent_reference and deposited
// instead.
func (s *RegionSlot) GetParentInto(dest *RegionSlot, i int) error {
	r := s.requireRegion()
	h := r.GetParentReference(i)
	if h.IsNull() {
		var err error
		h, err = r.NewParentReference(i)
		if err != nil {
			return err
		}
	}
	dest.handle.Release()
	dest.handle = h
	return nil
}

// ClearParent implements region_clear_parent.
func (s *RegionSlot) ClearParent(i int) {
	s.requireRegion().ClearParentReference(i)
}

func (s *RegionSlot) requireRegion() *region.Region {
	r := s.handle.Region()
	if r == nil {
		panic("binding: operation on a null region slot")
	}
	return r
}

// addrOf returns the address of b's backing array, including for a
// valid zero-length slice returned by a zero-sized allocation.
func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
