package region

import (
	"testing"
	"unsafe"
)

func TestRegionAlignAllocateAlignment(t *testing.T) {
	p := NewPool(1024)
	h, err := p.GetRegion()
	if err != nil {
		t.Fatalf("GetRegion() error = %v", err)
	}
	r := h.Region()

	for _, a := range []uintptr{1, 2, 4, 8, 16, 64} {
		b, err := r.AlignAllocate(a, 3)
		if err != nil {
			t.Fatalf("AlignAllocate(%d, 3) error = %v", a, err)
		}
		addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
		if addr%a != 0 {
			t.Errorf("AlignAllocate(%d, 3) address %#x is not a multiple of %d", a, addr, a)
		}
	}
}

func TestRegionAllocationsAreDisjoint(t *testing.T) {
	p := NewPool(1024)
	h, err := p.GetRegion()
	if err != nil {
		t.Fatalf("GetRegion() error = %v", err)
	}
	r := h.Region()

	var ranges [][2]uintptr
	for i := 0; i < 8; i++ {
		b, err := r.Allocate(37)
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}
		start := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
		ranges = append(ranges, [2]uintptr{start, start + uintptr(len(b))})
	}

	for i := range ranges {
		for j := range ranges {
			if i == j {
				continue
			}
			if ranges[i][0] < ranges[j][1] && ranges[j][0] < ranges[i][1] {
				t.Fatalf("allocation %d %v overlaps allocation %d %v", i, ranges[i], j, ranges[j])
			}
		}
	}
}

func TestRegionZeroSizedAllocation(t *testing.T) {
	p := NewPool(64)
	h, err := p.GetRegion()
	if err != nil {
		t.Fatalf("GetRegion() error = %v", err)
	}
	r := h.Region()

	before := r.BlockOffset()
	b, err := r.Allocate(0)
	if err != nil {
		t.Fatalf("Allocate(0) error = %v", err)
	}
	if len(b) != 0 {
		t.Errorf("Allocate(0) length = %d, want 0", len(b))
	}
	if r.BlockOffset() != before {
		t.Errorf("BlockOffset() changed from %d to %d on a zero-sized allocation", before, r.BlockOffset())
	}
}

func TestRegionAlignPanicsOnNonPowerOfTwo(t *testing.T) {
	p := NewPool(64)
	h, _ := p.GetRegion()
	defer func() {
		if recover() == nil {
			t.Error("Align(3) did not panic")
		}
	}()
	h.Region().Align(3)
}

func TestRegionParentSlots(t *testing.T) {
	p := NewPool(64)
	a, _ := p.GetRegion()
	r := a.Region()

	r.SetNumParents(2)
	if r.NumParents() != 2 {
		t.Fatalf("NumParents() = %d, want 2", r.NumParents())
	}
	if got := r.GetParentReference(0); !got.IsNull() {
		t.Error("freshly-resized parent slot should be null")
	}

	b, _ := p.GetRegion()
	r.SetParentReference(b, 0)
	got := r.GetParentReference(0)
	if got.Region() != b.Region() {
		t.Error("GetParentReference did not return the region installed by SetParentReference")
	}
	// GetParentReference hands out its own reference.
	got.Release()
	b.Release() // A still holds an independent reference

	if p.NumFreeRegions() != 0 {
		t.Error("B should still be kept alive via A's parent slot")
	}

	r.ClearParentReference(0)
	if p.NumFreeRegions() != 1 {
		t.Error("clearing the parent slot should release B's last reference")
	}

	a.Release()
}

func TestRegionSetNumParentsShrinkReleases(t *testing.T) {
	p := NewPool(64)
	a, _ := p.GetRegion()
	r := a.Region()
	r.SetNumParents(1)

	b, _ := p.GetRegion()
	r.SetParentReference(b, 0)
	b.Release()

	if p.NumFreeRegions() != 0 {
		t.Fatal("B should still be referenced")
	}

	r.SetNumParents(0)
	if p.NumFreeRegions() != 1 {
		t.Error("shrinking the parent slots should release the truncated handle")
	}

	a.Release()
}

func TestRegionClearKeepsCurrentBlock(t *testing.T) {
	p := NewPool(64)
	h, _ := p.GetRegion()
	r := h.Region()

	r.Allocate(16)
	r.Allocate(64) // forces rollover, retiring the first block

	if r.NumUsedBlocks() != 1 {
		t.Fatalf("NumUsedBlocks() = %d, want 1", r.NumUsedBlocks())
	}

	freeBlocksBefore := p.NumFreeBlocks()
	r.Clear()

	if r.BlockOffset() != 0 {
		t.Errorf("BlockOffset() after Clear() = %d, want 0", r.BlockOffset())
	}
	if r.NumUsedBlocks() != 0 {
		t.Errorf("NumUsedBlocks() after Clear() = %d, want 0", r.NumUsedBlocks())
	}
	if p.NumFreeBlocks() != freeBlocksBefore+1 {
		t.Errorf("NumFreeBlocks() after Clear() = %d, want %d", p.NumFreeBlocks(), freeBlocksBefore+1)
	}

	// The region is still usable: it kept its current block.
	if _, err := r.Allocate(8); err != nil {
		t.Errorf("Allocate() after Clear() error = %v", err)
	}
}
