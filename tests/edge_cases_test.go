package tests

import (
	"testing"

	region "github.com/GreatBrando/hail"
	"github.com/GreatBrando/hail/binding"
)

// TestEdgeCases covers boundary behavior and documented edge cases,
// exercised as an external consumer of the module rather than from
// inside the package.
func TestEdgeCases(t *testing.T) {
	t.Run("ZeroAndNegativeBlockSizes", func(t *testing.T) {
		cases := []struct {
			size     int
			expected int
		}{
			{0, region.DefaultBlockSize},
			{-1, region.DefaultBlockSize},
			{-1 << 20, region.DefaultBlockSize},
			{128, 128},
		}
		for _, c := range cases {
			p := region.NewPool(c.size)
			if got := p.BlockSize(); got != c.expected {
				t.Errorf("NewPool(%d).BlockSize() = %d, want %d", c.size, got, c.expected)
			}
		}
	})

	t.Run("BlockOffsetNeverExceedsBlockSizeAcrossLiveAllocation", func(t *testing.T) {
		p := region.NewPool(256)
		h, err := p.GetRegion()
		if err != nil {
			t.Fatalf("GetRegion() error = %v", err)
		}
		r := h.Region()
		for i := 0; i < 50; i++ {
			if _, err := r.Allocate(7); err != nil {
				t.Fatalf("Allocate() error = %v", err)
			}
			if r.BlockOffset() > uintptr(p.BlockSize()) {
				t.Fatalf("BlockOffset() = %d exceeds BlockSize() = %d after allocation %d", r.BlockOffset(), p.BlockSize(), i)
			}
		}
		h.Release()
	})

	t.Run("FreeRegionsNeverExceedRegions", func(t *testing.T) {
		p := region.NewPool(64)
		var handles []*region.RegionHandle
		for i := 0; i < 5; i++ {
			h, err := p.GetRegion()
			if err != nil {
				t.Fatalf("GetRegion() error = %v", err)
			}
			handles = append(handles, h)
		}
		for _, h := range handles {
			h.Release()
		}
		if p.NumRegions() < p.NumFreeRegions() {
			t.Fatalf("NumRegions() = %d is less than NumFreeRegions() = %d", p.NumRegions(), p.NumFreeRegions())
		}
	})

	t.Run("AtMostKSimultaneousLiveRegionsBoundsNumRegions", func(t *testing.T) {
		p := region.NewPool(64)
		const k = 3
		live := make([]*region.RegionHandle, 0, k)

		for round := 0; round < 10; round++ {
			if len(live) == k {
				live[0].Release()
				live = live[1:]
			}
			h, err := p.GetRegion()
			if err != nil {
				t.Fatalf("GetRegion() error = %v", err)
			}
			live = append(live, h)
		}
		for _, h := range live {
			h.Release()
		}
		if p.NumRegions() > k {
			t.Errorf("NumRegions() = %d, want <= %d", p.NumRegions(), k)
		}
	})

	t.Run("BindingOwnershipTransferRoundTrip", func(t *testing.T) {
		transient := binding.NewPool(64, nil)
		slot, err := binding.NewRegionSlot(transient)
		if err != nil {
			t.Fatalf("NewRegionSlot() error = %v", err)
		}
		if _, err := slot.Allocate(8); err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}

		longLived := binding.NewPool(64, nil)
		longLived.Own(transient)
		if longLived.NumRegions() != 1 {
			t.Fatalf("NumRegions() after Own = %d, want 1", longLived.NumRegions())
		}

		slot.Drop()
		if longLived.NumFreeRegions() != 1 {
			t.Errorf("NumFreeRegions() = %d, want 1", longLived.NumFreeRegions())
		}
	})
}
