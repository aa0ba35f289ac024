// Package region implements a region-based memory allocator: a
// bump-pointer arena with pooled block recycling, inter-region lifetime
// dependencies, and reference-counted region handles.
//
// # Overview
//
// A Pool owns every Region ever created under it, and caches idle
// Regions and free Blocks for reuse. A Region bump-allocates out of a
// current Block, chaining full blocks and tracking oversized chunks
// separately. A RegionHandle reference-counts a Region; when the last
// handle drops, the region clears in bulk and returns itself to the
// pool's free list.
//
// This design is suited to short-lived data whose lifetime tracks a
// logical scope rather than individual objects: many small allocations
// share one region, and the whole region is reclaimed at once.
//
// # Basic usage
//
//	p := region.NewPool(0) // 0 selects the default block size
//	h, err := p.GetRegion()
//	if err != nil {
//		// handle allocation failure
//	}
//	defer h.Release()
//
//	buf, err := h.Region().AlignAllocate(8, 128) // 8-byte aligned, 128 bytes
//
// # Lifetime extension
//
// A region can extend another region's lifetime by holding a parent
// reference to it:
//
//	other, err := p.GetRegion()
//	h.Region().AddReferenceTo(other)
//
// other's storage stays live for as long as h's region is live, even
// after the caller drops its own handle to other.
//
// # Thread safety
//
// A Pool and the regions under it are not safe for concurrent use.
// Every operation on a pool, its regions, their handles, and the bytes
// they vend must be serialized by the caller. Distinct pools may be
// driven by distinct goroutines provided no region, handle, or
// allocated byte crosses between them.
//
// # Out of scope
//
// This package allocates bytes; it does not interpret them. Binding an
// external host runtime to these primitives — exposing slots instead of
// Go pointers — lives in the binding subpackage.
package region
