package region

import "go.uber.org/zap"

// RegionHandle is a reference-counted reference to a Region. A handle
// is either null (its zero value, or nil *RegionHandle) or points at a
// live region. Handles are not a plain Go value type: copying the
// struct directly would desynchronize the region's ref count from the
// number of outstanding references, so a RegionHandle is always used
// through a pointer and shared via Clone, never via `h2 := *h1`.
type RegionHandle struct {
	region *Region
}

// newHandle wraps region in a new handle, incrementing its ref count
// from 0 to 1. Used only by Pool.NewRegion/GetRegion, which hand out
// the region's first live reference.
func newHandle(r *Region) *RegionHandle {
	r.refCount++
	return &RegionHandle{region: r}
}

// Region returns the region this handle refers to, or nil if the handle
// is null.
func (h *RegionHandle) Region() *Region {
	if h == nil {
		return nil
	}
	return h.region
}

// IsNull reports whether this handle (or the handle pointer itself) is
// null.
func (h *RegionHandle) IsNull() bool {
	return h == nil || h.region == nil
}

// clone returns a new handle to the same region, incrementing its ref
// count. Cloning a nil handle, or a handle to a nil region, yields a
// nil handle.
func (h *RegionHandle) clone() *RegionHandle {
	if h.IsNull() {
		return nil
	}
	h.region.refCount++
	return &RegionHandle{region: h.region}
}

// Clone returns a new handle sharing ownership of the same region,
// incrementing its ref count. The caller is responsible for releasing
// both the original and the clone independently.
func (h *RegionHandle) Clone() *RegionHandle {
	return h.clone()
}

// Release decrements the referenced region's ref count. Releasing a nil
// handle, or a handle that has already been released, is a no-op. When
// the count reaches zero this runs the last-release protocol: the
// region clears (which may itself cascade into releasing this region's
// parent handles) and is pushed onto the owning pool's free-region
// list. After Release, the handle no longer refers to any region.
func (h *RegionHandle) Release() {
	if h.IsNull() {
		return
	}
	r := h.region
	h.region = nil

	r.refCount--
	if r.refCount == 0 {
		r.pool.log.Debug("region released, clearing",
			zap.Int("used_blocks", len(r.usedBlocks)),
			zap.Int("parents", len(r.parents)),
		)
		r.Clear()
		r.pool.recycleRegion(r)
	}
}

// Pool returns the pool that owns this handle's region, or nil if the
// handle is null. Used by the binding layer's region_refresh operation,
// which must look up the owning pool before releasing the old handle.
func (h *RegionHandle) Pool() *Pool {
	if h.IsNull() {
		return nil
	}
	return h.region.pool
}
