package region

import (
	"go.uber.org/zap"
)

// Pool owns every Region ever created under it and caches idle regions
// and free blocks for reuse. A Pool is not safe for concurrent use: all
// operations on a pool, the regions it vends, and their handles must be
// serialized by the caller.
type Pool struct {
	blockSize int

	regions     []*Region // every region ever created here; owns their storage
	freeRegions []*Region // idle, cleared regions available for reuse (non-owning)
	freeBlocks  []block   // recyclable blocks; contents are garbage

	log *zap.Logger
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLogger attaches a structured logger for pool/region lifecycle
// events (region creation, cascading clears, ownership transfer,
// allocation failures). The default is a no-op logger, so a Pool built
// without this option pays nothing for logging.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPool constructs an empty Pool. If blockSize <= 0, DefaultBlockSize
// is used for every block the pool hands out.
func NewPool(blockSize int, opts ...Option) *Pool {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	p := &Pool{blockSize: blockSize, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetBlock returns a block ready for bump allocation: a recycled buffer
// from the free list if one is available (LIFO, so the most recently
// released block — the most likely to still be cache-hot — comes back
// first), otherwise a freshly allocated buffer of the pool's block size.
// Contents are uninitialized either way.
func (p *Pool) GetBlock() (block, error) {
	if n := len(p.freeBlocks); n > 0 {
		b := p.freeBlocks[n-1]
		p.freeBlocks = p.freeBlocks[:n-1]
		return b, nil
	}
	b, err := newBlock(p.blockSize)
	if err != nil {
		p.log.Warn("block allocation failed", zap.Error(err))
	}
	return b, err
}

// NewRegion constructs a fresh Region under this pool, acquiring its
// first block, records it in the pool's region list, and returns a
// handle to it (bringing the new region's ref count from 0 to 1).
//
// No partial state is observable on failure: if the first block cannot
// be allocated, the pool's region list is left untouched.
func (p *Pool) NewRegion() (*RegionHandle, error) {
	b, err := p.GetBlock()
	if err != nil {
		return nil, err
	}
	r := &Region{
		pool:         p,
		currentBlock: b,
	}
	p.regions = append(p.regions, r)
	p.log.Debug("region created", zap.Int("num_regions", len(p.regions)))
	return newHandle(r), nil
}

// GetRegion returns a handle to a cleared, reusable region from the
// pool's free-region cache (LIFO reuse, same locality rationale as
// GetBlock), or delegates to NewRegion if the cache is empty. A region
// returned this way is observably cleared: empty used blocks, empty
// oversized chunks, empty parents, its retained current block with the
// offset reset to 0.
func (p *Pool) GetRegion() (*RegionHandle, error) {
	if n := len(p.freeRegions); n > 0 {
		r := p.freeRegions[n-1]
		p.freeRegions = p.freeRegions[:n-1]
		p.log.Debug("region recycled", zap.Int("num_free_regions", len(p.freeRegions)))
		return newHandle(r), nil
	}
	return p.NewRegion()
}

// NumRegions reports how many regions have ever been created under this
// pool and are still tracked by it (including idle ones).
func (p *Pool) NumRegions() int { return len(p.regions) }

// NumFreeRegions reports how many idle, cleared regions are currently
// cached for reuse.
func (p *Pool) NumFreeRegions() int { return len(p.freeRegions) }

// NumFreeBlocks reports how many recyclable blocks are currently cached.
func (p *Pool) NumFreeBlocks() int { return len(p.freeBlocks) }

// BlockSize returns the block size this pool allocates new blocks with.
func (p *Pool) BlockSize() int { return p.blockSize }

// recycleBlocks returns blocks to the pool's free-block cache. Called
// only from Region.Clear.
func (p *Pool) recycleBlocks(blocks []block) {
	p.freeBlocks = append(p.freeBlocks, blocks...)
}

// recycleRegion pushes a region whose ref count just dropped to zero
// onto the free-region list. Called only from the handle last-release
// protocol.
func (p *Pool) recycleRegion(r *Region) {
	p.freeRegions = append(p.freeRegions, r)
}

// Own migrates every still-live region (ref count != 0) from other into
// this pool: each migrated region's back-reference is rewritten to
// point at this pool, and its storage moves into this pool's region
// list. Regions in other with a zero ref count are discarded — their
// storage simply isn't carried over. After Own returns, other must not
// be used again; it owns nothing.
//
// This is the only supported cross-pool operation and exists so a
// short-lived transient pool (e.g. a builder context) can hand its
// surviving regions to a long-lived pool without copying allocations.
func (p *Pool) Own(other *Pool) {
	migrated := 0
	for _, r := range other.regions {
		if r.refCount == 0 {
			continue
		}
		r.pool = p
		p.regions = append(p.regions, r)
		migrated++
	}
	p.log.Debug("pool ownership transfer",
		zap.Int("migrated_regions", migrated),
		zap.Int("discarded_regions", len(other.regions)-migrated),
	)
	other.regions = nil
	other.freeRegions = nil
	other.freeBlocks = nil
}
