package buddy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/hashmap"

	"github.com/joshuapare/budkit/heap/page"
)

// Ptr is the address of caller-visible memory handed out by Allocate.
type Ptr = page.Addr

// Allocator defines the interface for heap allocation and release.
//
// Implementations:
//   - BuddyAllocator: the single-threaded buddy heap
//   - Locked: a mutex-serialised wrapper around any Allocator
type Allocator interface {
	// Allocate reserves size bytes and returns the pointer and a slice
	// aliasing them (len == size).
	Allocate(size int) (Ptr, []byte, error)

	// Release returns memory obtained from Allocate. size must be the size
	// passed to Allocate, or one rounding to the same class.
	Release(ptr Ptr, size int) error

	// Bytes re-resolves a live allocation into its memory.
	Bytes(ptr Ptr, size int) ([]byte, error)
}

// Small-block tag: magic in the upper bits, class in the low byte.
const (
	tagMagic     uint64 = 0xB0DDB10CBADC0000
	tagMagicMask uint64 = ^uint64(0xFF)
	tagClassMask uint64 = 0xFF
)

// BuddyAllocator is a buddy-system heap over pages from a page.Provider.
//
// The first small allocation acquires a directory page holding one free list
// per size class. Further pages are acquired when no free block is large
// enough and returned as soon as their last block is released. Requests that
// need a whole page bypass the lists and get a dedicated page.
//
// A BuddyAllocator is not safe for concurrent use; wrap it in Locked.
type BuddyAllocator struct {
	provider page.Provider
	cfg      Config
	l        layout
	log      *slog.Logger

	// dir is the base of the directory page, 0 before bootstrap.
	dir page.Addr

	// pages maps every held page base to its memory.
	pages *hashmap.Map[page.Addr, []byte]

	stats Stats
}

// New creates a heap drawing pages from p.
//
// Parameters:
//   - p: page source; its PageSize must equal cfg.PageSize
//   - cfg: heap geometry (use nil for DefaultConfig adapted to p's page size)
func New(p page.Provider, cfg *Config) (*BuddyAllocator, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil page provider", ErrBadConfig)
	}
	var c Config
	if cfg == nil {
		c = DefaultConfig
		c.PageSize = p.PageSize()
	} else {
		c = *cfg
	}
	c = c.withDefaults(p)
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.PageSize != p.PageSize() {
		return nil, fmt.Errorf("%w: config page size %d != provider page size %d",
			ErrBadConfig, c.PageSize, p.PageSize())
	}

	return &BuddyAllocator{
		provider: p,
		cfg:      c,
		l:        newLayout(c),
		log:      newLogger(c.Logger),
		pages:    hashmap.New[page.Addr, []byte](16),
	}, nil
}

// Config returns the effective configuration.
func (ba *BuddyAllocator) Config() Config {
	return ba.cfg
}

// Allocate reserves size bytes.
//
// Sizes whose block would exceed half a page are served from a dedicated
// page; sizes beyond a dedicated page's capacity fail with ErrTooLarge.
// Provider exhaustion is returned wrapped (errors.Is(err, page.ErrExhausted)).
func (ba *BuddyAllocator) Allocate(size int) (Ptr, []byte, error) {
	ba.stats.AllocCalls++

	k, err := ba.l.classFor(size)
	if err != nil {
		return 0, nil, err
	}
	if k == ba.l.numClasses {
		return ba.allocateLargeBlockPage(size)
	}

	if err := ba.initializeFirstPage(); err != nil {
		return 0, nil, err
	}

	block, found, ok := ba.findSmallestBlockOfAtLeastSize(k)
	if ok {
		ba.stats.AllocFastPath++
	} else {
		ba.stats.AllocSlowPath++
		if err := ba.allocatePage(); err != nil {
			// The directory may have been bootstrapped for this call alone.
			if ferr := ba.attemptToFreeFirstPage(); ferr != nil {
				return 0, nil, errors.Join(err, ferr)
			}
			return 0, nil, err
		}
		block, found, ok = ba.findSmallestBlockOfAtLeastSize(k)
		if !ok {
			return 0, nil, fmt.Errorf("%w: no class-%d block after adding a page", ErrCorrupt, k)
		}
	}

	block = ba.splitFreeBlock(block, k, found)
	base := ba.l.pageOf(block)
	ba.setLive(base, ba.liveOf(base)+1)
	if ba.l.tag > 0 {
		ba.writeWord(block, tagMagic|uint64(k))
	}

	ba.stats.BytesRequested += int64(size)
	ba.stats.BytesReserved += int64(ba.l.blockSize(k))

	ptr := block + page.Addr(ba.l.tag)
	return ptr, ba.bytesAt(ptr, size), nil
}

// Release returns memory obtained from Allocate.
//
// The caller MUST pass the size used at allocation time, or a size that
// rounds to the same class. The block's class is recomputed from that size.
// With tags enabled (the default) a mismatch is reported as ErrSizeMismatch
// and foreign or already released pointers as ErrBadPointer. With
// Config.DisableTags the size is trusted: a wrong size or a double release
// corrupts the heap.
func (ba *BuddyAllocator) Release(ptr Ptr, size int) error {
	ba.stats.ReleaseCalls++

	k, err := ba.l.classFor(size)
	if err != nil {
		return err
	}
	if k == ba.l.numClasses {
		if err := ba.freeLargeBlockPage(ptr, size); err != nil {
			return err
		}
		return ba.attemptToFreeFirstPage()
	}

	block, err := ba.smallBlock(ptr, k)
	if err != nil {
		return err
	}
	if ba.l.tag > 0 {
		ba.writeWord(block, 0)
	}

	merged, mk := ba.coalesceBlock(block, k)
	if mk >= ba.l.numClasses {
		return fmt.Errorf("%w: block %#x coalesced into a whole page while its header is reserved", ErrCorrupt, block)
	}
	ba.addBlockToFreeList(merged, mk)

	base := ba.l.pageOf(block)
	live := ba.liveOf(base) - 1
	ba.setLive(base, live)
	ba.stats.BytesRequested -= int64(size)
	ba.stats.BytesReserved -= int64(ba.l.blockSize(k))

	if live == 0 && base != ba.dir {
		if err := ba.freePage(base); err != nil {
			return err
		}
	}
	return ba.attemptToFreeFirstPage()
}

// smallBlock validates ptr as a live class-k allocation and returns its block.
func (ba *BuddyAllocator) smallBlock(ptr Ptr, k int) (page.Addr, error) {
	if ptr < page.Addr(ba.l.tag) {
		return 0, fmt.Errorf("%w: %#x", ErrBadPointer, ptr)
	}
	block := ptr - page.Addr(ba.l.tag)
	base := ba.l.pageOf(block)
	if _, ok := ba.pages.Get(base); !ok {
		return 0, fmt.Errorf("%w: %#x is not in a held page", ErrBadPointer, ptr)
	}
	kind := ba.kindOf(base)
	if kind != kindSmall && kind != kindDirectory {
		return 0, fmt.Errorf("%w: %#x lies in a %s page", ErrBadPointer, ptr, kindName(kind))
	}
	off, bs := ba.l.offsetOf(block), ba.l.blockSize(k)
	if off%bs != 0 || off < ba.reservedBytes(kind) {
		return 0, fmt.Errorf("%w: %#x is not a class-%d block", ErrBadPointer, ptr, k)
	}
	if ba.liveOf(base) == 0 {
		return 0, fmt.Errorf("%w: %#x lies in a page with no live blocks", ErrBadPointer, ptr)
	}
	if ba.l.tag > 0 {
		tag := ba.readWord(block)
		if tag&tagMagicMask != tagMagic {
			return 0, fmt.Errorf("%w: %#x has no allocation tag", ErrBadPointer, ptr)
		}
		if got := int(tag & tagClassMask); got != k {
			return 0, fmt.Errorf("%w: %#x was allocated as class %d, released as class %d",
				ErrSizeMismatch, ptr, got, k)
		}
	}
	return block, nil
}

// Bytes returns the memory of a live allocation.
func (ba *BuddyAllocator) Bytes(ptr Ptr, size int) ([]byte, error) {
	k, err := ba.l.classFor(size)
	if err != nil {
		return nil, err
	}
	if k == ba.l.numClasses {
		if _, err := ba.largeBase(ptr); err != nil {
			return nil, err
		}
	} else if _, err := ba.smallBlock(ptr, k); err != nil {
		return nil, err
	}
	return ba.bytesAt(ptr, size), nil
}

// Close returns every held page to the provider, live allocations included,
// and resets the heap to its pre-bootstrap state.
func (ba *BuddyAllocator) Close() error {
	var errs []error
	for _, base := range ba.pages.Keys() {
		if err := ba.releasePage(base); err != nil {
			errs = append(errs, err)
		}
	}
	ba.dir = 0
	ba.stats.BytesRequested = 0
	ba.stats.BytesReserved = 0
	return errors.Join(errs...)
}
