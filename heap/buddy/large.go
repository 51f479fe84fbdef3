package buddy

import (
	"fmt"

	"github.com/joshuapare/budkit/heap/page"
	"github.com/joshuapare/budkit/internal/buf"
)

// allocateLargeBlockPage dedicates a whole page to one request. The page
// header keeps the provider handle; the caller's memory starts right after it.
func (ba *BuddyAllocator) allocateLargeBlockPage(size int) (Ptr, []byte, error) {
	base, err := ba.acquirePage(kindLarge)
	if err != nil {
		return 0, nil, err
	}
	ba.setLive(base, 1)
	ba.stats.LargeAllocs++
	ba.stats.BytesRequested += int64(size)
	ba.stats.BytesReserved += int64(ba.l.pageSize)

	data, _ := ba.pages.Get(base)
	payload, _ := buf.Slice(data, pageHeaderSize, size)
	ba.log.Debug("large block allocated", "base", fmt.Sprintf("%#x", base), "size", size)
	return base + pageHeaderSize, payload, nil
}

// largeBase validates ptr as a large-block pointer and returns its page.
func (ba *BuddyAllocator) largeBase(ptr Ptr) (page.Addr, error) {
	base := ba.l.pageOf(ptr)
	if ptr != base+pageHeaderSize {
		return 0, fmt.Errorf("%w: %#x is not a large-block pointer", ErrBadPointer, ptr)
	}
	if _, ok := ba.pages.Get(base); !ok {
		return 0, fmt.Errorf("%w: %#x is not in a held page", ErrBadPointer, ptr)
	}
	if kind := ba.kindOf(base); kind != kindLarge {
		return 0, fmt.Errorf("%w: %#x lies in a %s page", ErrBadPointer, ptr, kindName(kind))
	}
	return base, nil
}

// freeLargeBlockPage returns a dedicated page straight to the provider.
func (ba *BuddyAllocator) freeLargeBlockPage(ptr Ptr, size int) error {
	base, err := ba.largeBase(ptr)
	if err != nil {
		return err
	}
	if err := ba.releasePage(base); err != nil {
		return err
	}
	ba.stats.LargeReleases++
	ba.stats.BytesRequested -= int64(size)
	ba.stats.BytesReserved -= int64(ba.l.pageSize)
	return nil
}
