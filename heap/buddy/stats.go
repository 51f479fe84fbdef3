package buddy

import "github.com/joshuapare/budkit/heap/page"

// Stats holds allocator counters.
type Stats struct {
	AllocCalls    int // Total Allocate calls
	AllocFastPath int // Small allocations served from existing free blocks
	AllocSlowPath int // Small allocations that required a new page
	ReleaseCalls  int // Total Release calls
	LargeAllocs   int // Dedicated-page allocations
	LargeReleases int // Dedicated-page releases
	Splits        int // Block halvings
	Coalesces     int // Buddy merges

	PagesAcquired       int // Pages obtained from the provider
	PagesReleased       int // Pages returned to the provider
	DirectoryBootstraps int // Times the directory page was created
	DirectoryTeardowns  int // Times the directory page was reclaimed

	BytesRequested int64 // Live bytes as requested by callers
	BytesReserved  int64 // Live bytes including tags and rounding
}

// Stats returns a copy of the counters.
func (ba *BuddyAllocator) Stats() Stats {
	return ba.stats
}

// PagesHeld reports the number of pages this heap currently holds.
func (ba *BuddyAllocator) PagesHeld() int {
	return ba.pages.Len()
}

// Bootstrapped reports whether the directory page exists.
func (ba *BuddyAllocator) Bootstrapped() bool {
	return ba.dir != 0
}

// FreeBlocks returns the number of free blocks on each list.
func (ba *BuddyAllocator) FreeBlocks() []int {
	out := make([]int, ba.l.numClasses)
	if ba.dir == 0 {
		return out
	}
	limit := ba.walkLimit()
	for k := range out {
		ba.forEachFree(k, limit, func(page.Addr) bool {
			out[k]++
			return true
		})
	}
	return out
}

// FreeBytes returns the total size of all free blocks.
func (ba *BuddyAllocator) FreeBytes() int64 {
	var total int64
	for k, n := range ba.FreeBlocks() {
		total += int64(n) * int64(ba.l.blockSize(k))
	}
	return total
}

// Usage summarises how the held pages are spent.
type Usage struct {
	PagesHeld int   // Pages held from the provider
	Capacity  int64 // PagesHeld * PageSize
	Requested int64 // Live bytes as requested
	Reserved  int64 // Live bytes including tags, rounding and large pages
	Free      int64 // Bytes on the free lists
	Overhead  int64 // Page and directory headers
}

// Utilization returns Requested / Capacity, or 0 for an empty heap.
func (u Usage) Utilization() float64 {
	if u.Capacity == 0 {
		return 0
	}
	return float64(u.Requested) / float64(u.Capacity)
}

// Usage reports the current usage of held pages.
func (ba *BuddyAllocator) Usage() Usage {
	u := Usage{
		PagesHeld: ba.pages.Len(),
		Requested: ba.stats.BytesRequested,
		Reserved:  ba.stats.BytesReserved,
		Free:      ba.FreeBytes(),
	}
	u.Capacity = int64(u.PagesHeld) * int64(ba.l.pageSize)
	u.Overhead = u.Capacity - u.Reserved - u.Free
	return u
}

// walkLimit bounds list walks by the number of blocks the held pages could contain.
func (ba *BuddyAllocator) walkLimit() int {
	return ba.pages.Len()*(ba.l.pageSize/ba.l.minBlock) + 1
}
