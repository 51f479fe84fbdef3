package buddy

import "github.com/joshuapare/budkit/heap/page"

// splitFreeBlock halves block from class current down to class requested.
// Each right half goes onto the free list of its class; the left half keeps
// the base address and is returned.
func (ba *BuddyAllocator) splitFreeBlock(block page.Addr, requested, current int) page.Addr {
	for current > requested {
		current--
		right := block + page.Addr(ba.l.blockSize(current))
		ba.addBlockToFreeList(right, current)
		ba.stats.Splits++
	}
	return block
}
