package buddy

import "github.com/joshuapare/budkit/heap/page"

// coalesceBlock merges block (class k, on no list) with its free buddy for as
// long as one exists, stopping at the whole-page class. It returns the merged
// block and its class; the result is not placed on any list.
func (ba *BuddyAllocator) coalesceBlock(block page.Addr, k int) (page.Addr, int) {
	for k < ba.l.numClasses {
		buddy := ba.l.buddyOf(block, k)
		if !ba.removeBlockFromFreeList(buddy, k) {
			break
		}
		block = min(block, buddy)
		k++
		ba.stats.Coalesces++
	}
	return block, k
}
