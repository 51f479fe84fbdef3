package buddy

import "github.com/joshuapare/budkit/heap/page"

// Free-list directory. Heads live in the directory page right after its page
// header; each free block stores the address of the next one in its first
// word, 0 terminating the list.

func (ba *BuddyAllocator) headAddr(k int) page.Addr {
	return ba.dir + page.Addr(pageHeaderSize+headSize*k)
}

func (ba *BuddyAllocator) head(k int) page.Addr {
	return page.Addr(ba.readWord(ba.headAddr(k)))
}

func (ba *BuddyAllocator) setHead(k int, block page.Addr) {
	ba.writeWord(ba.headAddr(k), uint64(block))
}

func (ba *BuddyAllocator) next(block page.Addr) page.Addr {
	return page.Addr(ba.readWord(block))
}

// addBlockToFreeList prepends block to list k. The caller guarantees block is
// not already on any list.
func (ba *BuddyAllocator) addBlockToFreeList(block page.Addr, k int) {
	ba.writeWord(block, uint64(ba.head(k)))
	ba.setHead(k, block)
}

// removeBlockFromFreeList unlinks block from list k, reporting whether it was
// present. A miss is the ordinary "buddy still allocated" outcome.
func (ba *BuddyAllocator) removeBlockFromFreeList(block page.Addr, k int) bool {
	var prev page.Addr
	cur := ba.head(k)
	for cur != 0 && cur != block {
		prev = cur
		cur = ba.next(cur)
	}
	if cur == 0 {
		return false
	}
	if prev == 0 {
		ba.setHead(k, ba.next(cur))
	} else {
		ba.writeWord(prev, uint64(ba.next(cur)))
	}
	return true
}

// findSmallestBlockOfAtLeastSize pops the head of the first non-empty list
// among classes k..numClasses-1 and returns it with its class.
func (ba *BuddyAllocator) findSmallestBlockOfAtLeastSize(k int) (page.Addr, int, bool) {
	for sc := k; sc < ba.l.numClasses; sc++ {
		block := ba.head(sc)
		if block != 0 {
			ba.setHead(sc, ba.next(block))
			return block, sc, true
		}
	}
	return 0, 0, false
}

// forEachFree calls fn for every block on list k until fn returns false.
// The walk stops after limit blocks to survive a corrupted, cyclic list.
func (ba *BuddyAllocator) forEachFree(k, limit int, fn func(block page.Addr) bool) bool {
	n := 0
	for cur := ba.head(k); cur != 0; cur = ba.next(cur) {
		if n == limit {
			return false
		}
		n++
		if !fn(cur) {
			return true
		}
	}
	return true
}
