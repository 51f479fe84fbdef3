package buddy

import (
	"github.com/joshuapare/budkit/heap/page"
	"github.com/joshuapare/budkit/internal/buf"
)

// Address arithmetic and raw word access. Everything else in the package
// works in terms of these primitives.

// pageOf returns the base of the page containing a.
func (l *layout) pageOf(a page.Addr) page.Addr {
	return a &^ l.pageMask
}

// offsetOf returns the offset of a within its page.
func (l *layout) offsetOf(a page.Addr) int {
	return int(a & l.pageMask)
}

// buddyOf returns the address of the class-k buddy of block. Blocks of class
// k are aligned to their own size within a naturally aligned page, so the
// buddy always lies in the same page.
func (l *layout) buddyOf(block page.Addr, k int) page.Addr {
	return block ^ page.Addr(l.blockSize(k))
}

// bytesAt returns n bytes of page memory starting at a, or nil when a is not
// inside a page held by this heap.
func (ba *BuddyAllocator) bytesAt(a page.Addr, n int) []byte {
	data, ok := ba.pages.Get(ba.l.pageOf(a))
	if !ok {
		return nil
	}
	b, ok := buf.Slice(data, ba.l.offsetOf(a), n)
	if !ok {
		return nil
	}
	return b
}

func (ba *BuddyAllocator) readWord(a page.Addr) uint64 {
	return buf.U64LE(ba.bytesAt(a, 8))
}

func (ba *BuddyAllocator) writeWord(a page.Addr, v uint64) {
	buf.PutU64LE(ba.bytesAt(a, 8), v)
}

func (ba *BuddyAllocator) readU32(a page.Addr) uint32 {
	return buf.U32LE(ba.bytesAt(a, 4))
}

func (ba *BuddyAllocator) writeU32(a page.Addr, v uint32) {
	buf.PutU32LE(ba.bytesAt(a, 4), v)
}
