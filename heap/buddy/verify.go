package buddy

import (
	"fmt"
	"slices"

	"github.com/joshuapare/budkit/heap/page"
)

type freeSpan struct {
	off, size int
}

// Check walks every free list and page header and reports the first
// violated invariant as an *InvariantError.
//
// Checked:
//   - each listed block lies in a held small or directory page, is aligned
//     to its own size and clear of the page's reserved header block
//   - no block is listed twice and no two free blocks overlap
//   - no list is cyclic
//   - held small pages have live blocks; an idle directory holds only free space
//   - the directory exists whenever a small page is held
func (ba *BuddyAllocator) Check() error {
	spans := make(map[page.Addr][]freeSpan)
	seen := make(map[page.Addr]int)
	var bad *InvariantError

	if ba.dir != 0 {
		if _, ok := ba.pages.Get(ba.dir); !ok {
			return &InvariantError{fmt.Sprintf("directory page %#x is not held", ba.dir)}
		}
		if kind := ba.kindOf(ba.dir); kind != kindDirectory {
			return &InvariantError{fmt.Sprintf("directory page %#x has kind %s", ba.dir, kindName(kind))}
		}
	}

	limit := ba.walkLimit()
	for k := 0; ba.dir != 0 && k < ba.l.numClasses && bad == nil; k++ {
		bs := ba.l.blockSize(k)
		complete := ba.forEachFree(k, limit, func(block page.Addr) bool {
			if prev, dup := seen[block]; dup {
				bad = &InvariantError{fmt.Sprintf("block %#x listed in class %d and class %d", block, prev, k)}
				return false
			}
			seen[block] = k
			base := ba.l.pageOf(block)
			if _, ok := ba.pages.Get(base); !ok {
				bad = &InvariantError{fmt.Sprintf("class-%d block %#x outside any held page", k, block)}
				return false
			}
			kind := ba.kindOf(base)
			if kind != kindSmall && kind != kindDirectory {
				bad = &InvariantError{fmt.Sprintf("class-%d block %#x in %s page", k, block, kindName(kind))}
				return false
			}
			off := ba.l.offsetOf(block)
			if off%bs != 0 {
				bad = &InvariantError{fmt.Sprintf("class-%d block %#x misaligned", k, block)}
				return false
			}
			if off < ba.reservedBytes(kind) {
				bad = &InvariantError{fmt.Sprintf("class-%d block %#x overlaps page header", k, block)}
				return false
			}
			spans[base] = append(spans[base], freeSpan{off: off, size: bs})
			return true
		})
		if bad == nil && !complete {
			bad = &InvariantError{fmt.Sprintf("class-%d list does not terminate", k)}
		}
	}
	if bad != nil {
		return bad
	}

	for base, ss := range spans {
		slices.SortFunc(ss, func(a, b freeSpan) int { return a.off - b.off })
		for i := 1; i < len(ss); i++ {
			if ss[i-1].off+ss[i-1].size > ss[i].off {
				return &InvariantError{fmt.Sprintf("free blocks overlap in page %#x at offset %d", base, ss[i].off)}
			}
		}
	}

	var err error
	ba.pages.Scan(func(base page.Addr, _ []byte) bool {
		kind := ba.kindOf(base)
		live := ba.liveOf(base)
		switch kind {
		case kindSmall:
			if ba.dir == 0 {
				err = &InvariantError{fmt.Sprintf("small page %#x held without a directory", base)}
			} else if live == 0 {
				err = &InvariantError{fmt.Sprintf("idle small page %#x was not reclaimed", base)}
			}
		case kindDirectory:
			if base != ba.dir {
				err = &InvariantError{fmt.Sprintf("second directory page %#x", base)}
			} else if live == 0 {
				free := 0
				for _, s := range spans[base] {
					free += s.size
				}
				if want := ba.l.pageSize - ba.reservedBytes(kind); free != want {
					err = &InvariantError{fmt.Sprintf("idle directory has %d free bytes, want %d", free, want)}
				}
			}
		case kindLarge:
			if live != 1 {
				err = &InvariantError{fmt.Sprintf("large page %#x has live count %d", base, live)}
			}
		default:
			err = &InvariantError{fmt.Sprintf("page %#x has unknown kind %#x", base, kind)}
		}
		return err == nil
	})
	return err
}
