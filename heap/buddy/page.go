package buddy

import (
	"errors"
	"fmt"

	"github.com/joshuapare/budkit/heap/page"
	"github.com/joshuapare/budkit/internal/buf"
)

// Page kinds recorded in the page header.
const (
	kindSmall     uint32 = 0x4C4D5342 // "BSML"
	kindDirectory uint32 = 0x52494442 // "BDIR"
	kindLarge     uint32 = 0x47524C42 // "BLRG"
)

// Page header field offsets.
const (
	hdrHandle = 0
	hdrLive   = 8
	hdrKind   = 12
)

func kindName(kind uint32) string {
	switch kind {
	case kindSmall:
		return "small"
	case kindDirectory:
		return "directory"
	case kindLarge:
		return "large"
	default:
		return fmt.Sprintf("unknown(%#x)", kind)
	}
}

func (ba *BuddyAllocator) handleOf(base page.Addr) page.Handle {
	return page.Handle(ba.readWord(base + hdrHandle))
}

func (ba *BuddyAllocator) liveOf(base page.Addr) uint32 {
	return ba.readU32(base + hdrLive)
}

func (ba *BuddyAllocator) setLive(base page.Addr, n uint32) {
	ba.writeU32(base+hdrLive, n)
}

func (ba *BuddyAllocator) kindOf(base page.Addr) uint32 {
	return ba.readU32(base + hdrKind)
}

// reservedBytes is the size of the header block at the base of a page.
func (ba *BuddyAllocator) reservedBytes(kind uint32) int {
	switch kind {
	case kindDirectory:
		return ba.l.blockSize(ba.l.dirHeaderClass)
	case kindSmall:
		return ba.l.blockSize(ba.l.pageHeaderClass)
	default:
		return ba.l.pageSize
	}
}

// acquirePage obtains a page from the provider, registers it and writes its header.
func (ba *BuddyAllocator) acquirePage(kind uint32) (page.Addr, error) {
	pg, err := ba.provider.Acquire()
	if err != nil {
		return 0, fmt.Errorf("buddy: acquire %s page: %w", kindName(kind), err)
	}
	if len(pg.Data) != ba.l.pageSize || pg.Base == 0 || ba.l.offsetOf(pg.Base) != 0 {
		err := fmt.Errorf("%w: provider returned misaligned page base=%#x len=%d",
			ErrCorrupt, pg.Base, len(pg.Data))
		return 0, errors.Join(err, ba.provider.Release(pg.Handle))
	}

	ba.pages.Set(pg.Base, pg.Data)
	buf.Zero(pg.Data[:pageHeaderSize])
	ba.writeWord(pg.Base+hdrHandle, uint64(pg.Handle))
	ba.writeU32(pg.Base+hdrKind, kind)

	ba.stats.PagesAcquired++
	ba.log.Debug("page acquired",
		"kind", kindName(kind),
		"base", fmt.Sprintf("%#x", pg.Base),
		"handle", pg.Handle,
		"held", ba.pages.Len())
	return pg.Base, nil
}

// releasePage unregisters base and returns it to the provider.
func (ba *BuddyAllocator) releasePage(base page.Addr) error {
	h := ba.handleOf(base)
	kind := ba.kindOf(base)
	ba.pages.Delete(base)
	if err := ba.provider.Release(h); err != nil {
		return fmt.Errorf("buddy: release %s page %#x: %w", kindName(kind), base, err)
	}
	ba.stats.PagesReleased++
	ba.log.Debug("page released",
		"kind", kindName(kind),
		"base", fmt.Sprintf("%#x", base),
		"handle", h,
		"held", ba.pages.Len())
	return nil
}

// initializeFirstPage bootstraps the directory page: all heads cleared, the
// page split from the whole-page class down to the block holding the
// directory header, remainders seeded into the lists.
func (ba *BuddyAllocator) initializeFirstPage() error {
	if ba.dir != 0 {
		return nil
	}
	base, err := ba.acquirePage(kindDirectory)
	if err != nil {
		return err
	}
	ba.dir = base
	for k := range ba.l.numClasses {
		ba.setHead(k, 0)
	}
	ba.splitFreeBlock(base, ba.l.dirHeaderClass, ba.l.numClasses)
	ba.stats.DirectoryBootstraps++
	ba.log.Debug("directory bootstrapped",
		"base", fmt.Sprintf("%#x", base),
		"header_class", ba.l.dirHeaderClass,
		"lists", ba.l.numClasses)
	return nil
}

// allocatePage adds a small-block page and seeds its blocks into the lists.
func (ba *BuddyAllocator) allocatePage() error {
	base, err := ba.acquirePage(kindSmall)
	if err != nil {
		return err
	}
	ba.splitFreeBlock(base, ba.l.pageHeaderClass, ba.l.numClasses)
	return nil
}

// drainPage coalesces the header block at base upward. With every other
// block of the page free this reconstitutes the whole page and removes all
// of its blocks from the lists.
func (ba *BuddyAllocator) drainPage(base page.Addr, headerClass int) error {
	merged, k := ba.coalesceBlock(base, headerClass)
	if merged != base || k != ba.l.numClasses {
		ba.log.Error("idle page did not coalesce to a full page",
			"base", fmt.Sprintf("%#x", base),
			"class", k)
		return fmt.Errorf("%w: idle page %#x coalesced only to class %d of %d",
			ErrCorrupt, base, k, ba.l.numClasses)
	}
	return nil
}

// freePage reclaims an idle small-block page.
func (ba *BuddyAllocator) freePage(base page.Addr) error {
	if err := ba.drainPage(base, ba.l.pageHeaderClass); err != nil {
		return err
	}
	return ba.releasePage(base)
}

// attemptToFreeFirstPage tears the directory down once it holds no external
// blocks and is the only page the provider still has outstanding.
func (ba *BuddyAllocator) attemptToFreeFirstPage() error {
	if ba.dir == 0 || ba.liveOf(ba.dir) != 0 || ba.provider.InUse() != 1 {
		return nil
	}
	base := ba.dir
	if err := ba.drainPage(base, ba.l.dirHeaderClass); err != nil {
		return err
	}
	if err := ba.releasePage(base); err != nil {
		return err
	}
	ba.dir = 0
	ba.stats.DirectoryTeardowns++
	ba.log.Debug("directory torn down", "base", fmt.Sprintf("%#x", base))
	return nil
}
