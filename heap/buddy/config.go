package buddy

import (
	"fmt"
	"log/slog"
	"math/bits"
	"os"

	"github.com/joshuapare/budkit/heap/page"
)

const (
	// DefaultMinBlockSize is the smallest block handed out (one machine word).
	DefaultMinBlockSize = 8

	// tagSize is the per-block tag placed in front of every small allocation.
	tagSize = 8

	// pageHeaderSize is the in-band header at the base of every page:
	// provider handle (u64), live block count (u32), page kind (u32).
	pageHeaderSize = 16

	// headSize is the width of one free-list head in the directory page.
	headSize = 8
)

// Runtime debug flag for allocation logging - controlled by BUDKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("BUDKIT_LOG_ALLOC") != ""

// Config defines the heap geometry.
type Config struct {
	// PageSize must match the provider; 0 adopts the provider's page size.
	PageSize int

	// MinBlockSize is the size of class 0; a power of two >= 8.
	// 0 selects DefaultMinBlockSize.
	MinBlockSize int

	// DisableTags drops the per-block tag. Blocks then carry no metadata and
	// Release trusts the caller-supplied size completely.
	DisableTags bool

	// Logger receives debug records for page lifecycle events.
	// nil discards them unless BUDKIT_LOG_ALLOC is set.
	Logger *slog.Logger
}

// DefaultConfig is used by New when no config is given.
var DefaultConfig = Config{
	PageSize:     page.DefaultSize,
	MinBlockSize: DefaultMinBlockSize,
}

// layout holds the geometry derived from a validated Config.
type layout struct {
	pageSize   int
	pageMask   page.Addr
	minBlock   int
	minShift   int
	numClasses int // FREELIST_SIZE; also the whole-page class
	tag        int

	pageHeaderClass int // reserved block at the base of a small page
	dirHeaderSize   int // page header plus numClasses list heads
	dirHeaderClass  int // reserved block at the base of the directory page
}

func (c Config) withDefaults(p page.Provider) Config {
	if c.PageSize == 0 {
		c.PageSize = page.DefaultSize
		if p != nil {
			c.PageSize = p.PageSize()
		}
	}
	if c.MinBlockSize == 0 {
		c.MinBlockSize = DefaultMinBlockSize
	}
	return c
}

func (c Config) validate() error {
	if !page.ValidSize(c.PageSize) {
		return fmt.Errorf("%w: page size %d is not a power of two >= %d", ErrBadConfig, c.PageSize, page.MinSize)
	}
	if c.MinBlockSize < DefaultMinBlockSize || bits.OnesCount(uint(c.MinBlockSize)) != 1 {
		return fmt.Errorf("%w: min block size %d is not a power of two >= %d", ErrBadConfig, c.MinBlockSize, DefaultMinBlockSize)
	}
	if c.MinBlockSize*4 > c.PageSize {
		return fmt.Errorf("%w: min block size %d leaves fewer than 2 classes in a %d-byte page", ErrBadConfig, c.MinBlockSize, c.PageSize)
	}
	l := newLayout(c)
	if l.blockSize(l.dirHeaderClass) > c.PageSize/2 {
		return fmt.Errorf("%w: directory header (%d bytes) does not fit in half a page", ErrBadConfig, l.dirHeaderSize)
	}
	return nil
}

func newLayout(c Config) layout {
	l := layout{
		pageSize: c.PageSize,
		pageMask: page.Addr(c.PageSize - 1),
		minBlock: c.MinBlockSize,
		minShift: log2(uint64(c.MinBlockSize)),
	}
	l.numClasses = log2(uint64(c.PageSize)) - l.minShift
	if !c.DisableTags {
		l.tag = tagSize
	}
	l.pageHeaderClass = l.classForExtent(pageHeaderSize)
	l.dirHeaderSize = pageHeaderSize + headSize*l.numClasses
	l.dirHeaderClass = l.classForExtent(l.dirHeaderSize)
	return l
}

func newLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}
