package page

import "math/bits"

// DefaultSize is the page size used when none is configured (8KB).
const DefaultSize = 8192

// MinSize is the smallest page size a provider accepts.
const MinSize = 256

// Addr is an address in a provider's address space.
type Addr uint64

// Handle identifies an acquired page to its provider.
type Handle uint64

// Page is one unit handed out by a Provider.
type Page struct {
	Handle Handle
	Base   Addr
	Data   []byte // len(Data) == PageSize()
}

// Provider supplies naturally aligned fixed-size pages.
type Provider interface {
	// PageSize returns the size in bytes of every page this provider issues.
	PageSize() int

	// Acquire returns a new page. Its contents are unspecified.
	// Returns ErrExhausted when no page can be supplied.
	Acquire() (Page, error)

	// Release returns a previously acquired page.
	Release(h Handle) error

	// InUse reports the number of pages currently outstanding.
	InUse() int
}

// Stats holds provider counters.
type Stats struct {
	Acquired uint64 // Total successful Acquire calls
	Released uint64 // Total successful Release calls
	Failed   uint64 // Acquire calls that returned an error
	InUse    int    // Pages currently outstanding
	Peak     int    // Highest InUse observed
}

func (s *Stats) onAcquire() {
	s.Acquired++
	s.InUse++
	if s.InUse > s.Peak {
		s.Peak = s.InUse
	}
}

func (s *Stats) onRelease() {
	s.Released++
	s.InUse--
}

// ValidSize reports whether size can be used as a page size.
func ValidSize(size int) bool {
	return size >= MinSize && bits.OnesCount(uint(size)) == 1
}
