package page

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/joshuapare/budkit/internal/mmfile"
)

// MmapOptions configures an MmapProvider.
type MmapOptions struct {
	// PageSize in bytes; 0 selects DefaultSize.
	PageSize int

	// MaxPages caps the number of outstanding pages; 0 means unlimited.
	MaxPages int
}

// MmapProvider issues pages backed by anonymous memory mappings.
//
// Each page is its own mapping aligned to PageSize, so Base is the real
// address of Data[0]. On platforms that cannot trim a mapping the page also
// holds PageSize bytes of unused reserve until it is released.
type MmapProvider struct {
	mu         sync.Mutex
	size       int
	maxPages   int
	nextHandle Handle
	pages      map[Handle]func() error
	stats      Stats
}

// NewMmap creates a mapping-backed provider.
func NewMmap(opts MmapOptions) (*MmapProvider, error) {
	size := opts.PageSize
	if size == 0 {
		size = DefaultSize
	}
	if !ValidSize(size) {
		return nil, ErrBadPageSize
	}
	return &MmapProvider{
		size:     size,
		maxPages: opts.MaxPages,
		pages:    make(map[Handle]func() error),
	}, nil
}

// PageSize implements Provider.
func (p *MmapProvider) PageSize() int { return p.size }

// Acquire implements Provider.
func (p *MmapProvider) Acquire() (Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.maxPages > 0 && len(p.pages) >= p.maxPages {
		p.stats.Failed++
		return Page{}, ErrExhausted
	}

	data, cleanup, err := mmfile.MapAnonAligned(p.size, p.size)
	if err != nil {
		p.stats.Failed++
		return Page{}, fmt.Errorf("%w: %w", ErrExhausted, err)
	}

	p.nextHandle++
	h := p.nextHandle
	p.pages[h] = cleanup
	p.stats.onAcquire()

	return Page{Handle: h, Base: Addr(uintptr(unsafe.Pointer(&data[0]))), Data: data}, nil
}

// Release implements Provider.
func (p *MmapProvider) Release(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cleanup, ok := p.pages[h]
	if !ok {
		return ErrUnknownHandle
	}
	delete(p.pages, h)
	p.stats.onRelease()
	if err := cleanup(); err != nil {
		return fmt.Errorf("page: unmap handle %d: %w", h, err)
	}
	return nil
}

// InUse implements Provider.
func (p *MmapProvider) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

// Stats returns a snapshot of the provider counters.
func (p *MmapProvider) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
