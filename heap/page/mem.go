package page

import (
	"sync"

	"github.com/bytedance/gopkg/lang/mcache"
)

// MemOptions configures a MemProvider.
type MemOptions struct {
	// PageSize in bytes; 0 selects DefaultSize.
	PageSize int

	// MaxPages caps the number of outstanding pages; 0 means unlimited.
	MaxPages int
}

// MemProvider issues Go-heap pages with virtual, page-aligned addresses.
type MemProvider struct {
	mu         sync.Mutex
	size       int
	maxPages   int
	nextBase   Addr   // lowest never-issued base
	freeBases  []Addr // reclaimed bases, reused LIFO
	nextHandle Handle
	pages      map[Handle]memPage
	stats      Stats
}

type memPage struct {
	base Addr
	data []byte
}

// NewMem creates a heap-backed provider.
func NewMem(opts MemOptions) (*MemProvider, error) {
	size := opts.PageSize
	if size == 0 {
		size = DefaultSize
	}
	if !ValidSize(size) {
		return nil, ErrBadPageSize
	}
	return &MemProvider{
		size:     size,
		maxPages: opts.MaxPages,
		// Address 0 is reserved as the nil link, so the first page starts one page up.
		nextBase: Addr(size),
		pages:    make(map[Handle]memPage),
	}, nil
}

// PageSize implements Provider.
func (p *MemProvider) PageSize() int { return p.size }

// Acquire implements Provider.
func (p *MemProvider) Acquire() (Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.maxPages > 0 && len(p.pages) >= p.maxPages {
		p.stats.Failed++
		return Page{}, ErrExhausted
	}

	var base Addr
	if n := len(p.freeBases); n > 0 {
		base = p.freeBases[n-1]
		p.freeBases = p.freeBases[:n-1]
	} else {
		base = p.nextBase
		p.nextBase += Addr(p.size)
	}

	p.nextHandle++
	h := p.nextHandle
	data := mcache.Malloc(p.size)
	p.pages[h] = memPage{base: base, data: data}
	p.stats.onAcquire()

	return Page{Handle: h, Base: base, Data: data}, nil
}

// Release implements Provider.
func (p *MemProvider) Release(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pg, ok := p.pages[h]
	if !ok {
		return ErrUnknownHandle
	}
	delete(p.pages, h)
	mcache.Free(pg.data)
	p.freeBases = append(p.freeBases, pg.base)
	p.stats.onRelease()
	return nil
}

// InUse implements Provider.
func (p *MemProvider) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

// Stats returns a snapshot of the provider counters.
func (p *MemProvider) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
