// Package page defines the page provider contract consumed by the buddy
// allocator and ships two providers for it.
//
// # Contract
//
// A Provider hands out fixed-size pages. Every page is PageSize() bytes long
// and its Base address is nonzero and aligned to PageSize(), so the owning
// page of any address inside it is addr &^ (PageSize()-1). Release returns a
// page and invalidates every block carved from it. InUse reports how many
// pages are currently outstanding.
//
// # Implementations
//
// MemProvider: pages come from the Go heap through a size-classed buffer
// cache. Base addresses are virtual: they start at PageSize() and freed bases
// are reused last-in first-out, so consecutive pages are address-adjacent.
//
// MmapProvider: pages are anonymous memory mappings. Base is the real
// address of the page inside an over-sized mapping trimmed to alignment.
//
// # Thread Safety
//
// Both providers guard their bookkeeping with a mutex, so one provider may
// back several heaps. Note that a heap's directory-page teardown consults
// InUse, which counts pages of every heap sharing the provider.
package page
