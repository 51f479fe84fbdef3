// Package buddy provides a buddy-system heap built from fixed-size pages.
//
// # Overview
//
// A BuddyAllocator serves requests of arbitrary byte sizes with blocks whose
// sizes are powers of two, from MinBlockSize up to half a page. Pages come
// from a page.Provider; blocks never span pages.
//
// # Allocator Interface
//
//   - Allocate(size): reserve size bytes and get a pointer plus a slice
//   - Release(ptr, size): return them; size must round to the allocation's class
//   - Bytes(ptr, size): re-resolve a live allocation
//
// # Size Classes
//
// With the default 8KB page and 8-byte minimum block there are 10 free lists:
//
//	Class 0:    8 bytes
//	Class 1:   16 bytes
//	...
//	Class 9: 4096 bytes
//	Class 10: whole page (dedicated, never listed)
//
// A request of n bytes occupies the smallest class holding n plus the 8-byte
// block tag. Requests whose block would exceed half a page get a dedicated
// page with n <= PageSize-16.
//
// # Pages
//
// Every page starts with a 16-byte header (provider handle, live block count,
// page kind) that occupies the lowest block of the page. The first page is
// the directory: after its header it stores the heads of the free lists.
// It is created on the first small allocation and reclaimed once it holds no
// allocations and is the last page outstanding. Other pages are reclaimed as
// soon as their live count drops to zero.
//
// # Splitting and Coalescing
//
// Allocation pops the smallest non-empty list at or above the wanted class
// and halves the block down to size, listing each right half. Release merges
// the block with its buddy (address XOR block size) while the buddy is free,
// then lists the result.
//
// # Block Tags
//
// By default the first word of every small block holds a magic value and the
// block's class, so Release rejects foreign pointers, double releases and
// mismatched sizes. Config.DisableTags removes the tag; Release then trusts
// its size argument completely.
//
// # Usage Example
//
//	p, _ := page.NewMem(page.MemOptions{})
//	heap, err := buddy.New(p, nil)
//	if err != nil {
//	    return err
//	}
//	ptr, mem, err := heap.Allocate(100)
//	if err != nil {
//	    return err
//	}
//	copy(mem, payload)
//	err = heap.Release(ptr, 100)
//
// # Thread Safety
//
// BuddyAllocator instances are not thread-safe. Wrap them in Locked or keep
// each heap on one goroutine.
package buddy
