package buddy

import (
	"strconv"
	"testing"

	"github.com/joshuapare/budkit/heap/page"
)

func benchHeap(b *testing.B) *BuddyAllocator {
	b.Helper()
	p, err := page.NewMem(page.MemOptions{})
	if err != nil {
		b.Fatal(err)
	}
	ba, err := New(p, nil)
	if err != nil {
		b.Fatal(err)
	}
	return ba
}

func BenchmarkAllocateRelease(b *testing.B) {
	for _, size := range []int{8, 100, 1000, 4000, 6000} {
		b.Run(strconv.Itoa(size), func(b *testing.B) {
			ba := benchHeap(b)
			// Keep the directory alive so the loop measures the steady state.
			hold, _, err := ba.Allocate(8)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for range b.N {
				ptr, _, err := ba.Allocate(size)
				if err != nil {
					b.Fatal(err)
				}
				if err := ba.Release(ptr, size); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()
			_ = ba.Release(hold, 8)
		})
	}
}

func BenchmarkChurn(b *testing.B) {
	ba := benchHeap(b)
	const window = 256
	ptrs := make([]Ptr, window)
	sizes := make([]int, window)
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		slot := i % window
		if ptrs[slot] != 0 {
			if err := ba.Release(ptrs[slot], sizes[slot]); err != nil {
				b.Fatal(err)
			}
		}
		size := 1 + (i*97)%2500
		ptr, _, err := ba.Allocate(size)
		if err != nil {
			b.Fatal(err)
		}
		ptrs[slot], sizes[slot] = ptr, size
	}
}
