//go:build unix

package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/budkit/heap/page"
)

// The heap runs unchanged over real, mmap-backed addresses.
func Test_MmapProvider_Heap(t *testing.T) {
	p, err := page.NewMmap(page.MmapOptions{})
	require.NoError(t, err)

	ba, err := New(p, nil)
	require.NoError(t, err)

	sizes := []int{100, 100, 100, 100, 3000, 5000, 17, 4088}
	ptrs := make([]Ptr, len(sizes))
	for i, size := range sizes {
		ptr, mem, err := ba.Allocate(size)
		require.NoError(t, err)
		require.Zero(t, uint64(ba.l.pageOf(ptr))%uint64(p.PageSize()))
		fill(mem, byte(i+1))
		ptrs[i] = ptr
	}
	require.NoError(t, ba.Check())

	for i := len(sizes) - 1; i >= 0; i-- {
		mem, err := ba.Bytes(ptrs[i], sizes[i])
		require.NoError(t, err)
		requireFilled(t, mem, byte(i+1))
		require.NoError(t, ba.Release(ptrs[i], sizes[i]))
	}
	require.Zero(t, p.InUse())
	require.False(t, ba.Bootstrapped())
}
