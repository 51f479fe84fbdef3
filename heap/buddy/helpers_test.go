package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/budkit/heap/page"
)

// newTestHeap creates a heap on a fresh MemProvider.
func newTestHeap(t testing.TB, opts page.MemOptions, cfg *Config) (*BuddyAllocator, *page.MemProvider) {
	t.Helper()
	p, err := page.NewMem(opts)
	require.NoError(t, err)
	ba, err := New(p, cfg)
	require.NoError(t, err)
	return ba, p
}

// listed returns the addresses on free list k, head first.
func listed(ba *BuddyAllocator, k int) []page.Addr {
	var out []page.Addr
	ba.forEachFree(k, ba.walkLimit(), func(b page.Addr) bool {
		out = append(out, b)
		return true
	})
	return out
}

// fill writes v over mem.
func fill(mem []byte, v byte) {
	for i := range mem {
		mem[i] = v
	}
}

// requireFilled asserts every byte of mem equals v.
func requireFilled(t testing.TB, mem []byte, v byte, msgAndArgs ...any) {
	t.Helper()
	for i, b := range mem {
		if b != v {
			require.Failf(t, "memory corrupted", "byte %d = %#x, want %#x %v", i, b, v, msgAndArgs)
		}
	}
}
