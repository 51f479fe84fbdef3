package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_MemProvider_AcquireAlignedNonzero(t *testing.T) {
	p, err := NewMem(MemOptions{})
	require.NoError(t, err)
	require.Equal(t, DefaultSize, p.PageSize())

	for range 8 {
		pg, acqErr := p.Acquire()
		require.NoError(t, acqErr)
		require.NotZero(t, pg.Base)
		require.Zero(t, uint64(pg.Base)%uint64(DefaultSize), "base %#x not aligned", pg.Base)
		require.Len(t, pg.Data, DefaultSize)
	}
	require.Equal(t, 8, p.InUse())
}

func Test_MemProvider_ReusesBasesLIFO(t *testing.T) {
	p, err := NewMem(MemOptions{PageSize: 4096})
	require.NoError(t, err)

	a, err := p.Acquire()
	require.NoError(t, err)
	b, err := p.Acquire()
	require.NoError(t, err)
	require.Equal(t, a.Base+4096, b.Base, "fresh pages should be address-adjacent")

	require.NoError(t, p.Release(a.Handle))
	c, err := p.Acquire()
	require.NoError(t, err)
	require.Equal(t, a.Base, c.Base, "released base should be reused first")
	require.NotEqual(t, a.Handle, c.Handle, "handles are never reused")
}

func Test_MemProvider_MaxPages(t *testing.T) {
	p, err := NewMem(MemOptions{MaxPages: 2})
	require.NoError(t, err)

	_, err = p.Acquire()
	require.NoError(t, err)
	second, err := p.Acquire()
	require.NoError(t, err)

	_, err = p.Acquire()
	require.ErrorIs(t, err, ErrExhausted)

	require.NoError(t, p.Release(second.Handle))
	_, err = p.Acquire()
	require.NoError(t, err)

	st := p.Stats()
	require.Equal(t, uint64(3), st.Acquired)
	require.Equal(t, uint64(1), st.Released)
	require.Equal(t, uint64(1), st.Failed)
	require.Equal(t, 2, st.InUse)
	require.Equal(t, 2, st.Peak)
}

func Test_MemProvider_ReleaseUnknown(t *testing.T) {
	p, err := NewMem(MemOptions{})
	require.NoError(t, err)

	pg, err := p.Acquire()
	require.NoError(t, err)
	require.NoError(t, p.Release(pg.Handle))
	require.ErrorIs(t, p.Release(pg.Handle), ErrUnknownHandle)
	require.ErrorIs(t, p.Release(Handle(999)), ErrUnknownHandle)
	require.Zero(t, p.InUse())
}

func Test_NewMem_RejectsBadSize(t *testing.T) {
	for _, size := range []int{100, 128, 3000, -4096} {
		_, err := NewMem(MemOptions{PageSize: size})
		require.ErrorIs(t, err, ErrBadPageSize, "size %d", size)
	}
}

func Test_MemProvider_PagesAreWritable(t *testing.T) {
	p, err := NewMem(MemOptions{PageSize: 1024})
	require.NoError(t, err)

	a, err := p.Acquire()
	require.NoError(t, err)
	b, err := p.Acquire()
	require.NoError(t, err)

	for i := range a.Data {
		a.Data[i] = 0xAA
	}
	for i := range b.Data {
		b.Data[i] = 0xBB
	}
	for i := range a.Data {
		require.Equal(t, byte(0xAA), a.Data[i], "page a corrupted at %d", i)
	}
}
