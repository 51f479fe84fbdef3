package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/joshuapare/budkit/heap/page"
)

type liveAlloc struct {
	ptr  Ptr
	size int
	fill byte
}

func randomSize(r *rand.Rand, largeCap int) int {
	switch n := r.Intn(100); {
	case n < 5:
		return 4089 + r.Intn(largeCap-4089+1)
	case n < 40:
		return 1 + r.Intn(64)
	default:
		return 1 + r.Intn(2000)
	}
}

// Any balanced sequence of requests and releases returns every page.
func Test_Property_NoLeak(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
	}{
		{"tagged", DefaultConfig},
		{"untagged", Config{PageSize: page.DefaultSize, DisableTags: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for seed := uint64(1); seed <= 5; seed++ {
				cfg := tc.cfg
				ba, p := newTestHeap(t, page.MemOptions{}, &cfg)
				r := rand.New(rand.NewSource(seed))
				largeCap := ba.l.largeCapacity()

				var live []liveAlloc
				for step := range 3000 {
					if len(live) == 0 || r.Intn(100) < 55 {
						size := randomSize(r, largeCap)
						ptr, mem, err := ba.Allocate(size)
						require.NoError(t, err, "seed %d step %d", seed, step)
						require.Len(t, mem, size)
						v := byte(step)
						fill(mem, v)
						live = append(live, liveAlloc{ptr, size, v})
					} else {
						i := r.Intn(len(live))
						a := live[i]
						mem, err := ba.Bytes(a.ptr, a.size)
						require.NoError(t, err)
						requireFilled(t, mem, a.fill, "seed", seed, "step", step)
						require.NoError(t, ba.Release(a.ptr, a.size), "seed %d step %d", seed, step)
						live[i] = live[len(live)-1]
						live = live[:len(live)-1]
					}
					if step%100 == 0 {
						require.NoError(t, ba.Check(), "seed %d step %d", seed, step)
					}
				}

				r.Shuffle(len(live), func(i, j int) { live[i], live[j] = live[j], live[i] })
				for _, a := range live {
					require.NoError(t, ba.Release(a.ptr, a.size))
				}
				require.NoError(t, ba.Check())
				require.Zero(t, p.InUse(), "seed %d", seed)
				require.Zero(t, ba.PagesHeld())
				require.False(t, ba.Bootstrapped())
				st := ba.Stats()
				require.Equal(t, st.PagesAcquired, st.PagesReleased)
				require.Zero(t, st.BytesRequested)
			}
		})
	}
}

// Releasing every block carved from one page, in any order, reconstitutes
// and returns that page.
func Test_Property_MaximalCoalescing(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		ba, p := newTestHeap(t, page.MemOptions{}, nil)
		r := rand.New(rand.NewSource(seed))

		var recs []liveAlloc
		for len(recs) < 400 && ba.PagesHeld() < 3 {
			size := 1 + r.Intn(1500)
			ptr, _, err := ba.Allocate(size)
			require.NoError(t, err)
			recs = append(recs, liveAlloc{ptr: ptr, size: size})
		}
		require.Equal(t, 3, ba.PagesHeld(), "seed %d", seed)

		var p2 page.Addr
		var inP2 []liveAlloc
		for _, a := range recs {
			base := ba.l.pageOf(a.ptr)
			if base == ba.dir {
				continue
			}
			if p2 == 0 {
				p2 = base
			}
			if base == p2 {
				inP2 = append(inP2, a)
			}
		}
		require.NotEmpty(t, inP2)

		r.Shuffle(len(inP2), func(i, j int) { inP2[i], inP2[j] = inP2[j], inP2[i] })
		released := ba.Stats().PagesReleased
		for i, a := range inP2 {
			require.NoError(t, ba.Release(a.ptr, a.size), "seed %d", seed)
			require.NoError(t, ba.Check())
			if i < len(inP2)-1 {
				require.Equal(t, 3, p.InUse(), "page returned before its last block")
			}
		}
		require.Equal(t, 2, p.InUse(), "seed %d", seed)
		require.Equal(t, released+1, ba.Stats().PagesReleased)
		_, held := ba.pages.Get(p2)
		require.False(t, held)

		require.NoError(t, ba.Close())
	}
}
