package trace

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/joshuapare/budkit/heap/page"
)

// GenOptions configures Generate.
type GenOptions struct {
	Seed       int64   // Same seed, same trace
	Requests   int     // Number of REQUEST ops; 0 selects 1000
	MaxLive    int     // Cap on simultaneously live ids; 0 selects 128
	MaxSize    int     // Largest small request; 0 selects PageSize/2
	LargeRatio float64 // Fraction of requests sized for a dedicated page
	PageSize   int     // 0 selects page.DefaultSize
}

func (o GenOptions) withDefaults() GenOptions {
	if o.Requests <= 0 {
		o.Requests = 1000
	}
	if o.MaxLive <= 0 {
		o.MaxLive = 128
	}
	if o.PageSize <= 0 {
		o.PageSize = page.DefaultSize
	}
	if o.MaxSize <= 0 || o.MaxSize > o.PageSize/2 {
		o.MaxSize = o.PageSize / 2
	}
	return o
}

// Generate builds a balanced synthetic trace: requests and frees interleave
// at random while the live set stays under MaxLive, and every id still live
// at the end is freed in random order.
func Generate(opts GenOptions) []Op {
	opts = opts.withDefaults()
	f := gofakeit.New(opts.Seed)

	ops := make([]Op, 0, 2*opts.Requests)
	live := make([]int, 0, opts.MaxLive)
	nextID := 0

	for nextID < opts.Requests {
		if len(live) > 0 && (len(live) >= opts.MaxLive || f.Bool()) {
			i := f.Number(0, len(live)-1)
			ops = append(ops, Op{Kind: OpFree, ID: live[i]})
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		ops = append(ops, Op{Kind: OpRequest, ID: nextID, Size: genSize(f, opts)})
		live = append(live, nextID)
		nextID++
	}

	f.ShuffleInts(live)
	for _, id := range live {
		ops = append(ops, Op{Kind: OpFree, ID: id})
	}
	return ops
}

func genSize(f *gofakeit.Faker, opts GenOptions) int {
	if opts.LargeRatio > 0 && f.Float64Range(0, 1) < opts.LargeRatio {
		// Between half a page and a page minus its header.
		return f.Number(opts.PageSize/2, opts.PageSize-16)
	}
	// Skew toward small requests: half of them stay under 64 bytes.
	if f.Bool() {
		return f.Number(1, min(64, opts.MaxSize))
	}
	return f.Number(1, opts.MaxSize)
}
