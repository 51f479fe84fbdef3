package trace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidwall/hashmap"
	"github.com/zeebo/xxh3"

	"github.com/joshuapare/budkit/heap/buddy"
	"github.com/joshuapare/budkit/heap/page"
)

// ReplayOptions configures a Replayer.
type ReplayOptions struct {
	// Verify fills every block with an id-derived pattern and checks its
	// hash before release.
	Verify bool

	// ReleaseLeaks frees ids still live when the trace ends.
	ReleaseLeaks bool

	// Logger receives one debug record per failed op. nil discards.
	Logger *slog.Logger
}

// Result summarises a replay.
type Result struct {
	Ops           int     `json:"ops"`
	Requests      int     `json:"requests"`
	Frees         int     `json:"frees"`
	PeakPages     int     `json:"peak_pages"`
	PeakRequested int64   `json:"peak_requested_bytes"`
	PageSize      int     `json:"page_size"`
	Utilization   float64 `json:"utilization"` // PeakRequested / (PeakPages * PageSize)
	Leaks         int     `json:"leaks"`       // ids live at the end of the trace
	Verified      int     `json:"verified"`    // blocks whose content was checked
}

type liveBlock struct {
	ptr  buddy.Ptr
	size int
	sum  uint64
}

// Replayer runs traces against an Allocator and measures page usage
// through its Provider.
type Replayer struct {
	a    buddy.Allocator
	p    page.Provider
	opts ReplayOptions
	log  *slog.Logger
	live *hashmap.Map[int, liveBlock]

	requested int64
	res       Result
}

// NewReplayer creates a replayer. p must be the provider a draws pages from.
func NewReplayer(a buddy.Allocator, p page.Provider, opts ReplayOptions) *Replayer {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Replayer{
		a:    a,
		p:    p,
		opts: opts,
		log:  log,
		live: hashmap.New[int, liveBlock](64),
		res:  Result{PageSize: p.PageSize()},
	}
}

// Replay runs ops in order. It stops at the first failing op with an
// *OpError, or when ctx is cancelled.
func (r *Replayer) Replay(ctx context.Context, ops []Op) (Result, error) {
	for i, op := range ops {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return r.result(), err
			}
		}
		if err := r.step(op); err != nil {
			r.log.Debug("replay op failed", "index", i, "op", op.String(), "line", op.Line, "error", err)
			return r.result(), &OpError{Index: i, Op: op, Err: err}
		}
	}

	r.res.Leaks = r.live.Len()
	if r.opts.ReleaseLeaks {
		for _, id := range r.live.Keys() {
			if err := r.free(id); err != nil {
				return r.result(), fmt.Errorf("trace: releasing leaked id %d: %w", id, err)
			}
		}
	}
	return r.result(), nil
}

func (r *Replayer) step(op Op) error {
	r.res.Ops++
	switch op.Kind {
	case OpRequest:
		r.res.Requests++
		return r.request(op.ID, op.Size)
	case OpFree:
		r.res.Frees++
		return r.free(op.ID)
	default:
		return fmt.Errorf("%w: op kind %d", ErrSyntax, op.Kind)
	}
}

func (r *Replayer) request(id, size int) error {
	if _, dup := r.live.Get(id); dup {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	ptr, mem, err := r.a.Allocate(size)
	if err != nil {
		return err
	}
	b := liveBlock{ptr: ptr, size: size}
	if r.opts.Verify {
		pattern(mem, id)
		b.sum = xxh3.Hash(mem)
	}
	r.live.Set(id, b)

	r.requested += int64(size)
	r.res.PeakRequested = max(r.res.PeakRequested, r.requested)
	r.res.PeakPages = max(r.res.PeakPages, r.p.InUse())
	return nil
}

func (r *Replayer) free(id int) error {
	b, ok := r.live.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	if r.opts.Verify {
		mem, err := r.a.Bytes(b.ptr, b.size)
		if err != nil {
			return err
		}
		if xxh3.Hash(mem) != b.sum {
			return fmt.Errorf("%w: id %d at %#x", ErrContentMismatch, id, b.ptr)
		}
		r.res.Verified++
	}
	if err := r.a.Release(b.ptr, b.size); err != nil {
		return err
	}
	r.live.Delete(id)
	r.requested -= int64(b.size)
	return nil
}

func (r *Replayer) result() Result {
	res := r.res
	if res.PeakPages > 0 {
		res.Utilization = float64(res.PeakRequested) / float64(res.PeakPages*res.PageSize)
	}
	return res
}

// Live reports the number of ids currently live.
func (r *Replayer) Live() int {
	return r.live.Len()
}

// pattern fills mem with bytes derived from id and position.
func pattern(mem []byte, id int) {
	seed := byte(id*31 + 7)
	for i := range mem {
		mem[i] = seed + byte(i)
	}
}
