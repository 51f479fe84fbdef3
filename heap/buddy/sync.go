package buddy

import "sync"

// Locked serialises every call on the wrapped Allocator with a mutex.
// The buddy heap's free-list updates are not atomic, so concurrent callers
// must go through a wrapper like this one.
type Locked struct {
	mu sync.Mutex
	a  Allocator
}

// NewLocked wraps a.
func NewLocked(a Allocator) *Locked {
	return &Locked{a: a}
}

// Allocate implements Allocator.
func (l *Locked) Allocate(size int) (Ptr, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Allocate(size)
}

// Release implements Allocator.
func (l *Locked) Release(ptr Ptr, size int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Release(ptr, size)
}

// Bytes implements Allocator.
func (l *Locked) Bytes(ptr Ptr, size int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Bytes(ptr, size)
}

// Do runs fn with the lock held, for reads of heap state such as Stats.
func (l *Locked) Do(fn func(a Allocator)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.a)
}
