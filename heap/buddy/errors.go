package buddy

import "errors"

var (
	// ErrInvalidSize indicates a request for zero or a negative number of bytes.
	ErrInvalidSize = errors.New("buddy: size must be positive")

	// ErrTooLarge indicates a request that does not fit in a dedicated page.
	ErrTooLarge = errors.New("buddy: size exceeds largest allocation")

	// ErrBadPointer indicates a pointer this allocator did not hand out, or one
	// that has already been released.
	ErrBadPointer = errors.New("buddy: pointer not allocated by this heap")

	// ErrSizeMismatch indicates a release whose size rounds to a different class
	// than the one recorded at allocation time.
	ErrSizeMismatch = errors.New("buddy: release size does not match allocation")

	// ErrBadConfig indicates an unusable Config or provider.
	ErrBadConfig = errors.New("buddy: invalid configuration")

	// ErrCorrupt indicates the heap metadata contradicts itself.
	ErrCorrupt = errors.New("buddy: heap metadata corrupt")
)

// InvariantError describes a heap invariant violated during Check.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "buddy: invariant violated: " + e.Msg
}

// Unwrap makes errors.Is(err, ErrCorrupt) hold for invariant failures.
func (e *InvariantError) Unwrap() error {
	return ErrCorrupt
}
