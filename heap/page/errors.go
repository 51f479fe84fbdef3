package page

import "errors"

var (
	// ErrExhausted indicates the provider cannot supply another page.
	ErrExhausted = errors.New("page: provider exhausted")

	// ErrUnknownHandle indicates Release was given a handle the provider never issued
	// or has already reclaimed.
	ErrUnknownHandle = errors.New("page: unknown page handle")

	// ErrBadPageSize indicates a page size that is not a power of two or is too small.
	ErrBadPageSize = errors.New("page: page size must be a power of two >= 256")
)
