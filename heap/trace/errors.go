package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates a malformed trace line.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrDuplicateID indicates a REQUEST for an id that is still live.
	ErrDuplicateID = errors.New("trace: id already live")

	// ErrUnknownID indicates a FREE for an id that is not live.
	ErrUnknownID = errors.New("trace: id not live")

	// ErrContentMismatch indicates a block's memory changed while it was live.
	ErrContentMismatch = errors.New("trace: block content changed while live")
)

// ParseError reports a bad line in a trace file.
type ParseError struct {
	Line int    // 1-based line number
	Text string // offending line, trimmed
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace: line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// OpError reports a failed replay step.
type OpError struct {
	Index int // position in the op slice
	Op    Op
	Err   error
}

func (e *OpError) Error() string {
	if e.Op.Line > 0 {
		return fmt.Sprintf("trace: op %d (line %d, %s): %v", e.Index, e.Op.Line, e.Op, e.Err)
	}
	return fmt.Sprintf("trace: op %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
