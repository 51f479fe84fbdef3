//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package mmfile

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MapAnonAligned maps size bytes of anonymous memory whose first byte is
// aligned to align. It over-maps by align bytes, then unmaps the slack on
// either side so only the aligned window stays resident.
// The returned cleanup unmaps the window; calling it twice is a no-op.
func MapAnonAligned(size, align int) ([]byte, func() error, error) {
	if err := checkAligned(size, align); err != nil {
		return nil, nil, err
	}
	total := uintptr(size) + uintptr(align)
	raw, err := unix.MmapPtr(-1, 0, nil, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: mmap %d bytes: %w", total, err)
	}

	start := uintptr(raw)
	mask := uintptr(align - 1)
	head := ((start + mask) &^ mask) - start
	tail := total - head - uintptr(size)
	window := unsafe.Add(raw, head)

	if head > 0 {
		if err := unix.MunmapPtr(raw, head); err != nil {
			err = fmt.Errorf("mmfile: trim %d head bytes: %w", head, err)
			return nil, nil, errors.Join(err, unix.MunmapPtr(raw, total))
		}
	}
	if tail > 0 {
		if err := unix.MunmapPtr(unsafe.Add(window, size), tail); err != nil {
			err = fmt.Errorf("mmfile: trim %d tail bytes: %w", tail, err)
			return nil, nil, errors.Join(err, unix.MunmapPtr(window, uintptr(size)+tail))
		}
	}

	mapped := true
	cleanup := func() error {
		if !mapped {
			return nil
		}
		mapped = false
		return unix.MunmapPtr(window, uintptr(size))
	}
	return unsafe.Slice((*byte)(window), size), cleanup, nil
}
