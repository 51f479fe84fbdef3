//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package mmfile

import "unsafe"

// MapAnonAligned returns size bytes of zero-filled memory whose first byte is
// aligned to align. The platform cannot release part of a mapping, so the
// whole size+align region stays reserved until cleanup runs.
func MapAnonAligned(size, align int) ([]byte, func() error, error) {
	if err := checkAligned(size, align); err != nil {
		return nil, nil, err
	}
	raw, cleanup, err := MapAnon(size + align)
	if err != nil {
		return nil, nil, err
	}
	start := uintptr(unsafe.Pointer(&raw[0]))
	mask := uintptr(align - 1)
	skip := int(((start + mask) &^ mask) - start)
	return raw[skip : skip+size : skip+size], cleanup, nil
}
