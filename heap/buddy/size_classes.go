package buddy

import (
	"math/bits"

	"github.com/joshuapare/budkit/internal/buf"
)

// nextPowerOf2 rounds n up to a power of two by smearing the highest set bit
// downward and incrementing. nextPowerOf2(0) is 0.
func nextPowerOf2(n uint64) uint64 {
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

// log2 returns floor(log2(n)) for n > 0, and 0 for n == 0.
func log2(n uint64) int {
	if n == 0 {
		return 0
	}
	return bits.Len64(n) - 1
}

// blockSize returns the byte size of class k.
func (l *layout) blockSize(k int) int {
	return l.minBlock << k
}

// classForExtent returns the class of the smallest block holding extent bytes.
// The result may exceed numClasses for extents larger than a page.
func (l *layout) classForExtent(extent int) int {
	if extent < l.minBlock {
		extent = l.minBlock
	}
	return log2(nextPowerOf2(uint64(extent))) - l.minShift
}

// classFor maps a request size to its class. A result equal to numClasses
// selects the large-block path.
func (l *layout) classFor(size int) (int, error) {
	if size <= 0 {
		return 0, ErrInvalidSize
	}
	extent, ok := buf.AddOverflowSafe(size, l.tag)
	if !ok {
		return 0, ErrTooLarge
	}
	if extent > l.pageSize/2 {
		if size > l.largeCapacity() {
			return 0, ErrTooLarge
		}
		return l.numClasses, nil
	}
	return l.classForExtent(extent), nil
}

// largeCapacity is the usable size of a dedicated page.
func (l *layout) largeCapacity() int {
	return l.pageSize - pageHeaderSize
}

// ClassInfo describes one size class.
type ClassInfo struct {
	Class      int  // Free-list index; equals the number of lists for the large class
	BlockSize  int  // Bytes occupied by one block of this class
	MaxRequest int  // Largest request served from this class
	Large      bool // Served by a dedicated page
}

// Classes returns the size-class table for cfg, smallest class first, ending
// with the large class.
func Classes(cfg Config) ([]ClassInfo, error) {
	cfg = cfg.withDefaults(nil)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := newLayout(cfg)
	out := make([]ClassInfo, 0, l.numClasses+1)
	for k := range l.numClasses {
		out = append(out, ClassInfo{
			Class:      k,
			BlockSize:  l.blockSize(k),
			MaxRequest: l.blockSize(k) - l.tag,
		})
	}
	out = append(out, ClassInfo{
		Class:      l.numClasses,
		BlockSize:  l.pageSize,
		MaxRequest: l.largeCapacity(),
		Large:      true,
	})
	return out, nil
}

// ClassOf returns the class a request of size bytes maps to under cfg.
func ClassOf(cfg Config, size int) (ClassInfo, error) {
	cfg = cfg.withDefaults(nil)
	if err := cfg.validate(); err != nil {
		return ClassInfo{}, err
	}
	l := newLayout(cfg)
	k, err := l.classFor(size)
	if err != nil {
		return ClassInfo{}, err
	}
	if k == l.numClasses {
		return ClassInfo{Class: k, BlockSize: l.pageSize, MaxRequest: l.largeCapacity(), Large: true}, nil
	}
	return ClassInfo{Class: k, BlockSize: l.blockSize(k), MaxRequest: l.blockSize(k) - l.tag}, nil
}
