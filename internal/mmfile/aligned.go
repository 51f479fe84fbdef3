package mmfile

import (
	"fmt"
	"math"
)

func checkAligned(size, align int) error {
	if size <= 0 {
		return fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	if align <= 0 || align&(align-1) != 0 {
		return fmt.Errorf("mmfile: alignment %d is not a power of two", align)
	}
	if size > math.MaxInt-align {
		return fmt.Errorf("mmfile: mapping size %d with alignment %d overflows", size, align)
	}
	return nil
}
