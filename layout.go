package arena

import (
	"math"
	"math/bits"
)

// Layout is the (size, alignment) pair describing a memory region.
type Layout struct {
	Size  int
	Align int
}

// NewLayout validates size and align. Size and align must be positive,
// align must be a power of two, and size rounded up to align must not
// overflow an int.
func NewLayout(size, align int) (Layout, error) {
	switch {
	case size <= 0:
		return Layout{}, layoutError(size, align, "size must be positive")
	case align <= 0:
		return Layout{}, layoutError(size, align, "alignment must be positive")
	case bits.OnesCount(uint(align)) != 1:
		return Layout{}, layoutError(size, align, "alignment must be a power of two")
	case size > math.MaxInt-(align-1):
		return Layout{}, layoutError(size, align, "size rounded up to alignment overflows")
	}
	return Layout{Size: size, Align: align}, nil
}

// Padded returns Size rounded up to a multiple of Align.
func (l Layout) Padded() int {
	return alignUp(l.Size, l.Align)
}

// Static describes an arena layout fixed by a type rather than by runtime
// values. Implementations are zero-size types whose methods return
// constants:
//
//	type Scratch struct{}
//
//	func (Scratch) Capacity() int  { return 512 }
//	func (Scratch) Alignment() int { return 8 }
//
//	a, err := arena.NewStatic[Scratch]()
type Static interface {
	Capacity() int
	Alignment() int
}

// alignUp rounds off up to the next multiple of align (a power of two).
func alignUp(off, align int) int {
	mask := align - 1
	return (off + mask) &^ mask
}
