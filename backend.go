package arena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Backend reserves the single buffer an arena carves from.
//
// Reserve must return a Region whose Bytes() has length and capacity exactly
// l.Size and whose first byte is aligned to l.Align.
type Backend interface {
	Reserve(l Layout) (Region, error)
}

// Region is a buffer handed out by a Backend. Release gives it back using
// the same layout it was reserved with and must be called exactly once.
type Region interface {
	Bytes() []byte
	Release() error
}

// HeapBackend reserves buffers from the Go heap. The buffer is over-allocated
// by Align-1 bytes and sliced at the first aligned address.
type HeapBackend struct{}

// Reserve implements Backend.
func (HeapBackend) Reserve(l Layout) (r Region, err error) {
	// make panics with a recoverable runtime error when the length is out
	// of range for the platform.
	defer func() {
		if p := recover(); p != nil {
			r = nil
			err = errors.Errorf("heap reserve: %v", p)
		}
	}()

	raw := make([]byte, l.Size+l.Align-1)
	buf, err := alignedWindow(raw, l)
	if err != nil {
		return nil, err
	}
	return &heapRegion{raw: raw, buf: buf}, nil
}

type heapRegion struct {
	raw []byte
	buf []byte
}

func (r *heapRegion) Bytes() []byte { return r.buf }

func (r *heapRegion) Release() error {
	if r.raw == nil {
		return errors.New("heap region already released")
	}
	r.raw, r.buf = nil, nil
	return nil
}

// alignedWindow returns the l.Size bytes of raw starting at the first address
// aligned to l.Align. raw must hold at least l.Size+l.Align-1 bytes.
func alignedWindow(raw []byte, l Layout) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty backing buffer")
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	pad := 0
	if rem := int(base & uintptr(l.Align-1)); rem != 0 {
		pad = l.Align - rem
	}
	if pad+l.Size > len(raw) {
		return nil, errors.Errorf("backing buffer of %d bytes cannot hold %d bytes aligned to %d", len(raw), l.Size, l.Align)
	}
	return raw[pad : pad+l.Size : pad+l.Size], nil
}
