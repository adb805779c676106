package arena

import (
	"math"
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendsReserve(t *testing.T) {
	page := os.Getpagesize()
	backends := map[string]Backend{
		"heap": HeapBackend{},
		"mmap": MmapBackend{},
	}
	layouts := []Layout{
		{Size: 1, Align: 1},
		{Size: 512, Align: 8},
		{Size: 1000, Align: 64},
		{Size: page, Align: page},
		{Size: 3 * page, Align: 4 * page},
	}

	for name, backend := range backends {
		for _, l := range layouts {
			r, err := backend.Reserve(l)
			require.NoError(t, err, "%s %+v", name, l)

			b := r.Bytes()
			assert.Len(t, b, l.Size, "%s %+v", name, l)
			assert.Equal(t, l.Size, cap(b), "%s %+v", name, l)
			addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
			assert.Zero(t, addr%uintptr(l.Align), "%s %+v at %#x", name, l, addr)
			for i, c := range b {
				if c != 0 {
					t.Fatalf("%s %+v: byte %d = %#x, want 0", name, l, i, c)
				}
			}
			// Writable across the full range.
			b[0], b[len(b)-1] = 1, 2

			require.NoError(t, r.Release(), "%s %+v", name, l)
			assert.Error(t, r.Release(), "%s %+v: second release", name, l)
		}
	}
}

func TestBackendsReserveTooLarge(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("requires a 64-bit platform")
	}
	l := Layout{Size: math.MaxInt / 2, Align: 8}

	_, err := HeapBackend{}.Reserve(l)
	assert.Error(t, err)

	_, err = MmapBackend{}.Reserve(l)
	assert.Error(t, err)
}

func TestAlignedWindow(t *testing.T) {
	raw := make([]byte, 64+63)
	w, err := alignedWindow(raw, Layout{Size: 64, Align: 64})
	require.NoError(t, err)
	assert.Len(t, w, 64)
	assert.Zero(t, uintptr(unsafe.Pointer(&w[0]))%64)

	_, err = alignedWindow(nil, Layout{Size: 1, Align: 1})
	assert.Error(t, err)

	_, err = alignedWindow(make([]byte, 4), Layout{Size: 8, Align: 1})
	assert.Error(t, err)
}
