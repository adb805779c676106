package arena

import (
	"fmt"
	"strings"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend wraps HeapBackend and records releases.
type countingBackend struct {
	reserved int
	released int
	short    bool
}

func (b *countingBackend) Reserve(l Layout) (Region, error) {
	r, err := HeapBackend{}.Reserve(l)
	if err != nil {
		return nil, err
	}
	b.reserved++
	if b.short {
		return &countingRegion{Region: r, b: b, buf: r.Bytes()[:l.Size-1]}, nil
	}
	return &countingRegion{Region: r, b: b, buf: r.Bytes()}, nil
}

type countingRegion struct {
	Region
	b   *countingBackend
	buf []byte
}

func (r *countingRegion) Bytes() []byte { return r.buf }

func (r *countingRegion) Release() error {
	r.b.released++
	return r.Region.Release()
}

type failingBackend struct{ err error }

func (b failingBackend) Reserve(Layout) (Region, error) { return nil, b.err }

// dirtyBackend hands out memory that is not zeroed.
type dirtyBackend struct{}

func (dirtyBackend) Reserve(l Layout) (Region, error) {
	r, err := HeapBackend{}.Reserve(l)
	if err != nil {
		return nil, err
	}
	for i := range r.Bytes() {
		r.Bytes()[i] = 0xaa
	}
	return r, nil
}

type scratch struct{}

func (scratch) Capacity() int  { return 512 }
func (scratch) Alignment() int { return 8 }

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		alignment int
		wantErr   bool
	}{
		{"example", 512, 8, false},
		{"single byte", 1, 1, false},
		{"odd capacity", 17, 4, false},
		{"cache line", 1024, 64, false},
		{"zero capacity", 0, 8, true},
		{"zero alignment", 512, 0, true},
		{"non power of two alignment", 512, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.capacity, tt.alignment)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, a)
				assert.True(t, IsLayoutError(err))
				return
			}
			require.NoError(t, err)
			defer a.Close()

			assert.Equal(t, tt.capacity, a.Capacity())
			assert.Equal(t, tt.alignment, a.Alignment())
			assert.Equal(t, 0, a.Offset())
			assert.Len(t, a.buf, tt.capacity)
			assert.Equal(t, tt.capacity, cap(a.buf))
		})
	}
}

func TestNewStatic(t *testing.T) {
	a, err := NewStatic[scratch]()
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, Layout{Size: 512, Align: 8}, a.Layout())
}

func TestNewZeroesBuffer(t *testing.T) {
	a, err := New(256, 16, WithBackend(dirtyBackend{}))
	require.NoError(t, err)
	defer a.Close()

	for i, c := range a.buf {
		if c != 0 {
			t.Fatalf("byte %d = %#x after New, want 0", i, c)
		}
	}
}

func TestNewBackendFailure(t *testing.T) {
	cause := errors.New("no memory for you")
	a, err := New(512, 8, WithBackend(failingBackend{err: cause}))
	require.Error(t, err)
	assert.Nil(t, a)

	assert.True(t, IsAllocError(err))
	assert.False(t, IsLayoutError(err))
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindOutOfMemory, KindOf(err))
}

func TestNewHeapOutOfRange(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("requires a 64-bit platform")
	}
	// Valid layout, but far beyond anything the runtime will allocate.
	a, err := New(1<<62, 8)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestNewShortRegionIsReleased(t *testing.T) {
	b := &countingBackend{short: true}
	a, err := New(64, 8, WithBackend(b))
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Equal(t, KindCorrupt, KindOf(err))
	assert.Equal(t, 1, b.reserved)
	assert.Equal(t, 1, b.released)
}

func TestNewIDsAreUnique(t *testing.T) {
	a1, err := New(8, 8)
	require.NoError(t, err)
	defer a1.Close()
	a2, err := New(8, 8)
	require.NoError(t, err)
	defer a2.Close()

	assert.NotEqual(t, a1.id, a2.id)
	assert.NotEqual(t, a1.Name(), a2.Name())
	assert.True(t, strings.HasPrefix(a1.Name(), "arena-"))
}

func TestBufferAlignment(t *testing.T) {
	backends := map[string]Backend{
		"heap": HeapBackend{},
		"mmap": MmapBackend{},
	}

	for name, backend := range backends {
		for _, align := range []int{1, 2, 8, 64, 4096, 1 << 16} {
			t.Run(fmt.Sprintf("%s/align-%d", name, align), func(t *testing.T) {
				a, err := New(100, align, WithBackend(backend))
				require.NoError(t, err)
				defer a.Close()

				addr := uintptr(unsafe.Pointer(&a.buf[0]))
				assert.Zero(t, addr%uintptr(align), "buffer at %#x not aligned to %d", addr, align)
				assert.Len(t, a.buf, 100)
			})
		}
	}
}

func TestClose(t *testing.T) {
	b := &countingBackend{}
	a, err := New(64, 8, WithBackend(b))
	require.NoError(t, err)

	ref, err := Alloc[uint64](a)
	require.NoError(t, err)
	_, err = Alloc[uint32](a)
	require.NoError(t, err)

	require.False(t, a.Closed())
	require.NoError(t, a.Close())
	assert.True(t, a.Closed())
	assert.Equal(t, 1, b.released, "buffer must be released exactly once")

	err = a.Close()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 1, b.released)

	_, err = Alloc[uint64](a)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = ref.Get(a)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = a.Dump()
	assert.ErrorIs(t, err, ErrClosed)

	// Offset is never rewound.
	assert.Equal(t, 12, a.Offset())
}

func TestCloseMmap(t *testing.T) {
	a, err := New(4096, 8, WithBackend(MmapBackend{}))
	require.NoError(t, err)

	ref, err := Alloc[[64]byte](a)
	require.NoError(t, err)
	p, err := ref.Get(a)
	require.NoError(t, err)
	p[0] = 1

	require.NoError(t, a.Close())
	assert.ErrorIs(t, a.Close(), ErrClosed)
}

func TestArenaString(t *testing.T) {
	a, err := New(1024, 8, WithName("scratch"))
	require.NoError(t, err)

	_, err = a.AllocBytes(256)
	require.NoError(t, err)

	assert.Equal(t, "scratch: 256 B of 1.0 KiB used (25.0%), align 8, 1 allocations, open", a.String())
	require.NoError(t, a.Close())
	assert.True(t, strings.HasSuffix(a.String(), ", closed"))
}
