package arena

import (
	"math"
	"reflect"
	"sync"
	"unsafe"
)

// Span is a byte range [Offset, Offset+Size) inside an arena buffer.
type Span struct {
	Offset int
	Size   int
}

// End returns the first offset past the span.
func (s Span) End() int {
	return s.Offset + s.Size
}

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	if s.Size == 0 || o.Size == 0 {
		return false
	}
	return s.Offset < o.End() && o.Offset < s.End()
}

// Ref is a handle to a single T carved from an Arena. It stores where the
// value lives rather than a pointer to it; use Get to obtain a view.
type Ref[T any] struct {
	arena uint64
	off   int
}

// Alloc reserves room for one zero-valued T and returns a handle to it.
//
// It fails with a KindExhausted error when T does not fit in the remaining
// capacity, leaving the arena unchanged. Types holding Go pointers are
// rejected with KindUnsupported.
func Alloc[T any](a *Arena) (Ref[T], error) {
	var zero T
	typ := typeName[T]()
	if err := checkPointerFree[T](typ); err != nil {
		return Ref[T]{}, err
	}
	off, err := a.reserve(int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero)), typ)
	if err != nil {
		return Ref[T]{}, err
	}
	return Ref[T]{arena: a.id, off: off}, nil
}

// Get returns a pointer to the value in a's buffer. The pointer stays valid
// until a is closed. With MmapBackend the memory is unmapped by Close, and
// dereferencing a pointer kept past that point faults (SIGSEGV) rather than
// returning an error; call Get again instead of holding on to the pointer.
func (r Ref[T]) Get(a *Arena) (*T, error) {
	p, err := a.view(r.arena, r.off, r.Size(), typeName[T]())
	if err != nil {
		return nil, err
	}
	if p == nil {
		return new(T), nil
	}
	return (*T)(p), nil
}

// Offset returns where the value starts in the arena buffer.
func (r Ref[T]) Offset() int {
	return r.off
}

// Size returns unsafe.Sizeof(T).
func (r Ref[T]) Size() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Span returns the byte range reserved for the value.
func (r Ref[T]) Span() Span {
	return Span{Offset: r.off, Size: r.Size()}
}

// IsZero reports whether r is the zero handle, which no arena hands out.
func (r Ref[T]) IsZero() bool {
	return r.arena == 0
}

// SliceRef is a handle to n contiguous T values carved from an Arena.
type SliceRef[T any] struct {
	arena uint64
	off   int
	n     int
}

// AllocSlice reserves room for n zero-valued T laid out contiguously.
// n == 0 yields an empty handle without touching the arena.
func AllocSlice[T any](a *Arena, n int) (SliceRef[T], error) {
	var zero T
	typ := "[]" + typeName[T]()
	if n < 0 {
		return SliceRef[T]{}, unsupported(typ, "negative length")
	}
	if err := checkPointerFree[T](typ); err != nil {
		return SliceRef[T]{}, err
	}

	elem := int(unsafe.Sizeof(zero))
	size := n * elem
	if elem > 0 && n > math.MaxInt/elem {
		// Saturate; reserve reports it as exhausted.
		size = math.MaxInt
	}
	off, err := a.reserve(size, int(unsafe.Alignof(zero)), typ)
	if err != nil {
		return SliceRef[T]{}, err
	}
	return SliceRef[T]{arena: a.id, off: off, n: n}, nil
}

// AllocBytes reserves n zeroed bytes.
func (a *Arena) AllocBytes(n int) (SliceRef[byte], error) {
	return AllocSlice[byte](a, n)
}

// Get returns a slice aliasing the values in a's buffer. The slice has
// length and capacity Len() and stays valid until a is closed. As with
// Ref.Get, touching the slice after closing an mmap-backed arena faults.
func (r SliceRef[T]) Get(a *Arena) ([]T, error) {
	p, err := a.view(r.arena, r.off, r.Size(), "[]"+typeName[T]())
	if err != nil {
		return nil, err
	}
	if r.n == 0 {
		return nil, nil
	}
	if p == nil {
		return unsafe.Slice(new(T), r.n), nil
	}
	return unsafe.Slice((*T)(p), r.n), nil
}

// Len returns the number of elements.
func (r SliceRef[T]) Len() int {
	return r.n
}

// Offset returns where the first element starts in the arena buffer.
func (r SliceRef[T]) Offset() int {
	return r.off
}

// Size returns the number of bytes reserved.
func (r SliceRef[T]) Size() int {
	var zero T
	return r.n * int(unsafe.Sizeof(zero))
}

// Span returns the byte range reserved for the elements.
func (r SliceRef[T]) Span() Span {
	return Span{Offset: r.off, Size: r.Size()}
}

// IsZero reports whether r is the zero handle.
func (r SliceRef[T]) IsZero() bool {
	return r.arena == 0
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// pointerFree caches per-type results of hasPointers.
var pointerFree sync.Map // reflect.Type -> bool

// checkPointerFree rejects types the garbage collector would need to scan.
// Arena bytes are opaque to the GC, so a pointer stored there does not keep
// its target alive.
func checkPointerFree[T any](typ string) error {
	t := reflect.TypeFor[T]()
	ok, cached := pointerFree.Load(t)
	if !cached {
		ok, _ = pointerFree.LoadOrStore(t, !hasPointers(t))
	}
	if !ok.(bool) {
		return unsupported(typ, "type contains Go pointers")
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Slice, reflect.Map,
		reflect.String, reflect.Interface, reflect.Chan, reflect.Func:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
