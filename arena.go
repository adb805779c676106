// Package arena implements a fixed-capacity bump allocator (memory arena).
// Typical usage: size one arena for a known memory budget, carve typed
// values out of it, then Close it once to release everything together.
package arena

import (
	"fmt"
	"unsafe"

	"github.com/dustin/go-humanize"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// nextID hands out arena identities so handles can be checked against the
// arena that produced them.
var nextID atomic.Uint64

// Arena is a single fixed-size buffer from which values are carved by
// advancing a monotonic offset. Not goroutine-safe.
type Arena struct {
	region    Region
	log       *zap.Logger
	metrics   *arenaMetrics
	name      string
	buf       []byte
	layout    Layout
	id        uint64
	offset    int
	count     int
	typeAlign bool
}

// New creates an arena of capacity bytes whose buffer starts at a multiple
// of alignment. Every byte is zeroed before New returns.
//
// It returns a KindLayout error for an invalid capacity/alignment pair, a
// KindMetrics error when WithRegisterer's collectors clash with ones already
// registered, and a KindOutOfMemory error when the backend cannot reserve
// the buffer.
func New(capacity, alignment int, opts ...Option) (*Arena, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	l, err := NewLayout(capacity, alignment)
	if err != nil {
		return nil, err
	}

	id := nextID.Inc()
	name := o.name
	if name == "" {
		name = fmt.Sprintf("arena-%d", id)
	}

	// Register collectors before reserving so a failure leaves nothing to
	// release.
	var metrics *arenaMetrics
	if o.reg != nil {
		if metrics, err = newArenaMetrics(o.reg, name, l.Size); err != nil {
			return nil, err
		}
	}

	region, err := o.backend.Reserve(l)
	if err != nil {
		metrics.unregister()
		return nil, outOfMemory(l, err)
	}
	buf := region.Bytes()
	if len(buf) != l.Size {
		_ = region.Release()
		metrics.unregister()
		return nil, corrupt("new", len(buf), l.Size)
	}
	// Backends may already hand out zeroed memory; the contract does not
	// depend on it.
	clear(buf)

	log := o.logger
	if log == nil {
		log = Logger()
	}

	a := &Arena{
		region:    region,
		log:       log.With(zap.String("arena", name)),
		metrics:   metrics,
		name:      name,
		buf:       buf,
		layout:    l,
		id:        id,
		typeAlign: o.typeAlign,
	}

	a.log.Debug("arena created",
		zap.Int("capacity", l.Size),
		zap.Int("alignment", l.Align),
		zap.String("size", humanize.IBytes(uint64(l.Size))),
		zap.Bool("type_alignment", a.typeAlign))

	return a, nil
}

// NewStatic creates an arena whose capacity and alignment are fixed by the
// type parameter L.
func NewStatic[L Static](opts ...Option) (*Arena, error) {
	var l L
	return New(l.Capacity(), l.Alignment(), opts...)
}

// reserve bumps the offset by size bytes and returns where the reservation
// starts. In type-alignment mode the start is first rounded up to align.
// On failure the offset is left unchanged.
func (a *Arena) reserve(size, align int, typ string) (int, error) {
	if a == nil {
		return 0, invalidRef(typ, 0, size, "nil arena")
	}
	if a.region == nil {
		a.metrics.failed(KindClosed)
		return 0, closedError("alloc")
	}
	if size == 0 {
		return a.offset, nil
	}

	off := a.offset
	if a.typeAlign && align > 1 {
		off = alignUp(off, align)
	}
	capacity := a.layout.Size
	if off > capacity || size > capacity-off {
		a.metrics.failed(KindExhausted)
		a.log.Debug("arena exhausted",
			zap.String("type", typ),
			zap.Int("size", size),
			zap.Int("offset", a.offset),
			zap.Int("capacity", capacity))
		return 0, exhausted(typ, size, a.offset, capacity)
	}

	clear(a.buf[off : off+size])
	a.offset = off + size
	a.count++
	a.metrics.allocated(a.offset)
	return off, nil
}

// view re-derives a pointer to size bytes at off for a handle minted by the
// arena with identity id. It returns nil for zero-size views.
func (a *Arena) view(id uint64, off, size int, typ string) (unsafe.Pointer, error) {
	if a == nil {
		return nil, invalidRef(typ, off, size, "nil arena")
	}
	if a.region == nil {
		return nil, closedError("get")
	}
	if id != a.id {
		return nil, invalidRef(typ, off, size, fmt.Sprintf("handle belongs to arena #%d, not %s", id, a.name))
	}
	if off < 0 || size < 0 || off > a.offset || size > a.offset-off {
		return nil, invalidRef(typ, off, size, fmt.Sprintf("range outside allocated bytes [0, %d)", a.offset))
	}
	if size == 0 {
		return nil, nil
	}
	return unsafe.Pointer(&a.buf[off]), nil
}

// Close releases the buffer through the backend that reserved it. Views
// derived from the arena must not be used afterwards. Calling Close twice
// returns a KindClosed error.
func (a *Arena) Close() error {
	if a.region == nil {
		return closedError("close")
	}
	err := a.region.Release()
	a.region, a.buf = nil, nil
	a.metrics.unregister()

	a.log.Debug("arena closed",
		zap.Int("offset", a.offset),
		zap.Int("allocations", a.count),
		zap.Error(err))

	if err != nil {
		return &Error{Op: "close", Kind: KindCorrupt, Capacity: a.layout.Size, Detail: "release buffer", Cause: err}
	}
	return nil
}

// Closed reports whether Close has been called.
func (a *Arena) Closed() bool {
	return a.region == nil
}

// Name returns the name used in logs and metrics.
func (a *Arena) Name() string {
	return a.name
}

// Layout returns the capacity and alignment the arena was built with.
func (a *Arena) Layout() Layout {
	return a.layout
}

// String implements fmt.Stringer.
func (a *Arena) String() string {
	state := "open"
	if a.Closed() {
		state = "closed"
	}
	return fmt.Sprintf("%s: %s of %s used (%.1f%%), align %d, %d allocations, %s",
		a.name,
		humanize.IBytes(uint64(a.offset)),
		humanize.IBytes(uint64(a.layout.Size)),
		a.Utilization()*100,
		a.layout.Align,
		a.count,
		state)
}
