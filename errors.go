package arena

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind categorizes an arena error.
type Kind string

const (
	KindLayout      Kind = "layout"        // invalid capacity/alignment
	KindExhausted   Kind = "exhausted"     // allocation does not fit
	KindOutOfMemory Kind = "out_of_memory" // backend could not reserve the buffer
	KindCorrupt     Kind = "corrupt"       // buffer no longer matches its layout
	KindClosed      Kind = "closed"        // arena already torn down
	KindUnsupported Kind = "unsupported"   // type cannot live in raw arena memory
	KindInvalidRef  Kind = "invalid_ref"   // handle does not belong to this arena
	KindMetrics     Kind = "metrics"       // collectors could not be registered
)

// Sentinel errors for use with errors.Is. Matching is by Kind only.
var (
	ErrLayout      = &Error{Kind: KindLayout}
	ErrExhausted   = &Error{Kind: KindExhausted}
	ErrOutOfMemory = &Error{Kind: KindOutOfMemory}
	ErrCorrupt     = &Error{Kind: KindCorrupt}
	ErrClosed      = &Error{Kind: KindClosed}
	ErrUnsupported = &Error{Kind: KindUnsupported}
	ErrInvalidRef  = &Error{Kind: KindInvalidRef}
	ErrMetrics     = &Error{Kind: KindMetrics}
)

// Error is the structured error returned by every arena operation.
type Error struct {
	Cause    error
	Op       string
	Kind     Kind
	Type     string
	Detail   string
	Size     int
	Offset   int
	Capacity int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("arena")
	if e.Op != "" {
		b.WriteByte(' ')
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(" (type ")
		b.WriteString(e.Type)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// IsLayoutError reports whether err was caused by an invalid layout.
func IsLayoutError(err error) bool {
	return errors.Is(err, ErrLayout)
}

// IsAllocError reports whether err is an allocation failure: either the
// arena is exhausted or the backend could not reserve the buffer.
func IsAllocError(err error) bool {
	return errors.Is(err, ErrExhausted) || errors.Is(err, ErrOutOfMemory)
}

// KindOf returns the Kind of err, or "" if err is not an arena error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func layoutError(size, align int, detail string) *Error {
	return &Error{
		Op:       "layout",
		Kind:     KindLayout,
		Size:     size,
		Capacity: size,
		Detail:   fmt.Sprintf("size %d align %d: %s", size, align, detail),
	}
}

func outOfMemory(l Layout, cause error) *Error {
	return &Error{
		Op:       "new",
		Kind:     KindOutOfMemory,
		Size:     l.Size,
		Capacity: l.Size,
		Detail:   fmt.Sprintf("reserve %d bytes (align %d)", l.Size, l.Align),
		Cause:    cause,
	}
}

func exhausted(typ string, size, offset, capacity int) *Error {
	return &Error{
		Op:       "alloc",
		Kind:     KindExhausted,
		Type:     typ,
		Size:     size,
		Offset:   offset,
		Capacity: capacity,
		Detail:   fmt.Sprintf("need %d bytes at offset %d, %d remaining", size, offset, capacity-offset),
	}
}

func closedError(op string) *Error {
	return &Error{Op: op, Kind: KindClosed, Detail: "use after Close"}
}

func corrupt(op string, have, want int) *Error {
	return &Error{
		Op:       op,
		Kind:     KindCorrupt,
		Size:     have,
		Capacity: want,
		Detail:   fmt.Sprintf("buffer holds %d bytes, layout says %d", have, want),
	}
}

func unsupported(typ, detail string) *Error {
	return &Error{Op: "alloc", Kind: KindUnsupported, Type: typ, Detail: detail}
}

func invalidRef(typ string, offset, size int, detail string) *Error {
	return &Error{
		Op:     "get",
		Kind:   KindInvalidRef,
		Type:   typ,
		Size:   size,
		Offset: offset,
		Detail: detail,
	}
}

func metricsError(name string, cause error) *Error {
	return &Error{Op: "new", Kind: KindMetrics, Detail: "register collectors for " + name, Cause: cause}
}
