package arena

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "kind only",
			err:  &Error{Kind: KindClosed},
			want: "arena: closed",
		},
		{
			name: "layout",
			err:  layoutError(0, 8, "size must be positive"),
			want: "arena layout: layout: size 0 align 8: size must be positive",
		},
		{
			name: "exhausted",
			err:  exhausted("[256]uint8", 256, 512, 512),
			want: "arena alloc: exhausted (type [256]uint8): need 256 bytes at offset 512, 0 remaining",
		},
		{
			name: "with cause",
			err:  outOfMemory(Layout{Size: 64, Align: 8}, errors.New("mmap failed")),
			want: "arena new: out_of_memory: reserve 64 bytes (align 8) (caused by: mmap failed)",
		},
		{
			name: "metrics",
			err:  metricsError("scratch", errors.New("duplicate")),
			want: "arena new: metrics: register collectors for scratch (caused by: duplicate)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := errors.Wrap(exhausted("uint64", 8, 0, 4), "carving header")

	assert.ErrorIs(t, err, ErrExhausted)
	assert.NotErrorIs(t, err, ErrLayout)
	assert.NotErrorIs(t, err, ErrOutOfMemory)
	assert.True(t, IsAllocError(err))
	assert.False(t, IsLayoutError(err))
	assert.Equal(t, KindExhausted, KindOf(err))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsAllocError(nil))
	assert.False(t, (&Error{Kind: KindClosed}).Is(errors.New("closed")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("ENOMEM")
	err := outOfMemory(Layout{Size: 1, Align: 1}, cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsAllocError(err))
	assert.Nil(t, (&Error{Kind: KindCorrupt}).Unwrap())
}
