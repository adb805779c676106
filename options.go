package arena

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures an Arena at construction time.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	backend   Backend
	reg       prometheus.Registerer
	name      string
	typeAlign bool
}

func defaultOptions() options {
	return options{
		backend: HeapBackend{},
	}
}

// WithLogger sets the logger used for construction, exhaustion and teardown
// events. Defaults to Logger().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBackend sets where the arena buffer comes from. Defaults to HeapBackend.
func WithBackend(b Backend) Option {
	return func(o *options) {
		if b != nil {
			o.backend = b
		}
	}
}

// WithTypeAlignment pads every allocation so it starts at a multiple of the
// allocated type's alignment. Without it the arena bumps by size only and
// alignment is guaranteed for the buffer start alone.
func WithTypeAlignment() Option {
	return func(o *options) {
		o.typeAlign = true
	}
}

// WithRegisterer enables Prometheus instrumentation on reg. Series carry an
// "arena" const label set from WithName, which must be unique per registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.reg = reg
	}
}

// WithName names the arena in logs and metrics. Defaults to "arena-<id>".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
