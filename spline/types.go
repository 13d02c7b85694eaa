package spline

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcspline.spline'
func tracer() tracing.Trace {
	return tracing.Select("arcspline.spline")
}

// DefaultIntegrationSegments is the number of chords used per segment to
// estimate arc length, if not configured otherwise.
const DefaultIntegrationSegments = 100

var (
	// ErrNoNodes indicates that a spline has no nodes to build segments from.
	ErrNoNodes = errors.New("spline has no nodes")
	// ErrInvalidNode indicates a node coordinate containing NaN/Inf.
	ErrInvalidNode = errors.New("spline has invalid node coordinate")
	// ErrIntegrationSegments indicates a non-positive integration segment count.
	ErrIntegrationSegments = errors.New("integration segment count must be at least 1")
	// ErrNilSource indicates a spline without a node source.
	ErrNilSource = errors.New("node source must not be nil")
	// ErrUninitializedSegment is the panic value for segments queried before
	// the total path length has been set.
	ErrUninitializedSegment = errors.New("segment path length must be set before evaluation")
)

// CacheState is the state of a spline's segment cache.
type CacheState uint8

// A spline starts out Dirty. Any query rebuilds a Dirty spline and leaves it
// Clean; MarkDirty (or a configuration change) makes it Dirty again.
const (
	Dirty CacheState = iota
	Clean
)

func (s CacheState) String() string {
	if s == Clean {
		return "clean"
	}
	return "dirty"
}

// Option configures a Spline during creation.
type Option func(*options)

type options struct {
	integration int
	closed      bool
}

func defaultOptions() options {
	return options{
		integration: DefaultIntegrationSegments,
	}
}

// WithIntegrationSegments sets the number of chords per segment used for
// arc length estimation. Higher values increase the accuracy of constant
// speed evaluation; the shape of the curve is always exact.
func WithIntegrationSegments(n int) Option {
	return func(o *options) {
		o.integration = n
	}
}

// WithClosed makes the spline a closed loop: an implicit segment connects
// the last node back to the first one.
func WithClosed(closed bool) Option {
	return func(o *options) {
		o.closed = closed
	}
}
