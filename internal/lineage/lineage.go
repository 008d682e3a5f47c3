// Package lineage decides where a process sits in the trace tree.
//
// A process that inherits no TRACEPARENT is the root of a new trace; one that
// inherits a valid value becomes a child of the span that spawned it. The
// decision is made once at startup. A malformed TRACEPARENT or RUN_ID is a
// startup error: falling back to a root span would split the run's trace.
package lineage

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GriffinCanCode/proctrace/internal/shared/id"
	"github.com/GriffinCanCode/proctrace/internal/tracecontext"
)

// State is the position of this process in the trace tree.
type State int

const (
	StateRoot State = iota
	StateChild
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateRoot:
		return "root"
	case StateChild:
		return "child"
	default:
		return "unknown"
	}
}

// Span attribute keys
const (
	AttrRunID    = attribute.Key("run.id")
	AttrSelfID   = attribute.Key("process.self_id")
	AttrParentID = attribute.Key("process.parent_id")
	AttrRole     = attribute.Key("process.role")
	AttrState    = attribute.Key("process.lineage")
)

// ErrInvalidSpanContext is returned when the tracer yields no usable span
// identity to hand downstream.
var ErrInvalidSpanContext = errors.New("tracer produced an invalid span context")

// Lineage is the resolved identity of this process.
type Lineage struct {
	State State

	RunID     id.RunID
	RunMinted bool // true when this process minted RunID itself

	SelfID   id.ProcessID
	ParentID string // PARENT_ID as inherited, for log attribution only

	// Parent is the inherited span identity; zero in StateRoot.
	Parent tracecontext.TraceParent
}

// Resolve turns the inherited context into this process's lineage.
func Resolve(in Inherited, gen *id.Generator) (*Lineage, error) {
	if gen == nil {
		gen = id.Default()
	}

	l := &Lineage{
		SelfID:   gen.NewProcessID(),
		ParentID: in.ParentID,
	}

	if in.HasTraceParent {
		parent, err := tracecontext.Decode(in.TraceParent)
		if err != nil {
			return nil, err
		}
		l.State = StateChild
		l.Parent = parent
	}

	if in.HasRunID {
		runID, err := id.ParseRunID(in.RunID)
		if err != nil {
			return nil, &IdentityError{Value: in.RunID, Err: err}
		}
		l.RunID = runID
	} else {
		l.RunID = gen.NewRunID()
		l.RunMinted = true
	}

	return l, nil
}

// Attributes returns the span attributes describing this process.
func (l *Lineage) Attributes(role string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		AttrRunID.String(l.RunID.String()),
		AttrSelfID.String(l.SelfID.String()),
		AttrRole.String(role),
		AttrState.String(l.State.String()),
	}
	if l.ParentID != "" {
		attrs = append(attrs, AttrParentID.String(l.ParentID))
	}
	return attrs
}

// Start opens this process's span: a child of the inherited parent, or a new
// root. The returned Outgoing carries the span's identity for the next hop.
func (l *Lineage) Start(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span, Outgoing, error) {
	opts = append(opts, trace.WithAttributes(l.Attributes(name)...))

	switch l.State {
	case StateChild:
		ctx = trace.ContextWithRemoteSpanContext(ctx, l.Parent.SpanContext())
	default:
		opts = append(opts, trace.WithNewRoot())
	}

	ctx, span := tracer.Start(ctx, name, opts...)

	out, err := l.Outgoing(span.SpanContext())
	if err != nil {
		span.End()
		return ctx, span, Outgoing{}, err
	}
	return ctx, span, out, nil
}

// Outgoing builds the context to publish to spawned processes from the
// identity of this process's own span.
func (l *Lineage) Outgoing(sc trace.SpanContext) (Outgoing, error) {
	if !sc.IsValid() {
		return Outgoing{}, ErrInvalidSpanContext
	}
	if l.State == StateChild && sc.SpanID() == l.Parent.SpanID {
		return Outgoing{}, fmt.Errorf("%w: span id %s was not advanced", ErrInvalidSpanContext, sc.SpanID())
	}
	return Outgoing{
		TraceParent: tracecontext.FromSpanContext(sc),
		RunID:       l.RunID,
		ParentID:    l.SelfID,
	}, nil
}

// Outgoing is the context a process hands to the processes it spawns.
type Outgoing struct {
	TraceParent tracecontext.TraceParent
	RunID       id.RunID
	ParentID    id.ProcessID
}

// Env returns the outgoing context as environment overrides.
func (o Outgoing) Env() map[string]string {
	return map[string]string{
		EnvTraceParent: o.TraceParent.String(),
		EnvRunID:       o.RunID.String(),
		EnvParentID:    o.ParentID.String(),
	}
}
