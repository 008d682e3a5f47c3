package tracing

import (
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Record is one line of a trace file, shaped like an OTLP/JSON
// ExportTraceServiceRequest so standard tooling can read it.
type Record struct {
	ResourceSpans []ResourceSpans `json:"resourceSpans"`
}

// ResourceSpans groups the spans of one resource
type ResourceSpans struct {
	Resource   Resource     `json:"resource"`
	ScopeSpans []ScopeSpans `json:"scopeSpans"`
	SchemaURL  string       `json:"schemaUrl,omitempty"`
}

// Resource describes the process that produced the spans
type Resource struct {
	Attributes []KeyValue `json:"attributes,omitempty"`
}

// ScopeSpans groups the spans of one instrumentation scope
type ScopeSpans struct {
	Scope     Scope  `json:"scope"`
	Spans     []Span `json:"spans"`
	SchemaURL string `json:"schemaUrl,omitempty"`
}

// Scope identifies the instrumentation library
type Scope struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Span is a finished span. Ids are lowercase hex, times are decimal
// nanoseconds since the epoch as strings (OTLP/JSON int64 encoding).
type Span struct {
	TraceID           string     `json:"traceId"`
	SpanID            string     `json:"spanId"`
	TraceState        string     `json:"traceState,omitempty"`
	ParentSpanID      string     `json:"parentSpanId,omitempty"`
	Flags             uint32     `json:"flags"`
	Name              string     `json:"name"`
	Kind              int        `json:"kind"`
	StartTimeUnixNano string     `json:"startTimeUnixNano"`
	EndTimeUnixNano   string     `json:"endTimeUnixNano"`
	Attributes        []KeyValue `json:"attributes,omitempty"`
	Events            []Event    `json:"events,omitempty"`
	Links             []Link     `json:"links,omitempty"`
	Status            Status     `json:"status"`

	DroppedAttributesCount int `json:"droppedAttributesCount,omitempty"`
	DroppedEventsCount     int `json:"droppedEventsCount,omitempty"`
	DroppedLinksCount      int `json:"droppedLinksCount,omitempty"`
}

// Event is a timestamped annotation on a span
type Event struct {
	TimeUnixNano string     `json:"timeUnixNano"`
	Name         string     `json:"name"`
	Attributes   []KeyValue `json:"attributes,omitempty"`
}

// Link references another span
type Link struct {
	TraceID    string     `json:"traceId"`
	SpanID     string     `json:"spanId"`
	TraceState string     `json:"traceState,omitempty"`
	Attributes []KeyValue `json:"attributes,omitempty"`
}

// OTLP status codes; they differ from the numbering of otel/codes
const (
	StatusCodeUnset = 0
	StatusCodeOk    = 1
	StatusCodeError = 2
)

// Status is the outcome of a span
type Status struct {
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// KeyValue is a typed attribute
type KeyValue struct {
	Key   string   `json:"key"`
	Value AnyValue `json:"value"`
}

// AnyValue holds exactly one of its fields
type AnyValue struct {
	StringValue *string     `json:"stringValue,omitempty"`
	BoolValue   *bool       `json:"boolValue,omitempty"`
	IntValue    *string     `json:"intValue,omitempty"`
	DoubleValue *float64    `json:"doubleValue,omitempty"`
	ArrayValue  *ArrayValue `json:"arrayValue,omitempty"`
}

// ArrayValue is a homogeneous list of values
type ArrayValue struct {
	Values []AnyValue `json:"values"`
}

// NewRecord converts finished SDK spans into a record, grouped by resource
// and instrumentation scope in first-seen order.
func NewRecord(spans []sdktrace.ReadOnlySpan) Record {
	type scopeKey struct {
		res   attribute.Distinct
		scope instrumentation.Scope
	}

	var rec Record
	resIndex := make(map[attribute.Distinct]int)
	scopeIndex := make(map[scopeKey]int)

	for _, s := range spans {
		res := s.Resource()
		rk := resourceKey(res)

		ri, ok := resIndex[rk]
		if !ok {
			ri = len(rec.ResourceSpans)
			resIndex[rk] = ri
			rec.ResourceSpans = append(rec.ResourceSpans, ResourceSpans{
				Resource:  Resource{Attributes: convertAttributes(resourceAttributes(res))},
				SchemaURL: resourceSchemaURL(res),
			})
		}

		is := s.InstrumentationScope()
		sk := scopeKey{res: rk, scope: instrumentation.Scope{Name: is.Name, Version: is.Version, SchemaURL: is.SchemaURL}}
		si, ok := scopeIndex[sk]
		if !ok {
			si = len(rec.ResourceSpans[ri].ScopeSpans)
			scopeIndex[sk] = si
			rec.ResourceSpans[ri].ScopeSpans = append(rec.ResourceSpans[ri].ScopeSpans, ScopeSpans{
				Scope:     Scope{Name: is.Name, Version: is.Version},
				SchemaURL: is.SchemaURL,
			})
		}

		scope := &rec.ResourceSpans[ri].ScopeSpans[si]
		scope.Spans = append(scope.Spans, convertSpan(s))
	}

	return rec
}

func resourceKey(res *resource.Resource) attribute.Distinct {
	if res == nil {
		return attribute.EmptySet().Equivalent()
	}
	return res.Equivalent()
}

func resourceAttributes(res *resource.Resource) []attribute.KeyValue {
	if res == nil {
		return nil
	}
	return res.Attributes()
}

func resourceSchemaURL(res *resource.Resource) string {
	if res == nil {
		return ""
	}
	return res.SchemaURL()
}

func convertSpan(s sdktrace.ReadOnlySpan) Span {
	sc := s.SpanContext()
	out := Span{
		TraceID:                sc.TraceID().String(),
		SpanID:                 sc.SpanID().String(),
		TraceState:             sc.TraceState().String(),
		Flags:                  uint32(sc.TraceFlags()),
		Name:                   s.Name(),
		Kind:                   int(s.SpanKind()),
		StartTimeUnixNano:      unixNano(s.StartTime()),
		EndTimeUnixNano:        unixNano(s.EndTime()),
		Attributes:             convertAttributes(s.Attributes()),
		Status:                 convertStatus(s.Status()),
		DroppedAttributesCount: s.DroppedAttributes(),
		DroppedEventsCount:     s.DroppedEvents(),
		DroppedLinksCount:      s.DroppedLinks(),
	}

	if parent := s.Parent(); parent.SpanID().IsValid() {
		out.ParentSpanID = parent.SpanID().String()
	}
	if out.Kind == int(trace.SpanKindUnspecified) {
		out.Kind = int(trace.SpanKindInternal)
	}

	for _, e := range s.Events() {
		out.Events = append(out.Events, Event{
			TimeUnixNano: unixNano(e.Time),
			Name:         e.Name,
			Attributes:   convertAttributes(e.Attributes),
		})
	}
	for _, l := range s.Links() {
		out.Links = append(out.Links, Link{
			TraceID:    l.SpanContext.TraceID().String(),
			SpanID:     l.SpanContext.SpanID().String(),
			TraceState: l.SpanContext.TraceState().String(),
			Attributes: convertAttributes(l.Attributes),
		})
	}

	return out
}

func convertStatus(st sdktrace.Status) Status {
	switch st.Code {
	case codes.Error:
		return Status{Code: StatusCodeError, Message: st.Description}
	case codes.Ok:
		return Status{Code: StatusCodeOk}
	default:
		return Status{Code: StatusCodeUnset}
	}
}

func unixNano(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixNano(), 10)
}

func convertAttributes(attrs []attribute.KeyValue) []KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]KeyValue, 0, len(attrs))
	for _, kv := range attrs {
		out = append(out, KeyValue{Key: string(kv.Key), Value: convertValue(kv.Value)})
	}
	return out
}

func convertValue(v attribute.Value) AnyValue {
	switch v.Type() {
	case attribute.BOOL:
		b := v.AsBool()
		return AnyValue{BoolValue: &b}
	case attribute.INT64:
		i := strconv.FormatInt(v.AsInt64(), 10)
		return AnyValue{IntValue: &i}
	case attribute.FLOAT64:
		f := v.AsFloat64()
		return AnyValue{DoubleValue: &f}
	case attribute.BOOLSLICE:
		values := make([]AnyValue, 0, len(v.AsBoolSlice()))
		for _, b := range v.AsBoolSlice() {
			values = append(values, convertValue(attribute.BoolValue(b)))
		}
		return AnyValue{ArrayValue: &ArrayValue{Values: values}}
	case attribute.INT64SLICE:
		values := make([]AnyValue, 0, len(v.AsInt64Slice()))
		for _, i := range v.AsInt64Slice() {
			values = append(values, convertValue(attribute.Int64Value(i)))
		}
		return AnyValue{ArrayValue: &ArrayValue{Values: values}}
	case attribute.FLOAT64SLICE:
		values := make([]AnyValue, 0, len(v.AsFloat64Slice()))
		for _, f := range v.AsFloat64Slice() {
			values = append(values, convertValue(attribute.Float64Value(f)))
		}
		return AnyValue{ArrayValue: &ArrayValue{Values: values}}
	case attribute.STRINGSLICE:
		values := make([]AnyValue, 0, len(v.AsStringSlice()))
		for _, s := range v.AsStringSlice() {
			values = append(values, convertValue(attribute.StringValue(s)))
		}
		return AnyValue{ArrayValue: &ArrayValue{Values: values}}
	default:
		s := v.Emit()
		return AnyValue{StringValue: &s}
	}
}
