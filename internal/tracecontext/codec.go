package tracecontext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Version is the only version this codec emits.
const Version = "00"

const (
	delimiter   = "-"
	fieldCount  = 4
	traceIDLen  = 32
	spanIDLen   = 16
	versionLen  = 2
	flagsLen    = 2
	invalidVers = "ff"
)

var errNotLowerHex = errors.New("not lowercase hex")

// TraceParent is the decoded identity of the span that spawned this process.
type TraceParent struct {
	Version string
	TraceID trace.TraceID
	SpanID  trace.SpanID
	Flags   trace.TraceFlags
}

// FromSpanContext captures the identity of sc for a process about to be spawned.
func FromSpanContext(sc trace.SpanContext) TraceParent {
	return TraceParent{
		Version: Version,
		TraceID: sc.TraceID(),
		SpanID:  sc.SpanID(),
		Flags:   sc.TraceFlags(),
	}
}

// SpanContext returns the remote span context described by tp.
func (tp TraceParent) SpanContext() trace.SpanContext {
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tp.TraceID,
		SpanID:     tp.SpanID,
		TraceFlags: tp.Flags,
		Remote:     true,
	})
}

// String returns the wire form of tp.
func (tp TraceParent) String() string {
	return Encode(tp.TraceID, tp.SpanID, tp.Flags)
}

// Encode produces the canonical four-field wire form.
func Encode(traceID trace.TraceID, spanID trace.SpanID, flags trace.TraceFlags) string {
	var b strings.Builder
	b.Grow(versionLen + traceIDLen + spanIDLen + flagsLen + fieldCount - 1)
	b.WriteString(Version)
	b.WriteString(delimiter)
	b.WriteString(traceID.String())
	b.WriteString(delimiter)
	b.WriteString(spanID.String())
	b.WriteString(delimiter)
	b.WriteString(flags.String())
	return b.String()
}

// Decode parses a wire value. Every failure is a *DecodeError.
func Decode(s string) (TraceParent, error) {
	fields := strings.Split(s, delimiter)
	if len(fields) != fieldCount {
		return TraceParent{}, &DecodeError{
			Kind:  MalformedFormat,
			Value: s,
			Err:   fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields)),
		}
	}

	version, rawTrace, rawSpan, rawFlags := fields[0], fields[1], fields[2], fields[3]

	if len(version) != versionLen || !isLowerHex(version) || version == invalidVers {
		return TraceParent{}, &DecodeError{Kind: MalformedFormat, Field: "version", Value: s}
	}

	if len(rawTrace) != traceIDLen {
		return TraceParent{}, &DecodeError{
			Kind:  InvalidID,
			Field: "trace-id",
			Value: s,
			Err:   fmt.Errorf("expected %d hex chars, got %d", traceIDLen, len(rawTrace)),
		}
	}
	if !isLowerHex(rawTrace) {
		return TraceParent{}, &DecodeError{Kind: InvalidID, Field: "trace-id", Value: s, Err: errNotLowerHex}
	}
	traceID, err := trace.TraceIDFromHex(rawTrace)
	if err != nil {
		return TraceParent{}, &DecodeError{Kind: InvalidID, Field: "trace-id", Value: s, Err: err}
	}

	if len(rawSpan) != spanIDLen {
		return TraceParent{}, &DecodeError{
			Kind:  InvalidID,
			Field: "parent-id",
			Value: s,
			Err:   fmt.Errorf("expected %d hex chars, got %d", spanIDLen, len(rawSpan)),
		}
	}
	if !isLowerHex(rawSpan) {
		return TraceParent{}, &DecodeError{Kind: InvalidID, Field: "parent-id", Value: s, Err: errNotLowerHex}
	}
	spanID, err := trace.SpanIDFromHex(rawSpan)
	if err != nil {
		return TraceParent{}, &DecodeError{Kind: InvalidID, Field: "parent-id", Value: s, Err: err}
	}

	if len(rawFlags) != flagsLen {
		return TraceParent{}, &DecodeError{
			Kind:  InvalidFlags,
			Field: "trace-flags",
			Value: s,
			Err:   fmt.Errorf("expected %d hex chars, got %d", flagsLen, len(rawFlags)),
		}
	}
	flags, err := strconv.ParseUint(rawFlags, 16, 8)
	if err != nil {
		return TraceParent{}, &DecodeError{Kind: InvalidFlags, Field: "trace-flags", Value: s, Err: err}
	}

	return TraceParent{
		Version: version,
		TraceID: traceID,
		SpanID:  spanID,
		Flags:   trace.TraceFlags(flags),
	}, nil
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
