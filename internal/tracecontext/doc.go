/*
Package tracecontext encodes and decodes the TRACEPARENT value handed from a
process to the processes it spawns.

# Wire Format

	00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
	|  |                                |                |
	|  trace id (32 lowercase hex)     span id (16 hex) flags (1 byte, 2 hex)
	version

Decoding is strict: a value with the wrong field count, a bad id or an
unparseable flags byte is reported as a *DecodeError and never silently
replaced by a default.

# Usage

	s := tracecontext.Encode(traceID, spanID, trace.FlagsSampled)

	tp, err := tracecontext.Decode(s)
	if errors.Is(err, tracecontext.ErrInvalidID) {
		// ...
	}
	ctx = trace.ContextWithRemoteSpanContext(ctx, tp.SpanContext())
*/
package tracecontext
