package tracecontext

import (
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

const (
	sampleTrace = "4bf92f3577b34da6a3ce929d0e0e4736"
	sampleSpan  = "00f067aa0ba902b7"
)

func mustIDs(t *testing.T) (trace.TraceID, trace.SpanID) {
	t.Helper()
	tid, err := trace.TraceIDFromHex(sampleTrace)
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex(sampleSpan)
	require.NoError(t, err)
	return tid, sid
}

func randomIDs(t *testing.T) (trace.TraceID, trace.SpanID) {
	t.Helper()
	var tid trace.TraceID
	var sid trace.SpanID
	for !tid.IsValid() {
		_, err := rand.Read(tid[:])
		require.NoError(t, err)
	}
	for !sid.IsValid() {
		_, err := rand.Read(sid[:])
		require.NoError(t, err)
	}
	return tid, sid
}

func TestEncode(t *testing.T) {
	tid, sid := mustIDs(t)

	assert.Equal(t, "00-"+sampleTrace+"-"+sampleSpan+"-01", Encode(tid, sid, trace.FlagsSampled))
	assert.Equal(t, "00-"+sampleTrace+"-"+sampleSpan+"-00", Encode(tid, sid, 0))
	assert.Equal(t, "00-"+sampleTrace+"-"+sampleSpan+"-ff", Encode(tid, sid, 0xff))
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		tid, sid := randomIDs(t)
		flags := trace.TraceFlags(i)

		got, err := Decode(Encode(tid, sid, flags))
		require.NoError(t, err)

		assert.Equal(t, Version, got.Version)
		assert.Equal(t, tid, got.TraceID)
		assert.Equal(t, sid, got.SpanID)
		assert.Equal(t, flags, got.Flags)
	}
}

func TestDecodeMalformedFormat(t *testing.T) {
	tests := []string{
		"",
		"garbage",
		"00-" + sampleTrace + "-" + sampleSpan,
		"00-" + sampleTrace + "-" + sampleSpan + "-01-extra",
		"00--" + sampleTrace + "-" + sampleSpan + "-01",
		"0-" + sampleTrace + "-" + sampleSpan + "-01",
		"zz-" + sampleTrace + "-" + sampleSpan + "-01",
		"ff-" + sampleTrace + "-" + sampleSpan + "-01",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			var got TraceParent
			var err error
			require.NotPanics(t, func() { got, err = Decode(in) })

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, MalformedFormat, de.Kind)
			assert.ErrorIs(t, err, ErrMalformedFormat)
			assert.Equal(t, TraceParent{}, got)
		})
	}
}

func TestDecodeInvalidID(t *testing.T) {
	tests := map[string]string{
		"short trace id":   "00-4bf92f3577b34da6-" + sampleSpan + "-01",
		"long trace id":    "00-" + sampleTrace + "aa-" + sampleSpan + "-01",
		"non-hex trace id": "00-4bf92f3577b34da6a3ce929d0e0e473z-" + sampleSpan + "-01",
		"upper trace id":   "00-" + strings.ToUpper(sampleTrace) + "-" + sampleSpan + "-01",
		"zero trace id":    "00-" + strings.Repeat("0", 32) + "-" + sampleSpan + "-01",
		"short span id":    "00-" + sampleTrace + "-00f067aa-01",
		"non-hex span id":  "00-" + sampleTrace + "-00f067aa0ba902bg-01",
		"zero span id":     "00-" + sampleTrace + "-" + strings.Repeat("0", 16) + "-01",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(in)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, InvalidID, de.Kind)
			assert.True(t, errors.Is(err, ErrInvalidID))
			assert.False(t, errors.Is(err, ErrMalformedFormat))
		})
	}
}

func TestDecodeInvalidFlags(t *testing.T) {
	for _, flags := range []string{"", "1", "001", "zz", "g1", "+1"} {
		in := "00-" + sampleTrace + "-" + sampleSpan + "-" + flags
		_, err := Decode(in)

		var de *DecodeError
		require.ErrorAs(t, err, &de, "flags %q", flags)
		assert.Equal(t, InvalidFlags, de.Kind, "flags %q", flags)
		assert.ErrorIs(t, err, ErrInvalidFlags)
	}
}

func TestSpanContextConversion(t *testing.T) {
	tid, sid := mustIDs(t)

	tp, err := Decode(Encode(tid, sid, trace.FlagsSampled))
	require.NoError(t, err)

	sc := tp.SpanContext()
	assert.True(t, sc.IsValid())
	assert.True(t, sc.IsRemote())
	assert.True(t, sc.IsSampled())
	assert.Equal(t, tid, sc.TraceID())
	assert.Equal(t, sid, sc.SpanID())

	assert.Equal(t, tp, FromSpanContext(sc))
	assert.Equal(t, tp.String(), FromSpanContext(sc).String())
}

func TestDecodeErrorMessage(t *testing.T) {
	_, err := Decode("00-xyz-" + sampleSpan + "-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
	assert.Contains(t, err.Error(), "trace-id")
}
