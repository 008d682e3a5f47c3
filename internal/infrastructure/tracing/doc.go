/*
Package tracing owns the OpenTelemetry tracer provider of one process.

# Overview

Each process in a chain writes its finished spans to its own file under the
run directory:

	<dir>/<run-id>/<role>-<self-id>.json

The file holds one JSON record per export batch, each shaped like an OTLP/JSON
ExportTraceServiceRequest. Files from every process of a run are merged by
the combine package.

# Usage

	p, err := tracing.Open(ctx, tracing.Options{
		Role:    "child",
		RunID:   runID,
		SelfID:  selfID,
		Dir:     cfg.Trace.Dir,
		Enabled: cfg.Trace.Enabled,
	}, logger)
	if err != nil {
		return err
	}
	defer p.Close(cfg.Trace.ShutdownTimeout)

	ctx, span := p.Tracer().Start(ctx, "child")
	defer span.End()

# Failure Policy

Export problems never change the outcome of the process. If the trace file
cannot be opened, the provider still creates spans but exports nothing;
write failures during export are reported through the OpenTelemetry error
handler and the export metrics.
*/
package tracing
