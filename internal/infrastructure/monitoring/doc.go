/*
Package monitoring provides per-process metrics for chain processes.

# Overview

Chain processes are short-lived, so metrics are not scraped over HTTP.
Each process collects into its own Prometheus registry and writes it once,
at exit, as a textfile next to its trace file. The node_exporter textfile
collector (or any Prometheus text parser) can pick the files up.

# Metrics

- proctrace_launches_total{outcome}: spawned processes by outcome
- proctrace_launch_duration_seconds{outcome}: wall time until the child exited
- proctrace_work_duration_seconds{outcome}: duration of the unit of work
- proctrace_spans_exported_total / proctrace_span_export_errors_total
- proctrace_process_info{role,lineage}: always 1, identifies the process
- proctrace_process_uptime_seconds

# Usage

	metrics := monitoring.NewMetrics("child")

	timer := monitoring.NewTimer(metrics)
	// ... perform work ...
	timer.Stop("success")

	if err := metrics.WriteTextfile(run.MetricsFile("child", selfID)); err != nil {
		logger.Warn("metrics not written", zap.Error(err))
	}
*/
package monitoring
