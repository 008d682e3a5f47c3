// Package config provides 12-factor configuration management for chain processes.
//
// Configuration is loaded from environment variables with sensible defaults.
// The protocol variables (RUN_ID, PARENT_ID, TRACEPARENT) are not part of this
// package; they are read once by the lineage package.
//
// Configuration Sections:
//   - Logging: Log level and output format
//   - Trace: Span export directory and flush behavior
//   - Work: Duration of the simulated unit of work
//   - IDs: Identifier format (ulid or uuidv7)
//   - Metrics: Per-process metrics textfile
//   - Combine: Defaults for the offline trace combiner
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//
// Environment Variables:
//   - LOG_LEVEL, LOG_DEV
//   - TRACE_ENABLED, TRACE_LOG_DIR, TRACE_SYNC_EXPORT, TRACE_SHUTDOWN_TIMEOUT
//   - WORK_DURATION, ID_FORMAT, METRICS_ENABLED
//   - COMBINE_NAME, COMBINE_PATTERN, COMBINE_COMPRESSION
package config
