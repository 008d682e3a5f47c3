// Package logging provides structured logging using uber/zap.
//
// Every process of the chain logs to stderr so that stdout stays free for
// the processes it spawns. Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Loggers for a chain process carry its identity as fields:
//
//	logger := logging.NewDefault().ForProcess("child", runID, selfID)
//	logger.Info("spawning grandchild", zap.String("command", path))
package logging
