// Package paths provides the on-disk layout of per-process artifacts.
//
// Every process of a run writes below one run-scoped directory, so an
// offline step can find everything belonging to a run by its id alone.
//
// # Directory Structure
//
//	<TRACE_LOG_DIR>/
//	  └── <run id>/
//	      ├── parent-<self id>.json      (span records)
//	      ├── parent-<self id>.prom      (metrics textfile)
//	      ├── child-<self id>.json
//	      └── grandchild-<self id>.json
//
// # Usage
//
//	run := paths.RunPath(cfg.Trace.Dir, runID)
//	if err := run.Ensure(); err != nil {
//	    return err
//	}
//	file := run.TraceFile("child", selfID)
package paths
