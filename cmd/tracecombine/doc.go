/*
Tracecombine merges the per-process trace files of one run into a single
JSON document.

Usage:

	tracecombine [run-dir] [flags]
	tracecombine --run <run-id> [flags]

With --run the run directory is $TRACE_LOG_DIR/<run-id>. Output goes to
combined.json (plus .gz or .zst when compressed) unless -o is given; "-"
writes to stdout.
*/
package main
