/*
Parent is the root of the traced process chain.

Usage:

	parent spawn-self
	parent spawn-child

spawn-self starts a new trace (or continues an inherited one) and re-launches
this executable as "parent spawn-child". spawn-child launches the child
binary, which in turn launches the grandchild:

	parent spawn-self -> parent spawn-child -> child -> grandchild

All processes share one RUN_ID and write their spans below
$TRACE_LOG_DIR/<run-id>/. The exit code is non-zero when any process in the
chain fails.
*/
package main
