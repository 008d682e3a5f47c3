// Child is the middle hop of the traced process chain. It continues the
// trace inherited from its parent, does its unit of work and launches the
// grandchild binary.
package main
