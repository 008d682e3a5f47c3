// Grandchild is the last hop of the traced process chain: it continues the
// inherited trace, does its unit of work and exits.
package main
