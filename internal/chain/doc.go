// Package chain runs one process of a traced process chain.
//
// Every binary in the chain is a Node: it resolves its lineage from the
// inherited environment, opens its tracer provider, starts its span, does
// its unit of work and then launches the next hop with its own span as the
// parent. The downstream result is returned unchanged so a failure anywhere
// below makes every ancestor fail too.
//
// Example Usage:
//
//	node := chain.Node{
//	    Role: "child",
//	    Next: &launcher.Command{Path: grandchild},
//	}
//	err := node.Run(ctx, cfg, logger)
//	os.Exit(launcher.ExitCode(err))
package chain
