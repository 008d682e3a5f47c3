package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/proctrace/internal/chain"
	"github.com/GriffinCanCode/proctrace/internal/launcher"
)

const role = "parent"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	os.Exit(launcher.ExitCode(err))
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "parent",
		Short:        "Root of the traced process chain",
		SilenceUsage: true,
	}
	root.AddCommand(newSpawnSelfCommand(), newSpawnChildCommand())
	return root
}

func newSpawnSelfCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "spawn-self",
		Short: "Re-launch this executable as spawn-child",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			self, err := os.Executable()
			if err != nil {
				return &launcher.SpawnFailed{Command: role, Cause: err}
			}
			return run(cmd.Context(), &launcher.Command{Path: self, Args: []string{"spawn-child"}})
		},
	}
}

func newSpawnChildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "spawn-child",
		Short: "Launch the child binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), chain.Hop("child"))
		},
	}
}

func run(ctx context.Context, next *launcher.Command) error {
	return chain.Execute(ctx, chain.Node{Role: role, Next: next})
}
