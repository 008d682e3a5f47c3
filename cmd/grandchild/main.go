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

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newCommand().ExecuteContext(ctx)
	stop()
	os.Exit(launcher.ExitCode(err))
}

func newCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "grandchild",
		Short:        "Do a unit of work and exit",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return chain.Execute(cmd.Context(), chain.Node{Role: "grandchild"})
		},
	}
}
