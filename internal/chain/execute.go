package chain

import (
	"context"
	"fmt"
	"os"

	"github.com/GriffinCanCode/proctrace/internal/config"
	"github.com/GriffinCanCode/proctrace/internal/launcher"
	"github.com/GriffinCanCode/proctrace/internal/logging"
)

// Execute loads configuration from the environment, builds the logger and
// runs node. It is the body of every chain binary.
func Execute(ctx context.Context, node Node, opts ...Option) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", node.Role, err)
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: init logger: %v\n", node.Role, err)
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return node.Run(ctx, cfg, logger, opts...)
}

// Hop returns the command for the next binary of the chain. A binary that
// cannot be found is kept by name so the failure surfaces as a spawn failure
// on the caller's span.
func Hop(name string, args ...string) *launcher.Command {
	path, err := launcher.Resolve(name)
	if err != nil {
		path = name
	}
	return &launcher.Command{Path: path, Args: args}
}
