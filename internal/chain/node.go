package chain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/proctrace/internal/config"
	"github.com/GriffinCanCode/proctrace/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/proctrace/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/proctrace/internal/launcher"
	"github.com/GriffinCanCode/proctrace/internal/lineage"
	"github.com/GriffinCanCode/proctrace/internal/logging"
	"github.com/GriffinCanCode/proctrace/internal/shared/id"
	"github.com/GriffinCanCode/proctrace/internal/shared/paths"
)

// Span attribute keys set by the runner
const (
	AttrNext         = attribute.Key("process.next")
	AttrWorkDuration = attribute.Key("process.work_duration_ms")
)

// Work outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Work is the unit of work a node performs before launching the next hop.
type Work func(ctx context.Context) error

// Sleep returns work that waits for d or until ctx is done.
func Sleep(d time.Duration) Work {
	return func(ctx context.Context) error {
		if d <= 0 {
			return ctx.Err()
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}

// Node is one process of the chain.
type Node struct {
	Role string
	// Work defaults to sleeping for the configured work duration.
	Work Work
	// Next is launched after Work succeeds; nil ends the chain here.
	Next *launcher.Command
}

type options struct {
	lookup        lineage.LookupFunc
	launchOptions []launcher.Option
}

// Option customizes Run.
type Option func(*options)

// WithLookup replaces os.LookupEnv as the source of the inherited context.
func WithLookup(lookup lineage.LookupFunc) Option {
	return func(o *options) { o.lookup = lookup }
}

// WithLaunchOptions passes options to the launcher of the next hop.
func WithLaunchOptions(opts ...launcher.Option) Option {
	return func(o *options) { o.launchOptions = append(o.launchOptions, opts...) }
}

// Run executes the node. Startup errors (a malformed TRACEPARENT or RUN_ID)
// are returned before any span is created; work and launch errors are
// recorded on the span and returned unchanged.
func (n Node) Run(ctx context.Context, cfg *config.Config, logger *logging.Logger, opts ...Option) (err error) {
	o := options{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	format, err := id.ParseFormat(cfg.IDs.Format)
	if err != nil {
		return err
	}
	gen, err := id.NewGeneratorWithFormat(format)
	if err != nil {
		return err
	}

	lin, err := lineage.Resolve(lineage.FromLookup(o.lookup), gen)
	if err != nil {
		logger.Error("invalid inherited trace context", zap.String("role", n.Role), zap.Error(err))
		return err
	}

	log := logger.ForProcess(n.Role, lin.RunID.String(), lin.SelfID.String())
	log.InstallOTelErrorHandler()
	log.Info("process started",
		zap.String("lineage", lin.State.String()),
		zap.String("parent_id", lin.ParentID),
	)
	if lin.State == lineage.StateChild && lin.RunMinted {
		log.Warn("inherited a trace context without RUN_ID, minted a new run id")
	}

	var metrics *monitoring.Metrics
	var observer tracing.ExportObserver
	if cfg.Metrics.Enabled {
		metrics = monitoring.NewMetrics(n.Role)
		metrics.SetLineage(lin.State.String())
		observer = metrics
	}

	provider, err := tracing.Open(ctx, tracing.Options{
		Role:     n.Role,
		RunID:    lin.RunID.String(),
		SelfID:   lin.SelfID.String(),
		Dir:      cfg.Trace.Dir,
		Enabled:  cfg.Trace.Enabled,
		Sync:     cfg.Trace.SyncExport,
		Observer: observer,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = provider.Close(cfg.Trace.ShutdownTimeout)
		if metrics != nil {
			writeMetrics(log, metrics, paths.RunPath(cfg.Trace.Dir, lin.RunID.String()), n.Role, lin.SelfID.String())
		}
		log.Info("process finished", zap.Bool("success", err == nil), zap.Int("exit_code", launcher.ExitCode(err)))
	}()

	ctx, span, out, err := lin.Start(ctx, provider.Tracer(), n.Role)
	if err != nil {
		return err
	}
	defer span.End()

	work := n.Work
	if work == nil {
		work = Sleep(cfg.Work.Duration)
	}
	if err := doWork(ctx, work, span, metrics); err != nil {
		fail(span, err)
		log.Error("work failed", zap.Error(err))
		return err
	}

	if n.Next == nil {
		return nil
	}

	span.SetAttributes(AttrNext.String(n.Next.String()))
	launchOpts := []launcher.Option{launcher.WithGracePeriod(cfg.Launch.GracePeriod)}
	if metrics != nil {
		launchOpts = append(launchOpts, launcher.WithRecorder(metrics))
	}
	launchOpts = append(launchOpts, o.launchOptions...)
	if err := launcher.New(log, launchOpts...).Launch(ctx, *n.Next, out.Env()); err != nil {
		fail(span, err)
		return err
	}
	return nil
}

func doWork(ctx context.Context, work Work, span trace.Span, metrics *monitoring.Metrics) error {
	timer := monitoring.NewTimer(metrics)
	err := work(ctx)
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	elapsed := timer.Stop(outcome)
	span.SetAttributes(AttrWorkDuration.Int64(elapsed.Milliseconds()))
	span.AddEvent("work finished", trace.WithAttributes(attribute.String("outcome", outcome)))
	return err
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, describe(err))
}

func describe(err error) string {
	var cf *launcher.ChildFailed
	if errors.As(err, &cf) {
		return fmt.Sprintf("child %s", cf.Status)
	}
	var sf *launcher.SpawnFailed
	if errors.As(err, &sf) {
		return "spawn failed"
	}
	return err.Error()
}

func writeMetrics(log *logging.Logger, metrics *monitoring.Metrics, run paths.Run, role, self string) {
	if err := run.Ensure(); err != nil {
		log.Warn("skipping metrics textfile", zap.Error(err))
		return
	}
	path := run.MetricsFile(role, self)
	if err := metrics.WriteTextfile(path); err != nil {
		log.Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(err))
	}
}
