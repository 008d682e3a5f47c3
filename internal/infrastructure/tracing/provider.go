package tracing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/proctrace/internal/logging"
	"github.com/GriffinCanCode/proctrace/internal/shared/paths"
)

// InstrumentationName is the tracer name used for chain spans
const InstrumentationName = "github.com/GriffinCanCode/proctrace"

// AttrRunID is the resource attribute carrying the run id
const AttrRunID = attribute.Key("run.id")

// Options configures a Provider.
type Options struct {
	Role   string
	RunID  string
	SelfID string

	// Dir is the base directory; spans go to Dir/RunID/Role-SelfID.json
	Dir     string
	Enabled bool
	// Sync exports each span as it ends instead of batching
	Sync bool

	Observer ExportObserver
}

func (o Options) validate() error {
	if o.Role == "" {
		return errors.New("tracing: role is required")
	}
	if err := paths.ValidateComponent(o.Role); err != nil {
		return fmt.Errorf("tracing: role: %w", err)
	}
	if err := paths.ValidateComponent(o.SelfID); err != nil {
		return fmt.Errorf("tracing: self id: %w", err)
	}
	return nil
}

// Provider is the tracer provider of one process.
type Provider struct {
	tp        *sdktrace.TracerProvider
	exporter  *FileExporter
	exportErr error
	logger    *logging.Logger

	once        sync.Once
	shutdownErr error
}

// Open builds the process's tracer provider. A trace file that cannot be
// opened is not an error: the provider is returned without an exporter and
// the cause is available from ExportErr.
func Open(ctx context.Context, opts Options, logger *logging.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(opts.Role),
			semconv.ServiceInstanceID(opts.SelfID),
			AttrRunID.String(opts.RunID),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	p := &Provider{logger: logger}
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}

	if opts.Enabled {
		exp, err := openExporter(opts)
		if err != nil {
			p.exportErr = err
			logger.Warn("span export disabled", zap.Error(err))
		} else {
			p.exporter = exp
			if opts.Sync {
				tpOpts = append(tpOpts, sdktrace.WithSyncer(exp))
			} else {
				tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
			}
			logger.Debug("span export enabled", zap.String("path", exp.Path()), zap.Bool("sync", opts.Sync))
		}
	}

	p.tp = sdktrace.NewTracerProvider(tpOpts...)
	return p, nil
}

func openExporter(opts Options) (*FileExporter, error) {
	run := paths.RunPath(opts.Dir, opts.RunID)
	path := run.TraceFile(opts.Role, opts.SelfID)
	if err := run.Ensure(); err != nil {
		return nil, &ExportError{Path: path, Err: err}
	}
	return NewFileExporter(path, opts.Observer)
}

// Tracer returns the tracer for chain spans
func (p *Provider) Tracer() trace.Tracer {
	return p.tp.Tracer(InstrumentationName)
}

// TracerProvider exposes the underlying SDK provider
func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	return p.tp
}

// Path returns the trace file, or "" when nothing is exported
func (p *Provider) Path() string {
	if p.exporter == nil {
		return ""
	}
	return p.exporter.Path()
}

// ExportErr returns why export was disabled at Open, if it was
func (p *Provider) ExportErr() error {
	return p.exportErr
}

// Shutdown flushes pending spans and releases the exporter. Only the first
// call does any work; later calls return its result.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.once.Do(func() {
		p.shutdownErr = multierr.Combine(
			p.tp.ForceFlush(ctx),
			p.tp.Shutdown(ctx),
		)
	})
	return p.shutdownErr
}

// Close shuts down with a fresh timeout so spans are flushed even when the
// process context is already cancelled. Failures are logged and returned.
func (p *Provider) Close(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := p.Shutdown(ctx)
	if err != nil {
		p.logger.Warn("failed to flush spans", zap.String("path", p.Path()), zap.Error(err))
	}
	return err
}
