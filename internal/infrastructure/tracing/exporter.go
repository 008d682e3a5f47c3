package tracing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bytedance/sonic"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"
)

// ErrExporterClosed is returned by ExportSpans after Shutdown
var ErrExporterClosed = errors.New("exporter closed")

// ExportError reports a failure to persist spans. It is informational: the
// owning process logs it and carries on.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export spans to %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ExportObserver receives the outcome of every export batch
type ExportObserver interface {
	ObserveExport(spans int, err error)
}

// FileExporter appends one JSON record per batch to a file.
type FileExporter struct {
	path     string
	observer ExportObserver

	mu     sync.Mutex
	file   *os.File
	closed bool
}

var _ sdktrace.SpanExporter = (*FileExporter)(nil)

// NewFileExporter opens path for appending, creating it if needed.
func NewFileExporter(path string, observer ExportObserver) (*FileExporter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &ExportError{Path: path, Err: err}
	}
	return &FileExporter{path: path, observer: observer, file: file}, nil
}

// Path returns the file the exporter writes to
func (e *FileExporter) Path() string {
	return e.path
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *FileExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return e.fail(len(spans), err)
	}

	data, err := sonic.Marshal(NewRecord(spans))
	if err != nil {
		return e.fail(len(spans), fmt.Errorf("encode record: %w", err))
	}
	data = append(data, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return e.fail(len(spans), ErrExporterClosed)
	}
	if _, err := e.file.Write(data); err != nil {
		return e.fail(len(spans), err)
	}

	e.observe(len(spans), nil)
	return nil
}

// Shutdown flushes and closes the file. Repeated calls are no-ops.
func (e *FileExporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if err := multierr.Combine(e.file.Sync(), e.file.Close()); err != nil {
		return &ExportError{Path: e.path, Err: err}
	}
	return nil
}

func (e *FileExporter) fail(n int, err error) error {
	e.observe(n, err)
	return &ExportError{Path: e.path, Err: err}
}

func (e *FileExporter) observe(n int, err error) {
	if e.observer != nil {
		e.observer.ObserveExport(n, err)
	}
}
