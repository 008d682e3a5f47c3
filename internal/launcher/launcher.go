// Package launcher starts the next process of the chain and waits for it.
//
// The child inherits this process's environment plus the overrides passed to
// Launch (overrides win). When the launch context is cancelled the child is
// asked to terminate and killed if it has not exited within the grace
// period. On Linux it is also killed when this process dies without a chance
// to cancel.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/proctrace/internal/logging"
)

// DefaultGracePeriod is how long a cancelled child may take to exit
const DefaultGracePeriod = 10 * time.Second

// Launch outcomes reported to a Recorder
const (
	OutcomeSuccess     = "success"
	OutcomeChildFailed = "child_failed"
	OutcomeSpawnFailed = "spawn_failed"
)

// Command is the process to start.
type Command struct {
	Path string
	Args []string
	Dir  string
}

func (c Command) String() string {
	return commandString(c.Path, c.Args)
}

// Recorder receives launch measurements.
type Recorder interface {
	ObserveLaunch(command, outcome string, duration time.Duration)
}

// Launcher spawns child processes.
type Launcher struct {
	logger      *logging.Logger
	recorder    Recorder
	environ     func() []string
	gracePeriod time.Duration
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithRecorder reports every launch to r.
func WithRecorder(r Recorder) Option {
	return func(l *Launcher) { l.recorder = r }
}

// WithEnviron replaces os.Environ as the base environment.
func WithEnviron(environ func() []string) Option {
	return func(l *Launcher) { l.environ = environ }
}

// WithGracePeriod bounds the wait for a cancelled child to exit on its own.
func WithGracePeriod(d time.Duration) Option {
	return func(l *Launcher) {
		if d > 0 {
			l.gracePeriod = d
		}
	}
}

// WithStdio replaces the inherited standard streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdin, l.stdout, l.stderr = stdin, stdout, stderr
	}
}

// New creates a launcher whose children share this process's stdio.
func New(logger *logging.Logger, opts ...Option) *Launcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	l := &Launcher{
		logger:      logger,
		environ:     os.Environ,
		gracePeriod: DefaultGracePeriod,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch runs cmd to completion with overrides merged into its environment.
// It returns *SpawnFailed if the process could not be started and
// *ChildFailed if it exited unsuccessfully. On cancellation the child gets
// the grace period to flush and exit before it is killed.
func (l *Launcher) Launch(ctx context.Context, cmd Command, overrides map[string]string) error {
	name := cmd.String()

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = MergeEnv(l.environ(), overrides)
	c.Stdin = l.stdin
	c.Stdout = l.stdout
	c.Stderr = l.stderr
	c.Cancel = func() error { return terminate(c.Process) }
	c.WaitDelay = l.gracePeriod
	bindLifetime(c)

	// Pdeathsig is tied to the spawning thread, so keep it alive until Wait returns
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	start := time.Now()
	if err := c.Start(); err != nil {
		l.observe(name, OutcomeSpawnFailed, time.Since(start))
		l.logger.Error("failed to spawn process", zap.String("command", name), zap.Error(err))
		return &SpawnFailed{Command: name, Cause: err}
	}

	l.logger.Debug("spawned process", zap.String("command", name), zap.Int("pid", c.Process.Pid))

	err := c.Wait()
	elapsed := time.Since(start)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			failed := newChildFailed(name, exitErr)
			l.observe(name, OutcomeChildFailed, elapsed)
			l.logger.Error("spawned process failed",
				zap.String("command", name),
				zap.String("status", failed.Status),
				zap.Int("exit_code", failed.Code),
				zap.Duration("duration", elapsed),
				zap.Bool("cancelled", ctx.Err() != nil),
			)
			return failed
		}
		l.observe(name, OutcomeChildFailed, elapsed)
		return fmt.Errorf("wait for %s: %w", name, err)
	}

	l.observe(name, OutcomeSuccess, elapsed)
	l.logger.Debug("spawned process finished", zap.String("command", name), zap.Duration("duration", elapsed))
	return nil
}

func (l *Launcher) observe(command, outcome string, d time.Duration) {
	if l.recorder != nil {
		l.recorder.ObserveLaunch(command, outcome, d)
	}
}

// Resolve locates the executable for the next hop: a sibling of the current
// executable first, then $PATH.
func Resolve(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}

	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), name)
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return sibling, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", &SpawnFailed{Command: name, Cause: err}
	}
	return path, nil
}
