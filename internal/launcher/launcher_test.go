package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test; it is the child spawned by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("HELPER_ON_TERM") {
	case "flush":
		term := make(chan os.Signal, 1)
		signal.Notify(term, syscall.SIGTERM)
		fmt.Println("ready")
		<-term
		fmt.Println("flushed")
		os.Exit(0)
	case "ignore":
		signal.Ignore(syscall.SIGTERM)
		fmt.Println("ready")
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	if key := os.Getenv("HELPER_ECHO"); key != "" {
		fmt.Printf("%s=%s\n", key, os.Getenv(key))
	}
	if d := os.Getenv("HELPER_SLEEP"); d != "" {
		dur, _ := time.ParseDuration(d)
		time.Sleep(dur)
	}
	code, _ := strconv.Atoi(os.Getenv("HELPER_EXIT"))
	os.Exit(code)
}

func helperCommand() Command {
	return Command{Path: os.Args[0], Args: []string{"-test.run=^TestHelperProcess$"}}
}

type recordedLaunch struct {
	command string
	outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	launches []recordedLaunch
}

func (r *fakeRecorder) ObserveLaunch(command, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.launches = append(r.launches, recordedLaunch{command, outcome})
}

func newTestLauncher(stdout *bytes.Buffer, rec Recorder, base ...string) *Launcher {
	return New(nil,
		WithEnviron(func() []string { return append(os.Environ(), base...) }),
		WithStdio(nil, stdout, stdout),
		WithRecorder(rec),
	)
}

func TestLaunchSuccessWithOverridesWinning(t *testing.T) {
	var out bytes.Buffer
	rec := &fakeRecorder{}
	l := newTestLauncher(&out, rec, "TRACEPARENT=stale", "KEEP=inherited")

	err := l.Launch(context.Background(), helperCommand(), map[string]string{
		"GO_WANT_HELPER_PROCESS": "1",
		"HELPER_ECHO":            "TRACEPARENT",
		"TRACEPARENT":            "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "TRACEPARENT=00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	require.Len(t, rec.launches, 1)
	assert.Equal(t, OutcomeSuccess, rec.launches[0].outcome)
}

func TestLaunchInheritsBaseEnvironment(t *testing.T) {
	var out bytes.Buffer
	l := newTestLauncher(&out, nil, "KEEP=inherited")

	err := l.Launch(context.Background(), helperCommand(), map[string]string{
		"GO_WANT_HELPER_PROCESS": "1",
		"HELPER_ECHO":            "KEEP",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "KEEP=inherited")
}

func TestLaunchChildFailed(t *testing.T) {
	var out bytes.Buffer
	rec := &fakeRecorder{}
	l := newTestLauncher(&out, rec)

	err := l.Launch(context.Background(), helperCommand(), map[string]string{
		"GO_WANT_HELPER_PROCESS": "1",
		"HELPER_EXIT":            "3",
	})

	var cf *ChildFailed
	require.ErrorAs(t, err, &cf)
	assert.Equal(t, 3, cf.Code)
	assert.Contains(t, cf.Status, "exit status 3")
	assert.Equal(t, 3, ExitCode(err))

	var sf *SpawnFailed
	assert.False(t, errors.As(err, &sf))
	require.Len(t, rec.launches, 1)
	assert.Equal(t, OutcomeChildFailed, rec.launches[0].outcome)
}

func TestLaunchSpawnFailed(t *testing.T) {
	rec := &fakeRecorder{}
	l := New(nil, WithRecorder(rec))

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	err := l.Launch(context.Background(), Command{Path: missing}, nil)

	var sf *SpawnFailed
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, missing, sf.Command)
	assert.Error(t, sf.Cause)
	assert.Equal(t, 1, ExitCode(err))

	var cf *ChildFailed
	assert.False(t, errors.As(err, &cf))
	require.Len(t, rec.launches, 1)
	assert.Equal(t, OutcomeSpawnFailed, rec.launches[0].outcome)
}

func TestLaunchCancellationStopsChild(t *testing.T) {
	var out bytes.Buffer
	l := newTestLauncher(&out, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Launch(ctx, helperCommand(), map[string]string{
		"GO_WANT_HELPER_PROCESS": "1",
		"HELPER_SLEEP":           "30s",
	})

	assert.Less(t, time.Since(start), 10*time.Second, "child must not outlive the cancelled launch")
	var cf *ChildFailed
	require.ErrorAs(t, err, &cf)
	assert.NotZero(t, ExitCode(err))
}

// lockedBuffer is written by the exec copy goroutine while the test polls it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// launchUntilReady starts the helper in the background and cancels the
// launch once the helper reports it has installed its signal handling.
func launchUntilReady(t *testing.T, l *Launcher, out *lockedBuffer, onTerm string) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- l.Launch(ctx, helperCommand(), map[string]string{
			"GO_WANT_HELPER_PROCESS": "1",
			"HELPER_ON_TERM":         onTerm,
		})
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("ready"))
	}, 10*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		return err
	case <-time.After(20 * time.Second):
		t.Fatal("launch did not return after cancellation")
		return nil
	}
}

func TestLaunchCancellationLetsChildShutDown(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("graceful termination is signalled with SIGTERM on linux")
	}
	out := &lockedBuffer{}
	l := New(nil, WithStdio(nil, out, out), WithGracePeriod(5*time.Second))

	err := launchUntilReady(t, l, out, "flush")

	assert.Contains(t, out.String(), "flushed", "the child must run its shutdown path")
	assert.ErrorIs(t, err, context.Canceled)
	var cf *ChildFailed
	assert.False(t, errors.As(err, &cf))
}

func TestLaunchGracePeriodKillsStubbornChild(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("graceful termination is signalled with SIGTERM on linux")
	}
	out := &lockedBuffer{}
	l := New(nil, WithStdio(nil, out, out), WithGracePeriod(200*time.Millisecond))

	start := time.Now()
	err := launchUntilReady(t, l, out, "ignore")

	assert.Less(t, time.Since(start), 15*time.Second)
	var cf *ChildFailed
	require.ErrorAs(t, err, &cf)
	assert.Contains(t, cf.Status, "killed")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 1, ExitCode(&ChildFailed{Code: -1}))
	assert.Equal(t, 42, ExitCode(fmt.Errorf("wrapped: %w", &ChildFailed{Code: 42})))
}

func TestMergeEnv(t *testing.T) {
	base := []string{"A=1", "B=2", "A=3", "NOVALUE", "C=keep"}
	got := MergeEnv(base, map[string]string{"B": "override", "D": "new"})

	assert.Equal(t, []string{"A=3", "NOVALUE", "C=keep", "B=override", "D=new"}, got)
}

func TestMergeEnvEmptyOverrides(t *testing.T) {
	base := []string{"A=1", "B=2"}
	assert.Equal(t, base, MergeEnv(base, nil))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "grandchild-test-bin")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir)

	got, err := Resolve("grandchild-test-bin")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	got, err = Resolve(bin)
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = Resolve("no-such-binary-anywhere")
	var sf *SpawnFailed
	assert.ErrorAs(t, err, &sf)
}
