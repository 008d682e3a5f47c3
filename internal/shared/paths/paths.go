package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact extensions
const (
	TraceExt   = ".json"
	MetricsExt = ".prom"
)

// Run returns the artifact paths of one run below a base directory
type Run struct {
	Base  string
	RunID string
}

// RunPath returns paths for a specific run
func RunPath(base, runID string) Run {
	return Run{Base: base, RunID: runID}
}

// Dir returns the run-scoped directory shared by every process of the run
func (r Run) Dir() string {
	return filepath.Join(r.Base, r.RunID)
}

// TraceFile returns a process's trace artifact: <base>/<run>/<role>-<self>.json
func (r Run) TraceFile(role, selfID string) string {
	return filepath.Join(r.Dir(), artifactName(role, selfID)+TraceExt)
}

// MetricsFile returns a process's metrics textfile: <base>/<run>/<role>-<self>.prom
func (r Run) MetricsFile(role, selfID string) string {
	return filepath.Join(r.Dir(), artifactName(role, selfID)+MetricsExt)
}

// Ensure creates the run directory if needed
func (r Run) Ensure() error {
	if err := ValidateComponent(r.RunID); err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	if err := os.MkdirAll(r.Dir(), 0o755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	return nil
}

func artifactName(role, selfID string) string {
	return role + "-" + selfID
}

// ValidateComponent checks that a value is usable as a single path element
func ValidateComponent(s string) error {
	if s == "" {
		return fmt.Errorf("path component cannot be empty")
	}
	if filepath.IsAbs(s) {
		return fmt.Errorf("path component cannot be an absolute path")
	}
	if strings.ContainsRune(s, filepath.Separator) || strings.ContainsRune(s, '/') {
		return fmt.Errorf("path component cannot contain a separator")
	}
	if s == "." || s == ".." {
		return fmt.Errorf("path component contains invalid path components")
	}
	return nil
}
