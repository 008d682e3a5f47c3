// Package id provides centralized ID generation for the process chain.
//
// This package offers type-safe, time-ordered identifiers:
//   - Lexicographic sortability: ids minted later sort later, even inside one millisecond
//   - Typed ids: RunID and ProcessID cannot be mixed up
//   - Two wire formats: ULID (default) and UUIDv7, both time-ordered
//   - Lenient parsing: RUN_ID values minted by either format are accepted
package id

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// RunID identifies one execution of the whole process chain
type RunID string

// ProcessID identifies one process instance ("self id")
type ProcessID string

// String methods for ID types
func (id RunID) String() string     { return string(id) }
func (id ProcessID) String() string { return string(id) }

// ============================================================================
// Formats
// ============================================================================

// Format selects the textual form of generated ids
type Format string

const (
	FormatULID   Format = "ulid"
	FormatUUIDv7 Format = "uuidv7"
)

// ErrUnknownFormat is returned for an unsupported id format
var ErrUnknownFormat = errors.New("unknown id format")

// ParseFormat validates a configured format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatULID:
		return FormatULID, nil
	case FormatUUIDv7:
		return FormatUUIDv7, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ============================================================================
// Generator
// ============================================================================

// Generator generates time-ordered ids
type Generator struct {
	format    Format
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton ULID generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator with monotonic entropy
func NewGenerator() *Generator {
	return &Generator{
		format:  FormatULID,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithFormat creates a generator emitting the given format
func NewGeneratorWithFormat(format Format) (*Generator, error) {
	f, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	g := NewGenerator()
	g.format = f
	return g, nil
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new id in the generator's format
func (g *Generator) GenerateString() string {
	if g.format == FormatUUIDv7 {
		g.entropyMu.Lock()
		defer g.entropyMu.Unlock()
		// NewV7 keeps its own monotonic sequence within a millisecond
		return uuid.Must(uuid.NewV7()).String()
	}
	return g.Generate().String()
}

// NewRunID mints a run id
func (g *Generator) NewRunID() RunID {
	return RunID(g.GenerateString())
}

// NewProcessID mints a self id
func (g *Generator) NewProcessID() ProcessID {
	return ProcessID(g.GenerateString())
}

// ============================================================================
// Parsing and Validation
// ============================================================================

// ErrInvalidID is returned when text is neither a ULID nor a UUID
var ErrInvalidID = errors.New("invalid id")

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// ParseRunID validates inherited run id text. ULIDs and UUIDs are accepted.
func ParseRunID(s string) (RunID, error) {
	if err := validate(s); err != nil {
		return "", err
	}
	return RunID(s), nil
}

func validate(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if IsValid(s) {
		return nil
	}
	if _, err := uuid.Parse(s); err == nil {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidID, s)
}
