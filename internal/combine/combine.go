package combine

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	json "github.com/goccy/go-json"
	"go.uber.org/multierr"
)

// DefaultPattern matches plain and compressed trace files
const DefaultPattern = "*.json*"

// RawMessage is encoding/json's RawMessage; goccy/go-json honours it.
type RawMessage = stdjson.RawMessage

// Record is one line of a trace file. Only resourceSpans is interpreted;
// its entries are carried through verbatim.
type Record struct {
	ResourceSpans *[]RawMessage `json:"resourceSpans"`
}

// Combined is the merged document of a run
type Combined struct {
	Name          string       `json:"name,omitempty"`
	Timestamp     int64        `json:"timestamp"` // milliseconds since the epoch
	ResourceSpans []RawMessage `json:"resourceSpans"`

	Files   []string `json:"-"`
	Records int      `json:"-"`
}

// Discover returns the trace files below dir matching pattern, sorted.
func Discover(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// ReadRecords decodes every record in path.
func ReadRecords(path string) (records []Record, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	r, err := newReader(f, compressionFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer func() { err = multierr.Append(err, r.Close()) }()

	return decodeRecords(path, r)
}

func decodeRecords(path string, r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	var records []Record
	for i := 0; ; i++ {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return nil, fmt.Errorf("%s: record %d: %w", path, i, err)
		}
		if rec.ResourceSpans == nil {
			return nil, &MissingFieldError{Path: path, Record: i, Field: "resourceSpans"}
		}
		records = append(records, rec)
	}
}

// Combine merges the resourceSpans of every record of every file. Files are
// read in sorted order and entries keep their original structure.
func Combine(paths []string) (*Combined, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	c := &Combined{
		Timestamp:     time.Now().UnixMilli(),
		ResourceSpans: []RawMessage{},
		Files:         sorted,
	}
	for _, path := range sorted {
		records, err := ReadRecords(path)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			c.ResourceSpans = append(c.ResourceSpans, *rec.ResourceSpans...)
		}
		c.Records += len(records)
	}
	return c, nil
}

// Write encodes c as indented JSON, compressed as requested.
func Write(w io.Writer, c *Combined, compression Compression) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode combined document: %w", err)
	}
	data = append(data, '\n')

	cw, err := newWriter(w, compression)
	if err != nil {
		return err
	}
	_, err = cw.Write(data)
	return multierr.Append(err, cw.Close())
}

// WriteFile writes c to path, replacing any existing file.
func WriteFile(path string, c *Combined, compression Compression) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return Write(f, c, compression)
}
