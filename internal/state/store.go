// Package state persists per-interface statuses between runs as a
// two-column CSV file.
package state

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/mikesoares/linkwatch/internal/domain"
)

// Store reads and writes the interface-status CSV. The file is the
// only memory the monitor has between runs, so a corrupt file is
// discarded wholesale rather than trusted in part.
type Store struct {
	path string
	log  *slog.Logger
}

func NewStore(path string, log *slog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load returns the persisted statuses. A missing file is a normal
// first run and yields an empty map. Any malformed row invalidates
// the whole file and every interface is treated as never seen.
func (s *Store) Load() map[string]domain.Status {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cannot open state file", "path", s.path, "error", err)
		}
		return map[string]domain.Status{}
	}
	defer f.Close()

	states, err := parse(f)
	if err != nil {
		s.log.Warn("state file invalid, treating all interfaces as new", "path", s.path, "error", err)
		return map[string]domain.Status{}
	}

	return states
}

func parse(r io.Reader) (map[string]domain.Status, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	states := map[string]domain.Status{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) != 2 {
			return nil, fmt.Errorf("want 2 columns, got %d", len(row))
		}

		status, err := domain.ParseStatus(row[1])
		if err != nil {
			return nil, err
		}
		states[row[0]] = status
	}

	return states, nil
}

// Save writes the statuses atomically: to a temp file in the same
// directory first, then renamed over the old state, so a crash
// mid-write cannot leave a half-written file behind. Row order
// follows the configured interface order; leftovers go last, sorted.
func (s *Store) Save(order []string, states map[string]domain.Status) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	written := make(map[string]bool, len(states))
	for _, name := range order {
		status, ok := states[name]
		if !ok || written[name] {
			continue
		}
		if err := w.Write([]string{name, string(status)}); err != nil {
			return fmt.Errorf("encode state row: %w", err)
		}
		written[name] = true
	}

	var rest []string
	for name := range states {
		if !written[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	for _, name := range rest {
		if err := w.Write([]string{name, string(states[name])}); err != nil {
			return fmt.Errorf("encode state row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace state file: %w", err)
	}

	s.log.Debug("state saved", "path", s.path, "interfaces", len(states))
	return nil
}
