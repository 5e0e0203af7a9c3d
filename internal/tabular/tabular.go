// Package tabular loads the row-oriented item sheet (name, price, ...) that
// catalog entries are created from.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/papapumpkin/foundry/internal/logging"
)

// Required column headers.
const (
	ColumnName  = "Name"
	ColumnPrice = "Price"
)

// Sentinel errors for sheet parsing and access.
var (
	// ErrMissingColumn indicates the header row lacks a required column.
	ErrMissingColumn = errors.New("required column missing")
	// ErrBadPrice indicates a Price cell is not an integer.
	ErrBadPrice = errors.New("price is not an integer")
	// ErrRowRange indicates a row index outside the loaded sheet.
	ErrRowRange = errors.New("row index out of range")
	// ErrNoSource indicates the source has no backing file configured.
	ErrNoSource = errors.New("no tabular source configured")
)

// Row is one item in the sheet. Columns holds every cell by header,
// including Name and Price.
type Row struct {
	Name    string
	Price   int
	Columns map[string]string
}

// Parse reads a CSV sheet with a header row. Blank lines are skipped and a
// leading UTF-8 byte order mark is ignored.
func Parse(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tabular: reading: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("tabular: %w: empty sheet", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	nameCol, priceCol := indexOf(header, ColumnName), indexOf(header, ColumnPrice)
	if nameCol < 0 {
		return nil, fmt.Errorf("tabular: %w: %s", ErrMissingColumn, ColumnName)
	}
	if priceCol < 0 {
		return nil, fmt.Errorf("tabular: %w: %s", ErrMissingColumn, ColumnPrice)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular: %w", err)
		}
		line, _ := cr.FieldPos(0)
		cols := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				cols[h] = strings.TrimSpace(record[i])
			}
		}
		price, err := strconv.Atoi(cols[ColumnPrice])
		if err != nil {
			return nil, fmt.Errorf("tabular: line %d: %w: %q", line, ErrBadPrice, cols[ColumnPrice])
		}
		rows = append(rows, Row{Name: cols[ColumnName], Price: price, Columns: cols})
	}
	return rows, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// Snapshot is an immutable view of one load: the rows and their name
// projection always come from the same parse. Callers must not modify it.
type Snapshot struct {
	Path  string
	Rows  []Row
	Names []string
}

func newSnapshot(path string, rows []Row) *Snapshot {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return &Snapshot{Path: path, Rows: rows, Names: names}
}

// IndexOf returns the index of the first row named name, or -1.
func (s *Snapshot) IndexOf(name string) int {
	return indexOf(s.Names, name)
}

// Source is a loaded sheet that reloads only when asked to or when its
// backing path changes. Reloads swap rows and names together.
type Source struct {
	mu   sync.RWMutex
	snap *Snapshot
	log  *zap.Logger
}

// Open loads the sheet at path.
func Open(path string, log *zap.Logger) (*Source, error) {
	log = logging.OrNop(log)
	s := &Source{snap: newSnapshot("", nil), log: log}
	if err := s.SetPath(path); err != nil {
		return nil, err
	}
	return s, nil
}

// load parses the sheet at path into a fresh snapshot.
func load(path string) (*Snapshot, error) {
	if path == "" {
		return nil, ErrNoSource
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: opening %s: %w", path, err)
	}
	defer f.Close()
	rows, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return newSnapshot(path, rows), nil
}

// Reload re-parses the current backing file. On error the previous rows
// stay in place.
func (s *Source) Reload() error {
	return s.swap(s.Snapshot().Path)
}

// SetPath points the source at a new backing file and loads it. Setting the
// path it already has is a no-op.
func (s *Source) SetPath(path string) error {
	if cur := s.Snapshot(); cur.Path == path && path != "" {
		return nil
	}
	return s.swap(path)
}

func (s *Source) swap(path string) error {
	next, err := load(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
	s.log.Debug("tabular source loaded", zap.String("path", path), zap.Int("rows", len(next.Rows)))
	return nil
}

// Snapshot returns the current rows and names as one consistent view.
func (s *Source) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Rows returns the loaded rows in sheet order.
func (s *Source) Rows() []Row { return s.Snapshot().Rows }

// NamesProjection returns the Name column in sheet order.
func (s *Source) NamesProjection() []string { return s.Snapshot().Names }

// Len returns the number of loaded rows.
func (s *Source) Len() int { return len(s.Snapshot().Rows) }

// Row returns the row at index i.
func (s *Source) Row(i int) (Row, error) {
	snap := s.Snapshot()
	if i < 0 || i >= len(snap.Rows) {
		return Row{}, fmt.Errorf("%w: %d of %d", ErrRowRange, i, len(snap.Rows))
	}
	return snap.Rows[i], nil
}

// IndexOf returns the index of the first row named name, or -1.
func (s *Source) IndexOf(name string) int { return s.Snapshot().IndexOf(name) }
