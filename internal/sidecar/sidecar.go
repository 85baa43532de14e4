// Package sidecar implements the "Additional" store: per-source-id
// extra columns loaded from one or more gzipped CSV files into a
// sharded large map, queried by the ingest pipeline ahead of any value
// parsed from the primary catalog shard.
package sidecar

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/starforge-tools/catgen/internal/colid"
	"github.com/starforge-tools/catgen/internal/errs"
	"github.com/starforge-tools/catgen/internal/largemap"
	"github.com/starforge-tools/catgen/internal/parse"
)

// Store is one loaded sidecar file: a column-name -> position index and
// a source_id -> row-of-floats map.
type Store struct {
	indices map[string]int
	values  *largemap.LargeLongMap[[]float64]
}

// Load reads a gzipped CSV sidecar file. The header's first column must
// be "source_id" or "sourceid" (case-insensitive); every other header
// column becomes a queryable field, in header order. Data rows map
// source_id to the remaining columns as float64, with blank cells
// parsed as NaN.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sidecar: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".gzip") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("sidecar: gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("sidecar: read header %s: %w", path, err)
		}

		return nil, fmt.Errorf("sidecar: empty file %s: %w", path, errs.ErrSidecarHeader)
	}

	header := splitFields(sc.Text())
	if len(header) == 0 {
		return nil, fmt.Errorf("sidecar: %s: %w", path, errs.ErrSidecarHeader)
	}
	if id := colid.Resolve(header[0]); id != colid.SourceID {
		return nil, fmt.Errorf("sidecar: %s: first column must be source_id: %w", path, errs.ErrSidecarHeader)
	}

	indices := make(map[string]int, len(header)-1)
	for i, name := range header[1:] {
		indices[strings.ToLower(strings.TrimSpace(name))] = i
	}

	store := &Store{
		indices: indices,
		values:  largemap.New[[]float64](64),
	}

	for sc.Scan() {
		fields := splitFields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		sourceID := parse.I64(&fields[0])
		row := make([]float64, len(indices))
		for i := range row {
			row[i] = math.NaN()
		}
		for i, v := range fields[1:] {
			if i >= len(row) {
				break
			}
			row[i] = parse.F64(&v)
		}
		store.values.Put(sourceID, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sidecar: scan %s: %w", path, err)
	}

	return store, nil
}

// HasColumn reports whether this store carries the named column at all,
// independent of any particular source id.
func (s *Store) HasColumn(column string) bool {
	_, ok := s.indices[strings.ToLower(strings.TrimSpace(column))]

	return ok
}

// Get returns the value of the named column for sourceID, and whether
// both the column and the row were found and the cell is not NaN.
func (s *Store) Get(column string, sourceID int64) (float64, bool) {
	idx, ok := s.indices[strings.ToLower(strings.TrimSpace(column))]
	if !ok {
		return 0, false
	}

	row, ok := s.values.Get(sourceID)
	if !ok || idx >= len(row) {
		return 0, false
	}

	v := row[idx]

	return v, !math.IsNaN(v)
}

// Chain is an ordered list of sidecar Stores. The first store that
// both has the requested column AND a finite value for sourceID wins.
type Chain []*Store

// HasColumn reports whether any store in the chain carries column.
func (c Chain) HasColumn(column string) bool {
	for _, s := range c {
		if s != nil && s.HasColumn(column) {
			return true
		}
	}

	return false
}

// Get queries every store in order, returning the first finite value
// found.
func (c Chain) Get(column string, sourceID int64) (float64, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Get(column, sourceID); ok {
			return v, true
		}
	}

	return 0, false
}

func splitFields(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}

	sep := ","
	if !strings.Contains(line, ",") {
		sep = " "
	}

	raw := strings.Split(line, sep)
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		out = append(out, strings.TrimSpace(f))
	}

	return out
}
