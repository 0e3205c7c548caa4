package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ddscanner/internal/domain"
	"ddscanner/internal/ports"
)

// JSONLStore persists records as UTF-8 JSON objects, one per line. The
// sweep appends to the file; the terminal sort pass rewrites it in full.
type JSONLStore struct {
	path string
}

var _ ports.RecordStore = (*JSONLStore)(nil)

// New wires a store around the given log path.
func New(path string) *JSONLStore {
	return &JSONLStore{path: path}
}

// Path returns the backing file location.
func (s *JSONLStore) Path() string {
	return s.path
}

// Truncate clears the log at run start, creating it if absent.
func (s *JSONLStore) Truncate() error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("truncate log %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log %s: %w", s.path, err)
	}
	return nil
}

// Append writes one record as a JSON line at the end of the log.
func (s *JSONLStore) Append(rec domain.Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log %s: %w", s.path, err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append record: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close log %s: %w", s.path, err)
	}
	return nil
}

// LoadAll reads every line of the log in file order. Blank lines are
// skipped; a malformed line is an error, not a skip.
func (s *JSONLStore) LoadAll() ([]domain.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", s.path, err)
	}
	defer f.Close()

	var records []domain.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parse log line: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log %s: %w", s.path, err)
	}

	return records, nil
}

// RewriteAll replaces the log with the given records. The new content is
// written to a temporary file in the same directory and renamed over the
// log, so a failure mid-write never leaves a partially written log visible.
func (s *JSONLStore) RewriteAll(recs []domain.Record) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp log: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range recs {
		line, err := json.Marshal(rec)
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return fmt.Errorf("write temp log: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flush temp log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp log: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace log %s: %w", s.path, err)
	}
	return nil
}
