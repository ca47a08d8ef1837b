package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/conf-authors/internal/affiliation"
	"github.com/pfrederiksen/conf-authors/internal/author"
)

// Result file names inside the results directory
const (
	AuthorFile     = "author_info.json"
	UniversityFile = "university_info.json"
	OtherFile      = "other_info.json"
	ManualFile     = "manual_info.json"
)

// ErrNotCached is returned when a stage has no persisted output yet.
var ErrNotCached = errors.New("no cached result")

// Storage handles persistence of scrape results
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create results directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the results directory
func (s *Storage) Dir() string {
	return s.dataDir
}

func (s *Storage) path(name string) string {
	return filepath.Join(s.dataDir, name)
}

// LoadAuthors loads the persisted author index. It returns ErrNotCached if
// none has been saved.
func (s *Storage) LoadAuthors() (author.Index, error) {
	var idx author.Index
	if err := s.readJSON(AuthorFile, &idx); err != nil {
		return nil, err
	}
	if idx == nil {
		idx = make(author.Index)
	}
	return idx, nil
}

// SaveAuthors persists the author index. Affiliation outputs derive from the
// index, so any persisted ones are removed first.
func (s *Storage) SaveAuthors(idx author.Index) error {
	if err := s.ClearAffiliations(); err != nil {
		return err
	}
	return s.writeJSON(AuthorFile, idx)
}

// ClearAffiliations removes the persisted affiliation outputs. Missing files
// are ignored.
func (s *Storage) ClearAffiliations() error {
	for _, name := range []string{UniversityFile, OtherFile, ManualFile} {
		if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}

// LoadAffiliations rebuilds an affiliation report from its three output
// files. It returns ErrNotCached if any of them is missing.
func (s *Storage) LoadAffiliations() (*affiliation.Report, error) {
	var (
		academic map[string]map[string]int
		other    map[string]map[string]int
		manual   []string
	)
	if err := s.readJSON(UniversityFile, &academic); err != nil {
		return nil, err
	}
	if err := s.readJSON(OtherFile, &other); err != nil {
		return nil, err
	}
	if err := s.readJSON(ManualFile, &manual); err != nil {
		return nil, err
	}
	return affiliation.FromBuckets(academic, other, manual), nil
}

// SaveAffiliations writes the academic and other institution counts keyed by
// year, and the manual-check list.
func (s *Storage) SaveAffiliations(rep *affiliation.Report) error {
	if err := s.writeJSON(UniversityFile, rep.Bucket(affiliation.Academic)); err != nil {
		return err
	}
	if err := s.writeJSON(OtherFile, rep.Bucket(affiliation.Other)); err != nil {
		return err
	}
	return s.writeJSON(ManualFile, rep.ManualCheck)
}

func (s *Storage) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", name, ErrNotCached)
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// writeJSON replaces name atomically through a temporary file. A partially
// written file must never be mistaken for a cached result.
func (s *Storage) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	tmp := s.path(name + ".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
