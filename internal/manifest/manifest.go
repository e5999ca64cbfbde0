// Package manifest keeps manifest.json, the run history of an output
// directory.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/nbaclean-cli/internal/clean"
	"github.com/KaramelBytes/nbaclean-cli/internal/utils"
)

const fileName = "manifest.json"

// Manifest is the persisted set of runs for one output directory.
type Manifest struct {
	Entries   map[string]*Entry `json:"entries"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	mu      sync.Mutex
	rootDir string
}

// Open loads manifest.json from dir, or starts an empty manifest when none
// exists yet. Call Save to persist.
func Open(dir string) (*Manifest, error) {
	path := filepath.Join(dir, fileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			now := time.Now()
			return &Manifest{Entries: make(map[string]*Entry), CreatedAt: now, UpdatedAt: now, rootDir: dir}, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]*Entry)
	}
	m.rootDir = dir
	return &m, nil
}

// Path is the on-disk location of manifest.json.
func (m *Manifest) Path() string { return filepath.Join(m.rootDir, fileName) }

// Record adds an entry for a finished or aborted run and returns it.
// Safe for concurrent use.
func (m *Manifest) Record(input, output, reportPath, profile string, r clean.Report) *Entry {
	e := &Entry{
		ID:        uuid.NewString(),
		RunID:     r.RunID,
		Input:     input,
		Output:    output,
		Report:    reportPath,
		Profile:   profile,
		RowsIn:    r.RowsIn,
		RowsOut:   r.RowsOut,
		Outliers:  r.OutlierRows,
		Violation: r.Violations,
		Aborted:   r.Aborted,
		Error:     r.Error,
		CleanedAt: time.Now(),
	}
	if len(e.Violation) == 0 {
		e.Violation = nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, prev := range m.Entries {
		if prev.Seq >= e.Seq {
			e.Seq = prev.Seq + 1
		}
	}
	m.Entries[e.ID] = e
	m.UpdatedAt = e.CleanedAt
	return e
}

// List returns all entries, oldest first.
func (m *Manifest) List() []*Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Entry, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Latest returns the most recent entry for an input file, matched by base
// name so runs from different working directories line up.
func (m *Manifest) Latest(input string) (*Entry, bool) {
	var last *Entry
	for _, e := range m.List() {
		if filepath.Base(e.Input) == filepath.Base(input) {
			last = e
		}
	}
	return last, last != nil
}

// Save writes manifest.json atomically, creating the directory if needed.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.mu.Lock()
	data, err := utils.PrettyJSON(m)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(), data)
}
