// Package storage keeps finished runs on disk. Each run is a directory
// holding metadata.json, the dos.csv and gap.csv tables, and the
// snapshot.json needed to restart from the converged state.
package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/usadel/internal/config"
	"github.com/san-kum/usadel/internal/structure"
)

const (
	MetadataFile = "metadata.json"
	DOSFile      = "dos.csv"
	GapFile      = "gap.csv"
	SnapshotFile = "snapshot.json"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Temperature float64            `json:"temperature"`
	Layers      []string           `json:"layers"`
	Converged   bool               `json:"converged"`
	Iterations  int                `json:"iterations"`
	Difference  float64            `json:"difference"`
	Seconds     float64            `json:"seconds"`
	Metrics     map[string]float64 `json:"metrics"`
	Config      *config.Config     `json:"config,omitempty"`
}

// Save writes a new run directory and returns its id. Nil tables and a nil
// snapshot are skipped.
func (s *Store) Save(meta RunMetadata, dos, gap *Table, snap *structure.Snapshot) (string, error) {
	name := meta.Name
	if name == "" {
		name = "run"
	}
	meta.ID = fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Difference = finite(meta.Difference)
	if len(meta.Metrics) > 0 {
		metrics := make(map[string]float64, len(meta.Metrics))
		for k, v := range meta.Metrics {
			metrics[k] = finite(v)
		}
		meta.Metrics = metrics
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, MetadataFile), meta); err != nil {
		return "", err
	}
	for file, t := range map[string]*Table{DOSFile: dos, GapFile: gap} {
		if t == nil {
			continue
		}
		if err := writeTable(filepath.Join(runDir, file), t); err != nil {
			return "", err
		}
	}
	if snap != nil {
		if err := writeJSON(filepath.Join(runDir, SnapshotFile), snap); err != nil {
			return "", err
		}
	}
	return meta.ID, nil
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, MetadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTable reads DOSFile or GapFile of a run.
func (s *Store) LoadTable(runID, file string) (*Table, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, file))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(f)
}

func (s *Store) LoadSnapshot(runID string) (*structure.Snapshot, error) {
	var snap structure.Snapshot
	if err := readJSON(filepath.Join(s.baseDir, runID, SnapshotFile), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// finite maps ±Inf to ±MaxFloat64, which JSON can hold. NaN is kept and
// fails the encode.
func finite(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeTable(path string, t *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
