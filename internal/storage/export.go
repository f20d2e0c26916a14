package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run RunMetadata  `json:"run"`
	DOS [][3]float64 `json:"dos,omitempty"`
	Gap [][3]float64 `json:"gap,omitempty"`
}

// Export gathers a stored run into one document. Missing tables are left
// empty.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{Run: *meta}
	if t, err := s.LoadTable(runID, DOSFile); err == nil {
		data.DOS = t.Rows
	}
	if t, err := s.LoadTable(runID, GapFile); err == nil {
		data.Gap = t.Rows
	}
	return data, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
