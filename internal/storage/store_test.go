package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/usadel/internal/config"
	"github.com/san-kum/usadel/internal/material"
	"github.com/san-kum/usadel/internal/structure"
)

func testRun(t *testing.T) (*Table, *Table, structure.Snapshot) {
	t.Helper()
	opts := material.DefaultOptions()
	opts.Points = 3
	sc, err := material.NewSuperconductor([]float64{0.5, 2}, opts, complex(0.8, 0.1), 0.3)
	if err != nil {
		t.Fatalf("superconductor: %v", err)
	}
	st := structure.New()
	if err := st.PushBack(sc); err != nil {
		t.Fatalf("push: %v", err)
	}

	dos, gap := NewDOSTable(), NewGapTable()
	if err := st.WriteDensityOfStates(dos); err != nil {
		t.Fatalf("dos: %v", err)
	}
	if err := st.WriteGap(gap); err != nil {
		t.Fatalf("gap: %v", err)
	}
	return dos, gap, st.Save()
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	s := New(tmpDir)
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	dos, gap, snap := testRun(t)
	meta := RunMetadata{
		Name:        "bulk",
		Temperature: 0.2,
		Layers:      []string{"S"},
		Converged:   true,
		Iterations:  7,
		Metrics:     map[string]float64{"max_gap": 0.8},
		Config:      config.DefaultConfig(),
	}

	runID, err := s.Save(meta, dos, gap, &snap)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "bulk_") {
		t.Errorf("unexpected run id %q", runID)
	}

	got, err := s.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	meta.ID = runID
	meta.Timestamp = got.Timestamp
	if diff := cmp.Diff(meta, *got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	gotDOS, err := s.LoadTable(runID, DOSFile)
	if err != nil {
		t.Fatalf("load dos failed: %v", err)
	}
	if diff := cmp.Diff(dos, gotDOS); diff != "" {
		t.Errorf("dos mismatch (-want +got):\n%s", diff)
	}

	gotGap, err := s.LoadTable(runID, GapFile)
	if err != nil {
		t.Fatalf("load gap failed: %v", err)
	}
	if gotGap.Rows[1][1] != 0.8 || gotGap.Rows[1][2] != 0.1 {
		t.Errorf("unexpected gap row %v", gotGap.Rows[1])
	}

	gotSnap, err := s.LoadSnapshot(runID)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if diff := cmp.Diff(snap, *gotSnap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreSaveInfiniteDifference(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	metrics := map[string]float64{"difference": math.Inf(1), "max_gap": 0.4}
	runID, err := s.Save(RunMetadata{Name: "stale", Difference: math.Inf(1), Metrics: metrics}, nil, nil, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := s.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Difference != math.MaxFloat64 {
		t.Errorf("expected difference %g, got %g", math.MaxFloat64, got.Difference)
	}
	want := map[string]float64{"difference": math.MaxFloat64, "max_gap": 0.4}
	if diff := cmp.Diff(want, got.Metrics); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
	if !math.IsInf(metrics["difference"], 1) {
		t.Error("caller's metrics were modified")
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	s := New(tmpDir)

	runs, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	for _, name := range []string{"a", "b"} {
		if _, err := s.Save(RunMetadata{Name: name}, nil, nil, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	s := New(tmpDir)

	runID, err := s.Save(RunMetadata{}, NewDOSTable(), nil, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for file, want := range map[string]bool{MetadataFile: true, DOSFile: true, GapFile: false, SnapshotFile: false} {
		_, err := os.Stat(filepath.Join(runDir, file))
		if exists := err == nil; exists != want {
			t.Errorf("%s: exists %v, want %v", file, exists, want)
		}
	}
	if _, err := s.LoadSnapshot(runID); err == nil {
		t.Error("expected error for missing snapshot")
	}
}

func TestTableCSV(t *testing.T) {
	tbl := NewGapTable()
	tbl.Record(0, 1, 0)
	tbl.Record(0.5, 0.25, -1e-9)
	tbl.Record(0.5, 3, 4)

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "position,re_gap,im_gap\n") {
		t.Errorf("unexpected header in %q", buf.String())
	}

	got, err := ReadTable(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(tbl, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	if n := got.Slice(0.5).Len(); n != 2 {
		t.Errorf("expected 2 rows at 0.5, got %d", n)
	}
	if diff := cmp.Diff([]float64{1, 0.25, 3}, got.Column(1)); diff != "" {
		t.Errorf("column mismatch: %s", diff)
	}

	if _, err := ReadTable(strings.NewReader("a,b,c\n1,x,2\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestExport(t *testing.T) {
	tmpDir := t.TempDir()
	s := New(tmpDir)
	dos, gap, _ := testRun(t)

	runID, err := s.Save(RunMetadata{Name: "x", Iterations: 3}, dos, gap, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := s.Export(runID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(data.DOS) != dos.Len() || len(data.Gap) != gap.Len() {
		t.Errorf("unexpected export sizes %d, %d", len(data.DOS), len(data.Gap))
	}

	path := filepath.Join(tmpDir, "x.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatalf("export json failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back ExportData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Run.Iterations != 3 || len(back.Gap) != gap.Len() {
		t.Errorf("unexpected export %+v", back.Run)
	}

	if _, err := s.Export("missing"); err == nil {
		t.Error("expected error for missing run")
	}
}
