package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Table holds three-column records such as (position, energy, dos). It
// implements material.Sink.
type Table struct {
	Columns [3]string
	Rows    [][3]float64
}

func NewTable(a, b, c string) *Table {
	return &Table{Columns: [3]string{a, b, c}}
}

func NewDOSTable() *Table { return NewTable("position", "energy", "dos") }

func NewGapTable() *Table { return NewTable("position", "re_gap", "im_gap") }

func (t *Table) Record(a, b, c float64) error {
	t.Rows = append(t.Rows, [3]float64{a, b, c})
	return nil
}

func (t *Table) Len() int { return len(t.Rows) }

// Column returns a copy of column i.
func (t *Table) Column(i int) []float64 {
	out := make([]float64, len(t.Rows))
	for k, r := range t.Rows {
		out[k] = r[i]
	}
	return out
}

// Slice returns the rows whose first column equals a.
func (t *Table) Slice(a float64) *Table {
	out := NewTable(t.Columns[0], t.Columns[1], t.Columns[2])
	for _, r := range t.Rows {
		if r[0] == a {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns[:]); err != nil {
		return err
	}
	for _, r := range t.Rows {
		row := []string{
			strconv.FormatFloat(r[0], 'g', -1, 64),
			strconv.FormatFloat(r[1], 'g', -1, 64),
			strconv.FormatFloat(r[2], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table has no header")
	}

	h := records[0]
	t := NewTable(h[0], h[1], h[2])
	t.Rows = make([][3]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		var row [3]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			row[j] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
