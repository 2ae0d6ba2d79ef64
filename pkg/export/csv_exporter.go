package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Grid is a two-dimensional timetable: one row per day, one column per period.
type Grid struct {
	Title    string
	Subtitle string
	Columns  []string
	Rows     []string
	// Cells[r][c] holds the text lines shown in row r, column c.
	Cells [][][]string
	// Shaded marks columns rendered greyed out, such as the break period.
	Shaded map[int]bool
}

// CSVExporter renders datasets and grids as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Write streams the dataset to w, header first, columns in header order.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("csv requires at least one header")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(data.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := e.Write(buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderGrid flattens a grid to CSV. The first column holds row labels and
// multi-line cells are joined with " / ".
func (e *CSVExporter) RenderGrid(grid Grid) ([]byte, error) {
	if len(grid.Columns) == 0 {
		return nil, fmt.Errorf("grid requires at least one column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(append([]string{""}, grid.Columns...)); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for r, label := range grid.Rows {
		record := make([]string, 0, len(grid.Columns)+1)
		record = append(record, label)
		for c := range grid.Columns {
			record = append(record, strings.Join(cell(grid, r, c), " / "))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(grid Grid, r, c int) []string {
	if r >= len(grid.Cells) || c >= len(grid.Cells[r]) {
		return nil
	}
	return grid.Cells[r][c]
}
