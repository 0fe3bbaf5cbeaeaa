package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jeecollege/collegerag/internal/domain"
)

// Table is a parsed survey export: a header row of column names and the
// cell values per column, row order preserved.
type Table struct {
	Columns []string
	Rows    [][]string // Rows[i][j] = value of Columns[j] in row i
}

// ParseCSV reads a CSV with a header row. Short records are padded with
// empty cells so every row spans all columns.
func ParseCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // survey exports often have ragged rows

	header, err := reader.Read()
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}
		rows = append(rows, record)
	}

	return Table{Columns: header, Rows: rows}, nil
}

// Flatten turns a table into documents: for every column not in the ignore
// set, for every row (column-major traversal), the trimmed cell becomes one
// document unless it is empty or stringifies to "nan" (case-insensitive).
// IDs are "{slug}-{n}" with n assigned in emission order from 0 — unique and
// stable only within one ingestion run.
func Flatten(t Table, slug string, ignoreColumns []string) []domain.Document {
	ignored := make(map[string]struct{}, len(ignoreColumns))
	for _, c := range ignoreColumns {
		ignored[c] = struct{}{}
	}

	var docs []domain.Document
	seq := 0

	for j, column := range t.Columns {
		if _, skip := ignored[column]; skip {
			continue
		}
		for _, row := range t.Rows {
			if j >= len(row) {
				continue
			}
			answer := strings.TrimSpace(row[j])
			if answer == "" || strings.EqualFold(answer, "nan") {
				continue
			}
			docs = append(docs, domain.Document{
				ID:       slug + "-" + strconv.Itoa(seq),
				Text:     answer,
				College:  slug,
				Topic:    column,
				Question: column,
			})
			seq++
		}
	}

	return docs
}
