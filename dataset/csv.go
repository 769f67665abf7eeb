package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// ReadCSV parses a header row followed by records. Cells are typed with ParseCell
// after trimming surrounding spaces. Rows that are entirely blank are skipped.
func ReadCSV(r io.Reader, name string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewValidationError("csv", "file has no header row", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			return nil, errors.NewValidationError("csv", "empty column name", i)
		}
		if seen[h] {
			return nil, errors.NewValidationError("csv", "duplicate column name", h)
		}
		seen[h] = true
		columns[i] = h
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read csv line %d", line)
		}
		if blank(record) {
			continue
		}
		if len(record) > len(columns) {
			return nil, errors.NewDimensionError("ReadCSV", len(columns), len(record), 1)
		}
		row := make(Row, len(columns))
		for i, c := range columns {
			if i < len(record) {
				row[c] = ParseCell(strings.TrimSpace(record[i]))
			} else {
				row[c] = Null()
			}
		}
		rows = append(rows, row)
	}

	return &Dataset{Name: name, Columns: columns, Rows: rows}, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path))
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
