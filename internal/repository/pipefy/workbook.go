package pipefy

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"hufschlaeger.net/pipefy-exporter/internal/domain/table"
)

var ErrInvalidWorkbook = errors.New("invalid report workbook")

// ParseWorkbook liest das erste Arbeitsblatt einer XLSX-Datei. Die erste Zeile
// ist der Header, leere Zellen werden zu nil.
func ParseWorkbook(data []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no worksheets", ErrInvalidWorkbook)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	if len(rows) == 0 {
		return table.New(), nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	result := table.New(headerNames(rows[0], width)...)
	for _, row := range rows[1:] {
		values := make([]*string, width)
		for i, cell := range row {
			if cell == "" {
				continue
			}
			v := cell
			values[i] = &v
		}
		result.AppendRow(values)
	}

	return result, nil
}

// headerNames füllt leere Überschriften auf und macht doppelte eindeutig ("a", "a.1")
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}
