package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"hufschlaeger.net/pipefy-exporter/internal/domain/table"
)

var ErrWorksheetNotFound = errors.New("worksheet not found")

type Repository struct {
	service *sheetsapi.Service
	log     *zap.Logger
}

func NewRepository(ctx context.Context, log *zap.Logger, opts ...option.ClientOption) (*Repository, error) {
	if log == nil {
		log = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	return &Repository{service: service, log: log.Named("sheets")}, nil
}

// Overwrite ersetzt den Inhalt des ersten Arbeitsblatts durch Header + Zeilen der Tabelle
func (r *Repository) Overwrite(ctx context.Context, spreadsheetID string, t *table.Table) error {
	title, err := r.worksheetTitle(ctx, spreadsheetID, 0)
	if err != nil {
		return err
	}
	rangeName := quoteSheet(title)

	if _, err := r.service.Spreadsheets.Values.Clear(spreadsheetID, rangeName, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheet %s leeren: %w", spreadsheetID, err)
	}

	values := TableValues(t)
	if len(values) == 0 {
		return nil
	}

	resp, err := r.service.Spreadsheets.Values.Update(spreadsheetID, rangeName+"!A1", &sheetsapi.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheet %s schreiben: %w", spreadsheetID, err)
	}

	r.log.Debug("worksheet overwritten",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("worksheet", title),
		zap.Int64("updated_rows", resp.UpdatedRows),
		zap.Int64("updated_cells", resp.UpdatedCells))
	return nil
}

// ReadWorksheet liefert alle Zellen des Arbeitsblatts an Position index als Text
func (r *Repository) ReadWorksheet(ctx context.Context, spreadsheetID string, index int) ([][]string, error) {
	title, err := r.worksheetTitle(ctx, spreadsheetID, index)
	if err != nil {
		return nil, err
	}

	resp, err := r.service.Spreadsheets.Values.Get(spreadsheetID, quoteSheet(title)).
		ValueRenderOption("FORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheet %s lesen: %w", spreadsheetID, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func (r *Repository) worksheetTitle(ctx context.Context, spreadsheetID string, index int) (string, error) {
	ss, err := r.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("spreadsheet %s laden: %w", spreadsheetID, err)
	}
	if index < 0 || index >= len(ss.Sheets) || ss.Sheets[index].Properties == nil {
		return "", fmt.Errorf("spreadsheet %s, index %d: %w", spreadsheetID, index, ErrWorksheetNotFound)
	}
	return ss.Sheets[index].Properties.Title, nil
}

// TableValues wandelt die Tabelle in das Werte-Format der Sheets API (nil -> "")
func TableValues(t *table.Table) [][]interface{} {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, t.Len()+1)

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	values = append(values, header)

	for _, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for i := range t.Columns {
			cells[i] = ""
			if i < len(row) && row[i] != nil {
				cells[i] = *row[i]
			}
		}
		values = append(values, cells)
	}
	return values
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
