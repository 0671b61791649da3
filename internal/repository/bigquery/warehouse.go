package bigquery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"hufschlaeger.net/pipefy-exporter/internal/domain/table"
)

var (
	ErrInvalidTableRef = errors.New("invalid BigQuery table reference")
	ErrEmptySchema     = errors.New("table has no columns")
)

// Warehouse schreibt Tabellen nach BigQuery. Der Inhalt der Zieltabelle wird bei
// jedem Schreiben ersetzt.
type Warehouse struct {
	opts    []option.ClientOption
	clients map[string]*bigquery.Client
	log     *zap.Logger
}

func NewWarehouse(log *zap.Logger, opts ...option.ClientOption) *Warehouse {
	if log == nil {
		log = zap.NewNop()
	}
	return &Warehouse{
		opts:    opts,
		clients: make(map[string]*bigquery.Client),
		log:     log.Named("bigquery"),
	}
}

// Replace lädt t nach projectID.tableRef (dataset.table oder project.dataset.table)
// mit WRITE_TRUNCATE. Alle Spalten sind nullable STRING.
func (w *Warehouse) Replace(ctx context.Context, projectID, tableRef string, t *table.Table) error {
	ref, err := ParseTableRef(projectID, tableRef)
	if err != nil {
		return err
	}
	if t == nil || len(t.Columns) == 0 {
		return fmt.Errorf("%s: %w", ref, ErrEmptySchema)
	}

	payload, err := EncodeNDJSON(t)
	if err != nil {
		return fmt.Errorf("%s: %w", ref, err)
	}

	client, err := w.client(ctx, ref.ProjectID)
	if err != nil {
		return err
	}

	source := bigquery.NewReaderSource(bytes.NewReader(payload))
	source.SourceFormat = bigquery.JSON
	source.Schema = Schema(t)

	loader := client.Dataset(ref.DatasetID).Table(ref.TableID).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteTruncate
	loader.CreateDisposition = bigquery.CreateIfNeeded

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("load job %s starten: %w", ref, err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("load job %s: %w", ref, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load job %s fehlgeschlagen: %w", ref, err)
	}

	w.log.Debug("table replaced",
		zap.String("table", ref.String()),
		zap.String("job_id", job.ID()),
		zap.Int("rows", t.Len()),
		zap.Int("bytes", len(payload)))
	return nil
}

// Close schliesst alle offenen Clients
func (w *Warehouse) Close() error {
	var errs []error
	for project, c := range w.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("client %s: %w", project, err))
		}
		delete(w.clients, project)
	}
	return errors.Join(errs...)
}

func (w *Warehouse) client(ctx context.Context, projectID string) (*bigquery.Client, error) {
	if c, ok := w.clients[projectID]; ok {
		return c, nil
	}

	c, err := bigquery.NewClient(ctx, projectID, w.opts...)
	if err != nil {
		return nil, fmt.Errorf("BigQuery client für %s: %w", projectID, err)
	}
	w.clients[projectID] = c
	return c, nil
}

type TableRef struct {
	ProjectID string
	DatasetID string
	TableID   string
}

func (r TableRef) String() string {
	return r.ProjectID + "." + r.DatasetID + "." + r.TableID
}

// ParseTableRef akzeptiert "dataset.table" (Projekt aus projectID) oder "project.dataset.table"
func ParseTableRef(projectID, tableRef string) (TableRef, error) {
	parts := strings.Split(strings.TrimSpace(tableRef), ".")

	var ref TableRef
	switch len(parts) {
	case 2:
		ref = TableRef{ProjectID: strings.TrimSpace(projectID), DatasetID: parts[0], TableID: parts[1]}
	case 3:
		ref = TableRef{ProjectID: parts[0], DatasetID: parts[1], TableID: parts[2]}
	default:
		return TableRef{}, fmt.Errorf("%w: %q", ErrInvalidTableRef, tableRef)
	}

	if ref.ProjectID == "" || ref.DatasetID == "" || ref.TableID == "" {
		return TableRef{}, fmt.Errorf("%w: %q (project %q)", ErrInvalidTableRef, tableRef, projectID)
	}
	return ref, nil
}

// Schema liefert für jede Spalte ein nullable STRING-Feld
func Schema(t *table.Table) bigquery.Schema {
	schema := make(bigquery.Schema, 0, len(t.Columns))
	for _, c := range t.Columns {
		schema = append(schema, &bigquery.FieldSchema{
			Name: c,
			Type: bigquery.StringFieldType,
		})
	}
	return schema
}

// EncodeNDJSON schreibt jede Zeile als JSON-Objekt in eine eigene Zeile; nil-Werte entfallen
func EncodeNDJSON(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)

	for _, row := range t.Rows {
		obj := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(row) && row[i] != nil {
				obj[c] = *row[i]
			}
		}
		if err := enc.Encode(obj); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
