package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hufschlaeger.net/pipefy-exporter/internal/config"
	"hufschlaeger.net/pipefy-exporter/internal/domain/table"
	bigqueryRepo "hufschlaeger.net/pipefy-exporter/internal/repository/bigquery"
	"hufschlaeger.net/pipefy-exporter/internal/repository/gcp"
	pipefyRepo "hufschlaeger.net/pipefy-exporter/internal/repository/pipefy"
	sheetsRepo "hufschlaeger.net/pipefy-exporter/internal/repository/sheets"
	"hufschlaeger.net/pipefy-exporter/pkg/utils"
)

// ErrRetriesExhausted: der Report-Download kam nie über 404 hinaus
var ErrRetriesExhausted = errors.New("report download retries exhausted")

type Extractor interface {
	TableRecords(ctx context.Context, tableID int) (*table.Table, error)
	ReportTable(ctx context.Context, pipeID, reportID int) (*pipefyRepo.ReportResult, error)
}

type SheetStore interface {
	Overwrite(ctx context.Context, spreadsheetID string, t *table.Table) error
	ReadWorksheet(ctx context.Context, spreadsheetID string, index int) ([][]string, error)
}

type Warehouse interface {
	Replace(ctx context.Context, projectID, tableRef string, t *table.Table) error
}

type Exporter struct {
	config    *config.Config
	extractor Extractor
	sheets    SheetStore
	warehouse Warehouse
	mapper    *Mapper
	log       *zap.Logger
}

func NewExporter(cfg *config.Config, log *zap.Logger, extractor Extractor, sheets SheetStore, warehouse Warehouse) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		config:    cfg,
		extractor: extractor,
		sheets:    sheets,
		warehouse: warehouse,
		mapper:    NewMapper(cfg),
		log:       log,
	}
}

// NewFromConfig baut den Exporter mit den echten Pipefy-, Sheets- und BigQuery-Clients
func NewFromConfig(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Exporter, error) {
	opts, err := gcp.ClientOptions(ctx, cfg.CredentialsFile, gcp.DefaultScopes...)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}

	sheets, err := sheetsRepo.NewRepository(ctx, log, opts...)
	if err != nil {
		return nil, err
	}

	return NewExporter(cfg, log,
		pipefyRepo.NewRepository(cfg, log),
		sheets,
		bigqueryRepo.NewWarehouse(log, opts...),
	), nil
}

// Run führt alle Jobs nacheinander aus. Der erste fehlgeschlagene Job bricht den Lauf ab.
func (e *Exporter) Run(ctx context.Context) error {
	if err := e.config.Validate(); err != nil {
		return fmt.Errorf("konfiguration ungültig: %w", err)
	}

	log := e.log.With(zap.String("run_id", uuid.NewString()))
	started := time.Now()

	jobs, err := e.PlanJobs(ctx)
	if err != nil {
		return fmt.Errorf("jobs planen: %w", err)
	}
	log.Info("run started", zap.Int("jobs", len(jobs)), zap.Any("config", e.config.Summary()))

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runJob(ctx, log, job); err != nil {
			return fmt.Errorf("job %d/%d %q: %w", i+1, len(jobs), job.Name, err)
		}
	}

	log.Info("run finished", zap.Int("jobs", len(jobs)), zap.Duration("took", time.Since(started)))
	return nil
}

// PlanJobs liest die Job-Liste aus TABLES_FILE oder dem Konfigurations-Sheet
func (e *Exporter) PlanJobs(ctx context.Context) ([]Job, error) {
	if e.config.TablesFile != "" {
		tables, err := LoadTableMap(e.config.TablesFile)
		if err != nil {
			return nil, err
		}
		return e.mapper.JobsFromTableMap(tables)
	}

	rows, err := e.sheets.ReadWorksheet(ctx, e.config.ConfigSheetID, e.config.ConfigSheetIndex)
	if err != nil {
		return nil, fmt.Errorf("Konfigurations-Sheet lesen: %w", err)
	}
	return e.mapper.JobsFromConfigRows(rows)
}

func (e *Exporter) runJob(ctx context.Context, log *zap.Logger, job Job) error {
	log = log.With(
		zap.String("table", utils.TruncateText(job.Name, 60)),
		zap.Stringer("mode", job.Mode),
		zap.Stringer("destination", job.Destination))

	tbl, err := e.extract(ctx, job)
	if err != nil {
		return err
	}
	log.Debug("extracted", zap.Int("rows", tbl.Len()), zap.Int("columns", len(tbl.Columns)))

	switch job.Destination {
	case DestinationBigQuery:
		for _, c := range tbl.NormalizeColumns(utils.SanitizeFieldName) {
			log.Warn("column name collision",
				zap.String("source", c.Source),
				zap.String("sanitized", c.Target),
				zap.String("renamed", c.Renamed))
		}
		err = e.warehouse.Replace(ctx, job.ProjectID, job.TableRef, tbl)
	case DestinationSheets:
		err = e.sheets.Overwrite(ctx, job.SpreadsheetID, tbl)
	default:
		err = fmt.Errorf("%w: unbekanntes Ziel %d", ErrInvalidJob, job.Destination)
	}
	if err != nil {
		return err
	}

	log.Info("table uploaded", zap.Int("rows", tbl.Len()))
	return nil
}

func (e *Exporter) extract(ctx context.Context, job Job) (*table.Table, error) {
	if job.Mode == ModeTable {
		return e.extractor.TableRecords(ctx, job.TableID)
	}

	result, err := e.extractor.ReportTable(ctx, job.PipeID, job.ReportID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: kein Ergebnis für Report %d", pipefyRepo.ErrUnexpectedResponse, job.ReportID)
	}
	if result.Outcome != pipefyRepo.OutcomeSuccess || result.Table == nil {
		return nil, fmt.Errorf("%w: export %s nach %d Versuchen (%s)",
			ErrRetriesExhausted, result.ExportID, result.Attempts, result.Outcome)
	}
	return result.Table, nil
}

// Close gibt die Clients der Ziele frei
func (e *Exporter) Close() error {
	if c, ok := e.warehouse.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
