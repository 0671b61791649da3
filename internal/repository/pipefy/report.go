package pipefy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hasura/go-graphql-client"
	"go.uber.org/zap"

	pipefyDomain "hufschlaeger.net/pipefy-exporter/internal/domain/pipefy"
	"hufschlaeger.net/pipefy-exporter/internal/domain/table"
	"hufschlaeger.net/pipefy-exporter/pkg/utils"
)

// ReportResult ist das Ergebnis eines Report-Exports. Table ist nur bei
// OutcomeSuccess gesetzt.
type ReportResult struct {
	Outcome  Outcome
	Table    *table.Table
	ExportID string
	FileURL  string
	Attempts int
}

// ReportTable stößt einen Report-Export an, wartet auf die Datei, lädt sie
// herunter und liefert sie als Tabelle.
func (r *Repository) ReportTable(ctx context.Context, pipeID, reportID int) (*ReportResult, error) {
	exportID, err := r.ExportPipeReport(ctx, pipeID, reportID)
	if err != nil {
		return nil, err
	}

	export, err := r.WaitForExport(ctx, exportID)
	if err != nil {
		return nil, err
	}

	download, err := r.DownloadReport(ctx, export.URL())
	if err != nil {
		return nil, fmt.Errorf("report export %s: %w", exportID, err)
	}

	result := &ReportResult{
		Outcome:  download.Outcome,
		ExportID: exportID,
		FileURL:  export.URL(),
		Attempts: download.Attempts,
	}
	if download.Outcome != OutcomeSuccess {
		r.log.Warn("report download gave up",
			zap.String("export_id", exportID),
			zap.Int("attempts", download.Attempts),
			zap.Stringer("outcome", download.Outcome))
		return result, nil
	}

	tbl, err := ParseWorkbook(download.Body)
	if err != nil {
		return nil, fmt.Errorf("report export %s: %w", exportID, err)
	}
	tbl.MapValues(utils.StripBrackets)
	result.Table = tbl

	r.log.Info("report extracted",
		zap.Int("pipe_id", pipeID),
		zap.Int("report_id", reportID),
		zap.Int("rows", tbl.Len()),
		zap.Int("columns", len(tbl.Columns)),
		zap.Int("download_attempts", download.Attempts))

	return result, nil
}

// ExportPipeReport startet den asynchronen Export und liefert die Export-ID
func (r *Repository) ExportPipeReport(ctx context.Context, pipeID, reportID int) (string, error) {
	var mutation pipefyDomain.ExportPipeReportMutation
	variables := map[string]interface{}{
		"pipeId":       graphql.ID(strconv.Itoa(pipeID)),
		"pipeReportId": graphql.ID(strconv.Itoa(reportID)),
	}

	if err := r.client.Mutate(ctx, &mutation, variables); err != nil {
		return "", fmt.Errorf("exportPipeReport failed: %w", err)
	}

	if mutation.ExportPipeReport == nil || mutation.ExportPipeReport.PipeReportExport == nil ||
		mutation.ExportPipeReport.PipeReportExport.ID == "" {
		return "", fmt.Errorf("%w: missing exportPipeReport.pipeReportExport.id", ErrUnexpectedResponse)
	}

	id := mutation.ExportPipeReport.PipeReportExport.ID
	r.log.Debug("report export requested",
		zap.Int("pipe_id", pipeID),
		zap.Int("report_id", reportID),
		zap.String("export_id", id))
	return id, nil
}

// PipeReportExport fragt den aktuellen Zustand eines Exports ab
func (r *Repository) PipeReportExport(ctx context.Context, exportID string) (*pipefyDomain.ReportExport, error) {
	var query pipefyDomain.PipeReportExportQuery
	variables := map[string]interface{}{
		"id": graphql.ID(exportID),
	}

	if err := r.client.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("pipeReportExport query failed: %w", err)
	}
	if query.PipeReportExport == nil {
		return nil, fmt.Errorf("%w: missing pipeReportExport", ErrUnexpectedResponse)
	}
	return query.PipeReportExport, nil
}

// WaitForExport pollt den Export, bis eine fileURL vorliegt
func (r *Repository) WaitForExport(ctx context.Context, exportID string) (*pipefyDomain.ReportExport, error) {
	var last *pipefyDomain.ReportExport

	for attempt := 1; attempt <= r.config.ExportPollAttempts; attempt++ {
		export, err := r.PipeReportExport(ctx, exportID)
		if err != nil {
			return nil, err
		}
		last = export

		if strings.EqualFold(export.State, pipefyDomain.ExportStateFailed) {
			return nil, fmt.Errorf("export %s: %w", exportID, ErrExportFailed)
		}
		if export.URL() != "" {
			return export, nil
		}

		r.log.Debug("report export pending",
			zap.String("export_id", exportID),
			zap.String("state", export.State),
			zap.Int("poll", attempt))

		if attempt < r.config.ExportPollAttempts {
			if err := r.wait(ctx, r.config.ExportPollInterval); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("export %s after %d polls (state %q): %w",
		exportID, r.config.ExportPollAttempts, last.State, ErrExportNotReady)
}
