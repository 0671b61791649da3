package pipefy

// PageSize ist die Seitengröße, die Pipefy für table_records maximal liefert.
const PageSize = 50

// Zustände eines Report-Exports
const (
	ExportStateCreated    = "created"
	ExportStateProcessing = "processing"
	ExportStateDone       = "done"
	ExportStateFailed     = "failed"
)

type RecordField struct {
	Name  string  `graphql:"name"`
	Value *string `graphql:"value"`
}

type RecordEdge struct {
	Node struct {
		RecordFields []RecordField `graphql:"record_fields"`
	} `graphql:"node"`
}

type PageInfo struct {
	HasNextPage bool    `graphql:"hasNextPage"`
	EndCursor   *string `graphql:"endCursor"`
}

type TableRecordConnection struct {
	Edges    []RecordEdge `graphql:"edges"`
	PageInfo PageInfo     `graphql:"pageInfo"`
}

// TableRecordsQuery:
//
//	table_records(table_id: $tableId, first: $first, after: $after) { edges { node { record_fields { name value } } } pageInfo { hasNextPage endCursor } }
type TableRecordsQuery struct {
	TableRecords *TableRecordConnection `graphql:"table_records(table_id: $tableId, first: $first, after: $after)"`
}

type ExportPipeReportMutation struct {
	ExportPipeReport *struct {
		PipeReportExport *struct {
			ID string `graphql:"id"`
		} `graphql:"pipeReportExport"`
	} `graphql:"exportPipeReport(input: {pipeId: $pipeId, pipeReportId: $pipeReportId})"`
}

type ReportExport struct {
	FileURL     *string `graphql:"fileURL"`
	State       string  `graphql:"state"`
	StartedAt   *string `graphql:"startedAt"`
	RequestedBy *struct {
		ID string `graphql:"id"`
	} `graphql:"requestedBy"`
}

type PipeReportExportQuery struct {
	PipeReportExport *ReportExport `graphql:"pipeReportExport(id: $id)"`
}

// URL liefert die Download-URL oder "" solange sie noch nicht existiert
func (e *ReportExport) URL() string {
	if e == nil || e.FileURL == nil {
		return ""
	}
	return *e.FileURL
}
