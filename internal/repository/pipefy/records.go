package pipefy

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hasura/go-graphql-client"
	"go.uber.org/zap"

	pipefyDomain "hufschlaeger.net/pipefy-exporter/internal/domain/pipefy"
	"hufschlaeger.net/pipefy-exporter/internal/domain/table"
)

// TableRecords lädt alle Records einer Pipefy-Tabelle seitenweise (Cursor-Paginierung)
func (r *Repository) TableRecords(ctx context.Context, tableID int) (*table.Table, error) {
	result := table.New()
	cursor := ""
	hasNextPage := true
	pages := 0

	for hasNextPage {
		page, err := r.fetchRecordsPage(ctx, tableID, cursor)
		if err != nil {
			return nil, fmt.Errorf("table %d, page %d: %w", tableID, pages+1, err)
		}
		pages++

		result.AppendPage(page)
		r.log.Debug("records page fetched",
			zap.Int("table_id", tableID),
			zap.Int("page", pages),
			zap.Int("records", len(page.Records)),
			zap.Bool("has_next_page", page.HasNextPage))

		if page.HasNextPage && page.EndCursor == "" {
			return nil, fmt.Errorf("table %d: %w: hasNextPage without endCursor", tableID, ErrUnexpectedResponse)
		}
		hasNextPage = page.HasNextPage
		cursor = page.EndCursor
	}

	r.log.Info("table extracted",
		zap.Int("table_id", tableID),
		zap.Int("pages", pages),
		zap.Int("rows", result.Len()),
		zap.Int("columns", len(result.Columns)))

	return result, nil
}

func (r *Repository) fetchRecordsPage(ctx context.Context, tableID int, cursor string) (table.Page, error) {
	var query pipefyDomain.TableRecordsQuery

	var after *graphql.String
	if cursor != "" {
		c := graphql.String(cursor)
		after = &c
	}

	variables := map[string]interface{}{
		"tableId": graphql.ID(strconv.Itoa(tableID)),
		"first":   graphql.Int(pipefyDomain.PageSize),
		"after":   after,
	}

	if err := r.client.Query(ctx, &query, variables); err != nil {
		return table.Page{}, fmt.Errorf("GraphQL query failed: %w", err)
	}

	return flattenRecords(query.TableRecords)
}

// flattenRecords macht aus edges[].node.record_fields[] je Knoten einen Record
func flattenRecords(conn *pipefyDomain.TableRecordConnection) (table.Page, error) {
	if conn == nil {
		return table.Page{}, fmt.Errorf("%w: missing table_records", ErrUnexpectedResponse)
	}

	page := table.Page{
		Records:     make([]table.Record, 0, len(conn.Edges)),
		HasNextPage: conn.PageInfo.HasNextPage,
	}
	if conn.PageInfo.EndCursor != nil {
		page.EndCursor = *conn.PageInfo.EndCursor
	}

	for _, edge := range conn.Edges {
		fields := make([]table.Field, 0, len(edge.Node.RecordFields))
		for _, f := range edge.Node.RecordFields {
			fields = append(fields, table.Field{Name: f.Name, Value: f.Value})
		}
		page.Records = append(page.Records, table.NewRecord(fields...))
	}

	return page, nil
}
