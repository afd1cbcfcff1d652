package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// insertBatchSize bounds a single streaming insert request.
const insertBatchSize = 500

// TableRef addresses the operations table.
type TableRef struct {
	ProjectID string
	DatasetID string
	TableID   string
}

// FullName returns the backquoted project.dataset.table identifier.
func (t TableRef) FullName() string {
	return fmt.Sprintf("`%s.%s.%s`", t.ProjectID, t.DatasetID, t.TableID)
}

// InsertOperationsWithClient streams rows into the operations table in batches.
func InsertOperationsWithClient(ctx context.Context, client *bigquery.Client, ref TableRef, rows []*OperationRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.DatasetInProject(ref.ProjectID, ref.DatasetID).Table(ref.TableID).Inserter()
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := inserter.Put(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("InsertOperations: inserting rows %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// BuildOperationsQuery returns the SQL and parameters for reading operations.
// A zero start or end leaves that side of the range open.
func BuildOperationsQuery(ref TableRef, start, end time.Time) (string, []bigquery.QueryParameter) {
	var where []string
	var params []bigquery.QueryParameter
	if !start.IsZero() {
		where = append(where, "operation_ts >= @start_ts")
		params = append(params, bigquery.QueryParameter{Name: "start_ts", Value: start.UTC()})
	}
	if !end.IsZero() {
		where = append(where, "operation_ts <= @end_ts")
		params = append(params, bigquery.QueryParameter{Name: "end_ts", Value: end.UTC()})
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT
			operation_id,
			operation_ts,
			operation_date,
			amount,
			category,
			description,
			card_number,
			source_file,
			imported_ts
		FROM ` + ref.FullName())
	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE " + strings.Join(where, "\n\t\t  AND "))
	}
	sb.WriteString("\n\t\tORDER BY operation_ts, imported_ts, operation_id\n\t")
	return sb.String(), params
}

// QueryOperationsWithClient reads operations ordered by time.
func QueryOperationsWithClient(ctx context.Context, client *bigquery.Client, ref TableRef, start, end time.Time) ([]*OperationRow, error) {
	sql, params := BuildOperationsQuery(ref, start, end)
	q := client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryOperations: query read: %w", err)
	}

	var rows []*OperationRow
	for {
		var r OperationRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryOperations: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
