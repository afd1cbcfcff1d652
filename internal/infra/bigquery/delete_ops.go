package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// BuildDeleteBySourceQuery returns the DML removing rows imported from source.
func BuildDeleteBySourceQuery(ref TableRef, source string) (string, []bigquery.QueryParameter) {
	sql := `
		DELETE FROM ` + ref.FullName() + `
		WHERE source_file = @source_file
	`
	return sql, []bigquery.QueryParameter{{Name: "source_file", Value: source}}
}

// DeleteOperationsBySourceWithClient removes every row imported from source
// and returns the number of deleted rows.
func DeleteOperationsBySourceWithClient(ctx context.Context, client *bigquery.Client, ref TableRef, source string) (int64, error) {
	sql, params := BuildDeleteBySourceQuery(ref, source)
	q := client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("DeleteOperationsBySource: run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("DeleteOperationsBySource: wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("DeleteOperationsBySource: job error: %w", err)
	}

	var deleted int64
	if status.Statistics != nil {
		if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
			deleted = stats.NumDMLAffectedRows
		}
	}
	return deleted, nil
}
