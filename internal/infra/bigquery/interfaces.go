package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/spending-reports/internal/domain"
)

// OperationsRepository reads and writes the operations table.
type OperationsRepository interface {
	domain.TableSource

	// QueryOperations returns operations within [start, end]; zero bounds are open.
	QueryOperations(ctx context.Context, start, end time.Time) (domain.Table, error)

	// InsertOperations imports a table, tagging rows with their source file.
	InsertOperations(ctx context.Context, table domain.Table, source string) (int, error)

	// DeleteBySource removes rows previously imported from source.
	DeleteBySource(ctx context.Context, source string) (int64, error)

	Close() error
}

// BigQueryOperationsRepository is the BigQuery implementation of
// OperationsRepository. It holds a shared client for all calls.
type BigQueryOperationsRepository struct {
	client *bigquery.Client
	ref    TableRef
	now    func() time.Time
}

// NewBigQueryOperationsRepository creates a repository with its own client.
func NewBigQueryOperationsRepository(ctx context.Context, ref TableRef) (*BigQueryOperationsRepository, error) {
	client, err := bigquery.NewClient(ctx, ref.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryOperationsRepository: creating client: %w", err)
	}
	return NewBigQueryOperationsRepositoryWithClient(client, ref), nil
}

// NewBigQueryOperationsRepositoryWithClient wraps an existing client.
func NewBigQueryOperationsRepositoryWithClient(client *bigquery.Client, ref TableRef) *BigQueryOperationsRepository {
	return &BigQueryOperationsRepository{client: client, ref: ref, now: time.Now}
}

// Close closes the BigQuery client connection.
func (r *BigQueryOperationsRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// LoadTable implements domain.TableSource by reading the whole table.
func (r *BigQueryOperationsRepository) LoadTable(ctx context.Context) (domain.Table, error) {
	return r.QueryOperations(ctx, time.Time{}, time.Time{})
}

// QueryOperations implements OperationsRepository.
func (r *BigQueryOperationsRepository) QueryOperations(ctx context.Context, start, end time.Time) (domain.Table, error) {
	rows, err := QueryOperationsWithClient(ctx, r.client, r.ref, start, end)
	if err != nil {
		return nil, err
	}
	return RowsToTable(rows), nil
}

// InsertOperations implements OperationsRepository.
func (r *BigQueryOperationsRepository) InsertOperations(ctx context.Context, table domain.Table, source string) (int, error) {
	rows := TableToRows(table, source, r.now())
	if err := InsertOperationsWithClient(ctx, r.client, r.ref, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// DeleteBySource implements OperationsRepository.
func (r *BigQueryOperationsRepository) DeleteBySource(ctx context.Context, source string) (int64, error) {
	return DeleteOperationsBySourceWithClient(ctx, r.client, r.ref, source)
}

// RowsToTable converts query rows to a domain table.
func RowsToTable(rows []*OperationRow) domain.Table {
	table := make(domain.Table, 0, len(rows))
	for _, row := range rows {
		table = append(table, row.ToOperation())
	}
	return table
}

// TableToRows converts a domain table to insertable rows.
func TableToRows(table domain.Table, source string, importedAt time.Time) []*OperationRow {
	rows := make([]*OperationRow, 0, len(table))
	for _, op := range table {
		rows = append(rows, NewOperationRow(op, source, importedAt))
	}
	return rows
}

var _ OperationsRepository = (*BigQueryOperationsRepository)(nil)
