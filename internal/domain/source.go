package domain

import "context"

// TableSource materializes the full operations table for one report run.
type TableSource interface {
	LoadTable(ctx context.Context) (Table, error)
}
