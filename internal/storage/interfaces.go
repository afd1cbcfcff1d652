package storage

import (
	"context"
)

// ReportWriter persists a rendered report under a file name.
// It returns the location the report was written to.
type ReportWriter interface {
	WriteReport(ctx context.Context, name string, data []byte) (string, error)
}

// SourceReader fetches the raw bytes of an operations export.
// Sources are local paths or gs://bucket/object URIs.
type SourceReader interface {
	ReadSource(ctx context.Context, source string) ([]byte, error)
}
