package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// XLSXContentType is the MIME type of generated spreadsheet reports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LocalWriter writes reports into a directory, creating it when needed.
type LocalWriter struct {
	Dir string
}

// NewLocalWriter creates a writer for dir.
func NewLocalWriter(dir string) *LocalWriter {
	return &LocalWriter{Dir: dir}
}

// WriteReport implements ReportWriter.
func (l *LocalWriter) WriteReport(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("WriteReport: invalid report name %q", name)
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("WriteReport: create dir %q: %w", l.Dir, err)
	}
	path := filepath.Join(l.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("WriteReport: write %q: %w", path, err)
	}
	return path, nil
}

// Reader reads sources from the local disk or Cloud Storage.
type Reader struct{}

// NewReader creates a source reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadSource implements SourceReader.
func (r *Reader) ReadSource(ctx context.Context, source string) ([]byte, error) {
	if IsGCSURI(source) {
		return FetchFromGCS(ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("ReadSource: %w", err)
	}
	return data, nil
}

var (
	_ ReportWriter = (*LocalWriter)(nil)
	_ SourceReader = (*Reader)(nil)
)
