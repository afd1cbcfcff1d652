package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// IsGCSURI reports whether source points at a Cloud Storage object.
func IsGCSURI(source string) bool {
	return strings.HasPrefix(source, gcsScheme)
}

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// ExtractFilenameFromGCSURI extracts the file name from a GCS URI.
// e.g., "gs://bucket/exports/operations.xlsx" → "operations.xlsx"
func ExtractFilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, gcsScheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// UploadFile uploads a local file to a GCS bucket under the given object name.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
func UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("UploadFile: open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("UploadFile: create storage client: %w", err)
	}
	defer client.Close()

	return uploadWithClient(ctx, client, bucketName, objectName, "", f)
}

// FetchFromGCS downloads the object bytes from the given GCS URI.
func FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: creating storage client: %w", err)
	}
	defer client.Close()

	return FetchFromGCSWithClient(ctx, client, bucketName, objectPath)
}

// FetchFromGCSWithClient downloads an object using the provided client.
func FetchFromGCSWithClient(ctx context.Context, client *storage.Client, bucketName, objectPath string) ([]byte, error) {
	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: reading bytes: %w", err)
	}
	return data, nil
}

func uploadWithClient(ctx context.Context, client *storage.Client, bucketName, objectName, contentType string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload: copy to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload: finalize %s/%s: %w", bucketName, objectName, err)
	}
	return nil
}

// GCSWriter writes reports as objects in a bucket.
type GCSWriter struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSWriter creates a writer for bucket. Objects are named prefix/name.
func NewGCSWriter(client *storage.Client, bucket, prefix string) *GCSWriter {
	return &GCSWriter{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// WriteReport implements ReportWriter.
func (g *GCSWriter) WriteReport(ctx context.Context, name string, data []byte) (string, error) {
	object := name
	if g.prefix != "" {
		object = g.prefix + "/" + name
	}
	if err := uploadWithClient(ctx, g.client, g.bucket, object, XLSXContentType, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("WriteReport: %w", err)
	}
	return gcsScheme + g.bucket + "/" + object, nil
}

var _ ReportWriter = (*GCSWriter)(nil)
