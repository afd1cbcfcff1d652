// Package app builds the report service and its collaborators from Config.
// The commands under cmd/ share this wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spending-reports/internal/config"
	"github.com/dvloznov/spending-reports/internal/domain"
	infraBQ "github.com/dvloznov/spending-reports/internal/infra/bigquery"
	"github.com/dvloznov/spending-reports/internal/loader"
	"github.com/dvloznov/spending-reports/internal/quotes"
	"github.com/dvloznov/spending-reports/internal/reports"
	"github.com/dvloznov/spending-reports/internal/settings"
	"github.com/dvloznov/spending-reports/internal/storage"
)

// Closers releases clients in reverse order of acquisition.
type Closers []io.Closer

// Close closes every element and returns the first error.
func (c Closers) Close() error {
	var first error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// TableRef returns the BigQuery operations table named by cfg.
func TableRef(cfg *config.Config) infraBQ.TableRef {
	return infraBQ.TableRef{
		ProjectID: cfg.BigQueryProject,
		DatasetID: cfg.BigQueryDataset,
		TableID:   cfg.BigQueryTable,
	}
}

// NewTableSource returns the operations source selected by
// cfg.TransactionsSource. The closer is nil for file sources.
func NewTableSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.TableSource, io.Closer, error) {
	switch cfg.TransactionsSource {
	case config.SourceBigQuery:
		repo, err := infraBQ.NewBigQueryOperationsRepository(ctx, TableRef(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("NewTableSource: %w", err)
		}
		log.Info().Str("table", TableRef(cfg).FullName()).Msg("Reading operations from BigQuery")
		return repo, repo, nil
	default:
		l := loader.NewLoader(storage.NewReader(), log)
		log.Info().Str("source", cfg.SourceFile).Msg("Reading operations from spreadsheet")
		return loader.NewFileSource(l, cfg.SourceFile), nil, nil
	}
}

// NewReportWriter returns a GCS writer when cfg.ReportsBucket is set and a
// local directory writer otherwise.
func NewReportWriter(ctx context.Context, cfg *config.Config) (storage.ReportWriter, io.Closer, error) {
	if cfg.ReportsBucket == "" {
		return storage.NewLocalWriter(cfg.ReportsDir), nil, nil
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("NewReportWriter: creating storage client: %w", err)
	}
	return storage.NewGCSWriter(client, cfg.ReportsBucket, cfg.ReportsDir), client, nil
}

// LoadSettings reads the user settings file. A missing file yields empty
// symbol lists.
func LoadSettings(path string, log zerolog.Logger) (*settings.UserSettings, error) {
	s, err := settings.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("User settings not found, quotes disabled")
		return &settings.UserSettings{Currencies: []string{}, Stocks: []string{}}, nil
	}
	return s, err
}

// NewReportService wires quote providers, user settings and the report
// writer into a reports.Service.
func NewReportService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*reports.Service, io.Closer, error) {
	userSettings, err := LoadSettings(cfg.SettingsFile, log)
	if err != nil {
		return nil, nil, fmt.Errorf("NewReportService: %w", err)
	}

	yahoo, err := quotes.NewYahooClient(cfg.YahooBaseURL, cfg.QuoteCacheTTL, cfg.QuoteRateLimit, log)
	if err != nil {
		return nil, nil, fmt.Errorf("NewReportService: %w", err)
	}

	writer, closer, err := NewReportWriter(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("NewReportService: %w", err)
	}
	var closers Closers
	if closer != nil {
		closers = append(closers, closer)
	}

	svc := reports.NewService(reports.Dependencies{
		Rates:    quotes.NewCBRClient(cfg.CBRBaseURL, cfg.QuoteCacheTTL, log),
		Prices:   yahoo,
		Settings: userSettings,
		Writer:   writer,
		Log:      log,
	})
	return svc, closers, nil
}
