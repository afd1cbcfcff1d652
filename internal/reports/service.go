// Package reports composes the analysis functions into the home page, the
// mobile payments search and the weekday spending report.
package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spending-reports/internal/analysis"
	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/dvloznov/spending-reports/internal/settings"
	"github.com/dvloznov/spending-reports/internal/storage"
)

// RateProvider returns exchange rates against the ruble.
type RateProvider interface {
	Rates(ctx context.Context, currencies []string) ([]domain.CurrencyRate, error)
}

// PriceProvider returns current stock prices.
type PriceProvider interface {
	Prices(ctx context.Context, stocks []string) ([]domain.StockPrice, error)
}

// HomeReport is the home page document. Field order is part of the output format.
type HomeReport struct {
	Greeting        string                 `json:"greeting"`
	Cards           []domain.CardSummary   `json:"cards"`
	TopTransactions []domain.OperationView `json:"top_transactions"`
	CurrencyRates   []domain.CurrencyRate  `json:"currency_rates"`
	StockPrices     []domain.StockPrice    `json:"stock_prices"`
}

// WeekdayReport holds mean spending per weekday over a trailing window.
type WeekdayReport struct {
	StartDate string                  `json:"start_date"`
	EndDate   string                  `json:"end_date"`
	Averages  []domain.WeekdayAverage `json:"averages"`
}

// Dependencies wires a Service.
type Dependencies struct {
	Rates    RateProvider
	Prices   PriceProvider
	Settings *settings.UserSettings
	Writer   storage.ReportWriter
	Clock    func() time.Time
	Log      zerolog.Logger
}

// Service builds reports from an operations table.
type Service struct {
	rates    RateProvider
	prices   PriceProvider
	settings *settings.UserSettings
	writer   storage.ReportWriter
	clock    func() time.Time
	log      zerolog.Logger
}

// NewService creates a report service. A nil clock means time.Now and nil
// settings mean no symbols.
func NewService(deps Dependencies) *Service {
	s := &Service{
		rates:    deps.Rates,
		prices:   deps.Prices,
		settings: deps.Settings,
		writer:   deps.Writer,
		clock:    deps.Clock,
		log:      deps.Log,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.settings == nil {
		s.settings = &settings.UserSettings{Currencies: []string{}, Stocks: []string{}}
	}
	return s
}

// HomePage builds the month-to-date home report. A zero asOf uses the latest
// operation in the table.
func (s *Service) HomePage(ctx context.Context, table domain.Table, asOf time.Time) (*HomeReport, error) {
	state := &HomeState{
		Table: table,
		AsOf:  asOf,
		Now:   s.clock(),
	}

	p := NewPipeline(
		&ResolveAsOfStep{},
		&SelectMonthStep{},
		&CardsStep{},
		&TopTransactionsStep{N: analysis.DefaultTopN},
		&GreetingStep{},
		&QuotesStep{
			Rates:      s.rates,
			Prices:     s.prices,
			Currencies: s.settings.Currencies,
			Stocks:     s.settings.Stocks,
		},
	)
	if err := p.Execute(ctx, state); err != nil {
		s.log.Error().Err(err).Msg("Home page failed")
		return nil, fmt.Errorf("HomePage: %w", err)
	}

	s.log.Info().
		Time("start", state.Period.Start).
		Time("end", state.Period.End).
		Int("operations", len(state.Selected)).
		Int("cards", len(state.Report.Cards)).
		Msg("Home page built")
	return &state.Report, nil
}

// HomePageOn parses an optional DD.MM.YYYY date and builds the home page.
func (s *Service) HomePageOn(ctx context.Context, table domain.Table, date string) (*HomeReport, error) {
	asOf, err := parseOptionalDate(date)
	if err != nil {
		return nil, fmt.Errorf("HomePage: %w", err)
	}
	return s.HomePage(ctx, table, asOf)
}

// MobileTransactions returns operations within [start, stop] whose
// description ends with a phone number. The slice is never nil. An empty
// period yields domain.ErrEmptyPeriod and a period without matches yields
// domain.ErrNoMatches.
func (s *Service) MobileTransactions(ctx context.Context, table domain.Table, start, stop time.Time) ([]domain.OperationView, error) {
	selected, err := analysis.SelectRange(table, start, stop)
	if err != nil {
		return []domain.OperationView{}, fmt.Errorf("MobileTransactions: %w", err)
	}
	if len(selected) == 0 {
		s.log.Info().Time("start", start).Time("stop", stop).Msg("No operations in period")
		return []domain.OperationView{}, fmt.Errorf("MobileTransactions: %w", domain.ErrEmptyPeriod)
	}

	found := analysis.FindMobile(selected)
	if len(found) == 0 {
		s.log.Info().Int("operations", len(selected)).Msg("No mobile payments in period")
		return found, fmt.Errorf("MobileTransactions: %w", domain.ErrNoMatches)
	}

	s.log.Info().Int("operations", len(selected)).Int("matches", len(found)).Msg("Mobile payments found")
	return found, nil
}

// MobileTransactionsBetween parses DD.MM.YYYY bounds and searches mobile payments.
func (s *Service) MobileTransactionsBetween(ctx context.Context, table domain.Table, start, stop string) ([]domain.OperationView, error) {
	from, err := domain.ParseDate(start)
	if err != nil {
		return []domain.OperationView{}, fmt.Errorf("MobileTransactions: start: %w", err)
	}
	to, err := domain.ParseDate(stop)
	if err != nil {
		return []domain.OperationView{}, fmt.Errorf("MobileTransactions: stop: %w", err)
	}
	return s.MobileTransactions(ctx, table, from, to)
}

// WeekdaySpending averages expenses per weekday over the trailing window
// ending on end. A zero end uses the latest operation.
func (s *Service) WeekdaySpending(ctx context.Context, table domain.Table, end time.Time) (*WeekdayReport, error) {
	if end.IsZero() {
		latest, ok := table.Latest()
		if !ok {
			s.log.Info().Msg("Weekday report over empty table")
			return &WeekdayReport{Averages: []domain.WeekdayAverage{}}, nil
		}
		end = latest
	}

	window := analysis.TrailingWindow(end, analysis.DefaultTrailingDays)
	selected := analysis.Select(table, window)
	report := &WeekdayReport{
		StartDate: window.Start.Format(domain.DateLayout),
		EndDate:   window.End.Format(domain.DateLayout),
		Averages:  analysis.SpendingByWeekday(selected).Averages(),
	}

	s.log.Info().
		Str("start", report.StartDate).
		Str("end", report.EndDate).
		Int("operations", len(selected)).
		Int("weekdays", len(report.Averages)).
		Msg("Weekday spending computed")
	return report, nil
}

// WeekdaySpendingOn parses an optional DD.MM.YYYY end date. An invalid date
// fails the whole call without a partial result.
func (s *Service) WeekdaySpendingOn(ctx context.Context, table domain.Table, date string) (*WeekdayReport, error) {
	end, err := parseOptionalDate(date)
	if err != nil {
		return nil, fmt.Errorf("WeekdaySpending: %w", err)
	}
	return s.WeekdaySpending(ctx, table, end)
}

// ReportFileName is the default name for a weekday report saved on day t.
func ReportFileName(t time.Time) string {
	return "SkyBank-report_" + t.Format("2006-01-02") + ".xlsx"
}

// SaveWeekdayReport renders the report as a workbook and writes it under
// name, or under ReportFileName when name is empty. It returns the location
// reported by the writer.
func (s *Service) SaveWeekdayReport(ctx context.Context, report *WeekdayReport, name string) (string, error) {
	if s.writer == nil {
		return "", errors.New("SaveWeekdayReport: no report writer configured")
	}
	if report == nil {
		return "", errors.New("SaveWeekdayReport: nil report")
	}
	if name == "" {
		name = ReportFileName(s.clock())
	}

	data, err := RenderWeekdayXLSX(report)
	if err != nil {
		return "", fmt.Errorf("SaveWeekdayReport: %w", err)
	}

	location, err := s.writer.WriteReport(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("SaveWeekdayReport: writing %s: %w", name, err)
	}

	s.log.Info().Str("location", location).Int("bytes", len(data)).Msg("Weekday report saved")
	return location, nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return domain.ParseDate(s)
}
