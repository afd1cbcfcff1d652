package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/spending-reports/internal/analysis"
	"github.com/dvloznov/spending-reports/internal/domain"
)

// HomeStep is a single step of the home page pipeline.
type HomeStep interface {
	Execute(ctx context.Context, state *HomeState) error
}

// HomeState holds the shared state across home page steps.
type HomeState struct {
	Table domain.Table

	// AsOf is the requested report date; zero means the latest operation.
	AsOf     time.Time
	Now      time.Time
	Period   domain.Period
	Selected domain.Table

	Report HomeReport
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []HomeStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...HomeStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *HomeState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("home step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// ResolveAsOfStep fixes the month-to-date period. An explicit date covers
// its whole day; without one the latest operation is used, falling back to
// the current time for an empty table.
type ResolveAsOfStep struct{}

func (s *ResolveAsOfStep) Execute(ctx context.Context, state *HomeState) error {
	asOf := state.AsOf
	switch {
	case !asOf.IsZero():
		asOf = domain.EndOfDay(asOf)
	default:
		latest, ok := state.Table.Latest()
		if !ok {
			latest = state.Now
		}
		asOf = latest
	}
	state.Period = analysis.MonthToDate(asOf)
	return nil
}

// SelectMonthStep filters the table to the resolved period.
type SelectMonthStep struct{}

func (s *SelectMonthStep) Execute(ctx context.Context, state *HomeState) error {
	state.Selected = analysis.Select(state.Table, state.Period)
	return nil
}

// CardsStep aggregates expenses per card.
type CardsStep struct{}

func (s *CardsStep) Execute(ctx context.Context, state *HomeState) error {
	state.Report.Cards = analysis.CardSummaries(state.Selected)
	return nil
}

// TopTransactionsStep ranks the selected operations.
type TopTransactionsStep struct {
	N int
}

func (s *TopTransactionsStep) Execute(ctx context.Context, state *HomeState) error {
	state.Report.TopTransactions = analysis.TopByAmount(state.Selected, s.N)
	return nil
}

// GreetingStep greets by the current hour.
type GreetingStep struct{}

func (s *GreetingStep) Execute(ctx context.Context, state *HomeState) error {
	state.Report.Greeting = Greeting(state.Now)
	return nil
}

// QuotesStep fetches currency rates and stock prices for the user's symbols.
// Any provider failure fails the whole report.
type QuotesStep struct {
	Rates      RateProvider
	Prices     PriceProvider
	Currencies []string
	Stocks     []string
}

func (s *QuotesStep) Execute(ctx context.Context, state *HomeState) error {
	if s.Rates == nil {
		return fmt.Errorf("currency rates: no provider: %w", domain.ErrQuotesUnavailable)
	}
	if s.Prices == nil {
		return fmt.Errorf("stock prices: no provider: %w", domain.ErrQuotesUnavailable)
	}

	rates, err := s.Rates.Rates(ctx, s.Currencies)
	if err != nil {
		return fmt.Errorf("currency rates: %w: %w", domain.ErrQuotesUnavailable, err)
	}
	prices, err := s.Prices.Prices(ctx, s.Stocks)
	if err != nil {
		return fmt.Errorf("stock prices: %w: %w", domain.ErrQuotesUnavailable, err)
	}
	state.Report.CurrencyRates = rates
	state.Report.StockPrices = prices
	return nil
}
