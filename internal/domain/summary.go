package domain

import "time"

// CardSummary is the per-card expense total with its cashback.
type CardSummary struct {
	LastDigits string  `json:"last_digits"`
	TotalSpent float64 `json:"total_spent"`
	Cashback   float64 `json:"cashback"`
}

// CurrencyRate is the price of one unit of a currency in roubles.
type CurrencyRate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

// StockPrice is the latest market price of a ticker.
type StockPrice struct {
	Stock string  `json:"stock"`
	Price float64 `json:"price"`
}

// WeekdaySpend maps a weekday to the mean expense amount on that weekday.
// Only weekdays with at least one expense are present.
type WeekdaySpend map[time.Weekday]float64

// WeekdayAverage is one row of the weekday report.
type WeekdayAverage struct {
	Weekday string  `json:"weekday"`
	Amount  float64 `json:"amount"`
}

// weekOrder lists weekdays Monday first.
var weekOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Averages returns the present weekdays ordered Monday to Sunday.
func (w WeekdaySpend) Averages() []WeekdayAverage {
	out := make([]WeekdayAverage, 0, len(w))
	for _, day := range weekOrder {
		if v, ok := w[day]; ok {
			out = append(out, WeekdayAverage{Weekday: day.String(), Amount: v})
		}
	}
	return out
}
