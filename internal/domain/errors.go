package domain

import "errors"

var (
	// ErrInvalidDate is returned when a date string does not match DD.MM.YYYY.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvertedRange is returned when a period ends before it starts.
	ErrInvertedRange = errors.New("end date is before start date")

	// ErrEmptyPeriod is returned when a period or a source contains no operations.
	ErrEmptyPeriod = errors.New("no operations in period")

	// ErrNoMatches is returned when a search ran over a non-empty period and found nothing.
	ErrNoMatches = errors.New("no matching operations")

	// ErrQuotesUnavailable is returned when a currency or stock provider fails.
	ErrQuotesUnavailable = errors.New("quotes unavailable")

	// ErrInvalidSpreadsheet is returned when the export cannot be read or a row is malformed.
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")
)
