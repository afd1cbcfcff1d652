package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantCurrencies []string
		wantStocks     []string
		wantErr        bool
	}{
		{
			name:           "typical file",
			input:          `{"user_currencies": ["USD", "EUR"], "user_stocks": ["AAPL", "AMZN", "GOOGL", "MSFT", "TSLA"]}`,
			wantCurrencies: []string{"USD", "EUR"},
			wantStocks:     []string{"AAPL", "AMZN", "GOOGL", "MSFT", "TSLA"},
		},
		{
			name:           "normalizes case blanks and repeats",
			input:          `{"user_currencies": [" usd ", "", "USD", "cny"], "user_stocks": []}`,
			wantCurrencies: []string{"USD", "CNY"},
			wantStocks:     []string{},
		},
		{
			name:           "missing keys",
			input:          `{}`,
			wantCurrencies: []string{},
			wantStocks:     []string{},
		},
		{
			name:    "not json",
			input:   `user_currencies: USD`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got.Currencies, tt.wantCurrencies) {
				t.Errorf("Currencies = %v, want %v", got.Currencies, tt.wantCurrencies)
			}
			if !reflect.DeepEqual(got.Stocks, tt.wantStocks) {
				t.Errorf("Stocks = %v, want %v", got.Stocks, tt.wantStocks)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_settings.json")
	if err := os.WriteFile(path, []byte(`{"user_currencies":["USD"],"user_stocks":["AAPL"]}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Currencies) != 1 || got.Currencies[0] != "USD" || len(got.Stocks) != 1 || got.Stocks[0] != "AAPL" {
		t.Errorf("Load() = %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
