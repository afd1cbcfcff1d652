package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// UserSettings lists the quotes shown on the home page.
type UserSettings struct {
	Currencies []string `json:"user_currencies"`
	Stocks     []string `json:"user_stocks"`
}

// Load reads user settings from a JSON file.
func Load(path string) (*UserSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: reading %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes settings JSON and normalizes the symbols to upper case.
// Blank and repeated symbols are dropped.
func Parse(data []byte) (*UserSettings, error) {
	var s UserSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("Parse: decoding settings: %w", err)
	}
	s.Currencies = normalize(s.Currencies)
	s.Stocks = normalize(s.Stocks)
	return &s, nil
}

func normalize(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
