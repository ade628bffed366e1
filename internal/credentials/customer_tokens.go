package credentials

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CustomerTokens is the static per-country customer token table.
type CustomerTokens map[string]string

// ParseCustomerTokens decodes the KLARNA_CUSTOMER_TOKENS JSON object.
// Country keys are normalised to upper case; empty values are dropped.
func ParseCustomerTokens(raw string) (CustomerTokens, error) {
	tokens := CustomerTokens{}
	if strings.TrimSpace(raw) == "" {
		return tokens, nil
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("invalid KLARNA_CUSTOMER_TOKENS: %w", err)
	}
	for country, token := range decoded {
		if token == "" {
			continue
		}
		tokens[strings.ToUpper(strings.TrimSpace(country))] = token
	}
	return tokens, nil
}

// Lookup returns the token configured for country.
func (t CustomerTokens) Lookup(country string) (string, bool) {
	if country == "" {
		return "", false
	}
	token, ok := t[strings.ToUpper(country)]
	return token, ok
}

// Countries returns the configured countries in sorted order.
func (t CustomerTokens) Countries() []string {
	countries := make([]string, 0, len(t))
	for c := range t {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}
