package orchestrator

import (
	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/credentials"
)

// ConfigView is the public, secret-free view of the relay configuration.
type ConfigView struct {
	AvailableModes          []string `json:"availableModes"`
	DefaultMode             string   `json:"defaultMode"`
	ClientID                string   `json:"clientId"`
	PartnerAccountID        string   `json:"partnerAccountId,omitempty"`
	CustomerTokenConfigured bool     `json:"customerTokenConfigured"`
	CustomerTokenCountries  []string `json:"customerTokenCountries"`
}

// Config reports which modes are usable without exposing any API key.
func (o *Orchestrator) Config() ConfigView {
	view := ConfigView{
		AvailableModes:         []string{},
		CustomerTokenCountries: o.customerTokens.Countries(),
	}
	for _, m := range o.resolver.Available() {
		view.AvailableModes = append(view.AvailableModes, string(m))
	}
	view.CustomerTokenConfigured = len(view.CustomerTokenCountries) > 0

	if mode, ok := o.resolver.Default(); ok {
		view.DefaultMode = string(mode)
		if auth, err := o.resolver.ResolveStrict(mode); err == nil {
			view.ClientID = auth.ClientID
			view.PartnerAccountID = auth.PartnerAccountID
		}
	}
	return view
}

// VendorStates reports the circuit state of each vendor, e.g. "closed".
func (o *Orchestrator) VendorStates() map[string]string {
	return map[string]string{
		adapter.VendorKlarna:   o.router.VendorState(adapter.VendorKlarna).String(),
		adapter.VendorPaytrail: o.router.VendorState(adapter.VendorPaytrail).String(),
	}
}

// customerToken returns the table token for country when enabled.
func (o *Orchestrator) customerToken(enabled bool, country string) string {
	if !enabled || country == "" {
		return ""
	}
	tok, _ := o.customerTokens.Lookup(country)
	return tok
}

func modeRequires(op string, mode credentials.Mode) *ValidationError {
	return &ValidationError{
		Field:   "authMode",
		Message: op + " is only available for " + modeLabel(mode),
	}
}

func modeLabel(m credentials.Mode) string {
	if m == credentials.ModeAcquiringPartner {
		return "Acquiring Partners"
	}
	return "Sub-Partners"
}
