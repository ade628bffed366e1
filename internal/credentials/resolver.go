// Package credentials resolves which Klarna account topology and credential set a
// relay call runs under. Resolution is a pure function of the process-wide
// configuration, which is read-only after startup.
package credentials

import (
	"fmt"
	"strings"
)

// Mode identifies one of the two Klarna account topologies.
type Mode string

const (
	ModeSubPartner       Mode = "SUB_PARTNER"
	ModeAcquiringPartner Mode = "ACQUIRING_PARTNER"
)

// ParseMode maps a caller-supplied string onto a Mode. Unknown or empty input
// returns ok == false, which callers treat as "no preference".
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeSubPartner:
		return ModeSubPartner, true
	case ModeAcquiringPartner:
		return ModeAcquiringPartner, true
	default:
		return "", false
	}
}

// Set is one statically configured credential set.
type Set struct {
	ClientID         string
	APIKey           string
	PartnerAccountID string // required for Acquiring-Partner only
}

// AuthConfig is the resolved, immutable credential set for one relay call.
type AuthConfig struct {
	Mode               Mode
	ClientID           string
	APIKey             string
	PartnerAccountID   string
	IsAcquiringPartner bool
}

// ConfigurationError reports that no usable credential set exists.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Resolver picks the credential set for a requested mode.
type Resolver struct {
	subPartner       Set
	acquiringPartner Set
}

// NewResolver creates a Resolver over the two configured credential sets.
// Either set may be empty.
func NewResolver(subPartner, acquiringPartner Set) *Resolver {
	return &Resolver{
		subPartner:       subPartner,
		acquiringPartner: acquiringPartner,
	}
}

func (r *Resolver) complete(m Mode) bool {
	switch m {
	case ModeSubPartner:
		return r.subPartner.ClientID != "" && r.subPartner.APIKey != ""
	case ModeAcquiringPartner:
		return r.acquiringPartner.ClientID != "" &&
			r.acquiringPartner.APIKey != "" &&
			r.acquiringPartner.PartnerAccountID != ""
	}
	return false
}

// Available lists the fully configured modes, Acquiring-Partner first.
func (r *Resolver) Available() []Mode {
	var modes []Mode
	for _, m := range []Mode{ModeAcquiringPartner, ModeSubPartner} {
		if r.complete(m) {
			modes = append(modes, m)
		}
	}
	return modes
}

// Default returns the process-wide default mode. Acquiring-Partner wins when
// both are configured.
func (r *Resolver) Default() (Mode, bool) {
	modes := r.Available()
	if len(modes) == 0 {
		return "", false
	}
	return modes[0], true
}

// Resolve returns the credentials for requested, falling back to the default
// mode when requested is empty, unknown or not fully configured.
func (r *Resolver) Resolve(requested string) (AuthConfig, error) {
	mode, ok := ParseMode(requested)
	if !ok || !r.complete(mode) {
		var found bool
		mode, found = r.Default()
		if !found {
			return AuthConfig{}, &ConfigurationError{
				Reason: "no Klarna credentials configured (need SP_CLIENT_ID/SP_API_KEY or AP_CLIENT_ID/AP_API_KEY/PARTNER_ACCOUNT_ID)",
			}
		}
	}
	return r.build(mode), nil
}

// ResolveStrict is Resolve without fallback: the requested mode must itself be
// configured.
func (r *Resolver) ResolveStrict(mode Mode) (AuthConfig, error) {
	if !r.complete(mode) {
		return AuthConfig{}, &ConfigurationError{Reason: fmt.Sprintf("credentials for %s are not configured", mode)}
	}
	return r.build(mode), nil
}

func (r *Resolver) build(mode Mode) AuthConfig {
	if mode == ModeAcquiringPartner {
		return AuthConfig{
			Mode:               ModeAcquiringPartner,
			ClientID:           r.acquiringPartner.ClientID,
			APIKey:             r.acquiringPartner.APIKey,
			PartnerAccountID:   r.acquiringPartner.PartnerAccountID,
			IsAcquiringPartner: true,
		}
	}
	return AuthConfig{
		Mode:     ModeSubPartner,
		ClientID: r.subPartner.ClientID,
		APIKey:   r.subPartner.APIKey,
	}
}
