// Package config loads the relay configuration from the environment, an
// optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yourorg/checkout-relay/internal/credentials"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	APClientID       string `mapstructure:"AP_CLIENT_ID"`
	APAPIKey         string `mapstructure:"AP_API_KEY"`
	PartnerAccountID string `mapstructure:"PARTNER_ACCOUNT_ID"`
	SPClientID       string `mapstructure:"SP_CLIENT_ID"`
	SPAPIKey         string `mapstructure:"SP_API_KEY"`

	KlarnaBaseURL      string `mapstructure:"KLARNA_API_BASE_URL"`
	CustomerTokensJSON string `mapstructure:"KLARNA_CUSTOMER_TOKENS"`
	PaytrailBaseURL    string `mapstructure:"PAYTRAIL_API_BASE_URL"`

	ServerAddr    string        `mapstructure:"SERVER_ADDR"`
	HTTPTimeout   time.Duration `mapstructure:"HTTP_TIMEOUT"`
	RequestBudget time.Duration `mapstructure:"REQUEST_BUDGET"`

	PaymentOptionRequiredRule string        `mapstructure:"PAYMENT_OPTION_REQUIRED_RULE"`
	CircuitFailureThreshold   int           `mapstructure:"CIRCUIT_FAILURE_THRESHOLD"`
	CircuitOpenTimeout        time.Duration `mapstructure:"CIRCUIT_OPEN_TIMEOUT"`

	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogFormat   string `mapstructure:"LOG_FORMAT"`
	TraceStdout bool   `mapstructure:"TRACE_STDOUT"`
	SentryDSN   string `mapstructure:"SENTRY_DSN"`

	// CustomerTokens is parsed from CustomerTokensJSON.
	CustomerTokens credentials.CustomerTokens `mapstructure:"-"`
}

var defaults = map[string]interface{}{
	"AP_CLIENT_ID":                 "",
	"AP_API_KEY":                   "",
	"PARTNER_ACCOUNT_ID":           "",
	"SP_CLIENT_ID":                 "",
	"SP_API_KEY":                   "",
	"KLARNA_API_BASE_URL":          "https://api-global.test.klarna.com",
	"KLARNA_CUSTOMER_TOKENS":       "",
	"PAYTRAIL_API_BASE_URL":        "https://services.paytrail.com",
	"SERVER_ADDR":                  ":8080",
	"HTTP_TIMEOUT":                 "15s",
	"REQUEST_BUDGET":               "30s",
	"PAYMENT_OPTION_REQUIRED_RULE": "operation == 'payment_request'",
	"CIRCUIT_FAILURE_THRESHOLD":    5,
	"CIRCUIT_OPEN_TIMEOUT":         "30s",
	"LOG_LEVEL":                    "info",
	"LOG_FORMAT":                   "json",
	"TRACE_STDOUT":                 false,
	"SENTRY_DSN":                   "",
}

// Load reads .env (when present), then the environment, then configFile when
// it is not empty. Environment variables win over the config file.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	tokens, err := credentials.ParseCustomerTokens(c.CustomerTokensJSON)
	if err != nil {
		return err
	}
	c.CustomerTokens = tokens

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.RequestBudget < 0 {
		return fmt.Errorf("REQUEST_BUDGET must not be negative, got %s", c.RequestBudget)
	}
	if c.CircuitFailureThreshold < 0 {
		return fmt.Errorf("CIRCUIT_FAILURE_THRESHOLD must not be negative, got %d", c.CircuitFailureThreshold)
	}
	return nil
}

// SubPartner returns the Sub-Partner credential set.
func (c *Config) SubPartner() credentials.Set {
	return credentials.Set{ClientID: c.SPClientID, APIKey: c.SPAPIKey}
}

// AcquiringPartner returns the Acquiring-Partner credential set.
func (c *Config) AcquiringPartner() credentials.Set {
	return credentials.Set{ClientID: c.APClientID, APIKey: c.APAPIKey, PartnerAccountID: c.PartnerAccountID}
}

// Resolver builds the credential resolver for this configuration.
func (c *Config) Resolver() *credentials.Resolver {
	return credentials.NewResolver(c.SubPartner(), c.AcquiringPartner())
}
