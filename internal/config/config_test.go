package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-relay/internal/credentials"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://api-global.test.klarna.com", cfg.KlarnaBaseURL)
	assert.Equal(t, "https://services.paytrail.com", cfg.PaytrailBaseURL)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestBudget)
	assert.Equal(t, "operation == 'payment_request'", cfg.PaymentOptionRequiredRule)
	assert.Equal(t, 5, cfg.CircuitFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.CircuitOpenTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TraceStdout)
	assert.Empty(t, cfg.CustomerTokens)
	assert.Empty(t, cfg.Resolver().Available())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("AP_CLIENT_ID", "ap-client")
	t.Setenv("AP_API_KEY", "ap-key")
	t.Setenv("PARTNER_ACCOUNT_ID", "acc_1")
	t.Setenv("SP_CLIENT_ID", "sp-client")
	t.Setenv("SP_API_KEY", "sp-key")
	t.Setenv("KLARNA_CUSTOMER_TOKENS", `{"de":"ct_de","SE":"ct_se"}`)
	t.Setenv("HTTP_TIMEOUT", "2s")
	t.Setenv("TRACE_STDOUT", "true")
	t.Setenv("CIRCUIT_FAILURE_THRESHOLD", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.TraceStdout)
	assert.Equal(t, 3, cfg.CircuitFailureThreshold)
	assert.Equal(t, []string{"DE", "SE"}, cfg.CustomerTokens.Countries())
	assert.Equal(t, credentials.Set{ClientID: "sp-client", APIKey: "sp-key"}, cfg.SubPartner())

	mode, ok := cfg.Resolver().Default()
	require.True(t, ok)
	assert.Equal(t, credentials.ModeAcquiringPartner, mode)
}

func TestLoad_InvalidCustomerTokens(t *testing.T) {
	clearEnv(t)
	t.Setenv("KLARNA_CUSTOMER_TOKENS", `{not json`)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KLARNA_CUSTOMER_TOKENS")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT", "0s")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("SP_CLIENT_ID: file-client\nSP_API_KEY: file-key\nSERVER_ADDR: \":9090\"\n"), 0o600))
	t.Setenv("SERVER_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-client", cfg.SPClientID)
	assert.Equal(t, ":7070", cfg.ServerAddr)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
