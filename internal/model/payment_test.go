package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntents_WalletOnly(t *testing.T) {
	assert.True(t, Intents{IntentAddToWallet}.WalletOnly())
	assert.True(t, Intents{IntentAddToWallet, IntentAddToWallet}.WalletOnly())
	assert.False(t, Intents{IntentAddToWallet, IntentPay}.WalletOnly())
	assert.False(t, Intents{IntentPay}.WalletOnly())
	assert.False(t, Intents{}.WalletOnly())
}

func TestIntents_UniqueKeepsOrder(t *testing.T) {
	in := Intents{IntentSubscribe, IntentPay, IntentSubscribe, IntentDonate}
	assert.Equal(t, Intents{IntentSubscribe, IntentPay, IntentDonate}, in.Unique())
	assert.Equal(t, []string{"SUBSCRIBE", "PAY", "SUBSCRIBE", "DONATE"}, in.Strings())
}

func TestIntents_CustomerTokenScope(t *testing.T) {
	assert.Equal(t, ScopeCustomerPresent, Intents{IntentAddToWallet}.CustomerTokenScope())
	assert.Equal(t, ScopeCustomerNotPresent, Intents{IntentPay, IntentSubscribe}.CustomerTokenScope())
}

func TestOndemandService_IrregularFrequencyKey(t *testing.T) {
	var svc OndemandService
	require.NoError(t, json.Unmarshal([]byte(`{"purchaseInterval":"MONTH","purchaseInterval_frequency":2}`), &svc))
	assert.Equal(t, "MONTH", svc.PurchaseInterval)
	require.NotNil(t, svc.PurchaseIntervalFrequency)
	assert.Equal(t, 2, *svc.PurchaseIntervalFrequency)
}
