package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentPolicyEnforcer_EmptyAndNilRules(t *testing.T) {
	ppe, err := NewPaymentPolicyEnforcer(nil)
	require.NoError(t, err)
	assert.NotNil(t, ppe)
	assert.Empty(t, ppe.rules)

	ppe, err = NewPaymentPolicyEnforcer([]PolicyRule{})
	require.NoError(t, err)
	assert.Empty(t, ppe.rules)
}

func TestNewPaymentPolicyEnforcer_CompilationError(t *testing.T) {
	rules := []PolicyRule{
		{ID: "ok", Expression: "intents_count > 1"},
		{ID: "broken", Expression: "operation =="},
	}
	_, err := NewPaymentPolicyEnforcer(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile rule ID 'broken'")
}

func TestNewPaymentPolicyEnforcer_EmptyExpressionInRule(t *testing.T) {
	_, err := NewPaymentPolicyEnforcer([]PolicyRule{{ID: "empty_expr_rule"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy rule ID 'empty_expr_rule' has an empty expression")
}

func TestEvaluate_PriorityOrder(t *testing.T) {
	rules := []PolicyRule{
		{ID: "late", Expression: "operation == 'payment_request'", Priority: 5, Decision: PolicyDecision{RequirePaymentOptionID: true}},
		{ID: "wallet_exempt", Expression: "wallet_only", Priority: 1, Decision: PolicyDecision{RequirePaymentOptionID: false}},
	}
	ppe, err := NewPaymentPolicyEnforcer(rules)
	require.NoError(t, err)

	d, err := ppe.Evaluate(Facts{Operation: "payment_request", WalletOnly: true})
	require.NoError(t, err)
	assert.False(t, d.RequirePaymentOptionID)
	assert.Equal(t, "wallet_exempt", d.MatchedRule)

	d, err = ppe.Evaluate(Facts{Operation: "payment_request"})
	require.NoError(t, err)
	assert.True(t, d.RequirePaymentOptionID)
	assert.Equal(t, "late", d.MatchedRule)
}

func TestNewPaymentOptionEnforcer_DefaultRule(t *testing.T) {
	ppe, err := NewPaymentOptionEnforcer("operation == 'payment_request'")
	require.NoError(t, err)

	d, err := ppe.Evaluate(Facts{Operation: "payment_request", AuthMode: "SUB_PARTNER"})
	require.NoError(t, err)
	assert.True(t, d.RequirePaymentOptionID)
	assert.Equal(t, RulePaymentOptionRequired, d.MatchedRule)

	d, err = ppe.Evaluate(Facts{Operation: "authorize_payment"})
	require.NoError(t, err)
	assert.False(t, d.RequirePaymentOptionID)
	assert.Empty(t, d.MatchedRule)
}

func TestNewPaymentOptionEnforcer_EmptyNeverRequires(t *testing.T) {
	ppe, err := NewPaymentOptionEnforcer("")
	require.NoError(t, err)
	d, err := ppe.Evaluate(Facts{Operation: "payment_request"})
	require.NoError(t, err)
	assert.False(t, d.RequirePaymentOptionID)
}

func TestEvaluate_NumericAndBooleanFacts(t *testing.T) {
	ppe, err := NewPaymentOptionEnforcer("intents_count >= 2 && !has_network_session_token && auth_mode == 'ACQUIRING_PARTNER'")
	require.NoError(t, err)

	d, err := ppe.Evaluate(Facts{IntentsCount: 2, AuthMode: "ACQUIRING_PARTNER"})
	require.NoError(t, err)
	assert.True(t, d.RequirePaymentOptionID)

	d, err = ppe.Evaluate(Facts{IntentsCount: 2, AuthMode: "ACQUIRING_PARTNER", HasNetworkSessionToken: true})
	require.NoError(t, err)
	assert.False(t, d.RequirePaymentOptionID)
}

func TestEvaluate_NonBooleanResult(t *testing.T) {
	ppe, err := NewPaymentOptionEnforcer("intents_count + 1")
	require.NoError(t, err)
	_, err = ppe.Evaluate(Facts{IntentsCount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not evaluate to a boolean")
}
