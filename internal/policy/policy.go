// Package policy evaluates govaluate rules over per-request facts.
package policy

import (
	"fmt"
	"sort"

	"github.com/Knetic/govaluate"
)

// RulePaymentOptionRequired is the id of the rule built from configuration.
const RulePaymentOptionRequired = "payment_option_required"

// PolicyDecision is the outcome of a policy evaluation.
type PolicyDecision struct {
	// RequirePaymentOptionID rejects requests that carry no payment option id.
	RequirePaymentOptionID bool
	// MatchedRule is empty when no rule matched.
	MatchedRule string
}

// PolicyRule pairs a boolean expression with the decision it yields.
// Lower Priority values are evaluated first.
type PolicyRule struct {
	ID         string
	Expression string
	Priority   int
	Decision   PolicyDecision
}

// Facts are the variables available to rule expressions.
type Facts struct {
	Operation              string
	AuthMode               string
	WalletOnly             bool
	IntentsCount           int
	HasNetworkSessionToken bool
}

func (f Facts) parameters() map[string]interface{} {
	return map[string]interface{}{
		"operation":                 f.Operation,
		"auth_mode":                 f.AuthMode,
		"wallet_only":               f.WalletOnly,
		"intents_count":             float64(f.IntentsCount),
		"has_network_session_token": f.HasNetworkSessionToken,
	}
}

type compiledRule struct {
	PolicyRule
	expr *govaluate.EvaluableExpression
}

// PaymentPolicyEnforcer holds compiled rules. Safe for concurrent use.
type PaymentPolicyEnforcer struct {
	rules []compiledRule
}

// NewPaymentPolicyEnforcer compiles rules and orders them by priority.
func NewPaymentPolicyEnforcer(rules []PolicyRule) (*PaymentPolicyEnforcer, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Expression == "" {
			return nil, fmt.Errorf("policy rule ID '%s' has an empty expression", r.ID)
		}
		expr, err := govaluate.NewEvaluableExpression(r.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule ID '%s': %w", r.ID, err)
		}
		r.Decision.MatchedRule = r.ID
		compiled = append(compiled, compiledRule{PolicyRule: r, expr: expr})
	}
	sort.SliceStable(compiled, func(i, j int) bool { return compiled[i].Priority < compiled[j].Priority })
	return &PaymentPolicyEnforcer{rules: compiled}, nil
}

// NewPaymentOptionEnforcer builds an enforcer from a single expression that,
// when true, makes the payment option id mandatory. An empty expression never
// requires it.
func NewPaymentOptionEnforcer(expression string) (*PaymentPolicyEnforcer, error) {
	if expression == "" {
		return NewPaymentPolicyEnforcer(nil)
	}
	return NewPaymentPolicyEnforcer([]PolicyRule{{
		ID:         RulePaymentOptionRequired,
		Expression: expression,
		Decision:   PolicyDecision{RequirePaymentOptionID: true},
	}})
}

// Evaluate returns the decision of the first matching rule, or the zero
// decision when none match.
func (ppe *PaymentPolicyEnforcer) Evaluate(facts Facts) (PolicyDecision, error) {
	params := facts.parameters()
	for _, r := range ppe.rules {
		result, err := r.expr.Evaluate(params)
		if err != nil {
			return PolicyDecision{}, fmt.Errorf("failed to evaluate rule ID '%s': %w", r.ID, err)
		}
		matched, ok := result.(bool)
		if !ok {
			return PolicyDecision{}, fmt.Errorf("rule ID '%s' did not evaluate to a boolean (got %T)", r.ID, result)
		}
		if matched {
			return r.Decision, nil
		}
	}
	return PolicyDecision{}, nil
}
