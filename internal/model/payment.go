// Package model holds the relay's internal purchase model as sent by the UI
// collaborator. Field names are camelCase on the wire.
package model

// Intent is an enumerated purchase purpose.
type Intent string

const (
	IntentPay         Intent = "PAY"
	IntentSubscribe   Intent = "SUBSCRIBE"
	IntentDonate      Intent = "DONATE"
	IntentSignIn      Intent = "SIGNIN"
	IntentSignUp      Intent = "SIGNUP"
	IntentAddToWallet Intent = "ADD_TO_WALLET"
)

// Customer token scopes. A request carries exactly one of them.
const (
	ScopeCustomerPresent    = "payment:customer_present"
	ScopeCustomerNotPresent = "payment:customer_not_present"
)

// Intents is an ordered set. Order matters for presentation only.
type Intents []Intent

// Has reports whether in is part of the set.
func (is Intents) Has(in Intent) bool {
	for _, i := range is {
		if i == in {
			return true
		}
	}
	return false
}

// Unique drops repeated intents while keeping first-seen order.
func (is Intents) Unique() Intents {
	seen := make(map[Intent]bool, len(is))
	out := make(Intents, 0, len(is))
	for _, i := range is {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

// WalletOnly is true when the set is exactly {ADD_TO_WALLET}: a wallet
// linking flow without a payment transaction.
func (is Intents) WalletOnly() bool {
	u := is.Unique()
	return len(u) == 1 && u[0] == IntentAddToWallet
}

// Strings returns the intents as plain strings.
func (is Intents) Strings() []string {
	out := make([]string, len(is))
	for i, in := range is {
		out[i] = string(in)
	}
	return out
}

// CustomerTokenScope picks the scope implied by the intent combination.
func (is Intents) CustomerTokenScope() string {
	if is.Has(IntentSubscribe) {
		return ScopeCustomerNotPresent
	}
	return ScopeCustomerPresent
}

// PaymentRequestData is built fresh per user action and never mutated by the relay.
type PaymentRequestData struct {
	Currency                  string                     `json:"currency"`
	PaymentRequestReference   string                     `json:"paymentRequestReference,omitempty"`
	Amount                    *int64                     `json:"amount,omitempty"`
	Intents                   Intents                    `json:"intents"`
	PaymentOptionID           string                     `json:"paymentOptionId,omitempty"`
	SupplementaryPurchaseData *SupplementaryPurchaseData `json:"supplementaryPurchaseData,omitempty"`
	RequestCustomerToken      *CustomerTokenRequest      `json:"requestCustomerToken,omitempty"`
}

// SupplementaryPurchaseData describes what is being bought.
type SupplementaryPurchaseData struct {
	PurchaseReference string           `json:"purchaseReference,omitempty"`
	LineItems         []LineItem       `json:"lineItems,omitempty"`
	OndemandService   *OndemandService `json:"ondemandService,omitempty"`
	Subscriptions     []Subscription   `json:"subscriptions,omitempty"`
	Customer          *Customer        `json:"customer,omitempty"`
}

// LineItem amounts are minor units. TotalAmount == UnitPrice*Quantity is the
// caller's responsibility.
type LineItem struct {
	Name                  string `json:"name"`
	Quantity              int64  `json:"quantity"`
	TotalAmount           int64  `json:"totalAmount"`
	UnitPrice             int64  `json:"unitPrice"`
	LineItemReference     string `json:"lineItemReference,omitempty"`
	SubscriptionReference string `json:"subscriptionReference,omitempty"`
}

// OndemandService describes usage-based service terms.
//
// The frequency key is "purchaseInterval_frequency" on input. The irregular
// name is what existing UI clients send.
type OndemandService struct {
	AverageAmount             *int64 `json:"averageAmount,omitempty"`
	MinimumAmount             *int64 `json:"minimumAmount,omitempty"`
	MaximumAmount             *int64 `json:"maximumAmount,omitempty"`
	PurchaseInterval          string `json:"purchaseInterval,omitempty"`
	PurchaseIntervalFrequency *int   `json:"purchaseInterval_frequency,omitempty"`
}

// Subscription carries one billing plan; the transformer expands it into the
// vendor's billing_plans array.
type Subscription struct {
	SubscriptionReference string `json:"subscriptionReference"`
	Name                  string `json:"name"`
	FreeTrial             string `json:"freeTrial,omitempty"`
	Amount                int64  `json:"amount"`
	Currency              string `json:"currency"`
	Interval              string `json:"interval"`
	IntervalFrequency     int    `json:"intervalFrequency"`
}

// Customer is optional customer prefill.
type Customer struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}

// CustomerTokenRequest asks the vendor to mint a reusable customer token.
type CustomerTokenRequest struct {
	Scopes                 []string `json:"scopes,omitempty"`
	CustomerTokenReference string   `json:"customerTokenReference"`
}
