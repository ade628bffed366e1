// Package transform converts the internal purchase model into Klarna's
// snake_case wire schema. Values pass through unchanged: amounts are never
// recomputed or validated here.
package transform

// InteractionMethodHandover hands the customer over to the vendor's hosted flow.
const InteractionMethodHandover = "HANDOVER"

// PaymentRequest is the vendor-1 payment request body.
type PaymentRequest struct {
	Currency                  string                     `json:"currency"`
	Amount                    *int64                     `json:"amount,omitempty"`
	PaymentRequestReference   string                     `json:"payment_request_reference"`
	PaymentOptionID           string                     `json:"payment_option_id,omitempty"`
	CustomerInteractionConfig CustomerInteractionConfig  `json:"customer_interaction_config"`
	SupplementaryPurchaseData *SupplementaryPurchaseData `json:"supplementary_purchase_data,omitempty"`
	RequestCustomerToken      *CustomerTokenRequest      `json:"request_customer_token,omitempty"`
}

type CustomerInteractionConfig struct {
	Method    string `json:"method"`
	ReturnURL string `json:"return_url,omitempty"`
}

type SupplementaryPurchaseData struct {
	PurchaseReference string           `json:"purchase_reference,omitempty"`
	LineItems         []LineItem       `json:"line_items,omitempty"`
	OndemandService   *OndemandService `json:"ondemand_service,omitempty"`
	Subscriptions     []Subscription   `json:"subscriptions,omitempty"`
	Customer          *Customer        `json:"customer,omitempty"`
}

type LineItem struct {
	Name                  string `json:"name"`
	Quantity              int64  `json:"quantity"`
	TotalAmount           int64  `json:"total_amount"`
	UnitPrice             int64  `json:"unit_price"`
	LineItemReference     string `json:"line_item_reference,omitempty"`
	SubscriptionReference string `json:"subscription_reference,omitempty"`
}

// OndemandService keeps explicit zero amounts; only absent fields are omitted.
type OndemandService struct {
	AverageAmount             *int64 `json:"average_amount,omitempty"`
	MinimumAmount             *int64 `json:"minimum_amount,omitempty"`
	MaximumAmount             *int64 `json:"maximum_amount,omitempty"`
	PurchaseInterval          string `json:"purchase_interval,omitempty"`
	PurchaseIntervalFrequency *int   `json:"purchase_interval_frequency,omitempty"`
}

type Subscription struct {
	SubscriptionReference string        `json:"subscription_reference"`
	Name                  string        `json:"name"`
	FreeTrial             string        `json:"free_trial,omitempty"`
	BillingPlans          []BillingPlan `json:"billing_plans"`
}

// BillingPlan carries its own currency, independent of the purchase currency.
type BillingPlan struct {
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency,omitempty"`
	Interval          string `json:"interval"`
	IntervalFrequency int    `json:"interval_frequency"`
}

type Customer struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
}

type CustomerTokenRequest struct {
	Scopes                 []string `json:"scopes"`
	CustomerTokenReference string   `json:"customer_token_reference"`
}
