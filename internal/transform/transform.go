package transform

import (
	"github.com/yourorg/checkout-relay/internal/model"
)

// ToWireFormat maps supplementary purchase data onto the vendor schema.
// A nil input yields nil.
func ToWireFormat(data *model.SupplementaryPurchaseData) *SupplementaryPurchaseData {
	if data == nil {
		return nil
	}
	out := &SupplementaryPurchaseData{
		PurchaseReference: data.PurchaseReference,
	}

	for _, li := range data.LineItems {
		out.LineItems = append(out.LineItems, LineItem{
			Name:                  li.Name,
			Quantity:              li.Quantity,
			TotalAmount:           li.TotalAmount,
			UnitPrice:             li.UnitPrice,
			LineItemReference:     li.LineItemReference,
			SubscriptionReference: li.SubscriptionReference,
		})
	}

	if svc := data.OndemandService; svc != nil {
		out.OndemandService = &OndemandService{
			AverageAmount:             clone(svc.AverageAmount),
			MinimumAmount:             clone(svc.MinimumAmount),
			MaximumAmount:             clone(svc.MaximumAmount),
			PurchaseInterval:          svc.PurchaseInterval,
			PurchaseIntervalFrequency: clone(svc.PurchaseIntervalFrequency),
		}
	}

	for _, sub := range data.Subscriptions {
		out.Subscriptions = append(out.Subscriptions, Subscription{
			SubscriptionReference: sub.SubscriptionReference,
			Name:                  sub.Name,
			FreeTrial:             sub.FreeTrial,
			BillingPlans: []BillingPlan{{
				Amount:            sub.Amount,
				Currency:          sub.Currency,
				Interval:          sub.Interval,
				IntervalFrequency: sub.IntervalFrequency,
			}},
		})
	}

	if c := data.Customer; c != nil {
		out.Customer = &Customer{
			Email:      c.Email,
			Phone:      c.Phone,
			GivenName:  c.GivenName,
			FamilyName: c.FamilyName,
		}
	}
	return out
}

// CustomerTokenToWire maps a customer token request. The scope always comes
// from the intents and exactly one is sent; caller scopes are checked by the
// orchestrator before building.
func CustomerTokenToWire(req *model.CustomerTokenRequest, intents model.Intents) *CustomerTokenRequest {
	if req == nil {
		return nil
	}
	return &CustomerTokenRequest{
		Scopes:                 []string{intents.CustomerTokenScope()},
		CustomerTokenReference: req.CustomerTokenReference,
	}
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
