package payment

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway builds a gateway with its own API client. webhookSecret
// is the endpoint signing secret used to verify webhook payloads.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

// CreateSession opens a card checkout session with a single line item and
// shipping address collection limited to the allowed countries.
func (g *StripeGateway) CreateSession(ctx context.Context, p SessionParams) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.Item.Name),
						Description: stripe.String(p.Item.Description),
					},
					UnitAmount: stripe.Int64(p.Item.UnitAmount),
				},
				Quantity: stripe.Int64(p.Item.Quantity),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	if len(p.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(p.AllowedCountries),
		}
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, err
	}
	return fromStripeSession(s), nil
}

// GetSession retrieves a checkout session, expanding line items so that
// reconciliation sees the same shape on both the verify and webhook paths.
func (g *StripeGateway) GetSession(ctx context.Context, id string) (Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")
	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return Session{}, err
	}
	return fromStripeSession(s), nil
}

// ParseWebhook verifies the signature over the raw payload and decodes the
// event. For completed checkout sessions the session is included in the
// returned event; other event types carry only the type.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return Event{}, err
	}
	out := Event{Type: string(ev.Type)}
	if out.Type == EventCheckoutCompleted {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return Event{}, err
		}
		out.Session = fromStripeSession(&s)
	}
	return out, nil
}

func fromStripeSession(s *stripe.CheckoutSession) Session {
	out := Session{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Metadata:      s.Metadata,
	}
	if s.CustomerDetails != nil {
		out.CustomerName = s.CustomerDetails.Name
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if s.ShippingDetails != nil && s.ShippingDetails.Address != nil {
		a := s.ShippingDetails.Address
		out.ShippingAddress = Address{
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
	}
	return out
}
