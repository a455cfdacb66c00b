package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/iliyamo/bookmarket/internal/checkout"
	"github.com/iliyamo/bookmarket/internal/model"
	"github.com/iliyamo/bookmarket/internal/payment"
	"github.com/iliyamo/bookmarket/internal/repository"
)

// capturingGateway records CreateSession params and serves canned sessions.
type capturingGateway struct {
	created  []payment.SessionParams
	sessions map[string]payment.Session
	sig      string
}

func (g *capturingGateway) CreateSession(ctx context.Context, p payment.SessionParams) (payment.Session, error) {
	g.created = append(g.created, p)
	return payment.Session{ID: "cs_test_1"}, nil
}

func (g *capturingGateway) GetSession(ctx context.Context, id string) (payment.Session, error) {
	s, ok := g.sessions[id]
	if !ok {
		return payment.Session{}, errors.New("no such session")
	}
	return s, nil
}

func (g *capturingGateway) ParseWebhook(payload []byte, signature string) (payment.Event, error) {
	if signature != g.sig {
		return payment.Event{}, errors.New("signature verification failed")
	}
	var sess payment.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return payment.Event{}, err
	}
	return payment.Event{Type: payment.EventCheckoutCompleted, Session: sess}, nil
}

type checkoutOrderStore struct {
	bySession  map[string]model.Order
	nextID     uint64
	decrements map[uint64]int
}

func newCheckoutOrderStore() *checkoutOrderStore {
	return &checkoutOrderStore{bySession: map[string]model.Order{}, nextID: 1, decrements: map[uint64]int{}}
}

func (f *checkoutOrderStore) GetBySessionID(ctx context.Context, sessionID string) (model.Order, error) {
	o, ok := f.bySession[sessionID]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (f *checkoutOrderStore) CreateWithStockDecrement(ctx context.Context, o *model.Order, productID uint64, quantity int) error {
	if _, ok := f.bySession[o.StripeSessionID]; ok {
		return repository.ErrDuplicateSession
	}
	o.ID = f.nextID
	f.nextID++
	f.bySession[o.StripeSessionID] = *o
	f.decrements[productID] += quantity
	return nil
}

func sampleBook() model.Listing {
	return model.Listing{
		ID:     7,
		Kind:   model.KindProduct,
		Title:  "Criminal Procedure",
		Author: "D. Okafor",
		Price:  19.99,
		Stock:  5,
		Status: model.StatusApproved,
	}
}

func checkoutFixture(sessions ...payment.Session) (*CheckoutHandler, *WebhookHandler, *capturingGateway, *checkoutOrderStore) {
	gw := &capturingGateway{sessions: map[string]payment.Session{}, sig: "t=1,v1=good"}
	for _, s := range sessions {
		gw.sessions[s.ID] = s
	}
	listings := newFakeListingStore(sampleBook())
	orders := newCheckoutOrderStore()
	rec := checkout.NewReconciler(gw, listings, orders)
	ch := NewCheckoutHandler(listings, gw, rec, "https://books.example.com")
	wh := NewWebhookHandler(gw, rec)
	return ch, wh, gw, orders
}

func paidTestSession(id string, qty string, total int64) payment.Session {
	return payment.Session{
		ID:            id,
		PaymentStatus: payment.StatusPaid,
		AmountTotal:   total,
		CustomerName:  "Pat Quinn",
		CustomerEmail: "pat@example.com",
		Metadata:      map[string]string{payment.MetaProductID: "7", payment.MetaQuantity: qty},
	}
}

func TestCreateSessionParams(t *testing.T) {
	ch, _, gw, _ := checkoutFixture()

	c, rec := newContext(jsonRequest(http.MethodPost, "/v1/checkout-session", `{"product_id":7,"quantity":2}`))
	if err := ch.CreateSession(c); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	if len(gw.created) != 1 {
		t.Fatalf("gateway sessions created = %d, want 1", len(gw.created))
	}
	p := gw.created[0]
	if p.Item.UnitAmount != 1999 {
		t.Errorf("unit amount = %d, want 1999", p.Item.UnitAmount)
	}
	if p.Item.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", p.Item.Quantity)
	}
	if p.Metadata[payment.MetaProductID] != "7" || p.Metadata[payment.MetaQuantity] != "2" {
		t.Errorf("metadata = %v", p.Metadata)
	}
	if !strings.Contains(p.SuccessURL, "session_id={CHECKOUT_SESSION_ID}") ||
		!strings.Contains(p.SuccessURL, "product_id=7") {
		t.Errorf("success url = %q", p.SuccessURL)
	}
	if p.CancelURL != "https://books.example.com/product/7" {
		t.Errorf("cancel url = %q", p.CancelURL)
	}
	if len(p.AllowedCountries) != 4 {
		t.Errorf("allowed countries = %v", p.AllowedCountries)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["session_id"] != "cs_test_1" {
		t.Errorf("session_id = %q", resp["session_id"])
	}
}

func TestCreateSessionUnknownProduct(t *testing.T) {
	ch, _, gw, _ := checkoutFixture()

	c, rec := newContext(jsonRequest(http.MethodPost, "/v1/checkout-session", `{"product_id":99,"quantity":1}`))
	if err := ch.CreateSession(c); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if len(gw.created) != 0 {
		t.Error("gateway session created for unknown product")
	}
}

func TestVerifyPaymentCreatesOrderOnce(t *testing.T) {
	ch, _, _, orders := checkoutFixture(paidTestSession("cs_9", "2", 3998))

	body := `{"session_id":"cs_9"}`
	for i := 0; i < 2; i++ {
		c, rec := newContext(jsonRequest(http.MethodPost, "/v1/verify-payment", body))
		if err := ch.VerifyPayment(c); err != nil {
			t.Fatalf("VerifyPayment #%d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
	}
	if len(orders.bySession) != 1 {
		t.Errorf("orders = %d, want 1", len(orders.bySession))
	}
	if orders.decrements[7] != 2 {
		t.Errorf("decrement = %d, want 2", orders.decrements[7])
	}
	if got := orders.bySession["cs_9"].Total; got != "39.98" {
		t.Errorf("total = %q, want 39.98", got)
	}
}

func TestVerifyPaymentUnpaid(t *testing.T) {
	sess := paidTestSession("cs_10", "1", 1999)
	sess.PaymentStatus = "unpaid"
	ch, _, _, orders := checkoutFixture(sess)

	c, rec := newContext(jsonRequest(http.MethodPost, "/v1/verify-payment", `{"session_id":"cs_10"}`))
	if err := ch.VerifyPayment(c); err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(orders.bySession) != 0 {
		t.Error("order created for unpaid session")
	}
}

func TestWebhookBadSignatureHasNoSideEffect(t *testing.T) {
	_, wh, _, orders := checkoutFixture()

	sess := paidTestSession("cs_11", "1", 1999)
	payload, _ := json.Marshal(sess)
	req := jsonRequest(http.MethodPost, "/v1/webhook/payment", string(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=forged")
	c, rec := newContext(req)

	if err := wh.Handle(c); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(orders.bySession) != 0 {
		t.Error("order created from unverified webhook")
	}
}

func TestWebhookCompletedSessionCreatesOrder(t *testing.T) {
	_, wh, _, orders := checkoutFixture()

	sess := paidTestSession("cs_12", "1", 1999)
	payload, _ := json.Marshal(sess)
	req := jsonRequest(http.MethodPost, "/v1/webhook/payment", string(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=good")
	c, rec := newContext(req)

	if err := wh.Handle(c); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if len(orders.bySession) != 1 {
		t.Errorf("orders = %d, want 1", len(orders.bySession))
	}
	if orders.decrements[7] != 1 {
		t.Errorf("decrement = %d, want 1", orders.decrements[7])
	}
}
