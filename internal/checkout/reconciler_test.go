package checkout

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/iliyamo/bookmarket/internal/model"
	"github.com/iliyamo/bookmarket/internal/payment"
	"github.com/iliyamo/bookmarket/internal/repository"
)

type fakeGateway struct {
	sessions map[string]payment.Session
}

func (g *fakeGateway) CreateSession(ctx context.Context, p payment.SessionParams) (payment.Session, error) {
	return payment.Session{}, errors.New("not implemented")
}

func (g *fakeGateway) GetSession(ctx context.Context, id string) (payment.Session, error) {
	s, ok := g.sessions[id]
	if !ok {
		return payment.Session{}, errors.New("no such session")
	}
	return s, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, sig string) (payment.Event, error) {
	return payment.Event{}, errors.New("not implemented")
}

type fakeListings struct {
	byID map[uint64]model.Listing
}

func (f *fakeListings) GetByID(ctx context.Context, id uint64) (model.Listing, error) {
	l, ok := f.byID[id]
	if !ok {
		return model.Listing{}, repository.ErrNotFound
	}
	return l, nil
}

// fakeOrders mimics the unique-index behavior of the real repository:
// the first insert for a session wins, any later one gets the duplicate
// error and no decrement happens.
type fakeOrders struct {
	mu         sync.Mutex
	bySession  map[string]model.Order
	nextID     uint64
	decrements map[uint64]int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		bySession:  map[string]model.Order{},
		nextID:     1,
		decrements: map[uint64]int{},
	}
}

func (f *fakeOrders) GetBySessionID(ctx context.Context, sessionID string) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.bySession[sessionID]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) CreateWithStockDecrement(ctx context.Context, o *model.Order, productID uint64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bySession[o.StripeSessionID]; ok {
		return repository.ErrDuplicateSession
	}
	o.ID = f.nextID
	f.nextID++
	f.bySession[o.StripeSessionID] = *o
	f.decrements[productID] += quantity
	return nil
}

func paidSession(id string, productID uint64, quantity int, total int64) payment.Session {
	return payment.Session{
		ID:            id,
		PaymentStatus: payment.StatusPaid,
		AmountTotal:   total,
		CustomerName:  "Jordan Reed",
		CustomerEmail: "jordan@example.com",
		Metadata: map[string]string{
			payment.MetaProductID: strconv.FormatUint(productID, 10),
			payment.MetaQuantity:  strconv.Itoa(quantity),
		},
	}
}

func testProduct() model.Listing {
	return model.Listing{
		ID:     7,
		Kind:   model.KindProduct,
		Title:  "Contract Law Essentials",
		Author: "E. Marsh",
		Price:  19.99,
		Stock:  10,
		Status: model.StatusApproved,
	}
}

func newTestReconciler(sessions ...payment.Session) (*Reconciler, *fakeOrders) {
	gw := &fakeGateway{sessions: map[string]payment.Session{}}
	for _, s := range sessions {
		gw.sessions[s.ID] = s
	}
	orders := newFakeOrders()
	r := NewReconciler(gw, &fakeListings{byID: map[uint64]model.Listing{7: testProduct()}}, orders)
	return r, orders
}

func TestReconcileCreatesOrderFromPaidSession(t *testing.T) {
	sess := paidSession("cs_1", 7, 2, 3998)
	r, orders := newTestReconciler(sess)

	order, err := r.Reconcile(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if order.Status != model.OrderCompleted {
		t.Errorf("status = %q, want %q", order.Status, model.OrderCompleted)
	}
	if order.Total != "39.98" {
		t.Errorf("total = %q, want \"39.98\"", order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 || order.Items[0].Title != "Contract Law Essentials" {
		t.Errorf("unexpected items: %+v", order.Items)
	}
	if orders.decrements[7] != 2 {
		t.Errorf("stock decrement = %d, want 2", orders.decrements[7])
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	sess := paidSession("cs_2", 7, 1, 1999)
	r, orders := newTestReconciler(sess)

	first, err := r.Reconcile(context.Background(), "cs_2")
	if err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	second, err := r.Reconcile(context.Background(), "cs_2")
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("got two orders (%d and %d) for one session", first.ID, second.ID)
	}
	if len(orders.bySession) != 1 {
		t.Errorf("order count = %d, want 1", len(orders.bySession))
	}
	if orders.decrements[7] != 1 {
		t.Errorf("stock decrement = %d, want 1", orders.decrements[7])
	}
}

func TestApplyDuplicateRaceReturnsExistingOrder(t *testing.T) {
	// Simulate both reconciliation triggers losing the fast-path check and
	// racing on the insert: the loser must get the winner's order back.
	sess := paidSession("cs_3", 7, 1, 1999)
	r, orders := newTestReconciler(sess)

	winner := model.Order{StripeSessionID: "cs_3", Status: model.OrderCompleted, Total: "19.99"}
	if err := orders.CreateWithStockDecrement(context.Background(), &winner, 7, 1); err != nil {
		t.Fatalf("seed winner: %v", err)
	}

	got, err := r.Apply(context.Background(), sess)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.ID != winner.ID {
		t.Errorf("order id = %d, want winner's %d", got.ID, winner.ID)
	}
	if orders.decrements[7] != 1 {
		t.Errorf("stock decrement = %d, want 1", orders.decrements[7])
	}
}

func TestReconcileRejectsUnpaidSession(t *testing.T) {
	sess := paidSession("cs_4", 7, 1, 1999)
	sess.PaymentStatus = "unpaid"
	r, orders := newTestReconciler(sess)

	if _, err := r.Reconcile(context.Background(), "cs_4"); !errors.Is(err, ErrNotPaid) {
		t.Fatalf("err = %v, want ErrNotPaid", err)
	}
	if len(orders.bySession) != 0 {
		t.Error("order created for unpaid session")
	}
}

func TestReconcileMissingProduct(t *testing.T) {
	sess := paidSession("cs_5", 99, 1, 1999)
	r, orders := newTestReconciler(sess)

	if _, err := r.Reconcile(context.Background(), "cs_5"); !errors.Is(err, ErrProductMissing) {
		t.Fatalf("err = %v, want ErrProductMissing", err)
	}
	if len(orders.bySession) != 0 {
		t.Error("order created despite missing product")
	}
}

func TestReconcileBadMetadata(t *testing.T) {
	sess := paidSession("cs_6", 7, 1, 1999)
	sess.Metadata = map[string]string{payment.MetaProductID: "abc"}
	r, _ := newTestReconciler(sess)

	if _, err := r.Reconcile(context.Background(), "cs_6"); !errors.Is(err, ErrBadMetadata) {
		t.Fatalf("err = %v, want ErrBadMetadata", err)
	}
}

func TestFormatTotal(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{3998, "39.98"},
		{1999, "19.99"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := FormatTotal(tc.minor); got != tc.want {
			t.Errorf("FormatTotal(%d) = %q, want %q", tc.minor, got, tc.want)
		}
	}
}

func TestUnitAmount(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
	}{
		{19.99, 1999},
		{0.1, 10},
		{29.95, 2995},
		{100, 10000},
	}
	for _, tc := range cases {
		if got := UnitAmount(tc.price); got != tc.want {
			t.Errorf("UnitAmount(%v) = %d, want %d", tc.price, got, tc.want)
		}
	}
}
