package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/model"
	"github.com/iliyamo/bookmarket/internal/repository"
)

type fakeSubmissionStore struct {
	byID   map[uint64]model.BookSubmission
	nextID uint64
}

func newFakeSubmissionStore(seed ...model.BookSubmission) *fakeSubmissionStore {
	f := &fakeSubmissionStore{byID: map[uint64]model.BookSubmission{}, nextID: 1}
	for _, s := range seed {
		if s.ID >= f.nextID {
			f.nextID = s.ID + 1
		}
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSubmissionStore) Create(ctx context.Context, s *model.BookSubmission) error {
	s.ID = f.nextID
	f.nextID++
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSubmissionStore) GetByID(ctx context.Context, id uint64) (model.BookSubmission, error) {
	s, ok := f.byID[id]
	if !ok {
		return model.BookSubmission{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSubmissionStore) ListAll(ctx context.Context) ([]model.BookSubmission, error) {
	var out []model.BookSubmission
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubmissionStore) ListBySeller(ctx context.Context, email string) ([]model.BookSubmission, error) {
	var out []model.BookSubmission
	for _, s := range f.byID {
		if s.SellerEmail == email {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionStore) Update(ctx context.Context, s *model.BookSubmission) error {
	if _, ok := f.byID[s.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[s.ID] = *s
	return nil
}

func asUser(c echo.Context, email string, admin bool) {
	c.Set("user_id", float64(1))
	c.Set("email", email)
	c.Set("is_admin", admin)
}

func offeredSubmission(id uint64, seller string) model.BookSubmission {
	amount := 12.50
	return model.BookSubmission{
		ID:          id,
		Title:       "Torts in a Nutshell",
		Author:      "K. Abel",
		Condition:   "good",
		SellerName:  "Seller",
		SellerEmail: seller,
		Status:      model.SubmissionOffered,
		OfferAmount: &amount,
	}
}

func TestCreateSubmissionRequiresImage(t *testing.T) {
	store := newFakeSubmissionStore()
	h := NewSubmissionHandler(store)

	body := `{"title":"Evidence","author":"L. Finch","condition":"good","sellerName":"S","sellerEmail":"s@example.com"}`
	c, rec := newContext(jsonRequest(http.MethodPost, "/v1/book-submissions", body))
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(store.byID) != 0 {
		t.Error("submission stored without images")
	}
}

func TestCreateSubmissionStartsPending(t *testing.T) {
	store := newFakeSubmissionStore()
	h := NewSubmissionHandler(store)

	body := `{"title":"Evidence","author":"L. Finch","condition":"Excellent","sellerName":"S","sellerEmail":"S@Example.com","images":["data:image/jpeg;base64,AAA"]}`
	c, rec := newContext(jsonRequest(http.MethodPost, "/v1/book-submissions", body))
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	stored := store.byID[1]
	if stored.Status != model.SubmissionPending {
		t.Errorf("status = %q, want pending", stored.Status)
	}
	if stored.Condition != "excellent" {
		t.Errorf("condition = %q, want normalized excellent", stored.Condition)
	}
	if stored.SellerEmail != "s@example.com" {
		t.Errorf("email = %q, want normalized lowercase", stored.SellerEmail)
	}
}

func TestSellerAcceptsOffer(t *testing.T) {
	store := newFakeSubmissionStore(offeredSubmission(4, "seller@example.com"))
	h := NewSubmissionHandler(store)

	c, rec := newContext(jsonRequest(http.MethodPut, "/v1/book-submissions/4", `{"status":"accepted"}`))
	withParamID(c, "4")
	asUser(c, "seller@example.com", false)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if got := store.byID[4].Status; got != model.SubmissionAccepted {
		t.Errorf("status = %q, want accepted", got)
	}
}

func TestSellerCannotSetOtherStatuses(t *testing.T) {
	store := newFakeSubmissionStore(offeredSubmission(4, "seller@example.com"))
	h := NewSubmissionHandler(store)

	for _, status := range []string{"completed", "rejected", "offered"} {
		c, rec := newContext(jsonRequest(http.MethodPut, "/v1/book-submissions/4", `{"status":"`+status+`"}`))
		withParamID(c, "4")
		asUser(c, "seller@example.com", false)
		if err := h.Update(c); err != nil {
			t.Fatalf("Update(%s): %v", status, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status %q: code = %d, want 400", status, rec.Code)
		}
	}
	if got := store.byID[4].Status; got != model.SubmissionOffered {
		t.Errorf("submission moved to %q", got)
	}
}

func TestSellerAcceptRequiresOpenOffer(t *testing.T) {
	sub := offeredSubmission(4, "seller@example.com")
	sub.Status = model.SubmissionPending
	store := newFakeSubmissionStore(sub)
	h := NewSubmissionHandler(store)

	c, rec := newContext(jsonRequest(http.MethodPut, "/v1/book-submissions/4", `{"status":"accepted"}`))
	withParamID(c, "4")
	asUser(c, "seller@example.com", false)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestNonOwnerCannotAccept(t *testing.T) {
	store := newFakeSubmissionStore(offeredSubmission(4, "seller@example.com"))
	h := NewSubmissionHandler(store)

	c, rec := newContext(jsonRequest(http.MethodPut, "/v1/book-submissions/4", `{"status":"accepted"}`))
	withParamID(c, "4")
	asUser(c, "intruder@example.com", false)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := store.byID[4].Status; got != model.SubmissionOffered {
		t.Errorf("submission moved to %q", got)
	}
}

func TestAdminMakesOffer(t *testing.T) {
	sub := offeredSubmission(4, "seller@example.com")
	sub.Status = model.SubmissionReviewed
	sub.OfferAmount = nil
	store := newFakeSubmissionStore(sub)
	h := NewSubmissionHandler(store)

	c, rec := newContext(jsonRequest(http.MethodPut, "/v1/book-submissions/4",
		`{"status":"offered","offerAmount":15.75,"notes":"good condition, minor wear"}`))
	withParamID(c, "4")
	asUser(c, "admin@example.com", true)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	got := store.byID[4]
	if got.Status != model.SubmissionOffered {
		t.Errorf("status = %q, want offered", got.Status)
	}
	if got.OfferAmount == nil || *got.OfferAmount != 15.75 {
		t.Errorf("offerAmount = %v, want 15.75", got.OfferAmount)
	}
	if got.Notes != "good condition, minor wear" {
		t.Errorf("notes = %q", got.Notes)
	}
}

func TestListScopesToSellerUnlessAdmin(t *testing.T) {
	store := newFakeSubmissionStore(
		offeredSubmission(1, "a@example.com"),
		offeredSubmission(2, "b@example.com"),
	)
	h := NewSubmissionHandler(store)

	decode := func(rec []byte) int {
		var resp struct {
			Submissions []model.BookSubmission `json:"submissions"`
		}
		if err := json.Unmarshal(rec, &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return len(resp.Submissions)
	}

	c, rec := newContext(jsonRequest(http.MethodGet, "/v1/book-submissions", ""))
	asUser(c, "a@example.com", false)
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if n := decode(rec.Body.Bytes()); n != 1 {
		t.Errorf("seller sees %d submissions, want 1", n)
	}

	c, rec = newContext(jsonRequest(http.MethodGet, "/v1/book-submissions", ""))
	asUser(c, "admin@example.com", true)
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if n := decode(rec.Body.Bytes()); n != 2 {
		t.Errorf("admin sees %d submissions, want 2", n)
	}
}
