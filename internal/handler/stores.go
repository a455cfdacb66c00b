package handler

import (
	"context"

	"github.com/iliyamo/bookmarket/internal/model"
)

// The handler layer depends on narrow store interfaces rather than the
// concrete repositories so that request logic can be tested with in-memory
// fakes. The internal/repository types satisfy these at wiring time.

// ListingStore covers content and product persistence.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id uint64) (model.Listing, error)
	GetApprovedByID(ctx context.Context, id uint64) (model.Listing, error)
	List(ctx context.Context, kind, status string, limit int) ([]model.Listing, error)
	Update(ctx context.Context, l *model.Listing) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
	IncrementDownloads(ctx context.Context, id uint64) error
}

// SubmissionStore covers book buy-back submissions.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.BookSubmission) error
	GetByID(ctx context.Context, id uint64) (model.BookSubmission, error)
	ListAll(ctx context.Context) ([]model.BookSubmission, error)
	ListBySeller(ctx context.Context, email string) ([]model.BookSubmission, error)
	Update(ctx context.Context, s *model.BookSubmission) error
}

// BlogStore covers blog and news posts.
type BlogStore interface {
	Create(ctx context.Context, b *model.Blog) error
	GetByID(ctx context.Context, id uint64) (model.Blog, error)
	List(ctx context.Context, typ string) ([]model.Blog, error)
	Update(ctx context.Context, b *model.Blog) error
	Delete(ctx context.Context, id uint64) error
}

// OrderStore covers order listing for the admin and customer views.
type OrderStore interface {
	ListAll(ctx context.Context) ([]model.Order, error)
	ListByEmail(ctx context.Context, email string) ([]model.Order, error)
}

// UserStore covers registration and login.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, isAdmin bool, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}
