package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/bookmarket/internal/model"
)

// SubmissionRepo provides access to book buy-back submissions. Status
// transitions are decided in the handler layer; the repository persists
// whatever state it is given.
type SubmissionRepo struct {
	DB *sql.DB
}

// NewSubmissionRepo returns a new SubmissionRepo bound to the given database.
func NewSubmissionRepo(db *sql.DB) *SubmissionRepo { return &SubmissionRepo{DB: db} }

const submissionColumns = `id, title, author, isbn, publisher, publication_year,
	category, book_condition, description, images, seller_name, seller_email,
	seller_phone, status, offer_amount, notes, created_at, updated_at`

// Create inserts a submission and populates its generated ID.
func (r *SubmissionRepo) Create(ctx context.Context, s *model.BookSubmission) error {
	images, err := encodeImages(s.Images)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO book_submissions (title, author, isbn, publisher,
			publication_year, category, book_condition, description, images,
			seller_name, seller_email, seller_phone, status, offer_amount, notes)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.Title, s.Author, s.ISBN, s.Publisher, s.PublicationYear, s.Category,
		s.Condition, s.Description, images, s.SellerName, s.SellerEmail,
		s.SellerPhone, s.Status, s.OfferAmount, s.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a submission by id. Returns ErrNotFound when absent.
func (r *SubmissionRepo) GetByID(ctx context.Context, id uint64) (model.BookSubmission, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM book_submissions WHERE id=? LIMIT 1`, id)
	return scanSubmission(row)
}

// ListAll returns every submission, newest first. Admin view.
func (r *SubmissionRepo) ListAll(ctx context.Context) ([]model.BookSubmission, error) {
	return r.list(ctx,
		`SELECT `+submissionColumns+` FROM book_submissions
		 ORDER BY created_at DESC, id DESC`)
}

// ListBySeller returns the submissions owned by one seller email, newest
// first. Non-admin callers are restricted to this view.
func (r *SubmissionRepo) ListBySeller(ctx context.Context, email string) ([]model.BookSubmission, error) {
	return r.list(ctx,
		`SELECT `+submissionColumns+` FROM book_submissions
		 WHERE seller_email=? ORDER BY created_at DESC, id DESC`, email)
}

// Update rewrites all mutable columns of a submission.
func (r *SubmissionRepo) Update(ctx context.Context, s *model.BookSubmission) error {
	images, err := encodeImages(s.Images)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE book_submissions SET title=?, author=?, isbn=?, publisher=?,
			publication_year=?, category=?, book_condition=?, description=?,
			images=?, seller_name=?, seller_email=?, seller_phone=?, status=?,
			offer_amount=?, notes=?
		 WHERE id=?`,
		s.Title, s.Author, s.ISBN, s.Publisher, s.PublicationYear, s.Category,
		s.Condition, s.Description, images, s.SellerName, s.SellerEmail,
		s.SellerPhone, s.Status, s.OfferAmount, s.Notes, s.ID)
	return err
}

func (r *SubmissionRepo) list(ctx context.Context, q string, args ...any) ([]model.BookSubmission, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookSubmission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSubmission(row rowScanner) (model.BookSubmission, error) {
	var s model.BookSubmission
	var images, description, notes sql.NullString
	var offer sql.NullFloat64
	err := row.Scan(&s.ID, &s.Title, &s.Author, &s.ISBN, &s.Publisher,
		&s.PublicationYear, &s.Category, &s.Condition, &description, &images,
		&s.SellerName, &s.SellerEmail, &s.SellerPhone, &s.Status, &offer,
		&notes, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.BookSubmission{}, ErrNotFound
	}
	if err != nil {
		return model.BookSubmission{}, err
	}
	s.Description = description.String
	s.Notes = notes.String
	if offer.Valid {
		v := offer.Float64
		s.OfferAmount = &v
	}
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &s.Images); err != nil {
			return model.BookSubmission{}, err
		}
	}
	return s, nil
}
