package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/bookmarket/internal/model"
)

// ListingRepo provides CRUD operations for the consolidated listings table.
// Both content submissions and store products live here, distinguished by
// the kind column. Images are stored as a JSON array of base64 strings.
type ListingRepo struct {
	DB *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the given database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{DB: db} }

const listingColumns = `id, kind, title, description, category, author, status,
	download_link, downloads, isbn, publisher, publication_year, pages, price,
	book_condition, stock, images, created_at, updated_at`

// Create inserts a listing and populates its generated ID.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	images, err := encodeImages(l.Images)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO listings (kind, title, description, category, author, status,
			download_link, isbn, publisher, publication_year, pages, price,
			book_condition, stock, images)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.Kind, l.Title, l.Description, l.Category, l.Author, l.Status,
		l.DownloadLink, l.ISBN, l.Publisher, l.PublicationYear, l.Pages, l.Price,
		l.Condition, l.Stock, images)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// GetByID fetches a listing by id regardless of kind or status.
func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (model.Listing, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id=? LIMIT 1`, id)
	return scanListing(row)
}

// GetApprovedByID fetches a listing visible to the public: it must exist
// and carry status approved.
func (r *ListingRepo) GetApprovedByID(ctx context.Context, id uint64) (model.Listing, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id=? AND status=? LIMIT 1`,
		id, model.StatusApproved)
	return scanListing(row)
}

// List returns listings of the given kind, newest first. When status is
// non-empty only listings in that status are returned; limit 0 means no
// limit.
func (r *ListingRepo) List(ctx context.Context, kind, status string, limit int) ([]model.Listing, error) {
	q := `SELECT ` + listingColumns + ` FROM listings WHERE kind=?`
	args := []any{kind}
	if status != "" {
		q += ` AND status=?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update rewrites all mutable columns of a listing.
func (r *ListingRepo) Update(ctx context.Context, l *model.Listing) error {
	images, err := encodeImages(l.Images)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET title=?, description=?, category=?, author=?, status=?,
			download_link=?, isbn=?, publisher=?, publication_year=?, pages=?,
			price=?, book_condition=?, stock=?, images=?
		 WHERE id=?`,
		l.Title, l.Description, l.Category, l.Author, l.Status,
		l.DownloadLink, l.ISBN, l.Publisher, l.PublicationYear, l.Pages,
		l.Price, l.Condition, l.Stock, images, l.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Zero rows can also mean "no column changed"; verify existence.
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves a listing through the moderation state machine.
// Returns ErrNotFound when no listing has the given id.
func (r *ListingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete hard-deletes a listing. Rejecting content is a delete, so a
// missing row is reported as ErrNotFound for the handler to map.
func (r *ListingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementDownloads bumps the downloads counter of a content listing.
func (r *ListingRepo) IncrementDownloads(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET downloads = downloads + 1 WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	var images sql.NullString
	err := row.Scan(&l.ID, &l.Kind, &l.Title, &l.Description, &l.Category,
		&l.Author, &l.Status, &l.DownloadLink, &l.Downloads, &l.ISBN,
		&l.Publisher, &l.PublicationYear, &l.Pages, &l.Price, &l.Condition,
		&l.Stock, &images, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Listing{}, ErrNotFound
	}
	if err != nil {
		return model.Listing{}, err
	}
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &l.Images); err != nil {
			return model.Listing{}, err
		}
	}
	return l, nil
}

func encodeImages(images []string) (string, error) {
	if len(images) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
