package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/bookmarket/internal/model"
)

// BlogRepo provides CRUD operations for admin-authored blog and news posts.
type BlogRepo struct {
	DB *sql.DB
}

// NewBlogRepo returns a new BlogRepo bound to the given database.
func NewBlogRepo(db *sql.DB) *BlogRepo { return &BlogRepo{DB: db} }

// Create inserts a post and populates its generated ID.
func (r *BlogRepo) Create(ctx context.Context, b *model.Blog) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO blogs (title, content, excerpt, type) VALUES (?,?,?,?)`,
		b.Title, b.Content, b.Excerpt, b.Type)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID fetches a post by id. Returns ErrNotFound when absent.
func (r *BlogRepo) GetByID(ctx context.Context, id uint64) (model.Blog, error) {
	var b model.Blog
	var excerpt sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, content, excerpt, type, created_at, updated_at
		 FROM blogs WHERE id=? LIMIT 1`, id).
		Scan(&b.ID, &b.Title, &b.Content, &excerpt, &b.Type, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Blog{}, ErrNotFound
	}
	if err != nil {
		return model.Blog{}, err
	}
	b.Excerpt = excerpt.String
	return b, nil
}

// List returns posts newest first. When typ is non-empty only posts of that
// type (blog or news) are returned.
func (r *BlogRepo) List(ctx context.Context, typ string) ([]model.Blog, error) {
	q := `SELECT id, title, content, excerpt, type, created_at, updated_at FROM blogs`
	args := []any{}
	if typ != "" {
		q += ` WHERE type=?`
		args = append(args, typ)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Blog{}
	for rows.Next() {
		var b model.Blog
		var excerpt sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &b.Content, &excerpt, &b.Type,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Excerpt = excerpt.String
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update rewrites a post's mutable columns. Returns ErrNotFound when the
// post does not exist.
func (r *BlogRepo) Update(ctx context.Context, b *model.Blog) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE blogs SET title=?, content=?, excerpt=?, type=? WHERE id=?`,
		b.Title, b.Content, b.Excerpt, b.Type, b.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, b.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a post. Returns ErrNotFound when nothing was deleted.
func (r *BlogRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM blogs WHERE id=?`, id)
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
