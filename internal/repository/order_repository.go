package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/bookmarket/internal/model"
)

// OrderRepo provides access to orders and their item snapshots. Order rows
// are written exactly once per payment session: the unique index on
// stripe_session_id converts a second reconciliation of the same session
// into ErrDuplicateSession instead of a duplicate order.
type OrderRepo struct {
	DB *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// GetBySessionID fetches the order reconciled for a payment session,
// including its items. Returns ErrNotFound when the session has no order.
func (r *OrderRepo) GetBySessionID(ctx context.Context, sessionID string) (model.Order, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, stripe_session_id, customer_name, customer_email,
			ship_line1, ship_line2, ship_city, ship_state, ship_postal_code,
			ship_country, total, status, created_at
		 FROM orders WHERE stripe_session_id=? LIMIT 1`, sessionID)
	o, err := scanOrder(row)
	if err != nil {
		return model.Order{}, err
	}
	o.Items, err = r.itemsFor(ctx, o.ID)
	return o, err
}

// CreateWithStockDecrement inserts the order, its items, and the stock
// decrement for the purchased product in one transaction, so a crash can
// never leave a completed order without the matching stock change. A
// duplicate session id surfaces as ErrDuplicateSession with no side effect.
func (r *OrderRepo) CreateWithStockDecrement(ctx context.Context, o *model.Order, productID uint64, quantity int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (stripe_session_id, customer_name, customer_email,
			ship_line1, ship_line2, ship_city, ship_state, ship_postal_code,
			ship_country, total, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		o.StripeSessionID, o.CustomerName, o.CustomerEmail,
		o.ShippingAddress.Line1, o.ShippingAddress.Line2, o.ShippingAddress.City,
		o.ShippingAddress.State, o.ShippingAddress.PostalCode, o.ShippingAddress.Country,
		o.Total, o.Status)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateSession
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, title, author, price, quantity)
			 VALUES (?,?,?,?,?,?)`,
			o.ID, it.ProductID, it.Title, it.Author, it.Price, it.Quantity); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE listings SET stock = stock - ? WHERE id=?`, quantity, productID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListAll returns every order, newest first, with items attached.
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT id, stripe_session_id, customer_name, customer_email,
			ship_line1, ship_line2, ship_city, ship_state, ship_postal_code,
			ship_country, total, status, created_at
		 FROM orders ORDER BY created_at DESC, id DESC`)
}

// ListByEmail returns the orders belonging to one customer, newest first.
func (r *OrderRepo) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT id, stripe_session_id, customer_name, customer_email,
			ship_line1, ship_line2, ship_city, ship_state, ship_postal_code,
			ship_country, total, status, created_at
		 FROM orders WHERE customer_email=? ORDER BY created_at DESC, id DESC`, email)
}

func (r *OrderRepo) list(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.itemsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT product_id, title, author, price, quantity
		 FROM order_items WHERE order_id=? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Author, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.StripeSessionID, &o.CustomerName, &o.CustomerEmail,
		&o.ShippingAddress.Line1, &o.ShippingAddress.Line2, &o.ShippingAddress.City,
		&o.ShippingAddress.State, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.Total, &o.Status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Order{}, ErrNotFound
	}
	return o, err
}
