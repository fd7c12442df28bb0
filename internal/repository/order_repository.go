package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Nota0515/bhakti/internal/model"
)

// OrderRepo persists prasad orders and their line items. Status
// transitions are guarded in SQL so they stay monotonic even if a
// caller replays one.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// CreateTx inserts an order and its items inside the given transaction.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order, items []model.OrderItem) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id,user_id,mandal_id,subtotal_rupees,delivery_fee_rupees,total_rupees,payee_upi_id,status)
		 VALUES (?,?,?,?,?,?,?,?)`,
		o.ID, o.UserID, o.MandalID, o.Subtotal, o.DeliveryFee, o.Total, o.PayeeUpiID, o.Status); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id,item_id,item_name,quantity,price_rupees) VALUES (?,?,?,?,?)",
			o.ID, it.ItemID, it.ItemName, it.Quantity, it.Price); err != nil {
			return err
		}
	}
	return nil
}

// Create persists an order with its items atomically. A failure rolls
// everything back so the same order can be submitted again.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order, items []model.OrderItem) error {
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
	if err := r.CreateTx(ctx, tx, o, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateStatus advances an order along CREATED -> PROCESSING ->
// COMPLETED. The WHERE clause pins the expected current status, so a
// stale or repeated transition affects zero rows and surfaces as
// ErrConflict instead of rewinding the order.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, from, to string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=? AND status=?",
		to, orderID, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrConflict
	}
	return err
}

// GetByID fetches an order with its items.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (model.Order, []model.OrderItem, error) {
	var o model.Order
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,user_id,mandal_id,subtotal_rupees,delivery_fee_rupees,total_rupees,payee_upi_id,status,created_at,updated_at
		 FROM orders WHERE id=? LIMIT 1`, id).
		Scan(&o.ID, &o.UserID, &o.MandalID, &o.Subtotal, &o.DeliveryFee, &o.Total,
			&o.PayeeUpiID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return o, nil, ErrNotFound
	}
	if err != nil {
		return o, nil, err
	}
	items, err := r.itemsFor(ctx, id)
	return o, items, err
}

// ListByUser returns all orders placed by a user, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,user_id,mandal_id,subtotal_rupees,delivery_fee_rupees,total_rupees,payee_upi_id,status,created_at,updated_at
		 FROM orders WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.MandalID, &o.Subtotal, &o.DeliveryFee,
			&o.Total, &o.PayeeUpiID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) itemsFor(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,order_id,item_id,item_name,quantity,price_rupees FROM order_items WHERE order_id=?",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.ItemName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
