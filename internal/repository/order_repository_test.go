package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nota0515/bhakti/internal/model"
)

func sampleOrder() (model.Order, []model.OrderItem) {
	o := model.Order{
		ID:         "ord-1",
		UserID:     7,
		MandalID:   3,
		Subtotal:   110,
		Total:      110,
		PayeeUpiID: "ganesh@upi",
		Status:     model.OrderStatusCreated,
	}
	items := []model.OrderItem{
		{OrderID: "ord-1", ItemID: "modak", ItemName: "Traditional Modak", Quantity: 2, Price: 30},
		{OrderID: "ord-1", ItemID: "ladoo", ItemName: "Sacred Ladoo", Quantity: 1, Price: 50},
	}
	return o, items
}

func TestOrderCreateCommitsOrderAndItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)
	o, items := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, o.UserID, o.MandalID, o.Subtotal, o.DeliveryFee, o.Total, o.PayeeUpiID, o.Status).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(o.ID, "modak", "Traditional Modak", uint32(2), uint32(30)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(o.ID, "ladoo", "Sacred Ladoo", uint32(1), uint32(50)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), &o, items))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreateRollsBackOnItemFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)
	o, items := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &o, items)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusGuardedTransition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)

	mock.ExpectExec("UPDATE orders SET status=\\?").
		WithArgs(model.OrderStatusProcessing, "ord-1", model.OrderStatusCreated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "ord-1", model.OrderStatusCreated, model.OrderStatusProcessing))
}

func TestUpdateStatusStaleTransitionConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)

	// The order already moved on; the guarded UPDATE touches no rows.
	mock.ExpectExec("UPDATE orders SET status=\\?").
		WithArgs(model.OrderStatusProcessing, "ord-1", model.OrderStatusCreated).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "ord-1", model.OrderStatusCreated, model.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListByUserNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)

	now := time.Now()
	cols := []string{"id", "user_id", "mandal_id", "subtotal_rupees", "delivery_fee_rupees",
		"total_rupees", "payee_upi_id", "status", "created_at", "updated_at"}
	mock.ExpectQuery("FROM orders WHERE user_id=\\? ORDER BY created_at DESC").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("ord-2", 7, 3, 100, 0, 100, "ganesh@upi", model.OrderStatusCompleted, now, now).
			AddRow("ord-1", 7, 3, 110, 200, 310, "ganesh@upi", model.OrderStatusCompleted, now.Add(-time.Hour), now))

	orders, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-2", orders[0].ID)
	assert.Equal(t, uint32(310), orders[1].Total)
}
