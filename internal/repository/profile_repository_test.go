package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestProfileGetByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepo(db)

	now := time.Now()
	mock.ExpectQuery("SELECT user_id,full_name,phone,has_ordered_prasad,updated_at FROM profiles").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "full_name", "phone", "has_ordered_prasad", "updated_at"}).
			AddRow(7, "Ramesh Kulkarni", "9822001122", false, now))

	p, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p.UserID)
	assert.Equal(t, "Ramesh Kulkarni", p.FullName)
	assert.False(t, p.HasOrderedPrasad)
}

func TestProfileGetByUserIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectQuery("SELECT user_id,full_name,phone,has_ordered_prasad,updated_at FROM profiles").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileUpdateOverwrites(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectExec("UPDATE profiles SET full_name=\\?, phone=\\?").
		WithArgs("New Name", "", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// An empty phone overwrites the stored one; the row is replaced,
	// not merged.
	require.NoError(t, repo.Update(context.Background(), 7, "New Name", ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPrasadOrderedFlipsOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectExec("UPDATE profiles SET has_ordered_prasad=1").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkPrasadOrdered(context.Background(), 7))
}

func TestMarkPrasadOrderedReplayConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepo(db)

	// Zero affected rows means the flag was already set.
	mock.ExpectExec("UPDATE profiles SET has_ordered_prasad=1").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkPrasadOrdered(context.Background(), 7)
	assert.ErrorIs(t, err, ErrConflict)
}
