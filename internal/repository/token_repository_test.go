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

func TestValidateRefreshLiveToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("hash-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(24*time.Hour), nil))

	uid, err := repo.ValidateRefresh(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestValidateRefreshExpiredToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("hash-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(-time.Minute), nil))

	_, err := repo.ValidateRefresh(context.Background(), "hash-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestValidateRefreshRevokedTokenReportsReuse(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("hash-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(24*time.Hour), time.Now().Add(-time.Hour)))

	uid, err := repo.ValidateRefresh(context.Background(), "hash-1")
	assert.ErrorIs(t, err, ErrTokenReused)
	// The owner is still reported so the caller can revoke the family.
	assert.Equal(t, uint64(7), uid)
}
