package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Nota0515/bhakti/internal/model"
)

// ProfileRepo reads and mutates the `profiles` table. Every user has
// exactly one profile row, created alongside the user record.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// GetByUserID fetches the profile for a user.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id,full_name,phone,has_ordered_prasad,updated_at FROM profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.UserID, &p.FullName, &p.Phone, &p.HasOrderedPrasad, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// Update replaces the mutable profile fields wholesale. Callers must
// carry forward fields they do not intend to change; the row is
// overwritten, not merged.
func (r *ProfileRepo) Update(ctx context.Context, userID uint64, fullName, phone string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET full_name=?, phone=? WHERE user_id=?",
		fullName, phone, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// MarkPrasadOrdered flips the one-way has_ordered_prasad flag. The
// WHERE clause leaves already-flagged rows untouched so replays are
// detectable by the caller through ErrConflict.
func (r *ProfileRepo) MarkPrasadOrdered(ctx context.Context, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET has_ordered_prasad=1 WHERE user_id=? AND has_ordered_prasad=0",
		userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrConflict
	}
	return err
}
