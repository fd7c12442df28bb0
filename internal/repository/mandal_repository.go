package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Nota0515/bhakti/internal/model"
)

// MandalRepo persists mandal registrations and serves the public
// directory listing. Registration is a single INSERT; rows are never
// updated or deleted afterwards.
type MandalRepo struct{ DB *sql.DB }

func NewMandalRepo(db *sql.DB) *MandalRepo { return &MandalRepo{DB: db} }

const mandalColumns = "id,registered_by,name,established_year,location,address,contact_name," +
	"contact_phone,upi_id,description,specialties,delivery_available,pandal_theme," +
	"cultural_programs,previous_awards,created_at"

// Create inserts the full mandal record accumulated by the wizard and
// returns its ID. The write is atomic; a failure leaves no partial
// record behind and the same record can be submitted again.
func (r *MandalRepo) Create(ctx context.Context, m *model.Mandal) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO mandals
		(registered_by,name,established_year,location,address,contact_name,contact_phone,
		 upi_id,description,specialties,delivery_available,pandal_theme,cultural_programs,previous_awards)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.RegisteredBy, m.Name, m.EstablishedYear, m.Location, m.Address, m.ContactName,
		m.ContactPhone, m.UpiID, m.Description, m.Specialties, m.DeliveryAvailable,
		m.PandalTheme, m.CulturalPrograms, m.PreviousAwards)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all registered mandals, newest first.
func (r *MandalRepo) List(ctx context.Context) ([]model.Mandal, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+mandalColumns+" FROM mandals ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Mandal, 0)
	for rows.Next() {
		var m model.Mandal
		if err := scanMandal(rows.Scan, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID fetches a single mandal.
func (r *MandalRepo) GetByID(ctx context.Context, id uint64) (model.Mandal, error) {
	var m model.Mandal
	err := scanMandal(r.DB.QueryRowContext(ctx,
		"SELECT "+mandalColumns+" FROM mandals WHERE id=? LIMIT 1", id).Scan, &m)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

func scanMandal(scan func(...any) error, m *model.Mandal) error {
	return scan(&m.ID, &m.RegisteredBy, &m.Name, &m.EstablishedYear, &m.Location,
		&m.Address, &m.ContactName, &m.ContactPhone, &m.UpiID, &m.Description,
		&m.Specialties, &m.DeliveryAvailable, &m.PandalTheme, &m.CulturalPrograms,
		&m.PreviousAwards, &m.CreatedAt)
}
