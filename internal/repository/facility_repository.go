package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// FacilityRepo reads the facilities this process serves.  Facilities are
// administered out of band; the engine only lists them at startup to
// build one admission controller per facility.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo returns a FacilityRepo bound to the given database.
func NewFacilityRepo(db *sql.DB) *FacilityRepo { return &FacilityRepo{db: db} }

// List returns every facility, active or not, ordered by id.  Inactive
// facilities still get a controller so their scans deny cleanly instead
// of routing as unknown.
func (r *FacilityRepo) List(ctx context.Context) ([]model.Facility, error) {
	const q = `SELECT id, name, multi_slot, is_active FROM facilities ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.MultiSlot, &f.Active); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetByID returns a single facility or ErrNotFound.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (*model.Facility, error) {
	const q = `SELECT id, name, multi_slot, is_active FROM facilities WHERE id = ?`
	var f model.Facility
	err := r.db.QueryRowContext(ctx, q, id).Scan(&f.ID, &f.Name, &f.MultiSlot, &f.Active)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
