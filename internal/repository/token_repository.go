package repository

import (
	"context"
	"database/sql"
)

// TokenRepo reads the entrance token registry owned by the provisioning
// collaborator.  Tokens are stored only as SHA-256 hex digests; the raw
// credential never reaches the database.  Provisioning guarantees each
// digest belongs to at most one facility, and the engine's router defends
// against a violation rather than assuming it.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo returns a TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// Facilities returns the ids of every facility whose active token set
// contains the digest.  More than one id indicates a provisioning fault
// the caller must hard-fail.
func (r *TokenRepo) Facilities(ctx context.Context, digest string) ([]uint64, error) {
	const q = `SELECT facility_id FROM entrance_tokens WHERE token_digest = ? AND is_active = 1`
	rows, err := r.db.QueryContext(ctx, q, digest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Active reports whether the digest is an active credential of the
// facility.
func (r *TokenRepo) Active(ctx context.Context, facilityID uint64, digest string) (bool, error) {
	const q = `SELECT 1 FROM entrance_tokens WHERE facility_id = ? AND token_digest = ? AND is_active = 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, facilityID, digest).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
