package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// SubscriptionRepo reads subscription records.  The payment collaborator
// is the sole writer of status, payment_due and next_payment_date; the
// engine only ever reads here, so there are no insert or update methods.
type SubscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepo returns a SubscriptionRepo bound to the database.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// ByMember returns the member's subscription with the facility, or
// (nil, nil) when none exists — an absent record is an expected state
// (member never registered), not a storage failure.
func (r *SubscriptionRepo) ByMember(ctx context.Context, facilityID, memberID uint64) (*model.Subscription, error) {
	const q = `SELECT id, member_id, facility_id, status, payment_due, next_payment_date
               FROM subscriptions
               WHERE facility_id = ? AND member_id = ?`
	var s model.Subscription
	var status string
	var next sql.NullTime
	err := r.db.QueryRowContext(ctx, q, facilityID, memberID).Scan(
		&s.ID, &s.MemberID, &s.FacilityID, &status, &s.PaymentDue, &next,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Status = model.SubscriptionStatus(status)
	if next.Valid {
		d := next.Time.In(time.UTC)
		s.NextPaymentDate = &d
	}
	return &s, nil
}
