package model

import "time"

// SubscriptionStatus is the lifecycle state of a member's subscription.
// The payment collaborator is the sole writer of this state; the engine
// only reads it.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription records a member's standing with a facility.  A record is
// created pending on registration, becomes active on the first successful
// payment and flips PaymentDue once NextPaymentDate passes without a new
// payment.  A batch job eventually moves overdue subscriptions to
// suspended, but the engine must not assume that job has run.
//
// Fields:
//  ID              – primary key identifier.
//  MemberID        – one subscription per member per facility.
//  FacilityID      – facility this subscription covers.
//  Status          – lifecycle state, see SubscriptionStatus.
//  PaymentDue      – set by the payment collaborator when a payment lapses.
//  NextPaymentDate – next date a payment is due; nil when not scheduled.
type Subscription struct {
	ID              uint64             // subscriptions.id
	MemberID        uint64             // subscriptions.member_id
	FacilityID      uint64             // subscriptions.facility_id
	Status          SubscriptionStatus // subscriptions.status
	PaymentDue      bool               // subscriptions.payment_due
	NextPaymentDate *time.Time         // subscriptions.next_payment_date (nullable)
}
