package queue_publisher

import (
	"context"
	"time"

	"github.com/iliyamo/facility-access-control/internal/model"
	q "github.com/iliyamo/facility-access-control/internal/queue"
)

// BrokerNotifier adapts the publish functions to the engine's Notifier
// interfaces.  Each notification runs in its own goroutine on a detached
// context so a slow or absent broker can never stretch a scan response.
type BrokerNotifier struct{}

// AdmissionCommitted implements admission.Notifier.
func (BrokerNotifier) AdmissionCommitted(_ context.Context, rec model.AttendanceRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = PublishAccessAdmitted(ctx, q.AccessAdmittedEvent{
			RecordID:   rec.ID,
			FacilityID: rec.FacilityID,
			SlotID:     rec.SlotID,
			MemberID:   rec.MemberID,
			Date:       rec.Date,
			ScannedAt:  rec.ScannedAt.UTC().Format(time.RFC3339),
			Method:     rec.Method,
			Outcome:    "admitted",
		})
	}()
}

// WaitlistChanged implements waitlist.Notifier.
func (BrokerNotifier) WaitlistChanged(_ context.Context, entry model.WaitlistEntry, change string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = PublishWaitlistChanged(ctx, q.WaitlistChangedEvent{
			EntryID:   entry.ID,
			SlotID:    entry.SlotID,
			MemberID:  entry.MemberID,
			Date:      entry.Date,
			Position:  entry.Position,
			Status:    string(entry.Status),
			Change:    change,
			ChangedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()
}
