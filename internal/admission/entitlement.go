package admission

import (
	"time"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// CheckEntitlement decides whether a member's subscription currently
// permits check-in, independent of eligibility or capacity.  A nil
// subscription means the member never registered with this facility.
//
// Overdue handling: the payment collaborator sets PaymentDue from a batch
// job, and NextPaymentDate is independently inspectable.  The two can
// disagree when the job lags, so the gate takes their fail-closed union —
// the PaymentDue flag alone denies, a NextPaymentDate strictly before
// today alone denies, and neither can override the other to admit.  A
// stale batch job therefore can delay a denial's reason code but never
// admit an overdue member.
func CheckEntitlement(sub *model.Subscription, today time.Time) Decision {
	if sub == nil {
		return deny(ReasonNoSubscription)
	}
	if sub.Status != model.SubscriptionActive {
		return deny("subscription-" + string(sub.Status))
	}
	if sub.PaymentDue {
		return deny(ReasonPaymentOverdue)
	}
	if d := sub.NextPaymentDate; d != nil {
		due := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		if now.After(due) {
			return deny(ReasonPaymentOverdue)
		}
	}
	return allow()
}
