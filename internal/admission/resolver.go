package admission

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/facility-access-control/internal/model"
)

// DefaultGraceWindow is the lead time before a slot's start during which an
// early arrival is assigned to that upcoming slot instead of being rejected.
const DefaultGraceWindow = 10 * time.Minute

// Sentinel errors returned by ResolveSlot.  The controller maps each to a
// denial reason; none of them is a fault.
var (
	ErrNoSlotsToday       = errors.New("no active slots today")
	ErrSessionWindowEnded = errors.New("session window ended")
	ErrBeforeOpening      = errors.New("before opening")
	ErrBetweenSlots       = errors.New("between slots")
)

// ResolverOptions tunes slot resolution per facility.
type ResolverOptions struct {
	// Grace is the early-arrival window; zero means DefaultGraceWindow.
	Grace time.Duration
	// RejectEarly rejects arrivals more than Grace before the first slot
	// of the day instead of assigning them to it.  The permissive default
	// mirrors facilities that open their doors ahead of the first session.
	RejectEarly bool
}

func (o ResolverOptions) grace() time.Duration {
	if o.Grace <= 0 {
		return DefaultGraceWindow
	}
	return o.Grace
}

// ResolveSlot picks the single slot a scan at `now` should be attributed
// to.  It considers only active slots recurring on now's weekday, in
// ascending start order:
//
//  1. a slot whose [start, end) window contains now wins;
//  2. otherwise the next slot starting within the grace window of now;
//  3. otherwise, before the first slot of the day, policy decides between
//     assigning the first slot and rejecting (ErrBeforeOpening);
//  4. ErrBetweenSlots in a dead gap between sessions, ErrSessionWindowEnded
//     at or after the last slot's end, ErrNoSlotsToday when nothing runs.
//
// Two slots sharing a start time are a catalog error and surface as
// ErrConfigFault.  The input slice is never mutated; resolution sorts a
// copy, so a fixed catalog and a fixed now always yield the same answer.
func ResolveSlot(slots []model.TimeSlot, now time.Time, opts ResolverOptions) (model.TimeSlot, error) {
	day := now.Weekday()
	todays := make([]model.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.Active && s.RunsOn(day) {
			todays = append(todays, s)
		}
	}
	if len(todays) == 0 {
		return model.TimeSlot{}, ErrNoSlotsToday
	}
	sort.Slice(todays, func(i, j int) bool { return todays[i].Start < todays[j].Start })
	for i := 1; i < len(todays); i++ {
		if todays[i].Start == todays[i-1].Start {
			return model.TimeSlot{}, fmt.Errorf("%w: slots %d and %d share start time %02d:%02d",
				ErrConfigFault, todays[i-1].ID, todays[i].ID, todays[i].Start/60, todays[i].Start%60)
		}
	}

	grace := opts.grace()
	for i, s := range todays {
		start, end := s.StartAt(now), s.EndAt(now)
		if !now.Before(start) && now.Before(end) {
			return s, nil
		}
		if now.Before(start) {
			if start.Sub(now) <= grace {
				return s, nil
			}
			if i == 0 {
				if opts.RejectEarly {
					return model.TimeSlot{}, ErrBeforeOpening
				}
				return s, nil
			}
			// After the previous slot ended but more than the grace
			// window before this one starts.
			return model.TimeSlot{}, ErrBetweenSlots
		}
	}
	return model.TimeSlot{}, ErrSessionWindowEnded
}
