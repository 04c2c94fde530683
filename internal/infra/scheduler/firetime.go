package scheduler

import (
	"fmt"
	"time"

	"bill_reminder_bot/internal/domain/account"
)

// BuildFireTime resolves the moment a reminder for the given due date
// should fire. ok is false when the policy disables reminders (none or
// unrecognized); the caller must then skip scheduling entirely instead
// of treating it as a failure.
func BuildFireTime(dueDate time.Time, policy account.ReminderPolicy) (fireAt time.Time, ok bool) {
	offset, ok := account.ReminderOffset(policy)
	if !ok {
		return time.Time{}, false
	}
	return dueDate.Add(offset), true
}

// cronExpr renders a fire moment as a seconds-granularity cron
// expression: second, minute, hour, day-of-month and month pinned,
// day-of-week open. The scheduling horizon never exceeds a year, so
// those five fields identify the occurrence; the expression would match
// again a year later, which the registry's replace-on-register
// discipline prevents from ever firing.
func cronExpr(t time.Time) string {
	return fmt.Sprintf("%d %d %d %d %d *", t.Second(), t.Minute(), t.Hour(), t.Day(), int(t.Month()))
}
