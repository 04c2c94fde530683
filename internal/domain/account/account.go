package account

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Frequency is how often an account's bill comes due.
type Frequency string

const (
	FrequencyMonthly      Frequency = "monthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencySemiAnnually Frequency = "semi-annually"
	FrequencyAnnually     Frequency = "annually"
)

// ErrInvalidFrequency reports an unrecognized billing frequency. Callers
// must surface it rather than fall back to a default interval: a wrong
// interval corrupts every future due date derived from it.
var ErrInvalidFrequency = fmt.Errorf("invalid billing frequency")

// MonthInterval maps a billing frequency to the number of months between
// consecutive due dates.
func MonthInterval(f Frequency) (int, error) {
	switch f {
	case FrequencyMonthly:
		return 1, nil
	case FrequencyQuarterly:
		return 3, nil
	case FrequencySemiAnnually:
		return 6, nil
	case FrequencyAnnually:
		return 12, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, f)
	}
}

// ReminderPolicy controls how far before (or at) a due date the reminder
// for a bill fires.
type ReminderPolicy string

const (
	ReminderNone       ReminderPolicy = "none"
	ReminderDayBefore  ReminderPolicy = "day-before"
	ReminderSameDay    ReminderPolicy = "same-day"
	ReminderWeekBefore ReminderPolicy = "week-before"
)

// ReminderOffset maps a reminder policy to the offset applied to a due
// date. ok is false for ReminderNone and for any unrecognized policy,
// meaning no reminder should be scheduled at all; that is a normal
// outcome, not an error, so callers check ok and skip scheduling.
// "same-day" fires exactly at due time, not 24 hours ahead of it.
func ReminderOffset(p ReminderPolicy) (offset time.Duration, ok bool) {
	switch p {
	case ReminderDayBefore:
		return -24 * time.Hour, true
	case ReminderSameDay:
		return 0, true
	case ReminderWeekBefore:
		return -7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Account represents one recurring bill a user tracks.
//
// Invariant: Bills is never empty once the account exists, entries are
// in chronological order, and the last entry is the current (pending)
// bill. NextDue mirrors that last entry until a payment re-synchronizes
// both. NotifyEnabled is a kill-switch on dispatch only: a disabled
// account still keeps its scheduled job.
type Account struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	URL            sql.NullString
	Frequency      Frequency
	ReminderPolicy ReminderPolicy
	NotifyEnabled  bool
	NextDue        Bill
	Bills          []Bill
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CurrentBill returns the pending bill (the last history entry), or nil
// when the history is empty. Call sites must use this accessor instead
// of indexing Bills directly.
func (a *Account) CurrentBill() *Bill {
	if len(a.Bills) == 0 {
		return nil
	}
	return &a.Bills[len(a.Bills)-1]
}
