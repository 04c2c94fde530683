package account

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Bill is one due-date/payment period of an account.
type Bill struct {
	IsPaid   bool
	DueDate  time.Time
	DatePaid sql.NullTime
	Amount   decimal.Decimal
}

// AdvanceCycle closes the current bill as paid right now and derives the
// next cycle's bill: due date shifted by the frequency's month interval,
// amount set to what was just paid, fresh unpaid state. The caller
// appends the result to the account's history, sets it as NextDue and
// must reschedule the reminder afterwards, or a stale reminder will fire
// for the bill that was just paid.
//
// ErrInvalidFrequency propagates without touching the current bill.
func AdvanceCycle(current *Bill, f Frequency, paidAmount decimal.Decimal) (Bill, error) {
	interval, err := MonthInterval(f)
	if err != nil {
		return Bill{}, err
	}
	current.IsPaid = true
	current.DatePaid = sql.NullTime{Time: time.Now(), Valid: true}
	return Bill{
		DueDate: current.DueDate.AddDate(0, interval, 0),
		Amount:  paidAmount,
	}, nil
}
