package account

import (
	"errors"
	"testing"
	"time"
)

func TestMonthInterval(t *testing.T) {
	cases := []struct {
		freq Frequency
		want int
	}{
		{FrequencyMonthly, 1},
		{FrequencyQuarterly, 3},
		{FrequencySemiAnnually, 6},
		{FrequencyAnnually, 12},
	}
	for _, c := range cases {
		got, err := MonthInterval(c.freq)
		if err != nil {
			t.Errorf("MonthInterval(%q): unexpected error: %v", c.freq, err)
		}
		if got != c.want {
			t.Errorf("MonthInterval(%q) = %d, want %d", c.freq, got, c.want)
		}
	}
}

func TestMonthInterval_Invalid(t *testing.T) {
	for _, freq := range []Frequency{"", "weekly", "Monthly"} {
		if _, err := MonthInterval(freq); !errors.Is(err, ErrInvalidFrequency) {
			t.Errorf("MonthInterval(%q): want ErrInvalidFrequency, got %v", freq, err)
		}
	}
}

func TestReminderOffset(t *testing.T) {
	cases := []struct {
		policy ReminderPolicy
		offset time.Duration
		ok     bool
	}{
		{ReminderDayBefore, -24 * time.Hour, true},
		{ReminderSameDay, 0, true},
		{ReminderWeekBefore, -7 * 24 * time.Hour, true},
		{ReminderNone, 0, false},
		{ReminderPolicy("biweekly"), 0, false},
		{ReminderPolicy(""), 0, false},
	}
	for _, c := range cases {
		offset, ok := ReminderOffset(c.policy)
		if ok != c.ok || offset != c.offset {
			t.Errorf("ReminderOffset(%q) = (%v, %v), want (%v, %v)", c.policy, offset, ok, c.offset, c.ok)
		}
	}
}

func TestCurrentBill(t *testing.T) {
	acc := &Account{}
	if acc.CurrentBill() != nil {
		t.Error("CurrentBill on empty history should be nil")
	}

	first := Bill{DueDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
	second := Bill{DueDate: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)}
	acc.Bills = []Bill{first, second}

	got := acc.CurrentBill()
	if got == nil || !got.DueDate.Equal(second.DueDate) {
		t.Errorf("CurrentBill = %+v, want the last history entry", got)
	}

	// The accessor must alias the slice entry, not copy it.
	got.IsPaid = true
	if !acc.Bills[1].IsPaid {
		t.Error("CurrentBill should return a pointer into the history")
	}
}
