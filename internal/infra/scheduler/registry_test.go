package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

func newTestRegistry(t *testing.T) (*JobRegistry, *cron.Cron) {
	t.Helper()
	c := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))
	return NewJobRegistry(c), c
}

func addEntry(t *testing.T, c *cron.Cron, expr string) cron.EntryID {
	t.Helper()
	id, err := c.AddFunc(expr, func() {})
	if err != nil {
		t.Fatalf("AddFunc(%q): %v", expr, err)
	}
	return id
}

func TestRegisterReplacesExistingEntry(t *testing.T) {
	r, c := newTestRegistry(t)
	accountID := uuid.New()

	first := addEntry(t, c, "0 0 9 3 6 *")
	r.Register(accountID, first, "0 0 9 3 6 *")
	second := addEntry(t, c, "0 0 9 10 6 *")
	r.Register(accountID, second, "0 0 9 10 6 *")

	list := r.List()
	if len(list) != 1 {
		t.Fatalf("expected exactly one entry for the account, got %d", len(list))
	}
	if list[0].AccountID != accountID || list[0].Expr != "0 0 9 10 6 *" {
		t.Errorf("unexpected entry: %+v", list[0])
	}
	// The first handle must be canceled, not just shadowed.
	if got := len(c.Entries()); got != 1 {
		t.Errorf("cron engine holds %d entries, want 1", got)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r, c := newTestRegistry(t)
	accountID := uuid.New()

	r.Register(accountID, addEntry(t, c, "0 0 9 3 6 *"), "0 0 9 3 6 *")
	r.Unregister(accountID)
	r.Unregister(accountID) // second call is a no-op, not an error

	if r.Len() != 0 {
		t.Errorf("registry should be empty, has %d entries", r.Len())
	}
	if got := len(c.Entries()); got != 0 {
		t.Errorf("cron engine holds %d entries, want 0", got)
	}
}

func TestUnregisterUnknownAccount(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Unregister(uuid.New()) // must not panic or error
}

func TestClear(t *testing.T) {
	r, c := newTestRegistry(t)
	for i := 0; i < 3; i++ {
		r.Register(uuid.New(), addEntry(t, c, "0 0 9 3 6 *"), "0 0 9 3 6 *")
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("registry should be empty after Clear, has %d entries", r.Len())
	}
	if got := len(c.Entries()); got != 0 {
		t.Errorf("cron engine holds %d entries after Clear, want 0", got)
	}
}
