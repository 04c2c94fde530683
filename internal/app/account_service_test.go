package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"bill_reminder_bot/internal/domain/account"
	idb "bill_reminder_bot/internal/infra/database"
	"bill_reminder_bot/internal/infra/scheduler"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*account.Account
	updates  int
}

func newFakeAccountRepo(accounts ...*account.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[uuid.UUID]*account.Account)}
	for _, acc := range accounts {
		r.accounts[acc.ID] = acc
	}
	return r
}

func (r *fakeAccountRepo) Create(ctx context.Context, acc *account.Account) error {
	r.accounts[acc.ID] = acc
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return nil, idb.ErrAccountNotFound
	}
	return acc, nil
}

func (r *fakeAccountRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListAll(ctx context.Context) ([]*account.Account, error) {
	list := make([]*account.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		list = append(list, acc)
	}
	return list, nil
}

func (r *fakeAccountRepo) Update(ctx context.Context, acc *account.Account) error {
	if _, ok := r.accounts[acc.ID]; !ok {
		return idb.ErrAccountNotFound
	}
	r.accounts[acc.ID] = acc
	r.updates++
	return nil
}

func (r *fakeAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.accounts[id]; !ok {
		return idb.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

type fakeScheduler struct {
	reschedules []uuid.UUID
	cancels     []uuid.UUID
	err         error
}

func (s *fakeScheduler) Reschedule(acc *account.Account) (*scheduler.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.reschedules = append(s.reschedules, acc.ID)
	return &scheduler.Job{AccountID: acc.ID}, nil
}

func (s *fakeScheduler) Cancel(accountID uuid.UUID) {
	s.cancels = append(s.cancels, accountID)
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testAccount() *account.Account {
	bill := account.Bill{
		DueDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.NewFromInt(30),
	}
	return &account.Account{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Name:           "electric",
		Frequency:      account.FrequencyMonthly,
		ReminderPolicy: account.ReminderDayBefore,
		NotifyEnabled:  true,
		NextDue:        bill,
		Bills:          []account.Bill{bill},
	}
}

func TestCreateAccountSchedulesReminder(t *testing.T) {
	repo := newFakeAccountRepo()
	sched := &fakeScheduler{}
	svc := NewAccountService(repo, sched, testLogger())

	acc, err := svc.CreateAccount(context.Background(), uuid.New(), "internet", "https://isp.example",
		account.FrequencyMonthly, account.ReminderWeekBefore,
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), decimal.NewFromInt(55))
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if len(acc.Bills) != 1 || !acc.Bills[0].DueDate.Equal(acc.NextDue.DueDate) {
		t.Errorf("account should start with one bill mirrored in NextDue: %+v", acc)
	}
	if !acc.NotifyEnabled {
		t.Error("new accounts should have notifications enabled")
	}
	if len(sched.reschedules) != 1 || sched.reschedules[0] != acc.ID {
		t.Errorf("expected one reschedule for %s, got %v", acc.ID, sched.reschedules)
	}
}

func TestCreateAccountInvalidFrequency(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, &fakeScheduler{}, testLogger())

	_, err := svc.CreateAccount(context.Background(), uuid.New(), "internet", "",
		account.Frequency("weekly"), account.ReminderNone,
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(55))
	if !errors.Is(err, account.ErrInvalidFrequency) {
		t.Fatalf("want ErrInvalidFrequency, got %v", err)
	}
	if len(repo.accounts) != 0 {
		t.Error("nothing should be persisted for an invalid frequency")
	}
}

func TestCreateAccountSavedDespiteSchedulingFailure(t *testing.T) {
	repo := newFakeAccountRepo()
	sched := &fakeScheduler{err: errors.New("cron exploded")}
	svc := NewAccountService(repo, sched, testLogger())

	acc, err := svc.CreateAccount(context.Background(), uuid.New(), "internet", "",
		account.FrequencyMonthly, account.ReminderDayBefore,
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(55))
	if err == nil {
		t.Fatal("expected the scheduling error to surface")
	}
	if acc == nil {
		t.Fatal("the saved account must be returned alongside the error")
	}
	if _, ok := repo.accounts[acc.ID]; !ok {
		t.Error("the account must stay persisted when scheduling fails")
	}
}

func TestPayBillAdvancesCycleAndReschedules(t *testing.T) {
	acc := testAccount()
	repo := newFakeAccountRepo(acc)
	sched := &fakeScheduler{}
	svc := NewAccountService(repo, sched, testLogger())

	got, err := svc.PayBill(context.Background(), acc.ID, decimal.NewFromInt(35))
	if err != nil {
		t.Fatalf("PayBill: %v", err)
	}

	if len(got.Bills) != 2 {
		t.Fatalf("history has %d bills, want 2", len(got.Bills))
	}
	paid := got.Bills[0]
	if !paid.IsPaid || !paid.DatePaid.Valid {
		t.Errorf("previous bill should be closed as paid: %+v", paid)
	}
	wantDue := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	if !got.NextDue.DueDate.Equal(wantDue) {
		t.Errorf("next due date = %s, want %s", got.NextDue.DueDate, wantDue)
	}
	if !got.NextDue.Amount.Equal(decimal.NewFromInt(35)) {
		t.Errorf("next amount = %s, want 35", got.NextDue.Amount)
	}
	if got.CurrentBill() == nil || !got.CurrentBill().DueDate.Equal(wantDue) {
		t.Error("NextDue must mirror the last history entry after payment")
	}
	if len(sched.reschedules) != 1 {
		t.Errorf("expected one reschedule after payment, got %d", len(sched.reschedules))
	}
}

func TestPayBillUnknownAccount(t *testing.T) {
	svc := NewAccountService(newFakeAccountRepo(), &fakeScheduler{}, testLogger())

	_, err := svc.PayBill(context.Background(), uuid.New(), decimal.NewFromInt(35))
	if !errors.Is(err, idb.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestDeleteAccountCancelsJob(t *testing.T) {
	acc := testAccount()
	repo := newFakeAccountRepo(acc)
	sched := &fakeScheduler{}
	svc := NewAccountService(repo, sched, testLogger())

	if err := svc.DeleteAccount(context.Background(), acc.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if len(sched.cancels) != 1 || sched.cancels[0] != acc.ID {
		t.Errorf("expected a cancel for %s, got %v", acc.ID, sched.cancels)
	}
	if _, ok := repo.accounts[acc.ID]; ok {
		t.Error("account should be deleted")
	}
}
