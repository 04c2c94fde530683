package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bill_reminder_bot/internal/domain/account"
	"bill_reminder_bot/internal/infra/scheduler"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler is the slice of the scheduler the account flows
// need. Satisfied by *scheduler.ReminderScheduler.
type ReminderScheduler interface {
	Reschedule(acc *account.Account) (*scheduler.Job, error)
	Cancel(accountID uuid.UUID)
}

// AccountService carries the account CRUD flows together with their
// scheduling obligations: every mutation that can move the due date or
// change the reminder policy reschedules synchronously, and deletion
// cancels the job.
//
// Scheduling setup failures never roll back the persistence write. The
// saved entity is returned alongside the scheduling error so the caller
// can reflect the failure without losing the bill: losing financial
// records over a reminder bug is strictly worse than a missed reminder.
type AccountService struct {
	accountRepo account.Repository
	sched       ReminderScheduler
	logger      *logrus.Entry
}

func NewAccountService(accountRepo account.Repository, sched ReminderScheduler, logger *logrus.Entry) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		sched:       sched,
		logger:      logger,
	}
}

// CreateAccount persists a new account seeded with its first bill and
// schedules its reminder.
func (s *AccountService) CreateAccount(
	ctx context.Context,
	userID uuid.UUID,
	name, url string,
	freq account.Frequency,
	policy account.ReminderPolicy,
	dueDate time.Time,
	amount decimal.Decimal,
) (*account.Account, error) {
	if _, err := account.MonthInterval(freq); err != nil {
		return nil, err
	}

	firstBill := account.Bill{DueDate: dueDate, Amount: amount}
	acc := &account.Account{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           name,
		URL:            nullString(url),
		Frequency:      freq,
		ReminderPolicy: policy,
		NotifyEnabled:  true,
		NextDue:        firstBill,
		Bills:          []account.Bill{firstBill},
	}
	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return s.rescheduleSaved(acc)
}

// UpdateAccount edits the account's properties and reschedules, since
// frequency or policy changes invalidate the current job.
func (s *AccountService) UpdateAccount(
	ctx context.Context,
	accountID uuid.UUID,
	name, url string,
	freq account.Frequency,
	policy account.ReminderPolicy,
	notifyEnabled bool,
) (*account.Account, error) {
	if _, err := account.MonthInterval(freq); err != nil {
		return nil, err
	}

	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account for update: %w", err)
	}
	acc.Name = name
	acc.URL = nullString(url)
	acc.Frequency = freq
	acc.ReminderPolicy = policy
	acc.NotifyEnabled = notifyEnabled
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return s.rescheduleSaved(acc)
}

// PayBill marks the current bill paid, advances to the next cycle and
// reschedules so the next reminder reflects the new due date.
// ErrInvalidFrequency propagates before anything is saved.
func (s *AccountService) PayBill(ctx context.Context, accountID uuid.UUID, paidAmount decimal.Decimal) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account for payment: %w", err)
	}
	current := acc.CurrentBill()
	if current == nil {
		return nil, fmt.Errorf("account %s has no pending bill", accountID)
	}

	next, err := account.AdvanceCycle(current, acc.Frequency, paidAmount)
	if err != nil {
		return nil, err
	}
	acc.Bills = append(acc.Bills, next)
	acc.NextDue = next
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return s.rescheduleSaved(acc)
}

// DeleteAccount cancels the reminder job and removes the account.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	s.sched.Cancel(accountID)
	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

func (s *AccountService) ListUserAccounts(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	return s.accountRepo.ListByUser(ctx, userID)
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	return s.accountRepo.ListAll(ctx)
}

// rescheduleSaved runs the scheduling half of a mutation. acc is
// already persisted, so a scheduling failure returns the saved entity
// together with the error.
func (s *AccountService) rescheduleSaved(acc *account.Account) (*account.Account, error) {
	if _, err := s.sched.Reschedule(acc); err != nil {
		s.logger.WithField("account_id", acc.ID).WithError(err).Error("Account saved but reminder scheduling failed")
		return acc, fmt.Errorf("account %s saved, reminder scheduling failed: %w", acc.ID, err)
	}
	return acc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
