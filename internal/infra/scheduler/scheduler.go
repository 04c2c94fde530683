package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bill_reminder_bot/internal/domain/account"
	"bill_reminder_bot/internal/domain/notify"
	idb "bill_reminder_bot/internal/infra/database" // For ErrAccountNotFound

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ErrMissingDueDate reports an account whose pending bill has no usable
// due date. Scheduling is skipped and the caller decides how to surface
// it; the underlying account write must not be rolled back over it.
var ErrMissingDueDate = errors.New("account has no usable due date")

// Job describes one registered reminder.
type Job struct {
	AccountID uuid.UUID
	Expr      string
}

// ReminderScheduler owns the cron engine and the job registry and turns
// account state into scheduled reminder checks. Jobs live in memory
// only; RebuildAll replays every persisted account at process start.
type ReminderScheduler struct {
	cronEngine   *cron.Cron
	registry     *JobRegistry
	accountRepo  account.Repository
	notifier     notify.Notifier
	logger       *logrus.Entry
	checkTimeout time.Duration
}

func NewReminderScheduler(
	accountRepo account.Repository,
	notifier notify.Notifier,
	logger *logrus.Entry,
) *ReminderScheduler {
	cronEngine := cron.New(cron.WithSeconds(), cron.WithLocation(time.Local))
	return &ReminderScheduler{
		cronEngine:   cronEngine,
		registry:     NewJobRegistry(cronEngine),
		accountRepo:  accountRepo,
		notifier:     notifier,
		logger:       logger,
		checkTimeout: 1 * time.Minute,
	}
}

// Registry exposes the read-only diagnostic view of scheduled jobs.
func (s *ReminderScheduler) Registry() *JobRegistry {
	return s.registry
}

func (s *ReminderScheduler) Start() {
	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started")
}

func (s *ReminderScheduler) Stop() {
	ctx := s.cronEngine.Stop() // waits for running fire callbacks
	<-ctx.Done()
	s.logger.Info("Reminder scheduler stopped")
}

// Schedule registers the recurring reminder check for the account,
// replacing whatever job was registered before. A nil job with a nil
// error means the account's policy disables reminders; any prior job
// has then been canceled, which is the correct behavior when a user
// turns reminders off.
func (s *ReminderScheduler) Schedule(acc *account.Account) (*Job, error) {
	bill := acc.CurrentBill()
	if bill == nil || bill.DueDate.IsZero() {
		return nil, fmt.Errorf("account %s: %w", acc.ID, ErrMissingDueDate)
	}

	fireAt, ok := BuildFireTime(bill.DueDate, acc.ReminderPolicy)
	if !ok {
		s.registry.Unregister(acc.ID)
		s.logger.WithField("account_id", acc.ID).Debug("Reminders disabled for account, nothing scheduled")
		return nil, nil
	}

	accountID := acc.ID
	expr := cronExpr(fireAt)
	entryID, err := s.cronEngine.AddFunc(expr, func() {
		s.runCheck(accountID)
	})
	if err != nil {
		return nil, fmt.Errorf("add reminder job for account %s: %w", accountID, err)
	}
	s.registry.Register(accountID, entryID, expr)
	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"cron_expr":  expr,
		"fire_at":    fireAt.Format(time.RFC3339),
	}).Info("Reminder scheduled")

	// A fire time already in the past (e.g. a bill edited to a past due
	// date) still gets one immediate check; the recurring entry stays
	// registered for the next occurrence.
	if fireAt.Before(time.Now()) {
		go s.runCheck(accountID)
	}

	return &Job{AccountID: accountID, Expr: expr}, nil
}

// Reschedule is Schedule. Replace-on-register makes recomputing from
// scratch safe after any due-date, frequency or policy edit, so there
// is no separate update algorithm.
func (s *ReminderScheduler) Reschedule(acc *account.Account) (*Job, error) {
	return s.Schedule(acc)
}

// Cancel removes the account's reminder job, if any. Idempotent.
func (s *ReminderScheduler) Cancel(accountID uuid.UUID) {
	s.registry.Unregister(accountID)
}

// RebuildAll drops every registered job and schedules all persisted
// accounts again, in storage order. Called once at process start.
// Per-account scheduling failures are logged and skipped: one broken
// account must not keep the rest unscheduled.
func (s *ReminderScheduler) RebuildAll(ctx context.Context) error {
	s.registry.Clear()
	accounts, err := s.accountRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list accounts for schedule rebuild: %w", err)
	}
	for _, acc := range accounts {
		if _, err := s.Schedule(acc); err != nil {
			s.logger.WithField("account_id", acc.ID).WithError(err).Warn("Skipping account during schedule rebuild")
		}
	}
	s.logger.WithField("jobs", s.registry.Len()).Info("Reminder schedule rebuilt")
	return nil
}

// runCheck is the fire callback. The account is reloaded by ID because
// the snapshot captured at scheduling time may be stale: the due date,
// the policy or the notify flag may have changed since. Every outcome
// here is terminal for this one fire only and never propagates.
func (s *ReminderScheduler) runCheck(accountID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), s.checkTimeout)
	defer cancel()

	log := s.logger.WithField("account_id", accountID)
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, idb.ErrAccountNotFound) {
			// Account deleted since scheduling; routine cleanup.
			s.registry.Unregister(accountID)
			log.Info("Account gone, reminder job removed")
			return
		}
		log.WithError(err).Error("Could not reload account for reminder check")
		return
	}
	if !acc.NotifyEnabled {
		// Fired but suppressed, not canceled: the flag may be switched
		// back on before the next natural fire.
		log.Debug("Notifications disabled, reminder suppressed")
		return
	}
	if err := s.notifier.Notify(ctx, acc); err != nil {
		log.WithError(err).Error("Reminder dispatch failed")
	}
}
