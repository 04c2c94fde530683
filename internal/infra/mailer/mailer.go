package mailer

import (
	"context"
	"fmt"
	"strings"

	"bill_reminder_bot/internal/domain/account"
	"bill_reminder_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const dueDateFormat = "01-02-2006"

// Mailer sends bill reminders over SMTP, resolving the recipient from
// the account's owner.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	userRepo user.Repository
	logger   *logrus.Entry
}

func New(host string, port int, username, password, from string, userRepo user.Repository, logger *logrus.Entry) *Mailer {
	return &Mailer{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Notify emails the account's owner about the pending bill.
func (m *Mailer) Notify(ctx context.Context, acc *account.Account) error {
	owner, err := m.userRepo.GetByID(ctx, acc.UserID)
	if err != nil {
		return fmt.Errorf("resolve reminder recipient for account %s: %w", acc.ID, err)
	}
	msg := m.compose(acc, owner)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reminder mail to %s: %w", owner.Username, err)
	}
	m.logger.WithFields(logrus.Fields{
		"account_id": acc.ID,
		"to":         owner.Username,
	}).Info("Reminder mail sent")
	return nil
}

func (m *Mailer) compose(acc *account.Account, owner *user.User) *gomail.Message {
	dueDate := acc.NextDue.DueDate.Format(dueDateFormat)
	name := strings.TrimSpace(owner.FirstName + " " + owner.LastName)
	if name == "" {
		name = "user"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", owner.Username)
	msg.SetHeader("Subject", fmt.Sprintf("Reminder! Your bill for %s is due on %s", acc.Name, dueDate))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\tYou have a bill due on %s for %s. Once you pay this bill revisit the app to record your payment.\n\nSincerely,\nThe Bill Reminder Team",
		name, dueDate, acc.Name))
	return msg
}
