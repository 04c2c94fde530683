package telegram

import (
	"context"
	"fmt"

	"bill_reminder_bot/internal/domain/account"
	"bill_reminder_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
)

const dueDateFormat = "01-02-2006"

// Notifier delivers bill reminders to the owner's linked Telegram chat.
type Notifier struct {
	client   Client
	userRepo user.Repository
	logger   *logrus.Entry
}

func NewNotifier(client Client, userRepo user.Repository, logger *logrus.Entry) *Notifier {
	return &Notifier{
		client:   client,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Notify messages the account's owner about the pending bill. Users who
// never linked a chat cannot be reached on this channel.
func (n *Notifier) Notify(ctx context.Context, acc *account.Account) error {
	owner, err := n.userRepo.GetByID(ctx, acc.UserID)
	if err != nil {
		return fmt.Errorf("resolve reminder recipient for account %s: %w", acc.ID, err)
	}
	if !owner.TelegramChatID.Valid {
		return fmt.Errorf("user %s has no linked Telegram chat", owner.ID)
	}

	text := fmt.Sprintf("Reminder! Your bill for %s is due on %s. Once you pay it, record the payment in the app.",
		acc.Name, acc.NextDue.DueDate.Format(dueDateFormat))
	if err := n.client.SendMessage(owner.TelegramChatID.Int64, text, nil); err != nil {
		return fmt.Errorf("send reminder to chat %d: %w", owner.TelegramChatID.Int64, err)
	}
	n.logger.WithFields(logrus.Fields{
		"account_id": acc.ID,
		"chat_id":    owner.TelegramChatID.Int64,
	}).Info("Reminder message sent")
	return nil
}
