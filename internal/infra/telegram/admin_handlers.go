package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bill_reminder_bot/internal/app"
	"bill_reminder_bot/internal/domain/account"
	idb "bill_reminder_bot/internal/infra/database"
	"bill_reminder_bot/internal/infra/scheduler"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers wires the admin-only diagnostic and maintenance
// commands. Every handler checks the sender against the configured
// admin Telegram ID before doing anything.
func RegisterAdminHandlers(
	b *telebot.Bot,
	accountService *app.AccountService,
	registry *scheduler.JobRegistry,
	adminTelegramID int64,
	baseLogger *logrus.Entry,
) {
	b.Handle("/jobs", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/jobs",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		jobs := registry.List()
		if len(jobs) == 0 {
			return c.Send("No reminder jobs scheduled.")
		}
		var sb strings.Builder
		for _, j := range jobs {
			fmt.Fprintf(&sb, "accountId: %s, next fire: %s\n", j.AccountID, j.NextFire.Format(time.RFC1123))
		}
		handlerLogger.WithField("jobs", len(jobs)).Info("Job list requested")
		return c.Send(sb.String())
	})

	b.Handle("/accounts", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/accounts",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		accounts, err := accountService.ListAccounts(ctx)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list accounts")
			return c.Send("Error: could not list accounts.")
		}
		if len(accounts) == 0 {
			return c.Send("No accounts tracked.")
		}
		var sb strings.Builder
		for _, acc := range accounts {
			fmt.Fprintf(&sb, "%s (%s): %s due %s, reminder %s\n",
				acc.Name, acc.ID, acc.NextDue.Amount.StringFixed(2),
				acc.NextDue.DueDate.Format("01-02-2006"), acc.ReminderPolicy)
		}
		return c.Send(sb.String())
	})

	b.Handle("/pay", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/pay",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		args := c.Args()
		// Expected format: /pay <AccountID> <Amount>
		if len(args) != 2 {
			return c.Send("Invalid format. Use: /pay <AccountID> <Amount>")
		}
		accountID, err := uuid.Parse(args[0])
		if err != nil {
			return c.Send("Error: AccountID must be a valid UUID.")
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return c.Send("Error: Amount must be a number.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		acc, err := accountService.PayBill(ctx, accountID, amount)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, idb.ErrAccountNotFound):
				logWithError.Warn("Account not found")
				return c.Send(fmt.Sprintf("Error: account %s does not exist.", accountID))
			case errors.Is(err, account.ErrInvalidFrequency):
				logWithError.Warn("Invalid billing frequency")
				return c.Send("Error: the account has an invalid billing frequency.")
			default:
				logWithError.Error("Failed to record payment")
				return c.Send("Error: could not record the payment.")
			}
		}
		handlerLogger.WithField("account_id", accountID).Info("Payment recorded")
		return c.Send(fmt.Sprintf("Payment recorded for %s. Next bill due %s.",
			acc.Name, acc.NextDue.DueDate.Format("01-02-2006")))
	})
}
