package notify

import (
	"context"

	"bill_reminder_bot/internal/domain/account"
)

// Notifier delivers a reminder about an account's pending bill. The
// implementation decides recipient, template and transport. Dispatch is
// fire-and-forget from the scheduler's point of view: errors are logged
// by the caller and never retried here.
type Notifier interface {
	Notify(ctx context.Context, acc *account.Account) error
}
