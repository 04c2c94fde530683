package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User is the owner of tracked accounts and the recipient of reminders.
// Username is the user's email address.
type User struct {
	ID             uuid.UUID
	Username       string
	PasswordHash   string
	FirstName      string
	LastName       string
	TelegramChatID sql.NullInt64 // set once the user links the Telegram bot
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
