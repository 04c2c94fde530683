package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bill_reminder_bot/internal/domain/account"

	"github.com/google/uuid"
)

// Custom errors
var ErrAccountNotFound = fmt.Errorf("account not found")
var ErrDuplicateAccountName = fmt.Errorf("account with this name already exists")

const accountColumns = `id, user_id, name, url, frequency, reminder_policy, notify_enabled,
               next_due_is_paid, next_due_date, next_due_date_paid, next_due_amount,
               created_at, updated_at`

type PostgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting account create transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO accounts (id, user_id, name, url, frequency, reminder_policy, notify_enabled,
                next_due_is_paid, next_due_date, next_due_date_paid, next_due_amount)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
               RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		acc.ID, acc.UserID, acc.Name, acc.URL, acc.Frequency, acc.ReminderPolicy, acc.NotifyEnabled,
		acc.NextDue.IsPaid, acc.NextDue.DueDate, acc.NextDue.DatePaid, acc.NextDue.Amount,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") {
			return ErrDuplicateAccountName
		}
		return fmt.Errorf("error creating account: %w", err)
	}

	if err := insertBills(ctx, tx, acc.ID, acc.Bills); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing account create: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	acc := &account.Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&acc.ID, &acc.UserID, &acc.Name, &acc.URL, &acc.Frequency, &acc.ReminderPolicy, &acc.NotifyEnabled,
		&acc.NextDue.IsPaid, &acc.NextDue.DueDate, &acc.NextDue.DatePaid, &acc.NextDue.Amount,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("error getting account by ID: %w", err)
	}

	acc.Bills, err = r.loadBills(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (r *PostgresAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY name`
	return r.list(ctx, query, userID)
}

func (r *PostgresAccountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *PostgresAccountRepository) list(ctx context.Context, query string, args ...interface{}) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0)
	for rows.Next() {
		acc := &account.Account{}
		if err := rows.Scan(
			&acc.ID, &acc.UserID, &acc.Name, &acc.URL, &acc.Frequency, &acc.ReminderPolicy, &acc.NotifyEnabled,
			&acc.NextDue.IsPaid, &acc.NextDue.DueDate, &acc.NextDue.DatePaid, &acc.NextDue.Amount,
			&acc.CreatedAt, &acc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	for _, acc := range accounts {
		if acc.Bills, err = r.loadBills(ctx, acc.ID); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (r *PostgresAccountRepository) Update(ctx context.Context, acc *account.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting account update transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE accounts
               SET name = $1, url = $2, frequency = $3, reminder_policy = $4, notify_enabled = $5,
                   next_due_is_paid = $6, next_due_date = $7, next_due_date_paid = $8, next_due_amount = $9,
                   updated_at = NOW()
               WHERE id = $10
               RETURNING updated_at`

	err = tx.QueryRowContext(ctx, query,
		acc.Name, acc.URL, acc.Frequency, acc.ReminderPolicy, acc.NotifyEnabled,
		acc.NextDue.IsPaid, acc.NextDue.DueDate, acc.NextDue.DatePaid, acc.NextDue.Amount,
		acc.ID,
	).Scan(&acc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrAccountNotFound
		}
		return fmt.Errorf("error updating account: %w", err)
	}

	// The bill history is rewritten wholesale; entries are few and the
	// position column keeps chronological order authoritative.
	if _, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE account_id = $1`, acc.ID); err != nil {
		return fmt.Errorf("error clearing bills for account update: %w", err)
	}
	if err := insertBills(ctx, tx, acc.ID, acc.Bills); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing account update: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// bills rows go with the account via ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted account rows: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresAccountRepository) loadBills(ctx context.Context, accountID uuid.UUID) ([]account.Bill, error) {
	query := `SELECT is_paid, due_date, date_paid, amount FROM bills WHERE account_id = $1 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("error loading bills: %w", err)
	}
	defer rows.Close()

	bills := make([]account.Bill, 0)
	for rows.Next() {
		var b account.Bill
		if err := rows.Scan(&b.IsPaid, &b.DueDate, &b.DatePaid, &b.Amount); err != nil {
			return nil, fmt.Errorf("error scanning bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}
	return bills, nil
}

func insertBills(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, bills []account.Bill) error {
	query := `INSERT INTO bills (account_id, position, is_paid, due_date, date_paid, amount)
               VALUES ($1, $2, $3, $4, $5, $6)`
	for i, b := range bills {
		if _, err := tx.ExecContext(ctx, query, accountID, i, b.IsPaid, b.DueDate, b.DatePaid, b.Amount); err != nil {
			return fmt.Errorf("error inserting bill %d: %w", i, err)
		}
	}
	return nil
}
