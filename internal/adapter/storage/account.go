package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) CreateAccount(ctx context.Context, a domain.Account) (uuid.UUID, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, pass_hash, pass_salt, deposit, role)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Name, a.PassHash, a.PassSalt, a.Deposit, a.Role,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, domain.ErrDuplicateName
		}
		return uuid.Nil, fmt.Errorf("failed to create account: %w", err)
	}
	return a.ID, nil
}

func (r *AccountRepository) Account(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.scanOne(r.db.QueryRow(ctx, `
		SELECT id, name, pass_hash, pass_salt, deposit, role, created_at
		FROM users WHERE id = $1`, id))
}

func (r *AccountRepository) AccountByName(ctx context.Context, name string) (domain.Account, error) {
	return r.scanOne(r.db.QueryRow(ctx, `
		SELECT id, name, pass_hash, pass_salt, deposit, role, created_at
		FROM users WHERE name = $1`, name))
}

func (r *AccountRepository) Accounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, pass_hash, pass_salt, deposit, role, created_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.PassHash, &a.PassSalt, &a.Deposit, &a.Role, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AddDeposit credits amount in a single statement, so concurrent deposits
// on the same account serialize at the row and no update is lost.
func (r *AccountRepository) AddDeposit(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	var deposit int64
	err := r.db.QueryRow(ctx, `
		UPDATE users SET deposit = deposit + $1 WHERE id = $2
		RETURNING deposit`, amount, id).Scan(&deposit)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return deposit, nil
}

func (r *AccountRepository) ResetDeposit(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET deposit = 0 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) scanOne(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Name, &a.PassHash, &a.PassSalt, &a.Deposit, &a.Role, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	return a, nil
}
