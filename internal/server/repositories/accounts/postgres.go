package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

const accountColumns = `id, email, password_hash, first_name, last_name, phone_number,
		is_active, email_verified, created_at, updated_at, last_login_at,
		loyalty_points, loyalty_tier`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a                          models.Account
		firstName, lastName, phone sql.NullString
		updatedAt, lastLoginAt     sql.NullTime
		tier                       string
	)
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &firstName, &lastName, &phone,
		&a.IsActive, &a.EmailVerified, &a.CreatedAt, &updatedAt, &lastLoginAt,
		&a.LoyaltyPoints, &tier)
	if err != nil {
		return nil, err
	}
	a.FirstName = fromNullString(firstName)
	a.LastName = fromNullString(lastName)
	a.PhoneNumber = fromNullString(phone)
	a.UpdatedAt = fromNullTime(updatedAt)
	a.LastLoginAt = fromNullTime(lastLoginAt)
	a.LoyaltyTier = models.LoyaltyTier(tier)
	return &a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (` + accountColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Email, a.PasswordHash, toNullString(a.FirstName), toNullString(a.LastName), toNullString(a.PhoneNumber),
		a.IsActive, a.EmailVerified, a.CreatedAt, toNullTime(a.UpdatedAt), toNullTime(a.LastLoginAt),
		a.LoyaltyPoints, string(a.LoyaltyTier))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, db dbx.DBTX, where string, arg any) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where

	a, err := scanAccount(db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, r.db, `id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, r.db, `email = $1`, email)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildListQuery renders the filter as a parameterised WHERE clause.
func buildListQuery(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if f.Active != nil {
		add("is_active = ?", *f.Active)
	}
	if f.EmailVerified != nil {
		add("email_verified = ?", *f.EmailVerified)
	}
	if f.Tier != "" {
		add("loyalty_tier = ?", string(f.Tier))
	}
	if f.EmailContains != "" {
		add(`email LIKE '%' || ? || '%'`, likeEscaper.Replace(f.EmailContains))
	}
	if f.CreatedAfter != nil {
		add("created_at >= ?", *f.CreatedAfter)
	}
	if f.MinPoints != nil {
		add("loyalty_points >= ?", *f.MinPoints)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, id`
	return query, args
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Account, error) {
	query, args := buildListQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// mutable columns back in the same transaction. id, email, password_hash and
// created_at are never written here.
func (r *PostgresRepository) Update(ctx context.Context, id string, fn MutateFunc) (*models.Account, error) {
	var updated *models.Account

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		a, err := r.getOne(ctx, tx, `id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}

		if err := fn(a); err != nil {
			return err
		}

		query :=
			`UPDATE accounts
			 SET first_name = $2, last_name = $3, phone_number = $4,
			     is_active = $5, email_verified = $6, updated_at = $7, last_login_at = $8,
			     loyalty_points = $9, loyalty_tier = $10
			 WHERE id = $1
			 `
		_, err = tx.ExecContext(ctx, query, id,
			toNullString(a.FirstName), toNullString(a.LastName), toNullString(a.PhoneNumber),
			a.IsActive, a.EmailVerified, toNullTime(a.UpdatedAt), toNullTime(a.LastLoginAt),
			a.LoyaltyPoints, string(a.LoyaltyTier))
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
