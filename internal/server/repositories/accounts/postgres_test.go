package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "email", "password_hash", "first_name", "last_name", "phone_number",
	"is_active", "email_verified", "created_at", "updated_at", "last_login_at",
	"loyalty_points", "loyalty_tier"}

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func accountRow(id string) *sqlmock.Rows {
	return sqlmock.NewRows(columns).
		AddRow(id, "a@x.com", "$2a$hash", "Ann", nil, nil, true, false, created, nil, nil, int64(1100), "SILVER")
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*email,.*loyalty_tier\)\s*VALUES\s*\(\$1,.*\$13\)\s*$`

	first := "Ann"
	mock.ExpectExec(q).
		WithArgs("id-1", "a@x.com", "hash", first, nil, nil, true, false, created, nil, nil, int64(0), "BRONZE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &models.Account{ID: "id-1", Email: "a@x.com", PasswordHash: "hash", FirstName: &first,
		IsActive: true, CreatedAt: created, LoyaltyTier: models.TierBronze}
	got, err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), &models.Account{ID: "id-1", Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO accounts`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{ID: "id-1", Email: "a@x.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*email,.*loyalty_tier\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("id-1").WillReturnRows(accountRow("id-1"))

	got, err := repo.GetByID(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Ann", *got.FirstName)
	assert.Nil(t, got.LastName)
	assert.Nil(t, got.UpdatedAt)
	assert.Equal(t, int64(1100), got.LoyaltyPoints)
	assert.Equal(t, models.TierSilver, got.LoyaltyTier)
	assert.Equal(t, created, got.CreatedAt)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("ghost@x.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestExistsByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT EXISTS \(SELECT 1 FROM accounts WHERE email = \$1\)$`
	mock.ExpectQuery(q).WithArgs("a@x.com").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuildListQuery(t *testing.T) {
	active := true
	minPoints := int64(500)

	query, args := buildListQuery(Filter{Active: &active, Tier: models.TierGold, EmailContains: "50%_off", MinPoints: &minPoints})

	assert.Contains(t, query, `WHERE is_active = $1 AND loyalty_tier = $2 AND email LIKE '%' || $3 || '%' AND loyalty_points >= $4 ORDER BY created_at, id`)
	assert.Equal(t, []any{true, "GOLD", `50\%\_off`, int64(500)}, args)

	query, args = buildListQuery(Filter{})
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestList_ScansRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("id-1", "a@x.com", "h", nil, nil, nil, true, false, created, nil, nil, int64(0), "BRONZE").
		AddRow("id-2", "b@x.com", "h", nil, nil, "+100", true, true, created, created, created, int64(7000), "GOLD")
	mock.ExpectQuery(`FROM accounts WHERE is_active = \$1 ORDER BY created_at, id$`).WithArgs(true).WillReturnRows(rows)

	active := true
	got, err := repo.List(context.Background(), Filter{Active: &active})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "+100", *got[1].PhoneNumber)
	assert.Equal(t, created, *got[1].LastLoginAt)
}

func TestList_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM accounts ORDER BY`).WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdate_LocksRowAndWritesBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM accounts WHERE id = \$1 FOR UPDATE$`).WithArgs("id-1").WillReturnRows(accountRow("id-1"))
	mock.ExpectExec(`(?s)^UPDATE\s+accounts\s+SET.*WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("id-1", "Ann", nil, nil, true, false, sqlmock.AnyArg(), nil, int64(5100), "GOLD").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	got, err := repo.Update(context.Background(), "id-1", func(a *models.Account) error {
		a.ApplyPoints(4000)
		a.UpdatedAt = &now
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5100), got.LoyaltyPoints)
	assert.Equal(t, models.TierGold, got.LoyaltyTier)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFoundRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE$`).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "missing", func(*models.Account) error {
		t.Fatal("fn must not run for a missing row")
		return nil
	})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_FnErrorRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE$`).WithArgs("id-1").WillReturnRows(accountRow("id-1"))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "id-1", func(*models.Account) error {
		return common.ErrorValidation
	})
	assert.ErrorIs(t, err, common.ErrorValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	require.NoError(t, NewPostgresRepository(db).Ping(context.Background()))
}
