package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/repository"
)

func TestAccountRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	createdAt := time.Now().UTC()
	companyName := "Acme Realty"
	image := "https://cdn.example.com/avatar.png"
	account := domain.Account{
		ID:           "acc-123",
		Username:     "johndoe",
		Name:         "John Doe",
		Email:        "john@example.com",
		Phone:        "+911234567890",
		PasswordHash: "bcrypt-hash",
		Role:         domain.RoleAgent,
		CompanyName:  &companyName,
		Image:        &image,
		CreatedAt:    createdAt,
	}

	mock.ExpectExec(`INSERT INTO iam\.accounts`).
		WithArgs(
			account.ID,
			account.Username,
			account.Name,
			account.Email,
			account.Phone,
			account.PasswordHash,
			"AGENT",
			companyName,
			image,
			(*time.Time)(nil),
			(*time.Time)(nil),
			createdAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_Create_UniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectExec(`INSERT INTO iam\.accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_accounts_username"})

	err = repo.Create(context.Background(), domain.Account{
		ID:        "acc-1",
		Username:  "johndoe",
		Role:      domain.RoleBuyer,
		CreatedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatalf("expected an error")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected *pgconn.PgError to survive wrapping, got %v", err)
	}
	if pgErr.ConstraintName != "uq_accounts_username" {
		t.Fatalf("expected constraint name to survive, got %q", pgErr.ConstraintName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	createdAt := time.Now().UTC()
	verifiedAt := createdAt.Add(-time.Hour)

	rows := pgxmock.NewRows([]string{
		"id", "username", "name", "email", "phone", "password_hash", "role", "company_name", "image", "email_verified_at", "mobile_verified_at", "created_at",
	}).AddRow(
		"acc-1", "johndoe", "John Doe", "john@example.com", "+911234567890", "bcrypt-hash", "BUYER", nil, nil, verifiedAt, nil, createdAt,
	)

	mock.ExpectQuery(`SELECT .*FROM iam\.accounts WHERE username = \$1`).
		WithArgs("johndoe").
		WillReturnRows(rows)

	account, err := repo.GetByUsername(context.Background(), "johndoe")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if account.ID != "acc-1" {
		t.Fatalf("expected account id acc-1, got %s", account.ID)
	}
	if account.Role != domain.RoleBuyer {
		t.Fatalf("expected buyer role, got %s", account.Role)
	}
	if account.CompanyName != nil {
		t.Fatalf("expected nil company name for a null column")
	}
	if account.EmailVerifiedAt == nil || !account.EmailVerifiedAt.Equal(verifiedAt) {
		t.Fatalf("expected email verification stamp to be populated")
	}
	if account.MobileVerifiedAt != nil {
		t.Fatalf("expected nil mobile verification stamp for a null column")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByUsername_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM iam\.accounts`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByUsername(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByVerifiedEmail_FiltersUnverified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	// The verified filter lives in the SQL so the partial unique index and
	// the lookup agree on which rows count.
	mock.ExpectQuery(`SELECT .*FROM iam\.accounts WHERE email = \$1 AND email_verified_at IS NOT NULL`).
		WithArgs("john@example.com").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByVerifiedEmail(context.Background(), "john@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_SetEmailVerified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	verifiedAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE iam\.accounts SET email_verified_at = COALESCE\(email_verified_at, \$1\) WHERE id = \$2`).
		WithArgs(verifiedAt, "acc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetEmailVerified(context.Background(), "acc-1", verifiedAt); err != nil {
		t.Fatalf("SetEmailVerified returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_SetMobileVerified_MissingAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectExec(`UPDATE iam\.accounts SET mobile_verified_at`).
		WithArgs(pgxmock.AnyArg(), "acc-missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SetMobileVerified(context.Background(), "acc-missing", time.Now().UTC()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
