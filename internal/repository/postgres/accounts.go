package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/core/port"
	"github.com/thegrihome/realty-platform-iam/internal/repository"
)

const accountsTable = "iam.accounts"

var accountColumns = []string{
	"id",
	"username",
	"name",
	"email",
	"phone",
	"password_hash",
	"role",
	"company_name",
	"image",
	"email_verified_at",
	"mobile_verified_at",
	"created_at",
}

// pgExecutor abstracts the pgx surface the repository needs so it can run
// against a pool, a transaction, or a mock.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository persists accounts in PostgreSQL. Uniqueness is enforced
// by the schema: a plain unique index on username and partial unique indexes
// on email and phone scoped to verified rows. Violations surface as
// *pgconn.PgError with code 23505 so callers can translate by constraint.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository creates an account repository backed by the given
// executor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	clone := *r
	clone.exec = tx
	return &clone
}

// Create inserts the account. Unique-index violations are returned unwrapped
// enough for errors.As to reach the *pgconn.PgError.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	var companyName any
	if account.CompanyName != nil {
		companyName = *account.CompanyName
	}
	var image any
	if account.Image != nil {
		image = *account.Image
	}

	query, args, err := r.builder.
		Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Username,
			account.Name,
			account.Email,
			account.Phone,
			account.PasswordHash,
			string(account.Role),
			companyName,
			image,
			account.EmailVerifiedAt,
			account.MobileVerifiedAt,
			account.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by primary key.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername fetches an account by its exact username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// GetByEmail fetches an account by email regardless of verification state.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetByPhone fetches an account by the phone value exactly as stored.
func (r *AccountRepository) GetByPhone(ctx context.Context, phone string) (domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"phone": phone})
}

// GetByVerifiedEmail fetches the account holding the email with a verified
// email channel. At most one such row exists per email.
func (r *AccountRepository) GetByVerifiedEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, squirrel.Expr("email_verified_at IS NOT NULL"))
}

// GetByVerifiedPhone fetches the account holding the phone number with a
// verified mobile channel.
func (r *AccountRepository) GetByVerifiedPhone(ctx context.Context, phone string) (domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"phone": phone}, squirrel.Expr("mobile_verified_at IS NOT NULL"))
}

// SetEmailVerified stamps the email channel verified. An existing stamp is
// kept so the first verification time wins.
func (r *AccountRepository) SetEmailVerified(ctx context.Context, id string, verifiedAt time.Time) error {
	return r.setVerified(ctx, id, "email_verified_at", verifiedAt)
}

// SetMobileVerified stamps the mobile channel verified, keeping an existing
// stamp.
func (r *AccountRepository) SetMobileVerified(ctx context.Context, id string, verifiedAt time.Time) error {
	return r.setVerified(ctx, id, "mobile_verified_at", verifiedAt)
}

func (r *AccountRepository) setVerified(ctx context.Context, id string, column string, verifiedAt time.Time) error {
	query, args, err := r.builder.
		Update(accountsTable).
		Set(column, squirrel.Expr("COALESCE("+column+", ?)", verifiedAt)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s sql: %w", column, err)
	}

	tag, err := r.exec.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, conds ...squirrel.Sqlizer) (domain.Account, error) {
	builder := r.builder.
		Select(accountColumns...).
		From(accountsTable)
	for _, cond := range conds {
		builder = builder.Where(cond)
	}

	query, args, err := builder.Limit(1).ToSql()
	if err != nil {
		return domain.Account{}, fmt.Errorf("build select account sql: %w", err)
	}

	return scanAccount(r.exec.QueryRow(ctx, query, args...))
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		account          domain.Account
		role             string
		companyName      sql.NullString
		image            sql.NullString
		emailVerifiedAt  sql.NullTime
		mobileVerifiedAt sql.NullTime
	)

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Name,
		&account.Email,
		&account.Phone,
		&account.PasswordHash,
		&role,
		&companyName,
		&image,
		&emailVerifiedAt,
		&mobileVerifiedAt,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, repository.ErrNotFound
		}
		return domain.Account{}, fmt.Errorf("scan account: %w", err)
	}

	account.Role = domain.Role(role)
	if companyName.Valid {
		value := companyName.String
		account.CompanyName = &value
	}
	if image.Valid {
		value := image.String
		account.Image = &value
	}
	if emailVerifiedAt.Valid {
		value := emailVerifiedAt.Time
		account.EmailVerifiedAt = &value
	}
	if mobileVerifiedAt.Valid {
		value := mobileVerifiedAt.Time
		account.MobileVerifiedAt = &value
	}
	return account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
