package port

import (
	"context"
	"time"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
)

// AccountRepository exposes persistence behavior for identity records.
//
// The GetByVerified* lookups filter on the corresponding verified timestamp
// being non-null; GetByEmail and GetByPhone match regardless of verification
// state. Username lookups never take a verified filter.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (domain.Account, error)
	GetByVerifiedEmail(ctx context.Context, email string) (domain.Account, error)
	GetByVerifiedPhone(ctx context.Context, phone string) (domain.Account, error)
	SetEmailVerified(ctx context.Context, id string, verifiedAt time.Time) error
	SetMobileVerified(ctx context.Context, id string, verifiedAt time.Time) error
}
