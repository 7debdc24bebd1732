package interfaces

import (
	"context"
	"time"

	"traka/internal/models"
)

type UserRepository interface {
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByPhoneNumbers resolves registered accounts for a normalized
	// phone list. Implementations chunk the lookup to fit the storage
	// layer's in-query ceiling.
	FindByPhoneNumbers(ctx context.Context, phones []string) ([]*models.User, error)

	UpdateFields(ctx context.Context, uid string, updates map[string]interface{}) error

	// IncrementTotalServed bumps totalPenumpangServed atomically.
	IncrementTotalServed(ctx context.Context, uid string, n int64) error

	// SetContributionPaid records a paid-up watermark together with a
	// server-assigned contributionLastPaidAt.
	SetContributionPaid(ctx context.Context, uid string, paidUpToCount int64) error

	// SetContributionExempt pins contributionPaidUpToCount to the exempt
	// sentinel value.
	SetContributionExempt(ctx context.Context, uid string, value int64) error

	// ListScheduledForDeletion returns users whose scheduledDeletionAt is at
	// or before now, up to limit.
	ListScheduledForDeletion(ctx context.Context, now time.Time, limit int) ([]*models.User, error)

	Delete(ctx context.Context, uid string) error
}
