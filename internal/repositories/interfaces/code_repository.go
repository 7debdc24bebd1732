package interfaces

import (
	"context"

	"traka/internal/models"
)

// CodeRepository persists verification codes, one document per scope key.
type CodeRepository interface {
	Get(ctx context.Context, scope models.CodeScope, key string) (*models.VerificationCode, error)

	// Replace deletes any prior code at the key, then writes the new one.
	// The delete-then-set pair is what makes re-issue restart the expiry
	// window and re-fire the creation trigger.
	Replace(ctx context.Context, scope models.CodeScope, key string, code *models.VerificationCode) error

	Delete(ctx context.Context, scope models.CodeScope, key string) error
}
