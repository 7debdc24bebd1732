package firestore

import (
	"context"
	"fmt"

	"traka/internal/models"
	"traka/internal/repositories/interfaces"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type codeRepository struct {
	client *firestore.Client
}

func NewCodeRepository(client *firestore.Client) interfaces.CodeRepository {
	return &codeRepository{client: client}
}

func (r *codeRepository) Get(ctx context.Context, scope models.CodeScope, key string) (*models.VerificationCode, error) {
	snap, err := r.client.Collection(string(scope)).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get verification code: %w", err)
	}

	var code models.VerificationCode
	if err := snap.DataTo(&code); err != nil {
		return nil, fmt.Errorf("failed to decode verification code: %w", err)
	}

	return &code, nil
}

func (r *codeRepository) Replace(ctx context.Context, scope models.CodeScope, key string, code *models.VerificationCode) error {
	ref := r.client.Collection(string(scope)).Doc(key)

	// Delete first so a creation trigger fires again on re-issue.
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to clear prior code: %w", err)
	}

	if _, err := ref.Set(ctx, code); err != nil {
		return fmt.Errorf("failed to write verification code: %w", err)
	}

	return nil
}

func (r *codeRepository) Delete(ctx context.Context, scope models.CodeScope, key string) error {
	if _, err := r.client.Collection(string(scope)).Doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}
	return nil
}
