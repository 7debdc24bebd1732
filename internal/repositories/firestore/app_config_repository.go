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

const (
	appConfigCollection = "app_config"
	exemptDriversDoc    = "contribution_exempt_drivers"
)

type appConfigRepository struct {
	client *firestore.Client
}

func NewAppConfigRepository(client *firestore.Client) interfaces.AppConfigRepository {
	return &appConfigRepository{client: client}
}

func (r *appConfigRepository) ContributionExemptDrivers(ctx context.Context) ([]string, error) {
	snap, err := r.client.Collection(appConfigCollection).Doc(exemptDriversDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exempt driver list: %w", err)
	}

	var list models.ContributionExemptList
	if err := snap.DataTo(&list); err != nil {
		return nil, fmt.Errorf("failed to decode exempt driver list: %w", err)
	}

	return list.DriverUIDs, nil
}
