package billing

import (
	"context"
	"fmt"

	"google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/option"
)

// purchaseStatePurchased is the androidpublisher purchaseState for a
// completed, non-cancelled purchase.
const purchaseStatePurchased = 0

// GooglePlayVerifier validates purchase tokens against the Google Play
// Developer API. The service account behind the credentials must have
// Play Console access to the app.
type GooglePlayVerifier struct {
	service *androidpublisher.Service
}

func NewGooglePlayVerifier(ctx context.Context, credentialsFile string) (*GooglePlayVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	service, err := androidpublisher.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize androidpublisher service: %w", err)
	}

	return &GooglePlayVerifier{service: service}, nil
}

func (v *GooglePlayVerifier) Verify(ctx context.Context, purchase *Purchase) (bool, error) {
	result, err := v.service.Purchases.Products.
		Get(purchase.PackageName, purchase.ProductID, purchase.PurchaseToken).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("failed to query purchase state: %w", err)
	}

	return result.PurchaseState == purchaseStatePurchased, nil
}
