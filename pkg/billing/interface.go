package billing

import "context"

// Purchase identifies one in-app purchase receipt to verify.
type Purchase struct {
	PackageName   string
	ProductID     string
	PurchaseToken string
}

// PurchaseVerifier checks a purchase token against the billing provider.
// Verify returns (false, nil) for a token the provider rejects and a non-nil
// error only when verification itself could not be performed.
type PurchaseVerifier interface {
	Verify(ctx context.Context, purchase *Purchase) (bool, error)
}
