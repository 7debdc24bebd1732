package billing

import "context"

// StaticVerifier accepts every non-empty token. Development wiring only;
// production uses GooglePlayVerifier.
type StaticVerifier struct{}

func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{}
}

func (v *StaticVerifier) Verify(_ context.Context, purchase *Purchase) (bool, error) {
	return purchase.PurchaseToken != "", nil
}
