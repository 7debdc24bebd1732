package interfaces

import "context"

type AppConfigRepository interface {
	// ContributionExemptDrivers reads the admin allow-list of driver uids.
	// Returns an empty slice when the config document is absent.
	ContributionExemptDrivers(ctx context.Context) ([]string, error)
}
