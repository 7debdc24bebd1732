package config

type BillingConfig struct {
	PackageName     string `yaml:"package_name"`
	CredentialsFile string `yaml:"credentials_file"`
	// SkipVerification wires the static verifier instead of the Play
	// Developer API. Development only.
	SkipVerification bool `yaml:"skip_verification"`
}

func loadBillingConfig() *BillingConfig {
	return &BillingConfig{
		PackageName:      getEnv("BILLING_PACKAGE_NAME", "id.traka.app"),
		CredentialsFile:  getEnv("BILLING_CREDENTIALS_FILE", ""),
		SkipVerification: getEnvAsBool("BILLING_SKIP_VERIFICATION", false),
	}
}
