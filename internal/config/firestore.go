package config

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	DatabaseID      string `yaml:"database_id"`
}

func loadFirestoreConfig() *FirestoreConfig {
	return &FirestoreConfig{
		ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		DatabaseID:      getEnv("FIRESTORE_DATABASE_ID", "(default)"),
	}
}
