package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Firebase FirebaseConfig `mapstructure:"firebase" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// FirebaseConfig configures the identity provider admin client and the
// verification of the ID tokens it issues.
type FirebaseConfig struct {
	ProjectID string `mapstructure:"project_id" validate:"required"`
	// CredentialsBase64 is a base64 encoded service account JSON document.
	// When empty, application default credentials are used.
	CredentialsBase64 string `mapstructure:"credentials_base64"`
	// JWKSURL publishes the keys that sign ID tokens.
	JWKSURL string `mapstructure:"jwks_url" validate:"required,url"`
	// ResetContinueURL is where the reset page sends the user afterwards.
	ResetContinueURL string `mapstructure:"reset_continue_url" validate:"omitempty,url"`
	// RequestTimeoutSeconds bounds every admin API call.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// StorageConfig configures the bucket that holds profile images.
type StorageConfig struct {
	Bucket        string `mapstructure:"bucket" validate:"required"`
	Folder        string `mapstructure:"folder" validate:"required"`
	PublicBaseURL string `mapstructure:"public_base_url" validate:"required,url"`
}

// SMTPConfig configures the outgoing mail server used for reset messages.
type SMTPConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required,email"`
	TLS      bool   `mapstructure:"tls"`
}

// RedisConfig configures the optional profile cache. An empty URL disables it.
type RedisConfig struct {
	URL        string `mapstructure:"url" validate:"omitempty,url"`
	TTLMinutes int    `mapstructure:"ttl_minutes" validate:"gt=0"`
}

// TaskConfig configures the background worker pool.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}
