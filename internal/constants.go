package internal

const (
	DotEnvPath              = "./.env"
	MigrationsDir           = "migrations"
	ConfigPath              = "tagship.yml"
	RunDirLayout            = "20060102_150405000"
	DBTimestampLayout       = "2006-01-02 15:04:05"
	WebhookTriggerKeyHeader = "X-Tagship-Webhook-Key"
)
