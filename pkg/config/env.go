package config

const (
	EnvPrefix = "CARWASH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultSQLitePath = "instance/carwash.db"

	EnvAppEnv       = "CARWASH_APP_ENV"
	EnvPort         = "CARWASH_APP_PORT"
	EnvHost         = "CARWASH_APP_HOST"
	EnvLogLevel     = "CARWASH_LOG_LEVEL"
	EnvLogWarnStack = "CARWASH_LOG_WARN_STACK"

	EnvDBDSN      = "CARWASH_DB_DSN"
	EnvDBDriver   = "CARWASH_DB_DRIVER"
	EnvDBHost     = "CARWASH_DB_HOST"
	EnvDBPort     = "CARWASH_DB_PORT"
	EnvDBUser     = "CARWASH_DB_USER"
	EnvDBPassword = "CARWASH_DB_PASSWORD"
	EnvDBName     = "CARWASH_DB_NAME"
	EnvDBSSLMode  = "CARWASH_DB_SSLMODE"

	EnvRedisURL  = "CARWASH_REDIS_URL"
	EnvRedisAddr = "CARWASH_REDIS_ADDR"

	EnvAutoMigrate  = "CARWASH_AUTO_MIGRATE"
	EnvSeedServices = "CARWASH_SEED_SERVICES"

	EnvStaticDir      = "CARWASH_STATIC_DIR"
	EnvCORSOrigins    = "CARWASH_CORS_ORIGINS"
	EnvIdempotencyTTL = "CARWASH_IDEMPOTENCY_TTL"

	EnvRollingWindowDays = "CARWASH_REPORTS_ROLLING_DAYS"
	EnvRecentSalesLimit  = "CARWASH_REPORTS_RECENT_SALES_LIMIT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
