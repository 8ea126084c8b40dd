package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	HTTP         HTTPConfig
	Reports      ReportsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Reports.RollingWindowDays <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvRollingWindowDays)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARWASH_APP_ENV" default:"dev"`
	Host         string `envconfig:"CARWASH_APP_HOST" default:"0.0.0.0"`
	Port         string `envconfig:"CARWASH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARWASH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARWASH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Addr is the listen address for the HTTP server.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

type DBConfig struct {
	DSN    string `envconfig:"CARWASH_DB_DSN"`
	Driver string `envconfig:"CARWASH_DB_DRIVER" default:"sqlite"`

	LegacyHost     string `envconfig:"CARWASH_DB_HOST"`
	LegacyPort     int    `envconfig:"CARWASH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARWASH_DB_USER"`
	LegacyPassword string `envconfig:"CARWASH_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARWASH_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARWASH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARWASH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARWASH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARWASH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARWASH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded SQLite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CARWASH_REDIS_URL"`
	Address      string        `envconfig:"CARWASH_REDIS_ADDR"`
	Password     string        `envconfig:"CARWASH_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARWASH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARWASH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARWASH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARWASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARWASH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARWASH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate  bool `envconfig:"CARWASH_AUTO_MIGRATE" default:"true"`
	SeedServices bool `envconfig:"CARWASH_SEED_SERVICES" default:"true"`
}

type HTTPConfig struct {
	StaticDir      string        `envconfig:"CARWASH_STATIC_DIR" default:"static"`
	CORSOrigins    []string      `envconfig:"CARWASH_CORS_ORIGINS" default:"*"`
	IdempotencyTTL time.Duration `envconfig:"CARWASH_IDEMPOTENCY_TTL" default:"24h"`
	ReadTimeout    time.Duration `envconfig:"CARWASH_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"CARWASH_HTTP_WRITE_TIMEOUT" default:"60s"`
}

type ReportsConfig struct {
	RollingWindowDays int `envconfig:"CARWASH_REPORTS_ROLLING_DAYS" default:"30"`
	RecentSalesLimit  int `envconfig:"CARWASH_REPORTS_RECENT_SALES_LIMIT" default:"500"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = DefaultSQLitePath
		return nil
	}
	if !strings.EqualFold(db.Driver, DriverPostgres) {
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
