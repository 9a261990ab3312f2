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
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadJWT reads only the token settings, for tools that never touch the database.
func LoadJWT() (JWTConfig, error) {
	var cfg JWTConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return JWTConfig{}, fmt.Errorf("parsing jwt config: %w", err)
	}
	return cfg, nil
}

type AppConfig struct {
	Env          string        `envconfig:"CATALOG_APP_ENV" required:"true"`
	Port         string        `envconfig:"CATALOG_APP_PORT" default:"5000"`
	LogLevel     string        `envconfig:"CATALOG_LOG_LEVEL" default:"info"`
	LogFormat    string        `envconfig:"CATALOG_LOG_FORMAT" default:"json"`
	LogWarnStack bool          `envconfig:"CATALOG_LOG_WARN_STACK" default:"false"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_HTTP_WRITE_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CATALOG_DB_DSN"`
	Driver string `envconfig:"CATALOG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATALOG_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOG_DB_USER"`
	LegacyPassword string `envconfig:"CATALOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATALOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// Redis is optional; an empty URL and address disables rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"CATALOG_REDIS_URL"`
	Address      string        `envconfig:"CATALOG_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"CATALOG_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CATALOG_JWT_ISSUER"`
	ExpirationMinutes int    `envconfig:"CATALOG_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type RateLimitConfig struct {
	MutationWindow time.Duration `envconfig:"CATALOG_RATE_LIMIT_MUTATION_WINDOW" default:"1m"`
	MutationLimit  int           `envconfig:"CATALOG_RATE_LIMIT_MUTATION_LIMIT" default:"60"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CATALOG_CORS_ALLOWED_ORIGINS" default:"*"`
}

type FeatureFlagsConfig struct {
	AutoMigrate       bool `envconfig:"CATALOG_AUTO_MIGRATE" default:"false"`
	AutoMigrateSQLite bool `envconfig:"CATALOG_AUTO_MIGRATE_SQLITE" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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

	if db.Driver != DriverPostgres {
		return fmt.Errorf("%s is required for driver %q", EnvDBDSN, db.Driver)
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
