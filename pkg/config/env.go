package config

const EnvPrefix = "CATALOG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv     = "CATALOG_APP_ENV"
	EnvPort       = "CATALOG_APP_PORT"
	EnvDBDSN      = "CATALOG_DB_DSN"
	EnvDBDriver   = "CATALOG_DB_DRIVER"
	EnvDBHost     = "CATALOG_DB_HOST"
	EnvDBUser     = "CATALOG_DB_USER"
	EnvDBName     = "CATALOG_DB_NAME"
	EnvRedisURL   = "CATALOG_REDIS_URL"
	EnvJWTSecret  = "CATALOG_JWT_SECRET"
	EnvJWTIssuer  = "CATALOG_JWT_ISSUER"
	EnvJWTExpMins = "CATALOG_JWT_EXPIRATION_MINUTES"
	EnvCORSOrigin = "CATALOG_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
