package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "HEALTHSCAN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "HEALTHSCAN_APP_ENV"
	EnvPort      = "HEALTHSCAN_APP_PORT"
	EnvDBDSN     = "HEALTHSCAN_DB_DSN"
	EnvDBHost    = "HEALTHSCAN_DB_HOST"
	EnvDBUser    = "HEALTHSCAN_DB_USER"
	EnvDBName    = "HEALTHSCAN_DB_NAME"
	EnvRedisURL  = "HEALTHSCAN_REDIS_URL"
	EnvJWTSecret = "HEALTHSCAN_JWT_SECRET"
	EnvJWTIssuer = "HEALTHSCAN_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
