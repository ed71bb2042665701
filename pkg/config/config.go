package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Search   SearchConfig
	Sync     SyncConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	BigQuery BigQueryConfig
	Ingest   IngestConfig
	Features FeatureFlags
}

type FeatureFlags struct {
	AutoMigrate bool `envconfig:"HEALTHSCAN_FEATURE_AUTO_MIGRATE" default:"false"`
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

type AppConfig struct {
	Env          string `envconfig:"HEALTHSCAN_APP_ENV" required:"true"`
	Port         string `envconfig:"HEALTHSCAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HEALTHSCAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HEALTHSCAN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HEALTHSCAN_DB_DSN"`
	Driver string `envconfig:"HEALTHSCAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HEALTHSCAN_DB_HOST"`
	LegacyPort     int    `envconfig:"HEALTHSCAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HEALTHSCAN_DB_USER"`
	LegacyPassword string `envconfig:"HEALTHSCAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"HEALTHSCAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"HEALTHSCAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HEALTHSCAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HEALTHSCAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HEALTHSCAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HEALTHSCAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the dev/test sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"HEALTHSCAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HEALTHSCAN_REDIS_ADDR"`
	Password     string        `envconfig:"HEALTHSCAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"HEALTHSCAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HEALTHSCAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HEALTHSCAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HEALTHSCAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HEALTHSCAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HEALTHSCAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HEALTHSCAN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HEALTHSCAN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HEALTHSCAN_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SearchConfig struct {
	FetchAttempts int `envconfig:"HEALTHSCAN_SEARCH_FETCH_ATTEMPTS" default:"3"`
}

type SyncConfig struct {
	DebounceWindow time.Duration `envconfig:"HEALTHSCAN_SYNC_DEBOUNCE_WINDOW" default:"1s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"HEALTHSCAN_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"HEALTHSCAN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"HEALTHSCAN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AnalysisTopic        string `envconfig:"HEALTHSCAN_PUBSUB_ANALYSIS_TOPIC" default:"hs-analysis-results"`
	AnalysisSubscription string `envconfig:"HEALTHSCAN_PUBSUB_ANALYSIS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset             string `envconfig:"HEALTHSCAN_BIGQUERY_DATASET" default:"healthscan"`
	StatsSnapshotsTable string `envconfig:"HEALTHSCAN_BIGQUERY_STATS_TABLE" default:"stats_snapshots"`
}

type IngestConfig struct {
	IdempotencyTTL time.Duration `envconfig:"HEALTHSCAN_INGEST_IDEMPOTENCY_TTL" default:"720h"`
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
