package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BAZAARLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	WhatsApp      WhatsAppConfig
	UPI           UPIConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = "file:bazaarly.db?cache=shared"
		}
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BAZAARLY_APP_ENV" required:"true"`
	Port         string `envconfig:"BAZAARLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAZAARLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAZAARLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BAZAARLY_DB_DSN"`
	Driver string `envconfig:"BAZAARLY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BAZAARLY_DB_HOST"`
	Port     int    `envconfig:"BAZAARLY_DB_PORT" default:"5432"`
	User     string `envconfig:"BAZAARLY_DB_USER"`
	Password string `envconfig:"BAZAARLY_DB_PASSWORD"`
	Name     string `envconfig:"BAZAARLY_DB_NAME"`
	SSLMode  string `envconfig:"BAZAARLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BAZAARLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAZAARLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAZAARLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAZAARLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"BAZAARLY_DB_HOST": db.Host,
		"BAZAARLY_DB_USER": db.User,
		"BAZAARLY_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("database DSN not set and %s missing", strings.Join(missing, ", "))
	}

	db.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(db.User),
		url.QueryEscape(db.Password),
		db.Host,
		db.Port,
		db.Name,
		db.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"BAZAARLY_REDIS_URL"`
	Address      string        `envconfig:"BAZAARLY_REDIS_ADDR"`
	Password     string        `envconfig:"BAZAARLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAZAARLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAZAARLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAZAARLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAZAARLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAZAARLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAZAARLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig drives token minting. ExpirationMinutes <= 0 means tokens
// never expire; logout is then purely client-side token discard.
type JWTConfig struct {
	Secret            string `envconfig:"BAZAARLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BAZAARLY_JWT_ISSUER" default:"bazaarly"`
	ExpirationMinutes int    `envconfig:"BAZAARLY_JWT_EXPIRATION_MINUTES" default:"0"`
}

// TokenTTL returns the configured access token lifetime, zero for no expiry.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BAZAARLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginAccountLimit  int           `envconfig:"BAZAARLY_AUTH_RATE_LIMIT_LOGIN_ACCOUNT_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BAZAARLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow       time.Duration `envconfig:"BAZAARLY_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupAccountLimit int           `envconfig:"BAZAARLY_AUTH_RATE_LIMIT_SIGNUP_ACCOUNT_LIMIT" default:"3"`
	SignupIPLimit      int           `envconfig:"BAZAARLY_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

// FeatureFlagsConfig gates local-development conveniences. UseSQLite
// overrides the database driver (and supplies a file DSN when none is
// set); AutoMigrate runs goose up at boot in dev.
type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BAZAARLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BAZAARLY_AUTO_MIGRATE" default:"false"`
}

// WhatsAppConfig configures the messaging provider used for order and
// vendor-application notifications. Missing credentials disable sending.
type WhatsAppConfig struct {
	AccountSID   string        `envconfig:"BAZAARLY_WHATSAPP_ACCOUNT_SID"`
	AuthToken    string        `envconfig:"BAZAARLY_WHATSAPP_AUTH_TOKEN"`
	FromNumber   string        `envconfig:"BAZAARLY_WHATSAPP_FROM_NUMBER"`
	AdminNumber  string        `envconfig:"BAZAARLY_WHATSAPP_ADMIN_NUMBER"`
	BaseURL      string        `envconfig:"BAZAARLY_WHATSAPP_BASE_URL" default:"https://api.twilio.com"`
	SendTimeout  time.Duration `envconfig:"BAZAARLY_WHATSAPP_SEND_TIMEOUT" default:"10s"`
	MaxAttempts  int           `envconfig:"BAZAARLY_WHATSAPP_MAX_ATTEMPTS" default:"3"`
	RetryDelay   time.Duration `envconfig:"BAZAARLY_WHATSAPP_RETRY_DELAY" default:"5s"`
	DrainTimeout time.Duration `envconfig:"BAZAARLY_WHATSAPP_DRAIN_TIMEOUT" default:"15s"`
}

// Configured reports whether the provider credentials are present.
func (w WhatsAppConfig) Configured() bool {
	return w.AccountSID != "" && w.AuthToken != "" && w.FromNumber != ""
}

// UPIConfig configures the deferred push-payment flow.
type UPIConfig struct {
	PayeeVPA       string `envconfig:"BAZAARLY_UPI_PAYEE_VPA"`
	PayeeName      string `envconfig:"BAZAARLY_UPI_PAYEE_NAME" default:"Bazaarly"`
	CallbackSecret string `envconfig:"BAZAARLY_UPI_CALLBACK_SECRET"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"BAZAARLY_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationsTopic        string `envconfig:"BAZAARLY_PUBSUB_NOTIFICATIONS_TOPIC"`
	NotificationsSubscription string `envconfig:"BAZAARLY_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"`
}
