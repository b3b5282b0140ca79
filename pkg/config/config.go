package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "AUTOPARTS"

	EnvAppEnv          = "AUTOPARTS_APP_ENV"
	EnvPort            = "AUTOPARTS_APP_PORT"
	EnvLogLevel        = "AUTOPARTS_LOG_LEVEL"
	EnvCORSOrigins     = "AUTOPARTS_CORS_ORIGINS"
	EnvStorageDriver   = "AUTOPARTS_STORAGE_DRIVER"
	EnvSessionIdleTTL  = "AUTOPARTS_CART_SESSION_IDLE_TTL"
	EnvDBDSN           = "AUTOPARTS_DB_DSN"
	EnvDBDriver        = "AUTOPARTS_DB_DRIVER"
	EnvDBHost          = "AUTOPARTS_DB_HOST"
	EnvDBUser          = "AUTOPARTS_DB_USER"
	EnvDBName          = "AUTOPARTS_DB_NAME"
	EnvRedisURL        = "AUTOPARTS_REDIS_URL"
	EnvTaxRate         = "AUTOPARTS_PRICING_TAX_RATE"
	EnvCatalogPath     = "AUTOPARTS_CATALOG_PATH"
	EnvCheckoutDelay   = "AUTOPARTS_CHECKOUT_COMPLETION_DELAY"
	EnvNewsletterReset = "AUTOPARTS_NEWSLETTER_RESET_AFTER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App        AppConfig
	Storage    StorageConfig
	DB         DBConfig
	Redis      RedisConfig
	Pricing    PricingConfig
	Catalog    CatalogConfig
	Checkout   CheckoutConfig
	Newsletter NewsletterConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.UsesSQL() {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Storage.UsesRedis() && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("either %s or AUTOPARTS_REDIS_ADDR is required for the redis storage driver", EnvRedisURL)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AUTOPARTS_APP_ENV" required:"true"`
	Port         string `envconfig:"AUTOPARTS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AUTOPARTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOPARTS_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"AUTOPARTS_AUTO_MIGRATE" default:"false"`
	// CORSOrigins lists the storefront front-ends allowed to call the API.
	CORSOrigins []string `envconfig:"AUTOPARTS_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects where shopper carts are persisted.
type StorageConfig struct {
	Driver string `envconfig:"AUTOPARTS_STORAGE_DRIVER" default:"memory"`
	// SessionIdleTTL is how long an untouched cart stays cached in process. Zero keeps carts forever.
	SessionIdleTTL time.Duration `envconfig:"AUTOPARTS_CART_SESSION_IDLE_TTL" default:"30m"`
}

func (s StorageConfig) normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

func (s StorageConfig) UsesSQL() bool {
	return s.normalized() == StorageDriverSQL
}

func (s StorageConfig) UsesRedis() bool {
	return s.normalized() == StorageDriverRedis
}

func (s StorageConfig) validate() error {
	switch s.normalized() {
	case StorageDriverMemory, StorageDriverRedis, StorageDriverSQL:
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvStorageDriver, s.Driver)
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOPARTS_DB_DSN"`
	Driver string `envconfig:"AUTOPARTS_DB_DRIVER" default:"sqlite"`

	LegacyHost     string `envconfig:"AUTOPARTS_DB_HOST"`
	LegacyPort     int    `envconfig:"AUTOPARTS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AUTOPARTS_DB_USER"`
	LegacyPassword string `envconfig:"AUTOPARTS_DB_PASSWORD"`
	LegacyName     string `envconfig:"AUTOPARTS_DB_NAME"`
	LegacySSLMode  string `envconfig:"AUTOPARTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOPARTS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"AUTOPARTS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOPARTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOPARTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the SQL store is backed by a local SQLite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOPARTS_REDIS_URL"`
	Address      string        `envconfig:"AUTOPARTS_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOPARTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOPARTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOPARTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOPARTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOPARTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOPARTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOPARTS_REDIS_WRITE_TIMEOUT" default:"5s"`
	// KeyPrefix namespaces cart keys when several storefronts share one Redis.
	KeyPrefix string `envconfig:"AUTOPARTS_REDIS_KEY_PREFIX" default:"ap"`
	// CartTTL bounds how long an idle cart survives; zero keeps carts forever.
	CartTTL time.Duration `envconfig:"AUTOPARTS_REDIS_CART_TTL" default:"0s"`
}

// PricingConfig holds the storefront business rules. Amounts are decimal strings
// so they can be parsed without float rounding.
type PricingConfig struct {
	TaxRate               string `envconfig:"AUTOPARTS_PRICING_TAX_RATE" default:"0.08"`
	FreeShippingThreshold string `envconfig:"AUTOPARTS_PRICING_FREE_SHIPPING_THRESHOLD" default:"50.00"`
	FlatShipping          string `envconfig:"AUTOPARTS_PRICING_FLAT_SHIPPING" default:"7.99"`
}

type CatalogConfig struct {
	// Path optionally replaces the embedded seed catalog with a JSON file.
	Path          string `envconfig:"AUTOPARTS_CATALOG_PATH"`
	FeaturedCount int    `envconfig:"AUTOPARTS_CATALOG_FEATURED_COUNT" default:"4"`
	RelatedCount  int    `envconfig:"AUTOPARTS_CATALOG_RELATED_COUNT" default:"4"`
	PriceFloor    int    `envconfig:"AUTOPARTS_CATALOG_PRICE_FLOOR" default:"0"`
	PriceCeiling  int    `envconfig:"AUTOPARTS_CATALOG_PRICE_CEILING" default:"500"`
}

type CheckoutConfig struct {
	CompletionDelay time.Duration `envconfig:"AUTOPARTS_CHECKOUT_COMPLETION_DELAY" default:"0s"`
}

type NewsletterConfig struct {
	ResetAfter time.Duration `envconfig:"AUTOPARTS_NEWSLETTER_RESET_AFTER" default:"3s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:autoparts.db?cache=shared"
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
