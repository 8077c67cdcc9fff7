package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Billing       BillingConfig
	Cron          CronConfig
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
	Env          string `envconfig:"BAWASA_APP_ENV" required:"true"`
	Port         string `envconfig:"BAWASA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAWASA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAWASA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BAWASA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BAWASA_DB_DSN"`
	Driver string `envconfig:"BAWASA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BAWASA_DB_HOST"`
	LegacyPort     int    `envconfig:"BAWASA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BAWASA_DB_USER"`
	LegacyPassword string `envconfig:"BAWASA_DB_PASSWORD"`
	LegacyName     string `envconfig:"BAWASA_DB_NAME"`
	LegacySSLMode  string `envconfig:"BAWASA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BAWASA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAWASA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAWASA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAWASA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAWASA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BAWASA_REDIS_ADDR"`
	Password     string        `envconfig:"BAWASA_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAWASA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAWASA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAWASA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAWASA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAWASA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAWASA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BAWASA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BAWASA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BAWASA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BAWASA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BAWASA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BAWASA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BAWASA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BAWASA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BAWASA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BAWASA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"BAWASA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"BAWASA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BAWASA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BAWASA_AUTO_MIGRATE" default:"false"`
}

type BillingConfig struct {
	// DueDays is how many days after bill generation payment is due.
	DueDays int `envconfig:"BAWASA_BILLING_DUE_DAYS" default:"15"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"BAWASA_CRON_INTERVAL" default:"24h"`
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
