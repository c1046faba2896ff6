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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	FeatureFlags  FeatureFlagsConfig
	Points        PointsConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"DISTRIGAS_APP_ENV" required:"true"`
	Port         string `envconfig:"DISTRIGAS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DISTRIGAS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISTRIGAS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DISTRIGAS_DB_DSN"`
	Driver string `envconfig:"DISTRIGAS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DISTRIGAS_DB_HOST"`
	LegacyPort     int    `envconfig:"DISTRIGAS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DISTRIGAS_DB_USER"`
	LegacyPassword string `envconfig:"DISTRIGAS_DB_PASSWORD"`
	LegacyName     string `envconfig:"DISTRIGAS_DB_NAME"`
	LegacySSLMode  string `envconfig:"DISTRIGAS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DISTRIGAS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DISTRIGAS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DISTRIGAS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DISTRIGAS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DISTRIGAS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DISTRIGAS_REDIS_ADDR"`
	Password     string        `envconfig:"DISTRIGAS_REDIS_PASSWORD"`
	DB           int           `envconfig:"DISTRIGAS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DISTRIGAS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISTRIGAS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISTRIGAS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISTRIGAS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISTRIGAS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DISTRIGAS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DISTRIGAS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DISTRIGAS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DISTRIGAS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DISTRIGAS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DISTRIGAS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DISTRIGAS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DISTRIGAS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DISTRIGAS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DISTRIGAS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DISTRIGAS_AUTO_MIGRATE" default:"false"`
}

// PointsConfig carries fallback values for the loyalty settings stored in the
// settings table. The table wins when a row exists.
type PointsConfig struct {
	PerCurrencyUnit string `envconfig:"DISTRIGAS_POINTS_PER_CURRENCY_UNIT" default:"1"`
	DiscountValue   string `envconfig:"DISTRIGAS_POINTS_DISCOUNT_VALUE" default:"0.10"`
	MinRedeem       string `envconfig:"DISTRIGAS_POINTS_MIN_REDEEM" default:"0"`
	ReferralBonus   string `envconfig:"DISTRIGAS_POINTS_FOR_REFERRAL" default:"25"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"DISTRIGAS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit int           `envconfig:"DISTRIGAS_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"DISTRIGAS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
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
