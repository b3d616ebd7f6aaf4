package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	StrategyToken  = "token"
	StrategyReplay = "replay"
)

var ErrMissingJWTSecret = errors.New("security.jwtsecret must be set")

type HTTPConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxUploadBytes int64
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	Region        string
	PublicBaseURL string
}

// StrategyConfig selects how each route group authenticates callers.
type StrategyConfig struct {
	Accounts string
	Products string
	Payments string
}

type SecurityConfig struct {
	JWTSecret           string
	JWTTTL              time.Duration
	BcryptCost          int
	PaymentsRequireAuth bool
	Strategies          StrategyConfig
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type DiagnosticsConfig struct {
	Gops bool
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	NATS             NATSConfig
	Diagnostics      DiagnosticsConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Security.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	if c.Security.JWTTTL <= 0 {
		return fmt.Errorf("security.jwtttl must be positive, got %s", c.Security.JWTTTL)
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcryptcost out of range: %d", c.Security.BcryptCost)
	}
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		return errors.New("postgres.dsn must be set")
	}

	for group, strategy := range map[string]string{
		"accounts": c.Security.Strategies.Accounts,
		"products": c.Security.Strategies.Products,
		"payments": c.Security.Strategies.Payments,
	} {
		if strategy != StrategyToken && strategy != StrategyReplay {
			return fmt.Errorf("security.strategies.%s: unknown strategy %q", group, strategy)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.maxuploadbytes", 5<<20)

	v.SetDefault("postgres.maxopen", 20)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "http://127.0.0.1:9000")
	v.SetDefault("storage.bucket", "marketplace")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtttl", "24h")
	v.SetDefault("security.bcryptcost", 10)
	v.SetDefault("security.paymentsrequireauth", false)
	v.SetDefault("security.strategies.accounts", StrategyToken)
	v.SetDefault("security.strategies.products", StrategyToken)
	v.SetDefault("security.strategies.payments", StrategyToken)

	v.SetDefault("nats.subjectprefix", "marketplace")
	v.SetDefault("diagnostics.gops", false)
}

// bindEnv registers keys that have no default so AutomaticEnv can see them,
// plus the unprefixed names older deployments export.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("security.jwtsecret", "MARKETPLACE_SECURITY_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("postgres.dsn", "MARKETPLACE_POSTGRES_DSN", "DATABASE_URL")
	_ = v.BindEnv("http.port", "MARKETPLACE_HTTP_PORT", "PORT")
	_ = v.BindEnv("redis.password")
	_ = v.BindEnv("storage.accesskey")
	_ = v.BindEnv("storage.secretkey")
	_ = v.BindEnv("storage.publicbaseurl")
	_ = v.BindEnv("nats.url")
	_ = v.BindEnv("allowcorsorigins")
}
