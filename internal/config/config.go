package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `env:"ENV" env-required:"true"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	HttpServer HttpServer
	Database   Database
	Limiter    Limiter
	Throttle   Throttle
	Auth       AuthConfig
	Cookie     CookieConfig
	SMTP       SMTPConfig
	Email      EmailConfig
	Cache      Cache
	Admin      AdminConfig
	Testing    TestingConfig
}

type HttpServer struct {
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout           time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"2s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	MaxHeaderBytes    int           `env:"HTTP_MAX_HEADER_BYTES" env-default:"65536"`
	SwaggerEnabled    bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
	CorsOrigins       []string      `env:"HTTP_CORS_ORIGINS" env-default:"http://localhost:3000"`
	// TrustedProxies lists the ips or cidrs allowed to set X-Forwarded-For and X-Real-IP.
	// Empty means the client ip is always the peer address.
	TrustedProxies []string `env:"HTTP_TRUSTED_PROXIES" env-default:"" env-description:"comma separated proxy ips or cidrs"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER" env-required:"true"`
	DBName             string        `env:"DB_NAME" env-required:"true"`
	User               string        `env:"DB_USER" env-required:"true"`
	Password           string        `env:"DB_PASSWORD" env-required:"true"`
	TimeZone           string        `env:"DB_TIMEZONE"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
	Migrate            bool          `env:"DB_MIGRATE" env-default:"true" env-description:"apply embedded migrations on start"`
}

// Limiter is the coarse per-IP token bucket applied to every route.
type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`
}

// Throttle is the sliding window counted per (ip, route) on auth endpoints.
type Throttle struct {
	Limit  int           `env:"THROTTLE_LIMIT" env-default:"5"`
	Window time.Duration `env:"THROTTLE_WINDOW" env-default:"10s"`
}

type AuthConfig struct {
	JWT                    JWTConfig
	Recovery               RecoveryConfig
	ConfirmationCodeTTL    time.Duration `env:"AUTH_CONFIRMATION_CODE_TTL" env-default:"1h"`
	ConfirmationCodeLength int           `env:"AUTH_CONFIRMATION_CODE_LENGTH" env-default:"32"`
	BcryptCost             int           `env:"AUTH_BCRYPT_COST" env-default:"10"`
}

type JWTConfig struct {
	AccessTokenTTL    time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"10m"`
	RefreshTokenTTL   time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"480h"`
	AccessSigningKey  string        `env:"JWT_ACCESS_SIGNING_KEY" env-required:"true"`
	RefreshSigningKey string        `env:"JWT_REFRESH_SIGNING_KEY" env-required:"true"`
}

type RecoveryConfig struct {
	CodeTTL    time.Duration `env:"AUTH_RECOVERY_CODE_TTL" env-default:"1h"`
	SigningKey string        `env:"AUTH_RECOVERY_SIGNING_KEY" env-required:"true"`
}

type CookieConfig struct {
	Name   string `env:"COOKIE_NAME" env-default:"refreshToken"`
	Path   string `env:"COOKIE_PATH" env-default:"/api/v1"`
	Domain string `env:"COOKIE_DOMAIN" env-default:""`
	Secure bool   `env:"COOKIE_SECURE" env-default:"true"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST" env-required:"true"`
	Port int    `env:"SMTP_PORT" env-required:"true"`
	From string `env:"SMTP_FROM" env-required:"true"`
	Pass string `env:"SMTP_PASS" env-required:"true"`
}

type EmailConfig struct {
	Enabled      bool   `env:"EMAIL_ENABLED" env-default:"false"`
	FrontendURL  string `env:"EMAIL_FRONTEND_URL" env-default:"http://localhost:3000"`
	TemplatesDir string `env:"EMAIL_TEMPLATES_DIR" env-default:"./templates"`
	Templates    EmailTemplates
}

type EmailTemplates struct {
	Confirmation string `env:"EMAIL_TEMPLATE_CONFIRMATION" env-default:"confirmation.html"`
	Recovery     string `env:"EMAIL_TEMPLATE_RECOVERY" env-default:"recovery.html"`
}

type Cache struct {
	Type  string `env:"REDIS_TYPE" env-required:"true" env-description:"specifies provider, one of redis/redisCluster"`
	Redis struct {
		Address  string `env:"REDIS_ADDR" env-default:"" env-description:"redis host:port single instance"`
		Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
	RedisCluster struct {
		Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes: ['172.27.29.90:7000','172.27.29.91:7001'', '172.27.29.92:7002'']"`
		Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
}

type AdminConfig struct {
	Login    string `env:"ADMIN_LOGIN" env-required:"true"`
	Password string `env:"ADMIN_PASSWORD" env-required:"true"`
}

type TestingConfig struct {
	Enabled bool `env:"TESTING_ENABLED" env-default:"false" env-description:"mounts /testing routes"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return cfg
}
