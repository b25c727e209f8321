package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode   `yaml:"mode"`
	HTTPAddr  string `yaml:"http_addr"`
	APIPrefix string `yaml:"api_prefix"`

	DB struct {
		Driver string `yaml:"driver"` // sqlite|postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"db"`

	Auth struct {
		Secret           string        `yaml:"secret"`
		TokenTTL         time.Duration `yaml:"token_ttl"`
		Issuer           string        `yaml:"issuer"`
		BcryptCost       int           `yaml:"bcrypt_cost"`
		AllowAdminSignup bool          `yaml:"allow_admin_signup"`
	} `yaml:"auth"`

	// Credentials used by the init-admin bootstrap.
	Admin struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`

	Redis struct {
		Addr     string `yaml:"addr"` // empty: in-process start lock
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	StartLockTTL time.Duration `yaml:"start_lock_ttl"`

	CORSOrigins []string `yaml:"cors_origins"`

	LogMode  string `yaml:"log_mode"`
	LogLevel string `yaml:"log_level"`

	RecentActivityLimit int `yaml:"recent_activity_limit"`
}

// Defaults returns the configuration used when neither a file nor the
// environment says otherwise.
func Defaults() Config {
	var c Config
	c.Mode = ModeOffline
	c.HTTPAddr = ":8080"
	c.APIPrefix = "/api"
	c.DB.Driver = "sqlite"
	c.Auth.Secret = "supersecret-dev-key"
	c.Auth.TokenTTL = 24 * time.Hour
	c.Auth.Issuer = "examhall"
	c.Auth.BcryptCost = 12
	c.Admin.Username = "admin"
	c.Admin.Email = "admin@exam.com"
	c.Admin.Password = "admin123"
	c.StartLockTTL = 5 * time.Second
	c.CORSOrigins = []string{"http://localhost:3000"}
	c.LogMode = "dev"
	c.LogLevel = "debug"
	c.RecentActivityLimit = 50
	return c
}

// Load starts from Defaults, overlays the YAML file at path (if path is
// non-empty and the file exists) and finally applies environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		case !os.IsNotExist(err):
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// FromEnv is Load without a file.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

func applyEnv(c *Config) {
	c.Mode = Mode(envOr("MODE", string(c.Mode)))
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.APIPrefix = envOr("API_PREFIX", c.APIPrefix)

	c.DB.Driver = envOr("DB_DRIVER", c.DB.Driver)
	c.DB.DSN = envOr("DB_DSN", c.DB.DSN)

	c.Auth.Secret = envOr("AUTH_HMAC_SECRET", c.Auth.Secret)
	c.Auth.TokenTTL = envDuration("AUTH_TOKEN_TTL", c.Auth.TokenTTL)
	c.Auth.Issuer = envOr("AUTH_ISSUER", c.Auth.Issuer)
	c.Auth.BcryptCost = envInt("BCRYPT_COST", c.Auth.BcryptCost)
	c.Auth.AllowAdminSignup = envBool("ALLOW_ADMIN_SIGNUP", c.Auth.AllowAdminSignup)

	c.Admin.Username = envOr("ADMIN_USER", c.Admin.Username)
	c.Admin.Email = envOr("ADMIN_EMAIL", c.Admin.Email)
	c.Admin.Password = envOr("ADMIN_PASSWORD", c.Admin.Password)

	c.Redis.Addr = envOr("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envOr("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = envInt("REDIS_DB", c.Redis.DB)
	c.StartLockTTL = envDuration("START_LOCK_TTL", c.StartLockTTL)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = csv(v)
	}
	c.LogMode = envOr("LOG_MODE", c.LogMode)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.RecentActivityLimit = envInt("RECENT_ACTIVITY_LIMIT", c.RecentActivityLimit)
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func csv(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
