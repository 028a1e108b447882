package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported database dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// Config holds all application configuration.
type Config struct {
	Port int

	// BallotPosition is the position id voters cast their ballot for.
	BallotPosition uint

	DB      DBConfig
	Log     LogConfig
	Auth    AuthConfig
	Upload  UploadConfig
	Seed    SeedConfig
	Origins []string
}

// DBConfig selects and addresses the relational store.
type DBConfig struct {
	Dialect  string
	Path     string // sqlite file or DSN
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Debug    bool
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Console    bool
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	BcryptCost   int
	SecureCookie bool

	// AdminUsername and AdminPassword, when both set, create an admin
	// account at start-up if none exists under that name.
	AdminUsername string
	AdminPassword string
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// SeedConfig lists reference data inserted into empty tables at start-up.
type SeedConfig struct {
	Positions []string
	Parties   []string
}

// NewFlagSet declares the command-line flags understood by Load.
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("election-portal", pflag.ContinueOnError)
	fs.Int("port", 3000, "HTTP listen port")
	fs.String("db-dialect", DialectSQLite, "database dialect: sqlite, postgres or mysql")
	fs.String("db-path", "election.db", "sqlite database file")
	fs.String("upload-dir", "public/uploads", "directory for uploaded photos")
	fs.String("log-file", "./logs/app.log", "log file path")
	fs.String("log-level", "info", "log level")
	fs.Bool("log-console", false, "mirror logs to stdout")
	return fs
}

// Load reads .env (if present), the environment and the given command-line
// arguments, in increasing order of precedence.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}

	fs := NewFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           v.GetInt("port"),
		BallotPosition: v.GetUint("ballot-position"),
		DB: DBConfig{
			Dialect:  strings.ToLower(v.GetString("db-dialect")),
			Path:     v.GetString("db-path"),
			Host:     v.GetString("db-host"),
			Port:     v.GetString("db-port"),
			User:     v.GetString("db-user"),
			Password: v.GetString("db-password"),
			Name:     v.GetString("db-name"),
			SSLMode:  v.GetString("db-sslmode"),
			Debug:    v.GetBool("db-debug"),
		},
		Log: LogConfig{
			Level:      v.GetString("log-level"),
			Filename:   v.GetString("log-file"),
			MaxSizeMB:  v.GetInt("log-max-size-mb"),
			MaxBackups: v.GetInt("log-max-backups"),
			MaxAgeDays: v.GetInt("log-max-age-days"),
			Compress:   v.GetBool("log-compress"),
			Console:    v.GetBool("log-console"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("jwt-secret"),
			SessionTTL:    v.GetDuration("session-ttl"),
			BcryptCost:    v.GetInt("bcrypt-cost"),
			SecureCookie:  v.GetBool("cookie-secure"),
			AdminUsername: v.GetString("admin-username"),
			AdminPassword: v.GetString("admin-password"),
		},
		Upload: UploadConfig{
			Dir:      v.GetString("upload-dir"),
			MaxBytes: v.GetInt64("max-upload-bytes"),
		},
		Seed: SeedConfig{
			Positions: splitList(v.GetString("seed-positions")),
			Parties:   splitList(v.GetString("seed-parties")),
		},
		Origins: splitList(v.GetString("cors-origins")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db-host", "localhost")
	v.SetDefault("db-port", "5432")
	v.SetDefault("db-user", "postgres")
	v.SetDefault("db-password", "password")
	v.SetDefault("db-name", "election")
	v.SetDefault("db-sslmode", "disable")
	v.SetDefault("db-debug", false)

	v.SetDefault("log-max-size-mb", 10)
	v.SetDefault("log-max-backups", 7)
	v.SetDefault("log-max-age-days", 7)
	v.SetDefault("log-compress", true)

	v.SetDefault("jwt-secret", "supersecret")
	v.SetDefault("session-ttl", 12*time.Hour)
	v.SetDefault("bcrypt-cost", 10)
	v.SetDefault("cookie-secure", false)
	v.SetDefault("admin-username", "")
	v.SetDefault("admin-password", "")
	v.SetDefault("ballot-position", 1)

	v.SetDefault("max-upload-bytes", 5<<20)

	v.SetDefault("seed-positions", "President")
	v.SetDefault("seed-parties", "Independent")
	v.SetDefault("cors-origins", "")
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DB.Dialect {
	case DialectSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("db-path is required for %s", DialectSQLite)
		}
	case DialectPostgres, DialectMySQL:
		if c.DB.Host == "" || c.DB.Name == "" {
			return fmt.Errorf("db-host and db-name are required for %s", c.DB.Dialect)
		}
	default:
		return fmt.Errorf("unsupported db dialect %q (want %s, %s or %s)",
			c.DB.Dialect, DialectSQLite, DialectPostgres, DialectMySQL)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt-secret must not be empty")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session-ttl must be positive")
	}
	if c.BallotPosition == 0 {
		return fmt.Errorf("ballot-position must be positive")
	}
	if (c.Auth.AdminUsername == "") != (c.Auth.AdminPassword == "") {
		return fmt.Errorf("admin-username and admin-password must be set together")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("max-upload-bytes must be positive")
	}
	return nil
}

// String returns a printable summary with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{port: %d, db: %s, uploads: %s, auth: *** (masked) ***}",
		c.Port, c.DB.Dialect, c.Upload.Dir)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
