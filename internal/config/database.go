package config

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"election_portal/internal/logger"
	"election_portal/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB connects to the configured store, retrying while it comes up,
// then migrates the schema and seeds empty reference tables.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var db *gorm.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = Open(cfg.DB)
			return err
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logrus.WithError(err).WithField("attempt", n+1).Warn("database not reachable, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}
	if err := SeedReferenceData(db, cfg.Seed); err != nil {
		return nil, fmt.Errorf("seeding reference data failed: %w", err)
	}

	DB = db
	return db, nil
}

// Open opens a gorm handle for the configured dialect and verifies it.
func Open(cfg DBConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.GormLogger(cfg.Debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Dialect == DialectSQLite {
		// single writer; also keeps in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func dialectorFor(cfg DBConfig) (gorm.Dialector, error) {
	switch cfg.Dialect {
	case DialectSQLite:
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case DialectPostgres:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
		)
		conn, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		return postgres.New(postgres.Config{Conn: conn}), nil
	case DialectMySQL:
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
		)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db dialect %q", cfg.Dialect)
	}
}

// sqliteDSN turns foreign keys on and waits on locks instead of failing.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// SeedReferenceData fills the positions and parties tables when they are empty.
func SeedReferenceData(db *gorm.DB, seed SeedConfig) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Position{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			for _, label := range seed.Positions {
				if err := tx.Create(&models.Position{Label: label}).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&models.Party{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			for _, name := range seed.Parties {
				if err := tx.Create(&models.Party{Name: name}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// CloseDB closes the underlying connection pool of the global handle.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
