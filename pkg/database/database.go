package database

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

const mysqlDuplicateEntry = 1062

// DB configures one of the supported drivers. Host, Port and the credentials
// apply to postgres and mysql; Path applies to sqlite. A zero Port means the
// driver's standard port.
type DB struct {
	Driver          string        `yaml:"driver" envconfig:"DB_DRIVER" default:"sqlite"`
	Host            string        `yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port            int           `yaml:"port" envconfig:"DB_PORT"`
	Username        string        `yaml:"user" envconfig:"DB_USER" default:"postgres"`
	Password        string        `yaml:"password" envconfig:"DB_PASSWORD" json:"-"`
	NameDB          string        `yaml:"dbname" envconfig:"DB_NAME" default:"reservations"`
	SSLMode         string        `yaml:"sslmode" envconfig:"DB_SSLMODE" default:"disable"`
	Path            string        `yaml:"path" envconfig:"DB_PATH" default:"database.db"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
}

// goose keeps its base FS and dialect in package globals.
var migrateMu sync.Mutex

// NewDB opens the configured database, checks it is reachable and applies
// the migrations found under the driver's directory of migrations.
func NewDB(ctx context.Context, cfg *DB, migrations fs.FS) (*sqlx.DB, error) {
	driverName, dialect, dsn, err := cfg.source()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlx.Open")
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "db.Ping")
	}

	if migrations != nil {
		if err = migrate(db, dialect, cfg.Driver, migrations); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func migrate(db *sqlx.DB, dialect, dir string, migrations fs.FS) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "goose.SetDialect")
	}
	if err := goose.Up(db.DB, dir); err != nil {
		return errors.Wrap(err, "goose.Up")
	}
	return nil
}

func (cfg *DB) source() (driverName, dialect, dsn string, err error) {
	switch cfg.Driver {
	case DriverPostgres:
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
			Path:     cfg.NameDB,
			RawQuery: "sslmode=" + cfg.SSLMode,
		}
		return "pgx", "postgres", u.String(), nil
	case DriverMySQL:
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
		mc.DBName = cfg.NameDB
		// RowsAffected counts matched rows, so an update to identical values still reports 1
		mc.ClientFoundRows = true
		return "mysql", "mysql", mc.FormatDSN(), nil
	case DriverSQLite:
		return "sqlite", "sqlite3", "file:" + cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	default:
		return "", "", "", fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// IsUniqueViolation reports whether err was raised by a unique constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}
