package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DefaultURL is the datastore used when no connection string is configured.
const DefaultURL = "crudimg.sqlite3"

// DB is a datastore connection together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect *Dialect
}

// Rebind rewrites ? placeholders into the dialect's placeholder syntax.
func (d *DB) Rebind(query string) string {
	return d.Dialect.Rebind(query)
}

// Open connects to the datastore named by a connection string. The scheme
// selects the driver: mysql://, postgres:// (or postgresql://), and
// sqlite:// or a plain file path for SQLite. The pool is limited to a
// single connection; callers may raise it with SetMaxOpenConns.
func Open(ctx context.Context, rawURL string) (*DB, error) {
	if rawURL == "" {
		rawURL = DefaultURL
	}

	dialect, dsn, err := resolve(rawURL)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", dialect.Name, err)
	}

	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

// resolve maps a connection string to a dialect and a driver-specific DSN.
func resolve(rawURL string) (*Dialect, string, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		// Plain path, ":memory:" or a "file:" URI.
		return SQLite, sqliteDSN(rawURL), nil
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		return SQLite, sqliteDSN(rest), nil
	case "postgres", "postgresql":
		return Postgres, rawURL, nil
	case "mysql":
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, "", fmt.Errorf("parsing database url: %w", err)
		}
		return MySQL, mysqlDSN(u), nil
	default:
		return nil, "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// sqliteDSN appends the SQLite pragmas as _pragma query parameters so the
// driver applies them to every pooled connection, not only the first.
func sqliteDSN(name string) string {
	params := make([]string, 0, len(SQLite.Pragmas))
	for _, p := range SQLite.Pragmas {
		params = append(params, "_pragma="+p)
	}
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + strings.Join(params, "&")
}

// mysqlDSN converts a mysql:// URL into the go-sql-driver DSN format.
func mysqlDSN(u *url.URL) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	// Hosted MySQL URLs commonly ask for TLS through one of these parameters.
	q := u.Query()
	if q.Has("ssl") || q.Get("sslaccept") == "strict" || q.Get("tls") == "true" {
		cfg.TLSConfig = "true"
	}

	return cfg.FormatDSN()
}
