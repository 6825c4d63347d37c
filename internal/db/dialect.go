package db

import (
	"strconv"
	"strings"
)

// Dialect describes the differences between the supported SQL engines.
type Dialect struct {
	Name   string
	Driver string

	// Numbered reports whether placeholders are $1, $2, ... instead of ?.
	Numbered bool

	// Returning reports whether inserts return the new id through
	// RETURNING instead of LastInsertId.
	Returning bool

	// Pragmas are applied by the driver to each new connection, in order.
	Pragmas []string

	// Schema creates the items table if it does not exist.
	Schema string
}

// Supported dialects.
var (
	SQLite = &Dialect{
		Name:   "sqlite",
		Driver: "sqlite",
		Pragmas: []string{
			"busy_timeout(5000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
		Schema: `
CREATE TABLE IF NOT EXISTS crudimg (
    id          INTEGER PRIMARY KEY,
    nombre      TEXT,
    descripcion TEXT,
    cantidad    INTEGER,
    marca       TEXT,
    precio      REAL,
    imagen      TEXT
)`,
	}

	MySQL = &Dialect{
		Name:   "mysql",
		Driver: "mysql",
		Schema: `
CREATE TABLE IF NOT EXISTS crudimg (
    id          INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    nombre      VARCHAR(255),
    descripcion TEXT,
    cantidad    INT,
    marca       VARCHAR(255),
    precio      DECIMAL(10,2),
    imagen      VARCHAR(1024)
)`,
	}

	Postgres = &Dialect{
		Name:      "postgres",
		Driver:    "pgx",
		Numbered:  true,
		Returning: true,
		Schema: `
CREATE TABLE IF NOT EXISTS crudimg (
    id          SERIAL PRIMARY KEY,
    nombre      TEXT,
    descripcion TEXT,
    cantidad    INTEGER,
    marca       TEXT,
    precio      NUMERIC(10,2),
    imagen      TEXT
)`,
	}
)

// Rebind rewrites ? placeholders for dialects that number them.
// Queries must not contain a literal question mark.
func (d *Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
