package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
)

// dialect captures the few places SQLite and Postgres differ.
type dialect struct {
	name         string
	driverName   string
	goose        goose.Dialect
	migrationDir string

	// dollarParams rewrites ? placeholders to $1, $2, ...
	dollarParams bool

	// nameOrder is appended to ORDER BY name so ordering is by code point
	// on both engines.
	nameOrder string
}

var (
	sqliteDialect = dialect{
		name:         "sqlite",
		driverName:   "sqlite",
		goose:        goose.DialectSQLite3,
		migrationDir: "migrations/sqlite",
	}
	postgresDialect = dialect{
		name:         "postgres",
		driverName:   "pgx",
		goose:        goose.DialectPostgres,
		migrationDir: "migrations/postgres",
		dollarParams: true,
		nameOrder:    ` COLLATE "C"`,
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case sqliteDialect.name:
		return sqliteDialect, nil
	case postgresDialect.name:
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// rebind converts a query written with ? placeholders for the dialect.
func (d dialect) rebind(query string) string {
	if !d.dollarParams {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// timeArg converts t into the value stored in timestamp columns: RFC3339Nano
// text on SQLite, a timestamptz on Postgres.
func (d dialect) timeArg(t time.Time) any {
	t = t.UTC()
	if d.dollarParams {
		return t
	}
	return t.Format(time.RFC3339Nano)
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// timestamp scans a timestamp column from either engine.
type timestamp struct {
	time.Time
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		ts.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (ts *timestamp) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	ts.Time = t.UTC()
	return nil
}
