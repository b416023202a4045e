package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations
var migrations embed.FS

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Dialect holds what differs between the supported databases. Queries are
// written with ? placeholders and rebound for drivers that want $n.
type Dialect struct {
	Name      string //golang-migrate database name and migrations dir
	driver    string
	numbered  bool
	returning bool
	contains  string //case sensitive substring match of title against one arg
}

var (
	Postgres = Dialect{
		Name:      "postgres",
		driver:    "pgx",
		numbered:  true,
		returning: true,
		contains:  "strpos(title, ?) > 0",
	}
	SQLite = Dialect{
		Name:     "sqlite",
		driver:   "sqlite",
		contains: "instr(title, ?) > 0",
	}
	// title and username are utf8mb4_bin columns so INSTR is case sensitive
	MySQL = Dialect{
		Name:     "mysql",
		driver:   "mysql",
		contains: "INSTR(title, ?) > 0",
	}
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (d Dialect) dsn(url string) string {
	if d.Name != SQLite.Name {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open connects to the database and checks the connection is alive
func Open(ctx context.Context, driver, url string) (*sql.DB, Dialect, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	db, err := sql.Open(d.driver, d.dsn(url))
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("could not open database: %w", err)
	}
	if d.Name == SQLite.Name {
		//single writer, also keeps transactions and plain queries on one conn
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, Dialect{}, fmt.Errorf("could not ping database: %w", err)
	}
	return db, d, nil
}

// Migrate applies the embedded migrations for the driver's dialect. It uses
// its own connection since golang-migrate closes the instance it is given.
func Migrate(driver, url string) error {
	d, err := DialectFor(driver)
	if err != nil {
		return err
	}

	db, err := sql.Open(d.driver, d.dsn(url))
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}

	var inst database.Driver
	switch d.Name {
	case Postgres.Name:
		inst, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	case SQLite.Name:
		inst, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case MySQL.Name:
		inst, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrations, "migrations/"+d.Name)
	if err != nil {
		inst.Close()
		return fmt.Errorf("could not read migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.Name, inst)
	if err != nil {
		inst.Close()
		return fmt.Errorf("could not create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply migrations: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(...any) error
}

// isDuplicate reports a unique constraint violation from any supported driver
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
