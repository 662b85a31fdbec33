package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// ConnConfig holds the connection settings of the target database.
type ConnConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the database/sql driver name and data source name for a dialect.
func DSN(dialect string, cfg ConnConfig) (string, string, error) {
	switch dialect {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		return "mysql", mc.FormatDSN(), nil
	case "postgres":
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return "postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslMode), nil
	}
	return "", "", fmt.Errorf("unsupported dialect %q", dialect)
}

// Open connects to the target database and checks the connection.
func Open(ctx context.Context, dialect string, cfg ConnConfig) (*sql.DB, error) {
	driverName, dsn, err := DSN(dialect, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return db, nil
}

// Result summarises an applied script.
type Result struct {
	Statements   int
	RowsAffected int64
}

// Apply executes statements in order inside one transaction, so the
// foreign key toggles and the data changes share a connection.
// Any failure rolls everything back.
func Apply(ctx context.Context, db *sql.DB, statements []string, lgr zerolog.Logger) (Result, error) {
	var res Result

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range statements {
		r, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			return Result{}, fmt.Errorf("error executing statement %d: %w", i+1, err)
		}
		if n, err := r.RowsAffected(); err == nil {
			res.RowsAffected += n
		}
		res.Statements++
		lgr.Debug().Int("statement", i+1).Msg("statement applied")
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("error committing transaction: %w", err)
	}
	lgr.Info().Int("statements", res.Statements).Int64("rows", res.RowsAffected).Msg("seed script applied")
	return res, nil
}
