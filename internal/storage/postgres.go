package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hh-vacancies-go/internal/logger"
)

// DBTX is the statement surface shared by *pgx.Conn, pgx.Tx and test mocks.
// Schema, loader and query code take it as an explicit handle.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is a DBTX that owns a server connection.
type Conn interface {
	DBTX
	Close(ctx context.Context) error
}

// Connector opens a single connection for one unit of work.
type Connector func(ctx context.Context, dsn string) (Conn, error)

// Connect opens a plain, unpooled pgx connection.
func Connect(ctx context.Context, dsn string) (Conn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

const closeTimeout = 5 * time.Second

// duplicateDatabase is SQLSTATE 42P04.
const duplicateDatabase = "42P04"

// Postgres scopes connections to the application database. Every call to
// WithConn opens one connection and closes it on all exit paths.
type Postgres struct {
	dsn            string
	maintenanceDSN string
	dbName         string
	connect        Connector
}

// NewPostgres creates a Postgres for dbName. maintenanceDSN points at an
// existing database (normally "postgres") used to create dbName.
func NewPostgres(dsn, maintenanceDSN, dbName string) *Postgres {
	return &Postgres{
		dsn:            dsn,
		maintenanceDSN: maintenanceDSN,
		dbName:         dbName,
		connect:        Connect,
	}
}

// WithConnector replaces the function used to open connections.
func (p *Postgres) WithConnector(connect Connector) *Postgres {
	p.connect = connect
	return p
}

// WithConn runs fn on a fresh connection to the application database.
func (p *Postgres) WithConn(ctx context.Context, fn func(db DBTX) error) error {
	return withConn(ctx, p.connect, p.dsn, fn)
}

// EnsureDatabase creates the application database when it does not exist.
func (p *Postgres) EnsureDatabase(ctx context.Context) error {
	return withConn(ctx, p.connect, p.maintenanceDSN, func(db DBTX) error {
		return EnsureDatabase(ctx, db, p.dbName)
	})
}

// Prepare readies a fresh ingest cycle: the database is created if needed,
// the tables are dropped and created again.
func (p *Postgres) Prepare(ctx context.Context) error {
	if err := p.EnsureDatabase(ctx); err != nil {
		return err
	}
	return p.WithConn(ctx, func(db DBTX) error {
		if err := ResetSchema(ctx, db); err != nil {
			return err
		}
		return EnsureSchema(ctx, db)
	})
}

func withConn(ctx context.Context, connect Connector, dsn string, fn func(db DBTX) error) (err error) {
	conn, err := connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer func() {
		// the caller's ctx may already be done; closing must still happen
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if cerr := conn.Close(closeCtx); cerr != nil {
			if err == nil {
				err = fmt.Errorf("failed to close connection: %w", cerr)
			} else {
				logger.WarnLog(ctx, "failed to close connection: %v", cerr)
			}
		}
	}()
	return fn(conn)
}

// EnsureDatabase creates database name through db unless pg_database
// already lists it.
func EnsureDatabase(ctx context.Context, db DBTX, name string) error {
	var exists bool
	err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		return nil
	}

	_, err = db.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == duplicateDatabase {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}

	logger.InfoLog(ctx, "created database %s", name)
	return nil
}
