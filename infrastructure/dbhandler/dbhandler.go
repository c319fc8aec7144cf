package dbhandler

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	maxRetries = 5
)

// DBHandler contains a connection to database.
type DBHandler struct {
	DB     *sql.DB
	Driver string
}

// Open picks the driver from the URI: postgres:// and postgresql:// go to
// Postgres, anything else is a SQLite file path.
func Open(uri string) (*DBHandler, error) {
	driver, dsn := DriverSQLite, strings.TrimPrefix(uri, "sqlite://")
	if strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://") {
		driver, dsn = DriverPostgres, uri
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverPostgres {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(1 * time.Minute)
		db.SetConnMaxLifetime(4 * time.Hour)
	} else {
		// One writer at a time keeps SQLite away from "database is locked".
		db.SetMaxOpenConns(1)
	}

	return &DBHandler{DB: db, Driver: driver}, nil
}

func (handler DBHandler) Close() error {
	return handler.DB.Close()
}

// Migrate runs the schema statements in one transaction.
func (handler DBHandler) Migrate(statements []string) error {
	tx, err := handler.DB.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, statement := range statements {
		if _, err := tx.Exec(statement); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Batch creates a transaction and executes the batch of commands in that transaction.
// If a retryable error is received, the batch is retried.
func (handler DBHandler) Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {
	if handler.Driver == DriverSQLite {
		// SQLite transactions are always serializable.
		opts = &sql.TxOptions{}
	}

	for attempt := 1; ; attempt++ {
		results, err := handler.tryBatch(opts, commands)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "40001" && attempt < maxRetries {
			log.Warnf("🟡 Retryable Postgres error, retrying: %v", err)
			continue
		}
		return results, err
	}
}

func (handler DBHandler) tryBatch(opts *sql.TxOptions, commands []sqlbatch.Command) (results []interface{}, err error) {

	results = make([]interface{}, len(commands))

	tx, err := handler.DB.BeginTx(context.Background(), opts)
	if err != nil {
		return
	}
	defer tx.Rollback()

	results, err = sqlbatch.Batch(tx, commands)

	if err == nil {
		err = tx.Commit()
	}

	return
}
