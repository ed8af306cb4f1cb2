package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"dwhload/internal/observability"
	"dwhload/pkg/errors"
	"dwhload/pkg/models"
)

// Service owns the single warehouse connection used by a run
type Service struct {
	cluster models.Cluster
	db      *sql.DB
	conn    *sql.Conn
	ownsDB  bool
	logger  *observability.Logger
}

// NewService creates a new warehouse service for the given cluster
func NewService(cluster models.Cluster, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.GetDefaultLogger()
	}
	return &Service{
		cluster: cluster,
		ownsDB:  true,
		logger:  logger.WithField("component", "warehouse"),
	}
}

// NewServiceWithDB wraps an already opened database handle. Close leaves db open.
func NewServiceWithDB(db *sql.DB, logger *observability.Logger) *Service {
	s := NewService(models.Cluster{}, logger)
	s.db = db
	s.ownsDB = false
	return s
}

// DSN builds the key/value connection string for the cluster
func DSN(cluster models.Cluster) string {
	sslMode := cluster.SSLMode
	if sslMode == "" {
		sslMode = models.DefaultSSLMode
	}

	pairs := []struct{ key, value string }{
		{"host", cluster.Host},
		{"dbname", cluster.DBName},
		{"user", cluster.User},
		{"password", cluster.Password},
		{"port", strconv.Itoa(cluster.Port)},
		{"sslmode", sslMode},
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+"="+quoteDSNValue(p.value))
	}
	return strings.Join(parts, " ")
}

func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Connect opens the database, verifies it and acquires the dedicated session
func (s *Service) Connect(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}

	if s.db == nil {
		driver := s.cluster.Driver
		if driver == "" {
			driver = models.DriverPostgres
		}

		s.logger.InfoWithFields("Connecting to warehouse", map[string]interface{}{
			"host":     s.cluster.Host,
			"port":     s.cluster.Port,
			"database": s.cluster.DBName,
			"driver":   driver,
		})

		db, err := sql.Open(driver, DSN(s.cluster))
		if err != nil {
			return errors.ConnectionError("Failed to open warehouse connection", err).
				WithContext("host", s.cluster.Host)
		}

		// One statement at a time over one session
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return errors.ConnectionError("Failed to connect to warehouse", err).
				WithContext("host", s.cluster.Host).
				WithContext("port", s.cluster.Port)
		}

		s.db = db
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		if s.ownsDB {
			s.db.Close()
			s.db = nil
		}
		return errors.CursorError(err)
	}

	s.conn = conn
	s.logger.Debug("Warehouse session acquired")
	return nil
}

// ExecCommit runs a single statement in its own transaction and commits it
func (s *Service) ExecCommit(ctx context.Context, query string) error {
	if s.conn == nil {
		return errors.New(errors.ErrCodeNotConnected, "Not connected to warehouse").
			WithSuggestions("Call Connect() before executing statements")
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin transaction")
	}

	if _, err := tx.ExecContext(ctx, query); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.WarnWithFields("Rollback failed", map[string]interface{}{"error": rbErr.Error()})
		}
		return errors.Wrap(err, errors.ErrCodeStatementFailed, "Statement execution failed").
			WithContext("query", firstLine(query))
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit transaction")
	}

	return nil
}

// Close releases the session and, when owned, the database handle
func (s *Service) Close() error {
	var firstErr error

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			firstErr = fmt.Errorf("failed to release session: %w", err)
		}
		s.conn = nil
	}

	if s.db != nil && s.ownsDB {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close connection: %w", err)
		}
		s.db = nil
		s.logger.Debug("Warehouse connection closed")
	}

	return firstErr
}

// Connected reports whether a session is currently held
func (s *Service) Connected() bool {
	return s.conn != nil
}

func firstLine(query string) string {
	query = strings.TrimSpace(query)
	if i := strings.IndexByte(query, '\n'); i >= 0 {
		return query[:i]
	}
	return query
}
