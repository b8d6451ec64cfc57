// Package database provisions scratch MySQL databases for suites that ask
// for a fresh schema per instance.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"

	"caserun/internal/logging"
)

// Settings are the server connection parameters.
type Settings struct {
	Host     string
	Port     string
	User     string
	Password string
}

// SettingsFromEnv reads DB_HOST, DB_PORT, DB_USERNAME and DB_PASSWORD,
// falling back to a local root connection.
func SettingsFromEnv() Settings {
	s := Settings{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
	}
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Port == "" {
		s.Port = "3306"
	}
	if s.User == "" {
		s.User = "root"
	}
	return s
}

// DSN returns a data source name for the server, without selecting a
// database.
func (s Settings) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(s.Host, s.Port)
	return cfg.FormatDSN()
}

// Manager creates and drops scratch databases over a single shared
// connection pool.
type Manager struct {
	settings Settings

	mu sync.Mutex
	db *sql.DB
}

// NewManager creates a Manager. No connection is made until first use.
func NewManager(s Settings) *Manager {
	return &Manager{settings: s}
}

func (m *Manager) conn(ctx context.Context) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		return m.db, nil
	}

	db, err := sql.Open("mysql", m.settings.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	m.db = db
	return db, nil
}

// Recreate drops name if it exists and creates it empty.
func (m *Manager) Recreate(ctx context.Context, name string) error {
	if !IsValidName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}
	db, err := m.conn(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE `%s`", name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	logging.Debug("Database", "recreated %s", name)
	return nil
}

// Drop removes name. Dropping a missing database is not an error.
func (m *Manager) Drop(ctx context.Context, name string) error {
	if !IsValidName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}
	db, err := m.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	logging.Debug("Database", "dropped %s", name)
	return nil
}

// Exists checks if a database exists
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	db, err := m.conn(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err = db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// Close releases the connection pool, if one was opened.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

// IsValidName validates a database name before it is spliced into DDL.
func IsValidName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	// Check for SQL injection patterns
	invalid := []string{"'", "\"", "`", ";", "--", "/*", "*/", " ", "DROP", "DELETE", "TRUNCATE"}
	upper := strings.ToUpper(name)
	for _, s := range invalid {
		if strings.Contains(upper, s) {
			return false
		}
	}
	return true
}
