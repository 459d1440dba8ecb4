// Package quire provides a typed, database-like interface for Google Sheets.
// A sheet is described by a Schema; a Model bound to it inserts, reads,
// updates and soft-deletes rows, and runs filtered queries compiled to the
// Google Visualization query language.
package quire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// DB represents a database connection to a Google Sheet.
type DB struct {
	spreadsheetID string
	client        SheetsClient
	logger        *zerolog.Logger
	now           func() time.Time
}

// SheetsClient defines the interface for Google Sheets operations.
type SheetsClient interface {
	Read(ctx context.Context, range_ string) ([][]interface{}, error)
	Write(ctx context.Context, range_ string, values [][]interface{}) error
	// Append adds rows after the table found at range_ and returns the
	// range that was written, in A1 notation.
	Append(ctx context.Context, range_ string, values [][]interface{}) (string, error)
	BatchWrite(ctx context.Context, data []ValueRange) error
	// Query runs a visualization query against sheet (empty for the first
	// sheet) and returns the CSV response body.
	Query(ctx context.Context, sheet, query string) (string, error)
}

// ValueRange is one range of a batch write.
type ValueRange struct {
	Range  string
	Values [][]interface{}
}

// Config holds database configuration.
type Config struct {
	SpreadsheetID string
	Credentials   []byte // Service account JSON
	// TokenSource takes precedence over Credentials, e.g. one built by
	// NewRefreshTokenSource.
	TokenSource oauth2.TokenSource
	// QueryURL overrides DefaultQueryURL.
	QueryURL string
	Logger   *zerolog.Logger
}

var nopLogger = zerolog.Nop()

// New creates a new DB instance with the provided configuration.
func New(cfg Config) (*DB, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}

	if len(cfg.Credentials) == 0 && cfg.TokenSource == nil {
		return nil, errors.New("credentials are required")
	}

	ctx := context.Background()

	ts := cfg.TokenSource
	if ts == nil {
		var err error
		ts, err = ServiceAccountTokenSource(ctx, cfg.Credentials)
		if err != nil {
			return nil, err
		}
	}

	client, err := newSheetsClient(ctx, ts, cfg.SpreadsheetID, cfg.QueryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &DB{
		spreadsheetID: cfg.SpreadsheetID,
		client:        client,
		logger:        cfg.Logger,
	}, nil
}

// NewWithClient creates a DB over an existing SheetsClient.
func NewWithClient(spreadsheetID string, client SheetsClient, logger *zerolog.Logger) *DB {
	return &DB{
		spreadsheetID: spreadsheetID,
		client:        client,
		logger:        logger,
	}
}

// Model returns a Model that reads and writes rows shaped by schema.
func (db *DB) Model(schema *Schema, opts ...ModelOption) *Model {
	m := &Model{
		db:     db,
		schema: schema,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close releases any resources held by the database.
func (db *DB) Close() error {
	return nil
}

func (db *DB) log() *zerolog.Logger {
	if db.logger == nil {
		return &nopLogger
	}
	return db.logger
}

func (db *DB) timeNow() time.Time {
	if db.now != nil {
		return db.now()
	}
	return time.Now()
}
