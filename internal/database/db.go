package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DMounas/TradePulse-HFT/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	// Create PostgreSQL connection string
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id SERIAL PRIMARY KEY,
			type TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)

	return err
}

// RecordTrade persists an executed trade and returns its assigned id.
func (db *DB) RecordTrade(ctx context.Context, tradeType string, price, amount float64) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO trades (type, price, amount)
		VALUES ($1, $2, $3)
		RETURNING id
	`, tradeType, price, amount).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("inserting trade: %w", err)
	}

	return id, nil
}

// RecentTrades returns up to limit trades, newest first.
func (db *DB) RecentTrades(ctx context.Context, limit int) ([]models.TradeRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, type, price, amount, timestamp
		FROM trades
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)

	if err != nil {
		return nil, fmt.Errorf("querying trades: %w", err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var trade models.TradeRecord
		if err := rows.Scan(&trade.ID, &trade.Type, &trade.Price, &trade.Amount, &trade.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning trade: %w", err)
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}
