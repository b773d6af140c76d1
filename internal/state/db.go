// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS optimizer_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			max_pools INTEGER NOT NULL,
			min_revenue_usd DECIMAL(20, 8) NOT NULL,
			risk_aversion INTEGER NOT NULL,
			avoidance_strength INTEGER NOT NULL,
			top_relay_count INTEGER NOT NULL,
			weight_scale_exp INTEGER NOT NULL,
			CONSTRAINT uq_optimizer_parameters_config_version UNIQUE (config_name, version),
			CONSTRAINT chk_risk_aversion_range CHECK (risk_aversion BETWEEN 0 AND 100),
			CONSTRAINT chk_avoidance_range CHECK (avoidance_strength BETWEEN 0 AND 100)
		);
		CREATE INDEX IF NOT EXISTS idx_optimizer_parameters_config_active_timestamp ON optimizer_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS run_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			run_number INTEGER NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			optimizer_params_id INTEGER REFERENCES optimizer_parameters(params_id),

			-- Inputs, summarized
			period BIGINT NOT NULL,
			pool_count INTEGER NOT NULL,
			voting_power TEXT NOT NULL,
			re_run BOOLEAN NOT NULL DEFAULT FALSE,

			-- Outputs
			total_expected_usd DECIMAL(20, 8) NOT NULL,
			funded_pools TEXT[],
			allocation JSONB NOT NULL,
			bot_output TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_run_snapshots_timestamp ON run_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_run_snapshots_run ON run_snapshots(run_number DESC);
		CREATE INDEX IF NOT EXISTS idx_run_snapshots_period ON run_snapshots(period DESC);

		-- Run counter table for persistent global run tracking
		CREATE TABLE IF NOT EXISTS run_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_run INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		-- Insert initial row if it doesn't exist
		INSERT INTO run_counter (id, current_run)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
