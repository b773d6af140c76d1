// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ve33-labs/vom/internal/types"
)

// SaveOptimizerParameters saves a new version of optimizer parameters.
func SaveOptimizerParameters(params types.OptimizerParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if err := params.Validate(); err != nil {
		return 0, fmt.Errorf("refusing to save invalid parameters: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE optimizer_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO optimizer_parameters (
            version, config_name, is_active, activated_at, created_at,
            max_pools, min_revenue_usd,
            risk_aversion, avoidance_strength, top_relay_count,
            weight_scale_exp
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7,
            $8, $9, $10,
            $11
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.MaxPools, params.MinRevenueUSD,
		params.RiskAversion, params.AvoidanceStrength, params.TopRelayCount,
		params.WeightScaleExp,
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert optimizer parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved optimizer parameters")
	return paramsID, nil
}

// LoadActiveOptimizerParameters loads the currently active optimizer parameters.
func LoadActiveOptimizerParameters(configName string) (*types.OptimizerParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT
            max_pools, min_revenue_usd,
            risk_aversion, avoidance_strength, top_relay_count,
            weight_scale_exp
        FROM optimizer_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	p := &types.OptimizerParameters{}
	row := DB.QueryRow(query, configName)
	err := row.Scan(
		&p.MaxPools, &p.MinRevenueUSD,
		&p.RiskAversion, &p.AvoidanceStrength, &p.TopRelayCount,
		&p.WeightScaleExp,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active optimizer parameters found for config '%s'", configName)
		}
		return nil, fmt.Errorf("failed to scan active optimizer parameters for config '%s': %w", configName, err)
	}
	log.Info().Str("config", configName).Msg("Loaded active optimizer parameters")
	return p, nil
}

// GetActiveOptimizerParametersID returns the params_id of the currently active optimizer parameters
func GetActiveOptimizerParametersID(configName string) (*int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT params_id
        FROM optimizer_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var paramsID int64
	row := DB.QueryRow(query, configName)
	err := row.Scan(&paramsID)

	if err != nil {
		if err == sql.ErrNoRows {
			// No active parameters found - this is valid, return nil
			log.Debug().Str("config", configName).Msg("No active optimizer parameters found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active optimizer parameters ID for config '%s': %w", configName, err)
	}

	log.Debug().
		Str("config", configName).
		Int64("params_id", paramsID).
		Msg("Retrieved active optimizer parameters ID")

	return &paramsID, nil
}
