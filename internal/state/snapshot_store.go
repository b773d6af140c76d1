/*

This file persists one row per optimization run: the summarized inputs, the
parameters used, and the full allocation output as JSONB, so the web
dashboard and the analytics layer can reconstruct any past run.

*/

package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/ve33-labs/vom/internal/types"
)

// SaveRunSnapshot persists a completed run and returns its snapshot ID.
func SaveRunSnapshot(snapshot types.RunSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	allocationJSON, err := json.Marshal(snapshot.Allocation)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal allocation: %w", err)
	}

	fundedPools := make([]string, 0, len(snapshot.Allocation.Allocations))
	for _, a := range snapshot.Allocation.Allocations {
		if a.Votes.IsPositive() {
			fundedPools = append(fundedPools, string(a.Address))
		}
	}

	stmt := `
        INSERT INTO run_snapshots (
            run_number, snapshot_timestamp, optimizer_params_id,
            period, pool_count, voting_power, re_run,
            total_expected_usd, funded_pools, allocation, bot_output
        ) VALUES (
            $1, $2, $3,
            $4, $5, $6, $7,
            $8, $9, $10, $11
        ) RETURNING snapshot_id;`

	var snapshotID int64
	timestamp := snapshot.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	err = DB.QueryRow(
		stmt,
		snapshot.RunNumber, timestamp, snapshot.ParamsID,
		snapshot.Period, snapshot.PoolCount, snapshot.VotingPower, snapshot.ReRun,
		snapshot.TotalExpectedUSD, pq.Array(fundedPools), allocationJSON, snapshot.BotOutput,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert run snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Int("run_number", snapshot.RunNumber).
		Uint64("period", snapshot.Period).
		Msg("Saved run snapshot")
	return snapshotID, nil
}

// GetRunSnapshotByID loads a single snapshot with its full allocation.
func GetRunSnapshotByID(snapshotID int64) (*types.RunSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT snapshot_id, run_number, snapshot_timestamp, optimizer_params_id,
               period, pool_count, voting_power, re_run,
               total_expected_usd, allocation, bot_output
        FROM run_snapshots
        WHERE snapshot_id = $1;`

	row := DB.QueryRow(query, snapshotID)
	snapshot, err := scanRunSnapshot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run snapshot %d not found", snapshotID)
		}
		return nil, fmt.Errorf("failed to load run snapshot %d: %w", snapshotID, err)
	}
	return snapshot, nil
}

// GetRecentRunSnapshots loads the most recent runs, newest first.
func GetRecentRunSnapshots(limit int) ([]types.RunSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT snapshot_id, run_number, snapshot_timestamp, optimizer_params_id,
               period, pool_count, voting_power, re_run,
               total_expected_usd, allocation, bot_output
        FROM run_snapshots
        ORDER BY snapshot_timestamp DESC
        LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.RunSnapshot
	for rows.Next() {
		snapshot, err := scanRunSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run snapshot: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run snapshots: %w", err)
	}

	log.Debug().Int("count", len(snapshots)).Msg("Loaded recent run snapshots")
	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunSnapshot(row rowScanner) (*types.RunSnapshot, error) {
	var snapshot types.RunSnapshot
	var allocationJSON []byte

	err := row.Scan(
		&snapshot.SnapshotID, &snapshot.RunNumber, &snapshot.Timestamp, &snapshot.ParamsID,
		&snapshot.Period, &snapshot.PoolCount, &snapshot.VotingPower, &snapshot.ReRun,
		&snapshot.TotalExpectedUSD, &allocationJSON, &snapshot.BotOutput,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(allocationJSON, &snapshot.Allocation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allocation for snapshot %d: %w", snapshot.SnapshotID, err)
	}
	return &snapshot, nil
}
