/*

This file contains the read-side queries that feed the analytics layer:
expected-value history and per-period run summaries.

*/

package state

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// RunSummary is a lightweight projection of one run for trend views.
type RunSummary struct {
	SnapshotID       int64   `json:"snapshot_id"`
	RunNumber        int     `json:"run_number"`
	Period           uint64  `json:"period"`
	PoolCount        int     `json:"pool_count"`
	ReRun            bool    `json:"re_run"`
	TotalExpectedUSD float64 `json:"total_expected_usd"`
}

// GetExpectedValueHistory returns total_expected_usd for the most recent
// runs, oldest first, for statistical summaries.
func GetExpectedValueHistory(limit int) ([]float64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
        SELECT total_expected_usd FROM (
            SELECT total_expected_usd, snapshot_timestamp
            FROM run_snapshots
            ORDER BY snapshot_timestamp DESC
            LIMIT $1
        ) recent
        ORDER BY snapshot_timestamp ASC;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expected value history: %w", err)
	}
	defer rows.Close()

	var history []float64
	for rows.Next() {
		var ev float64
		if err := rows.Scan(&ev); err != nil {
			return nil, fmt.Errorf("failed to scan expected value: %w", err)
		}
		history = append(history, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expected value history: %w", err)
	}

	log.Debug().Int("points", len(history)).Msg("Loaded expected value history")
	return history, nil
}

// GetRunSummaries returns lightweight summaries of the most recent runs,
// newest first.
func GetRunSummaries(limit int) ([]RunSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT snapshot_id, run_number, period, pool_count, re_run, total_expected_usd
        FROM run_snapshots
        ORDER BY snapshot_timestamp DESC
        LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.SnapshotID, &s.RunNumber, &s.Period, &s.PoolCount, &s.ReRun, &s.TotalExpectedUSD); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run summaries: %w", err)
	}

	return summaries, nil
}
