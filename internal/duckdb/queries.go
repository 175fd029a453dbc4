package duckdb

import (
	"context"
	"fmt"
)

// TotalSampleCount returns how many samples the recording holds.
func (s *Store) TotalSampleCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()

	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM samples`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("duckdb: counting samples: %w", err)
	}
	return count, nil
}

// RecentSamples returns up to limit samples for one series, newest last.
func (s *Store) RecentSamples(series, limit int) ([]SampleRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT series, name, time, value, received_at
		FROM (
		    SELECT * FROM samples WHERE series = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id`,
		series, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("duckdb: querying samples: %w", err)
	}
	defer rows.Close()

	var out []SampleRow
	for rows.Next() {
		var r SampleRow
		if err := rows.Scan(&r.Series, &r.Name, &r.Time, &r.Value, &r.ReceivedAt); err != nil {
			return nil, fmt.Errorf("duckdb: scanning sample: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
