package citadel

import (
	"context"
	"fmt"
)

// VisitorCount reads the singleton visitor counter.
func (s *Store) VisitorCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM visitor_count WHERE id = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("read visitor count: %w", err)
	}
	return count, nil
}

// IncrementVisitors bumps the singleton counter and returns the new
// value. The row-level write lock makes concurrent increments safe.
func (s *Store) IncrementVisitors(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE visitor_count SET count = count + 1 WHERE id = 1 RETURNING count`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment visitor count: %w", err)
	}
	return count, nil
}
