package citadel

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// EntityCounts splits a table's row count into published and total.
type EntityCounts struct {
	Published int64 `json:"published"`
	Total     int64 `json:"total"`
}

// RecentEpisode is the dashboard projection of a recently created episode.
type RecentEpisode struct {
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentProject is the dashboard projection of a recently created project.
type RecentProject struct {
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) EpisodeCounts(ctx context.Context) (EntityCounts, error) {
	var c EntityCounts
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(published), 0), COUNT(*) FROM podcast_episodes`).
		Scan(&c.Published, &c.Total)
	if err != nil {
		return EntityCounts{}, fmt.Errorf("count episodes: %w", err)
	}
	return c, nil
}

func (s *Store) ProjectCounts(ctx context.Context) (EntityCounts, error) {
	var c EntityCounts
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(published), 0), COUNT(*) FROM projects`).
		Scan(&c.Published, &c.Total)
	if err != nil {
		return EntityCounts{}, fmt.Errorf("count projects: %w", err)
	}
	return c, nil
}

func (s *Store) ImageCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return n, nil
}

// RecentEpisodes returns the n most recently created episodes,
// regardless of published state.
func (s *Store) RecentEpisodes(ctx context.Context, n int) ([]RecentEpisode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, created_at FROM podcast_episodes
		ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("recent episodes: %w", err)
	}
	defer rows.Close()

	recent := make([]RecentEpisode, 0, n)
	for rows.Next() {
		var (
			r         RecentEpisode
			createdAt int64
		)
		if err := rows.Scan(&r.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("scan recent episode: %w", err)
		}
		r.CreatedAt = fromMillis(createdAt)
		recent = append(recent, r)
	}
	return recent, rows.Err()
}

// RecentProjects returns the n most recently created projects.
func (s *Store) RecentProjects(ctx context.Context, n int) ([]RecentProject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT company, role, created_at FROM projects
		ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("recent projects: %w", err)
	}
	defer rows.Close()

	recent := make([]RecentProject, 0, n)
	for rows.Next() {
		var (
			r         RecentProject
			createdAt int64
		)
		if err := rows.Scan(&r.Company, &r.Role, &createdAt); err != nil {
			return nil, fmt.Errorf("scan recent project: %w", err)
		}
		r.CreatedAt = fromMillis(createdAt)
		recent = append(recent, r)
	}
	return recent, rows.Err()
}

const recentLimit = 5

func (a *App) handleAnalyticsOverview(c echo.Context) error {
	ctx := c.Request().Context()

	visitors, err := a.Store.VisitorCount(ctx)
	if err != nil {
		return serverError(c, err)
	}
	episodes, err := a.Store.EpisodeCounts(ctx)
	if err != nil {
		return serverError(c, err)
	}
	projects, err := a.Store.ProjectCounts(ctx)
	if err != nil {
		return serverError(c, err)
	}
	images, err := a.Store.ImageCount(ctx)
	if err != nil {
		return serverError(c, err)
	}
	recentEpisodes, err := a.Store.RecentEpisodes(ctx, recentLimit)
	if err != nil {
		return serverError(c, err)
	}
	recentProjects, err := a.Store.RecentProjects(ctx, recentLimit)
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"visitor_count":   visitors,
		"podcasts":        episodes,
		"projects":        projects,
		"images":          images,
		"recent_podcasts": recentEpisodes,
		"recent_projects": recentProjects,
	})
}

func (a *App) handleAnalyticsVisitors(c echo.Context) error {
	count, err := a.Store.VisitorCount(c.Request().Context())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"current_count": count})
}
