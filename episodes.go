package citadel

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const episodeColumns = `id, title, description, video_url, slug, notes, order_index, published, created_at, updated_at`

// EpisodeInput carries the fields for creating an episode. Published
// defaults to true when absent from the request body.
type EpisodeInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Slug        string `json:"slug"`
	Notes       string `json:"notes"`
	OrderIndex  int    `json:"order_index"`
	Published   *bool  `json:"published"`
}

func (in *EpisodeInput) validate() error {
	switch {
	case in.Title == "":
		return missingField("title")
	case in.Description == "":
		return missingField("description")
	case in.VideoURL == "":
		return missingField("video_url")
	case in.Slug == "":
		return missingField("slug")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (Episode, error) {
	var (
		e                    Episode
		published            int
		createdAt, updatedAt int64
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.VideoURL, &e.Slug,
		&e.Notes, &e.OrderIndex, &published, &createdAt, &updatedAt)
	if err != nil {
		return Episode{}, err
	}
	e.Published = published == 1
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}

// ListEpisodes returns episodes ordered by order_index descending, ties
// broken by created_at descending. This ordering drives the public site
// display and must stay stable.
func (s *Store) ListEpisodes(ctx context.Context, publishedOnly bool) ([]Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM podcast_episodes`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY order_index DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	episodes := make([]Episode, 0)
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// GetEpisodeBySlug returns one episode regardless of published state.
func (s *Store) GetEpisodeBySlug(ctx context.Context, slug string) (Episode, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+episodeColumns+` FROM podcast_episodes WHERE slug = ?`, slug)
	return scanEpisode(row)
}

// CreateEpisode validates required fields and inserts a new episode.
// Slug uniqueness is enforced by the store; a duplicate surfaces as a
// constraint error the handler maps for the caller.
func (s *Store) CreateEpisode(ctx context.Context, in EpisodeInput) (Episode, error) {
	if err := in.validate(); err != nil {
		return Episode{}, err
	}
	published := 1
	if in.Published != nil && !*in.Published {
		published = 0
	}
	now := toMillis(time.Now())

	var created Episode
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO podcast_episodes (title, description, video_url, slug, notes, order_index, published, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.Title, in.Description, in.VideoURL, in.Slug, in.Notes, in.OrderIndex, published, now, now)
		if err != nil {
			return fmt.Errorf("insert episode: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err = scanEpisode(tx.QueryRowContext(ctx,
			`SELECT `+episodeColumns+` FROM podcast_episodes WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return Episode{}, err
	}
	return created, nil
}

// UpdateEpisode applies a partial update. Only fields present in the
// patch are written; updated_at is always refreshed. An empty patch is
// rejected before the row is even looked up.
func (s *Store) UpdateEpisode(ctx context.Context, id int64, patch EpisodePatch) (Episode, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.VideoURL != nil {
		set("video_url", *patch.VideoURL)
	}
	if patch.Slug != nil {
		set("slug", *patch.Slug)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.OrderIndex != nil {
		set("order_index", *patch.OrderIndex)
	}
	if patch.Published != nil {
		published := 0
		if *patch.Published {
			published = 1
		}
		set("published", published)
	}
	if len(sets) == 0 {
		return Episode{}, errNoFields
	}
	set("updated_at", toMillis(time.Now()))
	args = append(args, id)

	var updated Episode
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE podcast_episodes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update episode: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		updated, err = scanEpisode(tx.QueryRowContext(ctx,
			`SELECT `+episodeColumns+` FROM podcast_episodes WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return Episode{}, err
	}
	return updated, nil
}

// DeleteEpisode removes an episode by id.
func (s *Store) DeleteEpisode(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM podcast_episodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete episode: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderEpisodes applies each ordinal update inside one transaction.
// Updates naming a nonexistent id are skipped rather than aborting the
// batch; duplicate order_index values are allowed.
func (s *Store) ReorderEpisodes(ctx context.Context, updates []OrderUpdate) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			if _, err := tx.ExecContext(ctx,
				`UPDATE podcast_episodes SET order_index = ? WHERE id = ?`, u.OrderIndex, u.ID); err != nil {
				return fmt.Errorf("reorder episode %d: %w", u.ID, err)
			}
		}
		return nil
	})
}
