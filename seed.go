package citadel

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// seedEpisode mirrors seed/episodes.json. The file lists episodes
// newest-first; order_index is assigned so the newest sorts highest.
type seedEpisode struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Notes       string `json:"notes"`
	Slug        string `json:"slug"`
}

// seedProject mirrors seed/internships.json.
type seedProject struct {
	Slug           string   `json:"slug"`
	Company        string   `json:"company"`
	Role           string   `json:"role"`
	Period         string   `json:"period"`
	Description    string   `json:"description"`
	Details        string   `json:"details"`
	Tags           []string `json:"tags"`
	ContactEmail   string   `json:"contact_email"`
	ContactSubject string   `json:"contact_subject"`
}

// SeedResult reports what one seed run did.
type SeedResult struct {
	EpisodesMigrated int
	EpisodesSkipped  int
	ProjectsMigrated int
	ProjectsSkipped  int
}

// RunSeed loads the embedded seed dataset, inserting only records whose
// slug is not already present. Every insert of one run happens inside a
// single transaction. The presence check and insert are not atomic
// against a concurrent run; the loser of that race fails on the slug
// unique constraint instead of inserting twice. Operator-invoked, not
// meant to run under load.
func (s *Store) RunSeed(ctx context.Context) (SeedResult, error) {
	var episodes []seedEpisode
	if err := loadSeedFile("seed/episodes.json", &episodes); err != nil {
		return SeedResult{}, err
	}
	var projects []seedProject
	if err := loadSeedFile("seed/internships.json", &projects); err != nil {
		return SeedResult{}, err
	}

	var result SeedResult
	now := toMillis(time.Now())
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		for idx, ep := range episodes {
			exists, err := rowExists(ctx, tx,
				`SELECT 1 FROM podcast_episodes WHERE slug = ?`, ep.Slug)
			if err != nil {
				return err
			}
			if exists {
				result.EpisodesSkipped++
				continue
			}
			// Newest-first file order: reverse for display precedence.
			orderIndex := len(episodes) - idx
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO podcast_episodes (title, description, video_url, slug, notes, order_index, published, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
				ep.Title, ep.Description, ep.VideoURL, ep.Slug, ep.Notes, orderIndex, now, now); err != nil {
				return fmt.Errorf("seed episode %q: %w", ep.Slug, err)
			}
			result.EpisodesMigrated++
		}

		for _, p := range projects {
			exists, err := rowExists(ctx, tx,
				`SELECT 1 FROM projects WHERE slug = ?`, p.Slug)
			if err != nil {
				return err
			}
			if exists {
				result.ProjectsSkipped++
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO projects (kind, company, role, period, description, details, tags, slug, contact_email, contact_subject, order_index, published, created_at, updated_at)
				VALUES ('internship', ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 1, ?, ?)`,
				p.Company, p.Role, p.Period, p.Description, p.Details,
				encodeTags(p.Tags), p.Slug, p.ContactEmail, p.ContactSubject, now, now); err != nil {
				return fmt.Errorf("seed project %q: %w", p.Slug, err)
			}
			result.ProjectsMigrated++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return result, nil
}

func loadSeedFile(name string, out any) error {
	data, err := seedFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("presence check: %w", err)
	}
	return true, nil
}
