package citadel

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const projectColumns = `id, kind, company, role, period, description, details, tags, slug, contact_email, contact_subject, order_index, published, created_at, updated_at`

// ProjectInput carries the fields for creating a project or internship.
type ProjectInput struct {
	Kind           string   `json:"type"`
	Company        string   `json:"company"`
	Role           string   `json:"role"`
	Period         string   `json:"period"`
	Description    string   `json:"description"`
	Details        string   `json:"details"`
	Tags           []string `json:"tags"`
	Slug           string   `json:"slug"`
	ContactEmail   string   `json:"contact_email"`
	ContactSubject string   `json:"contact_subject"`
	OrderIndex     int      `json:"order_index"`
	Published      *bool    `json:"published"`
}

func (in *ProjectInput) validate() error {
	switch {
	case in.Kind == "":
		return missingField("type")
	case in.Company == "":
		return missingField("company")
	case in.Role == "":
		return missingField("role")
	case in.Period == "":
		return missingField("period")
	case in.Description == "":
		return missingField("description")
	case in.Details == "":
		return missingField("details")
	case in.Slug == "":
		return missingField("slug")
	}
	return nil
}

// Tags live in a JSON-encoded TEXT column so insertion order survives
// round-trips exactly and duplicates are not collapsed.
func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeTags(raw string) []string {
	tags := []string{}
	_ = json.Unmarshal([]byte(raw), &tags)
	return tags
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p                    Project
		tagsJSON             string
		published            int
		createdAt, updatedAt int64
	)
	err := row.Scan(&p.ID, &p.Kind, &p.Company, &p.Role, &p.Period, &p.Description,
		&p.Details, &tagsJSON, &p.Slug, &p.ContactEmail, &p.ContactSubject,
		&p.OrderIndex, &published, &createdAt, &updatedAt)
	if err != nil {
		return Project{}, err
	}
	p.Tags = decodeTags(tagsJSON)
	p.Published = published == 1
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

// ListProjects returns projects ordered by order_index descending with
// created_at descending as the tiebreak. kind filters to one entry type
// ("internship", "project") when non-empty.
func (s *Store) ListProjects(ctx context.Context, kind string, publishedOnly bool) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var where []string
	var args []any
	if publishedOnly {
		where = append(where, "published = 1")
	}
	if kind != "" {
		where = append(where, "kind = ?")
		args = append(args, kind)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY order_index DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProjectBySlug returns one project regardless of published state.
func (s *Store) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE slug = ?`, slug)
	return scanProject(row)
}

// CreateProject validates required fields and inserts a new project.
func (s *Store) CreateProject(ctx context.Context, in ProjectInput) (Project, error) {
	if err := in.validate(); err != nil {
		return Project{}, err
	}
	published := 1
	if in.Published != nil && !*in.Published {
		published = 0
	}
	now := toMillis(time.Now())

	var created Project
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO projects (kind, company, role, period, description, details, tags, slug, contact_email, contact_subject, order_index, published, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.Kind, in.Company, in.Role, in.Period, in.Description, in.Details,
			encodeTags(in.Tags), in.Slug, in.ContactEmail, in.ContactSubject,
			in.OrderIndex, published, now, now)
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err = scanProject(tx.QueryRowContext(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return Project{}, err
	}
	return created, nil
}

// UpdateProject applies a partial update from the allow-listed patch.
func (s *Store) UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (Project, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Kind != nil {
		set("kind", *patch.Kind)
	}
	if patch.Company != nil {
		set("company", *patch.Company)
	}
	if patch.Role != nil {
		set("role", *patch.Role)
	}
	if patch.Period != nil {
		set("period", *patch.Period)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Details != nil {
		set("details", *patch.Details)
	}
	if patch.Tags != nil {
		set("tags", encodeTags(*patch.Tags))
	}
	if patch.Slug != nil {
		set("slug", *patch.Slug)
	}
	if patch.ContactEmail != nil {
		set("contact_email", *patch.ContactEmail)
	}
	if patch.ContactSubject != nil {
		set("contact_subject", *patch.ContactSubject)
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
		return Project{}, errNoFields
	}
	set("updated_at", toMillis(time.Now()))
	args = append(args, id)

	var updated Project
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		updated, err = scanProject(tx.QueryRowContext(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return Project{}, err
	}
	return updated, nil
}

// DeleteProject removes a project by id.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
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

// ReorderProjects mirrors ReorderEpisodes: best-effort ordinal updates
// inside one transaction, unknown ids skipped.
func (s *Store) ReorderProjects(ctx context.Context, updates []OrderUpdate) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			if _, err := tx.ExecContext(ctx,
				`UPDATE projects SET order_index = ? WHERE id = ?`, u.OrderIndex, u.ID); err != nil {
				return fmt.Errorf("reorder project %d: %w", u.ID, err)
			}
		}
		return nil
	})
}
