package citadel

import (
	"context"
	"fmt"
	"time"
)

// ListContentBlocks returns all blocks for one page, ordered by section
// for stable output.
func (s *Store) ListContentBlocks(ctx context.Context, page string) ([]ContentBlock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page, section, content, updated_at
		FROM content_blocks
		WHERE page = ?
		ORDER BY section ASC`, page)
	if err != nil {
		return nil, fmt.Errorf("list content blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]ContentBlock, 0)
	for rows.Next() {
		var (
			b         ContentBlock
			updatedAt int64
		)
		if err := rows.Scan(&b.ID, &b.Page, &b.Section, &b.Content, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan content block: %w", err)
		}
		b.UpdatedAt = fromMillis(updatedAt)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// GetContentBlock returns one block by its (page, section) natural key.
func (s *Store) GetContentBlock(ctx context.Context, page, section string) (ContentBlock, error) {
	var (
		b         ContentBlock
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, page, section, content, updated_at
		FROM content_blocks
		WHERE page = ? AND section = ?`, page, section).
		Scan(&b.ID, &b.Page, &b.Section, &b.Content, &updatedAt)
	if err != nil {
		return ContentBlock{}, err
	}
	b.UpdatedAt = fromMillis(updatedAt)
	return b, nil
}

// UpsertContentBlock inserts or replaces the content for a (page,
// section) pair, which is the natural key for block editing.
func (s *Store) UpsertContentBlock(ctx context.Context, page, section, content string) (ContentBlock, error) {
	if page == "" {
		return ContentBlock{}, missingField("page")
	}
	if section == "" {
		return ContentBlock{}, missingField("section")
	}
	if content == "" {
		return ContentBlock{}, missingField("content")
	}
	now := toMillis(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_blocks (page, section, content, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(page, section) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		page, section, content, now)
	if err != nil {
		return ContentBlock{}, fmt.Errorf("upsert content block: %w", err)
	}
	return s.GetContentBlock(ctx, page, section)
}
