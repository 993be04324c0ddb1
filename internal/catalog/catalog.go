// Package catalog provides the Postgres-backed content detail lookup used to
// resolve cached content IDs into full feed entries.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reelworks/feedcache/pkg/cache"
	"github.com/reelworks/feedcache/pkg/feed"
)

// ContentDetails resolves content IDs against the relational catalog.
// It implements feed.ContentDetailLookup.
type ContentDetails struct {
	pool *pgxpool.Pool
}

// NewContentDetails creates a lookup backed by Postgres.
func NewContentDetails(pool *pgxpool.Pool) *ContentDetails {
	return &ContentDetails{pool: pool}
}

// Resolve returns details for ids in input order. Soft-deleted content, and
// content from authors the owner has blocked, is silently omitted — the
// returned page may be shorter than the input. IDs that do not parse as
// UUIDs are skipped.
func (c *ContentDetails) Resolve(ctx context.Context, owner cache.Owner, ids []string) ([]feed.ContentDetail, error) {
	if len(ids) == 0 {
		return []feed.ContentDetail{}, nil
	}

	contentIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		contentIDs = append(contentIDs, parsed)
	}
	if len(contentIDs) == 0 {
		return []feed.ContentDetail{}, nil
	}

	var viewerID *uuid.UUID
	if id, ok := owner.UserID(); ok {
		viewerID = &id
	}

	const q = `SELECT c.id, c.title, c.author_id, c.media_url, c.thumbnail_url, c.duration_ms, c.published_at
	           FROM unnest($1::uuid[]) WITH ORDINALITY AS req(id, ord)
	           JOIN contents c ON c.id = req.id
	           WHERE c.deleted_at IS NULL
	             AND c.published_at IS NOT NULL
	             AND ($2::uuid IS NULL OR NOT EXISTS (
	                 SELECT 1 FROM user_blocks b
	                 WHERE b.blocker_id = $2 AND b.blocked_id = c.author_id))
	           ORDER BY req.ord`

	rows, err := c.pool.Query(ctx, q, contentIDs, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query content details: %w", err)
	}
	defer rows.Close()

	out := make([]feed.ContentDetail, 0, len(contentIDs))
	for rows.Next() {
		var (
			id          uuid.UUID
			authorID    uuid.UUID
			detail      feed.ContentDetail
			durationMS  *int64
			publishedAt time.Time
		)
		if err := rows.Scan(&id, &detail.Title, &authorID, &detail.MediaURL,
			&detail.ThumbnailURL, &durationMS, &publishedAt); err != nil {
			return nil, fmt.Errorf("scan content detail: %w", err)
		}
		detail.ID = id.String()
		detail.AuthorID = authorID.String()
		if durationMS != nil {
			detail.DurationMS = *durationMS
		}
		detail.PublishedAt = publishedAt
		out = append(out, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content details: %w", err)
	}

	return out, nil
}
