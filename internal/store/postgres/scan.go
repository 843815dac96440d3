package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/waybook/waybook/internal/model"
)

type rowScanner interface{ Scan(dest ...any) error }

func scanPost(s rowScanner) (*model.Post, error) {
	var p model.Post
	var postType string
	if err := s.Scan(&p.ID, &p.PersonaID, &p.Caption, &p.Mood, &p.ExperienceRating, &postType, &p.Location,
		&p.IsGratitude, &p.IsRant, &p.IsDream, &p.IsFutureYou, &p.ScheduledFor, &p.AutoDeleteDate,
		&p.VoiceMemoFile, &p.VoiceMemoSeconds, &p.MemoryNotes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.PostType = model.PostType(postType)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.ScheduledFor = toUTCPtr(p.ScheduledFor)
	p.AutoDeleteDate = toUTCPtr(p.AutoDeleteDate)
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]*model.Post, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// attachPostChildren loads tag sets and ordered media for the given posts
// in three batch queries.
func attachPostChildren(ctx context.Context, q querier, posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[string]*model.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	ph := placeholders(1, len(ids))
	args := toAnys(ids)

	load := func(table string, assign func(p *model.Post, tag string)) error {
		rows, err := q.QueryContext(ctx,
			`SELECT post_id, tag FROM `+table+` WHERE post_id IN (`+ph+`) ORDER BY tag ASC`, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var postID, tag string
			if err := rows.Scan(&postID, &tag); err != nil {
				return err
			}
			if p := byID[postID]; p != nil {
				assign(p, tag)
			}
		}
		return rows.Err()
	}

	if err := load("post_activity_tags", func(p *model.Post, tag string) {
		p.ActivityTags = append(p.ActivityTags, tag)
	}); err != nil {
		return err
	}
	if err := load("post_people_tags", func(p *model.Post, tag string) {
		p.PeopleTags = append(p.PeopleTags, tag)
	}); err != nil {
		return err
	}

	rows, err := q.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media_items
        WHERE post_id IN (`+ph+`) ORDER BY post_id ASC, "position" ASC`, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		m, err := scanMediaItem(rows)
		if err != nil {
			return err
		}
		if p := byID[m.PostID]; p != nil {
			p.Media = append(p.Media, *m)
		}
	}
	return rows.Err()
}

func scanMediaItem(s rowScanner) (*model.MediaItem, error) {
	var m model.MediaItem
	var mt string
	if err := s.Scan(&m.ID, &m.PostID, &mt, &m.Filename, &m.ThumbnailFile, &m.FileSize,
		&m.Width, &m.Height, &m.Duration, &m.Position, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = model.MediaType(mt)
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func toUTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
