package sqlite

import (
	"context"
	"database/sql"

	"github.com/waybook/waybook/internal/model"
)

type rowScanner interface{ Scan(dest ...any) error }

func scanPost(s rowScanner) (*model.Post, error) {
	var p model.Post
	var postType string
	var scheduled, autoDelete *int64
	var created, updated int64
	if err := s.Scan(&p.ID, &p.PersonaID, &p.Caption, &p.Mood, &p.ExperienceRating, &postType, &p.Location,
		&p.IsGratitude, &p.IsRant, &p.IsDream, &p.IsFutureYou, &scheduled, &autoDelete,
		&p.VoiceMemoFile, &p.VoiceMemoSeconds, &p.MemoryNotes, &created, &updated); err != nil {
		return nil, err
	}
	p.PostType = model.PostType(postType)
	p.ScheduledFor = fromMicrosPtr(scheduled)
	p.AutoDeleteDate = fromMicrosPtr(autoDelete)
	p.CreatedAt = fromMicros(created)
	p.UpdatedAt = fromMicros(updated)
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
	ph := placeholders(len(ids))
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
        WHERE post_id IN (`+ph+`) ORDER BY post_id ASC, position ASC`, args...)
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
	var created int64
	if err := s.Scan(&m.ID, &m.PostID, &mt, &m.Filename, &m.ThumbnailFile, &m.FileSize,
		&m.Width, &m.Height, &m.Duration, &m.Position, &created); err != nil {
		return nil, err
	}
	m.Type = model.MediaType(mt)
	m.CreatedAt = fromMicros(created)
	return &m, nil
}
