package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
)

type posts struct{ db *sql.DB }

const postColumns = `post_id, persona_id, caption, mood, experience_rating, post_type, location,
    is_gratitude, is_rant, is_dream, is_future_you, scheduled_for, auto_delete_date,
    voice_memo_file, voice_memo_seconds, memory_notes, created_at, updated_at`

func (r *posts) Create(ctx context.Context, p *model.Post) (*model.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out, err := insertPost(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertPost(ctx context.Context, tx *sql.Tx, p *model.Post) (*model.Post, error) {
	ok, err := exists(ctx, tx, "personas", "persona_id", p.PersonaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewNotFoundError("personaId", fmt.Sprintf("persona %s does not exist", p.PersonaID))
	}

	out := *p
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now()
	} else {
		out.CreatedAt = utc(out.CreatedAt)
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = out.CreatedAt
	} else {
		out.UpdatedAt = utc(out.UpdatedAt)
	}
	out.ScheduledFor = utcPtr(out.ScheduledFor)
	out.AutoDeleteDate = utcPtr(out.AutoDeleteDate)

	_, err = tx.ExecContext(ctx, `INSERT INTO posts (`+postColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		out.ID, out.PersonaID, out.Caption, out.Mood, out.ExperienceRating, string(out.PostType), out.Location,
		out.IsGratitude, out.IsRant, out.IsDream, out.IsFutureYou, out.ScheduledFor, out.AutoDeleteDate,
		out.VoiceMemoFile, out.VoiceMemoSeconds, out.MemoryNotes, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, translateErr(err, "postId")
	}

	if err := insertTags(ctx, tx, "post_activity_tags", out.ID, out.ActivityTags); err != nil {
		return nil, err
	}
	if err := insertTags(ctx, tx, "post_people_tags", out.ID, out.PeopleTags); err != nil {
		return nil, err
	}

	media := make([]model.MediaItem, len(out.Media))
	for i := range out.Media {
		m := out.Media[i]
		m.PostID = out.ID
		m.Position = i
		saved, err := insertMediaItem(ctx, tx, &m, false)
		if err != nil {
			return nil, err
		}
		media[i] = *saved
	}
	out.Media = media
	return &out, nil
}

func insertTags(ctx context.Context, tx *sql.Tx, table, postID string, tags []string) error {
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (post_id, tag) VALUES ($1,$2) ON CONFLICT DO NOTHING`, postID, tag); err != nil {
			return err
		}
	}
	return nil
}

func (r *posts) Get(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE post_id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := attachPostChildren(ctx, r.db, []*model.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the full record: row, tag sets and media list.
func (r *posts) Update(ctx context.Context, p *model.Post) (*model.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, "personas", "persona_id", p.PersonaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewNotFoundError("personaId", fmt.Sprintf("persona %s does not exist", p.PersonaID))
	}

	out := *p
	out.UpdatedAt = now()
	out.ScheduledFor = utcPtr(out.ScheduledFor)
	out.AutoDeleteDate = utcPtr(out.AutoDeleteDate)

	res, err := tx.ExecContext(ctx, `UPDATE posts SET persona_id=$1, caption=$2, mood=$3, experience_rating=$4,
        post_type=$5, location=$6, is_gratitude=$7, is_rant=$8, is_dream=$9, is_future_you=$10,
        scheduled_for=$11, auto_delete_date=$12, voice_memo_file=$13, voice_memo_seconds=$14, memory_notes=$15,
        updated_at=$16 WHERE post_id=$17`,
		out.PersonaID, out.Caption, out.Mood, out.ExperienceRating, string(out.PostType), out.Location,
		out.IsGratitude, out.IsRant, out.IsDream, out.IsFutureYou,
		out.ScheduledFor, out.AutoDeleteDate, out.VoiceMemoFile, out.VoiceMemoSeconds, out.MemoryNotes, out.UpdatedAt,
		out.ID)
	if err != nil {
		return nil, err
	}
	if rowsAffected(res) == 0 {
		return nil, model.NewNotFoundError("postId", fmt.Sprintf("post %s does not exist", out.ID))
	}

	for _, table := range []string{"post_activity_tags", "post_people_tags", "media_items"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE post_id = $1`, out.ID); err != nil {
			return nil, err
		}
	}
	if err := insertTags(ctx, tx, "post_activity_tags", out.ID, out.ActivityTags); err != nil {
		return nil, err
	}
	if err := insertTags(ctx, tx, "post_people_tags", out.ID, out.PeopleTags); err != nil {
		return nil, err
	}
	media := make([]model.MediaItem, len(out.Media))
	for i := range out.Media {
		m := out.Media[i]
		m.PostID = out.ID
		m.Position = i
		saved, err := insertMediaItem(ctx, tx, &m, false)
		if err != nil {
			return nil, err
		}
		media[i] = *saved
	}
	out.Media = media

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *posts) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := deletePosts(ctx, tx, []string{id}); err != nil {
		return err
	}
	return tx.Commit()
}

// deletePosts removes the given posts with their tags and media. Memory rows
// are left behind deliberately; reads drop them and Memories.DeleteForPost
// cleans them up.
func deletePosts(ctx context.Context, tx *sql.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph := placeholders(1, len(ids))
	args := toAnys(ids)
	for _, table := range []string{"post_activity_tags", "post_people_tags", "media_items"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE post_id IN (`+ph+`)`, args...); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE post_id IN (`+ph+`)`, args...)
	return err
}

func (r *posts) CreateBatch(ctx context.Context, ps []*model.Post) error {
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for i, p := range ps {
		saved, err := insertPost(ctx, tx, p)
		if err != nil {
			return err
		}
		*ps[i] = *saved
	}
	return tx.Commit()
}

func (r *posts) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.deleteWhere(ctx, `post_id IN (`+placeholders(1, len(ids))+`)`, toAnys(ids))
}

func (r *posts) DeleteByPersona(ctx context.Context, personaID string) (int, error) {
	return r.deleteWhere(ctx, `persona_id = $1`, []any{personaID})
}

func (r *posts) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return r.deleteWhere(ctx, `created_at < $1`, []any{utc(cutoff)})
}

func (r *posts) deleteWhere(ctx context.Context, condition string, args []any) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ids, err := collectIDs(ctx, tx, `SELECT post_id FROM posts WHERE `+condition, args...)
	if err != nil {
		return 0, err
	}
	if err := deletePosts(ctx, tx, ids); err != nil {
		return 0, err
	}
	return len(ids), tx.Commit()
}

func (r *posts) List(ctx context.Context, f store.PostFilter) ([]*model.Post, error) {
	c := postFilterCond(f)
	q := `SELECT ` + postColumns + ` FROM posts` + c.where() + ` ORDER BY created_at DESC, post_id ASC`
	if f.Limit > 0 {
		q += ` LIMIT ` + c.bind(f.Limit)
	}
	if f.Offset > 0 {
		q += ` OFFSET ` + c.bind(f.Offset)
	}
	return r.queryPosts(ctx, q, c.args...)
}

func (r *posts) Count(ctx context.Context, f store.PostFilter) (int, error) {
	c := postFilterCond(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+c.where(), c.args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *posts) ListOnThisDay(ctx context.Context, ref time.Time) ([]*model.Post, error) {
	ref = ref.UTC()
	return r.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
        WHERE to_char(created_at AT TIME ZONE 'UTC', 'MM-DD') = $1
          AND EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC') < $2
        ORDER BY created_at DESC, post_id ASC`,
		ref.Format("01-02"), ref.Year())
}

func (r *posts) ListWeekAroundLastYear(ctx context.Context, ref time.Time) ([]*model.Post, error) {
	center := ref.AddDate(-1, 0, 0)
	return r.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
        WHERE created_at >= $1 AND created_at <= $2
        ORDER BY created_at DESC, post_id ASC`,
		utc(center.AddDate(0, 0, -7)), utc(center.AddDate(0, 0, 7)))
}

func (r *posts) AverageMood(ctx context.Context, f store.PostFilter) (*float64, error) {
	c := postFilterCond(f)
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `SELECT AVG(mood) FROM posts`+c.where(), c.args...).Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *posts) MoodDistribution(ctx context.Context, f store.PostFilter) (map[int]int, error) {
	c := postFilterCond(f)
	rows, err := r.db.QueryContext(ctx, `SELECT mood, COUNT(*) FROM posts`+c.where()+` GROUP BY mood`, c.args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	dist := make(map[int]int)
	for rows.Next() {
		var mood, n int
		if err := rows.Scan(&mood, &n); err != nil {
			return nil, err
		}
		dist[mood] = n
	}
	return dist, rows.Err()
}

func (r *posts) TopActivityTags(ctx context.Context, limit int) ([]model.TagCount, error) {
	return r.topTags(ctx, "post_activity_tags", limit)
}

func (r *posts) TopPeople(ctx context.Context, limit int) ([]model.TagCount, error) {
	return r.topTags(ctx, "post_people_tags", limit)
}

func (r *posts) topTags(ctx context.Context, table string, limit int) ([]model.TagCount, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT tag, COUNT(*) AS n FROM `+table+`
        GROUP BY tag ORDER BY n DESC, tag ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.TagCount
	for rows.Next() {
		var tc model.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (r *posts) PostingDates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT created_at FROM posts ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t.UTC())
	}
	return out, rows.Err()
}

func (r *posts) FirstPostDate(ctx context.Context) (*time.Time, error) {
	return r.datePoint(ctx, `SELECT created_at FROM posts ORDER BY created_at ASC LIMIT 1`)
}

func (r *posts) MostRecentPostDate(ctx context.Context) (*time.Time, error) {
	return r.datePoint(ctx, `SELECT created_at FROM posts ORDER BY created_at DESC LIMIT 1`)
}

func (r *posts) datePoint(ctx context.Context, q string) (*time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, q).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func (r *posts) queryPosts(ctx context.Context, q string, args ...any) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	out, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}
	if err := attachPostChildren(ctx, r.db, out); err != nil {
		return nil, err
	}
	return out, nil
}

func postFilterCond(f store.PostFilter) *cond {
	c := &cond{}

	if f.PersonaID != nil {
		c.add(`persona_id = %s`, *f.PersonaID)
	}
	if f.From != nil {
		c.add(`created_at >= %s`, utc(*f.From))
	}
	if f.To != nil {
		c.add(`created_at <= %s`, utc(*f.To))
	}
	if f.Mood != nil {
		c.add(`mood = %s`, *f.Mood)
	}
	if f.MoodMin != nil {
		c.add(`mood >= %s`, *f.MoodMin)
	}
	if f.MoodMax != nil {
		c.add(`mood <= %s`, *f.MoodMax)
	}
	if len(f.AnyTags) > 0 {
		c.addRaw(`post_id IN (SELECT post_id FROM post_activity_tags WHERE tag IN (` + c.bindAll(f.AnyTags) + `))`)
	}
	if len(f.AllTags) > 0 {
		in := c.bindAll(f.AllTags)
		c.addRaw(`post_id IN (SELECT post_id FROM post_activity_tags WHERE tag IN (` + in + `)
            GROUP BY post_id HAVING COUNT(DISTINCT tag) = ` + c.bind(len(f.AllTags)) + `)`)
	}
	if len(f.People) > 0 {
		c.addRaw(`post_id IN (SELECT post_id FROM post_people_tags WHERE tag IN (` + c.bindAll(f.People) + `))`)
	}
	if f.HasMedia != nil {
		if *f.HasMedia {
			c.addRaw(`EXISTS (SELECT 1 FROM media_items WHERE media_items.post_id = posts.post_id)`)
		} else {
			c.addRaw(`NOT EXISTS (SELECT 1 FROM media_items WHERE media_items.post_id = posts.post_id)`)
		}
	}
	if f.Special != nil {
		if *f.Special {
			c.addRaw(`(is_gratitude OR is_rant OR is_dream OR is_future_you)`)
		} else {
			c.addRaw(`NOT (is_gratitude OR is_rant OR is_dream OR is_future_you)`)
		}
	}
	if f.PostType != nil {
		c.add(`post_type = %s`, string(*f.PostType))
	}
	if f.VisibleAt != nil {
		c.add(`(scheduled_for IS NULL OR scheduled_for <= %s)`, utc(*f.VisibleAt))
	}
	if f.Caption != "" {
		c.add(`caption ILIKE '%%' || %s || '%%'`, f.Caption)
	}
	return c
}
