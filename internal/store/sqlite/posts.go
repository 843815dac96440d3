package sqlite

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

// insertPost writes the post row, its tag sets and its media items. The
// persona reference is validated here since the schema has no foreign keys.
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
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		out.ID, out.PersonaID, out.Caption, out.Mood, out.ExperienceRating, string(out.PostType), out.Location,
		out.IsGratitude, out.IsRant, out.IsDream, out.IsFutureYou,
		microsPtr(out.ScheduledFor), microsPtr(out.AutoDeleteDate),
		out.VoiceMemoFile, out.VoiceMemoSeconds, out.MemoryNotes, micros(out.CreatedAt), micros(out.UpdatedAt))
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
			`INSERT INTO `+table+` (post_id, tag) VALUES (?,?) ON CONFLICT DO NOTHING`, postID, tag); err != nil {
			return err
		}
	}
	return nil
}

func (r *posts) Get(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE post_id = ?`, id)
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

	res, err := tx.ExecContext(ctx, `UPDATE posts SET persona_id=?, caption=?, mood=?, experience_rating=?,
        post_type=?, location=?, is_gratitude=?, is_rant=?, is_dream=?, is_future_you=?,
        scheduled_for=?, auto_delete_date=?, voice_memo_file=?, voice_memo_seconds=?, memory_notes=?, updated_at=?
        WHERE post_id=?`,
		out.PersonaID, out.Caption, out.Mood, out.ExperienceRating, string(out.PostType), out.Location,
		out.IsGratitude, out.IsRant, out.IsDream, out.IsFutureYou,
		microsPtr(out.ScheduledFor), microsPtr(out.AutoDeleteDate),
		out.VoiceMemoFile, out.VoiceMemoSeconds, out.MemoryNotes, micros(out.UpdatedAt),
		out.ID)
	if err != nil {
		return nil, err
	}
	if rowsAffected(res) == 0 {
		return nil, model.NewNotFoundError("postId", fmt.Sprintf("post %s does not exist", out.ID))
	}

	for _, table := range []string{"post_activity_tags", "post_people_tags", "media_items"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE post_id = ?`, out.ID); err != nil {
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
	ph := placeholders(len(ids))
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
	return r.deleteWhere(ctx, `post_id IN (`+placeholders(len(ids))+`)`, toAnys(ids))
}

func (r *posts) DeleteByPersona(ctx context.Context, personaID string) (int, error) {
	return r.deleteWhere(ctx, `persona_id = ?`, []any{personaID})
}

func (r *posts) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return r.deleteWhere(ctx, `created_at < ?`, []any{micros(cutoff)})
}

func (r *posts) deleteWhere(ctx context.Context, cond string, args []any) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT post_id FROM posts WHERE `+cond, args...)
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if err := deletePosts(ctx, tx, ids); err != nil {
		return 0, err
	}
	return len(ids), tx.Commit()
}

func (r *posts) List(ctx context.Context, f store.PostFilter) ([]*model.Post, error) {
	where, args := postFilterSQL(f)
	q := `SELECT ` + postColumns + ` FROM posts` + where + ` ORDER BY created_at DESC, post_id ASC`
	if f.Limit > 0 || f.Offset > 0 {
		limit := f.Limit
		if limit <= 0 {
			limit = -1
		}
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, f.Offset)
	}
	return r.queryPosts(ctx, q, args...)
}

func (r *posts) Count(ctx context.Context, f store.PostFilter) (int, error) {
	where, args := postFilterSQL(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *posts) ListOnThisDay(ctx context.Context, ref time.Time) ([]*model.Post, error) {
	ref = ref.UTC()
	return r.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
        WHERE strftime('%m-%d', created_at / 1000000, 'unixepoch') = ?
          AND CAST(strftime('%Y', created_at / 1000000, 'unixepoch') AS INTEGER) < ?
        ORDER BY created_at DESC, post_id ASC`,
		ref.Format("01-02"), ref.Year())
}

func (r *posts) ListWeekAroundLastYear(ctx context.Context, ref time.Time) ([]*model.Post, error) {
	center := ref.AddDate(-1, 0, 0)
	from := micros(center.AddDate(0, 0, -7))
	to := micros(center.AddDate(0, 0, 7))
	return r.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
        WHERE created_at >= ? AND created_at <= ?
        ORDER BY created_at DESC, post_id ASC`, from, to)
}

func (r *posts) AverageMood(ctx context.Context, f store.PostFilter) (*float64, error) {
	where, args := postFilterSQL(f)
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `SELECT AVG(mood) FROM posts`+where, args...).Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *posts) MoodDistribution(ctx context.Context, f store.PostFilter) (map[int]int, error) {
	where, args := postFilterSQL(f)
	rows, err := r.db.QueryContext(ctx, `SELECT mood, COUNT(*) FROM posts`+where+` GROUP BY mood`, args...)
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
        GROUP BY tag ORDER BY n DESC, tag ASC LIMIT ?`, limit)
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
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, fromMicros(v))
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
	var v int64
	err := r.db.QueryRowContext(ctx, q).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := fromMicros(v)
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

// postFilterSQL renders the filter as a WHERE clause over the indexed
// columns plus tag/people/media subqueries.
func postFilterSQL(f store.PostFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(c string, a ...any) {
		conds = append(conds, c)
		args = append(args, a...)
	}

	if f.PersonaID != nil {
		add(`persona_id = ?`, *f.PersonaID)
	}
	if f.From != nil {
		add(`created_at >= ?`, micros(*f.From))
	}
	if f.To != nil {
		add(`created_at <= ?`, micros(*f.To))
	}
	if f.Mood != nil {
		add(`mood = ?`, *f.Mood)
	}
	if f.MoodMin != nil {
		add(`mood >= ?`, *f.MoodMin)
	}
	if f.MoodMax != nil {
		add(`mood <= ?`, *f.MoodMax)
	}
	if len(f.AnyTags) > 0 {
		add(`post_id IN (SELECT post_id FROM post_activity_tags WHERE tag IN (`+placeholders(len(f.AnyTags))+`))`,
			toAnys(f.AnyTags)...)
	}
	if len(f.AllTags) > 0 {
		args2 := toAnys(f.AllTags)
		args2 = append(args2, len(f.AllTags))
		add(`post_id IN (SELECT post_id FROM post_activity_tags WHERE tag IN (`+placeholders(len(f.AllTags))+`)
            GROUP BY post_id HAVING COUNT(DISTINCT tag) = ?)`, args2...)
	}
	if len(f.People) > 0 {
		add(`post_id IN (SELECT post_id FROM post_people_tags WHERE tag IN (`+placeholders(len(f.People))+`))`,
			toAnys(f.People)...)
	}
	if f.HasMedia != nil {
		if *f.HasMedia {
			conds = append(conds, `EXISTS (SELECT 1 FROM media_items WHERE media_items.post_id = posts.post_id)`)
		} else {
			conds = append(conds, `NOT EXISTS (SELECT 1 FROM media_items WHERE media_items.post_id = posts.post_id)`)
		}
	}
	if f.Special != nil {
		if *f.Special {
			conds = append(conds, `(is_gratitude = 1 OR is_rant = 1 OR is_dream = 1 OR is_future_you = 1)`)
		} else {
			conds = append(conds, `(is_gratitude = 0 AND is_rant = 0 AND is_dream = 0 AND is_future_you = 0)`)
		}
	}
	if f.PostType != nil {
		add(`post_type = ?`, string(*f.PostType))
	}
	if f.VisibleAt != nil {
		add(`(scheduled_for IS NULL OR scheduled_for <= ?)`, micros(*f.VisibleAt))
	}
	if f.Caption != "" {
		add(`caption LIKE '%' || ? || '%'`, f.Caption)
	}

	if len(conds) == 0 {
		return "", nil
	}
	out := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}
	return out, args
}
