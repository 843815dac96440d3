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

type memories struct{ db *sql.DB }

const memoryColumns = `memory_id, post_id, memory_type, presented_at, was_viewed, notes`

// memoryRow is the persisted part of a memory; the post is attached on read.
type memoryRow struct {
	id          string
	postID      string
	encodedType string
	presentedAt time.Time
	wasViewed   bool
	notes       *string
}

func (r *memories) Create(ctx context.Context, m *model.Memory) (*model.Memory, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()
	out, err := insertMemory(ctx, tx, m)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertMemory(ctx context.Context, tx *sql.Tx, m *model.Memory) (*model.Memory, error) {
	postID := m.Post.ID
	if postID == "" {
		return nil, model.NewValidationError("post", "memory requires a post")
	}
	ok, err := exists(ctx, tx, "posts", "post_id", postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewNotFoundError("postId", fmt.Sprintf("post %s does not exist", postID))
	}

	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.PresentedAt.IsZero() {
		out.PresentedAt = now()
	} else {
		out.PresentedAt = utc(out.PresentedAt)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO memories (`+memoryColumns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		out.ID, postID, out.Type.Encode(), out.PresentedAt, out.WasViewed, out.Notes)
	if err != nil {
		return nil, translateErr(err, "memoryId")
	}
	return &out, nil
}

func (r *memories) Get(ctx context.Context, id string) (*model.Memory, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE memory_id = $1`, id)
	mr, err := scanMemoryRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ms, err := r.attachPosts(ctx, []memoryRow{*mr})
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		// post deleted since presentation; the row is dangling
		return nil, nil
	}
	return ms[0], nil
}

func (r *memories) Update(ctx context.Context, m *model.Memory) (*model.Memory, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE memories SET memory_type=$1, presented_at=$2, was_viewed=$3, notes=$4
        WHERE memory_id=$5`,
		m.Type.Encode(), utc(m.PresentedAt), m.WasViewed, m.Notes, m.ID)
	if err != nil {
		return nil, err
	}
	if rowsAffected(res) == 0 {
		return nil, model.NewNotFoundError("memoryId", fmt.Sprintf("memory %s does not exist", m.ID))
	}
	return r.Get(ctx, m.ID)
}

func (r *memories) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE memory_id = $1`, id)
	return err
}

func (r *memories) SaveBatch(ctx context.Context, ms []*model.Memory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for i, m := range ms {
		saved, err := insertMemory(ctx, tx, m)
		if err != nil {
			return err
		}
		*ms[i] = *saved
	}
	return tx.Commit()
}

func (r *memories) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM memories WHERE memory_id IN (`+placeholders(1, len(ids))+`)`, toAnys(ids)...)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

func (r *memories) List(ctx context.Context, f store.MemoryFilter) ([]*model.Memory, error) {
	c := memoryFilterCond(f)
	q := `SELECT ` + memoryColumns + ` FROM memories` + c.where() + ` ORDER BY presented_at DESC, memory_id ASC`
	if f.Limit > 0 {
		q += ` LIMIT ` + c.bind(f.Limit)
	}
	if f.Offset > 0 {
		q += ` OFFSET ` + c.bind(f.Offset)
	}
	rows, err := r.db.QueryContext(ctx, q, c.args...)
	if err != nil {
		return nil, err
	}
	mrs, err := scanMemoryRows(rows)
	if err != nil {
		return nil, err
	}
	return r.attachPosts(ctx, mrs)
}

func (r *memories) Count(ctx context.Context, f store.MemoryFilter) (int, error) {
	c := memoryFilterCond(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`+c.where(), c.args...).Scan(&n)
	return n, err
}

func (r *memories) MarkViewed(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE memories SET was_viewed = TRUE WHERE memory_id IN (`+placeholders(1, len(ids))+`)`, toAnys(ids)...)
	return err
}

func (r *memories) UpdateNotes(ctx context.Context, id, notes string) (*model.Memory, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE memories SET notes = $1 WHERE memory_id = $2`, notes, id)
	if err != nil {
		return nil, err
	}
	if rowsAffected(res) == 0 {
		return nil, model.NewNotFoundError("memoryId", fmt.Sprintf("memory %s does not exist", id))
	}
	return r.Get(ctx, id)
}

func (r *memories) Stats(ctx context.Context) (*model.MemoryStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT memory_type, was_viewed, notes FROM memories`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stats := &model.MemoryStats{
		CountsByKind:     make(map[model.MemoryKind]int),
		ViewedByYearsAgo: make(map[int]int),
		TotalByYearsAgo:  make(map[int]int),
	}
	for rows.Next() {
		var encoded string
		var viewed bool
		var notes *string
		if err := rows.Scan(&encoded, &viewed, &notes); err != nil {
			return nil, err
		}
		mt, err := model.ParseMemoryType(encoded)
		if err != nil {
			return nil, model.NewMappingError("memory", "memoryType", err)
		}
		stats.Total++
		stats.CountsByKind[mt.Kind]++
		if viewed {
			stats.Viewed++
		}
		if notes != nil && *notes != "" {
			stats.WithNotes++
		}
		if mt.Kind == model.KindOnThisDay {
			stats.TotalByYearsAgo[mt.YearsAgo]++
			if viewed {
				stats.ViewedByYearsAgo[mt.YearsAgo]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if stats.Total > 0 {
		stats.EngagementRate = float64(stats.Viewed) / float64(stats.Total)
	}
	return stats, nil
}

func (r *memories) DeleteOlderThan(ctx context.Context, cutoff time.Time, keepUnviewed bool) (int, error) {
	q := `DELETE FROM memories WHERE presented_at < $1`
	if keepUnviewed {
		q += ` AND was_viewed`
	}
	res, err := r.db.ExecContext(ctx, q, utc(cutoff))
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

func (r *memories) DeleteForPost(ctx context.Context, postID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE post_id = $1`, postID)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

func (r *memories) DeleteAll(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memories`)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

func (r *memories) PresentedOn(ctx context.Context, postID string, day time.Time) (bool, error) {
	start, end := dayBounds(day)
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM memories
        WHERE post_id = $1 AND presented_at >= $2 AND presented_at < $3 LIMIT 1`, postID, start, end).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *memories) PresentedPostIDs(ctx context.Context, day time.Time) ([]string, error) {
	start, end := dayBounds(day)
	return collectIDs(ctx, r.db, `SELECT DISTINCT post_id FROM memories
        WHERE presented_at >= $1 AND presented_at < $2 ORDER BY post_id ASC`, start, end)
}

func (r *memories) LastPresentation(ctx context.Context, postID string) (*time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `SELECT presented_at FROM memories WHERE post_id = $1
        ORDER BY presented_at DESC LIMIT 1`, postID).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// attachPosts fetches the live posts and wraps them; rows whose post has
// been deleted are dropped.
func (r *memories) attachPosts(ctx context.Context, mrs []memoryRow) ([]*model.Memory, error) {
	if len(mrs) == 0 {
		return nil, nil
	}
	idSet := make(map[string]struct{}, len(mrs))
	var ids []string
	for _, mr := range mrs {
		if _, seen := idSet[mr.postID]; !seen {
			idSet[mr.postID] = struct{}{}
			ids = append(ids, mr.postID)
		}
	}
	pr := &posts{db: r.db}
	loaded, err := pr.queryPosts(ctx, `SELECT `+postColumns+` FROM posts
        WHERE post_id IN (`+placeholders(1, len(ids))+`)`, toAnys(ids)...)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Post, len(loaded))
	for _, p := range loaded {
		byID[p.ID] = p
	}

	var out []*model.Memory
	for _, mr := range mrs {
		p := byID[mr.postID]
		if p == nil {
			continue
		}
		mt, err := model.ParseMemoryType(mr.encodedType)
		if err != nil {
			return nil, model.NewMappingError("memory", "memoryType", err)
		}
		out = append(out, &model.Memory{
			ID:          mr.id,
			Post:        *p,
			Type:        mt,
			PresentedAt: mr.presentedAt,
			WasViewed:   mr.wasViewed,
			Notes:       mr.notes,
		})
	}
	return out, nil
}

func scanMemoryRow(s rowScanner) (*memoryRow, error) {
	var mr memoryRow
	if err := s.Scan(&mr.id, &mr.postID, &mr.encodedType, &mr.presentedAt, &mr.wasViewed, &mr.notes); err != nil {
		return nil, err
	}
	mr.presentedAt = mr.presentedAt.UTC()
	return &mr, nil
}

func scanMemoryRows(rows *sql.Rows) ([]memoryRow, error) {
	defer func() { _ = rows.Close() }()
	var out []memoryRow
	for rows.Next() {
		mr, err := scanMemoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *mr)
	}
	return out, rows.Err()
}

func memoryFilterCond(f store.MemoryFilter) *cond {
	c := &cond{}
	if f.Day != nil {
		start, end := dayBounds(*f.Day)
		c.add(`presented_at >= %s`, start)
		c.add(`presented_at < %s`, end)
	}
	if f.From != nil {
		c.add(`presented_at >= %s`, utc(*f.From))
	}
	if f.To != nil {
		c.add(`presented_at <= %s`, utc(*f.To))
	}
	if f.PostID != nil {
		c.add(`post_id = %s`, *f.PostID)
	}
	if f.Kind != nil {
		if *f.Kind == model.KindOnThisDay {
			c.add(`memory_type LIKE %s`, string(model.KindOnThisDay)+`_%`)
		} else {
			c.add(`memory_type = %s`, string(*f.Kind))
		}
	}
	if f.Viewed != nil {
		c.add(`was_viewed = %s`, *f.Viewed)
	}
	return c
}
