package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/store"
)

type mediaItems struct{ db *sql.DB }

const mediaColumns = `media_id, post_id, type, filename, thumbnail_file, file_size, width, height, duration, position, created_at`

func (r *mediaItems) Create(ctx context.Context, m *model.MediaItem) (*model.MediaItem, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out, err := insertMediaItem(ctx, tx, m, true)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// insertMediaItem writes one row. checkPost is skipped when the caller has
// already validated (or is creating) the owning post in the same tx.
func insertMediaItem(ctx context.Context, tx *sql.Tx, m *model.MediaItem, checkPost bool) (*model.MediaItem, error) {
	if checkPost {
		ok, err := exists(ctx, tx, "posts", "post_id", m.PostID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, model.NewNotFoundError("postId", fmt.Sprintf("post %s does not exist", m.PostID))
		}
	}

	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now()
	} else {
		out.CreatedAt = utc(out.CreatedAt)
	}

	_, err := tx.ExecContext(ctx, `INSERT INTO media_items (`+mediaColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		out.ID, out.PostID, string(out.Type), out.Filename, out.ThumbnailFile, out.FileSize,
		out.Width, out.Height, out.Duration, out.Position, micros(out.CreatedAt))
	if err != nil {
		return nil, translateErr(err, "mediaId")
	}
	return &out, nil
}

func (r *mediaItems) Get(ctx context.Context, id string) (*model.MediaItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE media_id = ?`, id)
	m, err := scanMediaItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *mediaItems) List(ctx context.Context, f store.MediaFilter) ([]*model.MediaItem, error) {
	where, args := mediaFilterSQL(f)
	q := `SELECT ` + mediaColumns + ` FROM media_items` + where + ` ORDER BY created_at DESC, media_id ASC`
	if f.Limit > 0 || f.Offset > 0 {
		limit := f.Limit
		if limit <= 0 {
			limit = -1
		}
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, f.Offset)
	}
	return r.queryMedia(ctx, q, args...)
}

func (r *mediaItems) Update(ctx context.Context, m *model.MediaItem) (*model.MediaItem, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE media_items SET type=?, filename=?, thumbnail_file=?,
        file_size=?, width=?, height=?, duration=?, position=? WHERE media_id=?`,
		string(m.Type), m.Filename, m.ThumbnailFile, m.FileSize, m.Width, m.Height, m.Duration, m.Position, m.ID)
	if err != nil {
		return nil, err
	}
	if rowsAffected(res) == 0 {
		return nil, model.NewNotFoundError("mediaId", fmt.Sprintf("media item %s does not exist", m.ID))
	}
	out := *m
	return &out, nil
}

func (r *mediaItems) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM media_items WHERE media_id = ?`, id)
	return err
}

func (r *mediaItems) ListByPost(ctx context.Context, postID string) ([]*model.MediaItem, error) {
	return r.queryMedia(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE post_id = ? ORDER BY position ASC`, postID)
}

func (r *mediaItems) Primary(ctx context.Context, postID string) (*model.MediaItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE post_id = ? ORDER BY position ASC LIMIT 1`, postID)
	m, err := scanMediaItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *mediaItems) CountByPost(ctx context.Context, postID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_items WHERE post_id = ?`, postID).Scan(&n)
	return n, err
}

func (r *mediaItems) Count(ctx context.Context, f store.MediaFilter) (int, error) {
	where, args := mediaFilterSQL(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_items`+where, args...).Scan(&n)
	return n, err
}

func (r *mediaItems) TotalSize(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT SUM(file_size) FROM media_items`).Scan(&total); err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func (r *mediaItems) SizeByType(ctx context.Context) (map[model.MediaType]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT type, SUM(file_size) FROM media_items GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make(map[model.MediaType]int64)
	for rows.Next() {
		var mt string
		var size int64
		if err := rows.Scan(&mt, &size); err != nil {
			return nil, err
		}
		out[model.MediaType(mt)] = size
	}
	return out, rows.Err()
}

func (r *mediaItems) Largest(ctx context.Context, limit int) ([]*model.MediaItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.queryMedia(ctx,
		`SELECT `+mediaColumns+` FROM media_items ORDER BY file_size DESC, media_id ASC LIMIT ?`, limit)
}

func (r *mediaItems) Orphans(ctx context.Context) ([]*model.MediaItem, error) {
	return r.queryMedia(ctx, `SELECT `+mediaColumns+` FROM media_items
        WHERE NOT EXISTS (SELECT 1 FROM posts WHERE posts.post_id = media_items.post_id)
        ORDER BY created_at DESC, media_id ASC`)
}

func (r *mediaItems) DeleteOrphans(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media_items
        WHERE NOT EXISTS (SELECT 1 FROM posts WHERE posts.post_id = media_items.post_id)`)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

func (r *mediaItems) FilenameInUse(ctx context.Context, filename string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM media_items WHERE filename = ? LIMIT 1`, filename).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mediaItems) queryMedia(ctx context.Context, q string, args ...any) ([]*model.MediaItem, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.MediaItem
	for rows.Next() {
		m, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func mediaFilterSQL(f store.MediaFilter) (string, []any) {
	var conds []string
	var args []any
	if f.PostID != nil {
		conds = append(conds, `post_id = ?`)
		args = append(args, *f.PostID)
	}
	if f.Type != nil {
		conds = append(conds, `type = ?`)
		args = append(args, string(*f.Type))
	}
	if f.From != nil {
		conds = append(conds, `created_at >= ?`)
		args = append(args, micros(*f.From))
	}
	if f.To != nil {
		conds = append(conds, `created_at <= ?`)
		args = append(args, micros(*f.To))
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
