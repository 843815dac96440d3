package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/waybook/waybook/internal/model"
)

type personas struct{ db *sql.DB }

const personaColumns = `persona_id, user_id, name, color, icon, description, is_default, created_at`

func (r *personas) Create(ctx context.Context, p *model.Persona) (*model.Persona, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := exists(ctx, tx, "users", "user_id", p.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewNotFoundError("userId", fmt.Sprintf("user %s does not exist", p.UserID))
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

	if out.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE personas SET is_default = FALSE WHERE user_id = $1`, out.UserID); err != nil {
			return nil, err
		}
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO personas (`+personaColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		out.ID, out.UserID, out.Name, string(out.Color), string(out.Icon), out.Description, out.IsDefault,
		out.CreatedAt)
	if err != nil {
		return nil, translateErr(err, "name")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *personas) Get(ctx context.Context, id string) (*model.Persona, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+personaColumns+` FROM personas WHERE persona_id = $1`, id)
	p, err := scanPersona(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *personas) List(ctx context.Context) ([]*model.Persona, error) {
	return r.queryPersonas(ctx, `SELECT `+personaColumns+` FROM personas ORDER BY created_at ASC, persona_id ASC`)
}

func (r *personas) ListByUser(ctx context.Context, userID string) ([]*model.Persona, error) {
	return r.queryPersonas(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE user_id = $1 ORDER BY created_at ASC, persona_id ASC`, userID)
}

func (r *personas) ListByColor(ctx context.Context, color model.PersonaColor) ([]*model.Persona, error) {
	return r.queryPersonas(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE color = $1 ORDER BY created_at ASC, persona_id ASC`,
		string(color))
}

func (r *personas) Update(ctx context.Context, p *model.Persona) (*model.Persona, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE personas SET name=$1, color=$2, icon=$3, description=$4, is_default=$5
        WHERE persona_id=$6`,
		p.Name, string(p.Color), string(p.Icon), p.Description, p.IsDefault, p.ID)
	if err != nil {
		return nil, translateErr(err, "name")
	}
	if rowsAffected(res) == 0 {
		return nil, model.NewNotFoundError("personaId", fmt.Sprintf("persona %s does not exist", p.ID))
	}
	out := *p
	return &out, nil
}

func (r *personas) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := deletePersonas(ctx, tx, []string{id}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *personas) DeleteByUser(ctx context.Context, userID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ids, err := collectIDs(ctx, tx, `SELECT persona_id FROM personas WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	if err := deletePersonas(ctx, tx, ids); err != nil {
		return 0, err
	}
	return len(ids), tx.Commit()
}

// deletePersonas cascades: posts under each persona go first, with their
// tags and media.
func deletePersonas(ctx context.Context, tx *sql.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph := placeholders(1, len(ids))
	args := toAnys(ids)

	postIDs, err := collectIDs(ctx, tx, `SELECT post_id FROM posts WHERE persona_id IN (`+ph+`)`, args...)
	if err != nil {
		return err
	}
	if err := deletePosts(ctx, tx, postIDs); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM personas WHERE persona_id IN (`+ph+`)`, args...)
	return err
}

func (r *personas) DefaultPersona(ctx context.Context, userID string) (*model.Persona, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE user_id = $1 AND is_default`, userID)
	p, err := scanPersona(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetDefault clears the previous default and sets the new one in one
// transaction, so at most one default is ever observable.
func (r *personas) SetDefault(ctx context.Context, userID, personaID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM personas WHERE persona_id = $1`, personaID).Scan(&owner)
	if err == sql.ErrNoRows {
		return model.NewNotFoundError("personaId", fmt.Sprintf("persona %s does not exist", personaID))
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return model.NewNotFoundError("personaId",
			fmt.Sprintf("persona %s does not belong to user %s", personaID, userID))
	}

	if _, err := tx.ExecContext(ctx, `UPDATE personas SET is_default = FALSE WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE personas SET is_default = TRUE WHERE persona_id = $1`, personaID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *personas) ClearDefault(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE personas SET is_default = FALSE WHERE user_id = $1`, userID)
	return err
}

func (r *personas) NameInUse(ctx context.Context, userID, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM personas WHERE user_id = $1 AND name = $2 LIMIT 1`, userID, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *personas) PostCounts(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT p.persona_id, COUNT(po.post_id)
        FROM personas p LEFT JOIN posts po ON po.persona_id = p.persona_id
        WHERE p.user_id = $1
        GROUP BY p.persona_id`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *personas) MostUsed(ctx context.Context, userID string) (*model.Persona, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+prefixPersonaColumns("p")+`
        FROM personas p LEFT JOIN posts po ON po.persona_id = p.persona_id
        WHERE p.user_id = $1
        GROUP BY p.persona_id
        ORDER BY COUNT(po.post_id) DESC, p.name ASC
        LIMIT 1`, userID)
	p, err := scanPersona(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func prefixPersonaColumns(alias string) string {
	return alias + `.persona_id, ` + alias + `.user_id, ` + alias + `.name, ` + alias + `.color, ` +
		alias + `.icon, ` + alias + `.description, ` + alias + `.is_default, ` + alias + `.created_at`
}

func scanPersona(s rowScanner) (*model.Persona, error) {
	var p model.Persona
	var color, icon string
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &color, &icon, &p.Description, &p.IsDefault, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Color = model.PersonaColor(color)
	p.Icon = model.PersonaIcon(icon)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (r *personas) queryPersonas(ctx context.Context, q string, args ...any) ([]*model.Persona, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
