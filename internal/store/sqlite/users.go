package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waybook/waybook/internal/model"
)

type users struct{ db *sql.DB }

const userColumns = `user_id, name, bio, email, profile_photo, preferences, is_premium, premium_expires_at,
    total_posts, current_streak, longest_streak, persona_ids, created_at, updated_at`

// Create enforces the single-user invariant inside the transaction: the
// insert fails with a conflict when any user row already exists.
func (r *users) Create(ctx context.Context, u *model.User) (*model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, model.NewConflictError("user", "a user already exists for this installation")
	}

	out := *u
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
	out.PremiumExpiresAt = utcPtr(out.PremiumExpiresAt)

	prefs, err := json.Marshal(out.Preferences)
	if err != nil {
		return nil, err
	}
	personaIDs, err := marshalPersonaIDs(out.PersonaIDs)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		out.ID, out.Name, out.Bio, out.Email, out.ProfilePhoto, string(prefs), out.IsPremium,
		microsPtr(out.PremiumExpiresAt),
		out.TotalPosts, out.CurrentStreak, out.LongestStreak, personaIDs, micros(out.CreatedAt), micros(out.UpdatedAt))
	if err != nil {
		return nil, translateErr(err, "userId")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *users) Get(ctx context.Context, id string) (*model.User, error) {
	return r.point(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, id)
}

func (r *users) Current(ctx context.Context) (*model.User, error) {
	return r.point(ctx, `SELECT `+userColumns+` FROM users LIMIT 1`)
}

func (r *users) point(ctx context.Context, q string, args ...any) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, q, args...)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *users) HasUser(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *users) Update(ctx context.Context, u *model.User) (*model.User, error) {
	out := *u
	out.UpdatedAt = now()
	out.PremiumExpiresAt = utcPtr(out.PremiumExpiresAt)

	prefs, err := json.Marshal(out.Preferences)
	if err != nil {
		return nil, err
	}
	personaIDs, err := marshalPersonaIDs(out.PersonaIDs)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE users SET name=?, bio=?, email=?, profile_photo=?, preferences=?,
        is_premium=?, premium_expires_at=?, total_posts=?, current_streak=?, longest_streak=?, persona_ids=?,
        updated_at=? WHERE user_id=?`,
		out.Name, out.Bio, out.Email, out.ProfilePhoto, string(prefs),
		out.IsPremium, microsPtr(out.PremiumExpiresAt),
		out.TotalPosts, out.CurrentStreak, out.LongestStreak, personaIDs,
		micros(out.UpdatedAt), out.ID)
	if err != nil {
		return nil, err
	}
	if rowsAffected(res) == 0 {
		return nil, model.NewNotFoundError("userId", fmt.Sprintf("user %s does not exist", out.ID))
	}
	return &out, nil
}

func (r *users) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id)
	return err
}

func (r *users) UpdatePreferences(ctx context.Context, id string, prefs model.UserPreferences) (*model.User, error) {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}
	if err := r.touch(ctx, id, `preferences = ?`, string(raw)); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *users) SetPremium(ctx context.Context, id string, premium bool, expiresAt *time.Time) (*model.User, error) {
	if err := r.touch(ctx, id, `is_premium = ?, premium_expires_at = ?`, premium, microsPtr(expiresAt)); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *users) UpdateProfile(ctx context.Context, id, name string, bio, photo *string) (*model.User, error) {
	if err := r.touch(ctx, id, `name = ?, bio = ?, profile_photo = ?`, name, bio, photo); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *users) SetStats(ctx context.Context, id string, totalPosts, currentStreak, longestStreak int) error {
	return r.touch(ctx, id, `total_posts = ?, current_streak = ?, longest_streak = ?`,
		totalPosts, currentStreak, longestStreak)
}

func (r *users) IncrementTotalPosts(ctx context.Context, id string) error {
	return r.touch(ctx, id, `total_posts = total_posts + 1`)
}

func (r *users) DecrementTotalPosts(ctx context.Context, id string) error {
	return r.touch(ctx, id, `total_posts = MAX(total_posts - 1, 0)`)
}

func (r *users) SetStreaks(ctx context.Context, id string, current, longest int) error {
	return r.touch(ctx, id, `current_streak = ?, longest_streak = ?`, current, longest)
}

// touch applies a partial update plus updated_at and fails when the user is
// missing (stat mutations on a missing user are caller bugs worth surfacing).
func (r *users) touch(ctx context.Context, id, set string, args ...any) error {
	args = append(args, micros(now()), id)
	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+set+`, updated_at = ? WHERE user_id = ?`, args...)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return model.NewNotFoundError("userId", fmt.Sprintf("user %s does not exist", id))
	}
	return nil
}

func (r *users) AddPersonaID(ctx context.Context, id, personaID string) error {
	return r.mutatePersonaIDs(ctx, id, func(ids []string) []string {
		for _, existing := range ids {
			if existing == personaID {
				return ids
			}
		}
		return append(ids, personaID)
	})
}

func (r *users) RemovePersonaID(ctx context.Context, id, personaID string) error {
	return r.mutatePersonaIDs(ctx, id, func(ids []string) []string {
		out := ids[:0]
		for _, existing := range ids {
			if existing != personaID {
				out = append(out, existing)
			}
		}
		return out
	})
}

func (r *users) mutatePersonaIDs(ctx context.Context, id string, mutate func([]string) []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT persona_ids FROM users WHERE user_id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.NewNotFoundError("userId", fmt.Sprintf("user %s does not exist", id))
	}
	if err != nil {
		return err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return model.NewMappingError("user", "personaIds", err)
	}
	ids = mutate(ids)
	next, err := marshalPersonaIDs(ids)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET persona_ids = ?, updated_at = ? WHERE user_id = ?`,
		next, micros(now()), id); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteAccount removes the user and everything it owns in one transaction.
func (r *users) DeleteAccount(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	personaIDs, err := collectIDs(ctx, tx, `SELECT persona_id FROM personas WHERE user_id = ?`, id)
	if err != nil {
		return err
	}
	if err := deletePersonas(ctx, tx, personaIDs); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memories`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM app_settings`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func marshalPersonaIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	var prefs, personaIDs string
	var premiumExpires *int64
	var created, updated int64
	if err := s.Scan(&u.ID, &u.Name, &u.Bio, &u.Email, &u.ProfilePhoto, &prefs, &u.IsPremium, &premiumExpires,
		&u.TotalPosts, &u.CurrentStreak, &u.LongestStreak, &personaIDs, &created, &updated); err != nil {
		return nil, err
	}
	u.PremiumExpiresAt = fromMicrosPtr(premiumExpires)
	u.CreatedAt = fromMicros(created)
	u.UpdatedAt = fromMicros(updated)
	if err := json.Unmarshal([]byte(prefs), &u.Preferences); err != nil {
		return nil, model.NewMappingError("user", "preferences", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(personaIDs), &ids); err != nil {
		return nil, model.NewMappingError("user", "personaIds", err)
	}
	if len(ids) > 0 {
		u.PersonaIDs = ids
	}
	return &u, nil
}
