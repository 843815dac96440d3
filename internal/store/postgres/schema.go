package postgres

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the tables and indexes if they do not exist. As in the
// sqlite adapter, references are validated by the store layer and cascades run
// in transactions; there are no engine-level foreign keys.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            bio TEXT,
            email TEXT,
            profile_photo TEXT,
            preferences JSONB NOT NULL,
            is_premium BOOLEAN NOT NULL DEFAULT FALSE,
            premium_expires_at TIMESTAMPTZ,
            total_posts INTEGER NOT NULL DEFAULT 0,
            current_streak INTEGER NOT NULL DEFAULT 0,
            longest_streak INTEGER NOT NULL DEFAULT 0,
            persona_ids JSONB NOT NULL DEFAULT '[]',
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS personas (
            persona_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            name TEXT NOT NULL,
            color TEXT NOT NULL,
            icon TEXT NOT NULL,
            description TEXT,
            is_default BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL,
            UNIQUE(user_id, name)
        );`,
		`CREATE TABLE IF NOT EXISTS posts (
            post_id TEXT PRIMARY KEY,
            persona_id TEXT NOT NULL,
            caption TEXT NOT NULL,
            mood INTEGER NOT NULL,
            experience_rating INTEGER,
            post_type TEXT NOT NULL,
            location TEXT,
            is_gratitude BOOLEAN NOT NULL DEFAULT FALSE,
            is_rant BOOLEAN NOT NULL DEFAULT FALSE,
            is_dream BOOLEAN NOT NULL DEFAULT FALSE,
            is_future_you BOOLEAN NOT NULL DEFAULT FALSE,
            scheduled_for TIMESTAMPTZ,
            auto_delete_date TIMESTAMPTZ,
            voice_memo_file TEXT,
            voice_memo_seconds DOUBLE PRECISION,
            memory_notes TEXT,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS posts_persona_idx ON posts(persona_id);`,
		`CREATE INDEX IF NOT EXISTS posts_mood_idx ON posts(mood);`,
		`CREATE INDEX IF NOT EXISTS posts_type_idx ON posts(post_type);`,
		`CREATE TABLE IF NOT EXISTS post_activity_tags (
            post_id TEXT NOT NULL,
            tag TEXT NOT NULL,
            PRIMARY KEY(post_id, tag)
        );`,
		`CREATE TABLE IF NOT EXISTS post_people_tags (
            post_id TEXT NOT NULL,
            tag TEXT NOT NULL,
            PRIMARY KEY(post_id, tag)
        );`,
		`CREATE TABLE IF NOT EXISTS media_items (
            media_id TEXT PRIMARY KEY,
            post_id TEXT NOT NULL,
            type TEXT NOT NULL,
            filename TEXT NOT NULL,
            thumbnail_file TEXT,
            file_size BIGINT NOT NULL,
            width INTEGER,
            height INTEGER,
            duration DOUBLE PRECISION,
            "position" INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS media_post_idx ON media_items(post_id);`,
		`CREATE TABLE IF NOT EXISTS memories (
            memory_id TEXT PRIMARY KEY,
            post_id TEXT NOT NULL,
            memory_type TEXT NOT NULL,
            presented_at TIMESTAMPTZ NOT NULL,
            was_viewed BOOLEAN NOT NULL DEFAULT FALSE,
            notes TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS memories_post_idx ON memories(post_id);`,
		`CREATE INDEX IF NOT EXISTS memories_presented_idx ON memories(presented_at);`,
		`CREATE TABLE IF NOT EXISTS app_settings (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
