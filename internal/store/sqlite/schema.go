package sqlite

import "database/sql"

// EnsureSchema creates the tables and indexes if they do not exist.
// Relationships are id references validated by the store layer on write;
// there are no engine-level foreign keys, cascades run in transactions.
// Timestamp columns hold unix microseconds.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            bio TEXT,
            email TEXT,
            profile_photo TEXT,
            preferences TEXT NOT NULL,
            is_premium INTEGER NOT NULL DEFAULT 0,
            premium_expires_at INTEGER,
            total_posts INTEGER NOT NULL DEFAULT 0,
            current_streak INTEGER NOT NULL DEFAULT 0,
            longest_streak INTEGER NOT NULL DEFAULT 0,
            persona_ids TEXT NOT NULL DEFAULT '[]',
            created_at INTEGER NOT NULL,
            updated_at INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS personas (
            persona_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            name TEXT NOT NULL,
            color TEXT NOT NULL,
            icon TEXT NOT NULL,
            description TEXT,
            is_default INTEGER NOT NULL DEFAULT 0,
            created_at INTEGER NOT NULL,
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
            is_gratitude INTEGER NOT NULL DEFAULT 0,
            is_rant INTEGER NOT NULL DEFAULT 0,
            is_dream INTEGER NOT NULL DEFAULT 0,
            is_future_you INTEGER NOT NULL DEFAULT 0,
            scheduled_for INTEGER,
            auto_delete_date INTEGER,
            voice_memo_file TEXT,
            voice_memo_seconds REAL,
            memory_notes TEXT,
            created_at INTEGER NOT NULL,
            updated_at INTEGER NOT NULL
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
            file_size INTEGER NOT NULL,
            width INTEGER,
            height INTEGER,
            duration REAL,
            position INTEGER NOT NULL DEFAULT 0,
            created_at INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS media_post_idx ON media_items(post_id);`,
		`CREATE TABLE IF NOT EXISTS memories (
            memory_id TEXT PRIMARY KEY,
            post_id TEXT NOT NULL,
            memory_type TEXT NOT NULL,
            presented_at INTEGER NOT NULL,
            was_viewed INTEGER NOT NULL DEFAULT 0,
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
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
