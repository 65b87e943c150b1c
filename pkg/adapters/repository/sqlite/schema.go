package sqlite

import (
	"context"
	"database/sql"
)

// Timestamps are epoch milliseconds. Relationships are maintained by the
// scoped repository rather than by foreign-key actions, so the same schema
// behaves identically on embedded SQLite and on Turso.
const schema = `
CREATE TABLE IF NOT EXISTS links (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	folder_id TEXT,
	original_url TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	is_custom INTEGER NOT NULL DEFAULT 0,
	expires_at INTEGER,
	click_count INTEGER NOT NULL DEFAULT 0,
	meta_title TEXT,
	meta_description TEXT,
	meta_favicon TEXT,
	screenshot_url TEXT,
	note TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_links_user_id ON links(user_id);
CREATE INDEX IF NOT EXISTS idx_links_folder_id ON links(folder_id);

CREATE TABLE IF NOT EXISTS folders (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	icon TEXT NOT NULL DEFAULT 'folder',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_folders_user_id ON folders(user_id);

CREATE TABLE IF NOT EXISTS tags (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT 'gray',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tags_user_id ON tags(user_id);

CREATE TABLE IF NOT EXISTS link_tags (
	link_id INTEGER NOT NULL,
	tag_id TEXT NOT NULL,
	PRIMARY KEY (link_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_link_tags_tag_id ON link_tags(tag_id);

CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	file_name TEXT NOT NULL,
	file_type TEXT NOT NULL,
	file_size INTEGER NOT NULL DEFAULT 0,
	public_url TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_uploads_user_id ON uploads(user_id);

CREATE TABLE IF NOT EXISTS webhooks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	token TEXT NOT NULL,
	rate_limit INTEGER NOT NULL DEFAULT 60,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_settings (
	user_id TEXT PRIMARY KEY,
	preview_style TEXT NOT NULL DEFAULT 'favicon',
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS analytics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	link_id INTEGER NOT NULL,
	country TEXT,
	city TEXT,
	device TEXT,
	browser TEXT,
	os TEXT,
	referer TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analytics_link_id ON analytics(link_id);

CREATE TABLE IF NOT EXISTS sync_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	status TEXT NOT NULL,
	synced INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	total INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error TEXT
);
`

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
