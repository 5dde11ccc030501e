package storage

var pgMigration = []string{
	`CREATE TYPE summary_status AS ENUM ('queued', 'in_progress', 'done', 'error')`,
	`CREATE TABLE summary (
summary_key VARCHAR(255) PRIMARY KEY,
video_id VARCHAR(255) NOT NULL UNIQUE,
url TEXT NOT NULL,
title TEXT NOT NULL DEFAULT '',
channel TEXT NOT NULL DEFAULT '',
thumbnail_url TEXT NOT NULL DEFAULT '',
question TEXT NOT NULL DEFAULT '',
model VARCHAR(255) NOT NULL DEFAULT '',
status summary_status NOT NULL,
created_at BIGINT NOT NULL,
updated_at BIGINT NOT NULL,
markdown TEXT NOT NULL DEFAULT '',
error TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX summary_updated_at ON summary (updated_at DESC)`,
}

var sqliteMigration = []string{
	`CREATE TABLE summary (
summary_key TEXT PRIMARY KEY,
video_id TEXT NOT NULL UNIQUE,
url TEXT NOT NULL,
title TEXT NOT NULL DEFAULT '',
channel TEXT NOT NULL DEFAULT '',
thumbnail_url TEXT NOT NULL DEFAULT '',
question TEXT NOT NULL DEFAULT '',
model TEXT NOT NULL DEFAULT '',
status TEXT NOT NULL CHECK (status IN ('queued', 'in_progress', 'done', 'error')),
created_at INTEGER NOT NULL,
updated_at INTEGER NOT NULL,
markdown TEXT NOT NULL DEFAULT '',
error TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX summary_updated_at ON summary (updated_at DESC)`,
}
