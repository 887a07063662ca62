package store

// migration is a single versioned schema change.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order; each runs at most once, tracked by
// the schema_version table.
var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY
			);

			CREATE TABLE IF NOT EXISTS app_state (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE IF NOT EXISTS surfaced_emails (
				email_id    TEXT PRIMARY KEY,
				surfaced_at TIMESTAMP NOT NULL
			);

			CREATE TABLE IF NOT EXISTS notifications (
				id         TEXT PRIMARY KEY,
				email_id   TEXT NOT NULL,
				sender     TEXT NOT NULL DEFAULT '',
				subject    TEXT NOT NULL DEFAULT '',
				priority   TEXT NOT NULL DEFAULT '',
				read       INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_notifications_email
				ON notifications(email_id);
			CREATE INDEX IF NOT EXISTS idx_notifications_read
				ON notifications(read);

			INSERT INTO schema_version (version) VALUES (1);
		`,
	},
}
