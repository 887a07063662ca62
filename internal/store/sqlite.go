package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mail-assistant/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite
// database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// GetState returns the stored value for key. The second return value
// reports whether the key exists.
func (s *SQLiteStore) GetState(
	ctx context.Context,
	key string,
) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM app_state WHERE key = ?", key,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading app state %q: %w", key, err)
	}
	return value, true, nil
}

// SetState stores value under key, replacing any previous value.
func (s *SQLiteStore) SetState(
	ctx context.Context,
	key string,
	value string,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing app state %q: %w", key, err)
	}
	return nil
}

// DeleteState removes a stored value by key.
func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM app_state WHERE key = ?", key,
	)
	if err != nil {
		return fmt.Errorf("deleting app state %q: %w", key, err)
	}
	return nil
}

// WasSurfaced reports whether a notification has already been created
// for the given email ID.
func (s *SQLiteStore) WasSurfaced(
	ctx context.Context,
	emailID string,
) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM surfaced_emails WHERE email_id = ?", emailID,
	)
	if err != nil {
		return false, fmt.Errorf("checking surfaced email %s: %w", emailID, err)
	}
	return count > 0, nil
}

// MarkSurfaced records that a notification was created for the email.
func (s *SQLiteStore) MarkSurfaced(
	ctx context.Context,
	emailID string,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO surfaced_emails (email_id, surfaced_at)
		VALUES (?, ?)`,
		emailID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("marking email %s surfaced: %w", emailID, err)
	}
	return nil
}

// CreateNotification inserts a new notification history record.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.NotificationRecord,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, email_id, sender, subject, priority, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.EmailID, n.From, n.Subject, string(n.Priority),
		boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetUnreadNotifications retrieves all notification records that have
// not been read, ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(
	ctx context.Context,
) ([]model.NotificationRecord, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM notifications WHERE read = 0 ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.NotificationRecord
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks all notification records for an email as
// read.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	emailID string,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE email_id = ?", emailID,
	)
	if err != nil {
		return fmt.Errorf("marking notifications for %s read: %w", emailID, err)
	}
	return nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.NotificationRecord, error) {
	var (
		n         model.NotificationRecord
		priority  string
		readInt   int
		createdAt time.Time
	)

	err := rows.Scan(
		&n.ID, &n.EmailID, &n.From, &n.Subject, &priority,
		&readInt, &createdAt,
	)
	if err != nil {
		return model.NotificationRecord{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Priority = model.Priority(priority)
	n.Read = readInt != 0
	n.CreatedAt = createdAt

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
