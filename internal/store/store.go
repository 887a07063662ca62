package store

import (
	"context"

	"github.com/nhle/mail-assistant/internal/model"
)

// Store defines the local persistence interface: durable app state
// blobs (settings), the set of emails already surfaced as
// notifications, and the notification history.
type Store interface {
	// === App state (key/value JSON blobs) ===

	GetState(ctx context.Context, key string) (string, bool, error)
	SetState(ctx context.Context, key string, value string) error
	DeleteState(ctx context.Context, key string) error

	// === Surfaced emails (monitor dedupe) ===

	WasSurfaced(ctx context.Context, emailID string) (bool, error)
	MarkSurfaced(ctx context.Context, emailID string) error

	// === Notification history ===

	CreateNotification(ctx context.Context, n model.NotificationRecord) error
	GetUnreadNotifications(ctx context.Context) ([]model.NotificationRecord, error)
	MarkNotificationRead(ctx context.Context, emailID string) error
}
