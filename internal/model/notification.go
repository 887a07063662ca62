package model

import "time"

// EmailNotification is one user-facing surfacing of a newly detected
// email, optionally annotated with an AI summary.
type EmailNotification struct {
	Email Email

	// Summary is nil when summarization failed; the notification is
	// still shown.
	Summary *EmailSummary

	// Timestamp is when the monitor created this notification.
	Timestamp time.Time
}

// NotificationRecord is the persisted history entry for a surfaced
// email, backing the unread badge and the monitor's dedupe check.
type NotificationRecord struct {
	ID        string    `json:"id"`
	EmailID   string    `json:"email_id"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Priority  Priority  `json:"priority"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
