package model

import "time"

// Sentiment classifies the overall tone of an email as judged by the
// summarizer.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Priority is the summarizer's urgency estimate for an email.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Attachment describes a single email attachment. Content is never
// downloaded by the client; only metadata travels over the API.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Email is a message as returned by the backend. It is immutable on the
// client except for IsRead, which is updated optimistically after a
// successful mark-read call.
type Email struct {
	// ID is the backend's unique identifier for the message (IMAP UID).
	ID string `json:"id"`

	// MessageID is the RFC 5322 Message-ID header, used for threading.
	MessageID string `json:"message_id"`

	From           string       `json:"from"`
	To             []string     `json:"to"`
	Cc             []string     `json:"cc"`
	Subject        string       `json:"subject"`
	Body           string       `json:"body"`
	HTMLBody       string       `json:"html_body,omitempty"`
	Date           time.Time    `json:"date"`
	IsRead         bool         `json:"is_read"`
	IsFlagged      bool         `json:"is_flagged"`
	HasAttachments bool         `json:"has_attachments"`
	Attachments    []Attachment `json:"attachments"`

	// InReplyTo and References carry the threading headers of the
	// original message, used to build reply drafts.
	InReplyTo  string   `json:"in_reply_to,omitempty"`
	References []string `json:"references"`
}

// EmailSummary is the AI-generated digest of one email, keyed by the
// email's ID. A summary may be absent (the summarizer failed); all
// consumers must tolerate a nil summary.
type EmailSummary struct {
	EmailID          string    `json:"email_id"`
	Summary          string    `json:"summary"`
	KeyPoints        []string  `json:"key_points"`
	Sentiment        Sentiment `json:"sentiment"`
	Priority         Priority  `json:"priority"`
	ActionRequired   bool      `json:"action_required"`
	SuggestedActions []string  `json:"suggested_actions"`
}

// Draft is an outgoing reply payload for the send endpoint.
type Draft struct {
	To         []string `json:"to"`
	Cc         []string `json:"cc"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	InReplyTo  string   `json:"in_reply_to,omitempty"`
	References []string `json:"references"`
}
