package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/mail-assistant/internal/api"
	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/settings"
)

// Mode is the state of the reply workflow.
type Mode int

const (
	// ModeNone means no email is active and no workflow is running.
	ModeNone Mode = iota

	// ModeViewing shows the generated draft, possibly still generating.
	ModeViewing

	// ModeEditing is the chat-based refinement state.
	ModeEditing
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeEditing:
		return "editing"
	default:
		return "none"
	}
}

var (
	// ErrNoDraft is returned when an operation requires a non-empty draft.
	ErrNoDraft = errors.New("no draft available")

	// ErrBusy is returned when a generation or send is already in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrNoEmail is returned when no email is active in the session.
	ErrNoEmail = errors.New("no active email")
)

// Agent is the AI collaborator used for drafting and refinement.
type Agent interface {
	GenerateReply(ctx context.Context, emailID string, tone model.Tone) (*api.GeneratedReply, error)
	ChatRefine(ctx context.Context, history []model.ChatMessage, userMessage string) (*api.ChatRefineResponse, error)
}

// Mailer is the mail collaborator used to deliver the reply and mark
// the original read.
type Mailer interface {
	SendEmail(ctx context.Context, draft model.Draft) error
	MarkRead(ctx context.Context, emailID string) error
}

// Notifier removes a pending notification once its email is handled.
type Notifier interface {
	Remove(emailID string)
}

// Snapshot is a point-in-time copy of the session state for rendering.
type Snapshot struct {
	Email        *model.Email
	Summary      *model.EmailSummary
	Draft        string
	History      []model.ChatMessage
	Mode         Mode
	IsGenerating bool
	IsSending    bool
	Err          string
}

// Session owns the in-memory workflow state for composing and refining
// a reply to one email. State mutations are serialized by a mutex; the
// IsGenerating and IsSending flags double as guards against duplicate
// in-flight collaborator calls.
type Session struct {
	mu            sync.Mutex
	agent         Agent
	mailer        Mailer
	notifications Notifier
	settings      *settings.Store
	logger        *slog.Logger

	email        *model.Email
	summary      *model.EmailSummary
	draft        string
	history      []model.ChatMessage
	mode         Mode
	isGenerating bool
	isSending    bool
	errMsg       string
}

// New creates an empty session.
func New(
	agent Agent,
	mailer Mailer,
	notifications Notifier,
	s *settings.Store,
	logger *slog.Logger,
) *Session {
	return &Session{
		agent:         agent,
		mailer:        mailer,
		notifications: notifications,
		settings:      s,
		logger:        logger,
		mode:          ModeNone,
	}
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Draft:        s.draft,
		Mode:         s.mode,
		IsGenerating: s.isGenerating,
		IsSending:    s.isSending,
		Err:          s.errMsg,
	}
	if s.email != nil {
		e := *s.email
		snap.Email = &e
	}
	if s.summary != nil {
		sum := *s.summary
		snap.Summary = &sum
	}
	if len(s.history) > 0 {
		snap.History = make([]model.ChatMessage, len(s.history))
		copy(snap.History, s.history)
	}
	return snap
}

// Mode returns the current workflow state.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Prepare starts a reply workflow for the given email, replacing any
// previous session content. The draft, conversation history, error, and
// busy flags are always cleared: a collaborator call still in flight
// for the previous email completes as a stale no-op and must not leave
// the new session guarded.
func (s *Session) Prepare(email model.Email, summary *model.EmailSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.email = &email
	s.summary = summary
	s.draft = ""
	s.history = nil
	s.errMsg = ""
	s.isGenerating = false
	s.isSending = false
	s.mode = ModeViewing
}

// NeedsGeneration reports whether the session should auto-generate a
// draft: viewing, no draft yet, and no generation in flight.
func (s *Session) NeedsGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode == ModeViewing && s.email != nil &&
		s.draft == "" && !s.isGenerating
}

// Generate asks the agent for a reply draft in the configured tone.
// A no-op when a generation is already in flight. On failure the error
// is recorded for display and the draft stays empty so the user can
// retry.
func (s *Session) Generate(ctx context.Context) error {
	s.mu.Lock()
	if s.email == nil {
		s.mu.Unlock()
		return ErrNoEmail
	}
	if s.isGenerating {
		s.mu.Unlock()
		return nil
	}
	s.isGenerating = true
	s.errMsg = ""
	emailID := s.email.ID
	s.mu.Unlock()

	tone := s.settings.Get().EmailTone
	reply, err := s.agent.GenerateReply(ctx, emailID, tone)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The session may have moved on to another email while the call
	// was in flight; a stale completion must not leak into it. Prepare
	// reset the busy flags, which may now guard a newer call.
	if s.email == nil || s.email.ID != emailID {
		return nil
	}

	s.isGenerating = false
	if err != nil {
		s.logger.Warn("reply generation failed", "email_id", emailID, "error", err)
		s.errMsg = "Failed to generate a reply. Please retry."
		return err
	}

	s.draft = reply.ReplyText
	s.errMsg = ""
	return nil
}

// Edit moves from viewing to chat-based refinement. Requires a
// non-empty draft.
func (s *Session) Edit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == nil {
		return ErrNoEmail
	}
	if s.draft == "" {
		return ErrNoDraft
	}
	s.mode = ModeEditing
	return nil
}

// Back returns from editing to the draft view.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeEditing {
		s.mode = ModeViewing
	}
}

// SendChat appends the user's instruction to the conversation and asks
// the agent to refine the draft. The agent's returned history replaces
// the local copy wholesale; when its final turn is from the assistant,
// that turn's content becomes the new draft.
//
// On failure the user message stays appended (there is no rollback) and
// the user may retry by sending another message.
func (s *Session) SendChat(ctx context.Context, message string) error {
	s.mu.Lock()
	if s.email == nil {
		s.mu.Unlock()
		return ErrNoEmail
	}
	if s.mode != ModeEditing {
		s.mu.Unlock()
		return errors.New("chat refinement requires editing mode")
	}
	if s.isGenerating {
		s.mu.Unlock()
		return ErrBusy
	}

	// The history sent to the agent excludes the new user message; it
	// travels separately in the request.
	prior := make([]model.ChatMessage, len(s.history))
	copy(prior, s.history)

	s.history = append(s.history, model.ChatMessage{
		ID:        uuid.New().String(),
		Role:      model.RoleUser,
		Content:   message,
		Timestamp: time.Now(),
	})
	s.isGenerating = true
	emailID := s.email.ID
	s.mu.Unlock()

	resp, err := s.agent.ChatRefine(ctx, prior, message)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == nil || s.email.ID != emailID {
		return nil
	}

	s.isGenerating = false
	if err != nil {
		s.logger.Warn("chat refinement failed", "email_id", emailID, "error", err)
		s.errMsg = "Failed to refine the draft. Send another message to retry."
		return err
	}

	// The agent's copy of the history is authoritative.
	s.history = resp.UpdatedHistory
	s.errMsg = ""

	if len(s.history) > 0 {
		last := s.history[len(s.history)-1]
		if last.Role == model.RoleAssistant {
			s.draft = last.Content
		}
	}
	return nil
}

// ConfirmSend builds the reply payload, delivers it, marks the original
// email read, dismisses its notification, and resets the session. If
// either collaborator call fails the session stays in its current mode
// with the error surfaced; the send is not retried automatically.
func (s *Session) ConfirmSend(ctx context.Context) error {
	s.mu.Lock()
	if s.email == nil {
		s.mu.Unlock()
		return ErrNoEmail
	}
	if s.draft == "" {
		s.mu.Unlock()
		return ErrNoDraft
	}
	if s.isSending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.isSending = true
	email := *s.email
	draft := BuildReply(email, s.draft)
	s.mu.Unlock()

	if err := s.mailer.SendEmail(ctx, draft); err != nil {
		s.logger.Warn("sending reply failed", "email_id", email.ID, "error", err)
		s.fail("Failed to send the reply.")
		return err
	}

	if err := s.mailer.MarkRead(ctx, email.ID); err != nil {
		s.logger.Warn("marking email read failed", "email_id", email.ID, "error", err)
		s.fail("Reply sent, but marking the email read failed.")
		return err
	}

	s.notifications.Remove(email.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return nil
}

// Cancel abandons the workflow and clears all session state.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// fail records an error and clears the sending flag, leaving the rest
// of the session intact for retry.
func (s *Session) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isSending = false
	s.errMsg = msg
}

// resetLocked clears every session field. Callers must hold the lock.
func (s *Session) resetLocked() {
	s.email = nil
	s.summary = nil
	s.draft = ""
	s.history = nil
	s.mode = ModeNone
	s.isGenerating = false
	s.isSending = false
	s.errMsg = ""
}
