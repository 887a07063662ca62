package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mail-assistant/internal/api"
	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/notify"
	"github.com/nhle/mail-assistant/internal/settings"
	"github.com/nhle/mail-assistant/internal/store"
)

// State represents the current state of the mail check cycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

// Status holds the monitor state for display in the header.
type Status struct {
	State     State
	LastCheck time.Time
	Error     error
}

// CheckResultMsg is a tea.Msg sent when a poll cycle completes.
type CheckResultMsg struct {
	NewCount    int
	Err         error
	AuthMessage string
}

// checkTimeout is the maximum time allowed for a single poll cycle.
const checkTimeout = 30 * time.Second

// checkLimit caps how many new emails one cycle will process.
const checkLimit = 20

// Backend is the collaborator surface the monitor needs: the mail-check
// call and the summarizer.
type Backend interface {
	CheckEmails(ctx context.Context, limit int) (*api.CheckEmailsResponse, error)
	Summarize(ctx context.Context, emailID string) (*model.EmailSummary, error)
}

// Monitor periodically polls the backend for new mail, summarizes each
// new message, and feeds the notification queue. Cycles are serialized:
// a trigger that arrives while a cycle is in flight is skipped, not
// queued.
type Monitor struct {
	backend  Backend
	queue    *notify.Queue
	db       store.Store
	settings *settings.Store
	logger   *slog.Logger

	resultCh  chan CheckResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	mu        sync.Mutex
	running   bool
	ticking   bool
	state     State
	lastCheck time.Time
	lastErr   error
}

// New creates a monitor wired to the given collaborators.
func New(
	backend Backend,
	queue *notify.Queue,
	db store.Store,
	s *settings.Store,
	logger *slog.Logger,
) *Monitor {
	return &Monitor{
		backend:   backend,
		queue:     queue,
		db:        db,
		settings:  s,
		logger:    logger,
		resultCh:  make(chan CheckResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start begins the polling loop with the given interval and returns a
// subscription command that delivers CheckResultMsg messages to the
// Bubble Tea runtime. Calling Start on a running monitor returns only
// the subscription command.
func (m *Monitor) Start(intervalSeconds int) tea.Cmd {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return m.waitForResult()
	}
	m.running = true
	stopCh := make(chan struct{})
	m.stopCh = stopCh
	m.mu.Unlock()

	interval := time.Duration(model.ClampCheckInterval(intervalSeconds)) * time.Second
	go m.loop(interval, stopCh)

	return m.waitForResult()
}

// Stop halts the polling loop. An in-flight cycle is not interrupted;
// its completion may still mutate the queue.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	close(m.stopCh)
	m.running = false
}

// Refresh requests an immediate poll cycle without waiting for the next
// tick. The request is dropped when one is already pending.
func (m *Monitor) Refresh() {
	select {
	case m.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the current monitor status for display.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		State:     m.state,
		LastCheck: m.lastCheck,
		Error:     m.lastErr,
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll
// result. Call it after processing a CheckResultMsg to keep listening.
func (m *Monitor) WaitForNextResult() tea.Cmd {
	return m.waitForResult()
}

// loop runs the ticker until the stop channel closes. Each Start call
// gets its own stop channel so the monitor can be restarted with a new
// interval.
func (m *Monitor) loop(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Check immediately on start.
	m.Tick(context.Background())

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.Tick(context.Background())
		case <-m.triggerCh:
			m.Tick(context.Background())
		}
	}
}

// Tick executes one poll cycle. Overlapping calls are skipped: only one
// cycle runs at a time.
func (m *Monitor) Tick(ctx context.Context) {
	if !m.beginTick() {
		m.logger.Debug("mail check already in flight, skipping")
		return
	}
	defer m.endTick()

	st := m.settings.Get()
	if !st.IsConfigured || !st.NotificationsEnabled {
		// beginTick flipped the state to running; a skipped cycle must
		// not report "checking" forever.
		m.mu.Lock()
		m.state = StateIdle
		m.mu.Unlock()
		return
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	resp, err := m.backend.CheckEmails(ctx, checkLimit)
	if err != nil {
		m.setStatus(StateError, err)
		m.logger.Warn("mail check failed", "error", err)

		msg := CheckResultMsg{Err: err}
		if api.IsAuthError(err) {
			msg.AuthMessage = "Backend authentication failed. Check your API token."
		}
		m.sendResult(msg)
		return
	}

	surfaced := 0
	for _, email := range resp.Emails {
		seen, err := m.db.WasSurfaced(ctx, email.ID)
		if err != nil {
			m.logger.Warn("dedupe lookup failed", "email_id", email.ID, "error", err)
		}
		if seen {
			continue
		}

		// A failed summary never blocks the notification; it is shown
		// without one.
		summary, err := m.backend.Summarize(ctx, email.ID)
		if err != nil {
			m.logger.Warn("summarization failed, notifying without summary",
				"email_id", email.ID, "error", err)
			summary = nil
		}

		m.queue.Add(email, summary)
		surfaced++

		if err := m.db.MarkSurfaced(ctx, email.ID); err != nil {
			m.logger.Warn("recording surfaced email failed",
				"email_id", email.ID, "error", err)
		}

		record := model.NotificationRecord{
			EmailID:   email.ID,
			From:      email.From,
			Subject:   email.Subject,
			CreatedAt: time.Now(),
		}
		if summary != nil {
			record.Priority = summary.Priority
		}
		if err := m.db.CreateNotification(ctx, record); err != nil {
			m.logger.Warn("recording notification failed",
				"email_id", email.ID, "error", err)
		}
	}

	m.setStatus(StateIdle, nil)
	m.sendResult(CheckResultMsg{NewCount: surfaced})
}

// beginTick acquires the single-cycle guard.
func (m *Monitor) beginTick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticking {
		return false
	}
	m.ticking = true
	m.state = StateRunning
	return true
}

// endTick releases the single-cycle guard.
func (m *Monitor) endTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticking = false
}

// setStatus updates the monitor status.
func (m *Monitor) setStatus(state State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = state
	m.lastErr = err
	if state == StateIdle && err == nil {
		m.lastCheck = time.Now()
	}
}

// sendResult sends a CheckResultMsg without blocking the poll loop.
func (m *Monitor) sendResult(msg CheckResultMsg) {
	select {
	case m.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the monitor.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result.
func (m *Monitor) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-m.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
