package app

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mail-assistant/internal/api"
	"github.com/nhle/mail-assistant/internal/keys"
	"github.com/nhle/mail-assistant/internal/monitor"
	"github.com/nhle/mail-assistant/internal/notify"
	"github.com/nhle/mail-assistant/internal/session"
	"github.com/nhle/mail-assistant/internal/settings"
	"github.com/nhle/mail-assistant/internal/store"
	"github.com/nhle/mail-assistant/internal/ui"
	draftview "github.com/nhle/mail-assistant/internal/ui/draft"
	"github.com/nhle/mail-assistant/internal/ui/inbox"
	popupview "github.com/nhle/mail-assistant/internal/ui/popup"
	"github.com/nhle/mail-assistant/internal/ui/settingsview"
)

// unreadCountMsg carries the number of unread notification records.
type unreadCountMsg struct {
	count int
}

// markReadDoneMsg reports a background mark-read call.
type markReadDoneMsg struct {
	emailID string
	err     error
}

// firstRunMsg opens the settings form when the app is not yet
// configured.
type firstRunMsg struct{}

// ViewState represents the current main view.
type ViewState int

const (
	ViewInbox ViewState = iota
	ViewSettings
)

// Model is the root Bubble Tea model. It routes between the inbox and
// settings views and renders the notification popup, draft viewer, and
// editor overlays according to the queue and session state.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	ready       bool
	keys        *keys.KeyMap

	client   *api.Client
	db       store.Store
	settings *settings.Store
	queue    *notify.Queue
	sess     *session.Session
	monitor  *monitor.Monitor
	logger   *slog.Logger

	inboxView    inbox.Model
	popupView    popupview.Model
	draftView    draftview.Model
	settingsView settingsview.Model

	unreadCount      int
	authErrorMessage string
}

// New creates the root application model.
func New(
	client *api.Client,
	db store.Store,
	s *settings.Store,
	queue *notify.Queue,
	sess *session.Session,
	mon *monitor.Monitor,
	logger *slog.Logger,
) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewInbox,
		keys:         k,
		client:       client,
		db:           db,
		settings:     s,
		queue:        queue,
		sess:         sess,
		monitor:      mon,
		logger:       logger,
		inboxView:    inbox.New(client, k, 80, 24),
		popupView:    popupview.New(k, 80, 24),
		draftView:    draftview.New(sess, k, 80, 24),
		settingsView: settingsview.New(s, 80, 24),
	}
}

// Init loads the inbox, starts the mail monitor, and opens the settings
// form on first launch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.inboxView.Init(),
		m.monitor.Start(m.settings.Get().CheckIntervalSeconds),
		m.fetchUnreadCount(),
	}

	if st := m.settings.Get(); st.FirstLaunch || !st.IsConfigured {
		cmds = append(cmds, func() tea.Msg { return firstRunMsg{} })
	}

	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view or overlay.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.inboxView.SetSize(w, h)
		m.popupView.SetSize(w, h)
		m.draftView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		// Forward to the settings view so the huh form can lay out.
		if m.currentView == ViewSettings {
			var cmd tea.Cmd
			m.settingsView, cmd = m.settingsView.Update(msg)
			return m, cmd
		}
		return m, nil

	case monitor.CheckResultMsg:
		if msg.AuthMessage != "" {
			m.authErrorMessage = msg.AuthMessage
		} else if msg.Err == nil {
			m.authErrorMessage = ""
		}
		m.popupView.SetNotification(m.queue.Current())

		cmds := []tea.Cmd{m.monitor.WaitForNextResult()}
		if msg.NewCount > 0 {
			cmds = append(cmds, m.inboxView.LoadEmails(), m.fetchUnreadCount())
		}
		return m, tea.Batch(cmds...)

	case firstRunMsg:
		m.currentView = ViewSettings
		return m, m.settingsView.Open()

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case markReadDoneMsg:
		if msg.err == nil {
			return m, m.inboxView.LoadEmails()
		}
		return m, nil

	case inbox.EmailsLoadedMsg:
		var cmd tea.Cmd
		m.inboxView, cmd = m.inboxView.Update(msg)
		return m, cmd

	case inbox.SelectedEmailMsg:
		// Opening an email from the list handles its notification too.
		m.queue.Remove(msg.Email.ID)
		m.popupView.SetNotification(m.queue.Current())
		m.sess.Prepare(msg.Email, nil)
		m.draftView.Refresh()
		cmds := []tea.Cmd{
			m.draftView.GenerateCmd(),
			m.markNotificationRead(msg.Email.ID),
		}
		if !msg.Email.IsRead {
			cmds = append(cmds, m.markEmailRead(msg.Email.ID))
		}
		return m, tea.Batch(cmds...)

	case popupview.ReplyMsg:
		m.sess.Prepare(msg.Email, msg.Summary)
		m.draftView.Refresh()
		return m, tea.Batch(
			m.draftView.GenerateCmd(),
			m.markNotificationRead(msg.Email.ID),
		)

	case popupview.DismissMsg:
		m.queue.DismissCurrent()
		m.popupView.SetNotification(m.queue.Current())
		return m, nil

	case draftview.SessionChangedMsg:
		m.draftView.Refresh()
		return m, nil

	case draftview.CancelledMsg:
		// The email's notification, if still queued, surfaces again.
		m.popupView.SetNotification(m.queue.Current())
		return m, nil

	case draftview.SentMsg:
		m.draftView.Refresh()
		m.popupView.SetNotification(m.queue.Current())
		return m, tea.Batch(
			m.inboxView.LoadEmails(),
			m.fetchUnreadCount(),
		)

	case settingsview.SavedMsg:
		// Restart the monitor so a new interval takes effect.
		m.monitor.Stop()
		return m, m.monitor.Start(msg.Settings.CheckIntervalSeconds)

	case settingsview.DoneMsg:
		m.currentView = ViewInbox
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateActiveOverlay(msg)
}

// handleKeyMsg routes keyboard input to the active view or overlay.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Hard quit works everywhere.
	if msg.String() == "ctrl+c" {
		m.monitor.Stop()
		return m, tea.Quit
	}

	if m.currentView == ViewSettings {
		var cmd tea.Cmd
		m.settingsView, cmd = m.settingsView.Update(msg)
		return m, cmd
	}

	switch m.activeSurface() {
	case SurfaceViewer, SurfaceEditor:
		var cmd tea.Cmd
		m.draftView, cmd = m.draftView.Update(msg)
		return m, cmd

	case SurfacePopup:
		if msg.String() == "x" {
			m.queue.ClearAll()
			m.popupView.SetNotification(nil)
			return m, nil
		}
		var cmd tea.Cmd
		m.popupView, cmd = m.popupView.Update(msg)
		return m, cmd
	}

	// No overlay: global keys, then the inbox list.
	switch msg.String() {
	case "q":
		m.monitor.Stop()
		return m, tea.Quit
	case "s":
		m.currentView = ViewSettings
		return m, m.settingsView.Open()
	case "r":
		m.monitor.Refresh()
		return m, m.inboxView.LoadEmails()
	}

	var cmd tea.Cmd
	m.inboxView, cmd = m.inboxView.Update(msg)
	return m, cmd
}

// updateActiveOverlay forwards non-key messages to the overlay that
// owns input components.
func (m Model) updateActiveOverlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.currentView == ViewSettings {
		var cmd tea.Cmd
		m.settingsView, cmd = m.settingsView.Update(msg)
		return m, cmd
	}

	switch m.activeSurface() {
	case SurfaceViewer, SurfaceEditor:
		var cmd tea.Cmd
		m.draftView, cmd = m.draftView.Update(msg)
		return m, cmd
	}
	return m, nil
}

// activeSurface computes the overlay for the current queue and session
// state.
func (m Model) activeSurface() Surface {
	return ActiveSurface(m.queue.Current(), m.sess.Snapshot())
}

// View renders the full terminal frame.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	if m.currentView == ViewSettings {
		return m.layout.RenderWithFrame(
			m.layout.RenderHeader(m.headerTitle(), m.headerStatus()),
			m.settingsView.View(),
			m.layout.RenderStatusBar("tab next field | enter save | esc back"),
		)
	}

	var content, hints string
	switch m.activeSurface() {
	case SurfaceViewer, SurfaceEditor:
		content = m.layout.CenterOverlay(m.draftView.View())
		hints = "esc back"
	case SurfacePopup:
		m.popupView.SetNotification(m.queue.Current())
		content = m.layout.CenterOverlay(m.popupView.View())
		hints = "enter reply | d dismiss | x dismiss all"
	default:
		content = m.inboxView.View()
		hints = "j/k move | enter reply | r refresh | s settings | q quit"
	}

	return m.layout.RenderWithFrame(
		m.layout.RenderHeader(m.headerTitle(), m.headerStatus()),
		content,
		m.layout.RenderStatusBar(hints),
	)
}

// headerTitle renders the app title with the unread badge.
func (m Model) headerTitle() string {
	title := "Mail Assistant"
	if m.unreadCount > 0 {
		title = fmt.Sprintf("%s  [%d new]", title, m.unreadCount)
	}
	return title
}

// headerStatus renders the monitor state for the header's right side.
func (m Model) headerStatus() string {
	if m.authErrorMessage != "" {
		return m.authErrorMessage
	}
	if !m.settings.Get().NotificationsEnabled {
		return "notifications off"
	}

	st := m.monitor.Status()
	switch st.State {
	case monitor.StateRunning:
		return "checking..."
	case monitor.StateError:
		return "check failed"
	default:
		if st.LastCheck.IsZero() {
			return ""
		}
		return "checked " + st.LastCheck.Format("15:04:05")
	}
}

// fetchUnreadCount returns a command that counts unread notification
// records.
func (m Model) fetchUnreadCount() tea.Cmd {
	db := m.db
	return func() tea.Msg {
		records, err := db.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(records)}
	}
}

// markEmailRead returns a command that marks the email read on the
// backend.
func (m Model) markEmailRead(emailID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.MarkRead(context.Background(), emailID)
		return markReadDoneMsg{emailID: emailID, err: err}
	}
}

// markNotificationRead returns a command that marks the email's
// notification record read and refreshes the unread badge.
func (m Model) markNotificationRead(emailID string) tea.Cmd {
	db := m.db
	logger := m.logger
	count := m.fetchUnreadCount()
	return func() tea.Msg {
		if err := db.MarkNotificationRead(context.Background(), emailID); err != nil {
			logger.Warn("marking notification read failed",
				"email_id", emailID, "error", err)
		}
		return count()
	}
}
