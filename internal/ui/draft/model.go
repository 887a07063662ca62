package draft

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-assistant/internal/keys"
	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/session"
	"github.com/nhle/mail-assistant/internal/theme"
)

// SessionChangedMsg signals that a session operation finished and the
// UI should re-read the session snapshot.
type SessionChangedMsg struct{}

// CancelledMsg signals that the user abandoned the reply workflow.
type CancelledMsg struct{}

// SentMsg signals that the reply was sent and the workflow completed.
type SentMsg struct{}

// Model renders the draft viewer and the chat-based editor, backed by
// the one active session.
type Model struct {
	sess *session.Session
	snap session.Snapshot
	keys *keys.KeyMap

	input        textarea.Model
	conversation viewport.Model
	showConfirm  bool
	width        int
	height       int
}

// New creates the draft workflow view.
func New(sess *session.Session, k *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Tell the assistant how to change the draft..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width/2 - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000

	vpHeight := height - 10
	if vpHeight < 4 {
		vpHeight = 4
	}
	vp := viewport.New(width/2-4, vpHeight)

	return Model{
		sess:         sess,
		keys:         k,
		input:        ta,
		conversation: vp,
		width:        width,
		height:       height,
	}
}

// Refresh re-reads the session snapshot. Call after any session change.
func (m *Model) Refresh() {
	m.snap = m.sess.Snapshot()
	if m.snap.Mode == session.ModeNone {
		m.showConfirm = false
		m.input.Reset()
	}
	m.conversation.SetContent(m.renderConversation())
	m.conversation.GotoBottom()
}

// GenerateCmd returns a command that runs draft generation. The session
// guards against duplicate in-flight generations itself.
func (m Model) GenerateCmd() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		_ = sess.Generate(context.Background())
		return SessionChangedMsg{}
	}
}

// Update handles input while the viewer or editor is the active surface.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.showConfirm {
		return m.updateConfirm(keyMsg)
	}

	switch m.snap.Mode {
	case session.ModeViewing:
		return m.updateViewer(keyMsg)
	case session.ModeEditing:
		return m.updateEditor(keyMsg)
	}
	return m, nil
}

// updateConfirm handles the send confirmation dialog.
func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.snap.IsSending {
		return m, nil
	}

	switch msg.String() {
	case "y", "enter":
		m.showConfirm = false
		return m, m.confirmSendCmd()
	case "n", "esc":
		m.showConfirm = false
		return m, nil
	}
	return m, nil
}

// updateViewer handles keys in the draft view state.
func (m Model) updateViewer(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "e":
		if err := m.sess.Edit(); err == nil {
			m.Refresh()
			return m, tea.Batch(m.input.Focus(), textarea.Blink)
		}
		return m, nil

	case "s":
		if m.snap.Draft != "" && !m.snap.IsGenerating {
			m.showConfirm = true
		}
		return m, nil

	case "r":
		// Retry after a failed generation.
		if m.snap.Draft == "" && !m.snap.IsGenerating {
			return m, m.GenerateCmd()
		}
		return m, nil

	case "esc":
		m.sess.Cancel()
		m.Refresh()
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

// updateEditor handles keys in the chat refinement state.
func (m Model) updateEditor(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.sess.Back()
		m.Refresh()
		return m, nil

	case "ctrl+s":
		if m.snap.Draft != "" && !m.snap.IsGenerating {
			m.showConfirm = true
		}
		return m, nil

	case "enter":
		if m.snap.IsGenerating {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.sendChatCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// sendChatCmd returns a command that sends a refinement instruction.
func (m Model) sendChatCmd(text string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		_ = sess.SendChat(context.Background(), text)
		return SessionChangedMsg{}
	}
}

// confirmSendCmd returns a command that delivers the reply.
func (m Model) confirmSendCmd() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		if err := sess.ConfirmSend(context.Background()); err != nil {
			return SessionChangedMsg{}
		}
		return SentMsg{}
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width/2 - 4)

	vpHeight := height - 10
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.conversation.Width = width/2 - 4
	m.conversation.Height = vpHeight
}

// View renders the active workflow surface.
func (m Model) View() string {
	switch m.snap.Mode {
	case session.ModeViewing:
		return m.renderViewer()
	case session.ModeEditing:
		return m.renderEditor()
	default:
		return ""
	}
}

// renderViewer renders the generated draft with its actions.
func (m Model) renderViewer() string {
	var sections []string

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, title.Render("Reply draft"), "")

	if m.snap.Email != nil {
		sections = append(sections,
			theme.HelpStyle.Render(fmt.Sprintf(
				"Replying to %s: %s",
				m.snap.Email.From, m.snap.Email.Subject,
			)), "")
	}

	switch {
	case m.snap.IsGenerating:
		sections = append(sections, theme.HelpStyle.Render("Generating draft..."))
	case m.snap.Draft != "":
		sections = append(sections, m.snap.Draft, "",
			theme.HelpStyle.Render(fmt.Sprintf("%d characters", len(m.snap.Draft))))
	default:
		sections = append(sections,
			theme.ErrorStyle.Render(m.errOrDefault("Draft generation failed.")),
			theme.HelpStyle.Render("Press r to retry."))
	}

	if m.snap.Err != "" && m.snap.Draft != "" {
		sections = append(sections, "", theme.ErrorStyle.Render(m.snap.Err))
	}

	sections = append(sections, "",
		theme.HelpStyle.Render("e edit | s send | esc cancel"))

	panel := theme.PanelStyle.
		Width(m.panelWidth()).
		Render(strings.Join(sections, "\n"))

	if m.showConfirm {
		return lipgloss.JoinVertical(lipgloss.Center, panel, m.renderConfirm())
	}
	return panel
}

// renderEditor renders the split draft/chat refinement view.
func (m Model) renderEditor() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	draftPane := lipgloss.JoinVertical(
		lipgloss.Left,
		title.Render("Current draft"),
		"",
		m.snap.Draft,
	)

	chatPane := lipgloss.JoinVertical(
		lipgloss.Left,
		title.Render("Refinement chat"),
		"",
		m.conversation.View(),
		m.input.View(),
	)

	paneStyle := theme.PanelStyle.Width(m.panelWidth() / 2)
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		paneStyle.Render(draftPane),
		paneStyle.Render(chatPane),
	)

	footer := theme.HelpStyle.Render(
		"enter send message | ctrl+s send reply | esc back")
	view := lipgloss.JoinVertical(lipgloss.Left, body, footer)

	if m.showConfirm {
		return lipgloss.JoinVertical(lipgloss.Center, view, m.renderConfirm())
	}
	return view
}

// renderConversation builds the chat transcript for the viewport.
func (m Model) renderConversation() string {
	if len(m.snap.History) == 0 {
		return theme.HelpStyle.Render(
			"Examples:\n" +
				"• Make it shorter\n" +
				"• Sound more formal\n" +
				"• Mention the attached report\n" +
				"• Propose a meeting next week")
	}

	roleStyle := lipgloss.NewStyle().Bold(true)
	userStyle := roleStyle.Foreground(theme.ColorBlue)
	assistantStyle := roleStyle.Foreground(theme.ColorGreen)

	var sections []string
	for _, msg := range m.snap.History {
		label := assistantStyle.Render("Assistant:")
		if msg.Role == model.RoleUser {
			label = userStyle.Render("You:")
		}
		sections = append(sections, label, msg.Content, "")
	}

	if m.snap.IsGenerating {
		sections = append(sections, theme.HelpStyle.Render("..."))
	}
	if m.snap.Err != "" {
		sections = append(sections, theme.ErrorStyle.Render(m.snap.Err))
	}

	return strings.Join(sections, "\n")
}

// renderConfirm renders the send confirmation dialog.
func (m Model) renderConfirm() string {
	text := "Send this reply? (y/n)"
	if m.snap.IsSending {
		text = "Sending..."
	}
	return theme.PanelStyle.Render(text)
}

// errOrDefault returns the session error or a fallback message.
func (m Model) errOrDefault(fallback string) string {
	if m.snap.Err != "" {
		return m.snap.Err
	}
	return fallback
}

// panelWidth returns the width for overlay panels.
func (m Model) panelWidth() int {
	w := m.width * 3 / 4
	if w < 60 {
		w = 60
	}
	return w
}
