package popup

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-assistant/internal/keys"
	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/preview"
	"github.com/nhle/mail-assistant/internal/theme"
)

// ReplyMsg signals that the user chose to reply to the shown
// notification.
type ReplyMsg struct {
	Email   model.Email
	Summary *model.EmailSummary
}

// DismissMsg signals that the user dismissed the shown notification.
type DismissMsg struct{}

// Model renders the notification popup for the queue's current entry.
type Model struct {
	notification *model.EmailNotification
	keys         *keys.KeyMap
	width        int
	height       int
}

// New creates a notification popup model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetNotification updates the notification being shown. A nil value
// hides the popup.
func (m *Model) SetNotification(n *model.EmailNotification) {
	m.notification = n
}

// SetSize updates the popup dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles keyboard input while the popup is the active surface.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.notification == nil {
		return m, nil
	}

	switch keyMsg.String() {
	case "enter":
		n := *m.notification
		return m, func() tea.Msg {
			return ReplyMsg{Email: n.Email, Summary: n.Summary}
		}
	case "d", "esc":
		return m, func() tea.Msg {
			return DismissMsg{}
		}
	}

	return m, nil
}

// View renders the popup panel.
func (m Model) View() string {
	if m.notification == nil {
		return ""
	}

	n := m.notification
	var sections []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render("New email")
	sections = append(sections, title, "")

	sections = append(sections,
		fmt.Sprintf("From:    %s", n.Email.From),
		fmt.Sprintf("Subject: %s", n.Email.Subject),
		fmt.Sprintf("Date:    %s", n.Email.Date.Format("Jan 02 15:04")),
	)

	if n.Email.HasAttachments {
		sections = append(sections,
			fmt.Sprintf("Attachments: %d", len(n.Email.Attachments)))
	}

	sections = append(sections, "", m.renderSummary(n))
	sections = append(sections, "",
		theme.HelpStyle.Render("enter reply | d dismiss"))

	panelWidth := m.width * 2 / 3
	if panelWidth < 40 {
		panelWidth = 40
	}

	return theme.PanelStyle.
		Width(panelWidth).
		Render(strings.Join(sections, "\n"))
}

// renderSummary renders the AI summary block, or a body preview when
// summarization failed.
func (m Model) renderSummary(n *model.EmailNotification) string {
	if n.Summary == nil {
		text := preview.Text(n.Email.Body, n.Email.HTMLBody, 200)
		if text == "" {
			return theme.HelpStyle.Render("(no preview available)")
		}
		return text
	}

	s := n.Summary
	var parts []string

	badges := theme.PriorityStyle(s.Priority).Render(string(s.Priority)) +
		" " + theme.SentimentStyle(s.Sentiment).Render(string(s.Sentiment))
	if s.ActionRequired {
		badges += " " + theme.ErrorStyle.Render("action required")
	}
	parts = append(parts, badges, "", s.Summary)

	if len(s.KeyPoints) > 0 {
		parts = append(parts, "")
		for _, p := range s.KeyPoints {
			parts = append(parts, "• "+p)
		}
	}

	if len(s.SuggestedActions) > 0 {
		parts = append(parts, "", theme.HelpStyle.Render(
			"Suggested: "+strings.Join(s.SuggestedActions, "; ")))
	}

	return strings.Join(parts, "\n")
}
