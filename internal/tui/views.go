package tui

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/api"
	"ragchat/internal/domain"
	"ragchat/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTab   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

// View renders the active tab.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("RAG Chatbot") + "  " + dimStyle.Render("backend: "+m.health)
	tabs := m.renderTabs()
	var body string
	switch m.tab {
	case tabChat:
		body = m.chatView()
	case tabUpload:
		body = m.uploadView()
	case tabStats:
		body = m.statsView()
	}
	return header + "\n" + tabs + "\n" + body
}

func (m Model) renderTabs() string {
	names := []string{"Chat", "Upload", "Stats"}
	parts := make([]string, len(names))
	for i, n := range names {
		if tab(i) == m.tab {
			parts[i] = activeTab.Render(n)
		} else {
			parts[i] = inactiveTab.Render(n)
		}
	}
	return strings.Join(parts, "  ") + dimStyle.Render("   (tab to switch, ctrl+c to quit)")
}

func (m Model) chatView() string {
	chat := chatBoxStyle.Render(m.viewport.View())
	panel := m.sourcePanel()
	row := lipgloss.JoinHorizontal(lipgloss.Top, chat, panel)
	input := inputBoxStyle.Width(m.viewport.Width).Render(m.input.View())
	status := ""
	if m.conv.Pending() {
		status = statusStyle.Render("Thinking...")
	}
	return row + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	exchanges := m.conv.Exchanges()
	if len(exchanges) == 0 {
		return "Welcome to RAG Chatbot!\nUpload documents and start asking questions."
	}
	var b strings.Builder
	for i, ex := range exchanges {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderExchange(i, ex))
	}
	return b.String()
}

func (m Model) renderExchange(idx int, ex domain.Exchange) string {
	who := userStyle.Render("You")
	if ex.Role == domain.RoleAssistant {
		who = botStyle.Render("Assistant")
	}
	head := who + " " + dimStyle.Render(ex.CreatedAt.Format("15:04:05"))
	body := ex.Text
	if len(ex.Sources) > 0 {
		note := fmt.Sprintf("%d source%s (↑/↓ to inspect)", len(ex.Sources), plural(len(ex.Sources)))
		if idx == m.selected {
			note = "● " + note
		}
		body += "\n" + dimStyle.Render(note)
	}
	return head + "\n" + body
}

func (m Model) sourcePanel() string {
	w := sourcePanelWidth(m.width)
	sources := m.inspector.Sources()
	var content string
	if len(sources) == 0 {
		content = dimStyle.Render("Sources will appear here\nwhen you ask a question.")
	} else {
		cards := make([]string, len(sources))
		for i, s := range sources {
			cards[i] = renderSourceCard(s, w-4)
		}
		content = strings.Join(cards, "\n")
	}
	return panelStyle.Width(w).Height(m.viewport.Height).Render(titleStyle.Render("Sources") + "\n" + content)
}

// renderSourceCard formats one attributed passage: "name, page N, NN%" over
// a content excerpt. Order and scores come straight from the backend.
func renderSourceCard(s domain.SourceRef, width int) string {
	name := s.Metadata.SourceName()
	if name == "" {
		name = "Document"
	}
	parts := []string{name}
	if page, ok := s.Metadata.Page(); ok {
		parts = append(parts, fmt.Sprintf("page %d", page))
	}
	parts = append(parts, fmt.Sprintf("%d%%", int(math.Round(s.RelevanceScore*100))))
	head := strings.Join(parts, ", ")
	excerpt := s.Content
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "…"
	}
	return cardStyle.Width(maxInt(20, width)).Render(titleStyle.Render(head) + "\n" + excerpt)
}

func (m Model) uploadView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Upload Documents") + "\n")
	b.WriteString(dimStyle.Render("PDF or TXT files only") + "\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	if f := m.upload.File(); f != nil {
		b.WriteString(fmt.Sprintf("Selected: %s (%.2f KB)  ", f.Name, float64(f.Size)/1024))
		b.WriteString(dimStyle.Render("u: upload  x: remove"))
		b.WriteString("\n")
	}
	switch m.upload.Status() {
	case session.Uploading:
		b.WriteString(statusStyle.Render("Uploading..."))
	case session.UploadSucceeded:
		b.WriteString(statusStyle.Render(m.upload.Message()))
	case session.UploadFailed:
		b.WriteString(errorStyle.Render(m.upload.Message()))
	}
	return b.String()
}

func (m Model) statsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Collection Statistics") + "  " + dimStyle.Render("r: refresh") + "\n\n")
	switch {
	case m.statsLoading:
		b.WriteString("Loading...")
	case !m.stats.Loaded():
		b.WriteString(dimStyle.Render("No stats available."))
	default:
		cur := m.stats.Current()
		b.WriteString(fmt.Sprintf("Total documents:  %d\n", cur.TotalDocuments))
		b.WriteString(fmt.Sprintf("Collection name:  %s\n", cur.CollectionName))
		if cur.EmbeddingModel != "" {
			b.WriteString(fmt.Sprintf("Embedding model:  %s\n", cur.EmbeddingModel))
		}
	}
	b.WriteString("\n")
	switch {
	case m.clearing:
		b.WriteString(statusStyle.Render("Clearing..."))
	case m.confirmClear:
		b.WriteString(errorStyle.Render("Clear all documents? This cannot be undone. (y/n)"))
	case m.stats.CanClear():
		b.WriteString(dimStyle.Render("c: clear all documents"))
	}
	if m.statsNotice != "" {
		b.WriteString("\n" + dimStyle.Render(m.statsNotice))
	}
	return b.String()
}

func sourcePanelWidth(total int) int {
	w := total / 3
	if w < 24 {
		w = 24
	}
	return w
}

func baseName(path string) string { return filepath.Base(path) }

// failureMessage maps a transport failure to the user-facing text: the
// backend's detail when it sent one, otherwise empty so the session applies
// its fallback.
func failureMessage(err error) string {
	var te *api.TransportError
	if errors.As(err, &te) {
		return te.Detail
	}
	return ""
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
