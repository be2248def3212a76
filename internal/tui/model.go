package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ragchat/internal/domain"
	"ragchat/internal/session"
)

type tab int

const (
	tabChat tab = iota
	tabUpload
	tabStats
)

// Messages delivered when a Gateway call resolves. Each call runs as a
// tea.Cmd, so its continuation resumes on the program's single update loop.
type (
	queryResultMsg  struct{ res *domain.QueryResult; err error }
	uploadResultMsg struct{ res *domain.UploadResult; err error }
	statsMsg        struct{ res *domain.CollectionStats; err error }
	clearResultMsg  struct{ res *domain.ClearResult; err error }
	healthMsg       struct{ res *domain.Health; err error }
)

// Model is the Bubble Tea model for the client. All Gateway calls are issued
// as commands and resolve as messages; the session state machines observe
// them as pending flags, never as blocking.
type Model struct {
	gw   domain.Gateway
	log  *zap.Logger
	topK int

	conv      *session.Conversation
	inspector *session.Inspector
	upload    *session.Upload
	stats     *session.Stats

	tab      tab
	input    textinput.Model
	viewport viewport.Model
	picker   filepicker.Model

	selected     int // index of the exchange whose sources are inspected, -1 for none
	statsLoading bool
	clearing     bool
	confirmClear bool
	statsNotice  string
	health       string

	ready  bool
	width  int
	height int
}

// New creates the TUI model. The session components are shared by pointer so
// Bubble Tea's value copies all observe the same state.
func New(gw domain.Gateway, conv *session.Conversation, insp *session.Inspector, up *session.Upload, st *session.Stats, topK int, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question..."
	ti.Focus()
	ti.CharLimit = 0

	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf", ".txt"}
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	return Model{
		gw:           gw,
		log:          log,
		topK:         topK,
		conv:         conv,
		inspector:    insp,
		upload:       up,
		stats:        st,
		input:        ti,
		viewport:     viewport.New(0, 0),
		picker:       fp,
		selected:     -1,
		statsLoading: true,
		health:       "checking...",
	}
}

// Init kicks off the cursor blink, the file picker directory read, the
// initial stats fetch, and the startup health probe.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.picker.Init(), m.fetchStats(), m.checkHealth())
}

// Update handles key, window, and Gateway-result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyTab {
			return m.nextTab(), nil
		}
		switch m.tab {
		case tabChat:
			return m.updateChatKey(msg)
		case tabUpload:
			return m.updateUploadKey(msg)
		case tabStats:
			return m.updateStatsKey(msg)
		}

	case queryResultMsg:
		if msg.err != nil {
			m.conv.ResolveFailure(msg.err)
		} else {
			m.conv.ResolveAnswer(msg.res.Answer, msg.res.Sources)
		}
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil

	case uploadResultMsg:
		return m.applyUploadResult(msg)

	case statsMsg:
		m.statsLoading = false
		if msg.err != nil {
			m.log.Warn("stats fetch failed", zap.Error(msg.err))
			m.statsNotice = "Could not load stats."
			return m, nil
		}
		m.stats.Set(*msg.res)
		return m, nil

	case clearResultMsg:
		m.clearing = false
		if msg.err != nil {
			m.log.Warn("clear collection failed", zap.Error(msg.err))
			m.statsNotice = "Error clearing collection. Please try again."
		} else {
			m.statsNotice = msg.res.Message
		}
		// the zero state must come from a confirmed re-fetch
		m.statsLoading = true
		return m, m.fetchStats()

	case healthMsg:
		if msg.err != nil {
			m.health = "backend unreachable"
		} else {
			m.health = msg.res.Status
		}
		return m, nil
	}

	// non-key messages (blink ticks, directory reads) go to both components
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) updateChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := m.input.Value()
		ex, err := m.conv.Submit(text)
		if err != nil {
			// busy or blank submissions are ignored at the boundary
			return m, nil
		}
		m.input.Reset()
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, m.runQuery(ex.Text)
	case "up":
		m.moveSelection(-1)
		return m, nil
	case "down":
		m.moveSelection(1)
		return m, nil
	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "u":
		f, err := m.upload.Begin()
		if err != nil {
			// no file staged or a transfer in flight; the key is advisory
			return m, nil
		}
		return m, m.runUpload(f)
	case "x":
		_ = m.upload.ClearFile()
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		f := session.StagedFile{Path: path, Name: baseName(path)}
		if info, err := os.Stat(path); err == nil {
			f.Size = info.Size()
		}
		m.upload.SelectFile(f)
	}
	return m, cmd
}

func (m Model) updateStatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmClear {
		switch msg.String() {
		case "y":
			m.confirmClear = false
			m.clearing = true
			return m, m.runClear()
		case "n", "esc":
			m.confirmClear = false
		}
		return m, nil
	}
	switch msg.String() {
	case "r":
		m.statsLoading = true
		return m, m.fetchStats()
	case "c":
		if !m.stats.CanClear() || m.clearing {
			return m, nil
		}
		m.confirmClear = true
		return m, nil
	}
	return m, nil
}

func (m Model) applyUploadResult(msg uploadResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.upload.Fail(failureMessage(msg.err))
		return m, nil
	}
	if !msg.res.Success {
		m.upload.Fail(msg.res.Message)
		return m, nil
	}
	// Succeed publishes the upload-completed signal; the stats cache goes
	// stale through its subscription, and we re-fetch right away.
	m.upload.Succeed(msg.res)
	m.statsLoading = true
	return m, m.fetchStats()
}

// moveSelection walks the inspection cursor to the nearest assistant
// exchange that carries sources, in the given direction. Exchanges without
// sources are never selectable.
func (m *Model) moveSelection(dir int) {
	exchanges := m.conv.Exchanges()
	i := m.selected
	for {
		i += dir
		if i < 0 || i >= len(exchanges) {
			return
		}
		ex := exchanges[i]
		if ex.Role == domain.RoleAssistant && len(ex.Sources) > 0 {
			m.selected = i
			m.inspector.Select(ex)
			return
		}
	}
}

func (m Model) nextTab() Model {
	m.tab = (m.tab + 1) % 3
	if m.tab == tabChat {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.ready = true
	m.width = msg.Width
	m.height = msg.Height
	_, rh := chatBoxStyle.GetFrameSize()
	_, qh := inputBoxStyle.GetFrameSize()
	reserved := 2 + 1 + qh + 1 // header + tabs, status, input frame, spacer
	vh := msg.Height - reserved - rh
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = maxInt(20, msg.Width-sourcePanelWidth(msg.Width)-4)
	m.viewport.Height = vh
	m.picker.Height = maxInt(5, msg.Height-10)
	m.viewport.SetContent(m.renderConversation())
	return m
}

func (m Model) runQuery(question string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.gw.Query(question, m.topK)
		return queryResultMsg{res, err}
	}
}

func (m Model) runUpload(f session.StagedFile) tea.Cmd {
	return func() tea.Msg {
		fh, err := os.Open(f.Path)
		if err != nil {
			return uploadResultMsg{err: err}
		}
		defer fh.Close()
		res, err := m.gw.Upload(f.Name, fh)
		return uploadResultMsg{res, err}
	}
}

func (m Model) fetchStats() tea.Cmd {
	return func() tea.Msg {
		res, err := m.gw.Stats()
		return statsMsg{res, err}
	}
}

func (m Model) runClear() tea.Cmd {
	return func() tea.Msg {
		res, err := m.gw.ClearCollection()
		return clearResultMsg{res, err}
	}
}

func (m Model) checkHealth() tea.Cmd {
	return func() tea.Msg {
		res, err := m.gw.Health()
		return healthMsg{res, err}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
