// Package tui is the terminal front end of a docchat session. It renders the
// registry, transcript and flags, and turns key presses into session calls.
package tui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docchat-core/client/internal/docchat/model"
	"github.com/docchat-core/client/internal/docchat/session"
)

// InputMode says what the text input is currently collecting.
type InputMode int

const (
	InputModeChat InputMode = iota
	InputModeUploadPath
	InputModeConfirm
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

const helpText = "enter send · ctrl+s summarize · ctrl+u upload · ctrl+d delete · tab document · ctrl+l language · ctrl+r refresh · esc quit"

// opDoneMsg reports that a dispatched session operation returned.
type opDoneMsg struct{}

type Model struct {
	ctx    context.Context
	sess   *session.Session
	bridge *Bridge

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	mode    InputMode
	confirm *confirmRequest
	notice  *model.Notice

	width  int
	height int
}

func New(ctx context.Context, sess *session.Session, bridge *Bridge) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask something about the PDF..."
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		sess:     sess,
		bridge:   bridge,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.bridge.waitForConfirm(),
		m.bridge.waitForNotice(),
	)
}

// run dispatches fn off the event loop. The session owns all state changes;
// the returned message only triggers a redraw.
func (m Model) run(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return opDoneMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, 0), max(msg.Height, 0)
		m.viewport.Width = m.width
		m.viewport.Height = max(m.height-8, 3)
		m.input.Width = max(m.width-4, 10)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case confirmMsg:
		req := confirmRequest(msg)
		m.confirm = &req
		m.mode = InputModeConfirm
		cmds = append(cmds, m.bridge.waitForConfirm())

	case noticeMsg:
		n := model.Notice(msg)
		m.notice = &n
		cmds = append(cmds, m.bridge.waitForNotice())

	case opDoneMsg:

	case tea.KeyMsg:
		next, cmd := m.handleKey(msg)
		m = next
		cmds = append(cmds, cmd)
	}

	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.answerConfirm(false)
		return m, tea.Quit
	}

	switch m.mode {
	case InputModeConfirm:
		switch strings.ToLower(msg.String()) {
		case "y":
			m.answerConfirm(true)
		case "n", "esc":
			m.answerConfirm(false)
		}
		return m, nil

	case InputModeUploadPath:
		switch msg.Type {
		case tea.KeyEsc:
			m.leaveUploadPath()
			return m, nil
		case tea.KeyEnter:
			path := strings.TrimSpace(m.input.Value())
			m.leaveUploadPath()
			if path == "" {
				return m, nil
			}
			return m, m.run(func(ctx context.Context) { _ = m.sess.Upload(ctx, path) })
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	controls := m.sess.Controls()
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if !controls.Send {
			return m, nil
		}
		question := m.input.Value()
		m.input.Reset()
		m.sess.SetInput("")
		return m, m.run(func(ctx context.Context) { m.sess.Ask(ctx, question) })
	case tea.KeyCtrlS:
		if !controls.Summarize {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) { _ = m.sess.Summarize(ctx) })
	case tea.KeyCtrlD:
		if !controls.Delete {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) { _ = m.sess.DeleteSelected(ctx) })
	case tea.KeyCtrlU:
		if !controls.Upload {
			return m, nil
		}
		m.mode = InputModeUploadPath
		m.input.Reset()
		m.input.Placeholder = "Path to a .pdf file (enter to upload, esc to cancel)"
		return m, nil
	case tea.KeyCtrlR:
		return m, m.run(func(ctx context.Context) { _ = m.sess.Refresh(ctx) })
	case tea.KeyTab, tea.KeyShiftTab:
		if controls.Select {
			m.cycleDocument(msg.Type == tea.KeyTab)
		}
		return m, nil
	case tea.KeyCtrlL:
		if controls.Language {
			m.cycleLanguage()
		}
		return m, nil
	}

	if !controls.Input {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.sess.SetInput(m.input.Value())
	return m, cmd
}

func (m *Model) answerConfirm(ok bool) {
	if m.confirm != nil {
		m.confirm.reply <- ok
		m.confirm = nil
	}
	if m.mode == InputModeConfirm {
		m.mode = InputModeChat
	}
}

func (m *Model) leaveUploadPath() {
	m.mode = InputModeChat
	m.input.Reset()
	m.input.Placeholder = "Ask something about the PDF..."
	m.sess.SetInput("")
}

func (m *Model) cycleDocument(forward bool) {
	docs := m.sess.Documents()
	if len(docs) == 0 {
		return
	}
	cur, _ := m.sess.Selected()
	i := slices.IndexFunc(docs, func(d model.Document) bool { return d.ID == cur })
	step := 1
	if !forward {
		step = -1
	}
	next := (i + step + len(docs)) % len(docs)
	m.sess.Select(docs[next].ID)
}

func (m *Model) cycleLanguage() {
	cur := m.sess.Language()
	i := slices.Index(model.Languages, cur)
	next := model.Languages[(i+1)%len(model.Languages)]
	_ = m.sess.SetLanguage(next.String())
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("docchat"))
	b.WriteString(mutedStyle.Render("  language: " + m.sess.Language().String()))
	b.WriteString("\n")
	b.WriteString(m.renderDocuments())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if line := m.renderIndicator(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.notice != nil {
		style := infoStyle
		if m.notice.Level == model.NoticeError {
			style = errorStyle
		}
		b.WriteString(style.Render(m.notice.Text))
		b.WriteString("\n")
	}

	if m.mode == InputModeConfirm && m.confirm != nil {
		b.WriteString(errorStyle.Render(m.confirm.prompt + " [y/N]"))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(helpText))
	return b.String()
}

func (m Model) renderDocuments() string {
	docs := m.sess.Documents()
	if len(docs) == 0 {
		return mutedStyle.Render("no documents")
	}
	sel, _ := m.sess.Selected()
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.ID == sel {
			parts = append(parts, selectedStyle.Render("▸ "+d.Filename))
		} else {
			parts = append(parts, mutedStyle.Render(d.Filename))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTranscript() string {
	msgs := m.sess.Messages()
	if len(msgs) == 0 {
		return mutedStyle.Render(model.EmptyTranscriptText)
	}
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Sender {
		case model.SenderUser:
			lines = append(lines, userStyle.Render("you: ")+msg.Text)
		case model.SenderBot:
			lines = append(lines, botStyle.Render("bot: ")+msg.Text)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderIndicator() string {
	flags := m.sess.Flags()
	var parts []string
	switch flags.Indicator() {
	case model.IndicatorThinking:
		parts = append(parts, m.spinner.View()+" Thinking...")
	case model.IndicatorSummarizing:
		parts = append(parts, m.spinner.View()+" Generating summary...")
	case model.IndicatorComposing:
		parts = append(parts, mutedStyle.Render("User is typing..."))
	}
	if flags.Uploading {
		parts = append(parts, m.spinner.View()+" Uploading...")
	}
	if flags.Deleting {
		parts = append(parts, m.spinner.View()+" Deleting...")
	}
	return strings.Join(parts, "  ")
}
