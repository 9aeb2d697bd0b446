package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/parley-dev/parley/internal/protocol"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

type chatLine struct {
	speaker string
	text    string
}

// Internal messages
type responseMsg protocol.Outbound
type errorMsg struct{ err error }

type tuiModel struct {
	client   *client
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	lines    []chatLine
	waiting  bool
	awaiting bool
	lastErr  error
	width    int
	height   int
}

func newTUIModel(c *client) tuiModel {
	ti := textinput.New()
	ti.Placeholder = "Say something..."
	ti.Focus()

	vp := viewport.New(80, 20)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return tuiModel{
		client:   c,
		input:    ti,
		viewport: vp,
		spinner:  sp,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func waitForResponse(c *client) tea.Cmd {
	return func() tea.Msg {
		out, err := c.read()
		if err != nil {
			return errorMsg{err: err}
		}
		return responseMsg(out)
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.refreshViewport()

	case responseMsg:
		m.waiting = false
		m.awaiting = msg.AwaitingConfirmation
		m.lastErr = nil
		m.lines = append(m.lines, chatLine{speaker: "parley", text: msg.Text})
		m.refreshViewport()

	case errorMsg:
		m.waiting = false
		m.lastErr = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m tuiModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}
	m.input.Reset()
	m.lines = append(m.lines, chatLine{speaker: "you", text: text})
	m.waiting = true
	m.lastErr = nil
	m.refreshViewport()

	c := m.client
	send := func() tea.Msg {
		if err := c.send(text); err != nil {
			return errorMsg{err: err}
		}
		return waitForResponse(c)()
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

func (m *tuiModel) refreshViewport() {
	var b strings.Builder
	for _, line := range m.lines {
		if line.speaker == "you" {
			b.WriteString(userStyle.Render("you: ") + line.text + "\n\n")
			continue
		}
		b.WriteString(titleStyle.Render("parley: ") + renderMarkdown(line.text, m.viewport.Width) + "\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("parley (session %s)", m.client.sessionID)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.lastErr != nil:
		b.WriteString(errStyle.Render("error: "+m.lastErr.Error()) + "\n")
	case m.awaiting:
		b.WriteString(bannerStyle.Render("awaiting your confirmation, reply yes or no") + "\n")
	case m.waiting:
		b.WriteString(m.spinner.View() + " thinking...\n")
	}

	b.WriteString(m.input.View())
	return b.String()
}
