package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frikeldon/openscad/foundation/scad"
	"github.com/frikeldon/openscad/foundation/scad/ast"
	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/foundation/utils/stringx"
	"github.com/frikeldon/openscad/internal/service"
)

// View represents the tabs of the viewer
type View int

const (
	ViewSource View = iota
	ViewCSG
	ViewAST
	viewCount
)

var viewNames = []string{"Source", "CSG", "AST"}

// Interpreter is what the viewer needs from the service
type Interpreter interface {
	Interpret(ctx context.Context, name, source string) *service.Outcome
	Parse(source string) (*ast.Program, error)
}

// OutcomeMsg delivers an interpretation outcome. A watcher running next to
// the program can send it with tea.Program.Send.
type OutcomeMsg struct {
	Outcome *service.Outcome
}

type loadErrorMsg struct {
	err error
}

// Model is the viewer model
type Model struct {
	// State
	view    View
	width   int
	height  int
	ready   bool
	loading bool
	err     error

	// Components
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	path       string
	timeout    time.Duration
	interp     Interpreter
	outcome    *service.Outcome
	astDump    string
	lastUpdate time.Time
}

// NewModel creates a viewer for the file at path
func NewModel(path string, interp Interpreter, timeout time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return Model{
		view:    ViewSource,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
		path:    path,
		timeout: timeout,
		interp:  interp,
		loading: true,
	}
}

// Init loads and interprets the file
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// load reads the file and interprets it
func (m Model) load() tea.Cmd {
	path, interp, timeout := m.path, m.interp, m.timeout
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return loadErrorMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return OutcomeMsg{Outcome: interp.Interpret(ctx, path, string(data))}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			m.view = (m.view + 1) % viewCount
			m.updateContent()
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.view = (m.view + viewCount - 1) % viewCount
			m.updateContent()
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			if !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.load())
			}
			return m, nil

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, 0)
			m.viewport.YPosition = 3
			m.ready = true
		}
		m.help.Width = msg.Width
		m.resize()
		m.updateContent()

	case OutcomeMsg:
		m.loading = false
		m.err = nil
		m.outcome = msg.Outcome
		m.lastUpdate = time.Now()
		m.astDump = ""
		if program, err := m.interp.Parse(msg.Outcome.Source); err == nil {
			m.astDump = ast.Dump(program)
		}
		m.updateContent()

	case loadErrorMsg:
		m.loading = false
		m.err = msg.err
		m.updateContent()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-lipgloss.Height(m.renderHeader())-lipgloss.Height(m.renderFooter())-1)
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m *Model) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if View(i) == m.view {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, TabStyle.Render(name))
		}
	}

	title := TitleStyle.Render("openscad") + " " + SubtitleStyle.Render(filepath.Base(m.path))
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m *Model) renderFooter() string {
	var status string
	switch {
	case m.loading:
		status = m.spinner.View() + " interpreting..."
	case m.err != nil:
		status = StatusErrorStyle.Render("[-] " + m.err.Error())
	case m.outcome == nil:
		status = "no result"
	case m.outcome.Failed():
		d := m.outcome.Diagnostic
		status = StatusErrorStyle.Render(fmt.Sprintf("[-] %s: %s", d.Code, d.DisplayMessage))
		if d.HasSpan() {
			status += fmt.Sprintf(" (%d:%d)", d.StartLine, d.StartColumn)
		}
	default:
		r := m.outcome.Result
		status = StatusOKStyle.Render("[+]") + fmt.Sprintf(" %d objects, %d steps, %v", len(r.Objects), r.Steps, r.Duration.Round(time.Microsecond))
		if m.outcome.Cached {
			status += " (cached)"
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		StatusBarStyle.Width(m.width).Render(status),
		m.help.View(m.keys),
	)
}

func (m *Model) updateContent() {
	if !m.ready {
		return
	}

	var content string
	switch {
	case m.err != nil:
		content = ErrorMessageStyle.Render(m.err.Error())
	case m.outcome == nil:
		content = ""
	case m.view == ViewSource:
		content = renderSource(m.outcome.Source, m.outcome.Diagnostic)
	case m.view == ViewCSG:
		content = renderCSG(m.outcome)
	case m.view == ViewAST:
		content = m.astDump
		if content == "" {
			content = SubtitleStyle.Render("source does not parse")
		}
	}

	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// renderSource numbers the source lines and underlines the span of d
func renderSource(source string, d *scad.Diagnostic) string {
	lines := stringx.SplitLines(source)
	width := len(fmt.Sprintf("%d", len(lines)))

	var b strings.Builder
	for i, line := range lines {
		n := i + 1
		line = strings.ReplaceAll(line, "\t", " ")
		gutter := GutterStyle.Render(fmt.Sprintf("%*d │ ", width, n))

		if d == nil || !d.HasSpan() || n < d.StartLine || n > d.EndLine {
			b.WriteString(gutter + line + "\n")
			continue
		}

		b.WriteString(gutter + ErrorLineStyle.Render(line) + "\n")

		from, to := 1, utf8.RuneCountInString(line)+1
		if n == d.StartLine {
			from = d.StartColumn
		}
		if n == d.EndLine {
			to = d.EndColumn
		}
		if to <= from {
			to = from + 1
		}
		pad := GutterStyle.Render(strings.Repeat(" ", width) + " │ ")
		b.WriteString(pad + strings.Repeat(" ", from-1) + UnderlineStyle.Render(strings.Repeat("^", to-from)) + "\n")
	}

	if d != nil {
		b.WriteString("\n" + ErrorMessageStyle.Render(d.DisplayMessage) + "\n")
	}
	return b.String()
}

// renderCSG prints the tree with primitives and operations colored apart
func renderCSG(out *service.Outcome) string {
	if out.Failed() {
		return ErrorMessageStyle.Render(scad.RenderError(out.Source, out.Err))
	}
	text, err := csg.Sprint(out.Result.Objects)
	if err != nil {
		return ErrorMessageStyle.Render(err.Error())
	}
	if text == "" {
		return SubtitleStyle.Render("no objects")
	}

	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]
		if strings.HasPrefix(trimmed, csg.ObjectCube) {
			b.WriteString(indent + PrimitiveStyle.Render(trimmed) + "\n")
		} else {
			b.WriteString(indent + OperationStyle.Render(trimmed) + "\n")
		}
	}
	return b.String()
}

// Run starts the viewer. updates, when non-nil, feeds outcomes produced
// elsewhere (a file watcher) into the running program.
func Run(m Model, updates <-chan *service.Outcome) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if updates != nil {
		go func() {
			for out := range updates {
				p.Send(OutcomeMsg{Outcome: out})
			}
		}()
	}
	_, err := p.Run()
	return err
}
