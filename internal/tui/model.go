// Package tui provides the Bubble Tea verification interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/humangate/internal/evaluate"
	"github.com/verte-zerg/humangate/internal/feedback"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/progression"
	"github.com/verte-zerg/humangate/internal/session"
)

const (
	frameInterval = time.Second / 60
	maxFrameDelta = 0.1
	pulseDuration = 0.3

	// Screen bodies start below the three header lines, indented two cells.
	bodyTop  = 3
	bodyLeft = 2
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#36CFC9"))
	wallStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	hazardStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FADB14"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	arenaStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#4A4A4A"))
	selectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#141414")).Background(lipgloss.Color("#C89A3A"))
	cardStyle    = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4A4A4A"))
	cardHotStyle = cardStyle.BorderForeground(lipgloss.Color("#C89A3A"))
)

type frameMsg struct {
	epoch int
	at    time.Time
}

type retryMsg struct {
	epoch int
}

// screen is one challenge's interaction surface.
type screen interface {
	// start prepares a fresh attempt when the challenge becomes active.
	start()
	// animated reports whether the screen needs frame messages right now.
	// It is checked after every frame; false ends the loop until the next
	// begin.
	animated() bool
	// key handles a key press; it returns a verdict once the attempt ends.
	key(msg tea.KeyMsg) (evaluate.Verdict, bool)
	// frame advances time-based state by dt seconds.
	frame(dt float64) (evaluate.Verdict, bool)
	view() string
	// summary describes the last verdict.
	summary() string
	bindings() []key.Binding
}

// pointer is implemented by screens that accept mouse input. Coordinates are
// relative to the screen body.
type pointer interface {
	mouse(msg tea.MouseMsg, x, y int)
}

// Model is the root Bubble Tea model. It implements progression.Navigator.
type Model struct {
	ctx    context.Context
	cfg    model.Config
	sess   *session.Session
	ctrl   *progression.Controller
	gen    *generator.Generator
	bus    *feedback.Bus
	logger *zap.Logger

	keys keyMap
	help help.Model

	width  int
	height int

	screen    screen
	epoch     int
	lastFrame time.Time
	clock     float64

	pulse      feedback.Event
	pulseUntil float64
	hasPulse   bool

	errMsg  string
	results table.Model
}

var _ progression.Navigator = (*Model)(nil)

// NewModel builds the verification UI on top of an existing session.
// runs may be nil to skip run history.
func NewModel(ctx context.Context, cfg model.Config, sess *session.Session, gen *generator.Generator, runs progression.RunRecorder, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		ctx:    ctx,
		cfg:    cfg,
		sess:   sess,
		gen:    gen,
		bus:    feedback.NewBus(),
		logger: logger,
		keys:   defaultKeys(),
		help:   help.New(),
	}
	m.bus.Subscribe(m.onFeedback)
	opts := []progression.Option{
		progression.WithNavigator(m),
		progression.WithLogger(logger),
	}
	if runs != nil {
		opts = append(opts, progression.WithRunRecorder(runs))
	}
	m.ctrl = progression.New(sess, opts...)
	if def, ok := m.ctrl.Current(); ok {
		m.Goto(def.ID)
	} else {
		m.Complete()
	}
	return m
}

// Bus exposes the feedback events for optional listeners.
func (m *Model) Bus() *feedback.Bus {
	return m.bus
}

// Goto implements progression.Navigator.
func (m *Model) Goto(id model.ChallengeID) {
	m.screen = m.newScreen(id)
	m.errMsg = ""
	m.hasPulse = false
	m.bumpEpoch()
}

// Complete implements progression.Navigator.
func (m *Model) Complete() {
	m.screen = nil
	m.results = buildResultsTable(m.ctrl.Definitions(), m.sess.State())
	m.bumpEpoch()
}

func (m *Model) newScreen(id model.ChallengeID) screen {
	switch id {
	case model.Golf:
		return newGolfScreen(m.cfg.Golf, m.gen, m.bus, m.keys, m.recordAttempt)
	case model.Stop:
		return newStopScreen(m.cfg.Stop, m.keys)
	case model.Rhythm:
		return newRhythmScreen(m.cfg.Rhythm, m.gen, m.bus, m.keys)
	case model.Counter:
		return newCounterScreen(m.cfg.Counter, m.gen, m.keys)
	case model.Identify:
		res, _ := m.sess.Result(model.Identify)
		return newIdentifyScreen(m.cfg.Identify, res.Attempts, m.keys)
	case model.Emotion:
		return newEmotionScreen(m.cfg.Emotion, m.keys)
	default:
		m.logger.Error("unknown challenge", zap.String("challenge", string(id)))
		return nil
	}
}

func (m *Model) recordAttempt() {
	if err := m.ctrl.RecordAttempt(m.ctx); err != nil {
		m.logger.Error("failed to record attempt", zap.Error(err))
		m.errMsg = "Progress could not be saved."
	}
}

func (m *Model) bumpEpoch() {
	m.epoch++
}

func (m *Model) nextFrame() tea.Cmd {
	epoch := m.epoch
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg{epoch: epoch, at: t}
	})
}

func (m *Model) onFeedback(e feedback.Event) {
	if e.Kind == feedback.Bounce {
		return
	}
	m.pulse = e
	m.pulseUntil = m.clock + pulseDuration
	m.hasPulse = true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case frameMsg:
		return m, m.handleFrame(msg)
	case retryMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		if m.ctrl.Retry() {
			m.bumpEpoch()
		}
		return m, nil
	case tea.MouseMsg:
		if m.ctrl.Phase() != progression.Active || m.screen == nil {
			return m, nil
		}
		if p, ok := m.screen.(pointer); ok {
			p.mouse(msg, msg.X-bodyLeft, msg.Y-bodyTop)
		}
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleFrame(msg frameMsg) tea.Cmd {
	if msg.epoch != m.epoch {
		return nil
	}
	dt := 0.0
	if !m.lastFrame.IsZero() {
		dt = msg.at.Sub(m.lastFrame).Seconds()
	}
	if dt < 0 {
		dt = 0
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	m.lastFrame = msg.at
	m.clock += dt
	if m.hasPulse && m.clock >= m.pulseUntil {
		m.hasPulse = false
	}
	if m.ctrl.Phase() != progression.Active || m.screen == nil {
		return nil
	}
	if v, done := m.screen.frame(dt); done {
		return m.finish(v)
	}
	if !m.screen.animated() {
		return nil
	}
	return m.nextFrame()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if key.Matches(msg, m.keys.Restart) {
		m.restart()
		return nil
	}
	switch m.ctrl.Phase() {
	case progression.Instructions:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		case key.Matches(msg, m.keys.Begin):
			return m.begin()
		}
	case progression.Active:
		if m.screen == nil {
			return nil
		}
		if v, done := m.screen.key(msg); done {
			return m.finish(v)
		}
	case progression.Passed:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		case key.Matches(msg, m.keys.Continue):
			m.ctrl.Advance()
		}
	case progression.Failed:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		case key.Matches(msg, m.keys.Retry):
			if m.ctrl.Retry() {
				m.bumpEpoch()
			}
		}
	case progression.Complete:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		case msg.String() == "r":
			m.restart()
		default:
			var cmd tea.Cmd
			m.results, cmd = m.results.Update(msg)
			return cmd
		}
	}
	return nil
}

func (m *Model) begin() tea.Cmd {
	if m.screen == nil || !m.ctrl.Begin() {
		return nil
	}
	m.screen.start()
	m.errMsg = ""
	m.bumpEpoch()
	m.lastFrame = time.Time{}
	if m.screen.animated() {
		return m.nextFrame()
	}
	return nil
}

func (m *Model) finish(v evaluate.Verdict) tea.Cmd {
	m.bumpEpoch()
	if err := m.ctrl.Finish(m.ctx, v); err != nil {
		m.logger.Error("failed to record verdict", zap.Error(err))
		m.errMsg = "Progress could not be saved."
		return nil
	}
	if m.ctrl.Phase() != progression.Failed {
		return nil
	}
	def, ok := m.ctrl.Current()
	if !ok || def.AutoRetry <= 0 {
		return nil
	}
	epoch := m.epoch
	return tea.Tick(def.AutoRetry, func(time.Time) tea.Msg {
		return retryMsg{epoch: epoch}
	})
}

func (m *Model) restart() {
	if err := m.ctrl.Restart(m.ctx); err != nil {
		m.logger.Error("failed to restart session", zap.Error(err))
		m.errMsg = "Session could not be reset."
		return
	}
	m.logger.Info("session restarted", zap.String("session", m.sess.State().SessionID))
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.ctrl.Phase() == progression.Complete {
		body = m.renderComplete()
	} else {
		body = m.renderChallenge()
	}
	lines := []string{
		m.renderHeader(),
		m.renderProgress(),
		"",
		indent(body, bodyLeft),
	}
	if m.errMsg != "" {
		lines = append(lines, "", failStyle.Render(m.errMsg))
	}
	lines = append(lines, "", footerStyle.Render(m.help.ShortHelpView(m.bindings())))
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader() string {
	if m.ctrl.Phase() == progression.Complete {
		return titleStyle.Render("HUMAN VERIFICATION")
	}
	def, ok := m.ctrl.Current()
	if !ok {
		return titleStyle.Render("HUMAN VERIFICATION")
	}
	return titleStyle.Render(def.Title)
}

func (m *Model) renderProgress() string {
	total := len(m.ctrl.Definitions())
	step := total
	if def, ok := m.ctrl.Current(); ok {
		step = def.Position + 1
	}
	segments := []string{fmt.Sprintf("Challenge %d/%d", step, total)}
	segments = append(segments, fmt.Sprintf("Elapsed %s", formatElapsed(m.sess.Elapsed())))
	if m.hasPulse {
		style := passStyle
		if m.pulse.Kind != feedback.Hit {
			style = failStyle
		}
		segments = append(segments, style.Render(strings.ToUpper(m.pulse.Kind.String())))
	}
	return mutedStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderChallenge() string {
	def, ok := m.ctrl.Current()
	if !ok || m.screen == nil {
		return ""
	}
	width := m.width - 2*bodyLeft
	if width <= 0 || width > 72 {
		width = 72
	}
	switch m.ctrl.Phase() {
	case progression.Instructions:
		return wrapText(def.Description, textStyle, width) + "\n\n" + mutedStyle.Render("Press enter to begin.")
	case progression.Passed:
		return passStyle.Render("VERIFICATION PASSED") + "\n" + m.screen.summary()
	case progression.Failed:
		out := failStyle.Render("VERIFICATION FAILED") + "\n" + m.screen.summary()
		if def.AutoRetry > 0 {
			return out + "\n" + mutedStyle.Render("Resetting...")
		}
		return out
	default:
		return m.screen.view()
	}
}

func (m *Model) renderComplete() string {
	st := m.sess.State()
	total := len(m.ctrl.Definitions())
	passed := 0
	for _, def := range m.ctrl.Definitions() {
		if res, ok := st.Results[def.ID]; ok && res.Passed {
			passed++
		}
	}
	lines := []string{
		passStyle.Render("VERIFICATION COMPLETE"),
		textStyle.Render("You have been provisionally classified as human."),
		"",
		fmt.Sprintf("Challenges passed  %d/%d", passed, total),
		fmt.Sprintf("Time elapsed       %s", formatElapsed(m.sess.Elapsed())),
		fmt.Sprintf("Session token      %s", accentStyle.Render(m.sess.Token())),
		"",
		m.results.View(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) bindings() []key.Binding {
	switch m.ctrl.Phase() {
	case progression.Instructions:
		return []key.Binding{m.keys.Begin, m.keys.Restart, m.keys.Quit}
	case progression.Active:
		if m.screen == nil {
			return nil
		}
		return m.screen.bindings()
	case progression.Passed:
		return []key.Binding{m.keys.Continue, m.keys.Quit}
	case progression.Failed:
		return []key.Binding{m.keys.Retry, m.keys.Quit}
	default:
		return []key.Binding{
			withHelp(m.keys.Up, "↑/↓", "scroll"),
			key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
			m.keys.Quit,
		}
	}
}

func buildResultsTable(defs []model.ChallengeDefinition, st model.SessionState) table.Model {
	columns := []table.Column{
		{Title: "Challenge", Width: 12},
		{Title: "Status", Width: 8},
		{Title: "Attempts", Width: 8},
		{Title: "Score", Width: 7},
	}
	rows := make([]table.Row, 0, len(defs))
	for _, def := range defs {
		status, attempts, score := "pending", "-", "-"
		if res, ok := st.Results[def.ID]; ok {
			status = "failed"
			if res.Passed {
				status = "passed"
			}
			attempts = fmt.Sprintf("%d", res.Attempts)
			if res.Score != nil {
				score = fmt.Sprintf("%.1f", *res.Score)
			}
		}
		rows = append(rows, table.Row{string(def.ID), status, attempts, score})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("#8C8C8C")).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#3A3A3A"))
	t.SetStyles(styles)
	return t
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func indent(text string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}
