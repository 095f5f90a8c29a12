package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/savioxavier/termlink"
	"go.uber.org/zap"

	"github.com/integrail/ollama-client/pkg/llm"
	"github.com/integrail/ollama-client/pkg/util"
)

type (
	errMsg error
)

var headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF88")).Background(lipgloss.Color("#444444"))

// DefaultTimeout is how long a single generate call may take before it is
// aborted; local inference is slow, so the default is generous.
const DefaultTimeout = 120 * time.Second

type Config struct {
	Url     string   `json:"url" yaml:"url"`
	Model   string   `json:"model" yaml:"model"`
	Timeout string   `json:"timeout" yaml:"timeout"`
	OutDir  string   `json:"outDir" yaml:"outDir"`
	Values  []string `json:"values" yaml:"values"`
}

// ParseTimeout converts the configured duration string, falling back to
// DefaultTimeout when it is empty or invalid.
func ParseTimeout(timeout string) time.Duration {
	if dur, err := time.ParseDuration(timeout); err == nil && dur > 0 {
		return dur
	}
	return DefaultTimeout
}

type CliConsole struct {
	viewport             viewport.Model
	messages             []string
	textarea             textarea.Model
	senderStyle          lipgloss.Style
	responseStyle        lipgloss.Style
	errorStyle           lipgloss.Style
	err                  error
	ollama               llm.Client
	ctx                  context.Context
	values               map[string]string
	outDir               string
	loader               spinner.Model
	inProgress           atomic.Bool
	promptHistory        []string
	promptHistoryPointer int
	lastDuration         time.Duration
	responseCount        int
	cfg                  Config
}

func BubbleConsole(ctx context.Context, log *zap.Logger, cfg Config) (tea.Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Type a prompt... (or press Ctrl^C to exit, use Up and Down to navigate history)"
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 4096

	ta.SetWidth(128)
	ta.SetHeight(6)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false

	vp := viewport.New(160, 30)
	vp.SetContent(fmt.Sprintf("Talking to %q at %s. Type a prompt and press Enter to send.", cfg.Model, cfg.Url))

	ta.KeyMap.InsertNewline.SetEnabled(false)

	ollama, err := llm.NewOllama(log, cfg.Url, cfg.Model, ParseTimeout(cfg.Timeout))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to init ollama client")
	}
	loader := spinner.New(
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
		spinner.WithSpinner(spinner.Dot),
	)
	c := &CliConsole{
		ctx:           ctx,
		ollama:        ollama,
		textarea:      ta,
		messages:      []string{},
		viewport:      vp,
		senderStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		responseStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		errorStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3333")),
		loader:        loader,
		values:        util.SliceToMap(cfg.Values),
		err:           nil,
		cfg:           cfg,
	}

	c.outDir = cfg.OutDir
	if c.outDir == "" {
		if outDir, err := os.MkdirTemp(os.TempDir(), "ollama-response"); err == nil {
			c.outDir = outDir
		} else {
			return nil, errors.Wrapf(err, "failed to init temp dir")
		}
	}

	return c, nil
}

func (m *CliConsole) Init() tea.Cmd {
	return textarea.Blink
}

func (m *CliConsole) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	if m.ctx.Err() != nil {
		return m, tea.Quit
	}
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			fmt.Println(m.textarea.Value())
			return m, tea.Quit
		case tea.KeyUp:
			m.historyBack()
		case tea.KeyDown:
			m.historyForward()
		case tea.KeyEnter:
			m.inProgress.Store(true)
			currentValue := m.textarea.Value()
			m.loader.Tick()
			go func() {
				defer m.inProgress.Store(false)
				started := time.Now()
				res, err := m.ollama.Generate(m.ctx, util.ReplacePlaceholders(currentValue, m.values))
				m.lastDuration = time.Since(started)
				m.processResponse(res, err)
			}()
			m.displaySpinner()
			m.promptHistory = append(m.promptHistory, currentValue)
			m.promptHistoryPointer = 0
			m.messages = append(m.messages, m.senderStyle.Render("You: ")+currentValue)
			m.updateMessages()
		}

	// We handle errors just like any other message
	case errMsg:
		m.err = msg
		return m, nil
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *CliConsole) historyBack() {
	if m.promptHistoryPointer < len(m.promptHistory) {
		m.promptHistoryPointer++
		m.textarea.SetValue(m.promptHistory[len(m.promptHistory)-m.promptHistoryPointer])
	}
}

func (m *CliConsole) historyForward() {
	if m.promptHistoryPointer > 0 {
		m.promptHistoryPointer--
		m.textarea.SetValue(m.promptHistory[len(m.promptHistory)-m.promptHistoryPointer-1])
	} else {
		m.textarea.SetValue("")
	}
}

func (m *CliConsole) displaySpinner() {
	go func() {
		for m.inProgress.Load() {
			time.Sleep(50 * time.Millisecond)
			m.Update(m.loader.Tick())
		}
	}()
}

func (m *CliConsole) updateMessages() {
	if len(m.messages) > 10 {
		m.messages = m.messages[1:]
	}
	m.viewport.SetContent(strings.Join(m.messages, "\n"))
	m.textarea.Reset()
	m.viewport.GotoBottom()
}

func (m *CliConsole) processResponse(res string, err error) {
	defer m.updateMessages()
	if err != nil {
		m.err = err
		m.messages = append(m.messages, m.errorStyle.Render("ERROR: "+err.Error()))
		return
	}
	m.responseCount++
	m.messages = append(m.messages, m.responseStyle.Render("Model: ")+res)
	m.saveResponse(res)
}

func (m *CliConsole) saveResponse(res string) {
	name := fmt.Sprintf("response-%04d.txt", m.responseCount)
	fileName := filepath.Join(m.outDir, name)
	var message string
	if err := os.WriteFile(fileName, []byte(res), 0o644); err != nil {
		message = fmt.Sprintf("failed to save response %q to %s: %q", name, fileName, err.Error())
	} else {
		message = fmt.Sprintf("response %q saved to ", name) +
			termlink.ColorLink(name, fmt.Sprintf("file://%s", fileName), "italic green")
	}
	m.messages = append(m.messages, m.responseStyle.Render("Model: ")+message)
}

func (m *CliConsole) View() string {
	dialogView := m.textarea.View()
	if m.inProgress.Load() {
		dialogView = m.loader.View()
	}
	header := headerStyle.Render(fmt.Sprintf("Model: %s @ %s", m.cfg.Model, m.cfg.Url))
	if m.lastDuration > 0 {
		header += headerStyle.Render(fmt.Sprintf("; last response took %.1fs", m.lastDuration.Seconds()))
	}
	return header + fmt.Sprintf(
		"\n\n%s\n\n%s",
		m.viewport.View(),
		dialogView,
	) + "\n\n"
}
