// This file implements the interactive chat interface using bubbletea.
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ggokuldas06/LegalAI/cmd/legalai/ui"
	"github.com/ggokuldas06/LegalAI/internal/archive"
	"github.com/ggokuldas06/LegalAI/internal/chat"
	"github.com/ggokuldas06/LegalAI/internal/session"
)

// chatModel is the model for the interactive chat interface.
type chatModel struct {
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	conv *chat.Conversation

	// pending is the prompt in flight, shown before the transcript
	// snapshot catches up.
	pending   string
	isLoading bool
	notice    string
	width     int
	height    int
	ready     bool
}

// Messages for tea updates
type (
	sendDoneMsg struct{}
	docPickMsg  struct {
		doc *chat.DocumentRef
		err error
	}
)

const inputPlaceholder = "Ask about your documents... (Enter to send, /help for commands)"

// initChat builds the chat model over an already-wired conversation.
func initChat(conv *chat.Conversation) chatModel {
	styles := ui.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	return chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		conv:      conv,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
		}

		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		footerHeight := 2
		inputHeight := 3

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}
		m.textinput.Width = msg.Width - 4

		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(msg.Width-8),
		)
		m.viewport.SetContent(m.renderTranscript())

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case sendDoneMsg:
		// The conversation already holds the outcome, an assistant
		// entry on success or an error entry on failure.
		m.isLoading = false
		m.pending = ""
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()

	case docPickMsg:
		if msg.err != nil {
			m.notice = "Document lookup failed: " + msg.err.Error()
		} else {
			m.conv.SetDocument(msg.doc)
			m.notice = fmt.Sprintf("Working document: %s (#%d)", msg.doc.Title, msg.doc.ID)
		}
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.textinput.Reset()
	m.notice = ""
	m.pending = input
	m.isLoading = true
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.spinner.Tick,
		m.sendMessage(input),
	)
}

// sendMessage runs one exchange in the background. The conversation
// owns the transcript; the returned message only wakes the view up.
func (m chatModel) sendMessage(input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
		defer cancel()

		_, _ = m.conv.SendMessage(ctx, input, settingsMap(sess.Settings()))
		return sendDoneMsg{}
	}
}

// settingsMap projects the cached user settings into the chat payload.
func settingsMap(st *session.Settings) map[string]any {
	if st == nil {
		return map[string]any{}
	}
	out := map[string]any{
		"temperature": st.Temperature,
		"max_tokens":  st.MaxTokens,
		"top_p":       st.TopP,
		"top_k":       st.TopK,
	}
	return out
}

func (m chatModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	m.textinput.Reset()
	m.notice = ""

	switch parts[0] {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/clear":
		m.conv.ClearMessages()
		m.viewport.SetContent("")
		return m, nil

	case "/help":
		m.notice = "Commands: /mode A|B|C, /doc <id>, /nodoc, /filters key=value..., /clear, /quit"
		return m, nil

	case "/mode":
		if len(parts) < 2 {
			m.notice = "Usage: /mode A|B|C (A=Summarizer, B=Clause Classifier, C=Case-Law Research)"
			return m, nil
		}
		mode := chat.Mode(strings.ToUpper(parts[1]))
		if !mode.Valid() {
			m.notice = fmt.Sprintf("Unknown mode %q; use A, B or C", parts[1])
			return m, nil
		}
		// Switching modes starts a fresh conversation.
		m.conv.SetMode(mode)
		m.viewport.SetContent("")
		m.notice = "Mode: " + mode.Label()
		return m, nil

	case "/doc":
		if len(parts) < 2 {
			m.notice = "Usage: /doc <id>"
			return m, nil
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			m.notice = fmt.Sprintf("Invalid document id %q", parts[1])
			return m, nil
		}
		return m, m.pickDocument(id)

	case "/nodoc":
		m.conv.SetDocument(nil)
		m.notice = "Working document cleared"
		return m, nil

	case "/filters":
		if len(parts) < 2 {
			f := m.conv.Filters()
			m.notice = fmt.Sprintf("Filters: jurisdiction=%s from=%s to=%s include=%s exclude=%s",
				orDash(f.Jurisdiction), intPtrOrDash(f.YearFrom), intPtrOrDash(f.YearTo),
				orDash(strings.Join(f.Include, ",")), orDash(strings.Join(f.Exclude, ",")))
			return m, nil
		}
		patch, err := parseFilterArgs(parts[1:])
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.conv.SetFilters(patch)
		m.notice = "Filters updated"
		return m, nil

	default:
		m.notice = fmt.Sprintf("Unknown command %s; try /help", parts[0])
		return m, nil
	}
}

// pickDocument resolves the id against the backend so the header can
// show the real title.
func (m chatModel) pickDocument(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
		defer cancel()

		doc, err := docStore.Get(ctx, id)
		if err != nil {
			return docPickMsg{err: err}
		}
		return docPickMsg{doc: &chat.DocumentRef{ID: doc.ID, Title: doc.Title}}
	}
}

// parseFilterArgs turns key=value arguments into a filter patch.
// Recognized keys: jurisdiction, from, to, include, exclude.
func parseFilterArgs(args []string) (chat.FilterPatch, error) {
	var patch chat.FilterPatch
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return patch, fmt.Errorf("expected key=value, got %q", arg)
		}
		switch key {
		case "jurisdiction":
			v := value
			patch.Jurisdiction = &v
		case "from":
			year, err := strconv.Atoi(value)
			if err != nil {
				return patch, fmt.Errorf("invalid year %q", value)
			}
			patch.YearFrom = &year
		case "to":
			year, err := strconv.Atoi(value)
			if err != nil {
				return patch, fmt.Errorf("invalid year %q", value)
			}
			patch.YearTo = &year
		case "include":
			patch.Include = splitKeywords(value)
		case "exclude":
			patch.Exclude = splitKeywords(value)
		default:
			return patch, fmt.Errorf("unknown filter %q", key)
		}
	}
	return patch, nil
}

func splitKeywords(value string) []string {
	if value == "" {
		return []string{}
	}
	out := []string{}
	for _, kw := range strings.Split(value, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func (m chatModel) renderTranscript() string {
	var sb strings.Builder

	for _, msg := range m.conv.Messages() {
		switch msg.Role {
		case chat.RoleUser:
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		case chat.RoleError:
			errStyle := m.styles.Error.MarginTop(1)
			sb.WriteString(errStyle.Render("⚠ "+msg.Content) + "\n\n")

		default:
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render("⚖ LegalAI") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
			if msg.LatencyMS > 0 {
				meta := fmt.Sprintf("%d in / %d out tokens, %dms", msg.TokensIn, msg.TokensOut, msg.LatencyMS)
				sb.WriteString(m.styles.Muted.Render(meta) + "\n")
			}
		}
	}

	if m.pending != "" {
		userStyle := m.styles.Bold.
			Foreground(m.styles.Theme.Primary).
			MarginTop(1)
		sb.WriteString(userStyle.Render("You") + "\n")
		sb.WriteString(m.styles.UserInput.Render(m.pending))
		sb.WriteString("\n")
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery.
func (m chatModel) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()

	chatView := m.styles.Content.Render(m.viewport.View())
	if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Thinking..."
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		m.renderFooter(),
	)
}

func (m chatModel) renderHeader() string {
	title := m.styles.Header.Render(" ⚖ LegalAI ")
	mode := m.styles.Badge.Render(m.conv.Mode().Label())

	var docLabel string
	if doc := m.conv.Document(); doc != nil {
		docLabel = m.styles.Muted.Render(fmt.Sprintf(" 📄 %s (#%d)", doc.Title, doc.ID))
	} else if m.conv.Mode().RequiresDocument() {
		docLabel = m.styles.Warning.Render(" No document selected; use /doc <id>")
	}

	var status string
	if m.isLoading {
		status = m.styles.Warning.Render("● Working")
	} else {
		status = m.styles.Success.Render("● Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		mode,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		docLabel,
		m.styles.RenderDivider(m.width),
	)
}

func (m chatModel) renderFooter() string {
	if m.notice != "" {
		return m.styles.Warning.Render(m.notice)
	}
	return m.styles.Muted.Render("Enter: send • /mode A|B|C • /doc <id> • /help • Ctrl+C: exit")
}

// runInteractiveChat wires a conversation to the local archive and
// starts the chat interface.
func runInteractiveChat() error {
	if err := requireLogin(); err != nil {
		return err
	}

	// Prime the settings cache so sends carry them from the start.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	if err := sess.FetchProfile(ctx); err != nil {
		logger.Warn("profile fetch before chat failed", zap.Error(err))
	}
	cancel()

	var recorder chat.Recorder
	if cfg.Archive.Enabled {
		path := cfg.Archive.Path
		if path == "" {
			var err error
			path, err = archive.DefaultPath()
			if err != nil {
				return fmt.Errorf("resolving archive path: %w", err)
			}
		}
		arc, err := archive.Open(path)
		if err != nil {
			logger.Warn("archive unavailable, exchanges will not be saved locally", zap.Error(err))
		} else {
			defer arc.Close()
			recorder = arc
		}
	}

	conv := chat.New(apiClient, recorder, logger)

	p := tea.NewProgram(
		initChat(conv),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
