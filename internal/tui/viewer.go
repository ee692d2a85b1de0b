// Package tui provides an interactive, foldable viewer for a response body.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/curl2json/internal/content"
	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/tree"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	cursorMarker      = "> "
	noCursorMarker    = "  "
	notificationDelay = 2 * time.Second
	emptyBodyMessage  = "No data to display"
)

// copiedMsg reports the outcome of a clipboard write.
type copiedMsg struct {
	size int
	err  error
}

type clearNotificationMsg struct{}

// Option configures a Viewer.
type Option func(*Viewer)

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(v *Viewer) {
		v.copyFn = fn
	}
}

// WithNoColor renders without styling.
func WithNoColor() Option {
	return func(v *Viewer) {
		v.renderer = tree.NewRenderer(tree.WithNoColor())
		v.styles = PlainStyles()
		v.plain = true
	}
}

// WithCollapseDepth folds every container at depth or deeper on open.
func WithCollapseDepth(depth int) Option {
	return func(v *Viewer) {
		v.collapsed = tree.CollapseDepth(v.root, depth)
	}
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(v *Viewer) {
		v.keys = keys
	}
}

// Viewer is a bubbletea model that shows a response body as a foldable tree.
type Viewer struct {
	response  *core.Response
	root      *tree.Node
	collapsed map[string]bool
	lines     []tree.Line
	rendered  []string

	cursor int
	offset int
	width  int
	height int

	keys     KeyMap
	help     help.Model
	renderer *tree.Renderer
	styles   Styles
	plain    bool
	copyFn   func(string) error

	showHeaders  bool
	notification string
	failed       bool
}

// New creates a viewer for resp.
func New(resp *core.Response, opts ...Option) *Viewer {
	v := &Viewer{
		response:  resp,
		root:      tree.Format(resp.Body()),
		collapsed: map[string]bool{},
		keys:      DefaultKeyMap(),
		help:      help.New(),
		renderer:  tree.NewRenderer(),
		styles:    DefaultStyles(),
		copyFn:    clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.refresh()
	return v
}

// Run shows the viewer full screen until the user quits or ctx ends.
func Run(ctx context.Context, resp *core.Response, opts ...Option) error {
	p := tea.NewProgram(New(resp, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// Init initializes the model.
func (v *Viewer) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.help.Width = msg.Width
		v.offset = tree.AdjustOffset(v.cursor, v.offset, v.bodyHeight())

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case copiedMsg:
		if msg.err != nil {
			v.notification = "✗ Copy failed: " + msg.err.Error()
			v.failed = true
		} else {
			v.notification = "✓ Copied " + FormatSize(int64(msg.size))
			v.failed = false
		}
		return v, tea.Tick(notificationDelay, func(time.Time) tea.Msg {
			return clearNotificationMsg{}
		})

	case clearNotificationMsg:
		v.notification = ""
		v.failed = false
	}

	return v, nil
}

func (v *Viewer) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := v.bodyHeight()

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Help):
		v.help.ShowAll = !v.help.ShowAll
	case key.Matches(msg, v.keys.Headers):
		v.showHeaders = !v.showHeaders
	case key.Matches(msg, v.keys.Copy):
		return v, v.copyBody()
	case v.showHeaders:
		// Only the bindings above apply to the header list.
		return v, nil
	case key.Matches(msg, v.keys.Up):
		v.moveCursor(-1)
	case key.Matches(msg, v.keys.Down):
		v.moveCursor(1)
	case key.Matches(msg, v.keys.PageUp):
		v.moveCursor(-page)
	case key.Matches(msg, v.keys.PageDown):
		v.moveCursor(page)
	case key.Matches(msg, v.keys.Top):
		v.moveCursor(-len(v.lines))
	case key.Matches(msg, v.keys.Bottom):
		v.moveCursor(len(v.lines))
	case key.Matches(msg, v.keys.Toggle):
		v.toggle()
	case key.Matches(msg, v.keys.Collapse):
		v.collapse()
	case key.Matches(msg, v.keys.Expand):
		v.expand()
	case key.Matches(msg, v.keys.CollapseAll):
		v.collapsed = tree.CollapseAll(v.root)
		v.refreshAt(tree.RootID)
	case key.Matches(msg, v.keys.ExpandAll):
		current := v.current().ID
		v.collapsed = map[string]bool{}
		v.refreshAt(current)
	}

	return v, nil
}

func (v *Viewer) copyBody() tea.Cmd {
	text := string(tree.Marshal(v.response.Body(), "  "))
	copyFn := v.copyFn
	return func() tea.Msg {
		return copiedMsg{size: len(text), err: copyFn(text)}
	}
}

func (v *Viewer) current() tree.Line {
	if len(v.lines) == 0 {
		return tree.Line{}
	}
	return v.lines[v.cursor]
}

func (v *Viewer) moveCursor(delta int) {
	v.cursor = tree.MoveCursor(v.cursor, delta, len(v.lines))
	v.offset = tree.AdjustOffset(v.cursor, v.offset, v.bodyHeight())
}

func (v *Viewer) toggle() {
	line := v.current()
	if !line.Collapsible() && line.Role != tree.RoleClose {
		return
	}
	v.collapsed = tree.ToggleCollapse(v.collapsed, line.ID)
	v.refreshAt(line.ID)
}

// collapse folds the container under the cursor, or jumps to the parent
// when there is nothing to fold.
func (v *Viewer) collapse() {
	line := v.current()
	if line.Role == tree.RoleOpen || line.Role == tree.RoleClose {
		v.collapsed = tree.ToggleCollapse(v.collapsed, line.ID)
		v.refreshAt(line.ID)
		return
	}
	if parent, ok := parentID(line.ID); ok {
		v.refreshAt(parent)
	}
}

// expand unfolds a collapsed container, or steps into an expanded one.
func (v *Viewer) expand() {
	line := v.current()
	switch line.Role {
	case tree.RoleCollapsed:
		v.collapsed = tree.ToggleCollapse(v.collapsed, line.ID)
		v.refreshAt(line.ID)
	case tree.RoleOpen:
		v.moveCursor(1)
	}
}

func (v *Viewer) refresh() {
	v.lines = tree.Flatten(v.root, v.collapsed)
	v.rendered = v.renderer.RenderLines(v.lines)
	v.cursor = tree.MoveCursor(v.cursor, 0, len(v.lines))
	v.offset = tree.AdjustOffset(v.cursor, v.offset, v.bodyHeight())
}

func (v *Viewer) refreshAt(id string) {
	v.lines = tree.Flatten(v.root, v.collapsed)
	v.rendered = v.renderer.RenderLines(v.lines)
	if idx := tree.IndexOf(v.lines, id); idx >= 0 {
		v.cursor = idx
	}
	v.cursor = tree.MoveCursor(v.cursor, 0, len(v.lines))
	v.offset = tree.AdjustOffset(v.cursor, v.offset, v.bodyHeight())
}

func parentID(id string) (string, bool) {
	i := strings.LastIndex(id, "/")
	if i < 0 {
		return "", false
	}
	return id[:i], true
}

func (v *Viewer) bodyHeight() int {
	// title and status rows
	h := v.height - 2 - lipgloss.Height(v.footer())
	if h < 1 {
		return 1
	}
	return h
}

// View renders the model.
func (v *Viewer) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}

	title := RenderTitle(v.styles.Title, "curl2json", v.width)
	rows := []string{title, Truncate(v.statusLine(), v.width)}

	height := v.bodyHeight()
	var body []string
	switch {
	case v.showHeaders:
		body = v.headerRows(height)
	case isNull(v.response.Body()):
		body = []string{v.styles.Muted.Render(emptyBodyMessage)}
	default:
		body = v.treeRows(height)
	}
	rows = append(rows, PadLines(body, height)...)
	rows = append(rows, v.footer())

	return JoinRows(rows...)
}

func (v *Viewer) statusLine() string {
	resp := v.response
	status := resp.Status()

	badgeStyle := StatusStyle(status.Code())
	if v.plain {
		badgeStyle = lipgloss.NewStyle()
	}
	badge := badgeStyle.Render(fmt.Sprintf("%d %s", status.Code(), status.Text()))

	format := content.Detect(resp.ContentType(), string(resp.Raw()))
	parts := []string{
		badge,
		v.styles.Muted.Render(fmt.Sprintf("%dms", resp.Timing().Total.Milliseconds())),
		v.styles.Muted.Render(FormatSize(resp.Size())),
		v.styles.Format.Render(format.Upper()),
	}
	if v.showHeaders {
		parts = append(parts, v.styles.Muted.Render("[headers]"))
	}
	return " " + strings.Join(parts, "  ")
}

func (v *Viewer) treeRows(height int) []string {
	end := v.offset + height
	if end > len(v.rendered) {
		end = len(v.rendered)
	}

	rows := make([]string, 0, height)
	for i := v.offset; i < end; i++ {
		marker := noCursorMarker
		if i == v.cursor {
			marker = v.styles.Cursor.Render(cursorMarker)
		}
		rows = append(rows, Truncate(marker+v.rendered[i], v.width))
	}
	return rows
}

func (v *Viewer) headerRows(height int) []string {
	names := v.response.HeaderNames()
	if len(names) == 0 {
		return []string{v.styles.Muted.Render("No headers")}
	}

	rows := make([]string, 0, len(names))
	for _, name := range names {
		row := v.styles.HeaderName.Render(name) + ": " + v.response.Header(name)
		rows = append(rows, Truncate(noCursorMarker+row, v.width))
		if len(rows) == height {
			break
		}
	}
	return rows
}

func (v *Viewer) footer() string {
	if v.notification != "" {
		if v.failed {
			return v.styles.Failure.Render(v.notification)
		}
		return v.styles.Notification.Render(v.notification)
	}
	return v.help.View(v.keys)
}

func isNull(val tree.Value) bool {
	_, ok := val.(tree.Null)
	return ok
}

// Cursor returns the index of the selected line.
func (v *Viewer) Cursor() int {
	return v.cursor
}

// Offset returns the index of the first visible line.
func (v *Viewer) Offset() int {
	return v.offset
}

// Lines returns the visible tree lines.
func (v *Viewer) Lines() []tree.Line {
	return v.lines
}

// ShowingHeaders reports whether the header list replaces the tree.
func (v *Viewer) ShowingHeaders() bool {
	return v.showHeaders
}

// Notification returns the current footer notification.
func (v *Viewer) Notification() string {
	return v.notification
}
