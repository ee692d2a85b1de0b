package tree

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Renderer draws flattened lines with syntax highlighting.
type Renderer struct {
	indent       string
	keyStyle     lipgloss.Style
	stringStyle  lipgloss.Style
	numberStyle  lipgloss.Style
	boolStyle    lipgloss.Style
	nullStyle    lipgloss.Style
	bracketStyle lipgloss.Style
	colonStyle   lipgloss.Style
	foldStyle    lipgloss.Style
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithIndent sets the string repeated once per depth level.
func WithIndent(indent string) RendererOption {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithNoColor disables all styling.
func WithNoColor() RendererOption {
	return func(r *Renderer) {
		plain := lipgloss.NewStyle()
		r.keyStyle = plain
		r.stringStyle = plain
		r.numberStyle = plain
		r.boolStyle = plain
		r.nullStyle = plain
		r.bracketStyle = plain
		r.colonStyle = plain
		r.foldStyle = plain
	}
}

// NewRenderer creates a renderer with the default palette.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		indent:       "  ",
		keyStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("141")), // Purple
		stringStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // Green
		numberStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // Orange
		boolStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),  // Blue
		nullStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // Gray
		bracketStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")), // Light gray
		colonStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		foldStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the fully expanded tree.
func (r *Renderer) Render(root *Node) string {
	return strings.Join(r.RenderLines(Flatten(root, nil)), "\n")
}

// RenderLines draws each line.
func (r *Renderer) RenderLines(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = r.RenderLine(l)
	}
	return out
}

// RenderLine draws a single line including indentation.
func (r *Renderer) RenderLine(l Line) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(r.indent, l.Depth))

	if l.HasKey {
		sb.WriteString(r.keyStyle.Render(quote(l.Key)))
		sb.WriteString(r.colonStyle.Render(": "))
	}

	switch l.Role {
	case RoleOpen, RoleClose:
		sb.WriteString(r.bracketStyle.Render(l.Text))
	case RoleCollapsed:
		sb.WriteString(r.foldStyle.Render(l.Text))
	default:
		sb.WriteString(r.leafStyle(l.Kind).Render(l.Text))
	}

	if l.Comma {
		sb.WriteString(r.bracketStyle.Render(","))
	}
	return sb.String()
}

func (r *Renderer) leafStyle(k Kind) lipgloss.Style {
	switch k {
	case KindString:
		return r.stringStyle
	case KindNumber:
		return r.numberStyle
	case KindBool:
		return r.boolStyle
	case KindNull:
		return r.nullStyle
	default:
		return r.bracketStyle
	}
}
