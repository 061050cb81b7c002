package terminal

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word-wrap width of rendered markdown.
const DefaultWidth = 80

// Renderer renders markdown answers from the AI backend.
type Renderer struct {
	term *glamour.TermRenderer
}

// NewRenderer creates a Renderer wrapping at width columns.
func NewRenderer(width int) (*Renderer, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{term: term}, nil
}

// Render renders markdown. On failure, or with a nil Renderer, the text
// is returned as-is.
func (r *Renderer) Render(markdown string) string {
	if r == nil || r.term == nil {
		return markdown
	}
	out, err := r.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(out, "\n")
}
