package chat

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Renderer turns agent markdown into styled terminal text. Renderers are
// cached per wrap width.
type Renderer struct {
	style string
	mu    sync.Mutex
	byW   map[int]*glamour.TermRenderer
}

// NewRenderer creates a renderer using a glamour standard style ("dark",
// "light", "notty")
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = "dark"
	}
	return &Renderer{style: style, byW: map[int]*glamour.TermRenderer{}}
}

// Render returns text styled for width, or text unchanged if rendering fails
func (r *Renderer) Render(text string, width int) string {
	if width < 20 {
		width = 20
	}
	tr, err := r.renderer(width)
	if err != nil {
		return text
	}
	out, err := tr.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) renderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.byW[width]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.byW[width] = tr
	return tr, nil
}
