package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRendererStripsMarkdownMarkers(t *testing.T) {
	r := NewRenderer("dark")
	out := r.Render("The **deadline** is Friday.", 60)

	assert.Contains(t, out, "deadline")
	assert.NotContains(t, out, "**")
}

func TestRendererCachesPerWidth(t *testing.T) {
	r := NewRenderer("dark")
	r.Render("a", 40)
	r.Render("b", 40)
	r.Render("c", 80)

	assert.Len(t, r.byW, 2)
}

func TestRendererFallsBackOnUnknownStyle(t *testing.T) {
	r := NewRenderer("no-such-style")
	assert.Equal(t, "plain **text**", r.Render("plain **text**", 40))
}
