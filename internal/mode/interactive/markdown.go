// ABOUTME: Markdown renderer wrapper around glamour for terminal output
// ABOUTME: Caches rendered results keyed by content hash and wrap width

package interactive

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer wraps glamour with a render cache. Interactive views
// re-render every frame; without the cache each keystroke would redo the
// full goldmark pass over accumulated assistant text.
type markdownRenderer struct {
	cache map[string]string
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{cache: make(map[string]string)}
}

// Render returns the terminal-styled rendering of md wrapped to width.
// Falls back to the raw text when glamour fails.
func (r *markdownRenderer) Render(md string, width int) string {
	if md == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	key := mdCacheKey(md, width)
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	rendered = strings.TrimRight(rendered, "\n ")

	r.cache[key] = rendered
	return rendered
}

func mdCacheKey(content string, width int) string {
	h := fnv.New64a()
	h.Write([]byte(content))
	return fmt.Sprintf("%x:%d", h.Sum64(), width)
}
