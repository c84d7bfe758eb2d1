// Package markdown provides styled markdown rendering for the TUI.
package markdown

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/automator/internal/cachemanager"
)

// noMarginStyle removes document margins on top of the standard style.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with automator's document settings.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// New creates a markdown renderer for a standard glamour style ("dark" or
// "light") wrapping at width.
func New(width int, style string) (*Renderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// Request is one cached render: the document and the settings it is
// rendered with.
type Request struct {
	Markdown string
	Width    int
	Style    string
}

// Cache memoizes rendered documents. Glamour rendering is slow enough to
// be noticeable on every frame, while the documents it serves are static.
type Cache struct {
	rt *cachemanager.ReadThroughCache[string, string, Request]
}

// NewCache creates a render cache.
func NewCache() *Cache {
	store := cachemanager.NewInMemoryCacheManager[string, string]("markdown",
		cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	return &Cache{
		rt: cachemanager.NewReadThroughCache[string, string, Request](store,
			func(_ context.Context, req Request) (string, error) {
				r, err := New(req.Width, req.Style)
				if err != nil {
					return "", fmt.Errorf("creating markdown renderer: %w", err)
				}
				return r.Render(req.Markdown)
			}, false),
	}
}

// Render returns the rendered document for key, rendering on a miss.
// key must identify req.Markdown; width and style are added to it.
func (c *Cache) Render(key string, req Request) (string, error) {
	k := fmt.Sprintf("%s:%s:%d", key, req.Style, req.Width)
	return c.rt.GetWithRefresh(context.Background(), k, req, time.Hour)
}
