package terminal

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Renderer turns presenter markdown into terminal output.
type Renderer interface {
	Render(markdown string) (string, error)
}

// RawRenderer prints markdown as is. Used when output is not a terminal.
type RawRenderer struct{}

func (RawRenderer) Render(markdown string) (string, error) { return markdown, nil }

// NewMarkdownRenderer renders through glamour, word wrapped at width.
func NewMarkdownRenderer(width int) (Renderer, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r, nil
}
