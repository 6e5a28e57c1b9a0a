package export

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"

	pubSvc "pressroom/internal/domain/services/publishing"
)

// markdownExporter converts article markup to markdown.
type markdownExporter struct {
	converter *md.Converter
}

// NewMarkdownExporter creates a markdown exporter.
func NewMarkdownExporter() pubSvc.Exporter {
	return &markdownExporter{
		converter: md.NewConverter("", true, nil),
	}
}

// Export transforms markup into markdown syntax.
func (e *markdownExporter) Export(ctx context.Context, markup string) (string, error) {
	out, err := e.converter.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("failed to convert markup to markdown: %w", err)
	}
	return out, nil
}

// Format returns the registry key.
func (e *markdownExporter) Format() string {
	return "markdown"
}

// ContentType returns the MIME type for HTTP responses.
func (e *markdownExporter) ContentType() string {
	return "text/markdown; charset=utf-8"
}
