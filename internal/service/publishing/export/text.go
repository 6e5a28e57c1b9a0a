package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	pubSvc "pressroom/internal/domain/services/publishing"
)

// textExporter strips markup and returns plain text content.
type textExporter struct{}

// NewTextExporter creates a plain-text exporter.
func NewTextExporter() pubSvc.Exporter {
	return &textExporter{}
}

// Export extracts the markup's text content.
func (e *textExporter) Export(ctx context.Context, markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}
	return strings.TrimSpace(doc.Find("body").Text()), nil
}

// Format returns the registry key.
func (e *textExporter) Format() string {
	return "text"
}

// ContentType returns the MIME type for HTTP responses.
func (e *textExporter) ContentType() string {
	return "text/plain; charset=utf-8"
}
