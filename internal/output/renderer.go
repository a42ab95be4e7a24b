package output

import (
	"errors"
	"fmt"

	"github.com/temirov/ctxdoc/internal/types"
)

// ErrUnsupportedFormat is returned for document formats without a renderer.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DocumentRenderer turns a tree diagram and its file records into a finished document.
type DocumentRenderer interface {
	Format() string
	Render(document Document) ([]byte, error)
}

// RendererOptions carries format-specific settings.
type RendererOptions struct {
	PDF PDFOptions
}

// NewDocumentRenderer returns the renderer registered for format.
func NewDocumentRenderer(format string, options RendererOptions) (DocumentRenderer, error) {
	switch format {
	case types.FormatMarkdown:
		return MarkdownRenderer{}, nil
	case types.FormatPDF:
		return NewPDFRenderer(options.PDF), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
