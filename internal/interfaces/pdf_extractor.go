package interfaces

import "context"

// PDFExtractor extracts the text layer from a resume PDF
type PDFExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
