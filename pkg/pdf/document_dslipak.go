package pdf

import (
	"fmt"
	"io"

	gopdf "github.com/dslipak/pdf"
)

// OpenWithDslipak opens a PDF using the dslipak/pdf library.
// It yields text and rectangle paths only; images and transformed paths are not reported.
func OpenWithDslipak(r io.ReaderAt, size int64, opts ...Option) (Document, error) {
	return openWithDslipak(r, size, newOpenConfig(opts))
}

func openWithDslipak(r io.ReaderAt, size int64, config openConfig) (doc Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("dslipak: %v", rec)
		}
	}()

	reader, err := gopdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}

	pageCount := reader.NumPage()
	if pageCount <= 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	pages := make([]Page, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			return nil, fmt.Errorf("invalid page number: %d", i)
		}

		rotation := pageRotation(page.V) + config.rotation
		builder := newPageBuilder(i, rotation, visibleBox(page.V), config.text)

		// Content is not recovered here: a panic rejects the whole document
		content := page.Content()
		for _, text := range content.Text {
			builder.addGlyph(text.S, text.Font, text.FontSize, text.X, text.Y, text.W)
		}
		for _, rect := range content.Rect {
			builder.addDrawing(BoundingBox{X0: rect.Min.X, Y0: rect.Min.Y, X1: rect.Max.X, Y1: rect.Max.Y})
		}

		pages[i-1] = builder.build()
	}

	return &PDFDocument{backend: "dslipak", pages: pages}, nil
}
