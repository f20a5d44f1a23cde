package pdf

import (
	"fmt"
	"io"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// OpenWithLedongthuc opens a PDF using the ledongthuc/pdf library.
// It provides the most accurate text positions and a content stream that
// the graphics scanner can walk for drawings, images and text inside forms.
func OpenWithLedongthuc(r io.ReaderAt, size int64, opts ...Option) (Document, error) {
	return openWithLedongthuc(r, size, newOpenConfig(opts))
}

func openWithLedongthuc(r io.ReaderAt, size int64, config openConfig) (doc Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("ledongthuc: %v", rec)
		}
	}()

	reader, err := lpdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}

	pageCount := reader.NumPage()
	if pageCount <= 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	pages := make([]Page, pageCount)
	for i := 1; i <= pageCount; i++ {
		page, err := newLedongthucPage(reader, i, config)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize page %d: %w", i, err)
		}
		pages[i-1] = page
	}

	return &PDFDocument{backend: "ledongthuc", pages: pages}, nil
}

// newLedongthucPage decodes one page into a ContentPage
func newLedongthucPage(reader *lpdf.Reader, pageNumber int, config openConfig) (Page, error) {
	page := reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("invalid page number: %d", pageNumber)
	}

	rotation := pageRotation(page.V) + config.rotation
	builder := newPageBuilder(pageNumber, rotation, visibleBox(page.V), config.text)
	log := config.logger.WithField("page", pageNumber)

	extractLedongthucText(page, builder, log)

	scanner := NewContentStreamParser()
	if err := scanner.Parse(page); err != nil {
		log.WithError(err).Debug("graphics scan stopped early")
	}
	for _, box := range scanner.Drawings() {
		builder.addDrawing(box)
	}
	for _, box := range scanner.Images() {
		builder.addImage(box)
	}
	for _, g := range scanner.Glyphs() {
		builder.addGlyph(g.Text, g.Font, g.FontSize, g.X, g.Y, g.Width)
	}

	return builder.build(), nil
}

// extractLedongthucText converts shown glyphs into characters.
// Content panics on some malformed streams; the page then simply has no text.
func extractLedongthucText(page lpdf.Page, builder *pageBuilder, log logrus.FieldLogger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("cause", fmt.Sprint(rec)).Debug("text extraction aborted")
		}
	}()

	content := page.Content()
	for _, text := range content.Text {
		builder.addGlyph(text.S, text.Font, text.FontSize, text.X, text.Y, text.W)
	}
}
