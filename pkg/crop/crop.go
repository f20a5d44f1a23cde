// Package crop derives crop rectangles for PDF pages. Strategies range from fixed page
// fractions to heuristics that isolate a shipping label from the invoice printed below it.
package crop

import (
	"context"
	"errors"

	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

// Document runs strategy over every page of doc and returns one crop box per page.
// A page whose own box is degenerate keeps that box unchanged.
func Document(ctx context.Context, doc pdf.Document, strategy Strategy) ([]pdf.BoundingBox, error) {
	pages := doc.GetPages()
	boxes := make([]pdf.BoundingBox, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		box, err := strategy.Region(page)
		if errors.Is(err, pdf.ErrGeometryDegenerate) {
			box, err = page.GetBBox(), nil
		}
		if err != nil {
			return nil, pdf.NewOpError("crop."+strategy.Name(), err)
		}
		boxes[i] = box
	}
	return boxes, nil
}
