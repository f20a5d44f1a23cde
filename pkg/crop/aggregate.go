package crop

import "github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"

// Aggregate bounds every box that starts at or above bottomY, each first cut at bottomY.
// Boxes entirely below the cutoff are excluded. Zero-height slivers such as rules still
// widen the result. The second result is false when no box qualifies.
func Aggregate(bottomY float64, streams ...[]pdf.BoundingBox) (pdf.BoundingBox, bool) {
	var (
		acc   pdf.BoundingBox
		found bool
	)
	for _, stream := range streams {
		for _, box := range stream {
			if !box.IsFinite() {
				continue
			}
			cut, ok := box.Normalize().RestrictBottom(bottomY)
			if !ok {
				continue
			}
			if !found {
				acc, found = cut, true
				continue
			}
			acc = pdf.BoundingBox{
				X0: min(acc.X0, cut.X0),
				Y0: min(acc.Y0, cut.Y0),
				X1: max(acc.X1, cut.X1),
				Y1: max(acc.Y1, cut.Y1),
			}
		}
	}
	return acc, found
}

// AggregatePage aggregates the text runs, drawing boxes and block boxes of page
func AggregatePage(page pdf.Page, bottomY float64) (pdf.BoundingBox, bool) {
	return Aggregate(bottomY, page.TextRuns(), page.DrawingBoxes(), page.BlockBoxes())
}
