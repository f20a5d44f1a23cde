package crop

import "github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"

// Locate searches page for each variant in order. The first variant with at least one
// match wins and its topmost match is returned; later variants are not consulted.
func Locate(page pdf.Page, variants []string) (pdf.BoundingBox, bool) {
	for _, variant := range variants {
		if variant == "" {
			continue
		}
		hits := page.SearchFor(variant)
		if len(hits) == 0 {
			continue
		}
		top := hits[0]
		for _, hit := range hits[1:] {
			if hit.Y0 < top.Y0 {
				top = hit
			}
		}
		return top, true
	}
	return pdf.BoundingBox{}, false
}
