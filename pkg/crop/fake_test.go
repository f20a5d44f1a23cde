package crop

import (
	"fmt"

	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

// fakePage serves fixed geometry so strategies can be checked with exact numbers
type fakePage struct {
	number   int
	rect     pdf.BoundingBox
	matches  map[string][]pdf.BoundingBox
	runs     []pdf.BoundingBox
	drawings []pdf.BoundingBox
	blocks   []pdf.BoundingBox
}

func newFakePage(width, height float64) *fakePage {
	return &fakePage{
		number:  1,
		rect:    pdf.BoundingBox{X0: 0, Y0: 0, X1: width, Y1: height},
		matches: make(map[string][]pdf.BoundingBox),
	}
}

// withText records a text run and makes it searchable under its literal value
func (p *fakePage) withText(text string, box pdf.BoundingBox) *fakePage {
	p.runs = append(p.runs, box)
	p.matches[text] = append(p.matches[text], box)
	return p
}

func (p *fakePage) GetPageNumber() int       { return p.number }
func (p *fakePage) GetWidth() float64        { return p.rect.Width() }
func (p *fakePage) GetHeight() float64       { return p.rect.Height() }
func (p *fakePage) GetRotation() int         { return 0 }
func (p *fakePage) GetBBox() pdf.BoundingBox { return p.rect }
func (p *fakePage) TextRuns() []pdf.BoundingBox {
	return p.runs
}
func (p *fakePage) DrawingBoxes() []pdf.BoundingBox { return p.drawings }
func (p *fakePage) BlockBoxes() []pdf.BoundingBox   { return p.blocks }
func (p *fakePage) ExtractText() string             { return fmt.Sprint(p.matches) }

func (p *fakePage) SearchFor(text string) []pdf.BoundingBox {
	return p.matches[text]
}

type fakeDocument struct {
	pages []pdf.Page
}

func (d *fakeDocument) GetPages() []pdf.Page { return d.pages }
func (d *fakeDocument) PageCount() int       { return len(d.pages) }
func (d *fakeDocument) Close() error         { return nil }

func (d *fakeDocument) GetPage(index int) (pdf.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range", index)
	}
	return d.pages[index], nil
}

func box(x0, y0, x1, y1 float64) pdf.BoundingBox {
	return pdf.BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}
