package pdf

import (
	"math"
	"strings"
	"unicode"
)

// ContentPage implements Page over glyphs and painted boxes collected by one of the
// decoding backends. Text layout is resolved in the page's unrotated orientation and
// every rectangle it hands out is then mapped into display orientation.
type ContentPage struct {
	pageNumber int
	rotation   int
	width      float64 // unrotated
	height     float64 // unrotated

	lines    []TextLine // unrotated coordinates
	runs     []BoundingBox
	drawings []BoundingBox
	blocks   []BoundingBox
}

// pageBuilder gathers raw content in PDF user space and converts it into a ContentPage
type pageBuilder struct {
	pageNumber int
	rotation   int
	box        BoundingBox // visible box in user space: X0/Y0 lower-left, X1/Y1 upper-right
	config     textExtractionConfig

	chars    []CharObject
	drawings []BoundingBox
	images   []BoundingBox
}

func newPageBuilder(pageNumber, rotation int, box BoundingBox, config textExtractionConfig) *pageBuilder {
	return &pageBuilder{
		pageNumber: pageNumber,
		rotation:   NormalizeRotation(rotation),
		box:        box.Normalize(),
		config:     config,
	}
}

// addGlyph records one shown glyph. x and y are the user-space origin of the
// glyph on its baseline; width may be zero when the font carries no metrics.
func (b *pageBuilder) addGlyph(text, font string, fontSize, x, y, width float64) {
	fontSize = math.Abs(fontSize)
	if fontSize == 0 || text == "" {
		return
	}
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, NormalizeText(text))
	if text == "" {
		return
	}
	if width <= 0 {
		width = fontSize * 0.5
	}

	// Baseline is typically at 80% of font height
	yTop := y + fontSize*0.8
	y0 := b.box.Y1 - yTop
	x0 := x - b.box.X0

	b.chars = append(b.chars, CharObject{
		Text:     text,
		Font:     font,
		FontSize: fontSize,
		X0:       x0,
		Y0:       y0,
		X1:       x0 + width,
		Y1:       y0 + fontSize,
	})
}

// addDrawing records a painted path given in user space
func (b *pageBuilder) addDrawing(userBox BoundingBox) {
	b.drawings = append(b.drawings, b.toTopLeft(userBox))
}

// addImage records a placed image given in user space
func (b *pageBuilder) addImage(userBox BoundingBox) {
	b.images = append(b.images, b.toTopLeft(userBox))
}

func (b *pageBuilder) toTopLeft(u BoundingBox) BoundingBox {
	u = u.Normalize()
	return BoundingBox{
		X0: u.X0 - b.box.X0,
		Y0: b.box.Y1 - u.Y1,
		X1: u.X1 - b.box.X0,
		Y1: b.box.Y1 - u.Y0,
	}
}

func (b *pageBuilder) build() *ContentPage {
	w, h := b.box.Width(), b.box.Height()
	page := &ContentPage{
		pageNumber: b.pageNumber,
		rotation:   b.rotation,
		width:      w,
		height:     h,
	}
	unrotated := BoundingBox{X0: 0, Y0: 0, X1: w, Y1: h}

	page.lines = groupLines(b.chars, b.config)

	words := wordsFromLines(page.lines)
	runs := make([]BoundingBox, 0, len(words))
	for _, word := range words {
		runs = append(runs, word.GetBBox())
	}

	blocks := blocksFromLines(page.lines, b.config.BlockGap)
	blocks = append(blocks, ClipToPage(DeduplicateBoxes(b.images), unrotated)...)

	page.runs = page.toDisplayAll(ClipToPage(runs, unrotated))
	page.drawings = page.toDisplayAll(ClipToPage(DeduplicateBoxes(b.drawings), unrotated))
	page.blocks = page.toDisplayAll(ClipToPage(blocks, unrotated))
	return page
}

func (p *ContentPage) toDisplayAll(boxes []BoundingBox) []BoundingBox {
	out := make([]BoundingBox, len(boxes))
	for i, box := range boxes {
		out[i] = ToDisplay(box, p.rotation, p.width, p.height)
	}
	return out
}

// GetPageNumber returns the page number (1-based)
func (p *ContentPage) GetPageNumber() int {
	return p.pageNumber
}

// GetWidth returns the page width as displayed
func (p *ContentPage) GetWidth() float64 {
	w, _ := DisplaySize(p.width, p.height, p.rotation)
	return w
}

// GetHeight returns the page height as displayed
func (p *ContentPage) GetHeight() float64 {
	_, h := DisplaySize(p.width, p.height, p.rotation)
	return h
}

// GetRotation returns the effective page rotation in degrees
func (p *ContentPage) GetRotation() int {
	return p.rotation
}

// GetBBox returns the page bounding box
func (p *ContentPage) GetBBox() BoundingBox {
	return BoundingBox{X0: 0, Y0: 0, X1: p.GetWidth(), Y1: p.GetHeight()}
}

// SearchFor returns one rectangle per literal occurrence of text
func (p *ContentPage) SearchFor(text string) []BoundingBox {
	return p.toDisplayAll(searchLines(p.lines, text))
}

// TextRuns returns word-level text rectangles
func (p *ContentPage) TextRuns() []BoundingBox {
	return p.runs
}

// DrawingBoxes returns the bounds of every painted vector path
func (p *ContentPage) DrawingBoxes() []BoundingBox {
	return p.drawings
}

// BlockBoxes returns text block and image rectangles
func (p *ContentPage) BlockBoxes() []BoundingBox {
	return p.blocks
}

// ExtractText returns the page text, one line per text line
func (p *ContentPage) ExtractText() string {
	var text strings.Builder
	for i, line := range p.lines {
		if i > 0 {
			text.WriteByte('\n')
		}
		text.WriteString(line.Text)
	}
	return text.String()
}

// Lines returns the grouped text lines in unrotated page coordinates
func (p *ContentPage) Lines() []TextLine {
	return p.lines
}
