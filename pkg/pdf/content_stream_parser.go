package pdf

import (
	"fmt"
	"math"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

// maxFormDepth bounds recursion into nested form XObjects
const maxFormDepth = 8

// ContentStreamParser walks a page content stream and records the user-space
// bounds of painted vector paths and placed images, plus the glyphs shown inside
// form XObjects, which the backends' own text extraction does not descend into.
// Boxes are in PDF user space (y grows upward) with corners normalised.
type ContentStreamParser struct {
	graphicsState GraphicsState
	stateStack    []GraphicsState

	// Current path, already transformed by the CTM
	currentPath []Point

	textMatrix  Matrix
	lineMatrix  Matrix
	inlineImage bool // between BI and EI

	drawings []BoundingBox
	images   []BoundingBox
	glyphs   []Glyph
}

// GraphicsState holds the parts of the PDF graphics state that affect geometry
type GraphicsState struct {
	CTM       Matrix // Current transformation matrix
	LineWidth float64
	Text      TextState
}

// TextState holds the text parameters saved and restored with the graphics state
type TextState struct {
	Font        lpdf.Font
	FontSize    float64
	CharSpacing float64
	WordSpacing float64
	HorizScale  float64
	Leading     float64
	Rise        float64
}

// Glyph is one shown character. X and Y are the user-space origin on the baseline.
type Glyph struct {
	Text     string
	Font     string
	FontSize float64
	X, Y     float64
	Width    float64
}

// Matrix represents a 2D transformation matrix
type Matrix struct {
	A, B, C, D, E, F float64
}

// NewContentStreamParser creates a new content stream parser
func NewContentStreamParser() *ContentStreamParser {
	return &ContentStreamParser{
		graphicsState: GraphicsState{
			CTM:       IdentityMatrix(),
			LineWidth: 1.0,
			Text:      TextState{HorizScale: 1},
		},
		textMatrix: IdentityMatrix(),
		lineMatrix: IdentityMatrix(),
	}
}

// Drawings returns the bounds of every stroked or filled path seen so far
func (p *ContentStreamParser) Drawings() []BoundingBox {
	return p.drawings
}

// Images returns the bounds of every image XObject and inline image seen so far
func (p *ContentStreamParser) Images() []BoundingBox {
	return p.images
}

// Glyphs returns the characters shown inside form XObjects.
// Page-level text is left to the backend's text extraction.
func (p *ContentStreamParser) Glyphs() []Glyph {
	return p.glyphs
}

// Parse interprets the page's content stream. Decoder panics on malformed
// content stop the walk; whatever was collected before that point is kept
// and the panic is reported as an error.
func (p *ContentStreamParser) Parse(page lpdf.Page) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream aborted: %v", r)
		}
	}()

	contents := page.V.Key("Contents")
	if contents.IsNull() {
		return nil
	}
	p.interpret(contents, page.Resources(), 0)
	return nil
}

func (p *ContentStreamParser) interpret(strm, resources lpdf.Value, depth int) {
	lpdf.Interpret(strm, func(stk *lpdf.Stack, op string) {
		n := stk.Len()
		args := make([]lpdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		p.processOperator(op, args, resources, depth)
	})
}

func (p *ContentStreamParser) processOperator(op string, args []lpdf.Value, resources lpdf.Value, depth int) {
	if p.inlineImage {
		// the tokenizer turns inline image data into junk operators
		if op == "EI" {
			p.inlineImage = false
		}
		return
	}

	switch op {
	// Graphics state
	case "q":
		p.saveGraphicsState()
	case "Q":
		p.restoreGraphicsState()
	case "cm":
		p.concatenateMatrix(args)
	case "w":
		if len(args) == 1 {
			p.graphicsState.LineWidth = args[0].Float64()
		}

	// Path construction
	case "m":
		p.moveTo(args)
	case "l":
		p.lineTo(args)
	case "c":
		p.curveTo(args, 6)
	case "v", "y":
		p.curveTo(args, 4)
	case "re":
		p.rectangle(args)
	case "h":
		// closing adds no new extent

	// Path painting
	case "S", "s":
		p.paint(true)
	case "f", "F", "f*":
		p.paint(false)
	case "B", "B*", "b", "b*":
		p.paint(true)
	case "n":
		p.currentPath = nil

	// XObjects
	case "Do":
		if len(args) == 1 {
			p.doXObject(args[0].Name(), resources, depth)
		}
	case "BI":
		p.addImage()
		p.inlineImage = true

	// Text
	case "BT":
		p.textMatrix, p.lineMatrix = IdentityMatrix(), IdentityMatrix()
	case "Tf":
		if len(args) == 2 {
			p.graphicsState.Text.Font = lpdf.Font{V: resources.Key("Font").Key(args[0].Name())}
			p.graphicsState.Text.FontSize = args[1].Float64()
		}
	case "Tc", "Tw", "Tz", "TL", "Ts":
		if len(args) == 1 {
			p.setTextParam(op, args[0].Float64())
		}
	case "Td", "TD":
		if len(args) == 2 {
			tx, ty := args[0].Float64(), args[1].Float64()
			if op == "TD" {
				p.graphicsState.Text.Leading = -ty
			}
			p.moveText(tx, ty)
		}
	case "Tm":
		if len(args) == 6 {
			m := matrixFromValues(args)
			p.textMatrix, p.lineMatrix = m, m
		}
	case "T*":
		p.moveText(0, -p.graphicsState.Text.Leading)
	case "Tj":
		if len(args) == 1 {
			p.showText(args[0].RawString(), depth)
		}
	case "'":
		if len(args) == 1 {
			p.moveText(0, -p.graphicsState.Text.Leading)
			p.showText(args[0].RawString(), depth)
		}
	case "\"":
		if len(args) == 3 {
			p.graphicsState.Text.WordSpacing = args[0].Float64()
			p.graphicsState.Text.CharSpacing = args[1].Float64()
			p.moveText(0, -p.graphicsState.Text.Leading)
			p.showText(args[2].RawString(), depth)
		}
	case "TJ":
		if len(args) == 1 && args[0].Kind() == lpdf.Array {
			p.showTextArray(args[0], depth)
		}
	}
}

func (p *ContentStreamParser) setTextParam(op string, v float64) {
	ts := &p.graphicsState.Text
	switch op {
	case "Tc":
		ts.CharSpacing = v
	case "Tw":
		ts.WordSpacing = v
	case "Tz":
		ts.HorizScale = v / 100
	case "TL":
		ts.Leading = v
	case "Ts":
		ts.Rise = v
	}
}

// moveText starts a new line offset from the start of the current one
func (p *ContentStreamParser) moveText(tx, ty float64) {
	p.lineMatrix = MultiplyMatrix(translation(tx, ty), p.lineMatrix)
	p.textMatrix = p.lineMatrix
}

// showText advances the text matrix over raw and, inside forms, records each glyph.
// Widths are looked up per byte, matching the single-byte fonts the backends decode.
func (p *ContentStreamParser) showText(raw string, depth int) {
	ts := p.graphicsState.Text
	decoded := raw
	if enc := ts.Font.Encoder(); enc != nil {
		decoded = enc.Decode(raw)
	}
	font := ts.Font.BaseFont()
	if i := strings.Index(font, "+"); i >= 0 {
		font = font[i+1:]
	}

	n := 0
	for _, ch := range decoded {
		var w0 float64
		if n < len(raw) {
			w0 = ts.Font.Width(int(raw[n]))
		}
		n++

		if depth > 0 {
			scale := Matrix{A: ts.FontSize * ts.HorizScale, D: ts.FontSize, F: ts.Rise}
			trm := MultiplyMatrix(MultiplyMatrix(scale, p.textMatrix), p.graphicsState.CTM)
			p.glyphs = append(p.glyphs, Glyph{
				Text:     string(ch),
				Font:     font,
				FontSize: trm.A,
				X:        trm.E,
				Y:        trm.F,
				Width:    w0 / 1000 * trm.A,
			})
		}

		tx := w0/1000*ts.FontSize + ts.CharSpacing
		if ch == ' ' {
			tx += ts.WordSpacing
		}
		p.textMatrix = MultiplyMatrix(translation(tx*ts.HorizScale, 0), p.textMatrix)
	}
}

func (p *ContentStreamParser) showTextArray(arr lpdf.Value, depth int) {
	ts := p.graphicsState.Text
	for i := 0; i < arr.Len(); i++ {
		item := arr.Index(i)
		if item.Kind() == lpdf.String {
			p.showText(item.RawString(), depth)
			continue
		}
		tx := -item.Float64() / 1000 * ts.FontSize * ts.HorizScale
		p.textMatrix = MultiplyMatrix(translation(tx, 0), p.textMatrix)
	}
}

func (p *ContentStreamParser) saveGraphicsState() {
	p.stateStack = append(p.stateStack, p.graphicsState)
}

func (p *ContentStreamParser) restoreGraphicsState() {
	if len(p.stateStack) > 0 {
		p.graphicsState = p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
	}
}

func (p *ContentStreamParser) concatenateMatrix(args []lpdf.Value) {
	if len(args) != 6 {
		return
	}
	p.graphicsState.CTM = MultiplyMatrix(matrixFromValues(args), p.graphicsState.CTM)
}

// Path construction operators

func (p *ContentStreamParser) moveTo(args []lpdf.Value) {
	if len(args) != 2 {
		return
	}
	p.addPoint(args[0].Float64(), args[1].Float64())
}

func (p *ContentStreamParser) lineTo(args []lpdf.Value) {
	p.moveTo(args)
}

// curveTo records control points as well as end points; the control polygon
// contains the curve, so its bounds are a safe superset.
func (p *ContentStreamParser) curveTo(args []lpdf.Value, want int) {
	if len(args) != want {
		return
	}
	for i := 0; i+1 < len(args); i += 2 {
		p.addPoint(args[i].Float64(), args[i+1].Float64())
	}
}

func (p *ContentStreamParser) rectangle(args []lpdf.Value) {
	if len(args) != 4 {
		return
	}
	x, y := args[0].Float64(), args[1].Float64()
	w, h := args[2].Float64(), args[3].Float64()
	p.addPoint(x, y)
	p.addPoint(x+w, y)
	p.addPoint(x+w, y+h)
	p.addPoint(x, y+h)
}

func (p *ContentStreamParser) addPoint(x, y float64) {
	tx, ty := p.transformPoint(x, y)
	p.currentPath = append(p.currentPath, Point{X: tx, Y: ty})
}

// paint emits the bounds of the current path and clears it.
// Stroked paths grow by half the line width in device space.
func (p *ContentStreamParser) paint(stroked bool) {
	defer func() { p.currentPath = nil }()
	if len(p.currentPath) == 0 {
		return
	}

	box := boundsOf(p.currentPath)
	if stroked {
		half := p.scaledLineWidth() / 2
		box = box.Expand(half, half, half, half)
	}
	if box.IsFinite() {
		p.drawings = append(p.drawings, box)
	}
}

func (p *ContentStreamParser) scaledLineWidth() float64 {
	ctm := p.graphicsState.CTM
	scale := math.Sqrt(math.Abs(ctm.A*ctm.D - ctm.B*ctm.C))
	lw := p.graphicsState.LineWidth
	if lw <= 0 {
		// a zero width line is drawn one device pixel wide
		lw = 1
	}
	return lw * scale
}

func (p *ContentStreamParser) doXObject(name string, resources lpdf.Value, depth int) {
	xobj := resources.Key("XObject").Key(name)
	if xobj.IsNull() {
		return
	}

	switch xobj.Key("Subtype").Name() {
	case "Image":
		p.addImage()

	case "Form":
		if depth >= maxFormDepth {
			return
		}
		p.saveGraphicsState()
		defer p.restoreGraphicsState()

		if m := xobj.Key("Matrix"); m.Kind() == lpdf.Array && m.Len() == 6 {
			vals := make([]lpdf.Value, 6)
			for i := range vals {
				vals[i] = m.Index(i)
			}
			p.graphicsState.CTM = MultiplyMatrix(matrixFromValues(vals), p.graphicsState.CTM)
		}

		formResources := xobj.Key("Resources")
		if formResources.IsNull() {
			formResources = resources
		}
		savedPath := p.currentPath
		p.currentPath = nil
		p.interpret(xobj, formResources, depth+1)
		p.currentPath = savedPath
	}
}

// addImage records the unit square mapped through the CTM, where every image is painted
func (p *ContentStreamParser) addImage() {
	corners := make([]Point, 0, 4)
	for _, c := range [4]Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := p.transformPoint(c.X, c.Y)
		corners = append(corners, Point{X: x, Y: y})
	}
	if box := boundsOf(corners); box.IsFinite() {
		p.images = append(p.images, box)
	}
}

// transformPoint applies the current transformation matrix to a point
func (p *ContentStreamParser) transformPoint(x, y float64) (float64, float64) {
	ctm := p.graphicsState.CTM
	newX := ctm.A*x + ctm.C*y + ctm.E
	newY := ctm.B*x + ctm.D*y + ctm.F
	return newX, newY
}

func boundsOf(points []Point) BoundingBox {
	box := BoundingBox{X0: points[0].X, Y0: points[0].Y, X1: points[0].X, Y1: points[0].Y}
	for _, pt := range points[1:] {
		box.X0 = min(box.X0, pt.X)
		box.Y0 = min(box.Y0, pt.Y)
		box.X1 = max(box.X1, pt.X)
		box.Y1 = max(box.Y1, pt.Y)
	}
	return box
}

func matrixFromValues(v []lpdf.Value) Matrix {
	return Matrix{
		A: v[0].Float64(),
		B: v[1].Float64(),
		C: v[2].Float64(),
		D: v[3].Float64(),
		E: v[4].Float64(),
		F: v[5].Float64(),
	}
}

// Matrix operations

func IdentityMatrix() Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: 1, E: 0, F: 0}
}

func translation(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

func MultiplyMatrix(m1, m2 Matrix) Matrix {
	return Matrix{
		A: m1.A*m2.A + m1.B*m2.C,
		B: m1.A*m2.B + m1.B*m2.D,
		C: m1.C*m2.A + m1.D*m2.C,
		D: m1.C*m2.B + m1.D*m2.D,
		E: m1.E*m2.A + m1.F*m2.C + m2.E,
		F: m1.E*m2.B + m1.F*m2.D + m2.F,
	}
}
