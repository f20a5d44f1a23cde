// Package label renders FNSKU barcode labels as 6x4 inch PDF pages.
package label

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pageops"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

const (
	// MaxQty is the largest number of copies one request may produce
	MaxQty = 500

	pageWidthPt  = 432 // 6 in
	pageHeightPt = 288 // 4 in
	dpi          = 200
	pointsPerIn  = 72
)

// Request describes one label and how many copies to print
type Request struct {
	FNSKU string
	Price string
	Qty   int
}

// Normalize trims the text fields
func (r Request) Normalize() Request {
	r.FNSKU = strings.TrimSpace(r.FNSKU)
	r.Price = strings.TrimSpace(r.Price)
	return r
}

// Validate checks the request after normalization
func (r Request) Validate() error {
	if r.FNSKU == "" {
		return pdf.Validationf("FNSKU is required.")
	}
	if r.Qty < 1 || r.Qty > MaxQty {
		return pdf.Validationf("Qty must be between 1 and %d.", MaxQty)
	}
	return nil
}

// Generate renders req.Qty identical label pages into one PDF
func Generate(ctx context.Context, req Request) ([]byte, error) {
	const op = "label.generate"

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, pdf.NewOpError(op, err)
	}

	img, err := Render(req)
	if err != nil {
		return nil, pdf.NewOpError(op, err)
	}
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return nil, pdf.NewOpError(op, fmt.Errorf("failed to encode label image: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := imagePage(&encoded)
	if err != nil {
		return nil, pdf.NewOpError(op, err)
	}
	if req.Qty == 1 {
		return page, nil
	}
	return pageops.Repeat(ctx, page, req.Qty)
}

// imagePage places one image so that it fills a 6x4 inch page
func imagePage(img io.Reader) ([]byte, error) {
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: pageWidthPt, Height: pageHeightPt}
	imp.UserDim = true
	// Full sizes the page to the image's pixels
	imp.Pos = types.Center
	imp.Scale = 1
	imp.ScaleAbs = false

	conf := model.NewDefaultConfiguration()
	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, []io.Reader{img}, imp, conf); err != nil {
		return nil, fmt.Errorf("failed to build label page: %w", err)
	}
	return buf.Bytes(), nil
}

// px converts points to pixels at the render resolution
func px(pt float64) int {
	return int(pt * dpi / pointsPerIn)
}

// Render paints a single label. The layout follows the printed 6x4 form: title at
// the top left, the barcode across the middle, the FNSKU and price centred below.
func Render(req Request) (*image.RGBA, error) {
	req = req.Normalize()
	if req.FNSKU == "" {
		return nil, pdf.Validationf("FNSKU is required.")
	}

	bc, err := code128.Encode(req.FNSKU)
	if err != nil {
		return nil, pdf.Validationf("FNSKU cannot be encoded as Code 128.")
	}

	w, h := px(pageWidthPt), px(pageHeightPt)
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	face, err := newFaces()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	margin := px(0.35 * pointsPerIn)

	// title baseline sits one margin below the top edge
	drawText(canvas, face.title, "FNSKU LABEL", margin, margin+px(16), false)

	barHeight := px(1.6 * pointsPerIn)
	if err := drawBarcode(canvas, bc, image.Rect(margin, h/2-barHeight/2, w-margin, h/2+barHeight/2)); err != nil {
		return nil, err
	}

	drawText(canvas, face.code, req.FNSKU, w/2, h-margin-px(0.7*pointsPerIn), true)

	if req.Price != "" {
		drawText(canvas, face.price, face.currency+req.Price, w/2, h-margin-px(0.25*pointsPerIn), true)
	}
	return canvas, nil
}

// drawBarcode scales bc to the height of area and the largest whole module width
// that fits, then centres it inside area.
func drawBarcode(dst draw.Image, bc barcode.Barcode, area image.Rectangle) error {
	modules := bc.Bounds().Dx()
	if modules <= 0 {
		return fmt.Errorf("empty barcode")
	}
	moduleWidth := max(1, area.Dx()/modules)
	width := min(modules*moduleWidth, area.Dx())

	scaled, err := barcode.Scale(bc, width, area.Dy())
	if err != nil {
		return fmt.Errorf("failed to scale barcode: %w", err)
	}
	left := area.Min.X + (area.Dx()-width)/2
	target := image.Rect(left, area.Min.Y, left+width, area.Max.Y)
	draw.NearestNeighbor.Scale(dst, target, scaled, scaled.Bounds(), draw.Over, nil)
	return nil
}

func drawText(dst draw.Image, face font.Face, text string, x, baseline int, centred bool) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(color.Black), Face: face}
	if centred {
		x -= d.MeasureString(text).Round() / 2
	}
	d.Dot = fixed.P(x, baseline)
	d.DrawString(text)
}

type faces struct {
	title, code, price font.Face
	currency           string
}

func (f faces) Close() {
	for _, face := range []font.Face{f.title, f.code, f.price} {
		if face != nil {
			face.Close()
		}
	}
}

func newFaces() (faces, error) {
	ttf, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return faces{}, fmt.Errorf("failed to parse label font: %w", err)
	}

	var f faces
	for _, spec := range []struct {
		dst  *font.Face
		size float64
	}{
		{&f.title, 16},
		{&f.code, 18},
		{&f.price, 22},
	} {
		face, err := opentype.NewFace(ttf, &opentype.FaceOptions{Size: spec.size, DPI: dpi, Hinting: font.HintingFull})
		if err != nil {
			f.Close()
			return faces{}, fmt.Errorf("failed to create font face: %w", err)
		}
		*spec.dst = face
	}

	f.currency = CurrencyPrefix(ttf)
	return f, nil
}

// CurrencyPrefix returns the rupee sign when the font can draw it, else "Rs. "
func CurrencyPrefix(f *sfnt.Font) string {
	var buf sfnt.Buffer
	if idx, err := f.GlyphIndex(&buf, '₹'); err == nil && idx != 0 {
		return "₹ "
	}
	return "Rs. "
}
