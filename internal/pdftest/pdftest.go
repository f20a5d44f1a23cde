// Package pdftest writes small, well-formed PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Page describes one page of a generated document
type Page struct {
	MediaBox [4]float64
	CropBox  *[4]float64
	Rotate   int
	Content  string // raw content stream operators
	Forms    []Form // form XObjects the content can paint with Do
}

// Form is a form XObject. Its font resource is the document font F1.
type Form struct {
	Name    string
	Matrix  *[6]float64
	Content string
}

// Letter returns an empty US Letter page
func Letter() Page {
	return Page{MediaBox: [4]float64{0, 0, 612, 792}}
}

// Sized returns an empty page of the given size
func Sized(width, height float64) Page {
	return Page{MediaBox: [4]float64{0, 0, width, height}}
}

// GlyphWidth is the advance of every character of the embedded font, in text space units
const GlyphWidth = 600

// Text shows s at (x, y) in user space using the document font
func Text(x, y, size float64, s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
	return fmt.Sprintf("BT /F1 %g Tf %g %g Td (%s) Tj ET\n", size, x, y, escaped)
}

// Rect fills the rectangle with lower-left corner (x, y)
func Rect(x, y, w, h float64) string {
	return fmt.Sprintf("%g %g %g %g re f\n", x, y, w, h)
}

// Line strokes a segment from (x0, y0) to (x1, y1) with the given line width
func Line(x0, y0, x1, y1, width float64) string {
	return fmt.Sprintf("%g w %g %g m %g %g l S\n", width, x0, y0, x1, y1)
}

// Build writes a PDF containing pages. Every page shares one Courier font
// resource named F1 that carries explicit glyph widths.
func Build(pages ...Page) []byte {
	if len(pages) == 0 {
		pages = []Page{Letter()}
	}

	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	catalog := add("") // patched below
	tree := add("")
	widths := strings.TrimSpace(strings.Repeat(fmt.Sprintf("%d ", GlyphWidth), 126-32+1))
	font := add(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths))

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		content := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(p.Content), p.Content))
		var dict strings.Builder
		fmt.Fprintf(&dict, "<< /Type /Page /Parent %d 0 R /MediaBox %s", tree, array(p.MediaBox))
		if p.CropBox != nil {
			fmt.Fprintf(&dict, " /CropBox %s", array(*p.CropBox))
		}
		if p.Rotate != 0 {
			fmt.Fprintf(&dict, " /Rotate %d", p.Rotate)
		}
		var xobjects strings.Builder
		for _, f := range p.Forms {
			var matrix string
			if f.Matrix != nil {
				m := *f.Matrix
				matrix = fmt.Sprintf(" /Matrix [%g %g %g %g %g %g]", m[0], m[1], m[2], m[3], m[4], m[5])
			}
			ref := add(fmt.Sprintf("<< /Type /XObject /Subtype /Form /BBox %s%s /Resources << /Font << /F1 %d 0 R >> >> /Length %d >>\nstream\n%s\nendstream",
				array(p.MediaBox), matrix, font, len(f.Content), f.Content))
			fmt.Fprintf(&xobjects, " /%s %d 0 R", f.Name, ref)
		}
		fmt.Fprintf(&dict, " /Resources << /Font << /F1 %d 0 R >>", font)
		if xobjects.Len() > 0 {
			fmt.Fprintf(&dict, " /XObject <<%s >>", xobjects.String())
		}
		fmt.Fprintf(&dict, " >> /Contents %d 0 R >>", content)
		kids = append(kids, fmt.Sprintf("%d 0 R", add(dict.String())))
	}
	objects[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree)
	objects[tree-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, catalog, xref)
	return buf.Bytes()
}

func array(v [4]float64) string {
	return fmt.Sprintf("[%g %g %g %g]", v[0], v[1], v[2], v[3])
}
