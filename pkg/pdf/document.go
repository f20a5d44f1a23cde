package pdf

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
)

// PDFDocument implements the Document interface over pages decoded by one backend
type PDFDocument struct {
	backend string
	pages   []Page
}

// Option configures how a document is opened
type Option func(*openConfig)

type openConfig struct {
	rotation int
	text     textExtractionConfig
	logger   logrus.FieldLogger
}

func newOpenConfig(opts []Option) openConfig {
	config := openConfig{
		text:   defaultTextConfig(),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

// WithRotation adds delta degrees to every page's own rotation before geometry is computed
func WithRotation(delta int) Option {
	return func(c *openConfig) {
		c.rotation = delta
	}
}

// WithXTolerance sets the horizontal gap that separates words
func WithXTolerance(tolerance float64) Option {
	return func(c *openConfig) {
		c.text.XTolerance = tolerance
	}
}

// WithYTolerance sets the baseline tolerance for grouping glyphs into lines
func WithYTolerance(tolerance float64) Option {
	return func(c *openConfig) {
		c.text.YTolerance = tolerance
	}
}

// WithLogger routes decoder fallbacks and warnings to logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *openConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Open reads a PDF file and returns a Document
func Open(filepath string, opts ...Option) (Document, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return OpenBytes(data, opts...)
}

// OpenBytes decodes an in-memory PDF. The ledongthuc backend is tried first;
// dslipak is the fallback when it cannot parse the file.
func OpenBytes(data []byte, opts ...Option) (Document, error) {
	if !HasPDFMagic(data) {
		return nil, NewOpError("pdf.open", Decodef("Could not read PDF."))
	}
	config := newOpenConfig(opts)

	doc, err := openWithLedongthuc(bytes.NewReader(data), int64(len(data)), config)
	if err == nil {
		return doc, nil
	}
	config.logger.WithError(err).Debug("ledongthuc backend failed, falling back to dslipak")

	doc, fallbackErr := openWithDslipak(bytes.NewReader(data), int64(len(data)), config)
	if fallbackErr == nil {
		return doc, nil
	}
	return nil, NewOpError("pdf.open", DecodeError("Could not read PDF.", err))
}

// HasPDFMagic reports whether the %PDF- header appears within the first 1024 bytes
func HasPDFMagic(data []byte) bool {
	head := data[:min(len(data), 1024)]
	return bytes.Contains(head, []byte("%PDF-"))
}

// Backend names the library that decoded the document
func (d *PDFDocument) Backend() string {
	return d.backend
}

// GetPages returns all pages in the document
func (d *PDFDocument) GetPages() []Page {
	return d.pages
}

// GetPage returns a specific page by index (0-based)
func (d *PDFDocument) GetPage(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

// PageCount returns the total number of pages
func (d *PDFDocument) PageCount() int {
	return len(d.pages)
}

// Close releases resources associated with the document
func (d *PDFDocument) Close() error {
	d.pages = nil
	return nil
}

// dictValue is the object model shared by the ledongthuc and dslipak readers
type dictValue[V any] interface {
	Key(key string) V
	Index(i int) V
	Len() int
	IsNull() bool
	Float64() float64
}

// inherited looks key up on the page and then on its ancestors in the page tree
func inherited[V dictValue[V]](page V, key string) V {
	v := page
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
		v = v.Key("Parent")
	}
	var zero V
	return zero
}

func rectValue[V dictValue[V]](v V) (BoundingBox, bool) {
	if v.Len() != 4 {
		return BoundingBox{}, false
	}
	box := BoundingBox{
		X0: v.Index(0).Float64(),
		Y0: v.Index(1).Float64(),
		X1: v.Index(2).Float64(),
		Y1: v.Index(3).Float64(),
	}.Normalize()
	return box, !box.IsEmpty()
}

// visibleBox returns the CropBox limited to the MediaBox, or the MediaBox when no
// usable CropBox exists. Pages without either default to US Letter.
func visibleBox[V dictValue[V]](page V) BoundingBox {
	media, ok := rectValue(inherited(page, "MediaBox"))
	if !ok {
		media = BoundingBox{X0: 0, Y0: 0, X1: 612, Y1: 792}
	}
	if crop, ok := rectValue(inherited(page, "CropBox")); ok {
		if c := crop.Clamp(media); !c.IsEmpty() {
			return c
		}
	}
	return media
}

func pageRotation[V dictValue[V]](page V) int {
	return int(math.Round(inherited(page, "Rotate").Float64()))
}
