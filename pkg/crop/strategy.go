package crop

import (
	"fmt"
	"math"

	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"github.com/sirupsen/logrus"
)

// Strategy maps a page to the rectangle that should remain visible.
// The result always lies inside page.GetBBox().
type Strategy interface {
	// Name identifies the policy in logs and errors
	Name() string

	// Region computes the crop rectangle for page
	Region(page pdf.Page) (pdf.BoundingBox, error)
}

// Ratios describes a region as fractions of the page. (0,0) is the top-left corner
// and (1,1) the bottom-right.
type Ratios struct {
	X0 float64 `yaml:"x0" json:"x0"`
	Y0 float64 `yaml:"y0" json:"y0"`
	X1 float64 `yaml:"x1" json:"x1"`
	Y1 float64 `yaml:"y1" json:"y1"`
}

// Validate rejects ratios outside [0,1] or with inverted edges. NaN never validates.
func (r Ratios) Validate() error {
	if !(0 <= r.X0 && r.X0 < r.X1 && r.X1 <= 1) || !(0 <= r.Y0 && r.Y0 < r.Y1 && r.Y1 <= 1) {
		return pdf.Validationf("Invalid crop ratios. Must be 0..1 and x1>x0, y1>y0.")
	}
	return nil
}

// Clamped limits each ratio to [0,1]
func (r Ratios) Clamped() Ratios {
	clamp := func(v float64) float64 { return math.Max(0, math.Min(1, v)) }
	return Ratios{X0: clamp(r.X0), Y0: clamp(r.Y0), X1: clamp(r.X1), Y1: clamp(r.Y1)}
}

// Rect converts the ratios into a rectangle inside rect
func (r Ratios) Rect(rect pdf.BoundingBox) pdf.BoundingBox {
	w, h := rect.Width(), rect.Height()
	return pdf.BoundingBox{
		X0: rect.X0 + w*r.X0,
		Y0: rect.Y0 + h*r.Y0,
		X1: rect.X0 + w*r.X1,
		Y1: rect.Y0 + h*r.Y1,
	}
}

func (r Ratios) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", r.X0, r.Y0, r.X1, r.Y1)
}

// Padding is applied outward from each edge; negative values pull the edge inward
type Padding struct {
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
}

// RatioRegion crops every page to a fixed fraction of its size.
// Strict regions come from untrusted input and reject out-of-range ratios;
// the others clamp them first.
type RatioRegion struct {
	Ratios Ratios
	Strict bool
}

func (s RatioRegion) Name() string { return "ratio" }

func (s RatioRegion) Region(page pdf.Page) (pdf.BoundingBox, error) {
	rect := page.GetBBox()
	if rect.IsEmpty() {
		return pdf.BoundingBox{}, pdf.ErrGeometryDegenerate
	}

	ratios := s.Ratios
	if s.Strict {
		if err := ratios.Validate(); err != nil {
			return pdf.BoundingBox{}, err
		}
	} else {
		ratios = ratios.Clamped()
		if !(ratios.X1 > ratios.X0) || !(ratios.Y1 > ratios.Y0) {
			return pdf.BoundingBox{}, pdf.Validationf("Invalid crop ratios.")
		}
	}
	return ratios.Rect(rect).Clamp(rect), nil
}

// DefaultInvoiceVariants are the spellings that mark the start of an invoice section
var DefaultInvoiceVariants = []string{
	"TAX INVOICE",
	"Tax Invoice",
	"TAX  INVOICE",
	"Tax  Invoice",
	"INVOICE",
	"Invoice",
}

// AboveAnchor keeps the full-width band above the first anchor phrase on the page
type AboveAnchor struct {
	Variants          []string `yaml:"variants"`
	Padding           float64  `yaml:"padding"`             // kept below the anchor's top edge
	MinKeep           float64  `yaml:"min_keep"`            // lower bound on the kept height
	FallbackKeepRatio float64  `yaml:"fallback_keep_ratio"` // used when no anchor is found

	logger logrus.FieldLogger
}

// DefaultAboveAnchor returns the settings used for invoice-below-label layouts
func DefaultAboveAnchor() AboveAnchor {
	return AboveAnchor{
		Variants:          append([]string(nil), DefaultInvoiceVariants...),
		Padding:           12,
		MinKeep:           50,
		FallbackKeepRatio: 0.55,
	}
}

func (s AboveAnchor) Name() string { return "above_anchor" }

func (s AboveAnchor) Region(page pdf.Page) (pdf.BoundingBox, error) {
	rect := page.GetBBox()
	if rect.IsEmpty() {
		return pdf.BoundingBox{}, pdf.ErrGeometryDegenerate
	}
	log := loggerOrStandard(s.logger).WithFields(logrus.Fields{"strategy": s.Name(), "page": page.GetPageNumber()})

	bottom := rect.Y0 + rect.Height()*s.FallbackKeepRatio
	if anchor, ok := Locate(page, s.Variants); ok {
		lower := min(rect.Y0+s.MinKeep, rect.Y1)
		bottom = math.Max(lower, math.Min(anchor.Y0+s.Padding, rect.Y1))
	} else {
		log.Debug("anchor not found, keeping fallback ratio")
	}

	region := pdf.BoundingBox{X0: rect.X0, Y0: rect.Y0, X1: rect.X1, Y1: bottom}.Clamp(rect)
	if region.IsEmpty() {
		log.WithField("bottom", bottom).Debug("anchor region collapsed, keeping whole page")
		return rect, nil
	}
	return region, nil
}

// DefaultFooterVariants are the spellings of the marker printed under a shipping label
var DefaultFooterVariants = []string{
	"Not for resale",
	"Not for resale.",
	"Not for",
	"not for resale",
}

// TightLabel cuts the page at a footer phrase and then bounds the content left above it
type TightLabel struct {
	FooterVariants    []string `yaml:"footer_variants"`
	FooterMargin      float64  `yaml:"footer_margin"`       // kept below the footer's bottom edge
	FallbackKeepRatio float64  `yaml:"fallback_keep_ratio"` // cut used when no footer is found
	Padding           Padding  `yaml:"padding"`

	logger logrus.FieldLogger
}

// DefaultTightLabel returns the settings used for labels with a resale footer
func DefaultTightLabel() TightLabel {
	return TightLabel{
		FooterVariants:    append([]string(nil), DefaultFooterVariants...),
		FooterMargin:      30,
		FallbackKeepRatio: 0.70,
		Padding:           Padding{Left: 129, Top: 5, Right: -20, Bottom: -20},
	}
}

func (s TightLabel) Name() string { return "tight_label" }

func (s TightLabel) Region(page pdf.Page) (pdf.BoundingBox, error) {
	rect := page.GetBBox()
	if rect.IsEmpty() {
		return pdf.BoundingBox{}, pdf.ErrGeometryDegenerate
	}
	log := loggerOrStandard(s.logger).WithFields(logrus.Fields{"strategy": s.Name(), "page": page.GetPageNumber()})

	bottomY := s.footerCut(page, rect, log)
	cut := pdf.BoundingBox{X0: rect.X0, Y0: rect.Y0, X1: rect.X1, Y1: bottomY}

	base := cut
	if content, ok := AggregatePage(page, bottomY); !ok {
		log.Debug("no content above footer cut")
	} else if bounded := content.Clamp(cut); bounded.IsEmpty() {
		log.WithField("content", content).Debug("content bounds degenerate")
	} else {
		base = bounded
	}

	p := s.Padding
	padded := base.Expand(p.Left, p.Top, p.Right, p.Bottom).Clamp(cut)
	if padded.IsEmpty() {
		log.WithField("box", base).Debug("padding collapsed the label box")
		return base, nil
	}
	return padded, nil
}

// footerCut returns the y coordinate below which content is discarded
func (s TightLabel) footerCut(page pdf.Page, rect pdf.BoundingBox, log logrus.FieldLogger) float64 {
	fallback := rect.Y0 + rect.Height()*s.FallbackKeepRatio
	if !(fallback > rect.Y0) {
		fallback = rect.Y1
	}
	fallback = min(fallback, rect.Y1)

	footer, ok := Locate(page, s.FooterVariants)
	if !ok {
		log.Debug("footer not found, cutting at fallback ratio")
		return fallback
	}
	bottomY := min(rect.Y1, footer.Y1+s.FooterMargin)
	if !(bottomY > rect.Y0) {
		log.WithField("footer", footer).Debug("footer cut above page top, cutting at fallback ratio")
		return fallback
	}
	return bottomY
}

func loggerOrStandard(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
