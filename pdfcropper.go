// Package pdfcropper crops PDF pages to shipping labels and other regions of interest.
// It ties the page geometry views of pkg/pdf, the crop strategies of pkg/crop and the
// page rewriting of pkg/pageops into a single call.
package pdfcropper

import (
	"context"

	"github.com/pyhub-apps/pdfcropper-golang/pkg/crop"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pageops"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

// Re-export types from the sub-packages for the public API
type (
	Document    = pdf.Document
	Page        = pdf.Page
	BoundingBox = pdf.BoundingBox
	Option      = pdf.Option
	Strategy    = crop.Strategy
	Ratios      = crop.Ratios
	Request     = crop.Request
	Registry    = crop.Registry
)

// Re-export option functions and errors
var (
	WithRotation   = pdf.WithRotation
	WithLogger     = pdf.WithLogger
	WithXTolerance = pdf.WithXTolerance
	WithYTolerance = pdf.WithYTolerance

	ErrValidation    = pdf.ErrValidation
	ErrInputTooLarge = pdf.ErrInputTooLarge
	ErrDecode        = pdf.ErrDecode
)

// Open opens a PDF file and returns a Document
func Open(filepath string, opts ...Option) (Document, error) {
	return pdf.Open(filepath, opts...)
}

// OpenBytes decodes an in-memory PDF
func OpenBytes(data []byte, opts ...Option) (Document, error) {
	return pdf.OpenBytes(data, opts...)
}

// NewRegistry returns the built-in crop presets
func NewRegistry() (*Registry, error) {
	return crop.NewRegistry()
}

// Crop rotates every page of data by rotate degrees, derives one crop box per page
// with strategy and returns the rewritten document.
func Crop(ctx context.Context, data []byte, strategy Strategy, rotate int, opts ...Option) ([]byte, error) {
	if !pdf.ValidRotation(rotate) {
		return nil, pdf.NewOpError("pdfcropper.crop", pdf.Validationf("rotate_degrees must be one of 0, 90, 180, 270."))
	}

	doc, err := pdf.OpenBytes(data, append(opts, pdf.WithRotation(rotate))...)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	boxes, err := crop.Document(ctx, doc, strategy)
	if err != nil {
		return nil, err
	}

	crops := make([]pageops.PageCrop, len(boxes))
	for i, box := range boxes {
		crops[i] = pageops.PageCrop{Box: box, Rotate: rotate}
	}
	return pageops.Crop(ctx, data, crops)
}
