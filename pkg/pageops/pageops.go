// Package pageops rewrites PDF documents at the page level: it sets crop boxes and
// rotation, concatenates documents and reorders pages. All operations are in-memory.
package pageops

import (
	"bytes"
	"context"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

func init() {
	// pdfcpu would otherwise create a user config directory on first use
	api.DisableConfigDir()
}

// newConfiguration returns the pdfcpu configuration shared by every operation
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// readContext parses and validates data into a pdfcpu context
func readContext(data []byte, conf *model.Configuration) (*model.Context, error) {
	if !pdf.HasPDFMagic(data) {
		return nil, pdf.Decodef("Could not read PDF.")
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, pdf.DecodeError("Could not read PDF.", err)
	}
	if ctx.PageCount <= 0 {
		return nil, pdf.Decodef("PDF has no pages.")
	}
	return ctx, nil
}

// PageCount returns the number of pages in data
func PageCount(data []byte) (int, error) {
	ctx, err := readContext(data, newConfiguration())
	if err != nil {
		return 0, pdf.NewOpError("pageops.pagecount", err)
	}
	return ctx.PageCount, nil
}

// writeContext serializes ctx, honoring cancellation before the write starts
func writeContext(c context.Context, ctx *model.Context) ([]byte, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readSeekers(inputs [][]byte) []io.ReadSeeker {
	rs := make([]io.ReadSeeker, len(inputs))
	for i, data := range inputs {
		rs[i] = bytes.NewReader(data)
	}
	return rs
}
