package pageops

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"golang.org/x/sync/errgroup"
)

// Merge concatenates inputs in order into a single document.
// Every input is validated before any output is produced.
func Merge(c context.Context, inputs [][]byte) ([]byte, error) {
	const op = "pageops.merge"

	if len(inputs) < 2 {
		return nil, pdf.NewOpError(op, pdf.Validationf("Upload at least 2 PDFs."))
	}

	g, gctx := errgroup.WithContext(c)
	for i, data := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := readContext(data, newConfiguration()); err != nil {
				return fmt.Errorf("file %d: %w", i+1, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, pdf.NewOpError(op, err)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readSeekers(inputs), &buf, false, newConfiguration()); err != nil {
		return nil, pdf.NewOpError(op, pdf.DecodeError("Could not merge PDFs.", err))
	}
	return buf.Bytes(), nil
}
