package pageops

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
)

// ParseOrder parses a comma separated list of 1-based page numbers.
// Blank items are skipped and pages may repeat.
func ParseOrder(order string, pageCount int) ([]int, error) {
	var pages []int
	for _, item := range strings.Split(order, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, pdf.Validationf("Invalid order format. Use comma-separated numbers.")
		}
		pages = append(pages, n)
	}

	if len(pages) == 0 {
		return nil, pdf.Validationf("Order cannot be empty.")
	}
	for _, n := range pages {
		if n < 1 || n > pageCount {
			return nil, pdf.Validationf("Order contains out-of-range pages. PDF has %d pages.", pageCount)
		}
	}
	return pages, nil
}

// Rearrange builds a document whose pages are the pages of data in the given order
func Rearrange(c context.Context, data []byte, order string) ([]byte, error) {
	const op = "pageops.rearrange"

	conf := newConfiguration()
	ctx, err := readContext(data, conf)
	if err != nil {
		return nil, pdf.NewOpError(op, err)
	}
	pages, err := ParseOrder(order, ctx.PageCount)
	if err != nil {
		return nil, pdf.NewOpError(op, err)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	return collect(data, pages, op)
}

// Repeat builds a document holding count copies of page 1 of data
func Repeat(c context.Context, data []byte, count int) ([]byte, error) {
	const op = "pageops.repeat"

	if count < 1 {
		return nil, pdf.NewOpError(op, pdf.Validationf("count must be positive"))
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	pages := make([]int, count)
	for i := range pages {
		pages[i] = 1
	}
	return collect(data, pages, op)
}

func collect(data []byte, pages []int, op string) ([]byte, error) {
	selected := make([]string, len(pages))
	for i, n := range pages {
		selected[i] = strconv.Itoa(n)
	}

	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(data), &buf, selected, newConfiguration()); err != nil {
		return nil, pdf.NewOpError(op, pdf.DecodeError("Could not read PDF.", err))
	}
	return buf.Bytes(), nil
}
