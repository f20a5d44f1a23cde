package pageops

import (
	"bytes"
	"context"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pyhub-apps/pdfcropper-golang/internal/pdftest"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAttrs(t *testing.T, data []byte) []*model.InheritedPageAttrs {
	t.Helper()
	ctx, err := api.ReadContext(bytes.NewReader(data), newConfiguration())
	require.NoError(t, err)
	require.NoError(t, ctx.EnsurePageCount())

	attrs := make([]*model.InheritedPageAttrs, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, a, err := ctx.PageDict(i, false)
		require.NoError(t, err)
		require.NotNil(t, a)
		attrs = append(attrs, a)
	}
	return attrs
}

func assertRect(t *testing.T, want pdf.BoundingBox, got pdf.BoundingBox) {
	t.Helper()
	assert.InDelta(t, want.X0, got.X0, 0.01)
	assert.InDelta(t, want.Y0, got.Y0, 0.01)
	assert.InDelta(t, want.X1, got.X1, 0.01)
	assert.InDelta(t, want.Y1, got.Y1, 0.01)
}

func TestPageCount(t *testing.T) {
	n, err := PageCount(pdftest.Build(pdftest.Letter(), pdftest.Letter(), pdftest.Letter()))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = PageCount([]byte("not a pdf at all"))
	assert.ErrorIs(t, err, pdf.ErrDecode)
}

func TestCrop(t *testing.T) {
	src := pdftest.Build(pdftest.Sized(600, 800), pdftest.Sized(600, 800))

	out, err := Crop(context.Background(), src, []PageCrop{
		{Box: pdf.BoundingBox{X0: 0, Y0: 0, X1: 600, Y1: 312}},
		{Box: pdf.BoundingBox{X0: 0, Y0: 0, X1: 400, Y1: 600}, Rotate: 90},
	})
	require.NoError(t, err)

	attrs := readAttrs(t, out)
	require.Len(t, attrs, 2)

	require.NotNil(t, attrs[0].CropBox)
	assertRect(t, pdf.BoundingBox{X0: 0, Y0: 488, X1: 600, Y1: 800}, rectangleBox(attrs[0].CropBox))
	assert.Equal(t, 0, attrs[0].Rotate)

	// the left half of the rotated page is the bottom half of the original
	require.NotNil(t, attrs[1].CropBox)
	assertRect(t, pdf.BoundingBox{X0: 0, Y0: 0, X1: 600, Y1: 400}, rectangleBox(attrs[1].CropBox))
	assert.Equal(t, 90, attrs[1].Rotate)
}

func TestCropAddsToExistingRotation(t *testing.T) {
	page := pdftest.Sized(600, 800)
	page.Rotate = 270
	src := pdftest.Build(page)

	out, err := Crop(context.Background(), src, []PageCrop{{Rotate: 180}})
	require.NoError(t, err)

	attrs := readAttrs(t, out)
	assert.Equal(t, 90, attrs[0].Rotate)
}

func TestCropErrors(t *testing.T) {
	src := pdftest.Build(pdftest.Letter())

	_, err := Crop(context.Background(), src, nil)
	assert.Error(t, err)

	_, err = Crop(context.Background(), src, []PageCrop{{Rotate: 45}})
	assert.ErrorIs(t, err, pdf.ErrValidation)

	_, err = Crop(context.Background(), []byte("%PDF-1.4 truncated"), []PageCrop{{}})
	assert.ErrorIs(t, err, pdf.ErrDecode)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Crop(ctx, src, []PageCrop{{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToUserSpace(t *testing.T) {
	visible := pdf.BoundingBox{X0: 0, Y0: 0, X1: 600, Y1: 800}
	offset := pdf.BoundingBox{X0: 10, Y0: 20, X1: 610, Y1: 820}

	tests := []struct {
		name     string
		display  pdf.BoundingBox
		rotation int
		visible  pdf.BoundingBox
		want     pdf.BoundingBox
	}{
		{"top band", pdf.BoundingBox{X0: 0, Y0: 0, X1: 600, Y1: 100}, 0, visible, pdf.BoundingBox{X0: 0, Y0: 700, X1: 600, Y1: 800}},
		{"offset media box", pdf.BoundingBox{X0: 0, Y0: 0, X1: 600, Y1: 100}, 0, offset, pdf.BoundingBox{X0: 10, Y0: 720, X1: 610, Y1: 820}},
		{"upside down top band", pdf.BoundingBox{X0: 0, Y0: 0, X1: 600, Y1: 100}, 180, visible, pdf.BoundingBox{X0: 0, Y0: 0, X1: 600, Y1: 100}},
		{"rotated 90 left strip", pdf.BoundingBox{X0: 0, Y0: 0, X1: 100, Y1: 600}, 90, visible, pdf.BoundingBox{X0: 0, Y0: 0, X1: 600, Y1: 100}},
		{"rotated 270 left strip", pdf.BoundingBox{X0: 0, Y0: 0, X1: 100, Y1: 600}, 270, visible, pdf.BoundingBox{X0: 0, Y0: 700, X1: 600, Y1: 800}},
		{"clamped to page", pdf.BoundingBox{X0: -50, Y0: -50, X1: 700, Y1: 900}, 0, visible, visible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRect(t, tt.want, toUserSpace(tt.display, tt.rotation, tt.visible))
		})
	}
}

func TestMerge(t *testing.T) {
	a := pdftest.Build(pdftest.Letter())
	b := pdftest.Build(pdftest.Sized(300, 400), pdftest.Sized(300, 400))

	out, err := Merge(context.Background(), [][]byte{a, b})
	require.NoError(t, err)

	attrs := readAttrs(t, out)
	require.Len(t, attrs, 3)
	assert.InDelta(t, 612, attrs[0].MediaBox.Width(), 0.01)
	assert.InDelta(t, 300, attrs[2].MediaBox.Width(), 0.01)
}

func TestMergeErrors(t *testing.T) {
	a := pdftest.Build(pdftest.Letter())

	_, err := Merge(context.Background(), [][]byte{a})
	assert.ErrorIs(t, err, pdf.ErrValidation)
	msg, ok := pdf.Message(err)
	assert.True(t, ok)
	assert.Equal(t, "Upload at least 2 PDFs.", msg)

	_, err = Merge(context.Background(), [][]byte{a, []byte("garbage that is not a document")})
	assert.ErrorIs(t, err, pdf.ErrDecode)
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name    string
		order   string
		want    []int
		wantMsg string
	}{
		{name: "simple", order: "3,1,2", want: []int{3, 1, 2}},
		{name: "spaces and blanks", order: " 2 , ,1,", want: []int{2, 1}},
		{name: "duplicates", order: "1,1,1", want: []int{1, 1, 1}},
		{name: "not a number", order: "1,two", wantMsg: "Invalid order format. Use comma-separated numbers."},
		{name: "empty", order: " , ", wantMsg: "Order cannot be empty."},
		{name: "zero", order: "0,1", wantMsg: "Order contains out-of-range pages. PDF has 3 pages."},
		{name: "past the end", order: "4", wantMsg: "Order contains out-of-range pages. PDF has 3 pages."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrder(tt.order, 3)
			if tt.wantMsg != "" {
				require.ErrorIs(t, err, pdf.ErrValidation)
				msg, _ := pdf.Message(err)
				assert.Equal(t, tt.wantMsg, msg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRearrange(t *testing.T) {
	src := pdftest.Build(pdftest.Sized(600, 800), pdftest.Sized(300, 400))

	out, err := Rearrange(context.Background(), src, "2,1,2")
	require.NoError(t, err)

	attrs := readAttrs(t, out)
	require.Len(t, attrs, 3)
	assert.InDelta(t, 300, attrs[0].MediaBox.Width(), 0.01)
	assert.InDelta(t, 600, attrs[1].MediaBox.Width(), 0.01)
	assert.InDelta(t, 300, attrs[2].MediaBox.Width(), 0.01)

	_, err = Rearrange(context.Background(), src, "3")
	assert.ErrorIs(t, err, pdf.ErrValidation)
}

func TestRepeat(t *testing.T) {
	out, err := Repeat(context.Background(), pdftest.Build(pdftest.Sized(432, 288)), 4)
	require.NoError(t, err)
	assert.Len(t, readAttrs(t, out), 4)

	_, err = Repeat(context.Background(), pdftest.Build(), 0)
	assert.ErrorIs(t, err, pdf.ErrValidation)
}
