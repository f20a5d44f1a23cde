package label

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pageops"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantMsg string
	}{
		{name: "valid", req: Request{FNSKU: "X001ABCDEF", Qty: 1}},
		{name: "max qty", req: Request{FNSKU: "X001ABCDEF", Qty: 500}},
		{name: "blank fnsku", req: Request{FNSKU: "   ", Qty: 1}, wantMsg: "FNSKU is required."},
		{name: "zero qty", req: Request{FNSKU: "X001", Qty: 0}, wantMsg: "Qty must be between 1 and 500."},
		{name: "qty too large", req: Request{FNSKU: "X001", Qty: 501}, wantMsg: "Qty must be between 1 and 500."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Normalize().Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, pdf.ErrValidation)
			msg, _ := pdf.Message(err)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestRender(t *testing.T) {
	img, err := Render(Request{FNSKU: " X001ABCDEF ", Price: "499", Qty: 1})
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, px(pageWidthPt), bounds.Dx())
	assert.Equal(t, px(pageHeightPt), bounds.Dy())

	// the middle row crosses the barcode, which must contain both bars and gaps
	var dark, light int
	y := bounds.Dy() / 2
	for x := 0; x < bounds.Dx(); x++ {
		gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
		if gray.Y < 128 {
			dark++
		} else {
			light++
		}
	}
	assert.Greater(t, dark, 100)
	assert.Greater(t, light, 100)

	// corners stay blank
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(bounds.Dx()-1, bounds.Dy()-1))
}

func TestRenderRejectsUnencodable(t *testing.T) {
	_, err := Render(Request{FNSKU: "X001é中"})
	assert.ErrorIs(t, err, pdf.ErrValidation)
}

func TestCurrencyPrefix(t *testing.T) {
	ttf, err := opentype.Parse(gobold.TTF)
	require.NoError(t, err)
	assert.Contains(t, []string{"₹ ", "Rs. "}, CurrencyPrefix(ttf))
}

func TestGenerate(t *testing.T) {
	out, err := Generate(context.Background(), Request{FNSKU: "X001ABCDEF", Price: "199", Qty: 3})
	require.NoError(t, err)

	n, err := pageops.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	dims, err := api.PageDims(bytes.NewReader(out), model.NewDefaultConfiguration())
	require.NoError(t, err)
	require.Len(t, dims, 3)
	for _, d := range dims {
		assert.InDelta(t, 432, d.Width, 0.5)
		assert.InDelta(t, 288, d.Height, 0.5)
	}
}

func TestGenerateSingle(t *testing.T) {
	out, err := Generate(context.Background(), Request{FNSKU: "X001ABCDEF", Qty: 1})
	require.NoError(t, err)

	n, err := pageops.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGenerateValidation(t *testing.T) {
	_, err := Generate(context.Background(), Request{FNSKU: "X001", Qty: 0})
	assert.ErrorIs(t, err, pdf.ErrValidation)
}
