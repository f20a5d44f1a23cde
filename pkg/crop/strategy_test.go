package crop

import (
	"math"
	"testing"

	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatiosValidate(t *testing.T) {
	tests := []struct {
		name    string
		ratios  Ratios
		wantErr bool
	}{
		{"inner region", Ratios{0.1, 0.1, 0.9, 0.9}, false},
		{"whole page", Ratios{0, 0, 1, 1}, false},
		{"inverted x", Ratios{0.5, 0.1, 0.3, 0.9}, true},
		{"inverted y", Ratios{0.1, 0.9, 0.9, 0.1}, true},
		{"zero width", Ratios{0.4, 0.1, 0.4, 0.9}, true},
		{"negative", Ratios{-0.1, 0, 1, 1}, true},
		{"above one", Ratios{0, 0, 1.2, 1}, true},
		{"NaN", Ratios{math.NaN(), 0, 1, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ratios.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, pdf.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRatioRegion(t *testing.T) {
	page := newFakePage(600, 800)

	t.Run("manual region", func(t *testing.T) {
		got, err := RatioRegion{Ratios: Ratios{0.1, 0.1, 0.9, 0.9}, Strict: true}.Region(page)
		require.NoError(t, err)
		assert.InDelta(t, 60, got.X0, 1e-9)
		assert.InDelta(t, 80, got.Y0, 1e-9)
		assert.InDelta(t, 540, got.X1, 1e-9)
		assert.InDelta(t, 720, got.Y1, 1e-9)
	})

	t.Run("manual region rejects inverted ratios", func(t *testing.T) {
		_, err := RatioRegion{Ratios: Ratios{0.5, 0.1, 0.3, 0.9}, Strict: true}.Region(page)
		assert.ErrorIs(t, err, pdf.ErrValidation)
	})

	t.Run("manual region does not clamp", func(t *testing.T) {
		_, err := RatioRegion{Ratios: Ratios{-0.2, 0, 1.5, 0.5}, Strict: true}.Region(page)
		assert.ErrorIs(t, err, pdf.ErrValidation)
	})

	t.Run("preset region clamps", func(t *testing.T) {
		got, err := RatioRegion{Ratios: Ratios{-0.2, 0, 1.5, 0.5}}.Region(page)
		require.NoError(t, err)
		assert.Equal(t, box(0, 0, 600, 400), got)
	})

	t.Run("preset region empty after clamping", func(t *testing.T) {
		_, err := RatioRegion{Ratios: Ratios{1.2, 0, 1.5, 0.5}}.Region(page)
		assert.ErrorIs(t, err, pdf.ErrValidation)
	})

	t.Run("offset page box", func(t *testing.T) {
		offset := newFakePage(0, 0)
		offset.rect = box(100, 50, 300, 250)
		got, err := RatioRegion{Ratios: Ratios{0, 0, 1, 0.5}}.Region(offset)
		require.NoError(t, err)
		assert.Equal(t, box(100, 50, 300, 150), got)
	})

	t.Run("degenerate page", func(t *testing.T) {
		_, err := RatioRegion{Ratios: Ratios{0, 0, 1, 1}}.Region(newFakePage(600, 0))
		assert.ErrorIs(t, err, pdf.ErrGeometryDegenerate)
	})
}

func TestRatioRegionContainedInPage(t *testing.T) {
	page := newFakePage(595, 842)
	steps := []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1}
	for _, x0 := range steps {
		for _, x1 := range steps {
			for _, y0 := range steps {
				for _, y1 := range steps {
					ratios := Ratios{x0, y0, x1, y1}
					if ratios.Validate() != nil {
						continue
					}
					got, err := RatioRegion{Ratios: ratios, Strict: true}.Region(page)
					require.NoError(t, err, "ratios %s", ratios)
					assert.True(t, page.GetBBox().ContainsBox(got), "ratios %s gave %+v", ratios, got)
					assert.False(t, got.IsEmpty(), "ratios %s gave %+v", ratios, got)
				}
			}
		}
	}
}

func TestAboveAnchor(t *testing.T) {
	s := DefaultAboveAnchor()

	t.Run("anchor found", func(t *testing.T) {
		page := newFakePage(600, 800).withText("TAX INVOICE", box(40, 300, 160, 314))
		got, err := s.Region(page)
		require.NoError(t, err)
		assert.Equal(t, box(0, 0, 600, 312), got)
	})

	t.Run("anchor missing uses fallback ratio", func(t *testing.T) {
		got, err := s.Region(newFakePage(600, 1000))
		require.NoError(t, err)
		assert.Equal(t, box(0, 0, 600, 550), got)
	})

	t.Run("anchor at page top keeps minimum height", func(t *testing.T) {
		page := newFakePage(600, 800).withText("Invoice", box(10, 0, 60, 10))
		got, err := s.Region(page)
		require.NoError(t, err)
		assert.Equal(t, 50.0, got.Y1)
	})

	t.Run("anchor near page bottom is clamped", func(t *testing.T) {
		page := newFakePage(600, 800).withText("INVOICE", box(10, 795, 60, 805))
		got, err := s.Region(page)
		require.NoError(t, err)
		assert.Equal(t, 800.0, got.Y1)
	})

	t.Run("page shorter than minimum height", func(t *testing.T) {
		page := newFakePage(600, 30).withText("Invoice", box(10, 0, 60, 10))
		got, err := s.Region(page)
		require.NoError(t, err)
		assert.Equal(t, box(0, 0, 600, 30), got)
	})

	t.Run("earlier variant decides the cut", func(t *testing.T) {
		page := newFakePage(600, 800).
			withText("Tax Invoice", box(10, 400, 100, 412)).
			withText("Invoice", box(10, 100, 60, 112))
		got, err := s.Region(page)
		require.NoError(t, err)
		assert.Equal(t, 412.0, got.Y1)
	})
}

func TestTightLabel(t *testing.T) {
	s := DefaultTightLabel()

	t.Run("footer cut with padded content", func(t *testing.T) {
		page := newFakePage(600, 800).withText("Not for resale", box(200, 688, 320, 700))
		page.drawings = []pdf.BoundingBox{box(200, 100, 400, 600)}
		page.blocks = []pdf.BoundingBox{box(0, 760, 600, 790)}

		got, err := s.Region(page)
		require.NoError(t, err)
		// content spans 100..700 vertically once the footer text is included
		assert.Equal(t, box(71, 95, 380, 680), got)
		assert.LessOrEqual(t, got.Y1, 730.0)
		assert.True(t, page.GetBBox().ContainsBox(got))
	})

	t.Run("footer cut position", func(t *testing.T) {
		page := newFakePage(600, 800).withText("Not for resale", box(200, 688, 320, 700))
		bottomY := s.footerCut(page, page.GetBBox(), loggerOrStandard(nil))
		assert.Equal(t, 730.0, bottomY)
	})

	t.Run("footer near page bottom clamps cut", func(t *testing.T) {
		page := newFakePage(600, 800).withText("not for resale", box(200, 780, 320, 790))
		bottomY := s.footerCut(page, page.GetBBox(), loggerOrStandard(nil))
		assert.Equal(t, 800.0, bottomY)
	})

	t.Run("no footer cuts at fallback ratio", func(t *testing.T) {
		page := newFakePage(600, 1000)
		bottomY := s.footerCut(page, page.GetBBox(), loggerOrStandard(nil))
		assert.InDelta(t, 700, bottomY, 1e-9)
	})

	t.Run("no content pads the full-width cut", func(t *testing.T) {
		got, err := s.Region(newFakePage(600, 1000))
		require.NoError(t, err)
		assert.InDelta(t, 0, got.X0, 1e-9)
		assert.InDelta(t, 0, got.Y0, 1e-9)
		assert.InDelta(t, 580, got.X1, 1e-9)
		assert.InDelta(t, 680, got.Y1, 1e-9)
	})

	t.Run("content below the cut only", func(t *testing.T) {
		page := newFakePage(600, 800).withText("Not for resale", box(200, 100, 320, 110))
		page.runs = nil
		page.blocks = []pdf.BoundingBox{box(0, 300, 600, 500)}
		got, err := s.Region(page)
		require.NoError(t, err)
		assert.Equal(t, box(0, 0, 580, 120), got)
	})

	t.Run("padding collapse returns the unpadded box", func(t *testing.T) {
		page := newFakePage(600, 800).withText("Not for resale", box(300, 100, 310, 110))
		got, err := s.Region(page)
		require.NoError(t, err)
		assert.Equal(t, box(300, 100, 310, 110), got)
	})

	t.Run("degenerate page", func(t *testing.T) {
		_, err := s.Region(newFakePage(0, 800))
		assert.ErrorIs(t, err, pdf.ErrGeometryDegenerate)
	})
}

func TestStrategiesNeverDegenerate(t *testing.T) {
	pages := map[string]*fakePage{
		"blank":          newFakePage(600, 800),
		"tiny":           newFakePage(10, 10),
		"content below":  func() *fakePage { p := newFakePage(600, 800); p.blocks = []pdf.BoundingBox{box(0, 790, 600, 800)}; return p }(),
		"sliver content": func() *fakePage { p := newFakePage(600, 800); p.drawings = []pdf.BoundingBox{box(10, 50, 10, 50)}; return p }(),
		"NaN content":    func() *fakePage { p := newFakePage(600, 800); p.runs = []pdf.BoundingBox{box(math.NaN(), 0, 1, 1)}; return p }(),
		"anchor at top": newFakePage(600, 800).
			withText("TAX INVOICE", box(0, 0, 100, 10)).
			withText("Not for", box(0, -40, 100, -35)),
		"footer off page": newFakePage(600, 800).withText("Not for resale", box(0, 900, 100, 910)),
	}
	strategies := []Strategy{
		RatioRegion{Ratios: Ratios{0, 0, 1, 0.5}},
		DefaultAboveAnchor(),
		DefaultTightLabel(),
	}

	for name, page := range pages {
		for _, strategy := range strategies {
			t.Run(name+"/"+strategy.Name(), func(t *testing.T) {
				got, err := strategy.Region(page)
				require.NoError(t, err)
				assert.False(t, got.IsEmpty(), "got %+v", got)
				assert.True(t, page.GetBBox().ContainsBox(got), "got %+v", got)
			})
		}
	}
}
