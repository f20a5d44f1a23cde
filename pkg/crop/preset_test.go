package crop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuiltins(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ajio_label",
		"amazon_label",
		"flipkart_label",
		"glowroad_label",
		"jiomart_label",
		"meesho_label",
		"myntra_label",
		"shopsy_label",
		"snapdeal_label",
	}, reg.Names())

	meesho, ok := reg.Lookup("meesho_label")
	require.True(t, ok)
	assert.Equal(t, KindAboveAnchor, meesho.Kind)
	assert.Equal(t, DefaultInvoiceVariants, meesho.AboveAnchor.Variants)
	assert.Equal(t, 12.0, meesho.AboveAnchor.Padding)

	flipkart, ok := reg.Lookup("flipkart_label")
	require.True(t, ok)
	assert.Equal(t, Padding{Left: 129, Top: 5, Right: -20, Bottom: -20}, flipkart.TightLabel.Padding)
}

func TestRegistryResolve(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		name     string
		req      Request
		wantName string
		wantErr  error
	}{
		{name: "above anchor preset", req: Request{Preset: "meesho_label"}, wantName: "above_anchor"},
		{name: "tight label preset", req: Request{Preset: "flipkart_label", Rotate: 90}, wantName: "tight_label"},
		{name: "ratio preset", req: Request{Preset: "amazon_label"}, wantName: "ratio"},
		{name: "manual ratios", req: Request{Ratios: &Ratios{0.1, 0.1, 0.9, 0.9}}, wantName: "ratio"},
		{name: "unknown preset", req: Request{Preset: "ebay_label"}, wantErr: pdf.ErrValidation},
		{name: "missing preset", req: Request{}, wantErr: pdf.ErrValidation},
		{name: "inverted manual ratios", req: Request{Ratios: &Ratios{0.5, 0.1, 0.3, 0.9}}, wantErr: pdf.ErrValidation},
		{name: "bad rotation", req: Request{Preset: "amazon_label", Rotate: 45}, wantErr: pdf.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := reg.Resolve(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, strategy.Name())
		})
	}
}

func TestRegistryResolveManualIsStrict(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	strategy, err := reg.Resolve(Request{Ratios: &Ratios{0, 0, 0.5, 0.5}})
	require.NoError(t, err)
	region, ok := strategy.(RatioRegion)
	require.True(t, ok)
	assert.True(t, region.Strict)
}

func TestRegistryLoadOverlay(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	overlay := []byte(`
presets:
  meesho_label:
    kind: above_anchor
    above_anchor:
      padding: 20
  ebay_label:
    kind: ratio
    ratios: {x0: 0, y0: 0.5, x1: 1, y1: 1}
`)
	require.NoError(t, reg.Load(overlay))

	meesho, _ := reg.Lookup("meesho_label")
	assert.Equal(t, 20.0, meesho.AboveAnchor.Padding)
	assert.Equal(t, 50.0, meesho.AboveAnchor.MinKeep)
	assert.Equal(t, DefaultInvoiceVariants, meesho.AboveAnchor.Variants)

	strategy, err := reg.Resolve(Request{Preset: "ebay_label"})
	require.NoError(t, err)
	got, err := strategy.Region(newFakePage(600, 800))
	require.NoError(t, err)
	assert.Equal(t, box(0, 400, 600, 800), got)
	assert.Contains(t, reg.Names(), "ebay_label")
}

func TestRegistryLoadRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown kind", "presets:\n  x:\n    kind: fuzzy\n"},
		{"ratio without ratios", "presets:\n  x:\n    kind: ratio\n"},
		{"empty ratios", "presets:\n  x:\n    kind: ratio\n    ratios: {x0: 1, y0: 0, x1: 1, y1: 1}\n"},
		{"bad fallback", "presets:\n  x:\n    kind: tight_label\n    tight_label:\n      fallback_keep_ratio: 0\n"},
		{"no variants", "presets:\n  x:\n    kind: above_anchor\n    above_anchor:\n      variants: []\n"},
		{"not yaml", "presets: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry()
			require.NoError(t, err)
			assert.Error(t, reg.Load([]byte(tt.yaml)))
			assert.NotContains(t, reg.Names(), "x")
		})
	}
}

func TestRegistryLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  bottom_half:\n    kind: ratio\n    ratios: {x0: 0, y0: 0.5, x1: 1, y1: 1}\n"), 0o600))

	reg, err := NewRegistry()
	require.NoError(t, err)
	require.NoError(t, reg.LoadFile(path))
	assert.Contains(t, reg.Names(), "bottom_half")

	assert.Error(t, reg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
