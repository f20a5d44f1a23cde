package crop

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresets []byte

// Kind selects the strategy a preset uses
type Kind string

const (
	KindRatio       Kind = "ratio"
	KindAboveAnchor Kind = "above_anchor"
	KindTightLabel  Kind = "tight_label"
)

// Preset is one named entry of the preset table. Exactly one of the strategy
// settings is set, matching Kind.
type Preset struct {
	Kind        Kind
	Ratios      *Ratios
	AboveAnchor *AboveAnchor
	TightLabel  *TightLabel
}

// UnmarshalYAML decodes a preset, starting strategy settings from their defaults
// so a table entry only needs to name the values it changes.
func (p *Preset) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Kind        Kind      `yaml:"kind"`
		Ratios      *Ratios   `yaml:"ratios"`
		AboveAnchor yaml.Node `yaml:"above_anchor"`
		TightLabel  yaml.Node `yaml:"tight_label"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*p = Preset{Kind: raw.Kind}
	switch raw.Kind {
	case KindRatio:
		if raw.Ratios == nil {
			return fmt.Errorf("line %d: ratio preset needs ratios", value.Line)
		}
		p.Ratios = raw.Ratios
	case KindAboveAnchor:
		s := DefaultAboveAnchor()
		if !raw.AboveAnchor.IsZero() {
			if err := raw.AboveAnchor.Decode(&s); err != nil {
				return err
			}
		}
		p.AboveAnchor = &s
	case KindTightLabel:
		s := DefaultTightLabel()
		if !raw.TightLabel.IsZero() {
			if err := raw.TightLabel.Decode(&s); err != nil {
				return err
			}
		}
		p.TightLabel = &s
	default:
		return fmt.Errorf("line %d: unknown preset kind %q", value.Line, raw.Kind)
	}
	return nil
}

// validate checks settings that would make a strategy unable to produce a box
func (p Preset) validate() error {
	switch p.Kind {
	case KindRatio:
		c := p.Ratios.Clamped()
		if !(c.X1 > c.X0) || !(c.Y1 > c.Y0) {
			return fmt.Errorf("ratios %s are empty after clamping", p.Ratios)
		}
	case KindAboveAnchor:
		if len(p.AboveAnchor.Variants) == 0 {
			return fmt.Errorf("above_anchor needs at least one variant")
		}
		if r := p.AboveAnchor.FallbackKeepRatio; !(r > 0 && r <= 1) {
			return fmt.Errorf("fallback_keep_ratio %g outside (0,1]", r)
		}
	case KindTightLabel:
		if len(p.TightLabel.FooterVariants) == 0 {
			return fmt.Errorf("tight_label needs at least one footer variant")
		}
		if r := p.TightLabel.FallbackKeepRatio; !(r > 0 && r <= 1) {
			return fmt.Errorf("fallback_keep_ratio %g outside (0,1]", r)
		}
	default:
		return fmt.Errorf("unknown preset kind %q", p.Kind)
	}
	return nil
}

// Request selects how a document is cropped: either a named preset or manual ratios
type Request struct {
	Preset string
	Ratios *Ratios
	Rotate int
}

// Validate checks the parts of a request that do not depend on the preset table
func (r Request) Validate() error {
	if !pdf.ValidRotation(r.Rotate) {
		return pdf.Validationf("rotate_degrees must be one of 0, 90, 180, 270.")
	}
	if r.Ratios != nil {
		return r.Ratios.Validate()
	}
	if r.Preset == "" {
		return pdf.Validationf("Preset is required.")
	}
	return nil
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger routes strategy fallback messages to logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry holds the preset table and turns requests into strategies.
// It is read-only once built and safe for concurrent use.
type Registry struct {
	presets map[string]Preset
	logger  logrus.FieldLogger
}

// NewRegistry returns a registry loaded with the built-in presets
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		presets: make(map[string]Preset),
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Load(defaultPresets); err != nil {
		return nil, fmt.Errorf("built-in presets: %w", err)
	}
	return r, nil
}

// Load merges a YAML preset table into the registry. Entries replace presets of the same name.
func (r *Registry) Load(data []byte) error {
	var table struct {
		Presets map[string]Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to parse presets: %w", err)
	}
	for name, preset := range table.Presets {
		if err := preset.validate(); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}
	for name, preset := range table.Presets {
		r.presets[name] = preset
	}
	return nil
}

// LoadFile merges the preset table stored at path
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read presets file: %w", err)
	}
	return r.Load(data)
}

// Names returns the preset names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the preset registered under name
func (r *Registry) Lookup(name string) (Preset, bool) {
	p, ok := r.presets[name]
	return p, ok
}

// Resolve validates req and returns the strategy that serves it.
// Manual ratios always yield a strict RatioRegion.
func (r *Registry) Resolve(req Request) (Strategy, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Ratios != nil {
		return RatioRegion{Ratios: *req.Ratios, Strict: true}, nil
	}

	preset, ok := r.presets[req.Preset]
	if !ok {
		return nil, pdf.Validationf("Unknown preset.")
	}
	log := r.logger.WithField("preset", req.Preset)
	switch preset.Kind {
	case KindAboveAnchor:
		s := *preset.AboveAnchor
		s.logger = log
		return s, nil
	case KindTightLabel:
		s := *preset.TightLabel
		s.logger = log
		return s, nil
	default:
		return RatioRegion{Ratios: *preset.Ratios}, nil
	}
}
