// Package pipeline turns documents into rendered artifacts.
//
// The pipeline has two stages:
//
//  1. Layout: build a [session.Session] from the document
//  2. Render: serialize the session in each requested format
//
// A [Runner] wraps both stages with an artifact cache keyed by the
// document's canonical JSON and the render options, so the CLI and the
// server share one caching path.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/cache"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

// DefaultScale is the PNG resolution multiplier.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatNodelink = "nodelink"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Formats lists the artifacts to produce. Defaults to svg.
	Formats []string `json:"formats,omitempty"`
	// Slices restricts the document to the named slices, in that order.
	Slices []string `json:"slices,omitempty"`
	// MinWidth widens the SVG canvas to at least this many units.
	MinWidth float64 `json:"min_width,omitempty"`
	// Scale is the PNG resolution multiplier.
	Scale float64 `json:"scale,omitempty"`
	// Detailed adds node IDs and types to dot and nodelink labels.
	Detailed bool `json:"detailed,omitempty"`
	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	LayoutID string      `json:"-"`
	Logger   *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Session is the laid-out document. It is nil when every artifact came
	// from the cache.
	Session *session.Session

	// DocHash is the content hash of the (sliced) document.
	DocHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit is true when every artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Slices     int
	Nodes      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, dot, nodelink)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.MinWidth < 0 {
		return fmt.Errorf("min_width must not be negative, got %v", o.MinWidth)
	}
	if o.Scale < 0 {
		return fmt.Errorf("scale must not be negative, got %v", o.Scale)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Slices: o.Slices}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		k.MinWidth = o.MinWidth
	case FormatDOT, FormatNodelink:
		k.Detailed = o.Detailed
	case FormatJSON:
		k.Layout = o.LayoutID
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
