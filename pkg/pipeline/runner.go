package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/cache"
	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

const artifactKeyType = "artifact"

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute lays doc out and renders every requested format. Artifacts found
// in the cache are returned without building a session.
func (r *Runner) Execute(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	doc, err := doc.Select(opts.Slices...)
	if err != nil {
		return nil, err
	}
	canonical, err := doc.Canonical()
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	result := &Result{
		DocHash:   cache.Hash(canonical),
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}
	result.Stats.Slices = len(doc.Slices)

	if !opts.Refresh {
		if artifacts, ok := r.cached(ctx, result.DocHash, opts); ok {
			result.Artifacts = artifacts
			result.CacheHit = true
			r.Logger.Debug("artifacts from cache", "hash", result.DocHash[:12], "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	s, err := session.New(ctx, doc, session.Options{LayoutID: opts.LayoutID, Logger: r.Logger})
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Session = s
	result.Stats.Nodes = s.Len()
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("laid out document",
		"slices", result.Stats.Slices,
		"nodes", result.Stats.Nodes,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := Render(ctx, s, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(result.DocHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, artifactKeyType, len(data))
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// cached returns every requested artifact, or false if any is missing.
func (r *Runner) cached(ctx context.Context, docHash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, artifactKeyType)
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, artifactKeyType)
		artifacts[format] = data
	}
	return artifacts, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
