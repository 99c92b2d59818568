package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font/opentype"

	"github.com/ByLCY/certify/config"
	"github.com/ByLCY/certify/dsl"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/idalloc"
	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/renderer"
	canvasrenderer "github.com/ByLCY/certify/renderer/canvas"
	"github.com/ByLCY/certify/renderer/raster"
)

var templates = raster.NewTemplateCache()

// loadConfig reads the --config file over the defaults.
func loadConfig(opts *rootOpts) (config.Config, error) {
	path := ""
	if opts != nil {
		path = opts.configPath
	}
	return config.Load(path)
}

// loadLayout parses a layout file, or returns the built-in layout when
// path is empty.
func loadLayout(path string) (*layout.Template, error) {
	if strings.TrimSpace(path) == "" {
		return layout.DefaultTemplate(), nil
	}
	doc, err := dsl.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("解析版式文件失败: %w", err)
	}
	tpl, err := layout.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("构建版式失败: %w", err)
	}
	return tpl, nil
}

// resolveFont picks the first usable font in cfg.FontSources order.
// nil selects degraded rendering.
func resolveFont(cfg config.Config, tpl *layout.Template, logger *log.Logger) *opentype.Font {
	f, src, err := fonts.Shared().First(cfg.FontSources(tpl.Font.Src, tpl.Font.Fallback)...)
	if err != nil {
		logger.Debug("font resolution failed", "err", err)
		return nil
	}
	logger.Debug("font resolved", "src", src)
	return f
}

// newCompositor builds the raster compositor for tpl. noFont forces
// degraded rendering.
func newCompositor(cfg config.Config, tpl *layout.Template, noFont bool, logger *log.Logger) *raster.Compositor {
	var f *opentype.Font
	if !noFont {
		f = resolveFont(cfg, tpl, logger)
	}
	c := raster.New(f,
		raster.WithFitOptions(tpl.FitOptions()),
		raster.WithCompensation(cfg.Compensation()),
	)
	if !c.Scalable() {
		logger.Warn("no scalable font, text will use the fallback face", "forced", noFont)
	}
	return c
}

func newPDFRenderer(cfg config.Config) renderer.Renderer {
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{DPI: cfg.DPI})
}

// newAllocator builds the certificate number allocator. The returned
// closer releases the redis connection when one was opened.
func newAllocator(ctx context.Context, cfg config.Config, logger *log.Logger) (*idalloc.Allocator, io.Closer, error) {
	var gen idalloc.Generator
	switch cfg.IDs.Strategy {
	case config.StrategyUUID:
		gen = idalloc.UUID{Prefix: cfg.IDs.Prefix}
	default:
		gen = idalloc.Digits{Prefix: cfg.IDs.Prefix, Width: cfg.IDs.Digits}
	}
	return newRegistryAllocator(ctx, cfg, gen, logger)
}

func newRegistryAllocator(ctx context.Context, cfg config.Config, gen idalloc.Generator, logger *log.Logger) (*idalloc.Allocator, io.Closer, error) {
	alloc := idalloc.New(gen, idalloc.NewMemoryRegistry())
	alloc.MaxAttempts = cfg.IDs.MaxAttempts
	if cfg.IDs.RedisAddr == "" {
		return alloc, nopCloser{}, nil
	}
	reg, client, err := idalloc.DialRedis(ctx, cfg.IDs.RedisAddr, cfg.IDs.RedisKey)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("using redis id registry", "addr", cfg.IDs.RedisAddr, "key", reg.Key())
	alloc.Registry = reg
	return alloc, client, nil
}

// staffRegistryKey derives the redis set for staff codes from the
// certificate-number set so the two never share claims.
func staffRegistryKey(cfg config.Config) string {
	key := cfg.IDs.RedisKey
	if key == "" {
		key = idalloc.DefaultRedisKey
	}
	return key + ":staff"
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
