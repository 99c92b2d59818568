package raster

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/renderer"
)

// Compositor draws fitted, horizontally centered lines onto a copy of a
// template. It holds no mutable state and is safe for concurrent use;
// font faces are created per Compose call because x/image faces are not.
type Compositor struct {
	font       *opentype.Font // nil 时使用固定尺寸的后备字体
	fallback   font.Face
	fit        layout.FitOptions
	compensate bool
}

var _ renderer.Compositor = (*Compositor)(nil)

// Option configures a Compositor.
type Option func(*Compositor)

// WithFitOptions sets the floor and step of the font-size search.
func WithFitOptions(opts layout.FitOptions) Option {
	return func(c *Compositor) { c.fit = opts }
}

// WithCompensation 控制后备字体下是否按 TextSpec.Repeat 逐像素下移重复绘制以模拟加粗。
func WithCompensation(on bool) Option {
	return func(c *Compositor) { c.compensate = on }
}

// WithFallbackFace replaces the built-in fixed-size fallback face.
func WithFallbackFace(face font.Face) Option {
	return func(c *Compositor) {
		if face != nil {
			c.fallback = face
		}
	}
}

// New creates a compositor. A nil font selects degraded rendering with the
// fixed-size fallback face.
func New(f *opentype.Font, opts ...Option) *Compositor {
	c := &Compositor{
		font:       f,
		fallback:   basicfont.Face7x13,
		fit:        layout.DefaultFitOptions(),
		compensate: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scalable reports whether a scalable font is available.
func (c *Compositor) Scalable() bool { return c.font != nil }

// Compose 在模板副本上绘制 lines，返回新的图像与逐行排版信息。模板本身不会被修改。
func (c *Compositor) Compose(template image.Image, lines []layout.TextSpec) (*layout.Result, error) {
	if template == nil {
		return nil, &TemplateLoadError{Err: errors.New("模板为空")}
	}
	bounds := template.Bounds()
	if bounds.Empty() {
		return nil, &TemplateLoadError{Err: fmt.Errorf("模板尺寸无效: %v", bounds)}
	}

	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, template, bounds.Min, draw.Src)

	faces := newFaceSet(c.font)
	defer faces.close()

	res := &layout.Result{
		Image:    dst,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Lines:    make([]layout.FittedLine, 0, len(lines)),
		Degraded: c.font == nil,
	}
	for _, spec := range lines {
		line := c.drawLine(dst, spec, faces)
		if !line.Scalable {
			res.Degraded = true
		}
		res.Lines = append(res.Lines, line)
	}
	return res, nil
}

func (c *Compositor) drawLine(dst *image.RGBA, spec layout.TextSpec, faces *faceSet) layout.FittedLine {
	bounds := dst.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	line := layout.FittedLine{
		Role:     spec.Role,
		Content:  spec.Content,
		MaxWidth: spec.ResolveMaxWidth(width),
		Y:        spec.TargetY,
		Draws:    1,
	}

	var face font.Face
	if c.font != nil {
		start := spec.ResolveStartSize(height)
		size, w, fits := layout.FitFontSize(spec.Content, start, line.MaxWidth, faces, c.fit)
		if f, err := faces.face(size); err == nil {
			face = f
			line.Size, line.Width, line.Fits, line.Scalable = size, w, fits, true
		}
	}
	if face == nil {
		face = c.fallback
		line.Size = face.Metrics().Height.Ceil()
		line.Width = font.MeasureString(face, spec.Content).Ceil()
		line.Fits = line.Width <= line.MaxWidth
		if c.compensate && spec.Repeat > 1 {
			line.Draws = spec.Repeat
		}
	}

	line.X = bounds.Min.X + layout.CenterX(line.Width, width)
	if spec.Content == "" {
		return line
	}
	src := image.NewUniform(spec.Color.RGBA())
	ascent := face.Metrics().Ascent.Ceil()
	for i := 0; i < line.Draws; i++ {
		d := &font.Drawer{
			Dst:  dst,
			Src:  src,
			Face: face,
			Dot:  fixed.P(line.X, line.Y+i+ascent),
		}
		d.DrawString(spec.Content)
	}
	return line
}

// faceSet 在一次合成内按字号缓存字体面，并实现 layout.Measurer。
type faceSet struct {
	font  *opentype.Font
	faces map[int]font.Face
}

func newFaceSet(f *opentype.Font) *faceSet {
	return &faceSet{font: f, faces: map[int]font.Face{}}
}

func (s *faceSet) face(size int) (font.Face, error) {
	if f, ok := s.faces[size]; ok {
		return f, nil
	}
	if s.font == nil {
		return nil, errors.New("没有可缩放字体")
	}
	if size <= 0 {
		return nil, fmt.Errorf("字号 %d 无效", size)
	}
	f, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72, // 72 DPI 下字号即像素
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 %d 号字体面失败: %w", size, err)
	}
	s.faces[size] = f
	return f, nil
}

// MeasureText returns the advance width of content, rounded up to whole pixels.
func (s *faceSet) MeasureText(content string, size int) (int, error) {
	f, err := s.face(size)
	if err != nil {
		return 0, err
	}
	return font.MeasureString(f, content).Ceil(), nil
}

func (s *faceSet) close() {
	for _, f := range s.faces {
		f.Close()
	}
}
