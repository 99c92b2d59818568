package canvasrenderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/renderer"
)

// DefaultDPI is the pixel density assumed when sizing the PDF page.
const DefaultDPI = 96.0

const mmPerInch = 25.4

// Renderer exports a composed certificate as a single-page PDF via
// github.com/tdewolff/canvas. The page takes the raster's aspect ratio.
type Renderer struct {
	dpi float64
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the PDF renderer.
type Options struct {
	DPI float64 // <= 0 时使用 DefaultDPI
}

// NewRenderer creates a PDF renderer with the default DPI.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a PDF renderer.
func NewRendererWithOptions(opts Options) *Renderer {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{dpi: dpi}
}

// PageSize 返回页面尺寸（mm）。
func (r *Renderer) PageSize(result *layout.Result) (width, height float64) {
	if result == nil || result.Image == nil {
		return 0, 0
	}
	b := result.Image.Bounds()
	return float64(b.Dx()) / r.dpi * mmPerInch, float64(b.Dy()) / r.dpi * mmPerInch
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Image == nil || result.Image.Bounds().Empty() {
		return nil, fmt.Errorf("缺少可渲染的图像")
	}

	width, height := r.PageSize(result)
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	r.applyMeta(writer, result.Meta)

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与图像保持左上角为原点
	ctx.DrawImage(0, 0, result.Image, canvas.DPMM(r.dpi/mmPerInch))
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}
