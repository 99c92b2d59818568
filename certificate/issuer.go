package certificate

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/certify/idalloc"
	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/renderer"
	"github.com/ByLCY/certify/renderer/raster"
)

// Options configures an Issuer. Template and Compositor are required.
type Options struct {
	Template   image.Image
	Layout     *layout.Template // nil 时使用 layout.DefaultTemplate()
	Compositor renderer.Compositor
	PNG        renderer.Renderer // nil 时使用 raster.PNGRenderer
	PDF        renderer.Renderer // nil 时不导出 PDF
	IDs        *idalloc.Allocator
	Logger     *log.Logger
	Now        func() time.Time
}

// Issuer turns requests into certificate records. It is safe for
// concurrent use when its Compositor and renderers are.
type Issuer struct {
	template   image.Image
	layout     *layout.Template
	compositor renderer.Compositor
	png        renderer.Renderer
	pdf        renderer.Renderer
	ids        *idalloc.Allocator
	logger     *log.Logger
	now        func() time.Time
}

// NewIssuer validates opts and fills in defaults.
func NewIssuer(opts Options) (*Issuer, error) {
	if opts.Template == nil || opts.Template.Bounds().Empty() {
		return nil, &raster.TemplateLoadError{Err: fmt.Errorf("模板图像为空")}
	}
	if opts.Compositor == nil {
		return nil, fmt.Errorf("compositor 不能为空")
	}
	is := &Issuer{
		template:   opts.Template,
		layout:     opts.Layout,
		compositor: opts.Compositor,
		png:        opts.PNG,
		pdf:        opts.PDF,
		ids:        opts.IDs,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if is.layout == nil {
		is.layout = layout.DefaultTemplate()
	}
	if is.png == nil {
		is.png = &raster.PNGRenderer{}
	}
	if is.ids == nil {
		is.ids = idalloc.New(idalloc.CertificateNumbers(), idalloc.NewMemoryRegistry())
	}
	if is.logger == nil {
		is.logger = log.Default()
	}
	if is.now == nil {
		is.now = time.Now
	}
	return is, nil
}

// Issue composes, encodes and numbers one certificate. The number is
// allocated last so failed compositions do not consume identifiers.
func (is *Issuer) Issue(ctx context.Context, staff Staff, course Course) (*Record, error) {
	req := Request{Staff: staff, Course: course}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := is.layout.Bind(req.Data(), is.template.Bounds())
	res, err := is.compositor.Compose(is.template, lines)
	if err != nil {
		return nil, fmt.Errorf("合成证书失败: %w", err)
	}
	res.Meta = is.meta(req)
	if res.Degraded {
		is.logger.Warn("no scalable font, using fallback face", "staff", staff.FullName, "course", course.Name)
	}
	for _, line := range res.Lines {
		if !line.Fits && line.Content != "" {
			is.logger.Warn("text overflows width limit", "role", line.Role, "size", line.Size, "width", line.Width, "max", line.MaxWidth)
		}
		is.logger.Debug("line fitted", "role", line.Role, "size", line.Size, "x", line.X, "y", line.Y)
	}

	pngBytes, err := is.png.Render(res)
	if err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	var pdfBytes []byte
	if is.pdf != nil {
		if pdfBytes, err = is.pdf.Render(res); err != nil {
			return nil, fmt.Errorf("导出 PDF 失败: %w", err)
		}
	}

	id, err := is.ids.Allocate(ctx)
	if err != nil {
		return nil, fmt.Errorf("分配证书编号失败: %w", err)
	}

	rec := &Record{
		ID:          id,
		Staff:       staff,
		Course:      course,
		IssueDate:   course.EndDate,
		GeneratedOn: is.now(),
		FileName:    FileName(staff, course),
		PNG:         pngBytes,
		PDF:         pdfBytes,
		Degraded:    res.Degraded,
		Lines:       res.Lines,
	}
	is.logger.Info("certificate issued", "id", rec.ID, "staff", staff.FullName, "course", course.Name)
	return rec, nil
}

// IssueBatch issues reqs with at most limit concurrent compositions.
// Records keep the order of reqs; the first error cancels the rest.
func (is *Issuer) IssueBatch(ctx context.Context, reqs []Request, limit int) ([]*Record, error) {
	records := make([]*Record, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			rec, err := is.Issue(gctx, req.Staff, req.Course)
			if err != nil {
				return fmt.Errorf("第 %d 份证书（%s）: %w", i+1, req.Staff.FullName, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (is *Issuer) meta(req Request) layout.DocumentMeta {
	meta := is.layout.Meta
	if meta.Subject == "" {
		meta.Subject = CourseSentence(req.Course)
	}
	if meta.Author == "" {
		meta.Author = "Certificate Team"
	}
	meta.Keywords = append(append([]string(nil), meta.Keywords...), req.Staff.FullName, req.Course.Name)
	return meta
}

// WriteFiles writes the PNG (and the PDF when present) into dir and
// returns the written paths.
func (r *Record) WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	pngPath := filepath.Join(dir, r.FileName)
	if err := os.WriteFile(pngPath, r.PNG, 0o644); err != nil {
		return nil, fmt.Errorf("写入 PNG 文件失败: %w", err)
	}
	paths := []string{pngPath}
	if len(r.PDF) > 0 {
		pdfPath := filepath.Join(dir, strings.TrimSuffix(r.FileName, ".png")+".pdf")
		if err := os.WriteFile(pdfPath, r.PDF, 0o644); err != nil {
			return paths, fmt.Errorf("写入 PDF 文件失败: %w", err)
		}
		paths = append(paths, pdfPath)
	}
	return paths, nil
}
