package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/renderer"
	"github.com/ByLCY/certify/renderer/raster"
)

// composeOpts holds the flags of the compose command.
type composeOpts struct {
	template string
	font     string
	noFont   bool
	layout   string
	data     string // JSON 文本，或 @path 读取文件
	output   string
	pdf      string
	debug    string
}

func newComposeCmd(root *rootOpts) *cobra.Command {
	opts := composeOpts{output: "output/certificate.png"}

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose a layout onto a template image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.template, "template", "t", "", "模板图片路径（默认取配置）")
	f.StringVar(&opts.font, "font", "", "字体文件或 embed:goregular")
	f.BoolVar(&opts.noFont, "no-font", false, "不使用可缩放字体（后备字体渲染）")
	f.StringVarP(&opts.layout, "layout", "l", "", "版式 DSL 文件（默认内置证书版式）")
	f.StringVarP(&opts.data, "data", "d", "", "绑定数据 JSON，或 @file.json")
	f.StringVarP(&opts.output, "out", "o", opts.output, "PNG 输出路径")
	f.StringVar(&opts.pdf, "pdf", "", "同时导出 PDF 到该路径")
	f.StringVar(&opts.debug, "debug", "", "排版调试 JSON 输出路径")

	return cmd
}

func runCompose(cmd *cobra.Command, root *rootOpts, opts composeOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if opts.template != "" {
		cfg.Template = opts.template
	}
	if opts.font != "" {
		cfg.Font = opts.font
	}

	data, err := readData(opts.data)
	if err != nil {
		return err
	}
	tpl, err := loadLayout(firstNonEmpty(opts.layout, cfg.Layout))
	if err != nil {
		return err
	}
	img, err := templates.Load(cfg.Template)
	if err != nil {
		return err
	}

	compositor := newCompositor(cfg, tpl, opts.noFont, logger)
	res, err := compositor.Compose(img, tpl.Bind(data, img.Bounds()))
	if err != nil {
		return err
	}
	res.Meta = tpl.Meta
	for _, line := range res.Lines {
		logger.Debug("line fitted", "role", line.Role, "size", line.Size, "width", line.Width, "x", line.X, "y", line.Y, "fits", line.Fits)
	}
	if res.Degraded {
		logger.Warn("composed with the fallback face")
	}

	if err := writeResult(&raster.PNGRenderer{}, res, opts.output); err != nil {
		return err
	}
	if opts.pdf != "" {
		if err := writeResult(newPDFRenderer(cfg), res, opts.pdf); err != nil {
			return err
		}
	}
	if opts.debug != "" {
		if err := layout.WriteDebugJSON(res, opts.debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	prog.done("Composed " + opts.output)
	return nil
}

func writeResult(r renderer.Renderer, res *layout.Result, path string) error {
	out, err := r.Render(res)
	if err != nil {
		return fmt.Errorf("渲染 %s 失败: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

// readData decodes inline JSON or, with an "@" prefix, a JSON file.
func readData(value string) (any, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw := []byte(value)
	if strings.HasPrefix(value, "@") {
		b, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return nil, fmt.Errorf("读取数据文件失败: %w", err)
		}
		raw = b
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
