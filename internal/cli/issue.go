package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ByLCY/certify/certificate"
	"github.com/ByLCY/certify/renderer"
)

// inputDateLayout 是命令行与批量文件中日期的格式。
const inputDateLayout = "2006-01-02"

// issueOpts holds the flags of the issue command.
type issueOpts struct {
	staff  certificate.Staff
	course courseFlags
	batch  string
	noFont bool
	pdf    bool
	outDir string
}

// courseFlags is a course with dates kept as text until parsed.
type courseFlags struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	SubColumn string `json:"sub_column"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// batchEntry is one element of a --batch JSON array.
type batchEntry struct {
	Staff  certificate.Staff `json:"staff"`
	Course courseFlags       `json:"course"`
}

func newIssueCmd(root *rootOpts) *cobra.Command {
	var opts issueOpts

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue certificates and print their share links",
		Long: `Issue composes a certificate for each staff/course pair, numbers it,
writes the image into the output directory and prints a WhatsApp share link.
Use --batch with a JSON array of {"staff": {...}, "course": {...}} objects to
issue several certificates concurrently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssue(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.staff.FullName, "name", "", "员工姓名")
	f.StringVar(&opts.staff.Code, "staff-code", "", "员工编号")
	f.StringVar(&opts.staff.Role, "role", "", "员工角色（Intern/Employee）")
	f.StringVar(&opts.course.Name, "course", "", "课程名称")
	f.StringVar(&opts.course.Code, "course-code", "", "课程编号")
	f.StringVar(&opts.course.SubColumn, "sub", "", "课程副标题")
	f.StringVar(&opts.course.StartDate, "start", "", "开课日期 YYYY-MM-DD")
	f.StringVar(&opts.course.EndDate, "end", "", "结课日期 YYYY-MM-DD")
	f.StringVar(&opts.batch, "batch", "", "批量签发的 JSON 文件")
	f.BoolVar(&opts.noFont, "no-font", false, "不使用可缩放字体（后备字体渲染）")
	f.BoolVar(&opts.pdf, "pdf", false, "同时导出 PDF")
	f.StringVarP(&opts.outDir, "out-dir", "o", "", "输出目录（默认取配置）")

	return cmd
}

func runIssue(cmd *cobra.Command, root *rootOpts, opts issueOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		cfg.OutputDir = opts.outDir
	}
	if opts.pdf {
		cfg.PDF = true
	}

	reqs, err := issueRequests(opts)
	if err != nil {
		return err
	}

	tpl, err := loadLayout(cfg.Layout)
	if err != nil {
		return err
	}
	img, err := templates.Load(cfg.Template)
	if err != nil {
		return err
	}
	ids, closer, err := newAllocator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	var pdf renderer.Renderer
	if cfg.PDF {
		pdf = newPDFRenderer(cfg)
	}
	issuer, err := certificate.NewIssuer(certificate.Options{
		Template:   img,
		Layout:     tpl,
		Compositor: newCompositor(cfg, tpl, opts.noFont, logger),
		PDF:        pdf,
		IDs:        ids,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	records, err := issuer.IssueBatch(ctx, reqs, cfg.Concurrency)
	if err != nil {
		return err
	}

	share := certificate.Share{BaseURL: cfg.Share.BaseURL, MediaPath: cfg.Share.MediaPath}
	out := cmd.OutOrStdout()
	for _, rec := range records {
		paths, err := rec.WriteFiles(cfg.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", rec.ID, strings.Join(paths, ","), share.Link(rec))
	}
	prog.done(fmt.Sprintf("Issued %d certificate(s)", len(records)))
	return nil
}

// issueRequests collects requests from --batch or the single-issue flags.
func issueRequests(opts issueOpts) ([]certificate.Request, error) {
	if opts.batch == "" {
		course, err := opts.course.parse()
		if err != nil {
			return nil, err
		}
		return []certificate.Request{{Staff: opts.staff, Course: course}}, nil
	}

	raw, err := os.ReadFile(opts.batch)
	if err != nil {
		return nil, fmt.Errorf("读取批量文件失败: %w", err)
	}
	var entries []batchEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("解析批量文件失败: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("批量文件 %s 为空", opts.batch)
	}
	reqs := make([]certificate.Request, 0, len(entries))
	for i, e := range entries {
		course, err := e.Course.parse()
		if err != nil {
			return nil, fmt.Errorf("第 %d 项: %w", i+1, err)
		}
		reqs = append(reqs, certificate.Request{Staff: e.Staff, Course: course})
	}
	return reqs, nil
}

func (c courseFlags) parse() (certificate.Course, error) {
	start, err := parseDate(c.StartDate)
	if err != nil {
		return certificate.Course{}, fmt.Errorf("开课日期: %w", err)
	}
	end, err := parseDate(c.EndDate)
	if err != nil {
		return certificate.Course{}, fmt.Errorf("结课日期: %w", err)
	}
	return certificate.Course{
		Code:      c.Code,
		Name:      c.Name,
		SubColumn: c.SubColumn,
		StartDate: start,
		EndDate:   end,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(inputDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析日期 %q（应为 YYYY-MM-DD）", s)
	}
	return t, nil
}
