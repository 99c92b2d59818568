package layout

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/ByLCY/certify/binding"
	"github.com/ByLCY/certify/dsl"
)

// 证书默认版式的比例与无可缩放字体时的重复绘制次数。
const (
	DefaultNameRepeat   = 4
	DefaultCourseRepeat = 2
	DefaultDateRepeat   = 1
)

// DefaultTemplate 返回内置的证书版式：姓名、课程说明与结课日期三行。
func DefaultTemplate() *Template {
	return &Template{
		Name: "certificate",
		Font: FontResource{Name: "Body", Fallback: "embed:goregular"},
		Settings: Settings{
			MaxWidth: Percent(85),
			Floor:    DefaultFloor,
			Step:     DefaultStep,
		},
		Lines: []LineTemplate{
			{Role: "name", Text: "${staff.full_name}", Y: Percent(50), Size: Percent(8), Repeat: DefaultNameRepeat},
			{Role: "course", Text: "Successfully completed the ${course.name} ${course.sub_column?} Course", Y: Percent(60), Size: Percent(4.5), Repeat: DefaultCourseRepeat},
			{Role: "date", Text: "${course.end_date}", Y: Percent(65), Size: Percent(3.2), Repeat: DefaultDateRepeat},
		},
		Meta: DocumentMeta{Title: "Certificate of Completion", Creator: "certify"},
	}
}

// Build 根据 DSL AST 生成版式模板。
func Build(doc *dsl.Document) (*Template, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	tpl := &Template{
		Name: doc.Name,
		Font: FontResource{Name: "Body", Fallback: "embed:goregular"},
		Settings: Settings{
			MaxWidth: Percent(85),
			Floor:    DefaultFloor,
			Step:     DefaultStep,
		},
		Meta: collectMeta(doc),
	}

	for _, section := range doc.Sections {
		switch {
		case section.Resources != nil:
			if font, ok := collectFont(section.Resources.Block); ok {
				tpl.Font = font
			}
		case section.Canvas != nil:
			if err := applySettings(&tpl.Settings, section.Canvas.Block); err != nil {
				return nil, err
			}
		case section.Line != nil:
			line, err := parseLine(section.Line)
			if err != nil {
				return nil, err
			}
			tpl.Lines = append(tpl.Lines, line)
		}
	}

	if len(tpl.Lines) == 0 {
		return nil, fmt.Errorf("版式 %s 中缺少 line 段落", doc.Name)
	}
	return tpl, nil
}

// FitOptions returns the font-size search options of the template.
func (t *Template) FitOptions() FitOptions {
	return FitOptions{Floor: t.Settings.Floor, Step: t.Settings.Step}.normalized()
}

// Bind 将数据代入各行文本，并按模板尺寸解析出像素行位置。
func (t *Template) Bind(data any, bounds image.Rectangle) []TextSpec {
	w, h := bounds.Dx(), bounds.Dy()
	specs := make([]TextSpec, 0, len(t.Lines))
	for _, line := range t.Lines {
		maxWidth := line.MaxWidth
		if maxWidth.IsZero() {
			maxWidth = t.Settings.MaxWidth
		}
		col := t.Settings.Color
		if line.Color != nil {
			col = *line.Color
		}
		spec := TextSpec{
			Role:              line.Role,
			Content:           binding.Interpolate(line.Text, data),
			TargetY:           bounds.Min.Y + line.Y.Resolve(h),
			MaxWidthFraction:  maxWidth.Fraction(w),
			StartSizeFraction: line.Size.Fraction(h),
			Repeat:            line.Repeat,
			Color:             col,
		}
		// 像素单位原样传递，避免经比例换算后截断丢失一个像素
		if maxWidth.Unit == UnitPixel {
			spec.MaxWidth = maxWidth.Resolve(w)
		}
		if line.Size.Unit == UnitPixel {
			spec.StartSize = line.Size.Resolve(h)
		}
		specs = append(specs, spec)
	}
	return specs
}

func parseLine(section *dsl.LineSection) (LineTemplate, error) {
	line := LineTemplate{Role: section.Role, Repeat: 1}
	if section.Block == nil {
		return line, fmt.Errorf("line %s 缺少内容", section.Role)
	}
	var hasY, hasSize bool
	var text strings.Builder
	for _, stmt := range section.Block.Statements {
		if stmt.Text != nil {
			text.WriteString(string(stmt.Text.Value))
			continue
		}
		if stmt.Assignment == nil {
			if stmt.Command != nil {
				return line, fmt.Errorf("%s: line %s 不支持指令 %s", stmt.Command.Pos, section.Role, stmt.Command.Name)
			}
			continue
		}
		key := strings.ToLower(stmt.Assignment.Key)
		val := valueToString(stmt.Assignment.Value)
		var err error
		switch key {
		case "y":
			line.Y, err = ParseMeasure(val)
			hasY = err == nil
		case "size":
			line.Size, err = ParseMeasure(val)
			hasSize = err == nil
		case "max-width":
			line.MaxWidth, err = ParseMeasure(val)
		case "repeat":
			line.Repeat, err = strconv.Atoi(val)
		case "color":
			var c Color
			c, err = parseColor(val)
			line.Color = &c
		case "text":
			text.WriteString(val)
		default:
			return line, fmt.Errorf("%s: line %s 中未知属性 %s", section.Pos, section.Role, stmt.Assignment.Key)
		}
		if err != nil {
			return line, fmt.Errorf("%s: line %s 的 %s 无效: %w", section.Pos, section.Role, key, err)
		}
	}
	if !hasY || !hasSize {
		return line, fmt.Errorf("%s: line %s 需要同时设置 y 与 size", section.Pos, section.Role)
	}
	line.Text = text.String()
	return line, nil
}

func applySettings(s *Settings, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			return fmt.Errorf("canvas 只接受 key: value 形式的设置")
		}
		key := strings.ToLower(stmt.Assignment.Key)
		val := valueToString(stmt.Assignment.Value)
		var err error
		switch key {
		case "max-width":
			s.MaxWidth, err = ParseMeasure(val)
		case "floor":
			s.Floor, err = strconv.Atoi(val)
		case "step":
			s.Step, err = strconv.Atoi(val)
		case "color":
			s.Color, err = parseColor(val)
		default:
			return fmt.Errorf("canvas 中未知属性 %s", stmt.Assignment.Key)
		}
		if err != nil {
			return fmt.Errorf("canvas 的 %s 无效: %w", key, err)
		}
	}
	if s.Floor <= 0 || s.Step <= 0 {
		return fmt.Errorf("canvas 的 floor 与 step 必须为正数")
	}
	return nil
}

func collectFont(block *dsl.Block) (FontResource, bool) {
	if block == nil {
		return FontResource{}, false
	}
	for _, stmt := range block.Statements {
		if stmt.Command == nil || stmt.Command.Name != "font" {
			continue
		}
		font := parseFontResource(stmt.Command)
		if font.Src != "" || font.Fallback != "" {
			return font, true
		}
	}
	return FontResource{}, false
}

func parseFontResource(cmd *dsl.Command) FontResource {
	font := FontResource{Name: "Body", Fallback: "embed:goregular"}
	if len(cmd.Args) > 0 {
		font.Name = cmd.Args[0].Value
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			font.Src = valueToString(stmt.Assignment.Value)
		case "fallback":
			font.Fallback = valueToString(stmt.Assignment.Value)
		}
	}
	return font
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "certify",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{R: mustHex(r), G: mustHex(g), B: mustHex(b)}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
