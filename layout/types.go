package layout

// 该文件定义版式模板、待绘制行与合成结果，供版式构建、合成与调试 JSON 共用。

import (
	"image"
	"image/color"
)

// Template 描述一份证书版式：共享设置与逐行定义，位置与字号均相对模板尺寸给出。
type Template struct {
	Name     string         `json:"name"`
	Font     FontResource   `json:"font"`
	Settings Settings       `json:"settings"`
	Lines    []LineTemplate `json:"lines"`
	Meta     DocumentMeta   `json:"meta"`
}

// Settings 是所有行共享的排版参数。
type Settings struct {
	MaxWidth Measure `json:"maxWidth"` // 相对模板宽度
	Floor    int     `json:"floor"`
	Step     int     `json:"step"`
	Color    Color   `json:"color"`
}

// LineTemplate 是一行尚未绑定数据的文本定义。
type LineTemplate struct {
	Role     string  `json:"role"`
	Text     string  `json:"text"`
	Y        Measure `json:"y"`        // 相对模板高度
	Size     Measure `json:"size"`     // 起始字号，相对模板高度
	MaxWidth Measure `json:"maxWidth"` // 为零时使用 Settings.MaxWidth
	Repeat   int     `json:"repeat"`   // 无可缩放字体时的重复绘制次数
	Color    *Color  `json:"color,omitempty"`
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:* 形式。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Fallback string `json:"fallback"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// RGBA converts c to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: clampByte(c.R), G: clampByte(c.G), B: clampByte(c.B), A: 0xff}
}

func clampByte(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// TextSpec is one line to render onto a template. TargetY is in pixels;
// the width limit and start size are fractions of the template width and
// height so the layout follows the template resolution. MaxWidth and
// StartSize, when positive, are absolute pixels and take precedence.
type TextSpec struct {
	Role              string  `json:"role"`
	Content           string  `json:"content"`
	TargetY           int     `json:"targetY"`
	MaxWidthFraction  float64 `json:"maxWidthFraction"`
	StartSizeFraction float64 `json:"startSizeFraction"`
	MaxWidth          int     `json:"maxWidth,omitempty"`
	StartSize         int     `json:"startSize,omitempty"`
	Repeat            int     `json:"repeat"`
	Color             Color   `json:"color"`
}

// ResolveMaxWidth returns the width limit in pixels for a template width.
func (s TextSpec) ResolveMaxWidth(width int) int {
	if s.MaxWidth > 0 {
		return s.MaxWidth
	}
	return int(float64(width) * s.MaxWidthFraction)
}

// ResolveStartSize returns the starting font size in pixels for a template height.
func (s TextSpec) ResolveStartSize(height int) int {
	if s.StartSize > 0 {
		return s.StartSize
	}
	return int(float64(height) * s.StartSizeFraction)
}

// FittedLine 记录一行文本最终采用的字号、测量宽度与绘制位置（像素）。
type FittedLine struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Size     int    `json:"size"`
	Width    int    `json:"width"`
	MaxWidth int    `json:"maxWidth"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Fits     bool   `json:"fits"`
	Scalable bool   `json:"scalable"`
	Draws    int    `json:"draws"`
}

// Result 是合成后的图像及其逐行排版信息。Image 归调用方所有。
type Result struct {
	Image    *image.RGBA  `json:"-"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Lines    []FittedLine `json:"lines"`
	Degraded bool         `json:"degraded"` // 未使用可缩放字体
	Meta     DocumentMeta `json:"meta"`
}

// DocumentMeta 保存导出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
