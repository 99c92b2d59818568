package renderer

import (
	"image"

	"github.com/ByLCY/certify/layout"
)

// Compositor 将若干行文本绘制到模板的副本上，模板本身保持不变。
type Compositor interface {
	Compose(template image.Image, lines []layout.TextSpec) (*layout.Result, error)
}

// Renderer 将合成结果编码为最终文件，例如 PNG 或 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
