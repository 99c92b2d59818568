package raster

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/renderer"
)

// PNGRenderer encodes a composed certificate as PNG bytes.
type PNGRenderer struct {
	Compression png.CompressionLevel
}

var _ renderer.Renderer = (*PNGRenderer)(nil)

// Render 将合成结果编码为 PNG。
func (r *PNGRenderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil || result.Image == nil {
		return nil, fmt.Errorf("合成结果为空")
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: r.Compression}
	if err := enc.Encode(&buf, result.Image); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}
