package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sync"
)

// ErrTemplateLoad matches every TemplateLoadError via errors.Is.
var ErrTemplateLoad = errors.New("证书模板不可用")

// TemplateLoadError 表示模板缺失、无法读取或无法解码；此时不得继续合成。
type TemplateLoadError struct {
	Path string
	Err  error
}

func (e *TemplateLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("加载证书模板失败: %v", e.Err)
	}
	return fmt.Sprintf("加载证书模板 %s 失败: %v", e.Path, e.Err)
}

func (e *TemplateLoadError) Unwrap() error { return e.Err }

func (e *TemplateLoadError) Is(target error) bool { return target == ErrTemplateLoad }

// DecodeTemplate 解码 PNG/JPEG 模板并校验尺寸。
func DecodeTemplate(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, &TemplateLoadError{Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &TemplateLoadError{Err: fmt.Errorf("模板尺寸无效: %v", img.Bounds())}
	}
	return img, nil
}

// LoadTemplate 从文件读取模板。
func LoadTemplate(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TemplateLoadError{Path: path, Err: err}
	}
	img, err := DecodeTemplate(bytes.NewReader(data))
	if err != nil {
		var tle *TemplateLoadError
		if errors.As(err, &tle) {
			tle.Path = path
		}
		return nil, err
	}
	return img, nil
}

// TemplateCache 在进程内缓存已解码的模板。缓存的图像只读，合成时总是先复制。
type TemplateCache struct {
	mu     sync.Mutex
	images map[string]image.Image
}

// NewTemplateCache creates an empty cache.
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{images: map[string]image.Image{}}
}

// Load 返回 path 对应的模板，首次访问时从磁盘加载。加载失败不会被缓存。
func (c *TemplateCache) Load(path string) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.images[path]; ok {
		return img, nil
	}
	img, err := LoadTemplate(path)
	if err != nil {
		return nil, err
	}
	c.images[path] = img
	return img, nil
}
