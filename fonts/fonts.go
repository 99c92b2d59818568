package fonts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrNotFound 表示字体来源不存在（内置名称未知或文件缺失）。
var ErrNotFound = errors.New("字体不存在")

// DefaultSrc 是内置的默认字体。
const DefaultSrc = "embed:goregular"

var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
	"gomedium":  gomedium.TTF,
}

// Load 返回字体的字节数据，src 可写为 "embed:goregular" 或文件路径。
func Load(src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("字体来源为空: %w", ErrNotFound)
	}
	if strings.HasPrefix(src, "embed:") {
		name := strings.ToLower(strings.TrimPrefix(src, "embed:"))
		data, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("内置字体 %s: %w", name, ErrNotFound)
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("读取字体 %s 失败: %w: %w", src, ErrNotFound, err)
		}
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// FirstAvailable 按顺序返回第一个可用的字体来源。embed: 来源总是可用。
func FirstAvailable(candidates ...string) (string, bool) {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.HasPrefix(c, "embed:") {
			if _, ok := builtin[strings.ToLower(strings.TrimPrefix(c, "embed:"))]; ok {
				return c, true
			}
			continue
		}
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// Cache keeps parsed fonts keyed by source. Parsed fonts are read-only and
// can be shared between goroutines; faces created from them cannot.
type Cache struct {
	mu     sync.Mutex
	parsed map[string]*opentype.Font
}

// NewCache creates an empty font cache.
func NewCache() *Cache {
	return &Cache{parsed: map[string]*opentype.Font{}}
}

var shared = NewCache()

// Shared 返回进程级的字体缓存。
func Shared() *Cache { return shared }

// Get 返回 src 对应的已解析字体，首次访问时加载并解析。
func (c *Cache) Get(src string) (*opentype.Font, error) {
	key := strings.TrimSpace(src)
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.parsed[key]; ok {
		return f, nil
	}
	data, err := Load(key)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", key, err)
	}
	c.parsed[key] = f
	return f, nil
}

// Len reports how many fonts are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.parsed)
}

// First 返回候选列表中第一个可用并能解析的字体及其来源。
// 全部不可用时返回 ErrNotFound。
func (c *Cache) First(candidates ...string) (*opentype.Font, string, error) {
	var lastErr error
	for _, src := range candidates {
		if _, ok := FirstAvailable(src); !ok {
			continue
		}
		f, err := c.Get(src)
		if err != nil {
			lastErr = err
			continue
		}
		return f, strings.TrimSpace(src), nil
	}
	if lastErr != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrNotFound, lastErr)
	}
	return nil, "", ErrNotFound
}
