// Package config loads certify settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ID allocation strategies.
const (
	StrategyDigits = "digits"
	StrategyUUID   = "uuid"
)

// Config is the decoded configuration file. Zero fields keep the values
// from Default.
type Config struct {
	Template       string   `toml:"template"`
	Font           string   `toml:"font"`
	FontCandidates []string `toml:"font_candidates"`
	Layout         string   `toml:"layout"` // 为空时使用内置版式
	OutputDir      string   `toml:"output_dir"`
	PDF            bool     `toml:"pdf"`
	DPI            float64  `toml:"dpi"`
	Concurrency    int      `toml:"concurrency"`
	Compensate     *bool    `toml:"compensate"`

	Share Share `toml:"share"`
	IDs   IDs   `toml:"ids"`
}

// Share configures the public link placed in share messages.
type Share struct {
	BaseURL   string `toml:"base_url"`
	MediaPath string `toml:"media_path"`
}

// IDs configures certificate number allocation.
type IDs struct {
	Strategy    string `toml:"strategy"`
	Prefix      string `toml:"prefix"`
	Digits      int    `toml:"digits"`
	MaxAttempts int    `toml:"max_attempts"`
	RedisAddr   string `toml:"redis_addr"` // 为空时使用进程内登记表
	RedisKey    string `toml:"redis_key"`
}

// Default returns the built-in configuration.
func Default() Config {
	on := true
	return Config{
		Template: "assets/certificate_template.png",
		FontCandidates: []string{
			"/usr/share/fonts/truetype/msttcorefonts/Arial.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/Library/Fonts/Arial.ttf",
			"/System/Library/Fonts/Supplemental/Arial.ttf",
			"C:/Windows/Fonts/arial.ttf",
		},
		OutputDir:   "output",
		DPI:         96,
		Concurrency: 4,
		Compensate:  &on,
		Share: Share{
			BaseURL:   "http://127.0.0.1:8000",
			MediaPath: "/media/certificates/",
		},
		IDs: IDs{
			Strategy:    StrategyDigits,
			Prefix:      "CERT",
			Digits:      6,
			MaxAttempts: 10,
			RedisKey:    "certify:ids",
		},
	}
}

// Load reads path over Default. An empty path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	if err := Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// Decode decodes TOML text into cfg and validates the result.
func Decode(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("未知配置项: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.IDs.Strategy {
	case StrategyDigits, StrategyUUID:
	default:
		return fmt.Errorf("不支持的 ids.strategy %q", c.IDs.Strategy)
	}
	if c.IDs.Strategy == StrategyDigits && (c.IDs.Digits <= 0 || c.IDs.Digits > 18) {
		return fmt.Errorf("ids.digits 超出范围: %d", c.IDs.Digits)
	}
	if c.IDs.MaxAttempts < 0 {
		return fmt.Errorf("ids.max_attempts 不能为负数")
	}
	if c.DPI < 0 {
		return fmt.Errorf("dpi 不能为负数")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency 不能为负数")
	}
	return nil
}

// Compensation reports whether degraded-font compensation is enabled.
func (c Config) Compensation() bool {
	return c.Compensate == nil || *c.Compensate
}

// FontSources returns the font search order: the configured font, the
// layout's own src, the platform candidates and last the layout fallback.
// Blank entries are skipped.
func (c Config) FontSources(layoutSrc, layoutFallback string) []string {
	all := append([]string{c.Font, layoutSrc}, c.FontCandidates...)
	all = append(all, layoutFallback)
	out := make([]string, 0, len(all))
	for _, s := range all {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
