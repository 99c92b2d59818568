package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 必填路径不存在时保留原占位符；以 ? 结尾的可选路径（${course.sub?}）不存在或为空时替换为空串，
// 并只折叠该占位符两侧多出的空白，绑定值本身保持原样。
func Interpolate(text string, data any) string {
	matches := exprPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var out strings.Builder
	dropped := false
	last := 0
	for _, m := range matches {
		out.WriteString(joinAfterDrop(out.String(), text[last:m[0]], dropped))
		last = m[1]
		val, ok := replacement(text[m[0]:m[1]], text[m[2]:m[3]], data)
		if !ok {
			dropped = true
			continue
		}
		dropped = false
		out.WriteString(val)
	}
	tail := joinAfterDrop(out.String(), text[last:], dropped)
	if dropped && tail == "" {
		return strings.TrimRightFunc(out.String(), unicode.IsSpace)
	}
	return out.String() + tail
}

// replacement 返回占位符的替换文本；ok 为 false 表示可选占位符被移除。
func replacement(match, expr string, data any) (string, bool) {
	path := strings.TrimSpace(expr)
	optional := strings.HasSuffix(path, "?")
	path = strings.TrimSpace(strings.TrimSuffix(path, "?"))
	if path == "" {
		return match, true
	}
	if val, found := resolvePath(data, path); found && val != nil {
		s := fmt.Sprint(val)
		if optional && strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
	if optional {
		return "", false
	}
	return match, true
}

// joinAfterDrop 在前一个占位符被移除时去掉 segment 开头的重复空白。
func joinAfterDrop(prefix, segment string, dropped bool) string {
	if !dropped {
		return segment
	}
	if prefix == "" || strings.TrimRightFunc(prefix, unicode.IsSpace) != prefix {
		return strings.TrimLeftFunc(segment, unicode.IsSpace)
	}
	return segment
}

// Lookup 返回 data 中 path 对应的值。
func Lookup(data any, path string) (any, bool) {
	return resolvePath(data, strings.TrimSpace(path))
}

func resolvePath(data any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
