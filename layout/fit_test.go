package layout

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

// stubMeasurer 是一个最小实现：每个字符宽度为字号的一半，不依赖真实字体。
type stubMeasurer struct {
	failAt map[int]bool
}

func (s stubMeasurer) MeasureText(content string, size int) (int, error) {
	if s.failAt[size] {
		return 0, errors.New("boom")
	}
	return utf8.RuneCountInString(content) * size / 2, nil
}

func TestFitFontSizeBounds(t *testing.T) {
	m := stubMeasurer{}
	opts := DefaultFitOptions()
	for _, n := range []int{0, 1, 5, 10, 30, 60, 200} {
		text := strings.Repeat("a", n)
		for _, start := range []int{9, 15, 16, 17, 30, 56, 57} {
			for _, maxWidth := range []int{0, 50, 300, 850} {
				size, width, fits := FitFontSize(text, start, maxWidth, m, opts)
				if size < opts.Floor {
					t.Fatalf("n=%d start=%d max=%d: size %d below floor", n, start, maxWidth, size)
				}
				want, _ := m.MeasureText(text, size)
				if width != want {
					t.Fatalf("n=%d start=%d max=%d: width %d, measured %d", n, start, maxWidth, width, want)
				}
				if fits != (width <= maxWidth) {
					t.Fatalf("n=%d start=%d max=%d: fits=%v but width=%d", n, start, maxWidth, fits, width)
				}
				if size == opts.Floor {
					continue
				}
				if size > start || !fits {
					t.Fatalf("n=%d start=%d max=%d: size %d (fits=%v) violates bounds", n, start, maxWidth, size, fits)
				}
				// 更大的候选字号必须放不下
				for bigger := size + opts.Step; bigger <= start; bigger += opts.Step {
					if w, _ := m.MeasureText(text, bigger); w <= maxWidth {
						t.Fatalf("n=%d start=%d max=%d: %d fits but %d was chosen", n, start, maxWidth, bigger, size)
					}
				}
			}
		}
	}
}

func TestFitFontSizeScenario(t *testing.T) {
	// 1000×700 模板：起始字号 56（高度 8%），最大宽度 850（宽度 85%）
	size, width, fits := FitFontSize("Jordan Lee", 56, 850, stubMeasurer{}, DefaultFitOptions())
	if size != 56 || width != 280 || !fits {
		t.Fatalf("unexpected fit: size=%d width=%d fits=%v", size, width, fits)
	}
}

func TestFitFontSizeFloorOverflow(t *testing.T) {
	text := strings.Repeat("W", 400)
	size, width, fits := FitFontSize(text, 56, 850, stubMeasurer{}, DefaultFitOptions())
	if size != DefaultFloor {
		t.Fatalf("expected floor size, got %d", size)
	}
	if fits || width <= 850 {
		t.Fatalf("expected overflow at floor, got width=%d fits=%v", width, fits)
	}
}

func TestFitFontSizeTriesFloorWhenStepSkipsIt(t *testing.T) {
	// 56→16 均放不下，15 恰好放下
	text := strings.Repeat("a", 10)
	size, width, fits := FitFontSize(text, 56, 75, stubMeasurer{}, DefaultFitOptions())
	if size != 15 || width != 75 || !fits {
		t.Fatalf("unexpected fit: size=%d width=%d fits=%v", size, width, fits)
	}
}

func TestFitFontSizeSkipsFailedSizes(t *testing.T) {
	m := stubMeasurer{failAt: map[int]bool{56: true}}
	size, _, fits := FitFontSize("Jordan Lee", 56, 850, m, DefaultFitOptions())
	if size != 54 || !fits {
		t.Fatalf("expected 54 after skipping a failed size, got %d", size)
	}
}

func TestFitFontSizeCustomOptions(t *testing.T) {
	size, _, _ := FitFontSize(strings.Repeat("a", 20), 40, 200, stubMeasurer{}, FitOptions{Floor: 10, Step: 5})
	if size != 20 {
		t.Fatalf("expected 20, got %d", size)
	}
	// 非法参数回落到默认值
	size, _, _ = FitFontSize("", 9, 100, stubMeasurer{}, FitOptions{})
	if size != DefaultFloor {
		t.Fatalf("expected default floor, got %d", size)
	}
}

func TestCenterX(t *testing.T) {
	cases := []struct {
		text, image, want int
	}{
		{1000, 1000, 0},
		{0, 1000, 500},
		{0, 999, 499},
		{301, 1000, 349},
		{1001, 1000, -1},
		{1010, 1000, -5},
	}
	for _, tc := range cases {
		if got := CenterX(tc.text, tc.image); got != tc.want {
			t.Fatalf("CenterX(%d, %d) = %d, want %d", tc.text, tc.image, got, tc.want)
		}
	}
}
