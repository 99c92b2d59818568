package layout

// FitFontSize 从 startSize 起按 opts.Step 递减（下限 opts.Floor，含），返回第一个宽度不超过
// maxWidth 的字号及其宽度。测量失败的字号直接跳过。
// 没有任何候选放得下时返回 Floor 及其宽度（步长跳过 Floor 时它仍会被测量一次），
// 此时 fits 表示 Floor 是否放得下；调用方总是按返回的字号绘制。
func FitFontSize(content string, startSize, maxWidth int, m Measurer, opts FitOptions) (size, width int, fits bool) {
	opts = opts.normalized()
	for candidate := startSize; candidate >= opts.Floor; candidate -= opts.Step {
		w, err := m.MeasureText(content, candidate)
		if err != nil {
			continue
		}
		if w <= maxWidth {
			return candidate, w, true
		}
	}
	w, err := m.MeasureText(content, opts.Floor)
	if err != nil {
		w = 0
	}
	return opts.Floor, w, err == nil && w <= maxWidth
}

// CenterX returns the left edge that centers textWidth inside imageWidth,
// rounding toward negative infinity when the text overflows.
func CenterX(textWidth, imageWidth int) int {
	return floorDiv(imageWidth-textWidth, 2)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
