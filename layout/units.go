package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit represents how a Measure relates to the template size.
type Unit int

const (
	UnitFraction Unit = iota // 0.5
	UnitPercent              // 50%
	UnitPixel                // 350px
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPercent:
		return "%"
	case UnitPixel:
		return "px"
	default:
		return ""
	}
}

// Measure preserves a numeric value with its unit.
type Measure struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Percent builds a percentage measure.
func Percent(v float64) Measure { return Measure{Value: v, Unit: UnitPercent} }

// Pixels builds an absolute measure.
func Pixels(v float64) Measure { return Measure{Value: v, Unit: UnitPixel} }

func (m Measure) IsZero() bool { return m.Value == 0 }

// Fraction converts m to a fraction of reference.
func (m Measure) Fraction(reference int) float64 {
	switch m.Unit {
	case UnitPercent:
		return m.Value / 100
	case UnitPixel:
		if reference <= 0 {
			return 0
		}
		return m.Value / float64(reference)
	default:
		return m.Value
	}
}

// Resolve returns m in pixels of reference, truncated toward zero.
func (m Measure) Resolve(reference int) int {
	if m.Unit == UnitPixel {
		return int(m.Value)
	}
	return int(float64(reference) * m.Fraction(reference))
}

func (m Measure) String() string {
	return strconv.FormatFloat(m.Value, 'f', -1, 64) + UnitToString(m.Unit)
}

// ParseMeasure parses "50%", "0.5" or "350px".
func ParseMeasure(value string) (Measure, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Measure{}, fmt.Errorf("尺寸为空")
	}
	unit := UnitFraction
	num := v
	switch {
	case strings.HasSuffix(v, "%"):
		unit = UnitPercent
		num = strings.TrimSuffix(v, "%")
	case strings.HasSuffix(v, "px"):
		unit = UnitPixel
		num = strings.TrimSuffix(v, "px")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return Measure{}, fmt.Errorf("尺寸 %s 无法解析: %w", value, err)
	}
	if f < 0 {
		return Measure{}, fmt.Errorf("尺寸 %s 不能为负", value)
	}
	return Measure{Value: f, Unit: unit}, nil
}
