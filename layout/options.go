package layout

// 字号搜索的默认参数：最小字号与每次递减的步长。
const (
	DefaultFloor = 15
	DefaultStep  = 2
)

// FitOptions 配置字号搜索。
type FitOptions struct {
	Floor int
	Step  int
}

// DefaultFitOptions returns the floor/step used when a layout does not set them.
func DefaultFitOptions() FitOptions {
	return FitOptions{Floor: DefaultFloor, Step: DefaultStep}
}

func (o FitOptions) normalized() FitOptions {
	if o.Floor <= 0 {
		o.Floor = DefaultFloor
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	return o
}

// Measurer 返回文本在指定字号下的水平宽度（像素）。
type Measurer interface {
	MeasureText(content string, size int) (int, error)
}
