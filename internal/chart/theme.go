package chart

// Палитра темной темы дашборда.
const (
	ColorText       = "#e0e0e0"
	ColorAccent     = "#00ff9d"
	ColorDanger     = "#ff3860"
	ColorPanel      = "#111722"
	ColorBorder     = "#2a3042"
	ColorGrid       = "rgba(42, 48, 66, 0.5)"
	ColorNormal     = "#6a994e"
	ColorAbnormal   = "#720026"
	FontMonospace   = "'Courier New', monospace"
	AnimationMillis = 1000
	AnimationEasing = "easeOutQuart"
)

// Override: точечное изменение базовой темы для конкретного графика.
type Override func(*Options)

// BaseOptions каждый раз строит новую копию общей темы, поэтому переопределения
// одного графика не протекают в другие.
func BaseOptions() Options {
	return Options{
		Plugins: Plugins{
			Legend: Legend{Labels: LegendLabels{
				Color: ColorText,
				Font:  Font{Family: FontMonospace, Size: 12},
			}},
			Tooltip: Tooltip{
				BackgroundColor: ColorPanel,
				TitleColor:      ColorAccent,
				BodyColor:       ColorText,
				BorderColor:     ColorBorder,
				BorderWidth:     1,
				TitleFont:       Font{Family: FontMonospace},
				BodyFont:        Font{Family: FontMonospace},
				DisplayColors:   false,
			},
		},
		Scales: Scales{
			"x": baseAxis(),
			"y": baseAxis(),
		},
		Animation:           Animation{Duration: AnimationMillis, Easing: AnimationEasing},
		Responsive:          true,
		MaintainAspectRatio: false,
	}
}

func baseAxis() *Axis {
	return &Axis{
		Ticks: Ticks{Color: ColorText, Font: Font{Family: FontMonospace}},
		Grid:  Grid{Color: ColorGrid},
	}
}

// Themed применяет переопределения поверх свежей базы; побеждает последняя запись.
func Themed(overrides ...Override) Options {
	opts := BaseOptions()
	for _, o := range overrides {
		o(&opts)
	}
	return opts
}

// WithoutScales убирает оси полностью (у круговой диаграммы их нет).
func WithoutScales() Override {
	return func(o *Options) { o.Scales = nil }
}

func WithTitle(display bool) Override {
	return func(o *Options) { o.Plugins.Title = &Title{Display: display} }
}

func WithStacked(axes ...string) Override {
	return func(o *Options) {
		for _, name := range axes {
			axisOf(o, name).Stacked = true
		}
	}
}

func WithBeginAtZero(axes ...string) Override {
	return func(o *Options) {
		for _, name := range axes {
			axisOf(o, name).BeginAtZero = true
		}
	}
}

func WithIndexAxis(axis string) Override {
	return func(o *Options) { o.IndexAxis = axis }
}

// axisOf возвращает ось, создавая ее с базовым стилем, если переопределение пришло раньше базы.
func axisOf(o *Options, name string) *Axis {
	if o.Scales == nil {
		o.Scales = Scales{}
	}
	a, ok := o.Scales[name]
	if !ok || a == nil {
		a = baseAxis()
		o.Scales[name] = a
	}
	return a
}
