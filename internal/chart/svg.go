package chart

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
)

var ErrDestroyed = errors.New("chart: handle destroyed")

// SVGHandle: график, отрисованный go-chart в статический SVG.
// Интерактивную отрисовку делает браузер по Spec(); SVG: превью для <img>.
type SVGHandle struct {
	slot      Slot
	spec      RenderSpec
	svg       []byte
	destroyed bool
}

func (h *SVGHandle) Slot() Slot {
	return h.slot
}

func (h *SVGHandle) Spec() RenderSpec {
	return h.spec
}

func (h *SVGHandle) SVG() ([]byte, error) {
	if h.destroyed {
		return nil, ErrDestroyed
	}
	return h.svg, nil
}

// Destroy освобождает отрисованный буфер. Безопасен для nil и повторного вызова.
func (h *SVGHandle) Destroy() {
	if h == nil {
		return
	}
	h.svg = nil
	h.destroyed = true
}

func (h *SVGHandle) Destroyed() bool {
	return h == nil || h.destroyed
}

// SVGFactory строит SVGHandle заданного размера.
type SVGFactory struct {
	width  int
	height int
	logger *zap.Logger
}

func NewSVGFactory(width, height int, logger *zap.Logger) *SVGFactory {
	return &SVGFactory{
		width:  width,
		height: height,
		logger: logger.Named("chart-svg"),
	}
}

// For возвращает фабрику для Registry.Bind.
func (f *SVGFactory) For(spec RenderSpec) Factory {
	return func(slot Slot) (Handle, error) {
		svg, err := renderSVG(spec, f.width, f.height)
		if err != nil {
			// пустые или вырожденные данные: показываем заглушку, а не роняем обновление
			f.logger.Warn("chart render failed, using placeholder",
				zap.String("slot", string(slot)),
				zap.Error(err))
			svg = placeholderSVG(f.width, f.height)
		}
		return &SVGHandle{slot: slot, spec: spec, svg: svg}, nil
	}
}

func renderSVG(spec RenderSpec, width, height int) (out []byte, err error) {
	// go-chart паникует на вырожденных диапазонах
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("render %s chart: %v", spec.Type, r)
		}
	}()

	if len(spec.Data.Labels) == 0 || len(spec.Data.Datasets) == 0 {
		return nil, fmt.Errorf("no data to render")
	}

	var buf bytes.Buffer
	switch {
	case spec.Type == TypePie:
		err = pieChart(spec, width, height).Render(chart.SVG, &buf)
	case len(spec.Data.Datasets) == 1:
		err = barChart(spec, width, height).Render(chart.SVG, &buf)
	default:
		err = stackedBarChart(spec, width, height).Render(chart.SVG, &buf)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pieChart(spec RenderSpec, width, height int) chart.PieChart {
	ds := spec.Data.Datasets[0]
	pie := chart.PieChart{
		Width:      width,
		Height:     height,
		Background: chart.Style{FillColor: hexColor(ColorPanel)},
	}
	for i, label := range spec.Data.Labels {
		if i >= len(ds.Data) {
			break
		}
		pie.Values = append(pie.Values, chart.Value{
			Label: label,
			Value: ds.Data[i],
			Style: chart.Style{
				FillColor:   hexColor(ds.BackgroundColor.At(i)),
				StrokeColor: hexColor(ds.BorderColor.At(i)),
				StrokeWidth: ds.BorderWidth,
				FontColor:   hexColor(ColorText),
			},
		})
	}
	return pie
}

func barChart(spec RenderSpec, width, height int) chart.BarChart {
	ds := spec.Data.Datasets[0]
	bar := chart.BarChart{
		Width:      width,
		Height:     height,
		BarWidth:   max(8, width/(2*len(spec.Data.Labels)+1)),
		Background: chart.Style{FillColor: hexColor(ColorPanel)},
		Canvas:     chart.Style{FillColor: hexColor(ColorPanel)},
		XAxis:      chart.Style{FontColor: hexColor(ColorText)},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: hexColor(ColorText)},
		},
	}
	for i, label := range spec.Data.Labels {
		if i >= len(ds.Data) {
			break
		}
		bar.Bars = append(bar.Bars, chart.Value{
			Label: label,
			Value: ds.Data[i],
			Style: chart.Style{
				FillColor:   hexColor(ds.BackgroundColor.At(i)),
				StrokeColor: hexColor(ds.BorderColor.At(i)),
				StrokeWidth: ds.BorderWidth,
			},
		})
	}
	return bar
}

// stackedBarChart: один столбец на категорию, сегменты по наборам данных.
// Горизонтальная ориентация и группировка остаются за браузером (indexAxis в Spec).
func stackedBarChart(spec RenderSpec, width, height int) chart.StackedBarChart {
	sbc := chart.StackedBarChart{
		Width:      width,
		Height:     height,
		Background: chart.Style{FillColor: hexColor(ColorPanel)},
		Canvas:     chart.Style{FillColor: hexColor(ColorPanel)},
		XAxis:      chart.Style{FontColor: hexColor(ColorText)},
		YAxis:      chart.Style{FontColor: hexColor(ColorText)},
	}
	for i, label := range spec.Data.Labels {
		bar := chart.StackedBar{Name: label}
		for j, ds := range spec.Data.Datasets {
			if i >= len(ds.Data) {
				continue
			}
			color := ds.BackgroundColor.At(i)
			if color == "" {
				color = []string{ColorNormal, ColorAbnormal, ColorAccent, ColorDanger}[j%4]
			}
			bar.Values = append(bar.Values, chart.Value{
				Label: ds.Label,
				Value: ds.Data[i],
				Style: chart.Style{FillColor: hexColor(color)},
			})
		}
		sbc.Bars = append(sbc.Bars, bar)
	}
	return sbc
}

// hexColor понимает только #rrggbb; всё остальное (rgba(), пусто): прозрачный цвет.
func hexColor(c string) drawing.Color {
	if !strings.HasPrefix(c, "#") || len(c) != 7 {
		return drawing.ColorTransparent
	}
	return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
}

func placeholderSVG(width, height int) []byte {
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="100%%" height="100%%" fill="%s"/>`+
			`<text x="50%%" y="50%%" fill="%s" font-family="Courier New, monospace" text-anchor="middle">no data</text></svg>`,
		width, height, ColorPanel, ColorText))
}
