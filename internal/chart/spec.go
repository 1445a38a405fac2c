package chart

import "github.com/xela07ax/logdash/internal/domain"

// Type: тип графика в терминах Chart.js.
type Type string

const (
	TypePie Type = "pie"
	TypeBar Type = "bar"
)

// RenderSpec: полная конфигурация одного графика (совместима с Chart.js).
type RenderSpec struct {
	Type    Type    `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string         `json:"labels"`
	Datasets []domain.Dataset `json:"datasets"`
}

type Options struct {
	Plugins             Plugins   `json:"plugins"`
	Scales              Scales    `json:"scales,omitempty"` // nil: осей нет вовсе
	IndexAxis           string    `json:"indexAxis,omitempty"`
	Animation           Animation `json:"animation"`
	Responsive          bool      `json:"responsive"`
	MaintainAspectRatio bool      `json:"maintainAspectRatio"`
}

type Plugins struct {
	Legend  Legend  `json:"legend"`
	Tooltip Tooltip `json:"tooltip"`
	Title   *Title  `json:"title,omitempty"`
}

type Legend struct {
	Labels LegendLabels `json:"labels"`
}

type LegendLabels struct {
	Color string `json:"color"`
	Font  Font   `json:"font"`
}

type Tooltip struct {
	BackgroundColor string `json:"backgroundColor"`
	TitleColor      string `json:"titleColor"`
	BodyColor       string `json:"bodyColor"`
	BorderColor     string `json:"borderColor"`
	BorderWidth     int    `json:"borderWidth"`
	TitleFont       Font   `json:"titleFont"`
	BodyFont        Font   `json:"bodyFont"`
	DisplayColors   bool   `json:"displayColors"`
}

type Title struct {
	Display bool `json:"display"`
}

type Font struct {
	Family string `json:"family"`
	Size   int    `json:"size,omitempty"`
}

// Scales: оси по имени ("x", "y").
type Scales map[string]*Axis

type Axis struct {
	Stacked     bool  `json:"stacked,omitempty"`
	BeginAtZero bool  `json:"beginAtZero,omitempty"`
	Ticks       Ticks `json:"ticks"`
	Grid        Grid  `json:"grid"`
}

type Ticks struct {
	Color string `json:"color"`
	Font  Font   `json:"font"`
}

type Grid struct {
	Color string `json:"color"`
}

type Animation struct {
	Duration int    `json:"duration"` // мс
	Easing   string `json:"easing"`
}
