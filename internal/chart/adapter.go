package chart

import (
	"slices"

	"github.com/xela07ax/logdash/internal/domain"
)

// AttackTypeSpec строит круговую диаграмму: один сектор на пару label/data, без осей.
func AttackTypeSpec(s domain.LabeledSeries) RenderSpec {
	return RenderSpec{
		Type: TypePie,
		Data: Data{
			Labels: labels(s.Labels),
			Datasets: []domain.Dataset{{
				Data:            values(s.Data),
				BackgroundColor: domain.ColorList{ColorNormal, ColorAbnormal},
				BorderColor:     domain.ColorList{ColorPanel},
				BorderWidth:     2,
			}},
		},
		Options: Themed(WithoutScales(), WithTitle(false)),
	}
}

// FailedLoginSpec: обычный столбчатый график на общей теме осей.
func FailedLoginSpec(s domain.LabeledSeries) RenderSpec {
	return RenderSpec{
		Type: TypeBar,
		Data: Data{
			Labels: labels(s.Labels),
			Datasets: []domain.Dataset{{
				Label:           "Failed Login %",
				Data:            values(s.Data),
				BackgroundColor: domain.ColorList{ColorNormal, ColorAbnormal},
				BorderColor:     domain.ColorList{ColorAccent, ColorDanger},
				BorderWidth:     1,
			}},
		},
		Options: Themed(),
	}
}

// ProtocolSpec: stacked bar. Наборы данных идут как есть, стек включается только визуально.
func ProtocolSpec(s domain.ProtocolStats) RenderSpec {
	datasets := make([]domain.Dataset, 0, len(s.Datasets))
	for _, ds := range s.Datasets {
		ds.Data = values(ds.Data)
		datasets = append(datasets, ds)
	}
	return RenderSpec{
		Type:    TypeBar,
		Data:    Data{Labels: labels(s.Labels), Datasets: datasets},
		Options: Themed(WithStacked("x", "y"), WithBeginAtZero("y")),
	}
}

// ServiceSpec: горизонтальные столбцы Normal/Abnormal; ось значений x начинается с нуля.
func ServiceSpec(s domain.ServiceStats) RenderSpec {
	return RenderSpec{
		Type: TypeBar,
		Data: Data{
			Labels: labels(s.Labels),
			Datasets: []domain.Dataset{
				{Label: "Normal", Data: values(s.Normal), BackgroundColor: domain.ColorList{ColorNormal}},
				{Label: "Abnormal", Data: values(s.Abnormal), BackgroundColor: domain.ColorList{ColorAbnormal}},
			},
		},
		Options: Themed(WithIndexAxis("y"), WithBeginAtZero("x")),
	}
}

// AdaptAll строит конфигурации для всех четырех слотов из одного ответа.
func AdaptAll(stats domain.DashboardStats) map[Slot]RenderSpec {
	return map[Slot]RenderSpec{
		SlotAttackType:  AttackTypeSpec(stats.AttackType),
		SlotFailedLogin: FailedLoginSpec(stats.FailedLogin),
		SlotProtocol:    ProtocolSpec(stats.Protocol),
		SlotService:     ServiceSpec(stats.Service),
	}
}

// labels/values: свои копии и [] вместо null в JSON.
func labels(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

func values(in []float64) []float64 {
	if in == nil {
		return []float64{}
	}
	return slices.Clone(in)
}
