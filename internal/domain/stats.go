package domain

import (
	"encoding/json"
	"fmt"
)

// LabeledSeries описывает срезы вида {labels, data} (attack_type_stats, failed_login_stats).
type LabeledSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Normalize обрезает параллельные последовательности до общей длины,
// чтобы индекс i везде указывал на одну и ту же категорию.
func (s *LabeledSeries) Normalize() {
	n := min(len(s.Labels), len(s.Data))
	s.Labels = s.Labels[:n]
	s.Data = s.Data[:n]
}

// Dataset: набор значений в формате Chart.js.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor ColorList `json:"backgroundColor,omitempty"`
	BorderColor     ColorList `json:"borderColor,omitempty"`
	BorderWidth     float64   `json:"borderWidth,omitempty"`
}

// ProtocolStats: срез protocol_stats; datasets уходят в график без изменений.
type ProtocolStats struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

func (s *ProtocolStats) Normalize() {
	n := len(s.Labels)
	for _, ds := range s.Datasets {
		n = min(n, len(ds.Data))
	}
	s.Labels = s.Labels[:n]
	for i := range s.Datasets {
		s.Datasets[i].Data = s.Datasets[i].Data[:n]
	}
}

// ServiceStats описывает срез service_stats, normal/abnormal выровнены по labels.
type ServiceStats struct {
	Labels   []string  `json:"labels"`
	Normal   []float64 `json:"normal"`
	Abnormal []float64 `json:"abnormal"`
}

func (s *ServiceStats) Normalize() {
	n := min(len(s.Labels), len(s.Normal), len(s.Abnormal))
	s.Labels = s.Labels[:n]
	s.Normal = s.Normal[:n]
	s.Abnormal = s.Abnormal[:n]
}

// ColorList принимает и одиночный цвет, и массив (оба варианта допустимы в Chart.js).
// Один цвет сериализуется обратно строкой.
type ColorList []string

func (c ColorList) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

func (c *ColorList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = ColorList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("color list: %w", err)
	}
	*c = many
	return nil
}

// At циклически выбирает цвет для i-го элемента, как это делает Chart.js.
func (c ColorList) At(i int) string {
	if len(c) == 0 {
		return ""
	}
	return c[i%len(c)]
}
