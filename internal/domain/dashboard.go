package domain

import (
	"encoding/json"
	"fmt"
)

// Ключи срезов в ответе GET /api/dashboard-data.
const (
	SliceAttackType  = "attack_type_stats"
	SliceFailedLogin = "failed_login_stats"
	SliceProtocol    = "protocol_stats"
	SliceService     = "service_stats"
)

// DashboardStats: агрегированная статистика, полностью заменяет предыдущую при каждом обновлении.
type DashboardStats struct {
	AttackType  LabeledSeries `json:"attack_type_stats"`
	FailedLogin LabeledSeries `json:"failed_login_stats"`
	Protocol    ProtocolStats `json:"protocol_stats"`
	Service     ServiceStats  `json:"service_stats"`
}

// SliceError описывает срез, который не удалось разобрать.
type SliceError struct {
	Slice string
	Err   error
}

func (e *SliceError) Error() string {
	return fmt.Sprintf("slice %s: %v", e.Slice, e.Err)
}

func (e *SliceError) Unwrap() error {
	return e.Err
}

// ParseDashboardStats разбирает каждый срез независимо: битый или отсутствующий срез
// превращается в пустой (пустой график) и попадает в warnings, остальные не страдают.
// Ошибка возвращается только если тело вообще не JSON-объект.
func ParseDashboardStats(data []byte) (*DashboardStats, []error, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("dashboard payload: %w", err)
	}
	if raw == nil {
		return nil, nil, fmt.Errorf("dashboard payload: null body")
	}

	stats := &DashboardStats{}
	var warnings []error

	decode := func(key string, dst any) {
		msg, ok := raw[key]
		if !ok || string(msg) == "null" {
			warnings = append(warnings, &SliceError{Slice: key, Err: fmt.Errorf("missing")})
			return
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			warnings = append(warnings, &SliceError{Slice: key, Err: err})
		}
	}

	var (
		attack  LabeledSeries
		login   LabeledSeries
		proto   ProtocolStats
		service ServiceStats
	)
	decode(SliceAttackType, &attack)
	decode(SliceFailedLogin, &login)
	decode(SliceProtocol, &proto)
	decode(SliceService, &service)

	// при частичном разборе json.Unmarshal может оставить половину полей: такой срез обнуляем
	for _, w := range warnings {
		switch w.(*SliceError).Slice {
		case SliceAttackType:
			attack = LabeledSeries{}
		case SliceFailedLogin:
			login = LabeledSeries{}
		case SliceProtocol:
			proto = ProtocolStats{}
		case SliceService:
			service = ServiceStats{}
		}
	}

	attack.Normalize()
	login.Normalize()
	proto.Normalize()
	service.Normalize()

	stats.AttackType = attack
	stats.FailedLogin = login
	stats.Protocol = proto
	stats.Service = service
	return stats, warnings, nil
}
