package connectors

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xela07ax/logdash/internal/domain"
)

// DecodeAnalyzeResponse разбирает ответ /api/analyze-log:
//   - массив записей: результат анализа (битые записи пропускаются и попадают в warnings);
//   - объект с непустым error: ошибка уровня приложения;
//   - всё остальное: ErrMalformedResponse.
func DecodeAnalyzeResponse(data []byte) (*domain.AnalyzeResponse, []error, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}

		resp := &domain.AnalyzeResponse{Records: make([]domain.AnalysisRecord, 0, len(raw))}
		var warnings []error
		for i, msg := range raw {
			var rec domain.AnalysisRecord
			if err := json.Unmarshal(msg, &rec); err != nil {
				warnings = append(warnings, fmt.Errorf("record %d: %w", i, err))
				continue
			}
			resp.Records = append(resp.Records, rec)
		}
		return resp, warnings, nil

	case '{':
		var obj struct {
			Error json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if msg := errorText(obj.Error); msg != "" {
			return &domain.AnalyzeResponse{Error: msg}, nil, nil
		}
		return nil, nil, fmt.Errorf("%w: object without error field", ErrMalformedResponse)

	default:
		return nil, nil, fmt.Errorf("%w: unexpected payload", ErrMalformedResponse)
	}
}

// errorText: пустые/ложные значения означают "ошибки нет".
func errorText(raw json.RawMessage) string {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}
