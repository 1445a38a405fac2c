package domain

// Prediction: вердикт модели по одной строке лога.
type Prediction string

const (
	PredictionNormal   Prediction = "normal"
	PredictionAbnormal Prediction = "abnormal"
)

// IsThreat сообщает, считается ли запись угрозой для заголовочной метрики.
func (p Prediction) IsThreat() bool {
	return p == PredictionAbnormal
}

// AnalysisRecord: одна строка ответа сервиса анализа.
type AnalysisRecord struct {
	Prediction      Prediction   `json:"prediction"`
	Service         string       `json:"service"`
	ProtocolType    string       `json:"protocol_type"`
	Duration        float64      `json:"duration"` // мс
	NumFailedLogins int          `json:"num_failed_logins"`
	Explanation     *Explanation `json:"explanation,omitempty"` // только для abnormal
}

// HasExplanation true, если у аномальной записи есть непустой блок объяснений.
func (r AnalysisRecord) HasExplanation() bool {
	return r.Prediction.IsThreat() && r.Explanation.Len() > 0
}

// AnalyzeResponse: разобранный ответ POST /api/analyze-log.
// Либо Records, либо Error (ошибка уровня приложения при HTTP 200).
type AnalyzeResponse struct {
	Records []AnalysisRecord
	Error   string
}

func (r *AnalyzeResponse) Failed() bool {
	return r != nil && r.Error != ""
}

// LogUpload: выбранный пользователем файл, уже прочитанный в память.
type LogUpload struct {
	Filename string
	Content  []byte
}

// CountThreats считает записи с prediction=abnormal.
func CountThreats(records []AnalysisRecord) int {
	n := 0
	for _, r := range records {
		if r.Prediction.IsThreat() {
			n++
		}
	}
	return n
}
