package connectors

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/logdash/internal/domain"
)

// Пороги правил простого классификатора mock-сервиса.
const (
	mockFailedLoginsThreshold = 3
	mockLongDurationMillis    = 3000
)

// MockAnalysisService имитирует сервис анализа для локальной разработки и тестов:
// те же эндпоинты и форматы ответов, детерминированные правила вместо модели.
type MockAnalysisService struct {
	maxLatency time.Duration
}

// NewMockAnalysisService: maxLatency=0 отключает имитацию задержки.
func NewMockAnalysisService(maxLatency time.Duration) *MockAnalysisService {
	return &MockAnalysisService{maxLatency: maxLatency}
}

func (m *MockAnalysisService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/api/analyze-log", m.AnalyzeLog)
	r.Get("/api/dashboard-data", m.DashboardData)
	return r
}

// AnalyzeLog принимает CSV: service,protocol_type,duration,num_failed_logins (заголовок необязателен).
// Ошибки формата отдаются как {"error": "..."} с HTTP 200, как у настоящего сервиса.
func (m *MockAnalysisService) AnalyzeLog(w http.ResponseWriter, r *http.Request) {
	if err := m.sleep(r.Context()); err != nil {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, map[string]string{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".log", ".txt":
	default:
		writeJSON(w, map[string]string{"error": "unsupported file type"})
		return
	}

	records, err := classifyRows(file)
	if err != nil {
		writeJSON(w, map[string]string{"error": "could not parse log file: " + err.Error()})
		return
	}
	writeJSON(w, records)
}

// DashboardData отдает фиксированную статистику обучающей выборки.
func (m *MockAnalysisService) DashboardData(w http.ResponseWriter, r *http.Request) {
	if err := m.sleep(r.Context()); err != nil {
		return
	}

	writeJSON(w, map[string]any{
		domain.SliceAttackType: domain.LabeledSeries{
			Labels: []string{"normal", "abnormal"},
			Data:   []float64{53.46, 46.54},
		},
		domain.SliceFailedLogin: domain.LabeledSeries{
			Labels: []string{"normal", "abnormal"},
			Data:   []float64{53.46, 46.54},
		},
		domain.SliceProtocol: domain.ProtocolStats{
			Labels: []string{"tcp", "udp", "icmp"},
			Datasets: []domain.Dataset{
				{Label: "normal", Data: []float64{53600, 12434, 1309}, BackgroundColor: domain.ColorList{"#6a994e"}},
				{Label: "abnormal", Data: []float64{49089, 2559, 6982}, BackgroundColor: domain.ColorList{"#720026"}},
			},
		},
		domain.SliceService: domain.ServiceStats{
			Labels:   []string{"http", "private", "domain_u", "smtp", "ftp_data", "ecr_i", "other"},
			Normal:   []float64{38049, 982, 9034, 5858, 3984, 190, 2604},
			Abnormal: []float64{2240, 20871, 9, 1030, 1876, 2887, 1755},
		},
		// лишний срез из исходного сервиса: консоль его игнорирует
		"duration_stats": domain.LabeledSeries{
			Labels: []string{"normal", "abnormal"},
			Data:   []float64{0.0039, 0.0092},
		},
	})
}

// sleep имитирует задержку 50мс..maxLatency, уважая отмену запроса.
func (m *MockAnalysisService) sleep(ctx context.Context) error {
	if m.maxLatency <= 0 {
		return nil
	}
	latency := 50*time.Millisecond + time.Duration(rand.Int64N(int64(max(m.maxLatency, time.Millisecond))))

	select {
	case <-time.After(latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func classifyRows(r io.Reader) ([]domain.AnalysisRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records := make([]domain.AnalysisRecord, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 4 || row[0] == "service" {
			continue
		}

		duration, errD := strconv.ParseFloat(row[2], 64)
		failed, errF := strconv.Atoi(row[3])
		if errD != nil || errF != nil {
			continue
		}
		records = append(records, classify(row[0], row[1], duration, failed))
	}
	return records, nil
}

func classify(service, protocol string, duration float64, failed int) domain.AnalysisRecord {
	rec := domain.AnalysisRecord{
		Prediction:      domain.PredictionNormal,
		Service:         service,
		ProtocolType:    protocol,
		Duration:        duration,
		NumFailedLogins: failed,
	}

	var reasons []domain.ExplanationEntry
	if failed >= mockFailedLoginsThreshold {
		reasons = append(reasons, domain.ExplanationEntry{Key: "num_failed_logins", Value: "too many failed logins"})
	}
	if duration > mockLongDurationMillis {
		reasons = append(reasons, domain.ExplanationEntry{Key: "duration", Value: "unusually long connection"})
	}
	if service == "telnet" {
		reasons = append(reasons, domain.ExplanationEntry{Key: "service", Value: "legacy plaintext service"})
	}

	if len(reasons) > 0 {
		rec.Prediction = domain.PredictionAbnormal
		rec.Explanation = domain.NewExplanation(reasons...)
	}
	return rec
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
	}
}
