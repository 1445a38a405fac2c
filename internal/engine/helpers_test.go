package engine

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/xela07ax/logdash/internal/chart"
	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
)

const testPage = `<!doctype html>
<html><head><title>logdash</title></head>
<body>
  <button id="uploadBtn">Upload</button><input type="file" id="fileInput">
  <span id="last-updated">never</span>
  <span id="threats-count">5</span>
  <div id="analysisResults"><div class="placeholder-text">Upload a log file</div></div>
  <div id="securityEvents"></div>
  <div class="card" id="attack-card">
    <button class="refresh-btn">r</button>
    <div class="card-body"><div id="attackTypeChart"></div></div>
  </div>
  <div class="card" id="login-card">
    <button class="refresh-btn">r</button>
    <div class="card-body"><div id="failedLoginChart"></div></div>
  </div>
  <div class="card" id="protocol-card">
    <button class="refresh-btn">r</button>
    <div class="card-body"><div id="protocolChart"></div></div>
  </div>
  <div class="card" id="service-card">
    <button class="refresh-btn">r</button>
    <div class="card-body"><div id="serviceChart"></div></div>
  </div>
</body></html>`

func parseTestPage(t *testing.T, page string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func mustRegion(t *testing.T, doc *dom.Document, id string) *dom.Region {
	t.Helper()
	r, err := doc.Region(id)
	if err != nil {
		t.Fatalf("region %s: %v", id, err)
	}
	return r
}

// manualScheduler: Go откладывает сетевой вызов до явного запуска, Post выполняет сразу.
// Так тест сам решает порядок завершения запросов.
type manualScheduler struct {
	pending []func()
}

func (s *manualScheduler) Go(task func()) {
	s.pending = append(s.pending, task)
}

func (s *manualScheduler) Post(task func()) bool {
	task()
	return true
}

func (s *manualScheduler) runAll() {
	for len(s.pending) > 0 {
		task := s.pending[0]
		s.pending = s.pending[1:]
		task()
	}
}

// runAt завершает один отложенный вызов по индексу, остальные остаются в очереди.
func (s *manualScheduler) runAt(i int) {
	task := s.pending[i]
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
	task()
}

type analyzeResult struct {
	resp *domain.AnalyzeResponse
	err  error
}

type fakeAnalysis struct {
	mu     sync.Mutex
	byFile map[string]analyzeResult
	calls  []string
	// gate: если задан, ответ задерживается до его закрытия
	gate chan struct{}
}

func (f *fakeAnalysis) AnalyzeLog(_ context.Context, upload domain.LogUpload) (*domain.AnalyzeResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, upload.Filename)
	r, gate := f.byFile[upload.Filename], f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return r.resp, r.err
}

type statsResult struct {
	stats *domain.DashboardStats
	err   error
}

// fakeStats отдает ответы по порядку вызовов; последний повторяется.
type fakeStats struct {
	mu      sync.Mutex
	results []statsResult
	calls   int
}

func (f *fakeStats) FetchDashboardData(context.Context) (*domain.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.results)-1)
	f.calls++
	return f.results[i].stats, f.results[i].err
}

type fakeHandle struct {
	slot      chart.Slot
	spec      chart.RenderSpec
	destroyed int
}

func (h *fakeHandle) Spec() chart.RenderSpec { return h.spec }
func (h *fakeHandle) Destroy()               { h.destroyed++ }
func (h *fakeHandle) SVG() ([]byte, error)   { return []byte("<svg>" + string(h.slot) + "</svg>"), nil }

// fakeCharts вызывается только из цикла, блокировка не нужна.
type fakeCharts struct {
	made []*fakeHandle
}

func (f *fakeCharts) For(spec chart.RenderSpec) chart.Factory {
	return func(slot chart.Slot) (chart.Handle, error) {
		h := &fakeHandle{slot: slot, spec: spec}
		f.made = append(f.made, h)
		return h, nil
	}
}

func sampleStats(services ...string) *domain.DashboardStats {
	normal := make([]float64, len(services))
	abnormal := make([]float64, len(services))
	for i := range services {
		normal[i] = float64(10 * (i + 1))
		abnormal[i] = float64(i + 1)
	}
	return &domain.DashboardStats{
		AttackType:  domain.LabeledSeries{Labels: []string{"normal", "abnormal"}, Data: []float64{60, 40}},
		FailedLogin: domain.LabeledSeries{Labels: []string{"normal", "abnormal"}, Data: []float64{70, 30}},
		Protocol: domain.ProtocolStats{
			Labels:   []string{"tcp", "udp"},
			Datasets: []domain.Dataset{{Label: "normal", Data: []float64{5, 6}}},
		},
		Service: domain.ServiceStats{Labels: services, Normal: normal, Abnormal: abnormal},
	}
}
