package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
	"go.uber.org/zap"
)

type uploadFixture struct {
	ctrl    *UploadController
	sched   *manualScheduler
	api     *fakeAnalysis
	metrics *Metrics
	results *dom.Region
	updated *dom.Region
	threats *dom.Region
}

func newUploadFixture(t *testing.T) *uploadFixture {
	t.Helper()
	doc := parseTestPage(t, testPage)
	f := &uploadFixture{
		sched:   &manualScheduler{},
		api:     &fakeAnalysis{byFile: map[string]analyzeResult{}},
		metrics: NewMetrics(prometheus.NewRegistry()),
		results: mustRegion(t, doc, dom.IDResults),
		updated: mustRegion(t, doc, dom.IDLastUpdated),
		threats: mustRegion(t, doc, dom.IDThreatsCount),
	}
	f.ctrl = NewUploadController(f.api, f.sched, UploadRegions{
		Results:     f.results,
		LastUpdated: f.updated,
		Threats:     f.threats,
	}, f.metrics, zap.NewNop())
	return f
}

func (f *uploadFixture) selectFile(name string) {
	f.ctrl.Select(context.Background(), domain.LogUpload{Filename: name, Content: []byte("x")})
}

func TestUploadShowsPlaceholderBeforeResponse(t *testing.T) {
	f := newUploadFixture(t)
	f.selectFile("auth.log")

	if got := f.results.Text(); got != "Analyzing auth.log..." {
		t.Fatalf("unexpected placeholder %q", got)
	}
	if got := f.updated.Text(); got != LastUpdatedNow {
		t.Fatalf("last-updated must be stamped, got %q", got)
	}
	if f.ctrl.State() != UploadSubmitting {
		t.Fatalf("expected submitting, got %s", f.ctrl.State())
	}
	if len(f.api.calls) != 0 {
		t.Fatalf("upload must run off-loop")
	}
}

func TestUploadRendersNormalRecord(t *testing.T) {
	f := newUploadFixture(t)
	f.api.byFile["a.log"] = analyzeResult{resp: &domain.AnalyzeResponse{Records: []domain.AnalysisRecord{
		{Prediction: domain.PredictionNormal, Service: "http", ProtocolType: "tcp", Duration: 120},
	}}}

	f.selectFile("a.log")
	f.sched.runAll()

	html := f.results.InnerHTML()
	if strings.Count(html, `class="analysis-item normal"`) != 1 || !strings.Contains(html, "Prediction: NORMAL") {
		t.Fatalf("unexpected results: %s", html)
	}
	if strings.Contains(html, "explanation-list") {
		t.Fatalf("normal record must not render explanation: %s", html)
	}
	if f.threats.Text() != "0" {
		t.Fatalf("expected 0 threats, got %q", f.threats.Text())
	}
	if f.ctrl.State() != UploadRendered {
		t.Fatalf("expected rendered, got %s", f.ctrl.State())
	}
	if v := testutil.ToFloat64(f.metrics.UploadsTotal.WithLabelValues(outcomeRendered)); v != 1 {
		t.Fatalf("expected rendered counter 1, got %v", v)
	}
}

func TestUploadRendersAbnormalRecordWithExplanation(t *testing.T) {
	f := newUploadFixture(t)
	f.api.byFile["ssh.log"] = analyzeResult{resp: &domain.AnalyzeResponse{Records: []domain.AnalysisRecord{{
		Prediction:      domain.PredictionAbnormal,
		Service:         "ssh",
		ProtocolType:    "tcp",
		Duration:        4500,
		NumFailedLogins: 7,
		Explanation:     domain.NewExplanation(domain.ExplanationEntry{Key: "rule1", Value: "too many failed logins"}),
	}}}}

	f.selectFile("ssh.log")
	f.sched.runAll()

	html := f.results.InnerHTML()
	if !strings.Contains(html, "Prediction: ABNORMAL") {
		t.Fatalf("unexpected results: %s", html)
	}
	if strings.Count(html, `class="explanation-item"`) != 1 || !strings.Contains(html, "- too many failed logins") {
		t.Fatalf("expected one explanation line: %s", html)
	}
	if strings.Contains(html, "rule1") {
		t.Fatalf("explanation keys must not be displayed: %s", html)
	}
	if f.threats.Text() != "1" {
		t.Fatalf("expected 1 threat, got %q", f.threats.Text())
	}
}

func TestUploadApplicationErrorKeepsThreatCount(t *testing.T) {
	f := newUploadFixture(t)
	f.api.byFile["img.png"] = analyzeResult{resp: &domain.AnalyzeResponse{Error: "unsupported file type"}}

	f.selectFile("img.png")
	f.sched.runAll()

	if got := f.results.InnerHTML(); got != `<div class="error-text">unsupported file type</div>` {
		t.Fatalf("results must show only the error text, got %s", got)
	}
	if f.threats.Text() != "5" {
		t.Fatalf("threat count must be untouched, got %q", f.threats.Text())
	}
	if f.ctrl.State() != UploadErrored {
		t.Fatalf("expected errored, got %s", f.ctrl.State())
	}
}

func TestUploadTransportErrorShowsGenericText(t *testing.T) {
	f := newUploadFixture(t)
	f.api.byFile["a.log"] = analyzeResult{err: errors.New("dial tcp: connection refused")}

	f.selectFile("a.log")
	f.sched.runAll()

	got := f.results.InnerHTML()
	if got != `<div class="error-text">Error analyzing file.</div>` {
		t.Fatalf("unexpected error markup %s", got)
	}
	if strings.Contains(got, "refused") {
		t.Fatalf("transport cause must not leak to the page")
	}
	if v := testutil.ToFloat64(f.metrics.UploadsTotal.WithLabelValues(outcomeTransportError)); v != 1 {
		t.Fatalf("expected transport error counter 1, got %v", v)
	}
}

func TestUploadErrorThenSuccessLeavesNoStaleContent(t *testing.T) {
	f := newUploadFixture(t)
	f.api.byFile["bad.log"] = analyzeResult{resp: &domain.AnalyzeResponse{Error: "boom"}}
	f.api.byFile["good.log"] = analyzeResult{resp: &domain.AnalyzeResponse{Records: []domain.AnalysisRecord{
		{Prediction: domain.PredictionNormal}, {Prediction: domain.PredictionNormal},
	}}}

	f.selectFile("bad.log")
	f.sched.runAll()
	f.selectFile("good.log")
	f.sched.runAll()
	f.selectFile("good.log")
	f.sched.runAll()

	html := f.results.InnerHTML()
	if strings.Contains(html, "error-text") || strings.Count(html, "analysis-item") != 2 {
		t.Fatalf("expected exactly two result items, got %s", html)
	}
}

func TestUploadDropsSupersededResponse(t *testing.T) {
	f := newUploadFixture(t)
	f.api.byFile["old.log"] = analyzeResult{resp: &domain.AnalyzeResponse{Error: "old failure"}}
	f.api.byFile["new.log"] = analyzeResult{resp: &domain.AnalyzeResponse{Records: []domain.AnalysisRecord{
		{Prediction: domain.PredictionAbnormal},
	}}}

	f.selectFile("old.log")
	f.selectFile("new.log")

	// новый ответ приходит раньше старого
	f.sched.runAt(1)
	f.sched.runAt(0)

	html := f.results.InnerHTML()
	if strings.Contains(html, "old failure") || !strings.Contains(html, "ABNORMAL") {
		t.Fatalf("late response of superseded upload must be dropped, got %s", html)
	}
	if v := testutil.ToFloat64(f.metrics.StaleResponses.WithLabelValues("upload")); v != 1 {
		t.Fatalf("expected 1 stale upload, got %v", v)
	}
	if f.ctrl.Current() != "new.log" {
		t.Fatalf("unexpected current file %q", f.ctrl.Current())
	}
}
