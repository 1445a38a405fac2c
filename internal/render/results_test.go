package render

import (
	"strings"
	"testing"

	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
	"golang.org/x/net/html"
)

func newRegion(t *testing.T) *dom.Region {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(`<html><body><div id="analysisResults"><p>old</p></div></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r, err := doc.Region(dom.IDResults)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	return r
}

func TestResultsScenarioNormal(t *testing.T) {
	region := newRegion(t)
	threats := ReplaceResults(region, []domain.AnalysisRecord{{
		Prediction: domain.PredictionNormal, Service: "http", ProtocolType: "tcp", Duration: 120,
	}})

	if threats != 0 {
		t.Fatalf("expected 0 threats, got %d", threats)
	}
	got := region.InnerHTML()
	want := `<div class="analysis-item normal"><div class="result-header"><strong>Prediction: NORMAL</strong></div>` +
		`<div class="result-details"><span>Service: http</span> | <span>Protocol: tcp</span> | ` +
		`<span>Duration: 120ms</span> | <span>Failed Logins: 0</span></div></div>`
	if got != want {
		t.Fatalf("unexpected html:\n got %s\nwant %s", got, want)
	}
	if strings.Contains(got, "explanation") {
		t.Fatalf("normal record must not render explanations")
	}
}

func TestResultsScenarioAbnormal(t *testing.T) {
	region := newRegion(t)
	threats := ReplaceResults(region, []domain.AnalysisRecord{{
		Prediction: domain.PredictionAbnormal, Service: "ssh", ProtocolType: "tcp", Duration: 4500, NumFailedLogins: 7,
		Explanation: domain.NewExplanation(domain.ExplanationEntry{Key: "rule1", Value: "too many failed logins"}),
	}})

	if threats != 1 {
		t.Fatalf("expected 1 threat, got %d", threats)
	}
	got := region.InnerHTML()
	if !strings.Contains(got, "<strong>Prediction: ABNORMAL</strong>") {
		t.Fatalf("missing header: %s", got)
	}
	if !strings.Contains(got, `<div class="explanation-list"><div class="explanation-item">- too many failed logins</div></div>`) {
		t.Fatalf("missing explanation line: %s", got)
	}
	if strings.Contains(got, "rule1") {
		t.Fatalf("explanation keys must not be displayed")
	}
}

func TestResultsExplanationOrderAndAbsence(t *testing.T) {
	records := []domain.AnalysisRecord{
		{Prediction: domain.PredictionAbnormal, Explanation: domain.NewExplanation(
			domain.ExplanationEntry{Key: "b", Value: "second rule first"},
			domain.ExplanationEntry{Key: "a", Value: "first rule second"},
		)},
		{Prediction: domain.PredictionAbnormal},
		{Prediction: domain.PredictionNormal, Explanation: domain.NewExplanation(domain.ExplanationEntry{Key: "x", Value: "ignored"})},
	}
	nodes, threats := Results(records)
	if threats != 2 || len(nodes) != 3 {
		t.Fatalf("unexpected result: %d nodes, %d threats", len(nodes), threats)
	}

	first := dom.TextContent(nodes[0])
	if strings.Index(first, "- second rule first") > strings.Index(first, "- first rule second") {
		t.Fatalf("explanation order not preserved: %s", first)
	}
	for i, n := range nodes[1:] {
		items := dom.FindAll(n, func(n2 *html.Node) bool { return dom.HasClass(n2, "explanation-list") })
		if len(items) != 0 {
			t.Fatalf("record %d must not have an explanation block", i+1)
		}
	}
}

func TestResultsRenderIsIdempotent(t *testing.T) {
	region := newRegion(t)
	records := []domain.AnalysisRecord{
		{Prediction: domain.PredictionNormal, Service: "http"},
		{Prediction: domain.PredictionAbnormal, Service: "ftp"},
	}

	ReplaceResults(region, records)
	first := region.InnerHTML()
	ReplaceResults(region, records)

	if region.InnerHTML() != first {
		t.Fatalf("re-render changed content")
	}
	if n := len(region.Children()); n != 2 {
		t.Fatalf("expected 2 items, got %d", n)
	}
}

func TestResultsEscapesPayloadText(t *testing.T) {
	region := newRegion(t)
	ReplaceResults(region, []domain.AnalysisRecord{{Prediction: "<b>x</b>", Service: "<img src=x>"}})
	if got := region.InnerHTML(); strings.Contains(got, "<img") || strings.Contains(got, "<B>") {
		t.Fatalf("payload must be escaped: %s", got)
	}
}
