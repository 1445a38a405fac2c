package dom

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const testPage = `<!doctype html>
<html><head><title>t</title></head>
<body data-has-results="true">
  <div id="analysisResults"><div class="placeholder-text">Upload a log file</div></div>
  <span id="last-updated">never</span>
  <div class="card" id="attack-card">
    <div class="card-header"><button class="refresh-btn">r</button></div>
    <div class="card-body" style="height: 300px"><div id="attackTypeChart"></div></div>
  </div>
  <div class="card">
    <button class="refresh-btn">r</button>
    <div class="card-body"></div>
  </div>
  <div class="card"><button class="refresh-btn">no body</button></div>
  <button class="refresh-btn">orphan</button>
</body></html>`

func parseTestPage(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(testPage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestDocumentRegionLookup(t *testing.T) {
	doc := parseTestPage(t)

	results, err := doc.Region(IDResults)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	if results.ID() != IDResults {
		t.Fatalf("unexpected id %q", results.ID())
	}
	if got := results.Text(); got != "Upload a log file" {
		t.Fatalf("unexpected text %q", got)
	}

	if _, err := doc.Region("missing"); !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("expected ErrRegionNotFound, got %v", err)
	}
	if _, err := doc.Regions(IDResults, "missing"); err == nil {
		t.Fatalf("expected error for missing region")
	}
}

func TestDocumentHasResults(t *testing.T) {
	if !parseTestPage(t).HasResults() {
		t.Fatalf("expected hasResults flag")
	}
	doc, err := Parse(strings.NewReader(`<html><body></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.HasResults() {
		t.Fatalf("flag must default to false")
	}
}

func TestDocumentRefreshCards(t *testing.T) {
	cards := parseTestPage(t).RefreshCards()
	if len(cards) != 2 {
		t.Fatalf("expected 2 refreshable cards, got %d", len(cards))
	}
	if cards[0].ID != "attack-card" || cards[1].ID != "card-1" {
		t.Fatalf("unexpected card ids: %q %q", cards[0].ID, cards[1].ID)
	}
	if cards[0].Body.Style("height") != "300px" {
		t.Fatalf("card body not resolved")
	}
}

func TestRegionReplaceNeverAppends(t *testing.T) {
	doc := parseTestPage(t)
	results, _ := doc.Region(IDResults)

	for i := 0; i < 3; i++ {
		results.Replace(Element("div", "error-text", Text("boom")))
	}
	if n := len(results.Children()); n != 1 {
		t.Fatalf("expected 1 child after repeated replace, got %d", n)
	}
	if got := results.InnerHTML(); got != `<div class="error-text">boom</div>` {
		t.Fatalf("unexpected html %q", got)
	}
}

func TestRegionTextIsEscaped(t *testing.T) {
	doc := parseTestPage(t)
	results, _ := doc.Region(IDResults)
	results.SetText(`<script>alert(1)</script>`)

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Fatalf("text must be escaped: %s", buf.String())
	}
}

func TestRegionSetStyleKeepsOtherProperties(t *testing.T) {
	doc := parseTestPage(t)
	body := doc.RefreshCards()[0].Body

	body.SetStyle("opacity", "0.5")
	body.SetStyle("opacity", "1")

	if body.Style("opacity") != "1" || body.Style("height") != "300px" {
		t.Fatalf("unexpected style: opacity=%q height=%q", body.Style("opacity"), body.Style("height"))
	}
}

func TestDocumentAutoReload(t *testing.T) {
	doc := parseTestPage(t)
	render := func() string {
		var buf bytes.Buffer
		if err := doc.Render(&buf); err != nil {
			t.Fatalf("render: %v", err)
		}
		return buf.String()
	}

	doc.SetAutoReload(1)
	doc.SetAutoReload(2)
	page := render()
	if strings.Count(page, `http-equiv="refresh"`) != 1 || !strings.Contains(page, `content="2"`) {
		t.Fatalf("expected a single reload meta with content 2:\n%s", page)
	}
	if doc.AutoReload() != 2 {
		t.Fatalf("expected interval 2, got %d", doc.AutoReload())
	}

	doc.SetAutoReload(0)
	if strings.Contains(render(), "http-equiv") || doc.AutoReload() != 0 {
		t.Fatalf("reload meta must be removed")
	}
}
