package render

import (
	"strings"
	"testing"

	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
)

func TestReplaceEventsKeepsInputOrder(t *testing.T) {
	doc, err := dom.Parse(strings.NewReader(`<html><body><div id="securityEvents">loading</div></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	region, _ := doc.Region(dom.IDSecurityEvents)

	events := []domain.SecurityEvent{
		{Message: "b", Timestamp: "2025-04-19 14:32:15", Type: domain.EventDanger},
		{Message: "a", Timestamp: "2025-04-19 14:00:00", Type: domain.EventNormal},
		{Message: "a", Timestamp: "2025-04-19 14:00:00", Type: domain.EventNormal},
	}
	ReplaceEvents(region, events)
	ReplaceEvents(region, events)

	children := region.Children()
	if len(children) != 3 {
		t.Fatalf("expected 3 events without dedup, got %d", len(children))
	}
	if !dom.HasClass(children[0], "danger") || !dom.HasClass(children[0], "event-item") {
		t.Fatalf("unexpected classes on first event")
	}
	want := `<div class="event-item danger"><div class="event-message">b</div><div class="event-timestamp">2025-04-19 14:32:15</div></div>`
	if !strings.HasPrefix(region.InnerHTML(), want) {
		t.Fatalf("unexpected html: %s", region.InnerHTML())
	}
}
