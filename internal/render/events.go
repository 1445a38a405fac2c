package render

import (
	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
	"golang.org/x/net/html"
)

// Events строит ленту событий как есть: без сортировки и дедупликации.
func Events(events []domain.SecurityEvent) []*html.Node {
	nodes := make([]*html.Node, 0, len(events))
	for _, e := range events {
		nodes = append(nodes, dom.Element("div", "event-item "+string(e.Type),
			dom.Element("div", "event-message", dom.Text(e.Message)),
			dom.Element("div", "event-timestamp", dom.Text(e.Timestamp)),
		))
	}
	return nodes
}

func ReplaceEvents(region *dom.Region, events []domain.SecurityEvent) {
	region.Replace(Events(events)...)
}
