package render

import (
	"strconv"
	"strings"

	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
	"golang.org/x/net/html"
)

// GenericUploadError показывается при любом транспортном сбое; причина уходит только в лог.
const GenericUploadError = "Error analyzing file."

// Results строит фрагмент списка результатов в порядке входа и считает угрозы.
func Results(records []domain.AnalysisRecord) ([]*html.Node, int) {
	nodes := make([]*html.Node, 0, len(records))
	for _, r := range records {
		nodes = append(nodes, resultItem(r))
	}
	return nodes, domain.CountThreats(records)
}

// ReplaceResults полностью заменяет содержимое области результатов.
func ReplaceResults(region *dom.Region, records []domain.AnalysisRecord) int {
	nodes, threats := Results(records)
	region.Replace(nodes...)
	return threats
}

func resultItem(r domain.AnalysisRecord) *html.Node {
	item := dom.Element("div", strings.TrimSpace("analysis-item "+string(r.Prediction)),
		dom.Element("div", "result-header",
			dom.Element("strong", "", dom.Text("Prediction: "+strings.ToUpper(string(r.Prediction)))),
		),
		details(r),
	)

	if r.HasExplanation() {
		list := dom.Element("div", "explanation-list")
		for _, v := range r.Explanation.Values() {
			list.AppendChild(dom.Element("div", "explanation-item", dom.Text("- "+v)))
		}
		item.AppendChild(list)
	}
	return item
}

func details(r domain.AnalysisRecord) *html.Node {
	parts := []string{
		"Service: " + r.Service,
		"Protocol: " + r.ProtocolType,
		"Duration: " + strconv.FormatFloat(r.Duration, 'f', -1, 64) + "ms",
		"Failed Logins: " + strconv.Itoa(r.NumFailedLogins),
	}

	n := dom.Element("div", "result-details")
	for i, p := range parts {
		if i > 0 {
			n.AppendChild(dom.Text(" | "))
		}
		n.AppendChild(dom.Element("span", "", dom.Text(p)))
	}
	return n
}

// Placeholder: временная заглушка "Analyzing <file>...".
func Placeholder(text string) *html.Node {
	return dom.Element("div", "placeholder-text", dom.Text(text))
}

// ErrorText: единственное сообщение об ошибке вместо списка результатов.
func ErrorText(text string) *html.Node {
	return dom.Element("div", "error-text", dom.Text(text))
}
