package connectors

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/xela07ax/logdash/internal/infra"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(rt http.RoundTripper) *http.Client {
	return &http.Client{Transport: rt}
}

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testUpstreamConfig(baseURL string) infra.UpstreamConfig {
	return infra.UpstreamConfig{
		BaseURL:               baseURL,
		AnalyzePath:           "/api/analyze-log",
		DashboardPath:         "/api/dashboard-data",
		Timeout:               time.Second,
		MaxUploadBytes:        1 << 20,
		CBMaxRequests:         1,
		CBInterval:            time.Minute,
		CBTimeout:             time.Minute,
		CBConsecutiveFailures: 2,
	}
}
