package connectors

import (
	"errors"
	"testing"
)

func TestDecodeAnalyzeResponse(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantRecords int
		wantError   string
		wantWarn    int
		malformed   bool
	}{
		{name: "records", body: `[{"prediction":"normal","service":"http","protocol_type":"tcp","duration":120,"num_failed_logins":0}]`, wantRecords: 1},
		{name: "empty list", body: ` [] `, wantRecords: 0},
		{name: "skips broken record", body: `[{"prediction":"normal"},{"duration":"slow"}]`, wantRecords: 1, wantWarn: 1},
		{name: "application error", body: `{"error":"unsupported file type"}`, wantError: "unsupported file type"},
		{name: "non-string error", body: `{"error":{"code":7}}`, wantError: `{"code":7}`},
		{name: "falsy error", body: `{"error":""}`, malformed: true},
		{name: "object without error", body: `{"status":"ok"}`, malformed: true},
		{name: "html", body: `<html></html>`, malformed: true},
		{name: "empty", body: ``, malformed: true},
		{name: "truncated", body: `[{"prediction":`, malformed: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, warnings, err := DecodeAnalyzeResponse([]byte(tc.body))
			if tc.malformed {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Error != tc.wantError {
				t.Fatalf("unexpected error text %q", resp.Error)
			}
			if len(resp.Records) != tc.wantRecords || len(warnings) != tc.wantWarn {
				t.Fatalf("unexpected decode: %d records, %d warnings", len(resp.Records), len(warnings))
			}
		})
	}
}
