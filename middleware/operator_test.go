package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOperatorResolver_Precedence(t *testing.T) {
	resolver := OperatorResolver{Header: "X-Operator"}

	tests := []struct {
		name     string
		payload  string
		header   string
		fallback string
		want     string
	}{
		{"payload wins over everything", "alice", "bob", "garry", "alice"},
		{"header when payload empty", "", "bob", "garry", "bob"},
		{"fallback when payload and header empty", "", "", "garry", "garry"},
		{"system when nothing given", "", "", "", "system"},
		{"payload without header", "alice", "", "", "alice"},
		{"header without fallback", "", "bob", "", "bob"},
		{"blank payload is ignored", "   ", "bob", "garry", "bob"},
		{"blank header is ignored", "", "  ", "garry", "garry"},
		{"values are trimmed", " alice ", "", "", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Operator", tt.header)
			}

			got := resolver.Resolve(req, tt.payload, tt.fallback)
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperatorResolver_NoHeaderConfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Operator", "bob")

	if got := (OperatorResolver{}).Resolve(req, "", "notification-worker"); got != "notification-worker" {
		t.Errorf("Resolve() = %q, want %q", got, "notification-worker")
	}
}
