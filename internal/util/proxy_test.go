package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc_ExplicitProxies(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure-proxy.local:3128", "internal.example")

	tests := []struct {
		url  string
		want string
	}{
		{"http://example.com/a", "http://proxy.local:3128"},
		{"https://example.com/a", "http://secure-proxy.local:3128"},
		{"https://internal.example/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.url, nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			got, err := proxy(req)
			if err != nil {
				t.Fatalf("proxy: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected no proxy for %s, got %s", tt.url, got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("expected proxy %s, got %v", tt.want, got)
			}
		})
	}
}
