package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"khata/internal/services"
	"khata/internal/storage"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:4321",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from untrusted peer is ignored",
			remoteAddr: "203.0.113.7:4321",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "real-ip header from untrusted peer is ignored",
			remoteAddr: "203.0.113.7:4321",
			headers:    map[string]string{"X-Real-IP": "198.51.100.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy forwards the first entry",
			remoteAddr: "127.0.0.1:4321",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"},
			want:       "198.51.100.1",
		},
		{
			name:       "trusted proxy with garbage forwarded value falls back",
			remoteAddr: "127.0.0.1:4321",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:       "127.0.0.1",
		},
		{
			name:       "trusted proxy real-ip",
			remoteAddr: "192.168.1.5:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitIgnoresSpoofedForwarding(t *testing.T) {
	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "khata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	s := NewServer(":0", services.NewLedgerService(repo, nil), 1)

	// Same untrusted peer rotating X-Forwarded-For must still share one
	// rate-limit bucket.
	post := func(xff string) int {
		form := url.Values{"shop_name": {"A-Mart"}}
		req := httptest.NewRequest(http.MethodPost, "/shops", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", xff)
		req.RemoteAddr = "203.0.113.7:4321"
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post("198.51.100.1"); code != http.StatusSeeOther {
		t.Fatalf("first POST status = %d, want %d", code, http.StatusSeeOther)
	}
	if code := post("198.51.100.2"); code != http.StatusTooManyRequests {
		t.Errorf("second POST status = %d, want %d", code, http.StatusTooManyRequests)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/shops", "/shops"},
		{"/delete_shop/42", "/delete_shop/:id"},
		{"/static/style.css", "/static/"},
		{"/some/random/404", "unmatched"},
	}
	for _, tt := range tests {
		if got := routeLabel(tt.path); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
