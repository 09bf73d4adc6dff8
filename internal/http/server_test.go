package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"khata/internal/core"
	"khata/internal/services"
	"khata/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "khata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	ledger := services.NewLedgerService(repo, nil)
	return NewServer(":0", ledger, 1000)
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexEmptyLedger(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Net Due") {
		t.Errorf("index missing net due header")
	}
	if !strings.Contains(body, "₹0") {
		t.Errorf("empty ledger should show ₹0 totals")
	}
	if !strings.Contains(body, "Add a shop first!") {
		t.Errorf("empty ledger should prompt to add a shop")
	}
}

func TestIndexUnknownPath(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/nonexistent")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /nonexistent status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateShopFlow(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/shops", url.Values{
		"shop_name":    {"Sharma General Store"},
		"shop_details": {"Corner of MG Road"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /shops status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect location = %q, want %q", loc, "/")
	}

	rec = get(t, s, "/")
	if !strings.Contains(rec.Body.String(), "Sharma General Store") {
		t.Errorf("index should list the created shop")
	}
}

func TestCreateShopEmptyNameRejected(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/shops", url.Values{"shop_name": {"   "}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /shops status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "err="+codeEmptyName) {
		t.Errorf("redirect location = %q, want err=%s", loc, codeEmptyName)
	}

	rec = get(t, s, loc)
	if !strings.Contains(rec.Body.String(), rejectionMessages[codeEmptyName]) {
		t.Errorf("index should render the rejection message")
	}
}

func TestExpenseAndPaymentFlow(t *testing.T) {
	s := newTestServer(t)

	postForm(t, s, "/shops", url.Values{"shop_name": {"A-Mart"}})

	rec := postForm(t, s, "/expenses", url.Values{
		"shop_id": {"1"},
		"product": {"Rice 5kg"},
		"amount":  {"100"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /expenses status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "shop_id=1") {
		t.Errorf("expense redirect should keep scope, got %q", loc)
	}

	rec = postForm(t, s, "/payments", url.Values{
		"pay_shop_id": {"1"},
		"pay_amount":  {"40"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /payments status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	body := get(t, s, "/").Body.String()
	if !strings.Contains(body, "Rice 5kg") {
		t.Errorf("index should list the expense")
	}
	if !strings.Contains(body, "₹60") {
		t.Errorf("net due should be ₹60 after ₹100 expense and ₹40 payment")
	}
	if !strings.Contains(body, `class="due"`) {
		t.Errorf("positive net due should use the due class")
	}
}

func TestExpenseRejections(t *testing.T) {
	s := newTestServer(t)

	postForm(t, s, "/shops", url.Values{"shop_name": {"A-Mart"}})

	tests := []struct {
		name     string
		form     url.Values
		wantCode string
	}{
		{
			name:     "non-numeric amount",
			form:     url.Values{"shop_id": {"1"}, "product": {"Rice"}, "amount": {"abc"}},
			wantCode: codeBadAmount,
		},
		{
			name:     "zero amount",
			form:     url.Values{"shop_id": {"1"}, "product": {"Rice"}, "amount": {"0"}},
			wantCode: codeBadAmount,
		},
		{
			name:     "blank product",
			form:     url.Values{"shop_id": {"1"}, "product": {"  "}, "amount": {"50"}},
			wantCode: codeEmptyProduct,
		},
		{
			name:     "unknown shop",
			form:     url.Values{"shop_id": {"99"}, "product": {"Rice"}, "amount": {"50"}},
			wantCode: codeNoShop,
		},
		{
			name:     "malformed shop id",
			form:     url.Values{"shop_id": {"x"}, "product": {"Rice"}, "amount": {"50"}},
			wantCode: codeNoShop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, s, "/expenses", tt.form)
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
			}
			if loc := rec.Header().Get("Location"); !strings.Contains(loc, "err="+tt.wantCode) {
				t.Errorf("redirect location = %q, want err=%s", loc, tt.wantCode)
			}
		})
	}

	// No rejected submission should have left a row behind.
	body := get(t, s, "/").Body.String()
	if !strings.Contains(body, "No expenses recorded.") {
		t.Errorf("rejected expenses must not be stored")
	}
}

func TestScopedIndex(t *testing.T) {
	s := newTestServer(t)

	postForm(t, s, "/shops", url.Values{"shop_name": {"A-Mart"}})
	postForm(t, s, "/shops", url.Values{"shop_name": {"B-Stores"}})
	postForm(t, s, "/expenses", url.Values{"shop_id": {"1"}, "product": {"Rice"}, "amount": {"100"}})
	postForm(t, s, "/expenses", url.Values{"shop_id": {"2"}, "product": {"Soap"}, "amount": {"30"}})

	body := get(t, s, "/?shop_id=1").Body.String()
	if !strings.Contains(body, "Rice") {
		t.Errorf("scoped view should include the shop's expense")
	}
	if strings.Contains(body, "Soap") {
		t.Errorf("scoped view should exclude other shops' expenses")
	}
	if !strings.Contains(body, "(Filtered)") {
		t.Errorf("scoped view should be marked filtered")
	}

	// Malformed scope falls back to all shops.
	body = get(t, s, "/?shop_id=banana").Body.String()
	if !strings.Contains(body, "Rice") || !strings.Contains(body, "Soap") {
		t.Errorf("malformed scope should show all shops")
	}
	if strings.Contains(body, "(Filtered)") {
		t.Errorf("malformed scope should not be marked filtered")
	}
}

func TestDeleteShopFlow(t *testing.T) {
	s := newTestServer(t)

	postForm(t, s, "/shops", url.Values{"shop_name": {"A-Mart"}})
	postForm(t, s, "/expenses", url.Values{"shop_id": {"1"}, "product": {"Rice"}, "amount": {"100"}})
	postForm(t, s, "/payments", url.Values{"pay_shop_id": {"1"}, "pay_amount": {"40"}})

	rec := postForm(t, s, "/delete_shop/1", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /delete_shop/1 status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	body := get(t, s, "/").Body.String()
	if strings.Contains(body, "A-Mart") {
		t.Errorf("deleted shop should not be listed")
	}
	if !strings.Contains(body, "₹0") {
		t.Errorf("totals should reset after cascade delete")
	}

	// Deleting again is a harmless no-op.
	rec = postForm(t, s, "/delete_shop/1", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Errorf("repeat delete status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestMethodGuards(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/shops", "/expenses", "/payments", "/delete_shop/1"} {
		rec := get(t, s, path)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusMethodNotAllowed)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST / status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := get(t, s, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/")
	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "default-src 'self'") {
		t.Errorf("Content-Security-Policy = %q, want default-src 'self'", csp)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		rupees int64
		want   string
	}{
		{0, "₹0"},
		{100, "₹100"},
		{-40, "-₹40"},
	}
	for _, tt := range tests {
		if got := formatRupees(core.Money{Rupees: tt.rupees}); got != tt.want {
			t.Errorf("formatRupees(%d) = %q, want %q", tt.rupees, got, tt.want)
		}
	}
}
