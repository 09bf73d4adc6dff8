package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"khata/internal/core"
	applog "khata/internal/log"
	"khata/internal/metrics"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.ledger.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// indexData is the template payload for the ledger page.
type indexData struct {
	Shops          []core.Shop
	SelectedShopID string
	Filtered       bool
	Expenses       []entryRow
	Payments       []entryRow
	TotalExpense   string
	TotalPaid      string
	NetDue         string
	NetDueClass    string
	ErrMsg         string
}

type entryRow struct {
	Shop    string
	Product string
	Amount  string
	Date    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	selected := strings.TrimSpace(r.URL.Query().Get("shop_id"))
	scope := parseScope(selected)

	snap, err := s.ledger.ListLedger(r.Context(), scope)
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger list error", "error", err,
			applog.FieldOperation, applog.OpListLedger)
		metrics.OperationsTotal.WithLabelValues(applog.OpListLedger, "error").Inc()
		http.Error(w, "ledger unavailable", http.StatusInternalServerError)
		return
	}
	metrics.OperationsTotal.WithLabelValues(applog.OpListLedger, "ok").Inc()

	data := indexData{
		Shops:          snap.Shops,
		SelectedShopID: selected,
		Filtered:       !scope.All(),
		TotalExpense:   formatRupees(snap.TotalExpense),
		TotalPaid:      formatRupees(snap.TotalPaid),
		NetDue:         formatRupees(snap.NetDue),
		ErrMsg:         rejectionMessages[r.URL.Query().Get("err")],
	}
	switch {
	case snap.NetDue.Rupees > 0:
		data.NetDueClass = "due"
	case snap.NetDue.Rupees < 0:
		data.NetDueClass = "credit"
	default:
		data.NetDueClass = "settled"
	}
	for _, e := range snap.Expenses {
		data.Expenses = append(data.Expenses, entryRow{
			Shop:    e.ShopName,
			Product: e.Product,
			Amount:  formatRupees(e.Amount),
			Date:    e.Date,
		})
	}
	for _, p := range snap.Payments {
		data.Payments = append(data.Payments, entryRow{
			Shop:   p.ShopName,
			Amount: formatRupees(p.Amount),
			Date:   p.Date,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err,
			"template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err,
			applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
		redirectToIndex(w, r, "", codeBadRequest)
		return
	}

	name := sanitizeInput(r.Form.Get("shop_name"))
	details := sanitizeInput(r.Form.Get("shop_details"))

	id, err := s.ledger.CreateShop(r.Context(), name, details)
	if err != nil {
		if code := rejectionCode(err); code != "" {
			metrics.OperationsTotal.WithLabelValues(applog.OpCreateShop, "rejected").Inc()
			redirectToIndex(w, r, "", code)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create shop", "error", err,
			applog.FieldShopName, name,
			applog.FieldOperation, applog.OpCreateShop)
		metrics.OperationsTotal.WithLabelValues(applog.OpCreateShop, "error").Inc()
		http.Error(w, "error saving shop", http.StatusInternalServerError)
		return
	}

	metrics.OperationsTotal.WithLabelValues(applog.OpCreateShop, "ok").Inc()
	slog.InfoContext(r.Context(), "Shop created",
		applog.FieldShopID, id,
		applog.FieldShopName, name,
		applog.FieldOperation, applog.OpCreateShop)
	redirectToIndex(w, r, "", "")
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err,
			applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
		redirectToIndex(w, r, "", codeBadRequest)
		return
	}

	shopIDStr := strings.TrimSpace(r.Form.Get("shop_id"))
	shopID, err := strconv.ParseInt(shopIDStr, 10, 64)
	if err != nil || shopID <= 0 {
		redirectToIndex(w, r, "", codeNoShop)
		return
	}
	product := sanitizeInput(r.Form.Get("product"))
	amount := r.Form.Get("amount")

	id, err := s.ledger.RecordExpense(r.Context(), shopID, product, amount)
	if err != nil {
		if code := rejectionCode(err); code != "" {
			metrics.OperationsTotal.WithLabelValues(applog.OpRecordExpense, "rejected").Inc()
			redirectToIndex(w, r, shopIDStr, code)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to record expense", "error", err,
			applog.FieldShopID, shopID,
			applog.FieldProduct, product,
			applog.FieldOperation, applog.OpRecordExpense)
		metrics.OperationsTotal.WithLabelValues(applog.OpRecordExpense, "error").Inc()
		http.Error(w, "error saving expense", http.StatusInternalServerError)
		return
	}

	metrics.OperationsTotal.WithLabelValues(applog.OpRecordExpense, "ok").Inc()
	slog.InfoContext(r.Context(), "Expense recorded",
		"id", id,
		applog.FieldShopID, shopID,
		applog.FieldProduct, product,
		applog.FieldOperation, applog.OpRecordExpense)
	redirectToIndex(w, r, shopIDStr, "")
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err,
			applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
		redirectToIndex(w, r, "", codeBadRequest)
		return
	}

	shopIDStr := strings.TrimSpace(r.Form.Get("pay_shop_id"))
	shopID, err := strconv.ParseInt(shopIDStr, 10, 64)
	if err != nil || shopID <= 0 {
		redirectToIndex(w, r, "", codeNoShop)
		return
	}
	amount := r.Form.Get("pay_amount")

	id, err := s.ledger.RecordPayment(r.Context(), shopID, amount)
	if err != nil {
		if code := rejectionCode(err); code != "" {
			metrics.OperationsTotal.WithLabelValues(applog.OpRecordPayment, "rejected").Inc()
			redirectToIndex(w, r, shopIDStr, code)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to record payment", "error", err,
			applog.FieldShopID, shopID,
			applog.FieldOperation, applog.OpRecordPayment)
		metrics.OperationsTotal.WithLabelValues(applog.OpRecordPayment, "error").Inc()
		http.Error(w, "error saving payment", http.StatusInternalServerError)
		return
	}

	metrics.OperationsTotal.WithLabelValues(applog.OpRecordPayment, "ok").Inc()
	slog.InfoContext(r.Context(), "Payment recorded",
		"id", id,
		applog.FieldShopID, shopID,
		applog.FieldOperation, applog.OpRecordPayment)
	redirectToIndex(w, r, shopIDStr, "")
}

func (s *Server) handleDeleteShop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/delete_shop/")
	shopID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || shopID <= 0 {
		redirectToIndex(w, r, "", codeNoShop)
		return
	}

	if err := s.ledger.DeleteShop(r.Context(), shopID); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete shop", "error", err,
			applog.FieldShopID, shopID,
			applog.FieldOperation, applog.OpDeleteShop)
		metrics.OperationsTotal.WithLabelValues(applog.OpDeleteShop, "error").Inc()
		http.Error(w, "error deleting shop", http.StatusInternalServerError)
		return
	}

	metrics.OperationsTotal.WithLabelValues(applog.OpDeleteShop, "ok").Inc()
	slog.InfoContext(r.Context(), "Shop deleted",
		applog.FieldShopID, shopID,
		applog.FieldOperation, applog.OpDeleteShop)
	redirectToIndex(w, r, "", "")
}
