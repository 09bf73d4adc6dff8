package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"khata/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// formatRupees formats a whole-rupee amount (e.g. "₹100", "-₹40").
func formatRupees(m core.Money) string {
	v := m.Rupees
	if v < 0 {
		return "-₹" + strconv.FormatInt(-v, 10)
	}
	return "₹" + strconv.FormatInt(v, 10)
}

// parseScope maps the shop_id parameter to a ledger scope.
// Empty, "all" or malformed values select all shops.
func parseScope(shopID string) core.Scope {
	shopID = strings.TrimSpace(shopID)
	if shopID == "" || shopID == "all" {
		return core.AllShops()
	}
	id, err := strconv.ParseInt(shopID, 10, 64)
	if err != nil || id <= 0 {
		return core.AllShops()
	}
	return core.OneShop(id)
}

// Short rejection codes carried through the post-redirect-get cycle.
const (
	codeEmptyName    = "empty_name"
	codeEmptyProduct = "empty_product"
	codeBadAmount    = "bad_amount"
	codeNoShop       = "no_shop"
	codeBadRequest   = "bad_request"
)

var rejectionMessages = map[string]string{
	codeEmptyName:    "Shop name cannot be empty.",
	codeEmptyProduct: "Product name cannot be empty.",
	codeBadAmount:    "Amount must be a positive whole number.",
	codeNoShop:       "That shop does not exist.",
	codeBadRequest:   "Invalid form submission.",
}

// rejectionCode maps a ledger error to its redirect code, or "" if the
// error is not a user-facing rejection.
func rejectionCode(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyShopName):
		return codeEmptyName
	case errors.Is(err, core.ErrEmptyProduct):
		return codeEmptyProduct
	case errors.Is(err, core.ErrInvalidAmount):
		return codeBadAmount
	case errors.Is(err, core.ErrShopNotFound):
		return codeNoShop
	default:
		return ""
	}
}

// redirectToIndex redirects back to the ledger page, carrying the scope and
// an optional rejection code so the message survives the redirect.
func redirectToIndex(w http.ResponseWriter, r *http.Request, shopID, errCode string) {
	q := url.Values{}
	if shopID != "" && shopID != "all" {
		q.Set("shop_id", shopID)
	}
	if errCode != "" {
		q.Set("err", errCode)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
