package core

import (
	"errors"
	"strings"
	"time"
)

// TimeLayout is the storage and display format for ledger timestamps.
// It sorts lexicographically, so descending text order equals descending time order.
const TimeLayout = "2006-01-02 15:04:05"

type (
	// Money is a whole-rupee amount. The ledger has no fractional units.
	Money struct {
		Rupees int64
	}

	Shop struct {
		ID      int64
		Name    string
		Details string
	}

	Expense struct {
		ID      int64
		ShopID  int64
		Product string
		Amount  Money
		Date    time.Time
	}

	Payment struct {
		ID     int64
		ShopID int64
		Amount Money
		Date   time.Time
	}

	// ExpenseView is an expense joined with its owning shop's name,
	// shaped for listing.
	ExpenseView struct {
		ShopName string
		Product  string
		Amount   Money
		Date     string
	}

	// PaymentView is a payment joined with its owning shop's name.
	PaymentView struct {
		ShopName string
		Amount   Money
		Date     string
	}

	// LedgerSnapshot is everything needed to render the ledger for a scope.
	LedgerSnapshot struct {
		Shops        []Shop
		Expenses     []ExpenseView
		Payments     []PaymentView
		TotalExpense Money
		TotalPaid    Money
		NetDue       Money
	}
)

var (
	ErrEmptyShopName = errors.New("empty shop name")
	ErrEmptyProduct  = errors.New("empty product")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrShopNotFound  = errors.New("shop not found")
)

// Scope selects either the whole ledger or a single shop.
// The zero value means all shops.
type Scope struct {
	ShopID int64
}

func AllShops() Scope        { return Scope{} }
func OneShop(id int64) Scope { return Scope{ShopID: id} }
func (s Scope) All() bool    { return s.ShopID == 0 }

func (m Money) Validate() error {
	if m.Rupees <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Shop) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyShopName
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Product) == "" {
		return ErrEmptyProduct
	}
	return e.Amount.Validate()
}

func (p Payment) Validate() error {
	return p.Amount.Validate()
}
