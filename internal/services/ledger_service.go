// Package services contains the ledger service: the sole mutator and reader
// of ledger state. All validation happens here, before anything touches the
// store, so invalid input never writes a row.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/storage"
)

// LedgerService orchestrates ledger operations across SQLite and AMQP.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateShop records a new shop. The name is trimmed; an empty result is
// rejected with core.ErrEmptyShopName. Details are stored as given.
func (s *LedgerService) CreateShop(ctx context.Context, name, details string) (int64, error) {
	shop := core.Shop{Name: strings.TrimSpace(name), Details: details}
	if err := shop.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateShop(ctx, shop.Name, shop.Details)
	if err != nil {
		return 0, fmt.Errorf("create shop: %w", err)
	}

	s.publishEvent(ctx, amqp.NewLedgerEvent(amqp.EventShopCreated, id, 0, 0))
	return id, nil
}

// DeleteShop removes a shop and all of its expenses and payments as one
// atomic unit. Deleting a shop that does not exist is a no-op, not an error,
// and publishes no event.
func (s *LedgerService) DeleteShop(ctx context.Context, shopID int64) error {
	deleted, err := s.storage.DeleteShop(ctx, shopID)
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}

	if deleted {
		s.publishEvent(ctx, amqp.NewLedgerEvent(amqp.EventShopDeleted, shopID, 0, 0))
	}
	return nil
}

// RecordExpense records a product purchase for a shop. The amount must parse
// as a positive whole-rupee integer and the shop must exist; typed errors
// report each rejection. The timestamp is the server clock at insert time.
func (s *LedgerService) RecordExpense(ctx context.Context, shopID int64, product, amount string) (int64, error) {
	money, err := core.ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	exp := core.Expense{ShopID: shopID, Product: strings.TrimSpace(product), Amount: money}
	if err := exp.Validate(); err != nil {
		return 0, err
	}
	if _, err := s.storage.GetShop(ctx, shopID); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateExpense(ctx, shopID, exp.Product, exp.Amount, time.Now())
	if err != nil {
		return 0, fmt.Errorf("record expense: %w", err)
	}

	s.publishEvent(ctx, amqp.NewLedgerEvent(amqp.EventExpenseRecorded, shopID, id, exp.Amount.Rupees))
	return id, nil
}

// RecordPayment records a payment toward a shop's balance. Same amount and
// shop-existence rules as RecordExpense.
func (s *LedgerService) RecordPayment(ctx context.Context, shopID int64, amount string) (int64, error) {
	money, err := core.ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	if _, err := s.storage.GetShop(ctx, shopID); err != nil {
		return 0, err
	}

	id, err := s.storage.CreatePayment(ctx, shopID, money, time.Now())
	if err != nil {
		return 0, fmt.Errorf("record payment: %w", err)
	}

	s.publishEvent(ctx, amqp.NewLedgerEvent(amqp.EventPaymentRecorded, shopID, id, money.Rupees))
	return id, nil
}

// ListLedger returns the ledger snapshot for the scope: all shops (always
// alphabetical, regardless of scope), the scoped expense and payment views
// most recent first, and the scoped totals with net due.
func (s *LedgerService) ListLedger(ctx context.Context, scope core.Scope) (core.LedgerSnapshot, error) {
	var snap core.LedgerSnapshot
	var err error

	if snap.Shops, err = s.storage.ListShops(ctx); err != nil {
		return core.LedgerSnapshot{}, fmt.Errorf("list ledger: %w", err)
	}
	if snap.Expenses, err = s.storage.ListExpenses(ctx, scope); err != nil {
		return core.LedgerSnapshot{}, fmt.Errorf("list ledger: %w", err)
	}
	if snap.Payments, err = s.storage.ListPayments(ctx, scope); err != nil {
		return core.LedgerSnapshot{}, fmt.Errorf("list ledger: %w", err)
	}
	if snap.TotalExpense, snap.TotalPaid, err = s.storage.Totals(ctx, scope); err != nil {
		return core.LedgerSnapshot{}, fmt.Errorf("list ledger: %w", err)
	}
	snap.NetDue = core.Money{Rupees: snap.TotalExpense.Rupees - snap.TotalPaid.Rupees}

	return snap, nil
}

// Ping reports whether the backing store is reachable.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// publishEvent publishes a ledger event, fire-and-forget: a publish failure
// is logged but never fails the operation, since the write already committed.
func (s *LedgerService) publishEvent(ctx context.Context, event *amqp.LedgerEvent) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", event.Kind, "shop_id", event.ShopID, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
