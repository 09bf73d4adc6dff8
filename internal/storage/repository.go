package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"khata/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The pragma rides in the DSN because SQLite applies pragmas per
	// connection and database/sql recycles connections freely. Every
	// connection the pool opens must enforce foreign keys.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the underlying database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateShop inserts a shop row and returns its assigned id.
// Name validation is the service's job; the row is stored as given.
func (r *SQLiteRepository) CreateShop(ctx context.Context, name, details string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO shops (name, details) VALUES (?, ?)", name, details)
	if err != nil {
		return 0, fmt.Errorf("insert shop: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("shop last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Shop saved", "id", id, "name", name)
	return id, nil
}

// GetShop returns the shop with the given id, or core.ErrShopNotFound.
func (r *SQLiteRepository) GetShop(ctx context.Context, id int64) (core.Shop, error) {
	var s core.Shop
	var details sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, details FROM shops WHERE id = ?", id).
		Scan(&s.ID, &s.Name, &details)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Shop{}, core.ErrShopNotFound
	}
	if err != nil {
		return core.Shop{}, fmt.Errorf("get shop: %w", err)
	}
	s.Details = details.String
	return s, nil
}

// DeleteShop removes a shop and all of its payments and expenses in one
// transaction. It reports whether a shop row was actually removed; deleting
// an absent shop affects zero rows and is not an error.
func (r *SQLiteRepository) DeleteShop(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete shop tx: %w", err)
	}
	defer tx.Rollback()

	// Child rows first to satisfy the foreign keys.
	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE shop_id = ?", id); err != nil {
		return false, fmt.Errorf("delete payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE shop_id = ?", id); err != nil {
		return false, fmt.Errorf("delete products: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM shops WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete shop: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete shop rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete shop tx: %w", err)
	}

	if rows > 0 {
		slog.InfoContext(ctx, "Shop deleted with its records", "id", id)
	}
	return rows > 0, nil
}

// CreateExpense inserts a product purchase for a shop.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, shopID int64, product string, amount core.Money, date time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO products (shop_id, product, amount, date) VALUES (?, ?, ?, ?)",
		shopID, product, amount.Rupees, date.Format(core.TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id, "shop_id", shopID, "product", product, "amount", amount.Rupees)
	return id, nil
}

// CreatePayment inserts a payment toward a shop's balance.
func (r *SQLiteRepository) CreatePayment(ctx context.Context, shopID int64, amount core.Money, date time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO payments (shop_id, amount, date) VALUES (?, ?, ?)",
		shopID, amount.Rupees, date.Format(core.TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("payment last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved",
		"id", id, "shop_id", shopID, "amount", amount.Rupees)
	return id, nil
}

// ListShops returns every shop in case-insensitive alphabetical order.
func (r *SQLiteRepository) ListShops(ctx context.Context) ([]core.Shop, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, details FROM shops ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var shops []core.Shop
	for rows.Next() {
		var s core.Shop
		var details sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &details); err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		s.Details = details.String
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shops: %w", err)
	}
	return shops, nil
}

// ListExpenses returns expense views for the scope, most recent first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, scope core.Scope) ([]core.ExpenseView, error) {
	query := `SELECT p.product, p.amount, p.date, s.name
	          FROM products p JOIN shops s ON p.shop_id = s.id`
	var args []any
	if !scope.All() {
		query += " WHERE s.id = ?"
		args = append(args, scope.ShopID)
	}
	query += " ORDER BY p.date DESC, p.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var views []core.ExpenseView
	for rows.Next() {
		var v core.ExpenseView
		if err := rows.Scan(&v.Product, &v.Amount.Rupees, &v.Date, &v.ShopName); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return views, nil
}

// ListPayments returns payment views for the scope, most recent first.
func (r *SQLiteRepository) ListPayments(ctx context.Context, scope core.Scope) ([]core.PaymentView, error) {
	query := `SELECT p.amount, p.date, s.name
	          FROM payments p JOIN shops s ON p.shop_id = s.id`
	var args []any
	if !scope.All() {
		query += " WHERE s.id = ?"
		args = append(args, scope.ShopID)
	}
	query += " ORDER BY p.date DESC, p.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var views []core.PaymentView
	for rows.Next() {
		var v core.PaymentView
		if err := rows.Scan(&v.Amount.Rupees, &v.Date, &v.ShopName); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return views, nil
}

// Totals returns the expense and payment sums for the scope.
// A scope with no matching rows yields zero for both.
func (r *SQLiteRepository) Totals(ctx context.Context, scope core.Scope) (totalExpense, totalPaid core.Money, err error) {
	expQuery := "SELECT COALESCE(SUM(amount), 0) FROM products"
	payQuery := "SELECT COALESCE(SUM(amount), 0) FROM payments"
	var args []any
	if !scope.All() {
		expQuery += " WHERE shop_id = ?"
		payQuery += " WHERE shop_id = ?"
		args = append(args, scope.ShopID)
	}

	if err = r.db.QueryRowContext(ctx, expQuery, args...).Scan(&totalExpense.Rupees); err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	if err = r.db.QueryRowContext(ctx, payQuery, args...).Scan(&totalPaid.Rupees); err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum payments: %w", err)
	}
	return totalExpense, totalPaid, nil
}
