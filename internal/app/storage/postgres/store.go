// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopops/backoffice/internal/app/domain/catalog"
	"github.com/shopops/backoffice/internal/app/domain/inventory"
	"github.com/shopops/backoffice/internal/app/domain/sales"
	"github.com/shopops/backoffice/internal/app/storage"
)

// Store implements the storage interfaces over a *sql.DB.
type Store struct {
	db *sql.DB
}

var _ storage.CatalogStore = (*Store)(nil)
var _ storage.InventoryStore = (*Store)(nil)
var _ storage.SalesStore = (*Store)(nil)
var _ storage.BankStore = (*Store)(nil)
var _ storage.ExpenseStore = (*Store)(nil)
var _ storage.TaskStore = (*Store)(nil)
var _ storage.AttachmentStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapErr converts driver-level errors into the shared sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return storage.ErrDuplicate
	}
	return err
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// --- CatalogStore -----------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p catalog.PotentialProduct) (catalog.PotentialProduct, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO potential_products (id, name, sku, supplier_name, supplier_link, marketplace,
			cost_per_unit, target_price, currency, status, buy_rating, image_url, notes,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, p.ID, p.Name, p.SKU, p.SupplierName, p.SupplierLink, p.Marketplace,
		p.CostPerUnit, p.TargetPrice, p.Currency, p.Status, p.BuyRating, p.ImageURL, p.Notes,
		p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return catalog.PotentialProduct{}, mapErr(err)
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p catalog.PotentialProduct) (catalog.PotentialProduct, error) {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return catalog.PotentialProduct{}, err
	}
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE potential_products
		SET name = $2, sku = $3, supplier_name = $4, supplier_link = $5, marketplace = $6,
			cost_per_unit = $7, target_price = $8, currency = $9, status = $10,
			buy_rating = $11, image_url = $12, notes = $13, updated_at = $14
		WHERE id = $1
	`, p.ID, p.Name, p.SKU, p.SupplierName, p.SupplierLink, p.Marketplace,
		p.CostPerUnit, p.TargetPrice, p.Currency, p.Status, p.BuyRating, p.ImageURL, p.Notes, p.UpdatedAt)
	if err != nil {
		return catalog.PotentialProduct{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.PotentialProduct{}, storage.ErrNotFound
	}
	return p, nil
}

const productColumns = `id, name, sku, supplier_name, supplier_link, marketplace,
	cost_per_unit, target_price, currency, status, buy_rating, image_url, notes,
	created_by, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (catalog.PotentialProduct, error) {
	var p catalog.PotentialProduct
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.SupplierName, &p.SupplierLink, &p.Marketplace,
		&p.CostPerUnit, &p.TargetPrice, &p.Currency, &p.Status, &p.BuyRating, &p.ImageURL, &p.Notes,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) GetProduct(ctx context.Context, id string) (catalog.PotentialProduct, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM potential_products
		WHERE id = $1
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		return catalog.PotentialProduct{}, mapErr(err)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]catalog.PotentialProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM potential_products
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.PotentialProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM potential_products WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- InventoryStore ---------------------------------------------------------

const itemColumns = `id, product_id, name, sku, quantity, quantity_available, unit_cost,
	shipping_cost, currency, status, warehouse_location, tracking_number,
	supplier_order_id, purchase_date, image_url, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (inventory.Item, error) {
	var (
		item         inventory.Item
		purchaseDate sql.NullTime
	)
	err := row.Scan(&item.ID, &item.ProductID, &item.Name, &item.SKU, &item.Quantity,
		&item.QuantityAvailable, &item.UnitCost, &item.ShippingCost, &item.Currency, &item.Status,
		&item.WarehouseLocation, &item.TrackingNumber, &item.SupplierOrderID, &purchaseDate,
		&item.ImageURL, &item.CreatedAt, &item.UpdatedAt)
	if purchaseDate.Valid {
		item.PurchaseDate = purchaseDate.Time.UTC()
	}
	return item, err
}

func (s *Store) CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	created, err := s.insertItem(ctx, s.db, item)
	return created, mapErr(err)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertItem(ctx context.Context, db execer, item inventory.Item) (inventory.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO inventory_items (id, product_id, name, sku, quantity, quantity_available,
			unit_cost, shipping_cost, currency, status, warehouse_location, tracking_number,
			supplier_order_id, purchase_date, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, item.ID, item.ProductID, item.Name, item.SKU, item.Quantity, item.QuantityAvailable,
		item.UnitCost, item.ShippingCost, item.Currency, item.Status, item.WarehouseLocation,
		item.TrackingNumber, item.SupplierOrderID, toNullTime(item.PurchaseDate), item.ImageURL,
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	existing, err := s.GetItem(ctx, item.ID)
	if err != nil {
		return inventory.Item{}, err
	}
	item.ProductID = existing.ProductID
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET name = $2, sku = $3, quantity = $4, quantity_available = $5, unit_cost = $6,
			shipping_cost = $7, currency = $8, status = $9, warehouse_location = $10,
			tracking_number = $11, supplier_order_id = $12, purchase_date = $13,
			image_url = $14, updated_at = $15
		WHERE id = $1
	`, item.ID, item.Name, item.SKU, item.Quantity, item.QuantityAvailable, item.UnitCost,
		item.ShippingCost, item.Currency, item.Status, item.WarehouseLocation,
		item.TrackingNumber, item.SupplierOrderID, toNullTime(item.PurchaseDate),
		item.ImageURL, item.UpdatedAt)
	if err != nil {
		return inventory.Item{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return inventory.Item{}, storage.ErrNotFound
	}
	return item, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (inventory.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE id = $1
	`, id)
	item, err := scanItem(row)
	if err != nil {
		return inventory.Item{}, mapErr(err)
	}
	return item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]inventory.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []inventory.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ApplyPurchase runs the buy transition in one transaction: augment or insert
// the stock lot, then mark the product bought. Either both land or neither.
func (s *Store) ApplyPurchase(ctx context.Context, productID string, lot inventory.Item) (inventory.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return inventory.Item{}, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	// Try to fold the purchase into an existing open lot with matching terms.
	row := tx.QueryRowContext(ctx, `
		UPDATE inventory_items
		SET quantity = quantity + $2, quantity_available = quantity_available + $2, updated_at = $3
		WHERE id = (
			SELECT id FROM inventory_items
			WHERE product_id = $1 AND unit_cost = $4 AND currency = $5 AND status <> 'sold_out'
			ORDER BY created_at
			LIMIT 1
		)
		RETURNING `+itemColumns+`
	`, productID, lot.Quantity, now, lot.UnitCost, lot.Currency)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		item, err = s.insertItem(ctx, tx, lot)
	}
	if err != nil {
		return inventory.Item{}, mapErr(err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE potential_products
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, productID, catalog.StatusBought, now)
	if err != nil {
		return inventory.Item{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return inventory.Item{}, storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

// --- SalesStore -------------------------------------------------------------

const orderColumns = `id, inventory_id, channel, quantity_sold, selling_price_per_unit,
	marketplace_fees, shipping_cost, total_revenue, cogs, profit, currency, sale_date,
	payout_status, notes, created_at`

func scanOrder(row interface{ Scan(...any) error }) (sales.Order, error) {
	var o sales.Order
	err := row.Scan(&o.ID, &o.InventoryID, &o.Channel, &o.QuantitySold, &o.SellingPricePerUnit,
		&o.MarketplaceFees, &o.ShippingCost, &o.TotalRevenue, &o.COGS, &o.Profit, &o.Currency,
		&o.SaleDate, &o.PayoutStatus, &o.Notes, &o.CreatedAt)
	return o, err
}

// RecordSale decrements stock and inserts the order inside one transaction.
// The decrement is a single conditional statement, so two concurrent sales
// can never jointly oversell: the second one finds no row to update.
func (s *Store) RecordSale(ctx context.Context, order sales.Order) (sales.Order, inventory.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sales.Order{}, inventory.Item{}, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	row := tx.QueryRowContext(ctx, `
		UPDATE inventory_items
		SET quantity_available = quantity_available - $2,
			status = CASE WHEN quantity_available - $2 = 0 THEN 'sold_out' ELSE status END,
			updated_at = $3
		WHERE id = $1 AND quantity_available >= $2
		RETURNING `+itemColumns+`
	`, order.InventoryID, order.QuantitySold, now)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing item from insufficient stock.
		if _, getErr := s.GetItem(ctx, order.InventoryID); getErr != nil {
			return sales.Order{}, inventory.Item{}, getErr
		}
		return sales.Order{}, inventory.Item{}, storage.ErrInsufficientStock
	}
	if err != nil {
		return sales.Order{}, inventory.Item{}, err
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.CreatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales_orders (id, inventory_id, channel, quantity_sold, selling_price_per_unit,
			marketplace_fees, shipping_cost, total_revenue, cogs, profit, currency, sale_date,
			payout_status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, order.ID, order.InventoryID, order.Channel, order.QuantitySold, order.SellingPricePerUnit,
		order.MarketplaceFees, order.ShippingCost, order.TotalRevenue, order.COGS, order.Profit,
		order.Currency, order.SaleDate, order.PayoutStatus, order.Notes, order.CreatedAt)
	if err != nil {
		return sales.Order{}, inventory.Item{}, mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return sales.Order{}, inventory.Item{}, err
	}
	return order, item, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order sales.Order) (sales.Order, error) {
	existing, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return sales.Order{}, err
	}
	// Only payout status and notes are mutable after the fact.
	existing.PayoutStatus = order.PayoutStatus
	existing.Notes = order.Notes

	result, err := s.db.ExecContext(ctx, `
		UPDATE sales_orders
		SET payout_status = $2, notes = $3
		WHERE id = $1
	`, existing.ID, existing.PayoutStatus, existing.Notes)
	if err != nil {
		return sales.Order{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sales.Order{}, storage.ErrNotFound
	}
	return existing, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (sales.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM sales_orders
		WHERE id = $1
	`, id)
	o, err := scanOrder(row)
	if err != nil {
		return sales.Order{}, mapErr(err)
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]sales.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM sales_orders
		ORDER BY sale_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []sales.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sales_orders WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
