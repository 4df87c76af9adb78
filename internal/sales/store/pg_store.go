package store

import (
	"context"
	"errors"
	"fmt"

	salerrors "github.com/devstore/sales-service/internal/sales/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgStore implements SaleStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of SaleStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const saleColumns = `id, sale_number, sale_date, client, branch, cancelled, total_value::text, created_at, updated_at`
const itemColumns = `id, sale_id, product_id, product_name, quantity, unit_price::text, discount::text, total_value::text, created_at`

// Create persists a sale and its items in a single transaction.
func (p *PgStore) Create(ctx context.Context, params CreateSaleParams) (*Sale, error) {
	var created *Sale

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO sales (sale_number, sale_date, client, branch, total_value)
			VALUES ($1, $2, $3, $4, $5::numeric)
			RETURNING `+saleColumns,
			params.SaleNumber, params.SaleDate, params.Client, params.Branch, params.TotalValue.String())
		sale, err := scanSale(row)
		if err != nil {
			return fmt.Errorf("%w: %w", salerrors.ErrCreateSale, err)
		}

		sale.Items = make([]SaleItem, 0, len(params.Items))
		for _, item := range params.Items {
			itemRow := tx.QueryRow(ctx, `
				INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, discount, total_value)
				VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric)
				RETURNING `+itemColumns,
				sale.ID, item.ProductID, item.ProductName, item.Quantity,
				item.UnitPrice.String(), item.Discount.String(), item.TotalValue.String())
			saleItem, err := scanSaleItem(itemRow)
			if err != nil {
				return fmt.Errorf("%w: %w", salerrors.ErrCreateSale, err)
			}
			sale.Items = append(sale.Items, *saleItem)
		}
		created = sale
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}
	return created, nil
}

// FindByID retrieves a sale with its items.
// Returns ErrSaleNotFound if no sale exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	row := p.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salerrors.ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	items, err := p.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

// FindAll retrieves all sales with their items, paginated over sales.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Sale, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find all sales: %w", err)
	}
	defer rows.Close()

	sales := make([]Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sale rows: %w", err)
	}

	for i := range sales {
		items, err := p.findItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

// FindLast retrieves the most recent sale by sale date. Used for sale-number
// sequencing; items are not loaded.
func (p *PgStore) FindLast(ctx context.Context) (*Sale, error) {
	row := p.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY sale_date DESC LIMIT 1`)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, salerrors.ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find last sale: %w", err)
	}
	return sale, nil
}

// UpdateSale modifies the cancellation flag and total value of a sale row.
func (p *PgStore) UpdateSale(ctx context.Context, params UpdateSaleParams) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE sales SET cancelled = $2, total_value = $3::numeric, updated_at = now()
		WHERE id = $1`,
		params.ID, params.Cancelled, params.TotalValue.String())
	if err != nil {
		return fmt.Errorf("%w: %w", salerrors.ErrUpdateSale, err)
	}
	if tag.RowsAffected() == 0 {
		return salerrors.ErrSaleNotFound
	}
	return nil
}

// UpdateItem modifies the quantity and pricing of a sale item row.
func (p *PgStore) UpdateItem(ctx context.Context, params UpdateItemParams) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE sale_items SET quantity = $2, discount = $3::numeric, total_value = $4::numeric
		WHERE id = $1`,
		params.ID, params.Quantity, params.Discount.String(), params.TotalValue.String())
	if err != nil {
		return fmt.Errorf("failed to update sale item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salerrors.ErrSaleItemNotFound
	}
	return nil
}

// DeleteItem removes a single sale item by its ID.
func (p *PgStore) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM sale_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete sale item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salerrors.ErrSaleItemNotFound
	}
	return nil
}

// DeleteByID removes a sale; items follow by ON DELETE CASCADE.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salerrors.ErrSaleNotFound
	}
	return nil
}

// findItems loads the items of one sale ordered by insertion time.
func (p *PgStore) findItems(ctx context.Context, saleID uuid.UUID) ([]SaleItem, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+itemColumns+` FROM sale_items WHERE sale_id = $1 ORDER BY created_at`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale items: %w", err)
	}
	defer rows.Close()

	items := make([]SaleItem, 0)
	for rows.Next() {
		item, err := scanSaleItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sale item rows: %w", err)
	}
	return items, nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return salerrors.ErrTransactionBegin
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return salerrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return salerrors.ErrTransactionCommit
	}

	return nil
}

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var total string
	if err := row.Scan(&s.ID, &s.SaleNumber, &s.SaleDate, &s.Client, &s.Branch,
		&s.Cancelled, &total, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sale total %q: %w", total, err)
	}
	s.TotalValue = parsed
	return &s, nil
}

func scanSaleItem(row pgx.Row) (*SaleItem, error) {
	var it SaleItem
	var unitPrice, discount, total string
	if err := row.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity,
		&unitPrice, &discount, &total, &it.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if it.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return nil, fmt.Errorf("failed to parse item unit price %q: %w", unitPrice, err)
	}
	if it.Discount, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("failed to parse item discount %q: %w", discount, err)
	}
	if it.TotalValue, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("failed to parse item total %q: %w", total, err)
	}
	return &it, nil
}
