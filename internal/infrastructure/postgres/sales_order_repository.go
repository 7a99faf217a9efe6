package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implementación de SalesOrderRepository (usable con pool o tx).
// (company_id, order_number) y quote_id son únicos en el esquema.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

const orderColumns = `
	id, company_id, order_number, COALESCE(quote_id::text, ''), COALESCE(customer_id::text, ''),
	COALESCE(created_by::text, ''), status, items, subtotal, tax_total, total,
	dispatched_at, delivered_at, stats_rolled_up, created_at, updated_at`

// Create persiste el pedido.
func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	items, err := json.Marshal(itemsOrEmpty(o.Items))
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	query := `
		INSERT INTO sales_orders (id, company_id, order_number, quote_id, customer_id, created_by, status,
			items, subtotal, tax_total, total, dispatched_at, delivered_at, stats_rolled_up, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.CompanyID, o.OrderNumber, nullIfEmpty(o.QuoteID), nullIfEmpty(o.CustomerID), nullIfEmpty(o.CreatedBy),
		o.Status, items, o.Subtotal, o.TaxTotal, o.Total, o.DispatchedAt, o.DeliveredAt, o.StatsRolledUp,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sales order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID.
func (r *SalesOrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM sales_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	return o, nil
}

// ExistsForQuote indica si la cotización ya generó un pedido.
func (r *SalesOrderRepo) ExistsForQuote(ctx context.Context, quoteID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales_orders WHERE quote_id = $1)`, quoteID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists order for quote: %w", err)
	}
	return exists, nil
}

// CountByCompany base para el consecutivo de pedidos.
func (r *SalesOrderRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales_orders WHERE company_id = $1`, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales orders: %w", err)
	}
	return n, nil
}

// ListDispatchedBefore pedidos despachados antes de before.
func (r *SalesOrderRepo) ListDispatchedBefore(ctx context.Context, before time.Time) ([]*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders
		WHERE status = 'Dispatched' AND dispatched_at < $1
		ORDER BY dispatched_at, id`
	return r.list(ctx, "list dispatched orders", query, before)
}

// MarkDelivered compare-and-set Dispatched -> Delivered.
func (r *SalesOrderRepo) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales_orders SET status = 'Delivered', delivered_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'Dispatched'`, id, at)
	if err != nil {
		return false, fmt.Errorf("mark order delivered: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListDeliveredSince pedidos entregados desde since.
func (r *SalesOrderRepo) ListDeliveredSince(ctx context.Context, since time.Time) ([]*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders
		WHERE status = 'Delivered' AND delivered_at >= $1
		ORDER BY delivered_at, id`
	return r.list(ctx, "list delivered orders", query, since)
}

// ListPendingRollup pedidos entregados con cliente aún no sumados a sus métricas.
func (r *SalesOrderRepo) ListPendingRollup(ctx context.Context) ([]*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders
		WHERE status = 'Delivered' AND customer_id IS NOT NULL AND stats_rolled_up = false
		ORDER BY delivered_at, id`
	return r.list(ctx, "list pending rollup", query)
}

// MarkStatsRolledUp compare-and-set sobre stats_rolled_up.
func (r *SalesOrderRepo) MarkStatsRolledUp(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE sales_orders SET stats_rolled_up = true WHERE id = $1 AND stats_rolled_up = false`, id)
	if err != nil {
		return false, fmt.Errorf("mark stats rolled up: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SalesOrderRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.SalesOrder, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.SalesOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sales order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	var items []byte
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.QuoteID, &o.CustomerID,
		&o.CreatedBy, &o.Status, &items, &o.Subtotal, &o.TaxTotal, &o.Total,
		&o.DispatchedAt, &o.DeliveredAt, &o.StatsRolledUp, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &o, nil
}
