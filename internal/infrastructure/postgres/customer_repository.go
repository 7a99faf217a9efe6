package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-automation/internal/domain"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `
	id, company_id, name, email, status, COALESCE(assigned_to::text, ''),
	last_order_date, last_contact_date, last_activity_date,
	total_orders, total_value, average_order_value, created_at, updated_at`

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO customers (id, company_id, name, email, status, assigned_to, last_order_date,
			last_contact_date, last_activity_date, total_orders, total_value, average_order_value,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.CompanyID, c.Name, c.Email, c.Status, nullIfEmpty(c.AssignedTo), c.LastOrderDate,
		c.LastContactDate, c.LastActivityDate, c.TotalOrders, c.TotalValue, c.AverageOrderValue,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// ListActiveWithoutOrderSince incluye clientes que nunca han comprado.
func (r *CustomerRepo) ListActiveWithoutOrderSince(ctx context.Context, before time.Time) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE status = 'Active' AND (last_order_date IS NULL OR last_order_date < $1)
		ORDER BY company_id, name, id`
	return r.list(ctx, "list customers without order", query, before)
}

// ListActiveWithoutContactSince excluye clientes sin fecha de contacto.
func (r *CustomerRepo) ListActiveWithoutContactSince(ctx context.Context, before time.Time) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE status = 'Active' AND last_contact_date < $1
		ORDER BY company_id, name, id`
	return r.list(ctx, "list customers without contact", query, before)
}

// CountActiveWithoutContactSince conteo por empresa para los resúmenes.
func (r *CustomerRepo) CountActiveWithoutContactSince(ctx context.Context, companyID string, before time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM customers
		WHERE company_id = $1 AND status = 'Active' AND last_contact_date < $2`, companyID, before).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count customers without contact: %w", err)
	}
	return n, nil
}

// applyOrderRollupSQL el SET usa los valores previos de la fila. Ambos montos se
// redondean a 2 decimales igual que entity.Customer.ApplyOrder.
const applyOrderRollupSQL = `
		UPDATE customers SET
			total_orders = total_orders + 1,
			total_value = ROUND(total_value + $2, 2),
			average_order_value = ROUND(ROUND(total_value + $2, 2) / (total_orders + 1), 2),
			last_order_date = $3,
			last_activity_date = $4,
			updated_at = $4
		WHERE id = $1`

// ApplyOrderRollup acumula el pedido en una sola sentencia.
func (r *CustomerRepo) ApplyOrderRollup(ctx context.Context, customerID string, orderTotal decimal.Decimal, orderDate, now time.Time) error {
	tag, err := r.q.Exec(ctx, applyOrderRollupSQL, customerID, orderTotal, orderDate, now)
	if err != nil {
		return fmt.Errorf("apply order rollup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CustomerRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Status, &c.AssignedTo,
		&c.LastOrderDate, &c.LastContactDate, &c.LastActivityDate,
		&c.TotalOrders, &c.TotalValue, &c.AverageOrderValue, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
