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
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo implementación de ActivityRepository (usable con pool o tx).
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

const activityColumns = `
	id, company_id, type, subject, description,
	COALESCE(assigned_to::text, ''), COALESCE(created_by::text, ''), status, outcome,
	next_follow_up, completed_date,
	COALESCE(customer_id::text, ''), COALESCE(related_order_id::text, ''),
	COALESCE(related_quote_id::text, ''), COALESCE(related_invoice_id::text, ''),
	created_at, updated_at`

// Create agrega una entrada al historial.
func (r *ActivityRepo) Create(ctx context.Context, a *entity.Activity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO activities (id, company_id, type, subject, description, assigned_to, created_by, status,
			outcome, next_follow_up, completed_date, customer_id, related_order_id, related_quote_id,
			related_invoice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyID, a.Type, a.Subject, a.Description, nullIfEmpty(a.AssignedTo), nullIfEmpty(a.CreatedBy),
		a.Status, a.Outcome, a.NextFollowUpDate, a.CompletedDate, nullIfEmpty(a.CustomerID),
		nullIfEmpty(a.RelatedOrderID), nullIfEmpty(a.RelatedQuoteID), nullIfEmpty(a.RelatedInvoiceID),
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// GetByID obtiene una actividad por ID.
func (r *ActivityRepo) GetByID(ctx context.Context, id string) (*entity.Activity, error) {
	a, err := scanActivity(r.q.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

// ListFollowUpsDue actividades completadas que piden seguimiento hasta until.
func (r *ActivityRepo) ListFollowUpsDue(ctx context.Context, until time.Time) ([]*entity.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		WHERE outcome = $1 AND status = 'Completed' AND next_follow_up <= $2
		ORDER BY next_follow_up, id`
	return r.list(ctx, "list follow ups", query, entity.OutcomeFollowUpRequired, until)
}

// CompleteForOrder cierra las actividades abiertas del pedido.
func (r *ActivityRepo) CompleteForOrder(ctx context.Context, orderID string, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE activities SET status = 'Completed', completed_date = $2, updated_at = $2
		WHERE related_order_id = $1 AND status IN ('Scheduled', 'InProgress')`, orderID, now)
	if err != nil {
		return 0, fmt.Errorf("complete order activities: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ActivityRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Activity, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func scanActivity(row pgx.Row) (*entity.Activity, error) {
	var a entity.Activity
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.Type, &a.Subject, &a.Description,
		&a.AssignedTo, &a.CreatedBy, &a.Status, &a.Outcome,
		&a.NextFollowUpDate, &a.CompletedDate,
		&a.CustomerID, &a.RelatedOrderID, &a.RelatedQuoteID, &a.RelatedInvoiceID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
