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

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo implementación de QuoteRepository (usable con pool o tx). Las líneas viajan como JSONB.
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

const quoteColumns = `
	id, company_id, quote_number, COALESCE(customer_id::text, ''), COALESCE(created_by::text, ''),
	status, valid_until, items, subtotal, tax_total, total, created_at, updated_at`

// Create persiste una cotización.
func (r *QuoteRepo) Create(ctx context.Context, qt *entity.Quote) error {
	if qt.ID == "" {
		qt.ID = uuid.New().String()
	}
	items, err := json.Marshal(itemsOrEmpty(qt.Items))
	if err != nil {
		return fmt.Errorf("marshal quote items: %w", err)
	}
	query := `
		INSERT INTO quotes (id, company_id, quote_number, customer_id, created_by, status, valid_until,
			items, subtotal, tax_total, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		qt.ID, qt.CompanyID, qt.QuoteNumber, nullIfEmpty(qt.CustomerID), nullIfEmpty(qt.CreatedBy), qt.Status,
		qt.ValidUntil, items, qt.Subtotal, qt.TaxTotal, qt.Total, qt.CreatedAt, qt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	qt, err := scanQuote(r.q.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return qt, nil
}

// ListExpirable cotizaciones draft/sent vencidas.
func (r *QuoteRepo) ListExpirable(ctx context.Context, now time.Time) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE status IN ('draft', 'sent') AND valid_until < $1
		ORDER BY valid_until, id`
	return r.list(ctx, "list expirable quotes", query, now)
}

// MarkExpired compare-and-set sobre el estado.
func (r *QuoteRepo) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE quotes SET status = 'expired', updated_at = $2 WHERE id = $1 AND status IN ('draft', 'sent')`,
		id, now)
	if err != nil {
		return false, fmt.Errorf("mark quote expired: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListAccepted cotizaciones aceptadas, con o sin pedido.
func (r *QuoteRepo) ListAccepted(ctx context.Context) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE status = 'accepted' ORDER BY created_at, id`
	return r.list(ctx, "list accepted quotes", query)
}

func (r *QuoteRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Quote, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Quote
	for rows.Next() {
		qt, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		list = append(list, qt)
	}
	return list, rows.Err()
}

func scanQuote(row pgx.Row) (*entity.Quote, error) {
	var qt entity.Quote
	var items []byte
	err := row.Scan(
		&qt.ID, &qt.CompanyID, &qt.QuoteNumber, &qt.CustomerID, &qt.CreatedBy,
		&qt.Status, &qt.ValidUntil, &items, &qt.Subtotal, &qt.TaxTotal, &qt.Total, &qt.CreatedAt, &qt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &qt.Items); err != nil {
		return nil, fmt.Errorf("unmarshal quote items: %w", err)
	}
	return &qt, nil
}

// itemsOrEmpty evita persistir null en columnas JSONB NOT NULL.
func itemsOrEmpty(items []entity.LineItem) []entity.LineItem {
	if items == nil {
		return []entity.LineItem{}
	}
	return items
}
