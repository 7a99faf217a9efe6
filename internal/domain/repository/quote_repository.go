package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
)

// QuoteRepository define el puerto de persistencia para Quote.
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	// ListExpirable cotizaciones draft/sent con ValidUntil < now.
	ListExpirable(ctx context.Context, now time.Time) ([]*entity.Quote, error)
	// MarkExpired pasa la cotización a expired solo si seguía en draft/sent.
	MarkExpired(ctx context.Context, id string, now time.Time) (bool, error)
	ListAccepted(ctx context.Context) ([]*entity.Quote, error)
}
