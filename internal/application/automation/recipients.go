package automation

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/application/notification"
	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
	"github.com/jhoicas/erp-automation/pkg/logger"
)

// Contador para entidades sin usuario a quien notificar.
const countUnassigned = "unassigned"

// relatedTask valor de RelatedTo en notificaciones que apuntan a una tarea.
const relatedTask = "Task"

// managersByCompany admins y managers activos agrupados por empresa, en una sola consulta.
func managersByCompany(ctx context.Context, users repository.UserRepository) (map[string][]*entity.User, error) {
	list, err := users.ListAllByRoles(ctx, entity.ManagerRoles)
	if err != nil {
		return nil, fmt.Errorf("listar managers: %w", err)
	}
	out := make(map[string][]*entity.User)
	for _, u := range list {
		out[u.CompanyID] = append(out[u.CompanyID], u)
	}
	return out, nil
}

// notify envía la notificación y actualiza los contadores. Un error se registra y no
// interrumpe el lote.
func notify(ctx context.Context, n notification.Notifier, log *logger.Logger, res *job.Result, req notification.Request) bool {
	if req.UserID == "" {
		res.Inc(countUnassigned)
		return false
	}
	if _, err := n.Send(ctx, req); err != nil {
		log.Error().Err(err).
			Str("user_id", req.UserID).
			Str("type", string(req.Type)).
			Str("related_id", req.RelatedID).
			Msg("error enviando notificación")
		res.Inc(job.CountErrors)
		return false
	}
	res.Inc(job.CountNotified)
	return true
}

// firstNonEmpty primer valor no vacío.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)
