// Package memory implementa el Record Store en memoria. Aplica las mismas
// restricciones únicas que el esquema PostgreSQL para que los tests de
// idempotencia ejerciten el mismo contrato.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/domain/repository"
)

var _ repository.WorkflowTxRunner = (*Store)(nil)

type dataset struct {
	tasks         map[string]entity.Task
	activities    map[string]entity.Activity
	customers     map[string]entity.Customer
	quotes        map[string]entity.Quote
	orders        map[string]entity.SalesOrder
	invoices      map[string]entity.Invoice
	products      map[string]entity.Product
	companies     map[string]entity.Company
	users         map[string]entity.User
	notifications map[string]entity.Notification
}

func newDataset() *dataset {
	return &dataset{
		tasks:         map[string]entity.Task{},
		activities:    map[string]entity.Activity{},
		customers:     map[string]entity.Customer{},
		quotes:        map[string]entity.Quote{},
		orders:        map[string]entity.SalesOrder{},
		invoices:      map[string]entity.Invoice{},
		products:      map[string]entity.Product{},
		companies:     map[string]entity.Company{},
		users:         map[string]entity.User{},
		notifications: map[string]entity.Notification{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.tasks {
		c.tasks[k] = v
	}
	for k, v := range d.activities {
		c.activities[k] = v
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.quotes {
		v.Items = append([]entity.LineItem(nil), v.Items...)
		c.quotes[k] = v
	}
	for k, v := range d.orders {
		v.Items = append([]entity.LineItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range d.invoices {
		c.invoices[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.companies {
		c.companies[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	return c
}

// Store Record Store en memoria, seguro para uso concurrente.
// Las transacciones trabajan sobre una copia del dataset y la publican al confirmar.
type Store struct {
	mu   *sync.Mutex
	data *dataset
	inTx bool
}

// New crea un store vacío.
func New() *Store {
	return &Store{mu: &sync.Mutex{}, data: newDataset()}
}

func (s *Store) with(fn func(d *dataset) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

// RunWorkflow ejecuta fn con repos atados a una copia del dataset; solo si fn
// termina sin error la copia reemplaza al dataset original.
func (s *Store) RunWorkflow(ctx context.Context, fn func(repos repository.WorkflowRepos) error) error {
	if s.inTx {
		return fn(s.repos())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &Store{mu: s.mu, data: s.data.clone(), inTx: true}
	if err := fn(tx.repos()); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) repos() repository.WorkflowRepos {
	return repository.WorkflowRepos{
		Orders:     s.Orders(),
		Activities: s.Activities(),
		Customers:  s.Customers(),
		Quotes:     s.Quotes(),
		Tasks:      s.Tasks(),
	}
}

func (s *Store) Tasks() *TaskRepo                 { return &TaskRepo{s: s} }
func (s *Store) Activities() *ActivityRepo        { return &ActivityRepo{s: s} }
func (s *Store) Customers() *CustomerRepo         { return &CustomerRepo{s: s} }
func (s *Store) Quotes() *QuoteRepo               { return &QuoteRepo{s: s} }
func (s *Store) Orders() *SalesOrderRepo          { return &SalesOrderRepo{s: s} }
func (s *Store) Invoices() *InvoiceRepo           { return &InvoiceRepo{s: s} }
func (s *Store) Products() *ProductRepo           { return &ProductRepo{s: s} }
func (s *Store) Companies() *CompanyRepo          { return &CompanyRepo{s: s} }
func (s *Store) Users() *UserRepo                 { return &UserRepo{s: s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }

// AllTasks copia de todas las tareas ordenadas por creación (para inspección en tests).
func (s *Store) AllTasks() []*entity.Task {
	var out []*entity.Task
	_ = s.with(func(d *dataset) error {
		for _, t := range d.tasks {
			t := t
			out = append(out, &t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID) })
	return out
}

// AllOrders copia de todos los pedidos.
func (s *Store) AllOrders() []*entity.SalesOrder {
	var out []*entity.SalesOrder
	_ = s.with(func(d *dataset) error {
		for _, o := range d.orders {
			o := o
			out = append(out, &o)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID) })
	return out
}

// AllActivities copia de todas las actividades.
func (s *Store) AllActivities() []*entity.Activity {
	var out []*entity.Activity
	_ = s.with(func(d *dataset) error {
		for _, a := range d.activities {
			a := a
			out = append(out, &a)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID) })
	return out
}

// AllNotifications copia de todas las notificaciones.
func (s *Store) AllNotifications() []*entity.Notification {
	var out []*entity.Notification
	_ = s.with(func(d *dataset) error {
		for _, n := range d.notifications {
			n := n
			out = append(out, &n)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID) })
	return out
}

func less(a, b int64, idA, idB string) bool {
	if a != b {
		return a < b
	}
	return idA < idB
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
