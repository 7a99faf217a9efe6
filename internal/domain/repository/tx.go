package repository

import "context"

// WorkflowRepos repositorios atados a una misma transacción.
type WorkflowRepos struct {
	Orders     SalesOrderRepository
	Activities ActivityRepository
	Customers  CustomerRepository
	Quotes     QuoteRepository
	Tasks      TaskRepository
}

// WorkflowTxRunner ejecuta fn dentro de una transacción. Si fn retorna error
// no se persiste ninguna escritura hecha a través de repos.
type WorkflowTxRunner interface {
	RunWorkflow(ctx context.Context, fn func(repos WorkflowRepos) error) error
}
