package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-automation/internal/infrastructure/storetest"
)

// TEST_DATABASE_URL apunta a una base desechable; sin ella el contrato se omite.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func TestRecordStore_ContratoPostgres(t *testing.T) {
	pool := testPool(t)

	storetest.RunContract(t, func(t *testing.T) storetest.Stores {
		ctx := context.Background()
		company := &entity.Company{ID: uuid.New().String(), Name: "Empresa contrato", Status: "active", LicensePlan: "trial"}
		require.NoError(t, postgres.NewCompanyRepository(pool).Create(ctx, company))
		t.Cleanup(func() {
			for _, table := range []string{"sales_orders", "customers", "companies"} {
				col := "company_id"
				if table == "companies" {
					col = "id"
				}
				_, _ = pool.Exec(context.Background(), "DELETE FROM "+table+" WHERE "+col+" = $1", company.ID)
			}
		})
		return storetest.Stores{
			CompanyID: company.ID,
			Customers: postgres.NewCustomerRepository(pool),
			Orders:    postgres.NewSalesOrderRepository(pool),
		}
	})
}
