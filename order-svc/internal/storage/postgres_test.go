package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orderRowColumns = []string{"id", "customer_id", "restaurant_id", "status", "total_amount", "notes", "created_at", "updated_at"}
	itemRowColumns  = []string{"id", "order_id", "recipe_id", "quantity", "unit_price", "subtotal", "notes"}
)

func newMockRepo(t *testing.T) (*PostgresRepository, *TxManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), NewTxManager(db), mock
}

func TestRunInTx_LocksAndCommits(t *testing.T) {
	repo, tx, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM orders o WHERE o.id = \\$1 FOR UPDATE").
		WithArgs(12).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(12, 7, 1, "pending", "25.98", "", now, now))
	mock.ExpectQuery("FROM order_items").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).AddRow(1, 12, 5, 2, "12.99", "25.98", ""))
	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.StatusPaid, nil, 12).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		order, err := repo.GetOrderForUpdate(ctx, 12)
		if err != nil {
			return err
		}
		assert.Equal(t, domain.StatusPending, order.Status)
		require.Len(t, order.Items, 1)
		assert.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("25.98")))
		return repo.UpdateOrderStatus(ctx, order.ID, domain.StatusPaid, nil)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	repo, tx, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.StatusCancelled, nil, 12).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		return repo.UpdateOrderStatus(ctx, 12, domain.StatusCancelled, nil)
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_NestedJoinsOuter(t *testing.T) {
	_, tx, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		return tx.RunInTx(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderForUpdate_RequiresTransaction(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	_, err := repo.GetOrderForUpdate(context.Background(), 12)

	assert.ErrorIs(t, err, ErrNoTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_InsertsFrozenItems(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	now := time.Now()
	order := &domain.Order{
		CustomerID:   7,
		RestaurantID: 1,
		Status:       domain.StatusPending,
		TotalAmount:  decimal.RequireFromString("25.98"),
		Items: []domain.OrderItem{{
			RecipeID:  5,
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("12.99"),
			Subtotal:  decimal.RequireFromString("25.98"),
		}},
	}

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(7, 1, domain.StatusPending, sqlmock.AnyArg(), "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(12, now, now))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(12, 5, 2, sqlmock.AnyArg(), sqlmock.AnyArg(), "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(40))

	require.NoError(t, repo.CreateOrder(context.Background(), order))
	assert.Equal(t, 12, order.ID)
	assert.Equal(t, 12, order.Items[0].OrderID)
	assert.Equal(t, 40, order.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersByRestaurant_StatusFilter(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	now := time.Now()
	paid := domain.StatusPaid

	mock.ExpectQuery("WHERE o.restaurant_id = \\$1 AND o.status = \\$2 ORDER BY").
		WithArgs(1, domain.StatusPaid).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(13, 8, 1, "paid", "9.00", "", now, now).
			AddRow(12, 7, 1, "paid", "25.98", "no onions", now, now))
	mock.ExpectQuery("FROM order_items").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).AddRow(1, 12, 5, 2, "12.99", "25.98", ""))

	orders, err := repo.ListOrdersByRestaurant(context.Background(), 1, &paid)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Empty(t, orders[0].Items)
	assert.Len(t, orders[1].Items, 1)
	assert.Equal(t, "no onions", orders[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMembership_DuplicateIsConflict(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	mock.ExpectQuery("INSERT INTO memberships").
		WithArgs(8, 1, domain.OrgRoleEmployee).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "memberships_user_restaurant_key"})

	err := repo.CreateMembership(context.Background(), &domain.Membership{UserID: 8, RestaurantID: 1, Role: domain.OrgRoleEmployee})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "nil stays nil", err: nil, wantErr: nil},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, wantErr: domain.ErrConflict},
		{name: "other pq error", err: &pq.Error{Code: "23503"}, wantErr: nil},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := mapError(testCase.err, "thing")
			if testCase.err == nil {
				assert.NoError(t, err)
				return
			}
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				return
			}
			assert.False(t, errors.Is(err, domain.ErrConflict))
			assert.False(t, errors.Is(err, domain.ErrNotFound))
		})
	}
}

func TestGetUser_Missing(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetUser(context.Background(), 99)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "user: not found", err.Error())
}

func TestFindMembership(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	mock.ExpectQuery("FROM memberships").
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "restaurant_id", "role", "created_at"}).
			AddRow(2, 3, 1, "employee", time.Now()))

	m, err := repo.FindMembership(context.Background(), 3, 1)

	require.NoError(t, err)
	assert.Equal(t, domain.OrgRoleEmployee, m.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecipesByIDs_KeysByID(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery("FROM recipes WHERE restaurant_id = \\$1 AND id = ANY").
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "restaurant_id", "title", "description", "ingredients",
			"instructions", "prep_time", "cook_time", "servings", "price", "image_url", "is_available", "created_at", "updated_at"}).
			AddRow(5, 1, "Margherita", "", "", "", 10, 12, 1, "12.99", "", true, now, now))

	recipes, err := repo.GetRecipesByIDs(context.Background(), 1, []int{5, 40})

	require.NoError(t, err)
	require.Contains(t, recipes, 5)
	assert.NotContains(t, recipes, 40)
	assert.Equal(t, "12.99", recipes[5].Price.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOrdersByStatus(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM orders GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("paid", 4).AddRow("pending", 2))

	counts, err := repo.CountOrdersByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, counts[domain.StatusPaid])
	assert.Equal(t, 2, counts[domain.StatusPending])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMembership_Missing(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM memberships WHERE id = \\$1").
		WithArgs(77).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteMembership(context.Background(), 77)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	for _, table := range []string{"users", "restaurants", "memberships", "recipes", "orders", "order_items"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table + " ").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS orders_customer_created_idx").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS orders_restaurant_created_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
