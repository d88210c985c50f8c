package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/config"
	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/repository"
)

func setupRepo(t *testing.T) (*repository.SQLRepository, *sqlx.DB) {
	t.Helper()

	db, err := config.OpenDatabase(config.DatabaseConfig{Driver: "sqlite3", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, config.Migrate(db, "sqlite3"))
	return repository.NewSQLRepository(db), db
}

func createUser(t *testing.T, repo *repository.SQLRepository, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: "Test", Password: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func createCategory(t *testing.T, repo *repository.SQLRepository, userID int64, name string, typ models.TransactionType) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Color: "#123456", Type: typ, UserID: userID}
	require.NoError(t, repo.CreateCategory(context.Background(), c))
	return c
}

func createTransaction(t *testing.T, repo *repository.SQLRepository, userID int64, c *models.Category, amount, date string) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		Amount:     amount,
		Type:       c.Type,
		CategoryID: c.ID,
		UserID:     userID,
		Date:       date,
	}
	require.NoError(t, repo.CreateTransaction(context.Background(), tx))
	return tx
}

func ids(txs []models.TransactionWithCategory) []int64 {
	out := make([]int64, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func TestUsers(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	user := createUser(t, repo, "a@example.com")
	assert.NotZero(t, user.ID)

	got, err := repo.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	missing, err := repo.GetUserByEmail(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing, "email lookup is an exact match")

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)

	err = repo.CreateUser(ctx, &models.User{Email: "a@example.com", Name: "Dup", Password: "x"})
	assert.True(t, common.IsStore(err))
}

func TestCategoriesOrderedByName(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "a@example.com")

	require.NoError(t, repo.SeedDefaultCategories(ctx, user.ID))

	all, err := repo.GetCategoriesByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, all, len(models.DefaultCategories))
	assert.Equal(t, "Bills", all[0].Name)

	income, err := repo.GetCategoriesByUserAndType(ctx, user.ID, models.TypeIncome)
	require.NoError(t, err)
	names := []string{}
	for _, c := range income {
		names = append(names, c.Name)
		assert.Equal(t, models.TypeIncome, c.Type)
	}
	assert.Equal(t, []string{"Business", "Investment", "Salary"}, names)

	other := createUser(t, repo, "b@example.com")
	none, err := repo.GetCategoriesByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateCategory(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "a@example.com")
	c := createCategory(t, repo, user.ID, "Food", models.TypeExpense)

	c.Name = "Groceries"
	c.Color = "#ABCDEF"
	require.NoError(t, repo.UpdateCategory(ctx, c))

	got, err := repo.GetCategory(ctx, user.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
	assert.Equal(t, "#ABCDEF", got.Color)

	c.ID = 9999
	assert.ErrorIs(t, repo.UpdateCategory(ctx, c), common.ErrNotFound)
}

func TestDeleteReferencedCategoryIsRejected(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "a@example.com")
	food := createCategory(t, repo, user.ID, "Food", models.TypeExpense)
	tx := createTransaction(t, repo, user.ID, food, "12.50", "2024-01-10")

	err := repo.DeleteCategory(ctx, user.ID, food.ID)
	assert.ErrorIs(t, err, common.ErrCategoryInUse)

	stillThere, err := repo.GetCategory(ctx, user.ID, food.ID)
	require.NoError(t, err)
	assert.NotNil(t, stillThere)

	list, err := repo.ListTransactions(ctx, user.ID, models.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, []int64{tx.ID}, ids(list))

	require.NoError(t, repo.DeleteTransaction(ctx, user.ID, tx.ID))
	require.NoError(t, repo.DeleteCategory(ctx, user.ID, food.ID))

	gone, err := repo.GetCategory(ctx, user.ID, food.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, user.ID, food.ID), common.ErrNotFound)
}

func TestListTransactionsOrdering(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "a@example.com")
	food := createCategory(t, repo, user.ID, "Food", models.TypeExpense)

	first := createTransaction(t, repo, user.ID, food, "1", "2024-01-10")
	older := createTransaction(t, repo, user.ID, food, "2", "2023-12-31")
	second := createTransaction(t, repo, user.ID, food, "3", "2024-01-10")
	newest := createTransaction(t, repo, user.ID, food, "4", "2024-02-01")

	list, err := repo.ListTransactions(ctx, user.ID, models.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, []int64{newest.ID, second.ID, first.ID, older.ID}, ids(list))

	assert.Equal(t, "Food", list[0].CategoryName)
	assert.Equal(t, "#123456", list[0].CategoryColor)
}

func TestListTransactionsFilters(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "a@example.com")
	food := createCategory(t, repo, user.ID, "Food", models.TypeExpense)
	salary := createCategory(t, repo, user.ID, "Salary", models.TypeIncome)

	t1 := createTransaction(t, repo, user.ID, food, "40", "2024-01-05")
	t2 := createTransaction(t, repo, user.ID, salary, "1000", "2024-01-31")
	t3 := createTransaction(t, repo, user.ID, food, "20", "2024-02-01")

	other := createUser(t, repo, "b@example.com")
	otherFood := createCategory(t, repo, other.ID, "Food", models.TypeExpense)
	createTransaction(t, repo, other.ID, otherFood, "99", "2024-01-15")

	tests := []struct {
		name    string
		filters models.TransactionFilters
		want    []int64
	}{
		{"no filters", models.TransactionFilters{}, []int64{t3.ID, t2.ID, t1.ID}},
		{"january inclusive", models.TransactionFilters{DateFrom: "2024-01-01", DateTo: "2024-01-31"}, []int64{t2.ID, t1.ID}},
		{"type expense", models.TransactionFilters{Type: "expense"}, []int64{t3.ID, t1.ID}},
		{"type all", models.TransactionFilters{Type: models.FilterTypeAll}, []int64{t3.ID, t2.ID, t1.ID}},
		{"category set", models.TransactionFilters{CategoryIDs: []int64{salary.ID}}, []int64{t2.ID}},
		{"combined", models.TransactionFilters{DateFrom: "2024-01-01", DateTo: "2024-01-31", Type: "expense", CategoryIDs: []int64{food.ID, salary.ID}}, []int64{t1.ID}},
		{"inverted range", models.TransactionFilters{DateFrom: "2024-02-01", DateTo: "2024-01-01"}, []int64{}},
		{"unknown category", models.TransactionFilters{CategoryIDs: []int64{otherFood.ID}}, []int64{}},
	}

	all, err := repo.ListTransactions(ctx, user.ID, models.TransactionFilters{})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListTransactions(ctx, user.ID, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, ids(tt.filters.Apply(all)), ids(got), "SQL and in-memory predicate agree")
		})
	}
}

func TestUpdateAndGetTransaction(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "a@example.com")
	food := createCategory(t, repo, user.ID, "Food", models.TypeExpense)
	tx := createTransaction(t, repo, user.ID, food, "10", "2024-01-05")

	tx.Amount = "12.75"
	tx.Description = "lunch"
	require.NoError(t, repo.UpdateTransaction(ctx, tx))

	got, err := repo.GetTransaction(ctx, user.ID, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "12.75", got.Amount)
	assert.Equal(t, "lunch", got.Description)
	assert.Equal(t, "Food", got.CategoryName)

	other := createUser(t, repo, "b@example.com")
	hidden, err := repo.GetTransaction(ctx, other.ID, tx.ID)
	require.NoError(t, err)
	assert.Nil(t, hidden)
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, other.ID, tx.ID), common.ErrNotFound)
}

func TestOrphanedTransactionsAreExcluded(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "a@example.com")
	food := createCategory(t, repo, user.ID, "Food", models.TypeExpense)
	kept := createTransaction(t, repo, user.ID, food, "10", "2024-01-05")

	// simulate a store written before foreign keys were enforced
	_, err := db.Exec(`PRAGMA foreign_keys = OFF`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO transactions (amount, description, type, category_id, user_id, date, created_at)
		VALUES ('5', '', 'expense', 4242, ?, '2024-01-06', CURRENT_TIMESTAMP)`, user.ID)
	require.NoError(t, err)
	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	list, err := repo.ListTransactions(ctx, user.ID, models.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, []int64{kept.ID}, ids(list))

	n, err := repo.CountOrphanedTransactions(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSessions(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "a@example.com")

	s := &models.Session{ID: "sess-1", UserID: user.ID, ExpiresAt: time.Now().Add(24 * time.Hour)}
	require.NoError(t, repo.CreateSession(ctx, s))

	got, err := repo.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Revoked)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.RevokeSession(ctx, "sess-1"))
	got, err = repo.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	missing, err := repo.GetSession(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
