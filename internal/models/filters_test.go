package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rongwang/expense-tracker/internal/common"
)

func sampleTransactions() []TransactionWithCategory {
	return []TransactionWithCategory{
		{Transaction: Transaction{ID: 1, Amount: "100.00", Type: TypeIncome, CategoryID: 2, Date: "2024-01-15"}},
		{Transaction: Transaction{ID: 2, Amount: "40.00", Type: TypeExpense, CategoryID: 1, Date: "2024-01-20"}},
		{Transaction: Transaction{ID: 3, Amount: "12.50", Type: TypeExpense, CategoryID: 3, Date: "2024-02-01"}},
	}
}

func TestTransactionFiltersMatches(t *testing.T) {
	txs := sampleTransactions()

	t.Run("empty filter keeps everything", func(t *testing.T) {
		assert.Len(t, TransactionFilters{}.Apply(txs), 3)
		assert.Len(t, TransactionFilters{Type: FilterTypeAll}.Apply(txs), 3)
	})

	t.Run("type and lower date bound", func(t *testing.T) {
		got := TransactionFilters{Type: "expense", DateFrom: "2024-01-18"}.Apply(txs[:2])
		if assert.Len(t, got, 1) {
			assert.Equal(t, int64(2), got[0].ID)
		}
	})

	t.Run("date bounds are inclusive", func(t *testing.T) {
		got := TransactionFilters{DateFrom: "2024-01-15", DateTo: "2024-01-20"}.Apply(txs)
		assert.Len(t, got, 2)
	})

	t.Run("category restriction", func(t *testing.T) {
		got := TransactionFilters{CategoryIDs: []int64{1, 3}}.Apply(txs)
		assert.Len(t, got, 2)
		for _, tx := range got {
			assert.Contains(t, []int64{1, 3}, tx.CategoryID)
		}
	})

	t.Run("adding categories never grows the result", func(t *testing.T) {
		base := TransactionFilters{Type: "expense"}
		narrowed := base
		narrowed.CategoryIDs = []int64{3}
		assert.LessOrEqual(t, len(narrowed.Apply(txs)), len(base.Apply(txs)))
	})
}

func TestTransactionFiltersValidate(t *testing.T) {
	assert.NoError(t, TransactionFilters{}.Validate())
	assert.NoError(t, TransactionFilters{DateFrom: "2024-01-01", DateTo: "2024-12-31", Type: "income"}.Validate())

	err := TransactionFilters{DateFrom: "01/02/2024"}.Validate()
	assert.True(t, common.IsValidation(err))

	err = TransactionFilters{Type: "transfer"}.Validate()
	assert.True(t, common.IsValidation(err))
}
