package models

import (
	"time"

	"github.com/rongwang/expense-tracker/internal/common"
)

// FilterTypeAll disables the type restriction, same as leaving Type empty
const FilterTypeAll = "all"

// TransactionFilters selects a subset of a user's transactions.
// Zero values mean "no constraint" for that dimension; all set fields are ANDed.
type TransactionFilters struct {
	DateFrom    string  `json:"dateFrom,omitempty" form:"dateFrom"`
	DateTo      string  `json:"dateTo,omitempty" form:"dateTo"`
	Type        string  `json:"type,omitempty" form:"type"`
	CategoryIDs []int64 `json:"categoryIds,omitempty" form:"categoryIds"`
}

// Validate checks the date bounds parse as ISO dates and the type is known
func (f TransactionFilters) Validate() error {
	if f.DateFrom != "" {
		if _, err := time.Parse(DateLayout, f.DateFrom); err != nil {
			return common.NewValidationError("dateFrom", "must be a YYYY-MM-DD date")
		}
	}
	if f.DateTo != "" {
		if _, err := time.Parse(DateLayout, f.DateTo); err != nil {
			return common.NewValidationError("dateTo", "must be a YYYY-MM-DD date")
		}
	}
	switch f.Type {
	case "", FilterTypeAll, string(TypeIncome), string(TypeExpense):
	default:
		return common.NewValidationError("type", "must be income, expense or all")
	}
	return nil
}

// TypeRestriction returns the transaction type to restrict to, if any
func (f TransactionFilters) TypeRestriction() (TransactionType, bool) {
	if f.Type == "" || f.Type == FilterTypeAll {
		return "", false
	}
	return TransactionType(f.Type), true
}

// Matches applies the filter predicate to a single transaction.
// ISO dates compare correctly as strings.
func (f TransactionFilters) Matches(t Transaction) bool {
	if f.DateFrom != "" && t.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && t.Date > f.DateTo {
		return false
	}
	if typ, ok := f.TypeRestriction(); ok && t.Type != typ {
		return false
	}
	if len(f.CategoryIDs) > 0 {
		found := false
		for _, id := range f.CategoryIDs {
			if id == t.CategoryID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply returns the transactions matching f, preserving input order
func (f TransactionFilters) Apply(txs []TransactionWithCategory) []TransactionWithCategory {
	out := make([]TransactionWithCategory, 0, len(txs))
	for _, t := range txs {
		if f.Matches(t.Transaction) {
			out = append(out, t)
		}
	}
	return out
}
