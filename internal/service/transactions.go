package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
)

// plainAmount is an unsigned decimal with at most two fraction digits and no
// exponent; it always fits the 32 character amount column
var plainAmount = regexp.MustCompile(`^\d{1,15}(\.\d{1,2})?$`)

func (s *DefaultService) CreateTransaction(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.transactionFromRequest(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("error creating transaction: %w", err)
	}

	return tx, nil
}

func (s *DefaultService) UpdateTransaction(ctx context.Context, id int64, req models.TransactionRequest) (*models.Transaction, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if existing == nil {
		return nil, common.ErrNotFound
	}

	tx, err := s.transactionFromRequest(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating transaction: %w", err)
	}

	return tx, nil
}

func (s *DefaultService) DeleteTransaction(ctx context.Context, id int64) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("error deleting transaction: %w", err)
	}

	return nil
}

func (s *DefaultService) GetTransaction(ctx context.Context, id int64) (*models.TransactionWithCategory, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if tx == nil {
		return nil, common.ErrNotFound
	}
	return tx, nil
}

// ListTransactions returns the filtered transactions, newest first. Rows whose
// category is missing cannot be joined; they are counted and logged instead.
func (s *DefaultService) ListTransactions(ctx context.Context, filters models.TransactionFilters) (*models.TransactionsResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.listTransactions(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	orphaned, err := s.repo.CountOrphanedTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting orphaned transactions: %w", err)
	}
	if orphaned > 0 {
		s.logger.WarnContext(ctx, "Data integrity: transactions reference missing categories",
			"user_id", userID,
			"orphaned", orphaned)
	}

	return &models.TransactionsResponse{
		Status:       "success",
		Transactions: txs,
		Count:        len(txs),
		Orphaned:     orphaned,
	}, nil
}

func (s *DefaultService) listTransactions(ctx context.Context, userID int64, filters models.TransactionFilters) ([]models.TransactionWithCategory, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	txs, err := s.repo.ListTransactions(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return txs, nil
}

// transactionFromRequest validates req and checks the category belongs to the
// caller and has the same type as the transaction
func (s *DefaultService) transactionFromRequest(ctx context.Context, userID int64, req models.TransactionRequest) (*models.Transaction, error) {
	raw := strings.TrimSpace(req.Amount)
	if !plainAmount.MatchString(raw) {
		return nil, common.NewValidationError("amount", "must be a number with at most 15 digits and 2 decimals")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, common.NewValidationError("amount", "must be a number")
	}
	if !amount.IsPositive() {
		return nil, common.NewValidationError("amount", "must be greater than zero")
	}

	if !req.Type.Valid() {
		return nil, common.NewValidationError("type", "must be income or expense")
	}

	date := strings.TrimSpace(req.Date)
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, common.NewValidationError("date", "must be a YYYY-MM-DD date")
	}

	if req.CategoryID == 0 {
		return nil, common.NewValidationError("categoryId", "please select a category")
	}
	category, err := s.repo.GetCategory(ctx, userID, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("error getting category: %w", err)
	}
	if category == nil {
		return nil, common.NewValidationError("categoryId", "category not found")
	}
	if category.Type != req.Type {
		return nil, common.NewValidationError("categoryId", fmt.Sprintf("category %q is for %s transactions", category.Name, category.Type))
	}

	return &models.Transaction{
		Amount:      amount.String(),
		Description: strings.TrimSpace(req.Description),
		Type:        req.Type,
		CategoryID:  category.ID,
		UserID:      userID,
		Date:        date,
	}, nil
}
