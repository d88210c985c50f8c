package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
)

const maxCategoryNameLength = 50

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ListCategories returns the caller's categories ordered by name, optionally of one type
func (s *DefaultService) ListCategories(ctx context.Context, typ models.TransactionType) ([]models.Category, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	if typ == "" {
		categories, err := s.repo.GetCategoriesByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("error getting categories: %w", err)
		}
		return categories, nil
	}

	if !typ.Valid() {
		return nil, common.NewValidationError("type", "must be income or expense")
	}
	categories, err := s.repo.GetCategoriesByUserAndType(ctx, userID, typ)
	if err != nil {
		return nil, fmt.Errorf("error getting categories: %w", err)
	}
	return categories, nil
}

func (s *DefaultService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	category, err := categoryFromRequest(req)
	if err != nil {
		return nil, err
	}
	category.UserID = userID

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("error creating category: %w", err)
	}

	return category, nil
}

// UpdateCategory edits name, icon and colour. Changing the type is rejected
// because existing transactions must keep matching their category's type.
func (s *DefaultService) UpdateCategory(ctx context.Context, id int64, req models.CategoryRequest) (*models.Category, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("error getting category: %w", err)
	}
	if existing == nil {
		return nil, common.ErrNotFound
	}

	if req.Type == "" {
		req.Type = existing.Type
	}
	updated, err := categoryFromRequest(req)
	if err != nil {
		return nil, err
	}
	if updated.Type != existing.Type {
		return nil, common.NewValidationError("type", "cannot be changed")
	}

	existing.Name = updated.Name
	existing.Icon = updated.Icon
	existing.Color = updated.Color

	if err := s.repo.UpdateCategory(ctx, existing); err != nil {
		return nil, fmt.Errorf("error updating category: %w", err)
	}

	return existing, nil
}

// DeleteCategory fails with common.ErrCategoryInUse while transactions reference the category
func (s *DefaultService) DeleteCategory(ctx context.Context, id int64) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCategory(ctx, userID, id); err != nil {
		if errors.Is(err, common.ErrCategoryInUse) || errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("error deleting category: %w", err)
	}

	return nil
}

func categoryFromRequest(req models.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return nil, common.NewValidationError("name", fmt.Sprintf("must be at most %d characters", maxCategoryNameLength))
	}
	if !hexColor.MatchString(req.Color) {
		return nil, common.NewValidationError("color", "must be a #RRGGBB hex colour")
	}
	if !req.Type.Valid() {
		return nil, common.NewValidationError("type", "must be income or expense")
	}

	return &models.Category{
		Name:  name,
		Icon:  strings.TrimSpace(req.Icon),
		Color: strings.ToUpper(req.Color),
		Type:  req.Type,
	}, nil
}
