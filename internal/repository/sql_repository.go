package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy.
// Lookups return (nil, nil) when the row does not exist.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// Session operations
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string) error

	// Category operations
	GetCategoriesByUser(ctx context.Context, userID int64) ([]models.Category, error)
	GetCategoriesByUserAndType(ctx context.Context, userID int64, typ models.TransactionType) ([]models.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, userID, id int64) error
	SeedDefaultCategories(ctx context.Context, userID int64) error

	// Transaction operations
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	GetTransaction(ctx context.Context, userID, id int64) (*models.TransactionWithCategory, error)
	ListTransactions(ctx context.Context, userID int64, filters models.TransactionFilters) ([]models.TransactionWithCategory, error)
	CountOrphanedTransactions(ctx context.Context, userID int64) (int, error)
}

// SQLRepository implements the Repository interface on top of sqlx.
// Queries are written with ? placeholders and rebound for the driver in use.
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository creates a new repository for a sqlite3 or postgres handle
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{
		db: db,
	}
}

func (r *SQLRepository) q(query string) string {
	return r.db.Rebind(query)
}

// User repository methods
func (r *SQLRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := r.q(`
		INSERT INTO users (email, name, password, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	user.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowxContext(ctx, query,
		user.Email, user.Name, user.Password, user.CreatedAt).Scan(&user.ID)

	return common.WrapStore("create user", err)
}

func (r *SQLRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.q(`SELECT id, email, name, password, created_at FROM users WHERE email = ?`)

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, common.WrapStore("get user by email", err)
	}

	return &user, nil
}

func (r *SQLRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := r.q(`SELECT id, email, name, password, created_at FROM users WHERE id = ?`)

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, common.WrapStore("get user", err)
	}

	return &user, nil
}

// Session repository methods
func (r *SQLRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := r.q(`
		INSERT INTO sessions (id, user_id, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.ExpiresAt.UTC(), session.Revoked, session.CreatedAt)

	return common.WrapStore("create session", err)
}

func (r *SQLRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	query := r.q(`SELECT id, user_id, expires_at, revoked, created_at FROM sessions WHERE id = ?`)

	var session models.Session
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Session not found
		}
		return nil, common.WrapStore("get session", err)
	}

	return &session, nil
}

func (r *SQLRepository) RevokeSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.q(`UPDATE sessions SET revoked = ? WHERE id = ?`), true, id)
	return common.WrapStore("revoke session", err)
}

// Category repository methods
const categoryColumns = `id, name, icon, color, type, user_id, created_at`

func (r *SQLRepository) GetCategoriesByUser(ctx context.Context, userID int64) ([]models.Category, error) {
	query := r.q(`SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ? ORDER BY name, id`)

	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, userID); err != nil {
		return nil, common.WrapStore("list categories", err)
	}

	return categories, nil
}

func (r *SQLRepository) GetCategoriesByUserAndType(
	ctx context.Context,
	userID int64,
	typ models.TransactionType,
) ([]models.Category, error) {
	query := r.q(`SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ? AND type = ? ORDER BY name, id`)

	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, userID, typ); err != nil {
		return nil, common.WrapStore("list categories by type", err)
	}

	return categories, nil
}

func (r *SQLRepository) GetCategory(ctx context.Context, userID, id int64) (*models.Category, error) {
	query := r.q(`SELECT ` + categoryColumns + ` FROM categories WHERE id = ? AND user_id = ?`)

	var category models.Category
	err := r.db.GetContext(ctx, &category, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Category not found
		}
		return nil, common.WrapStore("get category", err)
	}

	return &category, nil
}

func (r *SQLRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return common.WrapStore("create category", r.insertCategory(ctx, r.db, category))
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx
type queryer interface {
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

func (r *SQLRepository) insertCategory(ctx context.Context, db queryer, category *models.Category) error {
	query := r.q(`
		INSERT INTO categories (name, icon, color, type, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	category.CreatedAt = time.Now().UTC()

	return db.QueryRowxContext(ctx, query,
		category.Name, category.Icon, category.Color, category.Type,
		category.UserID, category.CreatedAt).Scan(&category.ID)
}

// UpdateCategory changes name, icon and colour. The type is fixed once transactions may reference it.
func (r *SQLRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	query := r.q(`UPDATE categories SET name = ?, icon = ?, color = ? WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		category.Name, category.Icon, category.Color, category.ID, category.UserID)
	if err != nil {
		return common.WrapStore("update category", err)
	}

	return affectedOne(res, "update category")
}

// DeleteCategory removes a category only while no transaction references it.
// A referenced category yields common.ErrCategoryInUse and nothing is modified.
func (r *SQLRepository) DeleteCategory(ctx context.Context, userID, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return common.WrapStore("delete category", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var refs int
	err = tx.GetContext(ctx, &refs, r.q(`SELECT COUNT(*) FROM transactions WHERE category_id = ?`), id)
	if err != nil {
		return common.WrapStore("count category references", err)
	}
	if refs > 0 {
		return common.ErrCategoryInUse
	}

	res, err := tx.ExecContext(ctx, r.q(`DELETE FROM categories WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return common.WrapStore("delete category", err)
	}
	if err = affectedOne(res, "delete category"); err != nil {
		return err
	}

	return common.WrapStore("commit delete category", tx.Commit())
}

// SeedDefaultCategories creates the starter categories for a newly registered user
func (r *SQLRepository) SeedDefaultCategories(ctx context.Context, userID int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return common.WrapStore("seed categories", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, def := range models.DefaultCategories {
		category := def
		category.UserID = userID
		if err = r.insertCategory(ctx, tx, &category); err != nil {
			return common.WrapStore("seed category "+category.Name, err)
		}
	}

	return common.WrapStore("commit seed categories", tx.Commit())
}

// Transaction repository methods
func (r *SQLRepository) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := r.q(`
		INSERT INTO transactions (amount, description, type, category_id, user_id, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	t.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowxContext(ctx, query,
		t.Amount, t.Description, t.Type, t.CategoryID, t.UserID, t.Date, t.CreatedAt).Scan(&t.ID)

	return common.WrapStore("create transaction", err)
}

func (r *SQLRepository) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := r.q(`
		UPDATE transactions
		SET amount = ?, description = ?, type = ?, category_id = ?, date = ?
		WHERE id = ? AND user_id = ?
	`)

	res, err := r.db.ExecContext(ctx, query,
		t.Amount, t.Description, t.Type, t.CategoryID, t.Date, t.ID, t.UserID)
	if err != nil {
		return common.WrapStore("update transaction", err)
	}

	return affectedOne(res, "update transaction")
}

func (r *SQLRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM transactions WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return common.WrapStore("delete transaction", err)
	}

	return affectedOne(res, "delete transaction")
}

const transactionWithCategorySelect = `
	SELECT t.id, t.amount, t.description, t.type, t.category_id, t.user_id, t.date, t.created_at,
		c.name AS category_name, c.color AS category_color, c.icon AS category_icon
	FROM transactions t
	INNER JOIN categories c ON c.id = t.category_id
`

func (r *SQLRepository) GetTransaction(ctx context.Context, userID, id int64) (*models.TransactionWithCategory, error) {
	query := r.q(transactionWithCategorySelect + ` WHERE t.id = ? AND t.user_id = ?`)

	var t models.TransactionWithCategory
	err := r.db.GetContext(ctx, &t, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Transaction not found
		}
		return nil, common.WrapStore("get transaction", err)
	}

	return &t, nil
}

// ListTransactions returns the user's transactions joined with their categories,
// newest first. Transactions whose category no longer exists are dropped by the join.
func (r *SQLRepository) ListTransactions(
	ctx context.Context,
	userID int64,
	filters models.TransactionFilters,
) ([]models.TransactionWithCategory, error) {
	conds := []string{"t.user_id = ?"}
	args := []interface{}{userID}

	if filters.DateFrom != "" {
		conds = append(conds, "t.date >= ?")
		args = append(args, filters.DateFrom)
	}
	if filters.DateTo != "" {
		conds = append(conds, "t.date <= ?")
		args = append(args, filters.DateTo)
	}
	if typ, ok := filters.TypeRestriction(); ok {
		conds = append(conds, "t.type = ?")
		args = append(args, typ)
	}
	if len(filters.CategoryIDs) > 0 {
		conds = append(conds, "t.category_id IN (?)")
		args = append(args, filters.CategoryIDs)
	}

	query := transactionWithCategorySelect +
		" WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY t.date DESC, t.created_at DESC, t.id DESC"

	if len(filters.CategoryIDs) > 0 {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, common.WrapStore("expand category filter", err)
		}
	}

	txs := []models.TransactionWithCategory{}
	if err := r.db.SelectContext(ctx, &txs, r.q(query), args...); err != nil {
		return nil, common.WrapStore("list transactions", err)
	}

	return txs, nil
}

// CountOrphanedTransactions counts the user's transactions whose category row is missing
func (r *SQLRepository) CountOrphanedTransactions(ctx context.Context, userID int64) (int, error) {
	query := r.q(`
		SELECT COUNT(*) FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND c.id IS NULL
	`)

	var n int
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, common.WrapStore("count orphaned transactions", err)
	}

	return n, nil
}

func affectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return common.WrapStore(op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
