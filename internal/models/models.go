package models

import (
	"time"
)

// TransactionType classifies both categories and transactions
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is income or expense
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// DateLayout is the ISO calendar date format used for transaction dates
const DateLayout = "2006-01-02"

// User represents a registered user
type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Password  string    `db:"password" json:"-"` // Password hash, not returned in JSON
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Category is a user-defined label for transactions
type Category struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Icon      string          `db:"icon" json:"icon"`
	Color     string          `db:"color" json:"color"`
	Type      TransactionType `db:"type" json:"type"`
	UserID    int64           `db:"user_id" json:"userId"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Transaction is a single dated income or expense.
// Amount is kept as a decimal string and Date as YYYY-MM-DD.
type Transaction struct {
	ID          int64           `db:"id" json:"id"`
	Amount      string          `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	Type        TransactionType `db:"type" json:"type"`
	CategoryID  int64           `db:"category_id" json:"categoryId"`
	UserID      int64           `db:"user_id" json:"userId"`
	Date        string          `db:"date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// TransactionWithCategory is a transaction joined with its category's display attributes.
// It is rebuilt on every query and never persisted.
type TransactionWithCategory struct {
	Transaction
	CategoryName  string `db:"category_name" json:"categoryName"`
	CategoryColor string `db:"category_color" json:"categoryColor"`
	CategoryIcon  string `db:"category_icon" json:"categoryIcon"`
}

// Session is a login session; revoked sessions reject their tokens
type Session struct {
	ID        string    `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	Revoked   bool      `db:"revoked" json:"revoked"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// DefaultCategories are created for every new user
var DefaultCategories = []Category{
	{Name: "Food", Icon: "🍽️", Color: "#FF6B6B", Type: TypeExpense},
	{Name: "Transport", Icon: "🚗", Color: "#4ECDC4", Type: TypeExpense},
	{Name: "Shopping", Icon: "🛍️", Color: "#45B7D1", Type: TypeExpense},
	{Name: "Entertainment", Icon: "🎬", Color: "#96CEB4", Type: TypeExpense},
	{Name: "Bills", Icon: "💡", Color: "#FFEAA7", Type: TypeExpense},
	{Name: "Salary", Icon: "💰", Color: "#00B894", Type: TypeIncome},
	{Name: "Business", Icon: "💼", Color: "#00CEC9", Type: TypeIncome},
	{Name: "Investment", Icon: "📈", Color: "#6C5CE7", Type: TypeIncome},
}
