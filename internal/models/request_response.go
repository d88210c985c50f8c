package models

// Request models
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CategoryRequest struct {
	Name  string          `json:"name" binding:"required,max=50"`
	Icon  string          `json:"icon"`
	Color string          `json:"color" binding:"required,hexcolor"`
	Type  TransactionType `json:"type" binding:"required,oneof=income expense"`
}

type TransactionRequest struct {
	Amount      string          `json:"amount" binding:"required"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type" binding:"required,oneof=income expense"`
	CategoryID  int64           `json:"categoryId" binding:"required"`
	Date        string          `json:"date" binding:"required"`
}

type ShareReportRequest struct {
	Filters TransactionFilters `json:"filters"`
	Format  string             `json:"format" binding:"omitempty,oneof=html pdf xlsx"`
	// ByMonth overrides the configured layout when set
	ByMonth *bool              `json:"byMonth,omitempty"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    int64  `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type CategoryResponse struct {
	Status   string    `json:"status"`
	Category *Category `json:"category"`
}

type CategoriesResponse struct {
	Status     string     `json:"status"`
	Categories []Category `json:"categories"`
}

type TransactionResponse struct {
	Status      string       `json:"status"`
	Transaction *Transaction `json:"transaction"`
}

type TransactionsResponse struct {
	Status       string                    `json:"status"`
	Transactions []TransactionWithCategory `json:"transactions"`
	Count        int                       `json:"count"`
	Orphaned     int                       `json:"orphaned,omitempty"`
}

// StatsResponse carries figures already rounded to two decimals
type StatsResponse struct {
	Status         string `json:"status"`
	TotalBalance   string `json:"totalBalance"`
	TotalIncome    string `json:"totalIncome"`
	TotalExpense   string `json:"totalExpense"`
	MonthlyIncome  string `json:"monthlyIncome"`
	MonthlyExpense string `json:"monthlyExpense"`
}

type DashboardResponse struct {
	Status       string                    `json:"status"`
	Stats        StatsResponse             `json:"stats"`
	Categories   []Category                `json:"categories"`
	Transactions []TransactionWithCategory `json:"transactions"`
}

type ShareReportResponse struct {
	Status   string `json:"status"`
	ReportID string `json:"reportId"`
	Filename string `json:"filename"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
