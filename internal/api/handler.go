package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/report"
	"github.com/rongwang/expense-tracker/internal/service"
)

// Handler exposes the service over HTTP
type Handler struct {
	svc service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes registers every endpoint on router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Public endpoints
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/login", h.Login)

	// Endpoints that need a valid session
	protected := api.Group("")
	protected.Use(AuthMiddleware(h.svc))

	protected.POST("/auth/logout", h.Logout)
	protected.GET("/me", h.Me)

	protected.GET("/categories", h.ListCategories)
	protected.POST("/categories", h.CreateCategory)
	protected.PUT("/categories/:id", h.UpdateCategory)
	protected.DELETE("/categories/:id", h.DeleteCategory)

	protected.GET("/transactions", h.ListTransactions)
	protected.POST("/transactions", h.CreateTransaction)
	protected.GET("/transactions/:id", h.GetTransaction)
	protected.PUT("/transactions/:id", h.UpdateTransaction)
	protected.DELETE("/transactions/:id", h.DeleteTransaction)

	protected.GET("/dashboard", h.Dashboard)
	protected.GET("/stats", h.Stats)
	protected.GET("/reports", h.DownloadReport)
	protected.POST("/reports/share", h.ShareReport)
}

// Authentication handlers
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "Logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.CurrentUser(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Category handlers
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context(), models.TransactionType(c.Query("type")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CategoriesResponse{Status: "success", Categories: categories})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	category, err := h.svc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CategoryResponse{Status: "success", Category: category})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	category, err := h.svc.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{Status: "success", Category: category})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "Category deleted"})
}

// Transaction handlers
func (h *Handler) ListTransactions(c *gin.Context) {
	filters, ok := queryFilters(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListTransactions(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tx, err := h.svc.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.TransactionResponse{Status: "success", Transaction: tx})
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx, err := h.svc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tx, err := h.svc.UpdateTransaction(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionResponse{Status: "success", Transaction: tx})
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "Transaction deleted"})
}

// Figures and reports
func (h *Handler) Dashboard(c *gin.Context) {
	filters, ok := queryFilters(c)
	if !ok {
		return
	}

	resp, err := h.svc.Dashboard(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Stats(c *gin.Context) {
	filters, ok := queryFilters(c)
	if !ok {
		return
	}

	st, err := h.svc.Stats(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, st.Response())
}

// DownloadReport streams the rendered report as an attachment
func (h *Handler) DownloadReport(c *gin.Context) {
	filters, ok := queryFilters(c)
	if !ok {
		return
	}

	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}

	var layout report.Layout
	if raw, set := c.GetQuery("grouped"); set {
		grouped, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, common.NewValidationError("grouped", fmt.Sprintf("invalid boolean %q", raw)))
			return
		}
		layout = report.LayoutFlat
		if grouped {
			layout = report.LayoutByMonth
		}
	}

	exp, err := h.svc.ExportReport(c.Request.Context(), filters, layout, format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	c.Header("X-Report-Id", exp.ReportID)
	c.Data(http.StatusOK, exp.ContentType, exp.Data)
}

func (h *Handler) ShareReport(c *gin.Context) {
	var req models.ShareReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.svc.ShareReport(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Helpers
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// queryFilters reads dateFrom, dateTo, type and categoryIds. Category ids may be
// comma separated, repeated, or both.
func queryFilters(c *gin.Context) (models.TransactionFilters, bool) {
	filters := models.TransactionFilters{
		DateFrom: c.Query("dateFrom"),
		DateTo:   c.Query("dateTo"),
		Type:     c.Query("type"),
	}

	for _, raw := range c.QueryArray("categoryIds") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				respondError(c, common.NewValidationError("categoryIds", fmt.Sprintf("invalid category id %q", part)))
				return filters, false
			}
			filters.CategoryIDs = append(filters.CategoryIDs, id)
		}
	}

	if err := filters.Validate(); err != nil {
		respondError(c, err)
		return filters, false
	}
	return filters, true
}
