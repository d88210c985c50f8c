package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rongwang/expense-tracker/internal/api/testutils"
	"github.com/rongwang/expense-tracker/internal/models"
)

func seedReportData(t *testing.T, testCtx *testutils.TestContext) {
	t.Helper()
	foodID := testCtx.CategoryID(t, "Food")
	salaryID := testCtx.CategoryID(t, "Salary")

	createTransaction(t, testCtx, models.TransactionRequest{Amount: "1500", Type: models.TypeIncome, CategoryID: salaryID, Date: "2024-01-01"})
	createTransaction(t, testCtx, models.TransactionRequest{Amount: "40.25", Description: "Groceries", Type: models.TypeExpense, CategoryID: foodID, Date: "2024-01-05"})
	createTransaction(t, testCtx, models.TransactionRequest{Amount: "60", Type: models.TypeExpense, CategoryID: foodID, Date: "2023-12-28"})
}

func TestDashboard(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)
	seedReportData(t, testCtx)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/dashboard", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Transactions, 3)
	assert.Len(t, resp.Categories, len(models.DefaultCategories))
	assert.Equal(t, "1399.75", resp.Stats.TotalBalance)
	assert.Equal(t, "1500.00", resp.Stats.MonthlyIncome)
	assert.Equal(t, "40.25", resp.Stats.MonthlyExpense)

	// figures follow the filter
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/stats?dateTo=2023-12-31", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var st models.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "-60.00", st.TotalBalance)
	assert.Equal(t, "0.00", st.MonthlyExpense)
}

func TestDownloadReport(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	// Test case 1: Empty selection
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/reports?format=html", nil, headers)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	seedReportData(t, testCtx)

	// Test case 2: HTML grouped by month
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/reports?format=html&grouped=true", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="transaction-report-20240120-100000.html"`, w.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, w.Header().Get("X-Report-Id"))
	body := w.Body.String()
	assert.Contains(t, body, "January 2024 (2 transactions)")
	assert.Contains(t, body, "December 2023 (1 transactions)")
	assert.Contains(t, body, "&#43;$1,500.00")
	assert.Contains(t, body, "-$40.25")

	// Test case 3: PDF by default, filtered
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/reports?type=expense", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	// Test case 4: Unsupported format
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/reports?format=docx", nil, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 5: grouped must be a boolean
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/reports?format=html&grouped=yes", nil, headers)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Contains(t, errResp.Message, "grouped")

	// Test case 6: no grouped parameter gives the configured flat layout
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/reports?format=html", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Transaction Details (3 transactions)")
}

func TestShareReport(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)
	seedReportData(t, testCtx)

	req := models.ShareReportRequest{
		Filters: models.TransactionFilters{DateFrom: "2024-01-01"},
		Format:  "xlsx",
	}
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/reports/share", req,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ShareReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ReportID)
	assert.Equal(t, "transaction-report-20240120-100000.xlsx", resp.Filename)

	info, err := os.Stat(filepath.Join(testCtx.ShareDir, resp.Filename))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// Invalid format is rejected by binding
	req.Format = "doc"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/reports/share", req,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
