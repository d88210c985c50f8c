package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rongwang/expense-tracker/internal/api"
	"github.com/rongwang/expense-tracker/internal/config"
	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/repository"
	"github.com/rongwang/expense-tracker/internal/service"
	"github.com/rongwang/expense-tracker/internal/session"
	"github.com/rongwang/expense-tracker/internal/share"
)

// Now is the fixed time every test context runs at
var Now = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  repository.Repository
	Service     service.Service
	DB          *sqlx.DB
	ShareDir    string
	TestUserID  int64
	TestUserJWT string
}

// SetupTestContext creates a new test context backed by an in-memory sqlite database
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite3", Path: ":memory:"},
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret-key",
			TokenTTL:   24 * time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
	}

	// Set up database
	db, err := config.SetupDatabase(cfg)
	require.NoError(t, err, "Failed to set up test database")

	// Create repository
	repo := repository.NewSQLRepository(db)

	shareDir := t.TempDir()
	sharer, err := share.NewDirSharer(shareDir)
	require.NoError(t, err)

	// Create service
	svc := service.NewDefaultService(repo, service.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		TokenDuration:  cfg.Auth.TokenTTL,
		BcryptCost:     cfg.Auth.BcryptCost,
		Clock:          session.FixedClock{T: Now},
		Sharer:         sharer,
		CurrencySymbol: "$",
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Set up routes
	handler.SetupRoutes(router)

	// Create test user
	testUserID, token := createTestUser(t, svc)

	return &TestContext{
		Router:      router,
		Repository:  repo,
		Service:     svc,
		DB:          db,
		ShareDir:    shareDir,
		TestUserID:  testUserID,
		TestUserJWT: token,
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.DB != nil {
		t.DB.Close()
	}
}

// Helper functions
func createTestUser(t *testing.T, svc service.Service) (int64, string) {
	resp, err := svc.SignUp(context.Background(), models.SignUpRequest{
		Email:    "testuser@example.com",
		Password: "testpassword",
		Name:     "Test User",
	})
	require.NoError(t, err, "Failed to create test user")

	return resp.UserID, resp.Token
}

// CategoryID returns the id of the test user's category with the given name
func (tc *TestContext) CategoryID(t *testing.T, name string) int64 {
	t.Helper()
	categories, err := tc.Repository.GetCategoriesByUser(context.Background(), tc.TestUserID)
	require.NoError(t, err)
	for _, c := range categories {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %q not found", name)
	return 0
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
