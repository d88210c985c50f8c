package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/report"
	"github.com/rongwang/expense-tracker/internal/repository"
	"github.com/rongwang/expense-tracker/internal/session"
	"github.com/rongwang/expense-tracker/internal/share"
	"github.com/rongwang/expense-tracker/internal/stats"
)

// Service defines all the business logic operations.
// Every operation except SignUp, Login and ValidateSession reads the caller
// from the session attached to ctx.
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	ValidateSession(ctx context.Context, token string) (*session.Session, error)
	CurrentUser(ctx context.Context) (*models.User, error)

	// Categories
	ListCategories(ctx context.Context, typ models.TransactionType) ([]models.Category, error)
	CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, req models.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	// Transactions
	CreateTransaction(ctx context.Context, req models.TransactionRequest) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, req models.TransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (*models.TransactionWithCategory, error)
	ListTransactions(ctx context.Context, filters models.TransactionFilters) (*models.TransactionsResponse, error)

	// Figures and reports
	Dashboard(ctx context.Context, filters models.TransactionFilters) (*models.DashboardResponse, error)
	Stats(ctx context.Context, filters models.TransactionFilters) (stats.Stats, error)
	BuildReport(ctx context.Context, filters models.TransactionFilters, layout report.Layout) (*report.Document, error)
	ExportReport(ctx context.Context, filters models.TransactionFilters, layout report.Layout, format report.Format) (*report.Export, error)
	ShareReport(ctx context.Context, req models.ShareReportRequest) (*models.ShareReportResponse, error)
}

// Options configures a DefaultService. Zero values fall back to sensible defaults.
type Options struct {
	JWTSecret      string
	TokenDuration  time.Duration
	BcryptCost     int
	Clock          session.Clock
	Sharer         share.Sharer
	ReportTitle    string
	CurrencySymbol string
	// ReportByMonth makes by-month the layout when a caller does not pick one
	ReportByMonth bool
	Logger         *slog.Logger
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	bcryptCost    int
	clock         session.Clock
	stats         *stats.Engine
	sharer        share.Sharer
	reportOpts    report.Options
	logger        *slog.Logger
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, opts Options) Service {
	s := &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(opts.JWTSecret),
		tokenDuration: opts.TokenDuration,
		bcryptCost:    opts.BcryptCost,
		clock:         opts.Clock,
		sharer:        opts.Sharer,
		reportOpts: report.Options{
			Title:          opts.ReportTitle,
			CurrencySymbol: opts.CurrencySymbol,
		},
		logger: opts.Logger,
	}

	if s.tokenDuration <= 0 {
		s.tokenDuration = 24 * time.Hour // 24 hours token validity
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.clock == nil {
		s.clock = session.SystemClock{}
	}
	if s.sharer == nil {
		s.sharer = share.Disabled{}
	}
	if opts.ReportByMonth {
		s.reportOpts.Layout = report.LayoutByMonth
	} else {
		s.reportOpts.Layout = report.LayoutFlat
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "service")
	s.stats = stats.NewEngine(s.clock)

	return s
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" {
		return nil, common.NewValidationError("email", "is required")
	}
	if name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	if len(req.Password) < 8 {
		return nil, common.NewValidationError("password", "must be at least 8 characters")
	}

	// Check if user already exists
	existingUser, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}

	if existingUser != nil {
		return nil, common.ErrDuplicateEmail
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	// Create the user
	user := &models.User{
		Email:    email,
		Name:     name,
		Password: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.repo.SeedDefaultCategories(ctx, user.ID); err != nil {
		s.logger.WarnContext(ctx, "Failed to create default categories", "user_id", user.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID)

	// A new account is logged in straight away
	return s.startSession(ctx, user)
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	// Get the user
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, common.ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *DefaultService) startSession(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	now := s.clock.Now()
	sess := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokenDuration),
		CreatedAt: now.UTC(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	// Generate JWT token
	token, err := s.generateJWT(user, sess, now)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// Logout revokes the caller's session so its token stops validating
func (s *DefaultService) Logout(ctx context.Context) error {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return common.ErrInvalidSession
	}

	if err := s.repo.RevokeSession(ctx, sess.ID); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged out", "user_id", sess.UserID, "session_id", sess.ID)
	return nil
}

// ValidateSession checks the token signature, its expiry and that its session is still live
func (s *DefaultService) ValidateSession(ctx context.Context, tokenString string) (*session.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, common.ErrInvalidSession
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, common.ErrInvalidSession
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, common.ErrInvalidSession
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, common.ErrInvalidSession
	}

	stored, err := s.repo.GetSession(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("error getting session: %w", err)
	}
	if stored == nil || stored.Revoked || stored.UserID != userID {
		return nil, common.ErrInvalidSession
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, common.ErrInvalidSession
	}

	sess := &session.Session{
		ID:        stored.ID,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		ExpiresAt: stored.ExpiresAt,
	}
	if sess.Expired(s.clock.Now()) {
		return nil, common.ErrInvalidSession
	}
	return sess, nil
}

func (s *DefaultService) CurrentUser(ctx context.Context) (*models.User, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, common.ErrNotFound
	}
	return user, nil
}

// Helper methods
func (s *DefaultService) userID(ctx context.Context) (int64, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || sess.Expired(s.clock.Now()) {
		return 0, common.ErrInvalidSession
	}
	return sess.UserID, nil
}

func (s *DefaultService) generateJWT(user *models.User, sess *models.Session, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10), // subject
		"sid": sess.ID,                        // session id, revocable
		"exp": sess.ExpiresAt.Unix(),
		"iat": now.Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
