// Command expensectl manages expenses in a local store from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/config"
	"github.com/rongwang/expense-tracker/internal/repository"
	"github.com/rongwang/expense-tracker/internal/service"
	"github.com/rongwang/expense-tracker/internal/session"
	"github.com/rongwang/expense-tracker/internal/share"
	"github.com/rongwang/expense-tracker/internal/utils"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	tokenFile  string
	logLevel   string
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "expensectl",
		Short:         "Track income and expenses",
		Long:          `expensectl records income and expenses against your own categories, shows balances and exports reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.tokenFile, "token-file", "", "where login credentials are kept (default: user config dir)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd(opts))
	root.AddCommand(registerCmd(opts))
	root.AddCommand(loginCmd(opts))
	root.AddCommand(logoutCmd(opts))
	root.AddCommand(whoamiCmd(opts))
	root.AddCommand(categoriesCmd(opts))
	root.AddCommand(transactionsCmd(opts))
	root.AddCommand(statsCmd(opts))
	root.AddCommand(reportCmd(opts))

	return root
}

// app bundles everything a command needs against the local store
type app struct {
	cfg    *config.Config
	db     *sqlx.DB
	svc    service.Service
	tokens session.TokenStore
	sharer share.Sharer
	logger *slog.Logger
}

func newApp(opts *globalOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger := utils.NewLoggerTo(os.Stderr, opts.logLevel, cfg.Log.Format)
	slog.SetDefault(logger)

	// Initialize storage with auto-migration
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return nil, err
	}

	sharer, err := share.New(cfg.Share, session.SystemClock{}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	tokenFile := opts.tokenFile
	if tokenFile == "" {
		if tokenFile, err = session.DefaultTokenPath(); err != nil {
			db.Close()
			sharer.Close()
			return nil, err
		}
	}

	svc := service.NewDefaultService(repository.NewSQLRepository(db), service.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		TokenDuration:  cfg.Auth.TokenTTL,
		BcryptCost:     cfg.Auth.BcryptCost,
		Clock:          session.SystemClock{},
		Sharer:         sharer,
		ReportTitle:    cfg.Report.Title,
		CurrencySymbol: cfg.Report.CurrencySymbol,
		ReportByMonth:  cfg.Report.ByMonth,
		Logger:         logger,
	})

	return &app{
		cfg:    cfg,
		db:     db,
		svc:    svc,
		tokens: session.NewFileTokenStore(tokenFile),
		sharer: sharer,
		logger: logger,
	}, nil
}

func (a *app) Close() {
	a.sharer.Close()
	a.db.Close()
}

// authed returns ctx carrying the session of the stored login
func (a *app) authed(ctx context.Context) (context.Context, error) {
	creds, err := a.tokens.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoCredentials) {
			return nil, errors.New("not logged in; run 'expensectl login' first")
		}
		return nil, err
	}

	sess, err := a.svc.ValidateSession(ctx, creds.Token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidSession) {
			a.logger.Debug("Stored session rejected", "user_id", creds.UserID, "error", err)
			_ = a.tokens.Clear()
			return nil, errors.New("session expired; run 'expensectl login' again")
		}
		return nil, err
	}
	return session.NewContext(ctx, sess), nil
}

// withApp opens the app, runs fn and closes the app
func withApp(opts *globalOptions, fn func(a *app) error) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// withSession is withApp for commands that need a logged-in user
func withSession(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, a *app) error) error {
	return withApp(opts, func(a *app) error {
		ctx, err := a.authed(cmd.Context())
		if err != nil {
			return err
		}
		return fn(ctx, a)
	})
}
