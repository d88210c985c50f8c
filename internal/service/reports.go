package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/report"
	"github.com/rongwang/expense-tracker/internal/stats"
)

// Dashboard loads categories and filtered transactions concurrently and
// computes the figures over the transactions shown
func (s *DefaultService) Dashboard(ctx context.Context, filters models.TransactionFilters) (*models.DashboardResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	var (
		categories []models.Category
		txs        []models.TransactionWithCategory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.repo.GetCategoriesByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("error getting categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = s.listTransactions(gctx, userID, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.DashboardResponse{
		Status:       "success",
		Stats:        s.stats.Compute(txs).Response(),
		Categories:   categories,
		Transactions: txs,
	}, nil
}

// Stats aggregates the filtered transactions against the service clock
func (s *DefaultService) Stats(ctx context.Context, filters models.TransactionFilters) (stats.Stats, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return stats.Stats{}, err
	}

	txs, err := s.listTransactions(ctx, userID, filters)
	if err != nil {
		return stats.Stats{}, err
	}

	st := s.stats.Compute(txs)
	if st.Skipped > 0 {
		s.logger.WarnContext(ctx, "Skipped unparseable transactions", "user_id", userID, "skipped", st.Skipped)
	}
	return st, nil
}

// BuildReport builds a report over exactly the transactions the filters select.
// An empty layout falls back to the configured default.
func (s *DefaultService) BuildReport(ctx context.Context, filters models.TransactionFilters, layout report.Layout) (*report.Document, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.listTransactions(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	opts := s.reportOpts
	if layout != "" {
		opts.Layout = layout
	}
	return report.Build(txs, s.clock.Now(), opts)
}

func (s *DefaultService) ExportReport(
	ctx context.Context,
	filters models.TransactionFilters,
	layout report.Layout,
	format report.Format,
) (*report.Export, error) {
	doc, err := s.BuildReport(ctx, filters, layout)
	if err != nil {
		return nil, err
	}

	exp, err := report.NewExport(doc, format)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Report exported",
		"report_id", exp.ReportID,
		"format", string(format),
		"transactions", doc.TransactionCount(),
		"bytes", len(exp.Data))
	return exp, nil
}

// ShareReport renders a report and hands it to the configured sharer.
// Sharer failures are wrapped in common.ErrShareFailed.
func (s *DefaultService) ShareReport(ctx context.Context, req models.ShareReportRequest) (*models.ShareReportResponse, error) {
	format, err := report.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if format == report.FormatText {
		return nil, common.NewValidationError("format", "text reports cannot be shared")
	}

	var layout report.Layout
	if req.ByMonth != nil {
		layout = report.LayoutFlat
		if *req.ByMonth {
			layout = report.LayoutByMonth
		}
	}

	exp, err := s.ExportReport(ctx, req.Filters, layout, format)
	if err != nil {
		return nil, err
	}

	if err := s.sharer.Share(ctx, exp); err != nil {
		s.logger.ErrorContext(ctx, "Report sharing failed", "report_id", exp.ReportID, "error", err)
		return nil, errors.Join(common.ErrShareFailed, err)
	}

	return &models.ShareReportResponse{
		Status:   "success",
		ReportID: exp.ReportID,
		Filename: exp.Filename,
	}, nil
}
