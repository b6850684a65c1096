package service

import (
	"context"
	"fmt"

	"attendance-bot/internal/metrics"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
)

// ReportFilter selects overrides by explicit date range.
type ReportFilter struct {
	From      holidays.Date
	To        holidays.Date
	CompanyID *uint
	Status    *models.Status
}

// ReportRow is an override annotated with the company's display name.
type ReportRow struct {
	models.AttendanceOverride
	CompanyName string
}

// ReportService is read-only.
type ReportService struct {
	companies repository.CompanyRepository
	store     repository.AttendanceOverrideRepository
	logger    *logrus.Logger
}

func NewReportService(companies repository.CompanyRepository, store repository.AttendanceOverrideRepository, logger *logrus.Logger) *ReportService {
	return &ReportService{companies: companies, store: store, logger: logger}
}

// Query returns matching overrides, newest date first.
func (s *ReportService) Query(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	if f.From.IsZero() || f.To.IsZero() || f.From.After(f.To) {
		return nil, fmt.Errorf("%w: date range %s..%s", models.ErrInvalidInput, f.From, f.To)
	}
	if f.Status != nil && !f.Status.Decided() {
		return nil, fmt.Errorf("%w: only sim or não can be filtered", models.ErrInvalidInput)
	}

	rows, err := s.store.QueryRange(ctx, repository.RangeQuery{
		From:      f.From,
		To:        f.To,
		CompanyID: f.CompanyID,
		Status:    f.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}

	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	names := make(map[uint]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}

	out := make([]ReportRow, 0, len(rows))
	for _, r := range rows {
		name, ok := names[r.CompanyID]
		if !ok {
			name = fmt.Sprintf("#%d", r.CompanyID)
		}
		out = append(out, ReportRow{AttendanceOverride: r, CompanyName: name})
	}

	metrics.ReportRows.Observe(float64(len(out)))
	s.logger.WithFields(logrus.Fields{
		"from": f.From.String(),
		"to":   f.To.String(),
		"rows": len(out),
	}).Info("Attendance report queried")

	return out, nil
}
