package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendance-bot/internal/metrics"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
)

// Row is one company in the detailed editor.
type Row struct {
	Company        models.Company
	Status         models.Status
	URAResponsible string
	Note           string
	AddedBy        string
	// Version of the stored row when loaded, 0 if there was none.
	Version int64
}

// WillAttend renders the row. Undecided rows show as attending.
func (r Row) WillAttend() bool {
	return r.Status.WillAttend(models.AssumeAttend)
}

// Session is an editing session pinned to the holiday it was loaded for.
type Session struct {
	Target   Target
	Rows     []Row
	LoadedAt time.Time
}

// Row returns the 1-based row n.
func (s *Session) Row(n int) (*Row, error) {
	if n < 1 || n > len(s.Rows) {
		return nil, fmt.Errorf("%w: row %d, expected 1..%d", models.ErrInvalidInput, n, len(s.Rows))
	}
	return &s.Rows[n-1], nil
}

func (s *Session) SetAttend(n int, willAttend bool) error {
	row, err := s.Row(n)
	if err != nil {
		return err
	}
	row.Status = models.StatusFromBool(willAttend)
	return nil
}

func (s *Session) SetURA(n int, text string) error {
	row, err := s.Row(n)
	if err != nil {
		return err
	}
	row.URAResponsible = text
	return nil
}

func (s *Session) SetNote(n int, text string) error {
	row, err := s.Row(n)
	if err != nil {
		return err
	}
	row.Note = text
	return nil
}

// SaveResult summarises a bulk save.
type SaveResult struct {
	Date  holidays.Date
	Saved int
	// RolledOver is set when the active holiday changed after the session was loaded.
	// Rows are still written under the loaded date.
	RolledOver bool
}

// SaveError reports the row a bulk save stopped at. Rows before it were written.
type SaveError struct {
	Company models.Company
	Saved   int
	Err     error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save stopped at %s after %d rows: %v", e.Company.Name, e.Saved, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// DetailedEditor edits every company of the registry for one holiday and saves in bulk.
type DetailedEditor struct {
	holidays  *HolidayService
	companies repository.CompanyRepository
	store     repository.AttendanceOverrideRepository
	strategy  holidays.Strategy
	logger    *logrus.Logger
}

func NewDetailedEditor(
	holidaySvc *HolidayService,
	companies repository.CompanyRepository,
	store repository.AttendanceOverrideRepository,
	strategy holidays.Strategy,
	logger *logrus.Logger,
) *DetailedEditor {
	return &DetailedEditor{
		holidays:  holidaySvc,
		companies: companies,
		store:     store,
		strategy:  strategy,
		logger:    logger,
	}
}

// Load builds one row per company for the resolved holiday, merged with stored overrides.
func (e *DetailedEditor) Load(ctx context.Context) (*Session, error) {
	target, err := e.holidays.Resolve(ctx, e.strategy)
	if err != nil {
		return nil, err
	}

	companies, err := e.companies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	stored, err := e.store.ListForDate(ctx, target.Date())
	if err != nil {
		return nil, fmt.Errorf("list overrides for %s: %w", target.Date(), err)
	}

	byCompany := make(map[uint]models.AttendanceOverride, len(stored))
	for _, o := range stored {
		byCompany[o.CompanyID] = o
	}

	session := &Session{Target: target, LoadedAt: e.holidays.Now()}
	for _, c := range companies {
		row := Row{Company: c}
		if o, ok := byCompany[c.ID]; ok {
			row.Status = o.Status
			row.URAResponsible = models.StringValue(o.URAResponsible)
			row.Note = models.StringValue(o.Note)
			row.AddedBy = models.StringValue(o.AddedBy)
			row.Version = o.Version
		}
		session.Rows = append(session.Rows, row)
	}

	e.logger.WithFields(logrus.Fields{
		"holiday": target.Holiday.Name,
		"date":    target.Date().String(),
		"rows":    len(session.Rows),
		"stored":  len(stored),
	}).Info("Detailed editor session loaded")

	return session, nil
}

// Save writes every row of the session under the session's holiday date, in
// registry order. It stops at the first failed row and returns a *SaveError.
func (e *DetailedEditor) Save(ctx context.Context, session *Session, operator *models.Operator) (*SaveResult, error) {
	if operator == nil || !operator.CanEdit() {
		return nil, models.ErrForbidden
	}

	date := session.Target.Date()
	result := &SaveResult{Date: date}

	current, err := e.holidays.Resolve(ctx, session.Target.Strategy)
	if err != nil {
		e.logger.WithError(err).Warn("Could not re-resolve holiday before save")
	} else if current.Date() != date {
		result.RolledOver = true
		metrics.SessionRolloversTotal.Inc()
		e.logger.WithFields(logrus.Fields{
			"loaded_date":  date.String(),
			"current_date": current.Date().String(),
		}).Warn("Active holiday rolled over during edit, saving under loaded date")
	}

	identity := operator.Identity()
	now := e.holidays.Now()

	for i := range session.Rows {
		row := &session.Rows[i]
		payload := models.OverridePayload{
			Status:         models.StatusFromBool(row.WillAttend()),
			AddedBy:        models.StringPtr(identity),
			URAResponsible: models.StringPtr(row.URAResponsible),
			Note:           models.StringPtr(row.Note),
			UpdatedAt:      now,
		}

		stored, err := e.store.UpsertVersioned(ctx, models.Key{Date: date, CompanyID: row.Company.ID}, payload, row.Version)
		if err != nil {
			outcome := metrics.OutcomeError
			if errors.Is(err, models.ErrConflict) {
				outcome = metrics.OutcomeConflict
			}
			metrics.OverrideUpsertsTotal.WithLabelValues(metrics.SurfaceDetailed, outcome).Inc()
			metrics.BulkSavesPartialTotal.Inc()
			metrics.BulkSaveRows.Observe(float64(result.Saved))

			e.logger.WithError(err).WithFields(logrus.Fields{
				"date":       date.String(),
				"empresa_id": row.Company.ID,
				"saved":      result.Saved,
			}).Error("Detailed save stopped")

			return result, &SaveError{Company: row.Company, Saved: result.Saved, Err: err}
		}

		metrics.OverrideUpsertsTotal.WithLabelValues(metrics.SurfaceDetailed, metrics.OutcomeOK).Inc()
		row.Status = stored.Status
		row.AddedBy = models.StringValue(stored.AddedBy)
		row.Version = stored.Version
		result.Saved++
	}

	metrics.BulkSaveRows.Observe(float64(result.Saved))
	e.logger.WithFields(logrus.Fields{
		"date":        date.String(),
		"saved":       result.Saved,
		"operator":    identity,
		"rolled_over": result.RolledOver,
	}).Info("Detailed editor session saved")

	return result, nil
}
