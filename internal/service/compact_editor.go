package service

import (
	"context"
	"errors"
	"fmt"

	"attendance-bot/internal/metrics"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
)

// Cell is one company in the toggle grid.
type Cell struct {
	Company        models.Company
	Status         models.Status
	URAResponsible string
	Note           string
	Version        int64
}

// WillAttend renders the cell. Undecided cells show as not attending.
func (c Cell) WillAttend() bool {
	return c.Status.WillAttend(models.AssumeAbsent)
}

// Grid is the toggle grid for one holiday date.
type Grid struct {
	Target Target
	Cells  []Cell
}

func (g *Grid) Cell(companyID uint) (*Cell, error) {
	for i := range g.Cells {
		if g.Cells[i].Company.ID == companyID {
			return &g.Cells[i], nil
		}
	}
	return nil, fmt.Errorf("%w: company %d not in grid", models.ErrNotFound, companyID)
}

// CompactEditor is the yes/no grid. Every toggle is written immediately.
type CompactEditor struct {
	holidays  *HolidayService
	companies repository.CompanyRepository
	store     repository.AttendanceOverrideRepository
	strategy  holidays.Strategy
	logger    *logrus.Logger
}

func NewCompactEditor(
	holidaySvc *HolidayService,
	companies repository.CompanyRepository,
	store repository.AttendanceOverrideRepository,
	strategy holidays.Strategy,
	logger *logrus.Logger,
) *CompactEditor {
	return &CompactEditor{
		holidays:  holidaySvc,
		companies: companies,
		store:     store,
		strategy:  strategy,
		logger:    logger,
	}
}

// Load builds the grid for the resolved date.
func (e *CompactEditor) Load(ctx context.Context) (*Grid, error) {
	target, err := e.holidays.Resolve(ctx, e.strategy)
	if err != nil {
		return nil, err
	}
	return e.LoadFor(ctx, target)
}

// LoadFor builds the grid for an already resolved target. The bot uses it to
// redraw a grid without moving it to another date.
func (e *CompactEditor) LoadFor(ctx context.Context, target Target) (*Grid, error) {
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

	grid := &Grid{Target: target}
	for _, c := range companies {
		cell := Cell{Company: c}
		if o, ok := byCompany[c.ID]; ok {
			cell.Status = o.Status
			cell.URAResponsible = models.StringValue(o.URAResponsible)
			cell.Note = models.StringValue(o.Note)
			cell.Version = o.Version
		}
		grid.Cells = append(grid.Cells, cell)
	}

	e.logger.WithFields(logrus.Fields{
		"date":   target.Date().String(),
		"cells":  len(grid.Cells),
		"stored": len(stored),
	}).Debug("Compact grid loaded")

	return grid, nil
}

// Toggle flips the visible value of a cell and writes it. On failure the
// cell is restored to what it showed before and the error is returned.
func (e *CompactEditor) Toggle(ctx context.Context, grid *Grid, companyID uint, operator *models.Operator) (*Cell, error) {
	if operator == nil || !operator.CanEdit() {
		return nil, models.ErrForbidden
	}

	cell, err := grid.Cell(companyID)
	if err != nil {
		return nil, err
	}

	previous := *cell
	cell.Status = models.StatusFromBool(!previous.WillAttend())

	payload := models.OverridePayload{
		Status:         cell.Status,
		AddedBy:        models.StringPtr(operator.Identity()),
		URAResponsible: models.StringPtr(previous.URAResponsible),
		Note:           models.StringPtr(previous.Note),
		UpdatedAt:      e.holidays.Now(),
	}
	key := models.Key{Date: grid.Target.Date(), CompanyID: companyID}

	stored, err := e.store.UpsertVersioned(ctx, key, payload, previous.Version)
	if err != nil {
		*cell = previous

		outcome := metrics.OutcomeError
		if errors.Is(err, models.ErrConflict) {
			outcome = metrics.OutcomeConflict
		}
		metrics.OverrideUpsertsTotal.WithLabelValues(metrics.SurfaceCompact, outcome).Inc()
		metrics.ToggleRevertsTotal.Inc()

		e.logger.WithError(err).WithField("key", key.String()).Warn("Toggle reverted")
		return cell, err
	}

	metrics.OverrideUpsertsTotal.WithLabelValues(metrics.SurfaceCompact, metrics.OutcomeOK).Inc()
	cell.Status = stored.Status
	cell.URAResponsible = models.StringValue(stored.URAResponsible)
	cell.Note = models.StringValue(stored.Note)
	cell.Version = stored.Version

	e.logger.WithFields(logrus.Fields{
		"key":      key.String(),
		"status":   cell.Status.String(),
		"operator": operator.Identity(),
	}).Info("Toggle saved")

	return cell, nil
}
