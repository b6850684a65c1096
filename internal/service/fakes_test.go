package service_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var (
	ctx        = context.Background()
	brt        = time.FixedZone("BRT", -3*60*60)
	errNetwork = errors.New("connection reset by peer")
)

// fakeStore keeps overrides in memory with the same version rules as the gorm repository.
type fakeStore struct {
	rows   map[models.Key]models.AttendanceOverride
	failOn map[uint]error
	writes []models.Key
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:   map[models.Key]models.AttendanceOverride{},
		failOn: map[uint]error{},
	}
}

func (s *fakeStore) Upsert(_ context.Context, key models.Key, p models.OverridePayload) (*models.AttendanceOverride, error) {
	return s.write(key, p, nil)
}

func (s *fakeStore) UpsertVersioned(_ context.Context, key models.Key, p models.OverridePayload, expected int64) (*models.AttendanceOverride, error) {
	return s.write(key, p, &expected)
}

func (s *fakeStore) write(key models.Key, p models.OverridePayload, expected *int64) (*models.AttendanceOverride, error) {
	if err, ok := s.failOn[key.CompanyID]; ok {
		return nil, err
	}
	if !p.IsValid() {
		return nil, models.ErrInvalidInput
	}

	row, exists := s.rows[key]
	if expected != nil && row.Version != *expected {
		return nil, models.ErrConflict
	}

	if !exists {
		row = models.AttendanceOverride{ID: uint(len(s.rows) + 1), Date: key.Date, CompanyID: key.CompanyID, CreatedAt: p.UpdatedAt}
	}
	row.Status = p.Status
	row.AddedBy = p.AddedBy
	row.URAResponsible = p.URAResponsible
	row.Note = p.Note
	row.UpdatedAt = p.UpdatedAt
	row.Version++

	s.rows[key] = row
	s.writes = append(s.writes, key)
	return &row, nil
}

func (s *fakeStore) Get(_ context.Context, key models.Key) (*models.AttendanceOverride, error) {
	row, ok := s.rows[key]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *fakeStore) ListForDate(_ context.Context, date holidays.Date) ([]models.AttendanceOverride, error) {
	var out []models.AttendanceOverride
	for k, r := range s.rows {
		if k.Date == date {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyID < out[j].CompanyID })
	return out, nil
}

func (s *fakeStore) QueryRange(_ context.Context, q repository.RangeQuery) ([]models.AttendanceOverride, error) {
	var out []models.AttendanceOverride
	for k, r := range s.rows {
		if k.Date.Before(q.From) || k.Date.After(q.To) {
			continue
		}
		if q.CompanyID != nil && *q.CompanyID != k.CompanyID {
			continue
		}
		if q.Status != nil && *q.Status != r.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CompanyID < out[j].CompanyID
	})
	return out, nil
}

func (s *fakeStore) NextDateWithData(_ context.Context, from holidays.Date) (*holidays.Date, error) {
	var next *holidays.Date
	for k := range s.rows {
		if k.Date.Before(from) {
			continue
		}
		if next == nil || k.Date.Before(*next) {
			d := k.Date
			next = &d
		}
	}
	return next, nil
}

type fakeCompanies struct {
	list []models.Company
}

func (f *fakeCompanies) List(context.Context) ([]models.Company, error) {
	return f.list, nil
}

func (f *fakeCompanies) GetByID(_ context.Context, id uint) (*models.Company, error) {
	for _, c := range f.list {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCompanies) Create(_ context.Context, c *models.Company) error {
	c.ID = uint(len(f.list) + 1)
	f.list = append(f.list, *c)
	return nil
}

type fixture struct {
	clock     *holidays.FixedClock
	store     *fakeStore
	companies *fakeCompanies
	holidays  *service.HolidayService
	logger    *logrus.Logger
	hook      *test.Hook
}

func newFixture(now time.Time) *fixture {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	clock := &holidays.FixedClock{T: now}
	store := newFakeStore()

	return &fixture{
		clock: clock,
		store: store,
		companies: &fakeCompanies{list: []models.Company{
			{ID: 1, Name: "Claro"},
			{ID: 2, Name: "Tim"},
			{ID: 3, Name: "Vivo"},
		}},
		holidays: service.NewHolidayService(holidays.NewSelector(clock, brt), store, log),
		logger:   log,
		hook:     hook,
	}
}

func (f *fixture) detailed() *service.DetailedEditor {
	return service.NewDetailedEditor(f.holidays, f.companies, f.store, holidays.StrategyRollover, f.logger)
}

func (f *fixture) compact(strategy holidays.Strategy) *service.CompactEditor {
	return service.NewCompactEditor(f.holidays, f.companies, f.store, strategy, f.logger)
}

var (
	supervisor = &models.Operator{ChatID: 10, FirstName: "Ana", LastName: "Souza", Username: "ana", Role: models.RoleSupervisor}
	viewer     = &models.Operator{ChatID: 11, FirstName: "Bruno", Role: models.RoleViewer}
)
