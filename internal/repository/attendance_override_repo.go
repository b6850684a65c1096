package repository

import (
	"context"
	"errors"
	"time"

	"attendance-bot/internal/metrics"
	"attendance-bot/internal/models"
	"attendance-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RangeQuery filters overrides for reporting. Nil filters match everything.
type RangeQuery struct {
	From      holidays.Date
	To        holidays.Date
	CompanyID *uint
	Status    *models.Status
}

type AttendanceOverrideRepository interface {
	// Upsert inserts or replaces the row for key in one statement. Last write wins.
	Upsert(ctx context.Context, key models.Key, payload models.OverridePayload) (*models.AttendanceOverride, error)
	// UpsertVersioned writes only if the stored version still equals expectedVersion.
	// 0 means "no row yet" and inserts; any other value updates an existing row.
	// A missing row or a different version returns models.ErrConflict.
	UpsertVersioned(ctx context.Context, key models.Key, payload models.OverridePayload, expectedVersion int64) (*models.AttendanceOverride, error)
	Get(ctx context.Context, key models.Key) (*models.AttendanceOverride, error)
	ListForDate(ctx context.Context, date holidays.Date) ([]models.AttendanceOverride, error)
	QueryRange(ctx context.Context, q RangeQuery) ([]models.AttendanceOverride, error)
	// NextDateWithData returns the first date on or after from that has any row, or nil.
	NextDateWithData(ctx context.Context, from holidays.Date) (*holidays.Date, error)
}

type GormAttendanceOverrideRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

const overrideTable = "operacao_feriados"

var overrideMutableColumns = []string{
	"status_operacao",
	"quem_adicionou",
	"responsavel_ura",
	"observacao",
	"updated_at",
}

func NewGormAttendanceOverrideRepository(db *gorm.DB, logger *logrus.Logger) (*GormAttendanceOverrideRepository, error) {
	if err := db.AutoMigrate(&models.AttendanceOverride{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate operacao_feriados table")
		return nil, err
	}

	logger.Info("Attendance override repository initialized")
	return &GormAttendanceOverrideRepository{db: db, logger: logger}, nil
}

func (r *GormAttendanceOverrideRepository) Upsert(ctx context.Context, key models.Key, payload models.OverridePayload) (*models.AttendanceOverride, error) {
	return r.upsert(ctx, key, payload, nil)
}

func (r *GormAttendanceOverrideRepository) UpsertVersioned(ctx context.Context, key models.Key, payload models.OverridePayload, expectedVersion int64) (*models.AttendanceOverride, error) {
	return r.upsert(ctx, key, payload, &expectedVersion)
}

func (r *GormAttendanceOverrideRepository) upsert(ctx context.Context, key models.Key, payload models.OverridePayload, expectedVersion *int64) (*models.AttendanceOverride, error) {
	fields := logrus.Fields{
		"date":       key.Date.String(),
		"empresa_id": key.CompanyID,
		"status":     payload.Status.String(),
	}
	if expectedVersion != nil {
		fields["expected_version"] = *expectedVersion
	}

	if key.Date.IsZero() || key.CompanyID == 0 || !payload.IsValid() {
		r.logger.WithFields(fields).Warn("Invalid attendance override payload")
		return nil, models.ErrInvalidInput
	}

	row := &models.AttendanceOverride{
		Date:           key.Date,
		CompanyID:      key.CompanyID,
		Status:         payload.Status,
		AddedBy:        payload.AddedBy,
		URAResponsible: payload.URAResponsible,
		Note:           payload.Note,
		Version:        1,
		CreatedAt:      payload.UpdatedAt,
		UpdatedAt:      payload.UpdatedAt,
	}

	start := time.Now()
	var result *gorm.DB
	if expectedVersion != nil && *expectedVersion > 0 {
		// The caller saw a stored row, so there is nothing to insert.
		result = r.db.WithContext(ctx).
			Model(&models.AttendanceOverride{}).
			Where("date = ? AND empresa_id = ? AND version = ?", key.Date, key.CompanyID, *expectedVersion).
			Updates(map[string]any{
				"status_operacao": payload.Status,
				"quem_adicionou":  payload.AddedBy,
				"responsavel_ura": payload.URAResponsible,
				"observacao":      payload.Note,
				"updated_at":      payload.UpdatedAt,
				"version":         gorm.Expr("version + 1"),
			})
	} else {
		result = r.db.WithContext(ctx).Clauses(overrideConflict(expectedVersion)).Create(row)
	}
	metrics.StoreDurationSeconds.WithLabelValues("upsert").Observe(time.Since(start).Seconds())

	if result.Error != nil {
		r.logger.WithError(result.Error).WithFields(fields).Error("Failed to upsert attendance override")
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		r.logger.WithFields(fields).Warn("Attendance override version conflict")
		return nil, models.ErrConflict
	}

	stored, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, models.ErrNotFound
	}

	fields["version"] = stored.Version
	r.logger.WithFields(fields).Info("Attendance override saved")
	return stored, nil
}

// overrideConflict targets the (date, empresa_id) unique index. With an expected
// version of 0 the conflict update never applies, so an existing row is a conflict.
func overrideConflict(expectedVersion *int64) clause.OnConflict {
	updates := clause.AssignmentColumns(overrideMutableColumns)
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "version"},
		Value:  gorm.Expr(overrideTable + ".version + 1"),
	})

	oc := clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "empresa_id"}},
		DoUpdates: updates,
	}
	if expectedVersion != nil {
		oc.Where = clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: overrideTable, Name: "version"}, Value: *expectedVersion},
		}}
	}
	return oc
}

func (r *GormAttendanceOverrideRepository) Get(ctx context.Context, key models.Key) (*models.AttendanceOverride, error) {
	var row models.AttendanceOverride
	result := r.db.WithContext(ctx).
		Where("date = ? AND empresa_id = ?", key.Date, key.CompanyID).
		First(&row)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("key", key.String()).Error("Failed to get attendance override")
		return nil, result.Error
	}
	return &row, nil
}

func (r *GormAttendanceOverrideRepository) ListForDate(ctx context.Context, date holidays.Date) ([]models.AttendanceOverride, error) {
	var rows []models.AttendanceOverride

	start := time.Now()
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("empresa_id ASC").
		Find(&rows).Error
	metrics.StoreDurationSeconds.WithLabelValues("list_for_date").Observe(time.Since(start).Seconds())

	if err != nil {
		r.logger.WithError(err).WithField("date", date.String()).Error("Failed to list attendance overrides")
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"date":  date.String(),
		"count": len(rows),
	}).Debug("Retrieved attendance overrides for date")
	return rows, nil
}

func (r *GormAttendanceOverrideRepository) QueryRange(ctx context.Context, q RangeQuery) ([]models.AttendanceOverride, error) {
	tx := r.db.WithContext(ctx).Where("date BETWEEN ? AND ?", q.From, q.To)
	if q.CompanyID != nil {
		tx = tx.Where("empresa_id = ?", *q.CompanyID)
	}
	if q.Status != nil {
		tx = tx.Where("status_operacao = ?", *q.Status)
	}

	var rows []models.AttendanceOverride

	start := time.Now()
	err := tx.Order("date DESC, empresa_id ASC").Find(&rows).Error
	metrics.StoreDurationSeconds.WithLabelValues("query_range").Observe(time.Since(start).Seconds())

	if err != nil {
		r.logger.WithError(err).Error("Failed to query attendance overrides")
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"from":  q.From.String(),
		"to":    q.To.String(),
		"count": len(rows),
	}).Debug("Queried attendance overrides")
	return rows, nil
}

func (r *GormAttendanceOverrideRepository) NextDateWithData(ctx context.Context, from holidays.Date) (*holidays.Date, error) {
	var dates []holidays.Date
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceOverride{}).
		Where("date >= ?", from).
		Order("date ASC").
		Limit(1).
		Pluck("date", &dates).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to find next date with overrides")
		return nil, err
	}

	if len(dates) == 0 {
		return nil, nil
	}
	return &dates[0], nil
}
