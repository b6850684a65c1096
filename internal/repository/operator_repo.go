package repository

import (
	"context"
	"errors"
	"fmt"

	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OperatorRepository interface {
	Create(ctx context.Context, operator *models.Operator) error
	GetByChatID(ctx context.Context, chatID int64) (*models.Operator, error)
	Update(ctx context.Context, operator *models.Operator) error
	GetAll(ctx context.Context) ([]*models.Operator, error)
	UpdateRole(ctx context.Context, chatID int64, role models.Role) error
}

type GormOperatorRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormOperatorRepository(db *gorm.DB, logger *logrus.Logger) (*GormOperatorRepository, error) {
	// Auto-migrate creates the table on first start
	if err := db.AutoMigrate(&models.Operator{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate operators table")
		return nil, err
	}

	return &GormOperatorRepository{db: db, logger: logger}, nil
}

func (r *GormOperatorRepository) Create(ctx context.Context, operator *models.Operator) error {
	existing, err := r.GetByChatID(ctx, operator.ChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("operator %d already registered", operator.ChatID)
	}

	if err := r.db.WithContext(ctx).Create(operator).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create operator")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"chat_id": operator.ChatID,
		"role":    operator.Role,
	}).Info("Operator registered")
	return nil
}

func (r *GormOperatorRepository) GetByChatID(ctx context.Context, chatID int64) (*models.Operator, error) {
	var operator models.Operator
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&operator)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get operator by chat id")
		return nil, result.Error
	}

	return &operator, nil
}

func (r *GormOperatorRepository) Update(ctx context.Context, operator *models.Operator) error {
	existing, err := r.GetByChatID(ctx, operator.ChatID)
	if err != nil {
		return err
	}
	if existing == nil {
		return models.ErrNotFound
	}

	operator.ID = existing.ID
	return r.db.WithContext(ctx).Save(operator).Error
}

func (r *GormOperatorRepository) GetAll(ctx context.Context) ([]*models.Operator, error) {
	var operators []*models.Operator
	if err := r.db.WithContext(ctx).Order("first_name ASC").Find(&operators).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list operators")
		return nil, err
	}
	return operators, nil
}

func (r *GormOperatorRepository) UpdateRole(ctx context.Context, chatID int64, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.Operator{}).
		Where("chat_id = ?", chatID).
		Update("role", role)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update operator role")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}

	r.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"role":    role,
	}).Info("Operator role updated")
	return nil
}
