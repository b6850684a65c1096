package repository

import (
	"context"
	"errors"

	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CompanyRepository is the read side of the company registry plus the
// registry owner's create, used to seed the table.
type CompanyRepository interface {
	List(ctx context.Context) ([]models.Company, error)
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	Create(ctx context.Context, company *models.Company) error
}

type GormCompanyRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormCompanyRepository(db *gorm.DB, logger *logrus.Logger) (*GormCompanyRepository, error) {
	if err := db.AutoMigrate(&models.Company{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate empresas table")
		return nil, err
	}
	return &GormCompanyRepository{db: db, logger: logger}, nil
}

// List returns every company ordered by name.
func (r *GormCompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&companies).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list companies")
		return nil, err
	}

	r.logger.WithField("count", len(companies)).Debug("Retrieved companies")
	return companies, nil
}

func (r *GormCompanyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	result := r.db.WithContext(ctx).First(&company, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get company by id")
		return nil, result.Error
	}
	return &company, nil
}

func (r *GormCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		r.logger.WithError(err).WithField("name", company.Name).Error("Failed to create company")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":   company.ID,
		"name": company.Name,
	}).Info("Company created")
	return nil
}
