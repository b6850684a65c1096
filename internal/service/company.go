package service

import (
	"context"
	"fmt"
	"strings"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
)

// CompanyService fronts the company registry for the bot's admin commands.
type CompanyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) *CompanyService {
	return &CompanyService{repo: repo}
}

func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	return s.repo.List(ctx)
}

func (s *CompanyService) Add(ctx context.Context, name string) (*models.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 120 {
		return nil, fmt.Errorf("%w: company name must have 1 to 120 characters", models.ErrInvalidInput)
	}

	company := &models.Company{Name: name}
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}
