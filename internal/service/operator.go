package service

import (
	"context"
	"fmt"
	"strings"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

// OperatorService resolves chat identities and guards actions by role.
type OperatorService struct {
	repo   repository.OperatorRepository
	logger *logrus.Logger
}

func NewOperatorService(repo repository.OperatorRepository, logger *logrus.Logger) *OperatorService {
	return &OperatorService{repo: repo, logger: logger}
}

// Register creates a viewer for the chat, or refreshes the names of an existing one.
func (s *OperatorService) Register(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.Operator, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", models.ErrInvalidInput)
	}

	existing, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Username = username
		existing.FirstName = firstName
		existing.LastName = lastName
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	operator := &models.Operator{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleViewer,
	}
	if err := s.repo.Create(ctx, operator); err != nil {
		return nil, err
	}
	return operator, nil
}

// Get returns the operator for chatID or models.ErrNotFound.
func (s *OperatorService) Get(ctx context.Context, chatID int64) (*models.Operator, error) {
	operator, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, models.ErrNotFound
	}
	return operator, nil
}

// RequireEditor returns the operator if they may write overrides.
func (s *OperatorService) RequireEditor(ctx context.Context, chatID int64) (*models.Operator, error) {
	operator, err := s.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !operator.CanEdit() {
		s.logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"role":    operator.Role,
		}).Warn("Editing denied by role")
		return nil, models.ErrForbidden
	}
	return operator, nil
}

// RequireAdmin returns the operator if they are an admin.
func (s *OperatorService) RequireAdmin(ctx context.Context, chatID int64) (*models.Operator, error) {
	operator, err := s.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !operator.IsAdmin() {
		s.logger.WithField("chat_id", chatID).Warn("Unauthorized access to admin command")
		return nil, models.ErrForbidden
	}
	return operator, nil
}

// SetRole changes targetChatID's role. Only admins may do it, and the
// bootstrap admin keeps its role.
func (s *OperatorService) SetRole(ctx context.Context, adminChatID, targetChatID, protectedChatID int64, role models.Role) error {
	if _, err := s.RequireAdmin(ctx, adminChatID); err != nil {
		return err
	}
	if targetChatID == protectedChatID && protectedChatID != 0 && role != models.RoleAdmin {
		return fmt.Errorf("%w: the configured admin cannot be demoted", models.ErrForbidden)
	}
	return s.repo.UpdateRole(ctx, targetChatID, role)
}

func (s *OperatorService) List(ctx context.Context) ([]*models.Operator, error) {
	return s.repo.GetAll(ctx)
}

// InitializeAdmin makes sure the configured chat exists and is an admin.
func (s *OperatorService) InitializeAdmin(ctx context.Context, adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(ctx, adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.repo.UpdateRole(ctx, adminChatID, models.RoleAdmin)
	}

	return s.repo.Create(ctx, &models.Operator{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Administrador",
		Role:      models.RoleAdmin,
	})
}

// FormatOperators renders the operator list for chat.
func (s *OperatorService) FormatOperators(operators []*models.Operator) string {
	if len(operators) == 0 {
		return "📭 Nenhum operador cadastrado."
	}

	var lines []string
	lines = append(lines, "📋 Operadores:", "")
	for i, o := range operators {
		emoji := "👤"
		switch o.Role {
		case models.RoleAdmin:
			emoji = "👑"
		case models.RoleSupervisor:
			emoji = "🛠"
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s - %s - ID: %d", i+1, emoji, o.Identity(), o.Role, o.ChatID))
	}
	return strings.Join(lines, "\n")
}
