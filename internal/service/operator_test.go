package service_test

import (
	"context"
	"sort"
	"testing"

	"attendance-bot/internal/models"
	"attendance-bot/internal/service"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOperators struct {
	byChat map[int64]*models.Operator
}

func newFakeOperators(ops ...*models.Operator) *fakeOperators {
	f := &fakeOperators{byChat: map[int64]*models.Operator{}}
	for _, o := range ops {
		cp := *o
		f.byChat[o.ChatID] = &cp
	}
	return f
}

func (f *fakeOperators) Create(_ context.Context, o *models.Operator) error {
	cp := *o
	f.byChat[o.ChatID] = &cp
	return nil
}

func (f *fakeOperators) GetByChatID(_ context.Context, chatID int64) (*models.Operator, error) {
	o, ok := f.byChat[chatID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOperators) Update(_ context.Context, o *models.Operator) error {
	cp := *o
	f.byChat[o.ChatID] = &cp
	return nil
}

func (f *fakeOperators) GetAll(context.Context) ([]*models.Operator, error) {
	var out []*models.Operator
	for _, o := range f.byChat {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

func (f *fakeOperators) UpdateRole(_ context.Context, chatID int64, role models.Role) error {
	o, ok := f.byChat[chatID]
	if !ok {
		return models.ErrNotFound
	}
	o.Role = role
	return nil
}

func TestOperatorRegister(t *testing.T) {
	log, _ := test.NewNullLogger()
	repo := newFakeOperators()
	svc := service.NewOperatorService(repo, log)

	op, err := svc.Register(ctx, 42, "joao", "João", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, op.Role)

	require.NoError(t, repo.UpdateRole(ctx, 42, models.RoleSupervisor))

	op, err = svc.Register(ctx, 42, "joao_s", "João", "Silva")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupervisor, op.Role, "registering again keeps the role")
	assert.Equal(t, "João Silva (@joao_s)", op.Identity())

	_, err = svc.Register(ctx, 43, "", "  ", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestOperatorRoleGates(t *testing.T) {
	log, _ := test.NewNullLogger()
	svc := service.NewOperatorService(newFakeOperators(
		&models.Operator{ChatID: 1, FirstName: "Admin", Role: models.RoleAdmin},
		&models.Operator{ChatID: 2, FirstName: "Sup", Role: models.RoleSupervisor},
		&models.Operator{ChatID: 3, FirstName: "View", Role: models.RoleViewer},
	), log)

	tests := map[string]struct {
		chatID    int64
		editorErr error
		adminErr  error
	}{
		"admin":      {chatID: 1},
		"supervisor": {chatID: 2, adminErr: models.ErrForbidden},
		"viewer":     {chatID: 3, editorErr: models.ErrForbidden, adminErr: models.ErrForbidden},
		"unknown":    {chatID: 9, editorErr: models.ErrNotFound, adminErr: models.ErrNotFound},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.RequireEditor(ctx, tt.chatID)
			if tt.editorErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.editorErr)
			}

			_, err = svc.RequireAdmin(ctx, tt.chatID)
			if tt.adminErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.adminErr)
			}
		})
	}
}

func TestOperatorSetRole(t *testing.T) {
	log, _ := test.NewNullLogger()
	repo := newFakeOperators(
		&models.Operator{ChatID: 1, FirstName: "Admin", Role: models.RoleAdmin},
		&models.Operator{ChatID: 2, FirstName: "Other admin", Role: models.RoleAdmin},
		&models.Operator{ChatID: 3, FirstName: "View", Role: models.RoleViewer},
	)
	svc := service.NewOperatorService(repo, log)

	require.NoError(t, svc.SetRole(ctx, 1, 3, 1, models.RoleSupervisor))
	assert.Equal(t, models.RoleSupervisor, repo.byChat[3].Role)

	assert.ErrorIs(t, svc.SetRole(ctx, 3, 2, 1, models.RoleViewer), models.ErrForbidden)
	assert.ErrorIs(t, svc.SetRole(ctx, 2, 1, 1, models.RoleViewer), models.ErrForbidden)
	assert.Equal(t, models.RoleAdmin, repo.byChat[1].Role)

	assert.ErrorIs(t, svc.SetRole(ctx, 1, 77, 1, models.RoleViewer), models.ErrNotFound)
}

func TestOperatorInitializeAdmin(t *testing.T) {
	log, _ := test.NewNullLogger()
	repo := newFakeOperators(&models.Operator{ChatID: 5, FirstName: "Maria", Role: models.RoleViewer})
	svc := service.NewOperatorService(repo, log)

	require.NoError(t, svc.InitializeAdmin(ctx, 5))
	assert.Equal(t, models.RoleAdmin, repo.byChat[5].Role)

	require.NoError(t, svc.InitializeAdmin(ctx, 6))
	assert.Equal(t, models.RoleAdmin, repo.byChat[6].Role)

	require.NoError(t, svc.InitializeAdmin(ctx, 0))
	assert.Len(t, repo.byChat, 2)
}

func TestCompanyAdd(t *testing.T) {
	companies := &fakeCompanies{}
	svc := service.NewCompanyService(companies)

	c, err := svc.Add(ctx, "  Oi Telecom ")
	require.NoError(t, err)
	assert.Equal(t, "Oi Telecom", c.Name)
	assert.Equal(t, uint(1), c.ID)

	_, err = svc.Add(ctx, "   ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
