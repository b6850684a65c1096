package repository_test

import (
	"testing"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyListOrderedByName(t *testing.T) {
	log, _ := test.NewNullLogger()
	repo, err := repository.NewGormCompanyRepository(newTestDB(t), log)
	require.NoError(t, err)

	for _, name := range []string{"Vivo", "Claro", "Tim"} {
		require.NoError(t, repo.Create(ctx, &models.Company{Name: name}))
	}

	companies, err := repo.List(ctx)
	require.NoError(t, err)

	var names []string
	for _, c := range companies {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Claro", "Tim", "Vivo"}, names)

	got, err := repo.GetByID(ctx, companies[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Claro", got.Name)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.Create(ctx, &models.Company{Name: "Vivo"}), "names are unique")
}

func TestOperatorRoles(t *testing.T) {
	log, _ := test.NewNullLogger()
	repo, err := repository.NewGormOperatorRepository(newTestDB(t), log)
	require.NoError(t, err)

	op := &models.Operator{ChatID: 42, FirstName: "Ana", Username: "ana", Role: models.RoleViewer}
	require.NoError(t, repo.Create(ctx, op))
	assert.Error(t, repo.Create(ctx, &models.Operator{ChatID: 42, FirstName: "Again"}))

	require.NoError(t, repo.UpdateRole(ctx, 42, models.RoleSupervisor))
	got, err := repo.GetByChatID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, got.CanEdit())
	assert.False(t, got.IsAdmin())

	assert.ErrorIs(t, repo.UpdateRole(ctx, 7, models.RoleAdmin), models.ErrNotFound)

	none, err := repo.GetByChatID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, none)
}
