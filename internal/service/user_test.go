package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository"
	"github.com/classtrack/participation-api/internal/repository/dao"
	"github.com/classtrack/participation-api/internal/service"
)

func TestRegisterUser(t *testing.T) {
	db := newTestDB(t)
	users := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	ctx := context.Background()

	created, err := users.RegisterUser(ctx, domain.User{
		Email: "prof@example.org",
		Name:  "Mme Dupont",
		Role:  "teacher",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	found, err := users.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "prof@example.org", found.Email)

	_, err = users.RegisterUser(ctx, domain.User{
		Email: "prof@example.org",
		Name:  "Someone Else",
		Role:  "teacher",
	})
	assert.ErrorIs(t, err, service.ErrUserEmailExists)

	_, err = users.GetUser(ctx, 424242)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
