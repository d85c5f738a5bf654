package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

// Create pre-checks the email so sqlite-backed tests surface the same
// sentinel the postgres unique constraint does.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if _, err := r.dao.FindByEmail(ctx, user.Email); err == nil {
		return domain.User{}, ErrUserEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	created, err := r.dao.Insert(ctx, dao.User{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
