package repository

import (
	"context"
	"fmt"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository/dao"
)

var ErrTypeNotFound = dao.ErrTypeNotFound

type ParticipationTypeDAO interface {
	Insert(ctx context.Context, pt dao.ParticipationType) (dao.ParticipationType, error)
	FindByID(ctx context.Context, id uint) (dao.ParticipationType, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]dao.ParticipationType, error)
	Update(ctx context.Context, pt dao.ParticipationType) (dao.ParticipationType, error)
	Delete(ctx context.Context, id uint) error
}

type ParticipationTypeRepository struct {
	dao ParticipationTypeDAO
}

func NewParticipationTypeRepository(dao ParticipationTypeDAO) *ParticipationTypeRepository {
	return &ParticipationTypeRepository{
		dao: dao,
	}
}

func (r *ParticipationTypeRepository) Create(ctx context.Context, pt domain.ParticipationType) (domain.ParticipationType, error) {
	created, err := r.dao.Insert(ctx, dao.ParticipationType{
		OwnerUserID:   pt.OwnerUserID,
		Name:          pt.Name,
		DefaultPoints: pt.DefaultPoints,
	})
	if err != nil {
		return domain.ParticipationType{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ParticipationTypeRepository) FindByID(ctx context.Context, id uint) (domain.ParticipationType, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.ParticipationType{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipationTypeRepository) ListByOwner(ctx context.Context, ownerID uint) ([]domain.ParticipationType, error) {
	found, err := r.dao.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOwner -> %w", err)
	}

	types := make([]domain.ParticipationType, 0, len(found))
	for _, pt := range found {
		types = append(types, r.daoToDomain(pt))
	}

	return types, nil
}

func (r *ParticipationTypeRepository) Update(ctx context.Context, pt domain.ParticipationType) (domain.ParticipationType, error) {
	updated, err := r.dao.Update(ctx, dao.ParticipationType{
		ID:            pt.ID,
		Name:          pt.Name,
		DefaultPoints: pt.DefaultPoints,
	})
	if err != nil {
		return domain.ParticipationType{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ParticipationTypeRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *ParticipationTypeRepository) daoToDomain(pt dao.ParticipationType) domain.ParticipationType {
	return domain.ParticipationType{
		ID:            pt.ID,
		OwnerUserID:   pt.OwnerUserID,
		Name:          pt.Name,
		DefaultPoints: pt.DefaultPoints,
		CreatedAt:     pt.CreatedAt,
		UpdatedAt:     pt.UpdatedAt,
	}
}
