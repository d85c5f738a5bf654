package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/classtrack/participation-api/internal/domain"
)

var (
	ErrTypeInUse = errors.New("participation type is referenced by point events")
	ErrNotOwner  = errors.New("user does not own this resource")
)

type ParticipationTypeRepository interface {
	Create(ctx context.Context, pt domain.ParticipationType) (domain.ParticipationType, error)
	FindByID(ctx context.Context, id uint) (domain.ParticipationType, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.ParticipationType, error)
	Update(ctx context.Context, pt domain.ParticipationType) (domain.ParticipationType, error)
	Delete(ctx context.Context, id uint) error
}

type ParticipationTypeService struct {
	repo      ParticipationTypeRepository
	pointRepo PointRepository
}

func NewParticipationTypeService(repo ParticipationTypeRepository, pointRepo PointRepository) *ParticipationTypeService {
	return &ParticipationTypeService{
		repo:      repo,
		pointRepo: pointRepo,
	}
}

func (s *ParticipationTypeService) CreateType(ctx context.Context, pt domain.ParticipationType) (domain.ParticipationType, error) {
	if err := validatePoint(pt.DefaultPoints, ""); err != nil {
		return domain.ParticipationType{}, err
	}

	created, err := s.repo.Create(ctx, pt)
	if err != nil {
		return domain.ParticipationType{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ParticipationTypeService) GetType(ctx context.Context, id uint) (domain.ParticipationType, error) {
	pt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.ParticipationType{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return pt, nil
}

func (s *ParticipationTypeService) ListTypes(ctx context.Context, ownerID uint) ([]domain.ParticipationType, error) {
	types, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByOwner -> %w", err)
	}

	return types, nil
}

func (s *ParticipationTypeService) UpdateType(ctx context.Context, pt domain.ParticipationType, actorID uint) (domain.ParticipationType, error) {
	if err := validatePoint(pt.DefaultPoints, ""); err != nil {
		return domain.ParticipationType{}, err
	}

	existing, err := s.repo.FindByID(ctx, pt.ID)
	if err != nil {
		return domain.ParticipationType{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if existing.OwnerUserID != actorID {
		return domain.ParticipationType{}, ErrNotOwner
	}

	updated, err := s.repo.Update(ctx, pt)
	if err != nil {
		return domain.ParticipationType{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteType refuses while any point event still references the type.
func (s *ParticipationTypeService) DeleteType(ctx context.Context, id, actorID uint) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if existing.OwnerUserID != actorID {
		return ErrNotOwner
	}

	usageCount, err := s.pointRepo.CountByType(ctx, id)
	if err != nil {
		return fmt.Errorf("s.pointRepo.CountByType -> %w", err)
	}
	if usageCount > 0 {
		return ErrTypeInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
