package repository

import (
	"context"
	"fmt"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository/dao"
)

var (
	ErrPointNotFound   = dao.ErrPointNotFound
	ErrSummaryNotFound = dao.ErrSummaryNotFound
)

type PointDAO interface {
	Insert(ctx context.Context, event dao.PointEvent) (dao.PointEvent, error)
	FindByID(ctx context.Context, id uint) (dao.PointEvent, error)
	Update(ctx context.Context, id uint, typeID uint, value int, reason string) error
	Delete(ctx context.Context, id uint) error
	FindByStudent(ctx context.Context, studentID uint, limit int) ([]dao.PointEvent, error)
	FindByStudentAsc(ctx context.Context, studentID uint) ([]dao.PointEvent, error)
	FindByCourse(ctx context.Context, courseID uint, limit int) ([]dao.PointEvent, error)
	SumAndCountByStudent(ctx context.Context, studentID uint) (int, int, error)
	CountByType(ctx context.Context, typeID uint) (int64, error)
	FindSummaryByStudent(ctx context.Context, studentID uint) (dao.StudentSummary, error)
	UpsertSummary(ctx context.Context, summary dao.StudentSummary) (dao.StudentSummary, error)
	MaxSummaryTotalByCourse(ctx context.Context, courseID uint) (int, error)
}

type PointRepository struct {
	dao PointDAO
}

func NewPointRepository(dao PointDAO) *PointRepository {
	return &PointRepository{
		dao: dao,
	}
}

func (r *PointRepository) Append(ctx context.Context, event domain.PointEvent) (domain.PointEvent, error) {
	created, err := r.dao.Insert(ctx, dao.PointEvent{
		StudentID:           event.StudentID,
		IssuedByUserID:      event.IssuedByUserID,
		ParticipationTypeID: event.ParticipationTypeID,
		Value:               event.Value,
		Reason:              event.Reason,
	})
	if err != nil {
		return domain.PointEvent{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *PointRepository) FindByID(ctx context.Context, id uint) (domain.PointEvent, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.PointEvent{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PointRepository) Update(ctx context.Context, id uint, typeID uint, value int, reason string) error {
	if err := r.dao.Update(ctx, id, typeID, value, reason); err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func (r *PointRepository) Remove(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *PointRepository) ListByStudent(ctx context.Context, studentID uint, limit int) ([]domain.PointEvent, error) {
	found, err := r.dao.FindByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStudent -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *PointRepository) ListByStudentOldestFirst(ctx context.Context, studentID uint) ([]domain.PointEvent, error) {
	found, err := r.dao.FindByStudentAsc(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStudentAsc -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *PointRepository) ListByCourse(ctx context.Context, courseID uint, limit int) ([]domain.PointEvent, error) {
	found, err := r.dao.FindByCourse(ctx, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCourse -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *PointRepository) ComputeTotals(ctx context.Context, studentID uint) (int, int, error) {
	total, count, err := r.dao.SumAndCountByStudent(ctx, studentID)
	if err != nil {
		return 0, 0, fmt.Errorf("r.dao.SumAndCountByStudent -> %w", err)
	}

	return total, count, nil
}

func (r *PointRepository) CountByType(ctx context.Context, typeID uint) (int64, error) {
	count, err := r.dao.CountByType(ctx, typeID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountByType -> %w", err)
	}

	return count, nil
}

func (r *PointRepository) FindSummary(ctx context.Context, studentID uint) (domain.StudentSummary, error) {
	found, err := r.dao.FindSummaryByStudent(ctx, studentID)
	if err != nil {
		return domain.StudentSummary{}, fmt.Errorf("r.dao.FindSummaryByStudent -> %w", err)
	}

	return r.summaryDaoToDomain(found), nil
}

func (r *PointRepository) SaveSummary(ctx context.Context, summary domain.StudentSummary) (domain.StudentSummary, error) {
	saved, err := r.dao.UpsertSummary(ctx, dao.StudentSummary{
		StudentID:          summary.StudentID,
		CourseID:           summary.CourseID,
		TotalPoints:        summary.TotalPoints,
		ParticipationCount: summary.ParticipationCount,
		AveragePoints:      summary.AveragePoints,
		RoundedAverage:     summary.RoundedAverage,
	})
	if err != nil {
		return domain.StudentSummary{}, fmt.Errorf("r.dao.UpsertSummary -> %w", err)
	}

	return r.summaryDaoToDomain(saved), nil
}

func (r *PointRepository) MaxTotalInCourse(ctx context.Context, courseID uint) (int, error) {
	max, err := r.dao.MaxSummaryTotalByCourse(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.MaxSummaryTotalByCourse -> %w", err)
	}

	return max, nil
}

func (r *PointRepository) daoToDomain(e dao.PointEvent) domain.PointEvent {
	return domain.PointEvent{
		ID:                  e.ID,
		StudentID:           e.StudentID,
		IssuedByUserID:      e.IssuedByUserID,
		ParticipationTypeID: e.ParticipationTypeID,
		Value:               e.Value,
		Reason:              e.Reason,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func (r *PointRepository) daosToDomain(daoEvents []dao.PointEvent) []domain.PointEvent {
	events := make([]domain.PointEvent, 0, len(daoEvents))
	for _, e := range daoEvents {
		events = append(events, r.daoToDomain(e))
	}

	return events
}

func (r *PointRepository) summaryDaoToDomain(s dao.StudentSummary) domain.StudentSummary {
	return domain.StudentSummary{
		StudentID:          s.StudentID,
		CourseID:           s.CourseID,
		TotalPoints:        s.TotalPoints,
		ParticipationCount: s.ParticipationCount,
		AveragePoints:      s.AveragePoints,
		RoundedAverage:     s.RoundedAverage,
		UpdatedAt:          s.UpdatedAt,
	}
}
