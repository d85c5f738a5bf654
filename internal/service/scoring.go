package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/pkg/grading"
	"github.com/classtrack/participation-api/internal/repository"
)

var (
	ErrPointNotFound   = repository.ErrPointNotFound
	ErrSummaryNotFound = repository.ErrSummaryNotFound
	ErrStudentNotFound = repository.ErrStudentNotFound
	ErrTypeNotFound    = repository.ErrTypeNotFound

	ErrInvalidPointValue = errors.New("point value must be a non-zero integer between -100 and 100")
	ErrReasonTooLong     = errors.New("reason must be at most 500 characters")

	// ErrSummaryStale reports a recompute failure after a successful
	// ledger write. The write is kept; recomputing is safe to retry.
	ErrSummaryStale = errors.New("student summary is stale")
)

type PointRepository interface {
	Append(ctx context.Context, event domain.PointEvent) (domain.PointEvent, error)
	FindByID(ctx context.Context, id uint) (domain.PointEvent, error)
	Update(ctx context.Context, id uint, typeID uint, value int, reason string) error
	Remove(ctx context.Context, id uint) error
	ListByStudent(ctx context.Context, studentID uint, limit int) ([]domain.PointEvent, error)
	ListByStudentOldestFirst(ctx context.Context, studentID uint) ([]domain.PointEvent, error)
	ListByCourse(ctx context.Context, courseID uint, limit int) ([]domain.PointEvent, error)
	ComputeTotals(ctx context.Context, studentID uint) (int, int, error)
	CountByType(ctx context.Context, typeID uint) (int64, error)
	FindSummary(ctx context.Context, studentID uint) (domain.StudentSummary, error)
	SaveSummary(ctx context.Context, summary domain.StudentSummary) (domain.StudentSummary, error)
	MaxTotalInCourse(ctx context.Context, courseID uint) (int, error)
}

type ScoringService struct {
	repo       PointRepository
	courseRepo CourseRepository
	typeRepo   ParticipationTypeRepository
}

func NewScoringService(repo PointRepository, courseRepo CourseRepository, typeRepo ParticipationTypeRepository) *ScoringService {
	return &ScoringService{
		repo:       repo,
		courseRepo: courseRepo,
		typeRepo:   typeRepo,
	}
}

// AssignPoints appends one event to the student's ledger and recomputes
// the denormalized summary. A recompute failure does not roll the
// ledger write back: the event is returned together with an
// ErrSummaryStale error so the caller can retry the recompute.
func (s *ScoringService) AssignPoints(ctx context.Context, studentID, issuerID, typeID uint, value int, reason string) (domain.PointEvent, error) {
	if err := validatePoint(value, reason); err != nil {
		return domain.PointEvent{}, err
	}

	if _, err := s.typeRepo.FindByID(ctx, typeID); err != nil {
		return domain.PointEvent{}, fmt.Errorf("s.typeRepo.FindByID -> %w", err)
	}

	if _, err := s.courseRepo.FindStudentByID(ctx, studentID); err != nil {
		return domain.PointEvent{}, fmt.Errorf("s.courseRepo.FindStudentByID -> %w", err)
	}

	event, err := s.repo.Append(ctx, domain.PointEvent{
		StudentID:           studentID,
		IssuedByUserID:      issuerID,
		ParticipationTypeID: typeID,
		Value:               value,
		Reason:              reason,
	})
	if err != nil {
		return domain.PointEvent{}, fmt.Errorf("s.repo.Append -> %w", err)
	}

	if err := s.RecomputeSummary(ctx, studentID); err != nil {
		zap.L().Error("summary recompute failed after ledger write",
			zap.Uint("student_id", studentID), zap.Error(err))
		return event, fmt.Errorf("%w: %v", ErrSummaryStale, err)
	}

	return event, nil
}

func (s *ScoringService) UpdatePoint(ctx context.Context, id, typeID uint, value int, reason string) (domain.PointEvent, error) {
	if err := validatePoint(value, reason); err != nil {
		return domain.PointEvent{}, err
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.PointEvent{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if _, err = s.typeRepo.FindByID(ctx, typeID); err != nil {
		return domain.PointEvent{}, fmt.Errorf("s.typeRepo.FindByID -> %w", err)
	}

	if err = s.repo.Update(ctx, id, typeID, value, reason); err != nil {
		return domain.PointEvent{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.PointEvent{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.RecomputeSummary(ctx, event.StudentID); err != nil {
		zap.L().Error("summary recompute failed after ledger write",
			zap.Uint("student_id", event.StudentID), zap.Error(err))
		return updated, fmt.Errorf("%w: %v", ErrSummaryStale, err)
	}

	return updated, nil
}

func (s *ScoringService) DeletePoint(ctx context.Context, id uint) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Remove -> %w", err)
	}

	if err = s.RecomputeSummary(ctx, event.StudentID); err != nil {
		zap.L().Error("summary recompute failed after ledger write",
			zap.Uint("student_id", event.StudentID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSummaryStale, err)
	}

	return nil
}

// RecomputeSummary rebuilds the student's summary from the ledger:
// fresh totals, fresh course max, fresh grade. Idempotent, safe to
// call again after a reported failure. Students without a course keep
// whatever summary they had.
func (s *ScoringService) RecomputeSummary(ctx context.Context, studentID uint) error {
	student, err := s.courseRepo.FindStudentByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("s.courseRepo.FindStudentByID -> %w", err)
	}

	if student.CourseID == nil {
		zap.L().Warn("student has no course, skipping summary recompute",
			zap.Uint("student_id", studentID))
		return nil
	}

	total, count, err := s.repo.ComputeTotals(ctx, studentID)
	if err != nil {
		return fmt.Errorf("s.repo.ComputeTotals -> %w", err)
	}

	// The fresh totals must land before the course max is read, so the
	// student's own current total participates in the grading ceiling.
	// Reading first would grade against the student's stale total.
	summary := domain.StudentSummary{
		StudentID:          studentID,
		CourseID:           *student.CourseID,
		TotalPoints:        total,
		ParticipationCount: count,
	}
	if _, err = s.repo.SaveSummary(ctx, summary); err != nil {
		return fmt.Errorf("s.repo.SaveSummary -> %w", err)
	}

	courseMax, err := s.repo.MaxTotalInCourse(ctx, *student.CourseID)
	if err != nil {
		return fmt.Errorf("s.repo.MaxTotalInCourse -> %w", err)
	}

	summary.AveragePoints, summary.RoundedAverage = grading.Normalize(total, courseMax)

	if _, err = s.repo.SaveSummary(ctx, summary); err != nil {
		return fmt.Errorf("s.repo.SaveSummary -> %w", err)
	}

	return nil
}

func (s *ScoringService) GetSummary(ctx context.Context, studentID uint) (domain.StudentSummary, error) {
	summary, err := s.repo.FindSummary(ctx, studentID)
	if err != nil {
		return domain.StudentSummary{}, fmt.Errorf("s.repo.FindSummary -> %w", err)
	}

	return summary, nil
}

func (s *ScoringService) ListPoints(ctx context.Context, studentID uint, limit int) ([]domain.PointEvent, error) {
	if _, err := s.courseRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, fmt.Errorf("s.courseRepo.FindStudentByID -> %w", err)
	}

	events, err := s.repo.ListByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByStudent -> %w", err)
	}

	return events, nil
}

// ListCoursePoints returns the course's recent events across all of
// its students, newest first.
func (s *ScoringService) ListCoursePoints(ctx context.Context, courseID uint, limit int) ([]domain.PointEvent, error) {
	if _, err := s.courseRepo.FindByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("s.courseRepo.FindByID -> %w", err)
	}

	events, err := s.repo.ListByCourse(ctx, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByCourse -> %w", err)
	}

	return events, nil
}

// GetHistory replays the student's ledger oldest to newest with a
// running total. Every step is graded against the course max as it
// stands today, so past grades shift when the scale does. That is the
// documented behavior of this view, not an oversight; a point-in-time
// audit would be a separate feature.
func (s *ScoringService) GetHistory(ctx context.Context, studentID uint) ([]domain.HistoryEntry, error) {
	student, err := s.courseRepo.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("s.courseRepo.FindStudentByID -> %w", err)
	}

	events, err := s.repo.ListByStudentOldestFirst(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByStudentOldestFirst -> %w", err)
	}

	var courseMax int
	if student.CourseID != nil {
		courseMax, err = s.repo.MaxTotalInCourse(ctx, *student.CourseID)
		if err != nil {
			return nil, fmt.Errorf("s.repo.MaxTotalInCourse -> %w", err)
		}
	}

	typeNames := make(map[uint]string)

	history := make([]domain.HistoryEntry, 0, len(events))
	cumulative := 0
	for _, event := range events {
		cumulative += event.Value

		name, ok := typeNames[event.ParticipationTypeID]
		if !ok {
			pt, err := s.typeRepo.FindByID(ctx, event.ParticipationTypeID)
			if err != nil {
				return nil, fmt.Errorf("s.typeRepo.FindByID -> %w", err)
			}
			name = pt.Name
			typeNames[event.ParticipationTypeID] = name
		}

		_, rounded := grading.Normalize(cumulative, courseMax)

		history = append(history, domain.HistoryEntry{
			Date:              event.CreatedAt,
			DayPoints:         event.Value,
			CumulativePoints:  cumulative,
			ParticipationType: name,
			FinalGrade:        rounded,
		})
	}

	return history, nil
}

func validatePoint(value int, reason string) error {
	if value == 0 || value < domain.MinPointValue || value > domain.MaxPointValue {
		return ErrInvalidPointValue
	}
	if len(reason) > domain.MaxReasonLength {
		return ErrReasonTooLong
	}

	return nil
}
