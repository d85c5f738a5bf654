package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrPointNotFound   = errors.New("point event not found")
	ErrSummaryNotFound = errors.New("student summary not found")
)

type PointEvent struct {
	ID uint `gorm:"primaryKey"`

	StudentID           uint    `gorm:"index;not null"`
	Student             Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	IssuedByUserID      uint    `gorm:"not null"`
	ParticipationTypeID uint    `gorm:"index;not null"`
	Value               int     `gorm:"not null"`
	Reason              string  `gorm:"size:500"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (PointEvent) TableName() string {
	return "point_events"
}

// StudentSummary is the denormalized grade projection. Rows are only
// ever written by a full recompute from point_events.
type StudentSummary struct {
	ID uint `gorm:"primaryKey"`

	StudentID          uint    `gorm:"uniqueIndex;not null"`
	Student            Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	CourseID           uint    `gorm:"index;not null"`
	TotalPoints        int     `gorm:"not null"`
	ParticipationCount int     `gorm:"not null"`
	AveragePoints      float64 `gorm:"not null"`
	RoundedAverage     int     `gorm:"not null"`

	UpdatedAt time.Time `gorm:"not null"`
}

type PointDAO struct {
	db *gorm.DB
}

func NewPointDAO(db *gorm.DB) *PointDAO {
	return &PointDAO{
		db: db,
	}
}

func (d *PointDAO) Insert(ctx context.Context, event PointEvent) (PointEvent, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return PointEvent{}, result.Error
	}

	return event, nil
}

func (d *PointDAO) FindByID(ctx context.Context, id uint) (PointEvent, error) {
	var event PointEvent

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return PointEvent{}, ErrPointNotFound
		}

		return PointEvent{}, result.Error
	}

	return event, nil
}

func (d *PointDAO) Update(ctx context.Context, id uint, typeID uint, value int, reason string) error {
	result := d.db.WithContext(ctx).Model(&PointEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"participation_type_id": typeID,
		"value":                 value,
		"reason":                reason,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPointNotFound
	}

	return nil
}

func (d *PointDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&PointEvent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPointNotFound
	}

	return nil
}

// FindByStudent returns the student's events newest first. A limit of
// zero or less means no limit.
func (d *PointDAO) FindByStudent(ctx context.Context, studentID uint, limit int) ([]PointEvent, error) {
	var events []PointEvent

	query := d.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	result := query.Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// FindByStudentAsc returns the student's events oldest first, the
// order the history replay consumes them in.
func (d *PointDAO) FindByStudentAsc(ctx context.Context, studentID uint) ([]PointEvent, error) {
	var events []PointEvent

	result := d.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *PointDAO) FindByCourse(ctx context.Context, courseID uint, limit int) ([]PointEvent, error) {
	var events []PointEvent

	query := d.db.WithContext(ctx).
		Joins("JOIN students ON students.id = point_events.student_id").
		Where("students.course_id = ?", courseID).
		Order("point_events.created_at DESC").
		Order("point_events.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	result := query.Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// SumAndCountByStudent aggregates the ledger fresh on every call.
func (d *PointDAO) SumAndCountByStudent(ctx context.Context, studentID uint) (int, int, error) {
	var totals struct {
		TotalPoints        int
		ParticipationCount int
	}

	result := d.db.WithContext(ctx).Model(&PointEvent{}).
		Select("COALESCE(SUM(value), 0) AS total_points, COUNT(*) AS participation_count").
		Where("student_id = ?", studentID).
		Scan(&totals)
	if result.Error != nil {
		return 0, 0, result.Error
	}

	return totals.TotalPoints, totals.ParticipationCount, nil
}

func (d *PointDAO) CountByType(ctx context.Context, typeID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&PointEvent{}).
		Where("participation_type_id = ?", typeID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *PointDAO) FindSummaryByStudent(ctx context.Context, studentID uint) (StudentSummary, error) {
	var summary StudentSummary

	result := d.db.WithContext(ctx).First(&summary, "student_id = ?", studentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StudentSummary{}, ErrSummaryNotFound
		}

		return StudentSummary{}, result.Error
	}

	return summary, nil
}

// UpsertSummary replaces the student's summary row, creating it on the
// first point ever issued.
func (d *PointDAO) UpsertSummary(ctx context.Context, summary StudentSummary) (StudentSummary, error) {
	var existing StudentSummary

	result := d.db.WithContext(ctx).First(&existing, "student_id = ?", summary.StudentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := d.db.WithContext(ctx).Create(&summary).Error; err != nil {
				return StudentSummary{}, err
			}

			return summary, nil
		}

		return StudentSummary{}, result.Error
	}

	summary.ID = existing.ID
	if err := d.db.WithContext(ctx).Save(&summary).Error; err != nil {
		return StudentSummary{}, err
	}

	return summary, nil
}

// MaxSummaryTotalByCourse returns the highest summary total among the
// course's students, zero when the course has no summaries yet.
func (d *PointDAO) MaxSummaryTotalByCourse(ctx context.Context, courseID uint) (int, error) {
	var max int

	result := d.db.WithContext(ctx).Model(&StudentSummary{}).
		Select("COALESCE(MAX(total_points), 0)").
		Where("course_id = ?", courseID).
		Scan(&max)
	if result.Error != nil {
		return 0, result.Error
	}

	return max, nil
}
