package domain

import "time"

// Value limits for a single point event. Zero is not a valid award.
const (
	MinPointValue   = -100
	MaxPointValue   = 100
	MaxReasonLength = 500
)

type PointEvent struct {
	ID                  uint      `json:"id"`
	StudentID           uint      `json:"student_id"`
	IssuedByUserID      uint      `json:"issued_by_user_id"`
	ParticipationTypeID uint      `json:"participation_type_id"`
	Value               int       `json:"value"`
	Reason              string    `json:"reason,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type ParticipationType struct {
	ID            uint      `json:"id"`
	OwnerUserID   uint      `json:"owner_user_id"`
	Name          string    `json:"name"`
	DefaultPoints int       `json:"default_points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StudentSummary is a derived projection over a student's point events.
// It is always recomputed from the ledger, never patched in place.
type StudentSummary struct {
	StudentID          uint      `json:"student_id"`
	CourseID           uint      `json:"course_id"`
	TotalPoints        int       `json:"total_points"`
	ParticipationCount int       `json:"participation_count"`
	AveragePoints      float64   `json:"average_points"`
	RoundedAverage     int       `json:"rounded_average"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HistoryEntry is one step of a student's chronological replay. The
// running total of each step is graded against the course max as it
// stands today, not as it stood at the event's date.
type HistoryEntry struct {
	Date              time.Time `json:"date"`
	DayPoints         int       `json:"day_points"`
	CumulativePoints  int       `json:"cumulative_points"`
	ParticipationType string    `json:"participation_type"`
	FinalGrade        int       `json:"final_grade"`
}
