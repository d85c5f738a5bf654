// Package grading converts a student's raw point total into the 0-20
// scale used for report cards. Grading is relative: the denominator is
// the highest total currently held by any student of the same course.
package grading

import "math"

// GradeCeiling is the top of the normalized scale.
const GradeCeiling = 20

// Normalize maps totalPoints onto the 0-20 scale against courseMax,
// the highest summary total in the course at evaluation time.
//
// Only the ceiling is clamped. A negative total produces a negative
// average on purpose: it reads as a penalty indicator, so no floor is
// applied. When no student in the course has a positive total yet,
// any positive total grades as a full 20 and anything else as 0.
func Normalize(totalPoints int, courseMax int) (average float64, rounded int) {
	if courseMax > 0 {
		average = float64(totalPoints) / float64(courseMax) * GradeCeiling
		if average > GradeCeiling {
			average = GradeCeiling
		}
	} else if totalPoints > 0 {
		average = GradeCeiling
	}

	return average, roundHalfUp(average)
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
