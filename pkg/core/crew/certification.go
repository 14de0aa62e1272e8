package crew

import (
	"time"
)

const (
	DefaultBreathingApparatusExamType      = "G26.3"
	DefaultBreathingApparatusQualification = "AGT"
	DefaultExerciseWindowDays              = 365
	DefaultMinExercises                    = 1
)

// BreathingApparatusPolicy describes what makes a breathing-apparatus status valid
type BreathingApparatusPolicy struct {
	// ExamTypeCode is the medical exam type that must be passed and unexpired
	ExamTypeCode string

	// QualificationCode is the qualification exercises must be logged against
	QualificationCode string

	// ExerciseWindowDays is the trailing window (ending on the reference date) exercises must fall into
	ExerciseWindowDays int

	// MinExercises is the number of exercises required within the window
	MinExercises int
}

// DefaultBreathingApparatusPolicy returns the G26.3 exam plus one AGT exercise in the last 365 days
func DefaultBreathingApparatusPolicy() BreathingApparatusPolicy {
	return BreathingApparatusPolicy{
		ExamTypeCode:       DefaultBreathingApparatusExamType,
		QualificationCode:  DefaultBreathingApparatusQualification,
		ExerciseWindowDays: DefaultExerciseWindowDays,
		MinExercises:       DefaultMinExercises,
	}
}

// BreathingApparatusStatus is the breakdown of a member's breathing-apparatus checks on a date
type BreathingApparatusStatus struct {
	// ExamValid is true if a passed exam of the policy's type is valid on the reference date
	ExamValid bool

	// ExamValidUntil is the latest validity end date among passed exams of the policy's type
	ExamValidUntil time.Time

	// RecentExercises is the number of exercises inside the window
	RecentExercises int

	// ExercisesValid is true if RecentExercises meets the policy minimum
	ExercisesValid bool
}

// Valid returns true only when both the exam and the exercise conditions hold
func (s BreathingApparatusStatus) Valid() bool {
	return s.ExamValid && s.ExercisesValid
}

// Problem returns a human readable description of what is missing, or "" if the status is valid
func (s BreathingApparatusStatus) Problem() string {
	switch {
	case s.Valid():
		return ""
	case !s.ExamValid && !s.ExercisesValid:
		return "breathing apparatus status not valid (medical exam and exercises missing)"
	case !s.ExamValid:
		return "breathing apparatus status not valid (medical exam missing or expired)"
	default:
		return "breathing apparatus status not valid (no recent exercise)"
	}
}

// Evaluate computes the member's breathing-apparatus status as of the given date.
// Dates are compared at day granularity.
func (p BreathingApparatusPolicy) Evaluate(member *Member, asOf time.Time) BreathingApparatusStatus {
	var status BreathingApparatusStatus
	day := DateOnly(asOf)

	for _, exam := range member.MedicalExams {
		if exam.ExamTypeCode != p.ExamTypeCode || !exam.Passed || exam.ValidUntil.IsZero() {
			continue
		}
		validUntil := DateOnly(exam.ValidUntil)
		if validUntil.After(status.ExamValidUntil) {
			status.ExamValidUntil = validUntil
		}
		if !validUntil.Before(day) {
			status.ExamValid = true
		}
	}

	windowStart := day.AddDate(0, 0, -p.ExerciseWindowDays)
	for _, exercise := range member.Exercises {
		if exercise.QualificationCode != p.QualificationCode {
			continue
		}
		exerciseDay := DateOnly(exercise.ExerciseDate)
		if exerciseDay.Before(windowStart) || exerciseDay.After(day) {
			continue
		}
		status.RecentExercises++
	}

	minExercises := p.MinExercises
	if minExercises < 1 {
		minExercises = 1
	}
	status.ExercisesValid = status.RecentExercises >= minExercises

	return status
}

// HasValidBreathingApparatusStatus returns true if the member passes both the exam and exercise checks
func (p BreathingApparatusPolicy) HasValidBreathingApparatusStatus(member *Member, asOf time.Time) bool {
	return p.Evaluate(member, asOf).Valid()
}

// DateOnly truncates a time to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ExamValidUntil returns the validity end date of an exam taken on examDate with the given validity period
func ExamValidUntil(examDate time.Time, validityMonths int) time.Time {
	return DateOnly(examDate).AddDate(0, validityMonths, 0)
}
