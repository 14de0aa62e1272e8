package db

import (
	"context"
	"time"
)

// CatalogStore defines the qualification catalog operations
type CatalogStore interface {
	GetQualifications(ctx context.Context) ([]Qualification, error)
	GetQualificationCovers(ctx context.Context) ([]QualificationCover, error)
	InsertQualificationCovers(ctx context.Context, covers []QualificationCover) (int, error)
	GetAllSeatRules(ctx context.Context) ([]SeatRule, error)
}

// DutyStore defines the duty and vehicle catalog operations
type DutyStore interface {
	GetDuty(ctx context.Context, dutyID string) (*Duty, error)
	GetDutyVehicles(ctx context.Context, dutyID string) ([]Vehicle, error)
	GetSeats(ctx context.Context, vehicleIDs []string) ([]Seat, error)
	GetSeat(ctx context.Context, seatID string) (*Seat, error)
	GetSeatRules(ctx context.Context, seatIDs []string) ([]SeatRule, error)
	GetDutySeats(ctx context.Context, dutyID string) ([]DutySeat, error)
}

// MemberStore defines member and certification lookups
type MemberStore interface {
	GetMember(ctx context.Context, memberID string) (*Member, error)
	GetPresentMembers(ctx context.Context, dutyID string) ([]Member, error)
	GetQualificationGrants(ctx context.Context, memberIDs []string) ([]QualificationGrant, error)
	GetMedicalExams(ctx context.Context, memberIDs []string) ([]MedicalExam, error)
	GetExerciseRecords(ctx context.Context, memberIDs []string, since time.Time) ([]ExerciseRecord, error)
}

// AttendanceStore defines duty attendance operations
type AttendanceStore interface {
	GetAttendance(ctx context.Context, dutyID string) ([]Attendance, error)
	UpsertAttendance(ctx context.Context, attendance *Attendance) error
}

// AssignmentStore defines seat assignment operations
type AssignmentStore interface {
	GetAssignments(ctx context.Context, dutyID string) ([]Assignment, error)
	GetAssignment(ctx context.Context, dutyID, seatID string) (*Assignment, error)
	ApplyGeneratedAssignments(ctx context.Context, dutyID string, assignments []Assignment) (int, error)
	UpsertAssignment(ctx context.Context, assignment *Assignment) error
	SetAssignmentStatus(ctx context.Context, dutyID, seatID, status string) error
}

// HistoryStore defines assignment history and fairness snapshot operations
type HistoryStore interface {
	CompleteDuty(ctx context.Context, dutyID string, history []AssignmentHistory) (int, error)
	GetAssignmentHistory(ctx context.Context, year int) ([]AssignmentHistory, error)
	GetPositionCounts(ctx context.Context, year int) ([]PositionCount, error)
	ReplaceFairnessScores(ctx context.Context, year int, scores []FairnessScore) error
	GetFairnessScores(ctx context.Context, year int) ([]FairnessScore, error)
}

// Database defines the interface for all database operations.
// Both postgres.DB and sqlite.DB implement this interface.
type Database interface {
	CatalogStore
	DutyStore
	MemberStore
	AttendanceStore
	AssignmentStore
	HistoryStore

	RunMigrations(ctx context.Context) error
	Close() error
}
