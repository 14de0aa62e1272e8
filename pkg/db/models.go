package db

import "time"

// Member statuses
const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
	MemberStatusYouth    = "youth"
	MemberStatusHonorary = "honorary"
	MemberStatusReserve  = "reserve"
)

// Duty statuses
const (
	DutyStatusDraft     = "draft"
	DutyStatusPlanned   = "planned"
	DutyStatusConfirmed = "confirmed"
	DutyStatusCompleted = "completed"
	DutyStatusCancelled = "cancelled"
)

// Qualification represents a qualification catalog record
type Qualification struct {
	Code     string `db:"code"`
	Name     string `db:"name"`
	Category string `db:"category"`
}

// QualificationCover represents a stored covers edge: holders of FromCode satisfy ToCode
type QualificationCover struct {
	FromCode string `db:"from_code"`
	ToCode   string `db:"to_code"`
}

// Member represents a member record
type Member struct {
	ID        string `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Status    string `db:"status"`
	IsActive  bool   `db:"is_active"`
}

// DisplayName returns "First Last"
func (m Member) DisplayName() string {
	return m.FirstName + " " + m.LastName
}

// IsAvailable returns true if the member may be put on a seat
func (m Member) IsAvailable() bool {
	return m.IsActive && m.Status == MemberStatusActive
}

// QualificationGrant represents a qualification held by a member
type QualificationGrant struct {
	MemberID          string     `db:"member_id"`
	QualificationCode string     `db:"qualification_code"`
	AcquiredOn        *time.Time `db:"acquired_on"`
	Notes             string     `db:"notes"`
}

// MedicalExam represents a medical examination record
type MedicalExam struct {
	ID           string     `db:"id"`
	MemberID     string     `db:"member_id"`
	ExamTypeCode string     `db:"exam_type_code"`
	ExamDate     time.Time  `db:"exam_date"`
	ValidUntil   *time.Time `db:"valid_until"`
	Passed       bool       `db:"passed"`
}

// ExerciseRecord represents a practical exercise logged against a qualification
type ExerciseRecord struct {
	ID                string    `db:"id"`
	MemberID          string    `db:"member_id"`
	QualificationCode string    `db:"qualification_code"`
	ExerciseDate      time.Time `db:"exercise_date"`
}

// Vehicle represents a vehicle record
type Vehicle struct {
	ID       string `db:"id"`
	CallSign string `db:"call_sign"`
	Priority int    `db:"priority"`
}

// Seat represents a vehicle position record
type Seat struct {
	ID                         string `db:"id"`
	VehicleID                  string `db:"vehicle_id"`
	PositionCode               string `db:"position_code"`
	SeatNumber                 int    `db:"seat_number"`
	IsRequired                 bool   `db:"is_required"`
	RequiresBreathingApparatus bool   `db:"requires_breathing_apparatus"`
}

// SeatRule represents a qualification rule attached to a seat.
// RuleType is one of "required", "preferred" or "allowed".
type SeatRule struct {
	ID                 string   `db:"id"`
	SeatID             string   `db:"seat_id"`
	RuleType           string   `db:"rule_type"`
	QualificationCodes []string `db:"qualification_codes"`
	AllRequired        bool     `db:"all_required"`
	WarningText        string   `db:"warning_text"`
	Priority           int      `db:"priority"`
}

// Duty represents an event requiring vehicles to be staffed
type Duty struct {
	ID       string    `db:"id"`
	Title    string    `db:"title"`
	DutyType string    `db:"duty_type"`
	DutyDate time.Time `db:"duty_date"`
	Status   string    `db:"status"`
}

// Attendance represents a member's presence flag for a duty
type Attendance struct {
	ID          string     `db:"id"`
	DutyID      string     `db:"duty_id"`
	MemberID    string     `db:"member_id"`
	IsPresent   bool       `db:"is_present"`
	CheckedInAt *time.Time `db:"checked_in_at"`
	CheckedInBy string     `db:"checked_in_by"`
}

// Assignment represents the staffing of one seat for one duty.
// An empty MemberID means the seat is unfilled.
type Assignment struct {
	ID             string     `db:"id"`
	DutyID         string     `db:"duty_id"`
	SeatID         string     `db:"seat_id"`
	MemberID       string     `db:"member_id"`
	Status         string     `db:"status"`
	HasWarning     bool       `db:"has_warning"`
	WarningText    string     `db:"warning_text"`
	OverrideReason string     `db:"override_reason"`
	OverriddenBy   string     `db:"overridden_by"`
	OverriddenAt   *time.Time `db:"overridden_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// AssignmentHistory represents a completed assignment used for fairness scoring
type AssignmentHistory struct {
	ID                 string    `db:"id"`
	DutyID             string    `db:"duty_id"`
	SeatID             string    `db:"seat_id"`
	MemberID           string    `db:"member_id"`
	VehicleID          string    `db:"vehicle_id"`
	PositionCode       string    `db:"position_code"`
	DutyType           string    `db:"duty_type"`
	DutyDate           time.Time `db:"duty_date"`
	Year               int       `db:"year"`
	Month              int       `db:"month"`
	QualificationValid bool      `db:"qualification_valid"`
}

// PositionCount is the number of history rows of a member for a position in a year
type PositionCount struct {
	MemberID     string `db:"member_id"`
	PositionCode string `db:"position_code"`
	Count        int    `db:"count"`
}

// FairnessScore represents a yearly per-member aggregate snapshot of the history
type FairnessScore struct {
	MemberID        string         `db:"member_id"`
	Year            int            `db:"year"`
	TotalDuties     int            `db:"total_duties"`
	TotalByVehicle  map[string]int `db:"total_by_vehicle"`
	TotalByPosition map[string]int `db:"total_by_position"`
	LastDutyDate    *time.Time     `db:"last_duty_date"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// DutySeat is a row of a duty's crew view: the seat, its vehicle and the current assignment if any
type DutySeat struct {
	VehicleID        string `db:"vehicle_id"`
	CallSign         string `db:"call_sign"`
	VehiclePriority  int    `db:"vehicle_priority"`
	SeatID           string `db:"seat_id"`
	PositionCode     string `db:"position_code"`
	SeatNumber       int    `db:"seat_number"`
	MemberID         string `db:"member_id"`
	MemberName       string `db:"member_name"`
	AssignmentStatus string `db:"assignment_status"`
	HasWarning       bool   `db:"has_warning"`
	WarningText      string `db:"warning_text"`
}
