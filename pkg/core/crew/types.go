package crew

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// AssignmentStatus is the lifecycle state of a seat assignment
type AssignmentStatus string

const (
	StatusSuggested AssignmentStatus = "suggested"
	StatusConfirmed AssignmentStatus = "confirmed"
	StatusLocked    AssignmentStatus = "locked"
	StatusCancelled AssignmentStatus = "cancelled"
)

// IsValid returns true if the status is one of the known assignment states
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case StatusSuggested, StatusConfirmed, StatusLocked, StatusCancelled:
		return true
	}
	return false
}

// IsProtected returns true if a generation run must never overwrite an assignment in this state
func (s AssignmentStatus) IsProtected() bool {
	return s == StatusLocked || s == StatusConfirmed
}

// Member represents a present crew member as seen by the engine
type Member struct {
	ID          string
	DisplayName string

	// Qualifications holds the codes of the qualifications directly granted to this member.
	// Subsumed qualifications are resolved through the QualificationGraph, never stored here.
	Qualifications mapset.Set[string]

	// MedicalExams are the member's medical examination records (all exam types)
	MedicalExams []MedicalExam

	// Exercises are the member's practical exercise records (all qualifications)
	Exercises []ExerciseRecord
}

// NewMember builds a Member holding the given qualification codes
func NewMember(id, displayName string, qualificationCodes ...string) *Member {
	return &Member{
		ID:             id,
		DisplayName:    displayName,
		Qualifications: mapset.NewThreadUnsafeSet(qualificationCodes...),
	}
}

// MedicalExam is a medical examination with a computed validity end date
type MedicalExam struct {
	ExamTypeCode string
	ExamDate     time.Time
	ValidUntil   time.Time
	Passed       bool
}

// ExerciseRecord is a practical exercise logged against a qualification
type ExerciseRecord struct {
	QualificationCode string
	ExerciseDate      time.Time
}

// Vehicle is a vehicle to be staffed for a duty
type Vehicle struct {
	ID       string
	CallSign string

	// Priority orders vehicles for staffing: lower values are staffed first
	Priority int

	// Seats are the vehicle's positions (any order; the generator sorts by SeatNumber)
	Seats []Seat
}

// Seat is a single position on a vehicle requiring specific capabilities
type Seat struct {
	ID string

	// PositionCode is the generic position type (e.g. "GF", "MA", "ATF") used for fairness counting
	PositionCode string

	// SeatNumber orders seats within a vehicle
	SeatNumber int

	// Required marks a seat that must be staffed; optional seats (e.g. messenger) are still filled if possible
	Required bool

	// RequiresBreathingApparatus gates the seat on a valid breathing-apparatus status
	RequiresBreathingApparatus bool

	// Rules are the qualification rules evaluated uniformly by the scorer
	Rules []SeatRule
}

// QualificationCodes returns every qualification code referenced by the seat's rules
func (s Seat) QualificationCodes() []string {
	var codes []string
	for _, rule := range s.Rules {
		codes = append(codes, rule.Qualifications...)
	}
	return codes
}

// ExistingAssignment is the current state of a seat's assignment before a run
type ExistingAssignment struct {
	SeatID   string
	MemberID string
	Status   AssignmentStatus
}
