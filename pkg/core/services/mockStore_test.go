package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jakechorley/fire-crew-roster/internal/config"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// mockCrewStore is an in-memory store implementing every service store interface
type mockCrewStore struct {
	duties         map[string]*db.Duty
	dutyVehicles   map[string][]db.Vehicle
	seats          []db.Seat
	rules          []db.SeatRule
	qualifications []db.Qualification
	covers         []db.QualificationCover
	members        []db.Member
	grants         []db.QualificationGrant
	exams          []db.MedicalExam
	exercises      []db.ExerciseRecord
	attendance     []db.Attendance
	assignments    []db.Assignment
	history        []db.AssignmentHistory
	positionCounts []db.PositionCount
	fairnessScores map[int][]db.FairnessScore

	appliedCalls  int
	upsertedCalls int
	insertedCover []db.QualificationCover

	applyErr    error
	completeErr error
	getDutyErr  error

	// beforeApply runs inside ApplyGeneratedAssignments, standing in for a concurrent writer
	beforeApply func(m *mockCrewStore)
}

func (m *mockCrewStore) GetQualifications(ctx context.Context) ([]db.Qualification, error) {
	return m.qualifications, nil
}

func (m *mockCrewStore) GetQualificationCovers(ctx context.Context) ([]db.QualificationCover, error) {
	return m.covers, nil
}

func (m *mockCrewStore) InsertQualificationCovers(ctx context.Context, covers []db.QualificationCover) (int, error) {
	inserted := 0
	for _, c := range covers {
		known := func(code string) bool {
			return slices.ContainsFunc(m.qualifications, func(q db.Qualification) bool { return q.Code == code })
		}
		if !known(c.FromCode) || !known(c.ToCode) || slices.Contains(m.covers, c) {
			continue
		}
		m.covers = append(m.covers, c)
		m.insertedCover = append(m.insertedCover, c)
		inserted++
	}
	return inserted, nil
}

func (m *mockCrewStore) GetAllSeatRules(ctx context.Context) ([]db.SeatRule, error) {
	return m.rules, nil
}

func (m *mockCrewStore) GetDuty(ctx context.Context, dutyID string) (*db.Duty, error) {
	if m.getDutyErr != nil {
		return nil, m.getDutyErr
	}
	duty, ok := m.duties[dutyID]
	if !ok {
		return nil, fmt.Errorf("duty %s: %w", dutyID, db.ErrNotFound)
	}
	copied := *duty
	return &copied, nil
}

func (m *mockCrewStore) GetDutyVehicles(ctx context.Context, dutyID string) ([]db.Vehicle, error) {
	return m.dutyVehicles[dutyID], nil
}

func (m *mockCrewStore) GetSeats(ctx context.Context, vehicleIDs []string) ([]db.Seat, error) {
	var seats []db.Seat
	for _, s := range m.seats {
		if slices.Contains(vehicleIDs, s.VehicleID) {
			seats = append(seats, s)
		}
	}
	return seats, nil
}

func (m *mockCrewStore) GetSeat(ctx context.Context, seatID string) (*db.Seat, error) {
	for _, s := range m.seats {
		if s.ID == seatID {
			copied := s
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("seat %s: %w", seatID, db.ErrNotFound)
}

func (m *mockCrewStore) GetSeatRules(ctx context.Context, seatIDs []string) ([]db.SeatRule, error) {
	var rules []db.SeatRule
	for _, r := range m.rules {
		if slices.Contains(seatIDs, r.SeatID) {
			rules = append(rules, r)
		}
	}
	return rules, nil
}

func (m *mockCrewStore) GetDutySeats(ctx context.Context, dutyID string) ([]db.DutySeat, error) {
	var result []db.DutySeat
	for _, v := range m.dutyVehicles[dutyID] {
		for _, s := range m.seats {
			if s.VehicleID != v.ID {
				continue
			}
			row := db.DutySeat{
				VehicleID:       v.ID,
				CallSign:        v.CallSign,
				VehiclePriority: v.Priority,
				SeatID:          s.ID,
				PositionCode:    s.PositionCode,
				SeatNumber:      s.SeatNumber,
			}
			for _, a := range m.assignments {
				if a.DutyID == dutyID && a.SeatID == s.ID {
					row.MemberID = a.MemberID
					row.AssignmentStatus = a.Status
					row.HasWarning = a.HasWarning
					row.WarningText = a.WarningText
					if member, err := m.GetMember(ctx, a.MemberID); err == nil {
						row.MemberName = member.DisplayName()
					}
				}
			}
			result = append(result, row)
		}
	}
	return result, nil
}

func (m *mockCrewStore) GetMember(ctx context.Context, memberID string) (*db.Member, error) {
	for _, member := range m.members {
		if member.ID == memberID {
			copied := member
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("member %s: %w", memberID, db.ErrNotFound)
}

func (m *mockCrewStore) GetPresentMembers(ctx context.Context, dutyID string) ([]db.Member, error) {
	var present []db.Member
	for _, a := range m.attendance {
		if a.DutyID != dutyID || !a.IsPresent {
			continue
		}
		if member, err := m.GetMember(ctx, a.MemberID); err == nil && member.IsAvailable() {
			present = append(present, *member)
		}
	}
	return present, nil
}

func (m *mockCrewStore) GetQualificationGrants(ctx context.Context, memberIDs []string) ([]db.QualificationGrant, error) {
	var grants []db.QualificationGrant
	for _, g := range m.grants {
		if slices.Contains(memberIDs, g.MemberID) {
			grants = append(grants, g)
		}
	}
	return grants, nil
}

func (m *mockCrewStore) GetMedicalExams(ctx context.Context, memberIDs []string) ([]db.MedicalExam, error) {
	var exams []db.MedicalExam
	for _, e := range m.exams {
		if slices.Contains(memberIDs, e.MemberID) {
			exams = append(exams, e)
		}
	}
	return exams, nil
}

func (m *mockCrewStore) GetExerciseRecords(ctx context.Context, memberIDs []string, since time.Time) ([]db.ExerciseRecord, error) {
	var records []db.ExerciseRecord
	for _, r := range m.exercises {
		if slices.Contains(memberIDs, r.MemberID) && !r.ExerciseDate.Before(since) {
			records = append(records, r)
		}
	}
	return records, nil
}

func (m *mockCrewStore) GetAttendance(ctx context.Context, dutyID string) ([]db.Attendance, error) {
	var records []db.Attendance
	for _, a := range m.attendance {
		if a.DutyID == dutyID {
			records = append(records, a)
		}
	}
	return records, nil
}

func (m *mockCrewStore) UpsertAttendance(ctx context.Context, attendance *db.Attendance) error {
	for i, a := range m.attendance {
		if a.DutyID == attendance.DutyID && a.MemberID == attendance.MemberID {
			m.attendance[i] = *attendance
			m.attendance[i].ID = a.ID
			return nil
		}
	}
	m.attendance = append(m.attendance, *attendance)
	return nil
}

func (m *mockCrewStore) GetAssignments(ctx context.Context, dutyID string) ([]db.Assignment, error) {
	var result []db.Assignment
	for _, a := range m.assignments {
		if a.DutyID == dutyID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockCrewStore) GetAssignment(ctx context.Context, dutyID, seatID string) (*db.Assignment, error) {
	for _, a := range m.assignments {
		if a.DutyID == dutyID && a.SeatID == seatID {
			copied := a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("assignment for seat %s: %w", seatID, db.ErrNotFound)
}

func (m *mockCrewStore) ApplyGeneratedAssignments(ctx context.Context, dutyID string, assignments []db.Assignment) (int, error) {
	m.appliedCalls++
	if m.applyErr != nil {
		return 0, m.applyErr
	}
	if m.beforeApply != nil {
		m.beforeApply(m)
	}

	written := 0
	for _, a := range assignments {
		a.DutyID = dutyID
		idx := slices.IndexFunc(m.assignments, func(existing db.Assignment) bool {
			return existing.DutyID == dutyID && existing.SeatID == a.SeatID
		})
		switch {
		case idx < 0:
			m.assignments = append(m.assignments, a)
		case m.assignments[idx].Status == "locked" || m.assignments[idx].Status == "confirmed":
			continue
		default:
			a.ID = m.assignments[idx].ID
			m.assignments[idx] = a
		}
		written++
	}
	return written, nil
}

func (m *mockCrewStore) UpsertAssignment(ctx context.Context, assignment *db.Assignment) error {
	m.upsertedCalls++
	for i, a := range m.assignments {
		if a.DutyID == assignment.DutyID && a.SeatID == assignment.SeatID {
			m.assignments[i] = *assignment
			return nil
		}
	}
	m.assignments = append(m.assignments, *assignment)
	return nil
}

func (m *mockCrewStore) SetAssignmentStatus(ctx context.Context, dutyID, seatID, status string) error {
	for i, a := range m.assignments {
		if a.DutyID == dutyID && a.SeatID == seatID {
			m.assignments[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("assignment for seat %s: %w", seatID, db.ErrNotFound)
}

func (m *mockCrewStore) CompleteDuty(ctx context.Context, dutyID string, history []db.AssignmentHistory) (int, error) {
	if m.completeErr != nil {
		return 0, m.completeErr
	}
	duty, ok := m.duties[dutyID]
	if !ok {
		return 0, fmt.Errorf("duty %s: %w", dutyID, db.ErrNotFound)
	}

	inserted := 0
	for _, h := range history {
		if slices.ContainsFunc(m.history, func(existing db.AssignmentHistory) bool {
			return existing.DutyID == dutyID && existing.SeatID == h.SeatID
		}) {
			continue
		}
		h.DutyID = dutyID
		m.history = append(m.history, h)
		inserted++
	}
	duty.Status = db.DutyStatusCompleted
	return inserted, nil
}

func (m *mockCrewStore) GetAssignmentHistory(ctx context.Context, year int) ([]db.AssignmentHistory, error) {
	var result []db.AssignmentHistory
	for _, h := range m.history {
		if h.Year == year {
			result = append(result, h)
		}
	}
	return result, nil
}

func (m *mockCrewStore) GetPositionCounts(ctx context.Context, year int) ([]db.PositionCount, error) {
	return m.positionCounts, nil
}

func (m *mockCrewStore) ReplaceFairnessScores(ctx context.Context, year int, scores []db.FairnessScore) error {
	if m.fairnessScores == nil {
		m.fairnessScores = make(map[int][]db.FairnessScore)
	}
	m.fairnessScores[year] = scores
	return nil
}

func (m *mockCrewStore) GetFairnessScores(ctx context.Context, year int) ([]db.FairnessScore, error) {
	return m.fairnessScores[year], nil
}

func (m *mockCrewStore) RunMigrations(ctx context.Context) error { return nil }

func (m *mockCrewStore) Close() error { return nil }

var _ db.Database = (*mockCrewStore)(nil)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T {
	return &v
}

// newStationStore returns a station with two vehicles and four members, all checked in for duty-1
// on Thursday 2025-06-12.
//
//	HLF 20 (priority 1): seat 1 GF, seat 2 AGT (TM + breathing apparatus)
//	TLF 3000 (priority 2): seat 1 TF
//
//	anna GF; ben TM + AGT with valid exam and exercise; carl TM; dora TF
func newStationStore() *mockCrewStore {
	member := func(id, first, last string) db.Member {
		return db.Member{ID: id, FirstName: first, LastName: last, Status: db.MemberStatusActive, IsActive: true}
	}

	return &mockCrewStore{
		duties: map[string]*db.Duty{
			"duty-1": {ID: "duty-1", Title: "Übungsdienst", DutyType: "exercise", DutyDate: day("2025-06-12"), Status: db.DutyStatusPlanned},
		},
		dutyVehicles: map[string][]db.Vehicle{
			"duty-1": {
				{ID: "hlf", CallSign: "HLF 20", Priority: 1},
				{ID: "tlf", CallSign: "TLF 3000", Priority: 2},
			},
		},
		seats: []db.Seat{
			{ID: "hlf-1", VehicleID: "hlf", PositionCode: "GF", SeatNumber: 1, IsRequired: true},
			{ID: "hlf-2", VehicleID: "hlf", PositionCode: "AGT", SeatNumber: 2, IsRequired: true, RequiresBreathingApparatus: true},
			{ID: "tlf-1", VehicleID: "tlf", PositionCode: "TF", SeatNumber: 1, IsRequired: true},
		},
		rules: []db.SeatRule{
			{ID: "r-1", SeatID: "hlf-1", RuleType: "required", QualificationCodes: []string{"GF"}, AllRequired: true},
			{ID: "r-2", SeatID: "hlf-2", RuleType: "required", QualificationCodes: []string{"TM"}, AllRequired: true},
			{ID: "r-3", SeatID: "tlf-1", RuleType: "required", QualificationCodes: []string{"TF"}, AllRequired: true},
		},
		qualifications: []db.Qualification{{Code: "TM"}, {Code: "TF"}, {Code: "GF"}, {Code: "AGT"}},
		covers: []db.QualificationCover{
			{FromCode: "GF", ToCode: "TF"},
			{FromCode: "TF", ToCode: "TM"},
		},
		members: []db.Member{
			member("anna", "Anna", "Adler"),
			member("ben", "Ben", "Berg"),
			member("carl", "Carl", "Christ"),
			member("dora", "Dora", "Dach"),
		},
		grants: []db.QualificationGrant{
			{MemberID: "anna", QualificationCode: "GF"},
			{MemberID: "ben", QualificationCode: "TM"},
			{MemberID: "ben", QualificationCode: "AGT"},
			{MemberID: "carl", QualificationCode: "TM"},
			{MemberID: "dora", QualificationCode: "TF"},
		},
		exams: []db.MedicalExam{
			{ID: "e-1", MemberID: "ben", ExamTypeCode: "G26.3", ExamDate: day("2024-01-10"), ValidUntil: ptr(day("2027-01-10")), Passed: true},
		},
		exercises: []db.ExerciseRecord{
			{ID: "x-1", MemberID: "ben", QualificationCode: "AGT", ExerciseDate: day("2025-03-01")},
			{ID: "x-2", MemberID: "carl", QualificationCode: "AGT", ExerciseDate: day("2023-03-01")},
		},
		attendance: []db.Attendance{
			{ID: "at-1", DutyID: "duty-1", MemberID: "anna", IsPresent: true},
			{ID: "at-2", DutyID: "duty-1", MemberID: "ben", IsPresent: true},
			{ID: "at-3", DutyID: "duty-1", MemberID: "carl", IsPresent: true},
			{ID: "at-4", DutyID: "duty-1", MemberID: "dora", IsPresent: true},
		},
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverSQLite}}
	config.ApplyDefaults(cfg)
	return cfg
}

func assignmentFor(store *mockCrewStore, seatID string) *db.Assignment {
	for _, a := range store.assignments {
		if a.SeatID == seatID {
			copied := a
			return &copied
		}
	}
	return nil
}
