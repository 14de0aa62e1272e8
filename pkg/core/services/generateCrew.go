package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/internal/config"
	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// GenerateCrewOptions controls a generation run
type GenerateCrewOptions struct {
	DutyID string

	// Vehicles restricts the run to these call signs or vehicle IDs. When empty the configured
	// vehicle selection for the duty date applies, and failing that every duty vehicle.
	Vehicles []string

	// DryRun computes the crew without writing it
	DryRun bool

	// Seed makes tie breaking reproducible
	Seed *uint64
}

// GenerateCrewResult is the outcome of a generation run. Failures are reported in Error, never returned.
type GenerateCrewResult struct {
	DutyID       string
	Success      bool
	FilledCount  int
	WarningCount int

	// ClearedCount is the number of seats emptied because their member moved to an earlier seat
	ClearedCount int

	// WrittenCount is the number of rows the store actually wrote. It is lower than the number of
	// decisions when a seat was locked or confirmed between reading and writing. FilledCount and
	// WarningCount then only count the decisions that were written.
	WrittenCount int

	// UnfilledRequired lists required seats left without a member
	UnfilledRequired []string

	Error  string
	DryRun bool

	Decisions []crew.SeatDecision
	Skipped   []crew.SkippedSeat

	// MemberNames and CallSigns resolve IDs for display
	MemberNames map[string]string
	CallSigns   map[string]string
}

// GenerateCrewStore defines the database operations needed for generating a crew
type GenerateCrewStore interface {
	CatalogReader
	MemberProfileReader
	SeatReader
	GetDuty(ctx context.Context, dutyID string) (*db.Duty, error)
	GetDutyVehicles(ctx context.Context, dutyID string) ([]db.Vehicle, error)
	GetPresentMembers(ctx context.Context, dutyID string) ([]db.Member, error)
	GetAssignments(ctx context.Context, dutyID string) ([]db.Assignment, error)
	GetPositionCounts(ctx context.Context, year int) ([]db.PositionCount, error)
	ApplyGeneratedAssignments(ctx context.Context, dutyID string, assignments []db.Assignment) (int, error)
}

// GenerateCrew proposes members for the duty's seats and writes them as suggested assignments.
// Locked and confirmed seats are kept. Seats without a candidate keep their previous assignment,
// unless that member was moved to an earlier seat, in which case the seat is cleared.
func GenerateCrew(
	ctx context.Context,
	database GenerateCrewStore,
	cfg *config.Config,
	logger *zap.Logger,
	opts GenerateCrewOptions,
) *GenerateCrewResult {
	result := &GenerateCrewResult{DutyID: opts.DutyID, DryRun: opts.DryRun}

	unlock := lockDuty(opts.DutyID)
	defer unlock()

	if err := generateCrew(ctx, database, cfg, logger, opts, result); err != nil {
		result.Success = false
		result.Error = err.Error()
		if errors.Is(err, crew.ErrNoMembersPresent) || errors.Is(err, crew.ErrNoVehiclesSelected) ||
			errors.Is(err, ErrDutyClosed) {
			logger.Warn("Crew generation precondition failed", zap.String("duty_id", opts.DutyID), zap.Error(err))
		} else {
			logger.Error("Crew generation failed", zap.String("duty_id", opts.DutyID), zap.Error(err))
		}
		return result
	}

	result.Success = true
	return result
}

func generateCrew(
	ctx context.Context,
	database GenerateCrewStore,
	cfg *config.Config,
	logger *zap.Logger,
	opts GenerateCrewOptions,
	result *GenerateCrewResult,
) error {
	logger.Debug("Starting generateCrew",
		zap.String("duty_id", opts.DutyID),
		zap.Strings("vehicles", opts.Vehicles),
		zap.Bool("dry_run", opts.DryRun))

	duty, err := database.GetDuty(ctx, opts.DutyID)
	if err != nil {
		return fmt.Errorf("failed to fetch duty: %w", err)
	}
	if err := ensureDutyOpen(duty); err != nil {
		return err
	}

	presentMembers, err := database.GetPresentMembers(ctx, duty.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch present members: %w", err)
	}
	logger.Debug("Found present members", zap.Int("count", len(presentMembers)))
	if len(presentMembers) == 0 {
		return crew.ErrNoMembersPresent
	}

	dutyVehicles, err := database.GetDutyVehicles(ctx, duty.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch duty vehicles: %w", err)
	}
	logger.Debug("Found duty vehicles", zap.Int("count", len(dutyVehicles)))

	selectedIDs, err := selectVehicleIDs(cfg, duty, dutyVehicles, opts.Vehicles, logger)
	if err != nil {
		return err
	}

	graph, err := loadQualificationGraph(ctx, database)
	if err != nil {
		return err
	}
	for _, ignored := range graph.IgnoredCovers() {
		logger.Warn("Ignoring covers edge with unknown qualification",
			zap.String("from", ignored.From),
			zap.String("to", ignored.To))
	}

	policy := cfg.BreathingApparatusPolicy()
	members, err := loadMembers(ctx, database, presentMembers, policy, duty.DutyDate)
	if err != nil {
		return err
	}

	vehicles, err := loadVehicles(ctx, database, dutyVehicles)
	if err != nil {
		return err
	}

	assignments, err := database.GetAssignments(ctx, duty.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch assignments: %w", err)
	}
	existing := make([]crew.ExistingAssignment, len(assignments))
	for i, a := range assignments {
		existing[i] = crew.ExistingAssignment{SeatID: a.SeatID, MemberID: a.MemberID, Status: crew.AssignmentStatus(a.Status)}
	}

	year := duty.DutyDate.Year()
	counts, err := database.GetPositionCounts(ctx, year)
	if err != nil {
		return fmt.Errorf("failed to fetch position counts: %w", err)
	}
	history := crew.PositionCounts{Year: year, Counts: make(map[string]map[string]int)}
	for _, c := range counts {
		if history.Counts[c.MemberID] == nil {
			history.Counts[c.MemberID] = make(map[string]int)
		}
		history.Counts[c.MemberID][c.PositionCode] = c.Count
	}

	var rng *rand.Rand
	if opts.Seed != nil {
		rng = crew.NewRand(*opts.Seed)
	}

	outcome, err := crew.Generate(crew.GenerationConfig{
		Members:            members,
		Vehicles:           vehicles,
		SelectedVehicleIDs: selectedIDs,
		Existing:           existing,
		Graph:              graph,
		BreathingApparatus: policy,
		History:            history,
		AsOf:               duty.DutyDate,
		Rand:               rng,
	})
	if err != nil {
		return err
	}

	result.FilledCount = outcome.FilledCount
	result.WarningCount = outcome.WarningCount
	result.ClearedCount = outcome.ClearedCount
	result.UnfilledRequired = outcome.UnfilledRequired
	result.Decisions = outcome.Decisions
	result.Skipped = outcome.Skipped
	result.MemberNames = make(map[string]string, len(members))
	for _, m := range members {
		result.MemberNames[m.ID] = m.DisplayName
	}
	result.CallSigns = make(map[string]string, len(dutyVehicles))
	for _, v := range dutyVehicles {
		result.CallSigns[v.ID] = v.CallSign
	}

	for _, skipped := range outcome.Skipped {
		logger.Debug("Seat skipped",
			zap.String("vehicle_id", skipped.VehicleID),
			zap.String("seat_id", skipped.SeatID),
			zap.String("reason", string(skipped.Reason)),
			zap.String("detail", skipped.Detail))
	}
	if len(outcome.UnfilledRequired) > 0 {
		logger.Warn("Required seats left without a member",
			zap.String("duty_id", duty.ID),
			zap.Strings("seat_ids", outcome.UnfilledRequired))
	}

	if opts.DryRun {
		logger.Info("Dry run - crew not saved",
			zap.String("duty_id", duty.ID),
			zap.Int("filled", outcome.FilledCount),
			zap.Int("warnings", outcome.WarningCount))
		return nil
	}

	rows := make([]db.Assignment, len(outcome.Decisions))
	for i, d := range outcome.Decisions {
		rows[i] = db.Assignment{
			ID:          uuid.NewString(),
			DutyID:      duty.ID,
			SeatID:      d.SeatID,
			MemberID:    d.MemberID,
			Status:      string(crew.StatusSuggested),
			HasWarning:  d.Warning,
			WarningText: d.WarningText,
		}
	}

	written, err := database.ApplyGeneratedAssignments(ctx, duty.ID, rows)
	if err != nil {
		return fmt.Errorf("failed to save assignments: %w", err)
	}
	result.WrittenCount = written
	if written < len(rows) {
		logger.Warn("Some seats were locked or confirmed during generation and kept",
			zap.String("duty_id", duty.ID),
			zap.Int("planned", len(rows)),
			zap.Int("written", written))

		stored, err := database.GetAssignments(ctx, duty.ID)
		if err != nil {
			return fmt.Errorf("failed to re-read assignments: %w", err)
		}
		countWritten(result, stored)
	}

	logger.Info("Crew generated",
		zap.String("duty_id", duty.ID),
		zap.Int("filled", result.FilledCount),
		zap.Int("warnings", result.WarningCount),
		zap.Int("cleared", result.ClearedCount),
		zap.Int("skipped", len(outcome.Skipped)))

	return nil
}

// countWritten recounts the result's decisions against the stored rows, keeping only the ones the store took
func countWritten(result *GenerateCrewResult, stored []db.Assignment) {
	bySeat := make(map[string]db.Assignment, len(stored))
	for _, a := range stored {
		bySeat[a.SeatID] = a
	}

	result.FilledCount, result.WarningCount, result.ClearedCount = 0, 0, 0
	for _, d := range result.Decisions {
		a, ok := bySeat[d.SeatID]
		if !ok || a.Status != string(crew.StatusSuggested) || a.MemberID != d.MemberID {
			continue
		}
		if d.MemberID == "" {
			result.ClearedCount++
			continue
		}
		result.FilledCount++
		if d.Warning {
			result.WarningCount++
		}
	}
}

// selectVehicleIDs resolves the vehicle subset of a run. Explicit references must all be duty vehicles.
// A configured selection is narrowed to the duty's vehicles and ignored when nothing of it is linked.
func selectVehicleIDs(cfg *config.Config, duty *db.Duty, dutyVehicles []db.Vehicle, refs []string, logger *zap.Logger) ([]string, error) {
	if len(refs) > 0 {
		ids, unknown := resolveVehicleRefs(dutyVehicles, refs)
		if len(unknown) > 0 {
			return nil, fmt.Errorf("vehicles not linked to duty %s: %s", duty.ID, strings.Join(unknown, ", "))
		}
		return ids, nil
	}

	configured, err := cfg.VehiclesFor(duty.DutyDate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vehicle selection: %w", err)
	}
	if len(configured) == 0 {
		return nil, nil
	}

	ids, unknown := resolveVehicleRefs(dutyVehicles, configured)
	if len(unknown) > 0 {
		logger.Debug("Configured vehicles not linked to duty", zap.Strings("vehicles", unknown))
	}
	if len(ids) == 0 {
		logger.Warn("Configured vehicle selection matches no duty vehicle, using all",
			zap.String("duty_id", duty.ID),
			zap.Strings("configured", configured))
		return nil, nil
	}

	logger.Debug("Using configured vehicle selection", zap.Strings("vehicle_ids", ids))
	return ids, nil
}
