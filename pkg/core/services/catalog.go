package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// UnknownRuleCode is a seat rule referencing a code missing from the catalog
type UnknownRuleCode struct {
	SeatID string
	RuleID string
	Code   string
}

// CatalogReport lists problems in the qualification catalog
type CatalogReport struct {
	Qualifications int
	Covers         int

	// Cycles are covers cycles. Members of a cycle satisfy each other.
	Cycles [][]string

	// IgnoredCovers are stored edges with a code missing from the catalog
	IgnoredCovers []crew.Cover

	// UnknownCodes are rule codes the generator will skip seats for
	UnknownCodes []UnknownRuleCode

	// InvalidRuleTypes are rule IDs with a rule type the engine does not know
	InvalidRuleTypes []string
}

// OK returns true when the catalog has no problems
func (r *CatalogReport) OK() bool {
	return len(r.Cycles) == 0 && len(r.IgnoredCovers) == 0 && len(r.UnknownCodes) == 0 && len(r.InvalidRuleTypes) == 0
}

// CheckCatalogStore defines the database operations needed for checking the catalog
type CheckCatalogStore interface {
	CatalogReader
	GetAllSeatRules(ctx context.Context) ([]db.SeatRule, error)
}

// CheckCatalog reports covers cycles, dangling covers edges and seat rules referencing unknown codes
func CheckCatalog(ctx context.Context, database CheckCatalogStore, logger *zap.Logger) (*CatalogReport, error) {
	qualifications, err := database.GetQualifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch qualifications: %w", err)
	}
	covers, err := database.GetQualificationCovers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch qualification covers: %w", err)
	}

	codes := make([]string, len(qualifications))
	for i, q := range qualifications {
		codes[i] = q.Code
	}
	graph := crew.NewQualificationGraph(codes, toCrewCovers(covers))

	report := &CatalogReport{
		Qualifications: len(qualifications),
		Covers:         len(covers),
		Cycles:         graph.Cycles(),
		IgnoredCovers:  graph.IgnoredCovers(),
	}

	rules, err := database.GetAllSeatRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seat rules: %w", err)
	}
	for _, r := range rules {
		if !crew.RuleKind(r.RuleType).IsValid() {
			report.InvalidRuleTypes = append(report.InvalidRuleTypes, r.ID)
		}
		for _, code := range r.QualificationCodes {
			if !graph.Has(code) {
				report.UnknownCodes = append(report.UnknownCodes, UnknownRuleCode{SeatID: r.SeatID, RuleID: r.ID, Code: code})
			}
		}
	}

	for _, cycle := range report.Cycles {
		logger.Warn("Covers cycle", zap.Strings("codes", cycle))
	}
	for _, u := range report.UnknownCodes {
		logger.Warn("Seat rule references unknown qualification",
			zap.String("seat_id", u.SeatID),
			zap.String("rule_id", u.RuleID),
			zap.String("code", u.Code))
	}
	logger.Info("Catalog checked",
		zap.Int("qualifications", report.Qualifications),
		zap.Int("covers", report.Covers),
		zap.Bool("ok", report.OK()))

	return report, nil
}

// SeedCoversResult lists the default hierarchy edges missing from the stored graph
type SeedCoversResult struct {
	Missing  []crew.Cover
	Inserted int
	DryRun   bool
}

// SeedCoversStore defines the database operations needed for seeding the covers graph
type SeedCoversStore interface {
	GetQualificationCovers(ctx context.Context) ([]db.QualificationCover, error)
	InsertQualificationCovers(ctx context.Context, covers []db.QualificationCover) (int, error)
}

// SeedCovers adds the default hierarchy edges the stored graph lacks. Stored edges are never changed
// and edges whose codes are not in the catalog are not inserted.
func SeedCovers(ctx context.Context, database SeedCoversStore, logger *zap.Logger, dryRun bool) (*SeedCoversResult, error) {
	stored, err := database.GetQualificationCovers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch qualification covers: %w", err)
	}

	missing := crew.MissingCovers(toCrewCovers(stored))
	slices.SortFunc(missing, func(a, b crew.Cover) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	result := &SeedCoversResult{Missing: missing, DryRun: dryRun}
	logger.Debug("Found missing default covers", zap.Int("count", len(missing)))

	if dryRun || len(missing) == 0 {
		return result, nil
	}

	rows := make([]db.QualificationCover, len(missing))
	for i, c := range missing {
		rows[i] = db.QualificationCover{FromCode: c.From, ToCode: c.To}
	}

	result.Inserted, err = database.InsertQualificationCovers(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to insert covers: %w", err)
	}
	if result.Inserted < len(rows) {
		logger.Warn("Some default covers were not inserted because their codes are not in the catalog",
			zap.Int("missing", len(rows)),
			zap.Int("inserted", result.Inserted))
	}

	logger.Info("Covers seeded", zap.Int("inserted", result.Inserted))
	return result, nil
}
