package crew

import (
	"fmt"
	"slices"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// RuleKind tags how a seat rule takes part in candidate evaluation
type RuleKind string

const (
	// RuleRequired must hold for a candidate to be qualified
	RuleRequired RuleKind = "required"

	// RulePreferred adds to the preference bonus for every qualification it names that the candidate satisfies
	RulePreferred RuleKind = "preferred"

	// RuleAllowedWithWarning lets a candidate failing the required rules rank above unqualified candidates,
	// always with a warning
	RuleAllowedWithWarning RuleKind = "allowed"
)

// IsValid returns true for the known rule kinds
func (k RuleKind) IsValid() bool {
	switch k {
	case RuleRequired, RulePreferred, RuleAllowedWithWarning:
		return true
	}
	return false
}

// SeatRule is one qualification rule attached to a seat
type SeatRule struct {
	Kind RuleKind

	// Qualifications are the codes this rule is about
	Qualifications []string

	// AllRequired selects AND (true) or OR (false) over Qualifications
	AllRequired bool

	// WarningText replaces the generated warning when the rule decides the outcome
	WarningText string

	// Priority orders rules of the same kind, lowest first
	Priority int
}

// RequiredRule builds a rule requiring every one of the codes
func RequiredRule(codes ...string) SeatRule {
	return SeatRule{Kind: RuleRequired, Qualifications: codes, AllRequired: true}
}

// PreferredRule builds a rule rewarding each of the codes
func PreferredRule(codes ...string) SeatRule {
	return SeatRule{Kind: RulePreferred, Qualifications: codes}
}

// AllowedRule builds a rule accepting holders of all the codes with the given warning
func AllowedRule(warningText string, codes ...string) SeatRule {
	return SeatRule{Kind: RuleAllowedWithWarning, Qualifications: codes, AllRequired: true, WarningText: warningText}
}

// Tier is the coarse rank of a candidate for a seat. Lower is better.
type Tier int

const (
	TierQualified Tier = iota
	TierAllowed
	TierUnqualified
)

func (t Tier) String() string {
	switch t {
	case TierQualified:
		return "qualified"
	case TierAllowed:
		return "allowed"
	default:
		return "unqualified"
	}
}

// Evaluation is the outcome of checking one member against one seat
type Evaluation struct {
	Tier Tier

	// Warnings lists the unmet requirements, empty when qualified
	Warnings []string

	// PreferenceBonus counts the preferred qualifications the member satisfies
	PreferenceBonus int

	// BreathingApparatus is set when the seat requires breathing apparatus
	BreathingApparatus *BreathingApparatusStatus
}

// Qualified returns true if every required rule and the breathing apparatus gate hold
func (e Evaluation) Qualified() bool {
	return e.Tier == TierQualified
}

// WarningText joins the warnings into a single human readable line
func (e Evaluation) WarningText() string {
	return strings.Join(e.Warnings, "; ")
}

// SeatEvaluator checks members against seat rules on a reference date
type SeatEvaluator struct {
	Graph              *QualificationGraph
	BreathingApparatus BreathingApparatusPolicy
	AsOf               time.Time
}

// Evaluate applies the seat's rules and breathing apparatus gate to the member
func (ev SeatEvaluator) Evaluate(member *Member, seat Seat) Evaluation {
	var eval Evaluation

	rules := slices.Clone(seat.Rules)
	slices.SortStableFunc(rules, func(a, b SeatRule) int { return a.Priority - b.Priority })

	var missing []string
	var allowedBy *SeatRule
	preferred := mapset.NewThreadUnsafeSet[string]()

	for i := range rules {
		rule := rules[i]
		switch rule.Kind {
		case RuleRequired:
			if unmet := ev.unmet(member, rule); len(unmet) > 0 {
				if rule.WarningText != "" {
					missing = append(missing, rule.WarningText)
				} else {
					missing = append(missing, unmet...)
				}
			}
		case RulePreferred:
			for _, code := range rule.Qualifications {
				if ev.satisfies(member, code) {
					preferred.Add(code)
				}
			}
		case RuleAllowedWithWarning:
			if allowedBy == nil && len(ev.unmet(member, rule)) == 0 {
				allowedBy = &rules[i]
			}
		}
	}
	eval.PreferenceBonus = preferred.Cardinality()

	baValid := true
	if seat.RequiresBreathingApparatus {
		status := ev.BreathingApparatus.Evaluate(member, ev.AsOf)
		eval.BreathingApparatus = &status
		baValid = status.Valid()
	}

	switch {
	case len(missing) == 0 && baValid:
		eval.Tier = TierQualified
	case len(missing) > 0 && baValid && allowedBy != nil:
		eval.Tier = TierAllowed
		if allowedBy.WarningText != "" {
			eval.Warnings = append(eval.Warnings, allowedBy.WarningText)
		}
		eval.Warnings = append(eval.Warnings, missing...)
	default:
		eval.Tier = TierUnqualified
		eval.Warnings = append(eval.Warnings, missing...)
		if !baValid {
			eval.Warnings = append(eval.Warnings, eval.BreathingApparatus.Problem())
		}
	}

	return eval
}

// unmet returns the warnings for a rule the member fails, or nil if the rule holds
func (ev SeatEvaluator) unmet(member *Member, rule SeatRule) []string {
	if len(rule.Qualifications) == 0 {
		return nil
	}

	if rule.AllRequired {
		var unmet []string
		for _, code := range rule.Qualifications {
			if !ev.satisfies(member, code) {
				unmet = append(unmet, fmt.Sprintf("missing qualification: %s", code))
			}
		}
		return unmet
	}

	for _, code := range rule.Qualifications {
		if ev.satisfies(member, code) {
			return nil
		}
	}
	return []string{fmt.Sprintf("missing one of: %s", strings.Join(rule.Qualifications, ", "))}
}

func (ev SeatEvaluator) satisfies(member *Member, code string) bool {
	if ev.Graph == nil {
		return member.Qualifications != nil && member.Qualifications.Contains(code)
	}
	return ev.Graph.MemberSatisfies(member, code)
}
