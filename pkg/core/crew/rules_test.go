package crew

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEvaluator() SeatEvaluator {
	return SeatEvaluator{
		Graph:              NewQualificationGraph(DefaultQualificationCodes, DefaultCovers),
		BreathingApparatus: DefaultBreathingApparatusPolicy(),
		AsOf:               date(2026, 6, 1),
	}
}

func TestEvaluate_RequiredAllOf(t *testing.T) {
	ev := defaultEvaluator()
	seat := Seat{ID: "s1", PositionCode: "MA", Rules: []SeatRule{RequiredRule("MA", "TM")}}

	full := ev.Evaluate(NewMember("m1", "", "MA", "GF"), seat)
	assert.True(t, full.Qualified())
	assert.Empty(t, full.WarningText())

	partial := ev.Evaluate(NewMember("m2", "", "TM"), seat)
	assert.False(t, partial.Qualified())
	assert.Equal(t, TierUnqualified, partial.Tier)
	assert.Equal(t, "missing qualification: MA", partial.WarningText())

	none := ev.Evaluate(NewMember("m3", ""), seat)
	assert.Equal(t, "missing qualification: MA; missing qualification: TM", none.WarningText())
}

func TestEvaluate_RequiredAnyOf(t *testing.T) {
	ev := defaultEvaluator()
	seat := Seat{ID: "s1", Rules: []SeatRule{{Kind: RuleRequired, Qualifications: []string{"MA", "MZF-FA"}}}}

	assert.True(t, ev.Evaluate(NewMember("m1", "", "MZF-FA"), seat).Qualified())

	eval := ev.Evaluate(NewMember("m2", "", "GF"), seat)
	assert.False(t, eval.Qualified())
	assert.Equal(t, "missing one of: MA, MZF-FA", eval.WarningText())
}

func TestEvaluate_CustomWarningText(t *testing.T) {
	ev := defaultEvaluator()
	rule := RequiredRule("GF")
	rule.WarningText = "needs a group leader"
	seat := Seat{ID: "s1", Rules: []SeatRule{rule}}

	eval := ev.Evaluate(NewMember("m1", "", "TM"), seat)
	assert.Equal(t, "needs a group leader", eval.WarningText())
}

func TestEvaluate_PreferenceBonus(t *testing.T) {
	ev := defaultEvaluator()
	seat := Seat{ID: "s1", Rules: []SeatRule{
		RequiredRule("TM"),
		PreferredRule("MA", "ABC1"),
		PreferredRule("ABC1"),
	}}

	eval := ev.Evaluate(NewMember("m1", "", "TM", "MA", "ABC2"), seat)
	assert.True(t, eval.Qualified())
	// ABC2 covers ABC1; a code named by two preferred rules counts once
	assert.Equal(t, 2, eval.PreferenceBonus)

	// Preferred qualifications still count for unqualified candidates
	eval = ev.Evaluate(NewMember("m2", "", "MA"), seat)
	assert.False(t, eval.Qualified())
	assert.Equal(t, 1, eval.PreferenceBonus)
}

func TestEvaluate_AllowedWithWarning(t *testing.T) {
	ev := defaultEvaluator()
	seat := Seat{ID: "s1", Rules: []SeatRule{
		RequiredRule("GF"),
		AllowedRule("TF may lead when no GF is present", "TF"),
	}}

	allowed := ev.Evaluate(NewMember("m1", "", "TF"), seat)
	assert.Equal(t, TierAllowed, allowed.Tier)
	assert.False(t, allowed.Qualified())
	assert.Equal(t, "TF may lead when no GF is present; missing qualification: GF", allowed.WarningText())

	unqualified := ev.Evaluate(NewMember("m2", "", "TM"), seat)
	assert.Equal(t, TierUnqualified, unqualified.Tier)

	qualified := ev.Evaluate(NewMember("m3", "", "ZF"), seat)
	assert.Equal(t, TierQualified, qualified.Tier)
}

func TestEvaluate_BreathingApparatusGate(t *testing.T) {
	ev := defaultEvaluator()
	seat := Seat{ID: "s1", RequiresBreathingApparatus: true, Rules: []SeatRule{RequiredRule("TM")}}

	member := NewMember("m1", "", "TM", "AGT")
	member.MedicalExams = []MedicalExam{{ExamTypeCode: "G26.3", ValidUntil: date(2027, 12, 31), Passed: true}}

	eval := ev.Evaluate(member, seat)
	require.NotNil(t, eval.BreathingApparatus)
	assert.True(t, eval.BreathingApparatus.ExamValid)
	assert.False(t, eval.BreathingApparatus.ExercisesValid)
	assert.Equal(t, TierUnqualified, eval.Tier)
	assert.Contains(t, eval.WarningText(), "breathing apparatus status not valid")

	member.Exercises = []ExerciseRecord{{QualificationCode: "AGT", ExerciseDate: date(2026, 1, 20)}}
	assert.True(t, ev.Evaluate(member, seat).Qualified())
}

func TestEvaluate_AllowedDoesNotBypassBreathingApparatus(t *testing.T) {
	ev := defaultEvaluator()
	seat := Seat{ID: "s1", RequiresBreathingApparatus: true, Rules: []SeatRule{
		RequiredRule("GF"),
		AllowedRule("", "TF"),
	}}

	eval := ev.Evaluate(NewMember("m1", "", "TF"), seat)
	assert.Equal(t, TierUnqualified, eval.Tier)
	assert.Len(t, eval.Warnings, 2)
}

func TestEvaluate_NoRules(t *testing.T) {
	ev := defaultEvaluator()
	eval := ev.Evaluate(NewMember("m1", ""), Seat{ID: "messenger"})
	assert.True(t, eval.Qualified())
	assert.Nil(t, eval.BreathingApparatus)
}
