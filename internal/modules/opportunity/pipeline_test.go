package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
)

const today = "2026-03-01"

func completeQualification() map[string]any {
	return map[string]any{
		"qualification_completed":   true,
		"budget_confirmed":          true,
		"decision_maker_identified": true,
	}
}

func TestCatalogShape(t *testing.T) {
	cases := []struct {
		stage       domain.Stage
		probability int
		terminal    bool
	}{
		{domain.StageProspect, 10, false},
		{domain.StageQualification, 25, false},
		{domain.StageProposal, 50, false},
		{domain.StageNegotiation, 75, false},
		{domain.StageWon, 100, true},
		{domain.StageLost, 0, true},
	}
	for _, c := range cases {
		info, ok := Catalog(c.stage)
		assert.True(t, ok, "%s", c.stage)
		assert.Equal(t, c.probability, info.Probability, "%s", c.stage)
		assert.Equal(t, c.terminal, info.Terminal(), "%s", c.stage)
	}

	_, ok := Catalog("L9_Bogus")
	assert.False(t, ok)
}

func TestCheckAdvance_SimpleForward(t *testing.T) {
	// L1 has no exit gate
	err := CheckAdvance(domain.StageProspect, domain.StageQualification, nil, today)
	assert.NoError(t, err)
}

func TestCheckAdvance_GatedForward(t *testing.T) {
	err := CheckAdvance(domain.StageQualification, domain.StageProposal, map[string]any{
		"qualification_completed": true,
	}, today)
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))

	err = CheckAdvance(domain.StageQualification, domain.StageProposal, completeQualification(), today)
	assert.NoError(t, err)
}

func TestCheckAdvance_SkipRequiresEveryGate(t *testing.T) {
	// L1 -> L3 needs the L2 exit gate even though L1 itself is ungated
	err := CheckAdvance(domain.StageProspect, domain.StageProposal, nil, today)
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))

	err = CheckAdvance(domain.StageProspect, domain.StageProposal, completeQualification(), today)
	assert.NoError(t, err)

	// L1 -> L4 additionally needs the proposal gate
	data := completeQualification()
	err = CheckAdvance(domain.StageProspect, domain.StageNegotiation, data, today)
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))

	data["proposal_sent_date"] = "2026-02-20"
	err = CheckAdvance(domain.StageProspect, domain.StageNegotiation, data, today)
	assert.NoError(t, err)
}

func TestCheckAdvance_BackwardIsFree(t *testing.T) {
	err := CheckAdvance(domain.StageNegotiation, domain.StageProspect, nil, today)
	assert.NoError(t, err)

	err = CheckAdvance(domain.StageProposal, domain.StageQualification, nil, today)
	assert.NoError(t, err)
}

func TestCheckAdvance_SameStage(t *testing.T) {
	err := CheckAdvance(domain.StageProposal, domain.StageProposal, nil, today)
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
}

func TestCheckAdvance_TerminalIsFrozen(t *testing.T) {
	err := CheckAdvance(domain.StageWon, domain.StageNegotiation, nil, today)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	err = CheckAdvance(domain.StageLost, domain.StageProspect, nil, today)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCheckAdvance_WonNeedsGatesAndCloseDate(t *testing.T) {
	data := completeQualification()
	data["proposal_sent_date"] = "2026-02-20"
	data["commercials_agreed"] = true

	// no close date
	err := CheckAdvance(domain.StageNegotiation, domain.StageWon, data, today)
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))

	// future close date
	data["close_date"] = "2026-04-01"
	err = CheckAdvance(domain.StageNegotiation, domain.StageWon, data, today)
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))

	data["close_date"] = "2026-03-01"
	err = CheckAdvance(domain.StageNegotiation, domain.StageWon, data, today)
	assert.NoError(t, err)

	// winning straight from L2 still rides through every open gate
	err = CheckAdvance(domain.StageQualification, domain.StageWon, map[string]any{
		"close_date": "2026-03-01",
	}, today)
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
}

func TestCheckAdvance_LostFromAnywhere(t *testing.T) {
	for _, from := range []domain.Stage{
		domain.StageProspect,
		domain.StageQualification,
		domain.StageProposal,
		domain.StageNegotiation,
	} {
		err := CheckAdvance(from, domain.StageLost, nil, today)
		assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err), "%s without reason", from)

		err = CheckAdvance(from, domain.StageLost, map[string]any{"loss_reason": "budget cut"}, today)
		assert.NoError(t, err, "%s with reason", from)
	}
}

func TestCheckAdvance_UnknownTarget(t *testing.T) {
	err := CheckAdvance(domain.StageProspect, "L7_Maybe", nil, today)
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, domain.OpportunityOpen, StatusFor(domain.StageProspect))
	assert.Equal(t, domain.OpportunityOpen, StatusFor(domain.StageNegotiation))
	assert.Equal(t, domain.OpportunityWon, StatusFor(domain.StageWon))
	assert.Equal(t, domain.OpportunityLost, StatusFor(domain.StageLost))
}
