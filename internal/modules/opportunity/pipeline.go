package opportunity

import (
	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
)

// StageInfo is one entry of the immutable pipeline catalog.
type StageInfo struct {
	Stage       domain.Stage
	Order       int
	Probability int
	TerminalWon bool
	TerminalLost bool
	// ExitGate checks the stage's exit requirements against the merged
	// stage data map; nil means no gating.
	ExitGate func(data map[string]any) error
}

func (s StageInfo) Terminal() bool { return s.TerminalWon || s.TerminalLost }

var catalog = map[domain.Stage]StageInfo{
	domain.StageProspect: {
		Stage: domain.StageProspect, Order: 1, Probability: 10,
	},
	domain.StageQualification: {
		Stage: domain.StageQualification, Order: 2, Probability: 25,
		ExitGate: func(data map[string]any) error {
			for _, key := range []string{"qualification_completed", "budget_confirmed", "decision_maker_identified"} {
				if !boolField(data, key) {
					return gateErr(domain.StageQualification, key+" required")
				}
			}
			return nil
		},
	},
	domain.StageProposal: {
		Stage: domain.StageProposal, Order: 3, Probability: 50,
		ExitGate: func(data map[string]any) error {
			if !presentField(data, "proposal_sent_date") {
				return gateErr(domain.StageProposal, "proposal_sent_date required")
			}
			return nil
		},
	},
	domain.StageNegotiation: {
		Stage: domain.StageNegotiation, Order: 4, Probability: 75,
		ExitGate: func(data map[string]any) error {
			if !boolField(data, "commercials_agreed") {
				return gateErr(domain.StageNegotiation, "commercials_agreed required")
			}
			return nil
		},
	},
	domain.StageWon: {
		Stage: domain.StageWon, Order: 5, Probability: 100, TerminalWon: true,
	},
	domain.StageLost: {
		Stage: domain.StageLost, Order: 5, Probability: 0, TerminalLost: true,
	},
}

// ordered open stages, for forward-jump gating
var openStages = []domain.Stage{
	domain.StageProspect,
	domain.StageQualification,
	domain.StageProposal,
	domain.StageNegotiation,
}

func Catalog(stage domain.Stage) (StageInfo, bool) {
	info, ok := catalog[stage]
	return info, ok
}

// CheckAdvance validates a stage move. Forward moves require the exit gating
// of the current stage and every skipped stage; backward moves are free (to
// recover from a bad advance); terminal stages are frozen. The terminal
// stages carry entry requirements of their own: a close date for Won, a loss
// reason for Lost.
func CheckAdvance(from, to domain.Stage, data map[string]any, today string) error {
	fromInfo, ok := catalog[from]
	if !ok {
		return apperror.New(apperror.KindInternal, "unknown stage "+string(from))
	}
	toInfo, ok := catalog[to]
	if !ok {
		return apperror.New(apperror.KindInvariantViolation, "unknown stage "+string(to))
	}

	if fromInfo.Terminal() {
		return apperror.New(apperror.KindConflict, "cannot leave terminal stage "+string(from))
	}
	if from == to {
		return apperror.New(apperror.KindInvariantViolation, "already at stage "+string(from))
	}

	// losing is allowed from any open stage; it gates only on the reason
	if toInfo.TerminalLost {
		if !presentField(data, "loss_reason") {
			return gateErr(to, "loss_reason required")
		}
		return nil
	}

	if toInfo.Order > fromInfo.Order || toInfo.TerminalWon {
		for _, s := range openStages {
			info := catalog[s]
			if info.Order < fromInfo.Order || info.Order >= toInfo.Order {
				continue
			}
			if info.ExitGate != nil {
				if err := info.ExitGate(data); err != nil {
					return err
				}
			}
		}
		if toInfo.TerminalWon {
			if err := checkCloseDate(data, today); err != nil {
				return err
			}
		}
		return nil
	}

	// backward move: permitted without gating
	return nil
}

func checkCloseDate(data map[string]any, today string) error {
	v, ok := data["close_date"].(string)
	if !ok || v == "" {
		return gateErr(domain.StageWon, "close_date required")
	}
	if v > today {
		return gateErr(domain.StageWon, "close_date must not be in the future")
	}
	return nil
}

// StatusFor derives the opportunity status from its stage.
func StatusFor(stage domain.Stage) domain.OpportunityStatus {
	info := catalog[stage]
	switch {
	case info.TerminalWon:
		return domain.OpportunityWon
	case info.TerminalLost:
		return domain.OpportunityLost
	default:
		return domain.OpportunityOpen
	}
}

func gateErr(stage domain.Stage, msg string) error {
	return apperror.New(apperror.KindInvariantViolation,
		"stage gating failed at "+string(stage)+": "+msg)
}

func boolField(data map[string]any, key string) bool {
	v, ok := data[key].(bool)
	return ok && v
}

func presentField(data map[string]any, key string) bool {
	v, ok := data[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}
