package lead

import (
	"crmcore/internal/domain"

	"crmcore/internal/pkg/apperror"
)

// Declarative transition table. Anything not listed here is illegal; there
// are no hidden transitions. Rejection of a conversion request reverts the
// lead to QUALIFIED (done by the review queue), and conversion itself is run
// by the coordinator after CONVERSION_APPROVED.
var transitions = map[domain.LeadStatus]map[domain.LeadStatus]domain.Capability{
	domain.LeadNew: {
		domain.LeadContacted:    domain.CapLeadWrite,
		domain.LeadQualified:    domain.CapLeadWrite,
		domain.LeadDisqualified: domain.CapLeadWrite,
	},
	domain.LeadContacted: {
		domain.LeadQualified:    domain.CapLeadWrite,
		domain.LeadDisqualified: domain.CapLeadWrite,
	},
	domain.LeadQualified: {
		domain.LeadContacted:           domain.CapLeadWrite,
		domain.LeadDisqualified:        domain.CapLeadWrite,
		domain.LeadConversionRequested: domain.CapLeadConvertRequest,
	},
	domain.LeadDisqualified: {
		domain.LeadContacted: domain.CapLeadWrite,
		domain.LeadQualified: domain.CapLeadWrite,
	},
	domain.LeadConversionRequested: {
		domain.LeadConversionApproved: domain.CapLeadReview,
		// rejection: back to QUALIFIED, decided by the review queue
		domain.LeadQualified: domain.CapLeadReview,
	},
	domain.LeadConversionApproved: {
		domain.LeadConverted: domain.CapLeadConvert,
	},
	// CONVERTED is terminal and immutable
}

// autoRevertThreshold: a QUALIFIED lead whose score drops below this on an
// edit reverts to CONTACTED. This is the only implicit transition and it
// never fires on a CONVERSION_* state.
const autoRevertThreshold = 40

// editableTargets are the statuses a plain lead edit may set. The
// conversion states carry side effects (a queued request, an opportunity)
// and are only entered through the review queue and the converter.
var editableTargets = map[domain.LeadStatus]bool{
	domain.LeadContacted:    true,
	domain.LeadQualified:    true,
	domain.LeadDisqualified: true,
}

// EditableTarget reports whether a status may be set directly on an edit.
func EditableTarget(to domain.LeadStatus) bool {
	return editableTargets[to]
}

// CanTransition reports whether from -> to is legal and which capability it
// requires.
func CanTransition(from, to domain.LeadStatus) (domain.Capability, bool) {
	cap, ok := transitions[from][to]
	return cap, ok
}

// Transition validates and applies a status change on the lead.
func Transition(l *domain.Lead, to domain.LeadStatus, p domain.Principal) error {
	if l.IsConverted() {
		return ErrImmutable
	}

	cap, ok := CanTransition(l.Status, to)
	if !ok {
		return apperror.New(apperror.KindInvalidTransition,
			"illegal transition "+string(l.Status)+" -> "+string(to))
	}
	if !p.Can(cap) {
		return apperror.New(apperror.KindCapabilityDenied,
			"transition requires "+string(cap))
	}

	l.Status = to
	return nil
}

// ApplyAutoRevert applies the score-drop rule after a recompute.
func ApplyAutoRevert(l *domain.Lead) {
	if l.Status == domain.LeadQualified && l.Score < autoRevertThreshold {
		l.Status = domain.LeadContacted
	}
}
