package lead

import "crmcore/internal/pkg/apperror"

var (
	ErrLeadNotFound    = apperror.New(apperror.KindNotFound, "lead not found")
	ErrCompanyNotFound = apperror.New(apperror.KindInvariantViolation, "company does not exist")
	ErrContactNotFound = apperror.New(apperror.KindInvariantViolation, "contact does not exist")
	ErrImmutable       = apperror.New(apperror.KindInvariantViolation, "lead is converted and immutable")
	ErrVersionConflict = apperror.New(apperror.KindConflict, "lead was modified concurrently")
	ErrNotApproved     = apperror.New(apperror.KindInvalidTransition, "lead is not approved for conversion")
	ErrCapability      = apperror.New(apperror.KindCapabilityDenied, "capability denied")
)
