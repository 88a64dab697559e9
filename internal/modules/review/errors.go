package review

import "crmcore/internal/pkg/apperror"

var (
	ErrAlreadyOpen  = apperror.New(apperror.KindConflict, "a conversion request is already open for this lead")
	ErrNotOpen      = apperror.New(apperror.KindConflict, "no open conversion request for this lead")
	ErrSelfReview   = apperror.New(apperror.KindConflict, "requester cannot review their own request")
	ErrNotRequester = apperror.New(apperror.KindCapabilityDenied, "only the requester may withdraw")
	ErrLeadNotFound = apperror.New(apperror.KindNotFound, "lead not found")
	ErrCapability   = apperror.New(apperror.KindCapabilityDenied, "capability denied")
	ErrBadDecision  = apperror.New(apperror.KindInvariantViolation, "decision must be APPROVED or REJECTED")
)
