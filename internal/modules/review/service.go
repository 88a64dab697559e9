package review

import (
	"context"
	"errors"
	"time"

	"crmcore/internal/domain"
	"crmcore/internal/modules/lead"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/repository"
)

var errLeadMoved = apperror.New(apperror.KindConflict, "lead was modified concurrently")

// Service is the review queue: PENDING conversion requests awaiting a
// reviewer decision, FIFO by requested timestamp. Every mutation runs in a
// single transaction so the request row and the lead can never disagree.
type Service struct {
	store    repository.ReviewStore
	requests RequestReader
	notifier Notifier
	clock    func() time.Time
}

func NewService(store repository.ReviewStore, requests RequestReader, notifier Notifier) *Service {
	return &Service{
		store:    store,
		requests: requests,
		notifier: notifier,
		clock:    time.Now,
	}
}

// Open enqueues a conversion request for a QUALIFIED lead. The partial
// unique index keeps the one-open-request-per-lead invariant under races;
// a lost version race rolls the enqueued request back with the transaction.
func (s *Service) Open(ctx context.Context, p domain.Principal, leadID int64, notes string) (*domain.ConversionRequest, error) {
	var req *domain.ConversionRequest
	err := s.store.Transact(ctx, func(tx repository.ReviewTx) error {
		l, err := tx.GetLead(ctx, leadID)
		if err != nil {
			return storeErr(err)
		}
		if l == nil {
			return ErrLeadNotFound
		}

		if err := lead.Transition(l, domain.LeadConversionRequested, p); err != nil {
			return err
		}

		req = &domain.ConversionRequest{
			LeadID:      leadID,
			RequesterID: p.UserID,
			RequestedAt: s.clock(),
			Notes:       notes,
			Decision:    domain.DecisionPending,
		}
		if err := tx.CreateRequest(ctx, req); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrAlreadyOpen
			}
			return storeErr(err)
		}

		l.ConversionStatus = domain.ConversionPending
		expected := l.Version
		l.Version++
		l.UpdatedAt = s.clock()
		if err := tx.UpdateLead(ctx, l, expected); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return errLeadMoved
			}
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(req)
	return req, nil
}

// Decide closes the pending request for a lead. Approval moves the lead to
// CONVERSION_APPROVED; rejection reverts it to QUALIFIED.
func (s *Service) Decide(ctx context.Context, p domain.Principal, leadID int64, decision domain.ConversionDecision, comment string) (*domain.ConversionRequest, error) {
	if decision != domain.DecisionApproved && decision != domain.DecisionRejected {
		return nil, ErrBadDecision
	}

	var req *domain.ConversionRequest
	err := s.store.Transact(ctx, func(tx repository.ReviewTx) error {
		var err error
		req, err = tx.GetPendingRequest(ctx, leadID)
		if err != nil {
			return storeErr(err)
		}
		if req == nil {
			return ErrNotOpen
		}
		if req.RequesterID == p.UserID {
			return ErrSelfReview
		}

		l, err := tx.GetLead(ctx, leadID)
		if err != nil {
			return storeErr(err)
		}
		if l == nil {
			return ErrLeadNotFound
		}

		target := domain.LeadConversionApproved
		sub := domain.ConversionApproved
		if decision == domain.DecisionRejected {
			target = domain.LeadQualified
			sub = domain.ConversionRejected
		}
		if err := lead.Transition(l, target, p); err != nil {
			return err
		}

		now := s.clock()
		req.Decision = decision
		req.ReviewerID = &p.UserID
		req.DecidedAt = &now
		req.ReviewerComment = comment
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return storeErr(err)
		}

		l.ConversionStatus = sub
		expected := l.Version
		l.Version++
		l.UpdatedAt = now
		if err := tx.UpdateLead(ctx, l, expected); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return errLeadMoved
			}
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(req)
	return req, nil
}

// Withdraw lets the requester cancel a PENDING request. It is recorded as
// rejected-by-requester and the lead reverts to QUALIFIED.
func (s *Service) Withdraw(ctx context.Context, p domain.Principal, leadID int64) (*domain.ConversionRequest, error) {
	var req *domain.ConversionRequest
	err := s.store.Transact(ctx, func(tx repository.ReviewTx) error {
		var err error
		req, err = tx.GetPendingRequest(ctx, leadID)
		if err != nil {
			return storeErr(err)
		}
		if req == nil {
			return ErrNotOpen
		}
		if req.RequesterID != p.UserID {
			return ErrNotRequester
		}

		l, err := tx.GetLead(ctx, leadID)
		if err != nil {
			return storeErr(err)
		}
		if l == nil {
			return ErrLeadNotFound
		}

		if l.Status != domain.LeadConversionRequested {
			return ErrNotOpen
		}

		now := s.clock()
		req.Decision = domain.DecisionRejected
		req.ReviewerID = &p.UserID
		req.DecidedAt = &now
		req.ReviewerComment = "withdrawn by requester"
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return storeErr(err)
		}

		l.Status = domain.LeadQualified
		l.ConversionStatus = domain.ConversionRejected
		expected := l.Version
		l.Version++
		l.UpdatedAt = now
		if err := tx.UpdateLead(ctx, l, expected); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return errLeadMoved
			}
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(req)
	return req, nil
}

// List powers the reviewer dashboard, FIFO. Principals without lead:review
// only see their own requests.
func (s *Service) List(ctx context.Context, p domain.Principal, f repository.RequestFilter) ([]domain.ConversionRequest, error) {
	if !p.Can(domain.CapLeadReview) {
		f.RequesterID = &p.UserID
	}
	reqs, err := s.requests.List(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	return reqs, nil
}

func (s *Service) notify(req *domain.ConversionRequest) {
	if s.notifier != nil {
		s.notifier.QueueChanged(req)
	}
}

func storeErr(err error) error {
	return apperror.Wrap(apperror.KindStoreUnavailable, "store error", err)
}
