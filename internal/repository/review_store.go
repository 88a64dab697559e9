package repository

import (
	"context"

	"gorm.io/gorm"

	"crmcore/internal/domain"
)

// ReviewTx is the set of operations a review-queue handler performs inside
// one transaction. The request write and the versioned lead write commit or
// roll back together; no partial state survives a lost version race.
type ReviewTx interface {
	GetLead(ctx context.Context, id int64) (*domain.Lead, error)
	UpdateLead(ctx context.Context, lead *domain.Lead, expectedVersion int64) error
	CreateRequest(ctx context.Context, req *domain.ConversionRequest) error
	GetPendingRequest(ctx context.Context, leadID int64) (*domain.ConversionRequest, error)
	UpdateRequest(ctx context.Context, req *domain.ConversionRequest) error
}

// ReviewStore opens the transaction the review queue runs in. Nothing is
// persisted unless the callback returns nil.
type ReviewStore interface {
	Transact(ctx context.Context, fn func(tx ReviewTx) error) error
}

type GormReviewStore struct {
	db *gorm.DB
}

func NewReviewStore(db *gorm.DB) *GormReviewStore {
	return &GormReviewStore{db: db}
}

func (s *GormReviewStore) Transact(ctx context.Context, fn func(tx ReviewTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormReviewTx{
			leads:    NewLeadRepository(tx),
			requests: NewConversionRequestRepository(tx),
		})
	})
}

type gormReviewTx struct {
	leads    *LeadRepository
	requests *ConversionRequestRepository
}

func (t *gormReviewTx) GetLead(ctx context.Context, id int64) (*domain.Lead, error) {
	return t.leads.GetByID(ctx, id)
}

func (t *gormReviewTx) UpdateLead(ctx context.Context, lead *domain.Lead, expectedVersion int64) error {
	return t.leads.UpdateVersioned(ctx, lead, expectedVersion)
}

func (t *gormReviewTx) CreateRequest(ctx context.Context, req *domain.ConversionRequest) error {
	return t.requests.Create(ctx, req)
}

func (t *gormReviewTx) GetPendingRequest(ctx context.Context, leadID int64) (*domain.ConversionRequest, error) {
	return t.requests.GetPendingByLead(ctx, leadID)
}

func (t *gormReviewTx) UpdateRequest(ctx context.Context, req *domain.ConversionRequest) error {
	return t.requests.Update(ctx, req)
}
