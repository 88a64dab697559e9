package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"crmcore/internal/domain"
)

type ConversionRequestRepository struct {
	db *gorm.DB
}

func NewConversionRequestRepository(db *gorm.DB) *ConversionRequestRepository {
	return &ConversionRequestRepository{db: db}
}

// Create inserts a PENDING request. The partial unique index on
// (lead_id) WHERE decision='PENDING' turns a second open request into
// ErrDuplicateKey.
func (r *ConversionRequestRepository) Create(ctx context.Context, req *domain.ConversionRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *ConversionRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ConversionRequest, error) {
	var req domain.ConversionRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ConversionRequestRepository) GetPendingByLead(ctx context.Context, leadID int64) (*domain.ConversionRequest, error) {
	var req domain.ConversionRequest
	err := r.db.WithContext(ctx).
		Where("lead_id = ? AND decision = ?", leadID, domain.DecisionPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ConversionRequestRepository) Update(ctx context.Context, req *domain.ConversionRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

type RequestFilter struct {
	Decision    *domain.ConversionDecision
	LeadID      *int64
	RequesterID *int64
	Limit       int
	Offset      int
}

// List returns requests FIFO by requested timestamp.
func (r *ConversionRequestRepository) List(ctx context.Context, f RequestFilter) ([]domain.ConversionRequest, error) {
	q := r.db.WithContext(ctx).Model(&domain.ConversionRequest{})
	if f.Decision != nil {
		q = q.Where("decision = ?", *f.Decision)
	}
	if f.LeadID != nil {
		q = q.Where("lead_id = ?", *f.LeadID)
	}
	if f.RequesterID != nil {
		q = q.Where("requester_id = ?", *f.RequesterID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var reqs []domain.ConversionRequest
	err := q.Offset(f.Offset).Order("requested_at ASC, id ASC").Find(&reqs).Error
	return reqs, err
}
