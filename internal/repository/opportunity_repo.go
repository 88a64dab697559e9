package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"crmcore/internal/domain"
)

type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := r.db.WithContext(ctx).First(&opp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

func (r *OpportunityRepository) GetByLeadID(ctx context.Context, leadID int64) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).First(&opp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

func (r *OpportunityRepository) Update(ctx context.Context, opp *domain.Opportunity) error {
	return r.db.WithContext(ctx).Save(opp).Error
}

type OpportunityFilter struct {
	Status    *domain.OpportunityStatus
	Stage     *domain.Stage
	CompanyID *int64
	Limit     int
	Offset    int
}

func (r *OpportunityRepository) List(ctx context.Context, f OpportunityFilter) ([]domain.Opportunity, error) {
	q := r.db.WithContext(ctx).Model(&domain.Opportunity{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Stage != nil {
		q = q.Where("stage = ?", *f.Stage)
	}
	if f.CompanyID != nil {
		q = q.Where("company_id = ?", *f.CompanyID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var opps []domain.Opportunity
	err := q.Offset(f.Offset).Order("id ASC").Find(&opps).Error
	return opps, err
}
