package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crmcore/internal/domain"
)

// ConversionTx is the set of operations the conversion coordinator performs
// inside one transaction.
type ConversionTx interface {
	GetLead(ctx context.Context, id int64) (*domain.Lead, error)
	LeadContacts(ctx context.Context, leadID int64) ([]domain.Contact, error)
	AllocatePotID(ctx context.Context) (string, error)
	CreateOpportunity(ctx context.Context, opp *domain.Opportunity) error
	MarkLeadConverted(ctx context.Context, leadID, expectedVersion, opportunityID int64) error
}

// ConversionStore opens the transaction the coordinator runs in. Nothing is
// persisted unless the callback returns nil.
type ConversionStore interface {
	Transact(ctx context.Context, fn func(tx ConversionTx) error) error
}

type GormConversionStore struct {
	db *gorm.DB
}

func NewConversionStore(db *gorm.DB) *GormConversionStore {
	return &GormConversionStore{db: db}
}

func (s *GormConversionStore) Transact(ctx context.Context, fn func(tx ConversionTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormConversionTx{tx: tx})
	})
}

type gormConversionTx struct {
	tx *gorm.DB
}

func (t *gormConversionTx) GetLead(ctx context.Context, id int64) (*domain.Lead, error) {
	var lead domain.Lead
	err := t.tx.WithContext(ctx).First(&lead, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (t *gormConversionTx) LeadContacts(ctx context.Context, leadID int64) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := t.tx.WithContext(ctx).
		Joins("JOIN lead_contacts ON lead_contacts.contact_id = contacts.id").
		Where("lead_contacts.lead_id = ?", leadID).
		Order("lead_contacts.position ASC").
		Find(&contacts).Error
	return contacts, err
}

// AllocatePotID increments the single counter row under a row lock. The
// increment only survives if the surrounding transaction commits, so a
// rollback burns no pot-id.
func (t *gormConversionTx) AllocatePotID(ctx context.Context) (string, error) {
	q := t.tx.WithContext(ctx)
	// sqlite serializes writers on its own and rejects FOR UPDATE
	if t.tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ctr domain.OpportunityCounter
	err := q.First(&ctr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctr = domain.OpportunityCounter{ID: 1, LastPot: 1000}
		if err := t.tx.WithContext(ctx).Create(&ctr).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	ctr.LastPot++
	if err := t.tx.WithContext(ctx).Save(&ctr).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("POT-%06d", ctr.LastPot), nil
}

func (t *gormConversionTx) CreateOpportunity(ctx context.Context, opp *domain.Opportunity) error {
	err := t.tx.WithContext(ctx).Create(opp).Error
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (t *gormConversionTx) MarkLeadConverted(ctx context.Context, leadID, expectedVersion, opportunityID int64) error {
	res := t.tx.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND version = ?", leadID, expectedVersion).
		Updates(map[string]any{
			"status":            domain.LeadConverted,
			"conversion_status": domain.ConversionApproved,
			"opportunity_ref":   opportunityID,
			"version":           expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
