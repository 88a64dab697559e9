package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"crmcore/internal/domain"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).First(&lead, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateVersioned writes the lead only if the stored version still equals
// expectedVersion. The lead passed in must already carry the incremented
// version. Returns ErrVersionConflict when the row moved underneath us.
func (r *LeadRepository) UpdateVersioned(ctx context.Context, lead *domain.Lead, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND version = ?", lead.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(lead)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

type LeadFilter struct {
	Status    *domain.LeadStatus
	CompanyID *int64
	OwnerID   *int64
	Limit     int
	Offset    int
}

func (r *LeadRepository) List(ctx context.Context, f LeadFilter) ([]domain.Lead, error) {
	q := r.db.WithContext(ctx).Model(&domain.Lead{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CompanyID != nil {
		q = q.Where("company_id = ?", *f.CompanyID)
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var leads []domain.Lead
	err := q.Offset(f.Offset).Order("id ASC").Find(&leads).Error
	return leads, err
}

// ReplaceContacts rewrites the ordered contact set of a lead.
func (r *LeadRepository) ReplaceContacts(ctx context.Context, leadID int64, contactIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", leadID).Delete(&domain.LeadContact{}).Error; err != nil {
			return err
		}
		for i, cid := range contactIDs {
			lc := domain.LeadContact{LeadID: leadID, ContactID: cid, Position: i}
			if err := tx.Create(&lc).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LeadIDsByContact returns the leads whose contact set includes the contact,
// for score recomputes after a contact mutation.
func (r *LeadRepository) LeadIDsByContact(ctx context.Context, contactID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.LeadContact{}).
		Where("contact_id = ?", contactID).
		Pluck("lead_id", &ids).Error
	return ids, err
}

// Contacts returns the lead's contacts in set order.
func (r *LeadRepository) Contacts(ctx context.Context, leadID int64) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := r.db.WithContext(ctx).
		Joins("JOIN lead_contacts ON lead_contacts.contact_id = contacts.id").
		Where("lead_contacts.lead_id = ?", leadID).
		Order("lead_contacts.position ASC").
		Find(&contacts).Error
	return contacts, err
}
