package lead

import (
	"context"

	"crmcore/internal/domain"
	"crmcore/internal/repository"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	UpdateVersioned(ctx context.Context, lead *domain.Lead, expectedVersion int64) error
	List(ctx context.Context, f repository.LeadFilter) ([]domain.Lead, error)
	ReplaceContacts(ctx context.Context, leadID int64, contactIDs []int64) error
	Contacts(ctx context.Context, leadID int64) ([]domain.Contact, error)
	LeadIDsByContact(ctx context.Context, contactID int64) ([]int64, error)
}

type CompanyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
}

type ContactReader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Contact, error)
}

type OpportunityReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Opportunity, error)
}
