package contact

import (
	"context"
	"fmt"
	"time"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/validator"
)

var (
	ErrNotFound        = apperror.New(apperror.KindNotFound, "contact not found")
	ErrCompanyNotFound = apperror.New(apperror.KindInvariantViolation, "company does not exist")
	ErrCapability      = apperror.New(apperror.KindCapabilityDenied, "capability denied")
)

type Repository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id int64) (*domain.Contact, error)
	Update(ctx context.Context, contact *domain.Contact) error
	ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]domain.Contact, error)
}

type CompanyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
}

// Rescorer recomputes lead scores after a contact mutation; the scoring
// engine runs on every contact-set change.
type Rescorer interface {
	RescoreForContact(ctx context.Context, contactID int64) error
}

type Service struct {
	contacts  Repository
	companies CompanyReader
	rescorer  Rescorer
	clock     func() time.Time
}

func NewService(contacts Repository, companies CompanyReader, rescorer Rescorer) *Service {
	return &Service{
		contacts:  contacts,
		companies: companies,
		rescorer:  rescorer,
		clock:     time.Now,
	}
}

func (s *Service) Create(ctx context.Context, p domain.Principal, contact *domain.Contact) (*domain.Contact, error) {
	if !p.Can(domain.CapLeadWrite) {
		return nil, ErrCapability
	}
	if errs := validator.Validate(contact); errs != nil {
		return nil, apperror.New(apperror.KindInvariantViolation, fmt.Sprintf("validation failed: %v", errs))
	}

	company, err := s.companies.GetByID(ctx, contact.CompanyID)
	if err != nil {
		return nil, storeErr(err)
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	contact.ID = 0
	contact.CreatedAt = s.clock()
	contact.UpdatedAt = contact.CreatedAt
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, storeErr(err)
	}
	return contact, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *Service) Update(ctx context.Context, p domain.Principal, id int64, updated *domain.Contact) (*domain.Contact, error) {
	if !p.Can(domain.CapLeadWrite) {
		return nil, ErrCapability
	}

	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if contact == nil {
		return nil, ErrNotFound
	}

	contact.FirstName = updated.FirstName
	contact.LastName = updated.LastName
	contact.Designation = updated.Designation
	contact.Email = updated.Email
	contact.Phone = updated.Phone
	contact.IsDecisionMaker = updated.IsDecisionMaker
	contact.InfluencePct = updated.InfluencePct
	contact.UpdatedAt = s.clock()

	if errs := validator.Validate(contact); errs != nil {
		return nil, apperror.New(apperror.KindInvariantViolation, fmt.Sprintf("validation failed: %v", errs))
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, storeErr(err)
	}

	// contact-set mutation: scores of referencing leads are stale now
	if s.rescorer != nil {
		if err := s.rescorer.RescoreForContact(ctx, contact.ID); err != nil {
			return nil, err
		}
	}

	return contact, nil
}

func (s *Service) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]domain.Contact, error) {
	contacts, err := s.contacts.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, storeErr(err)
	}
	return contacts, nil
}

func storeErr(err error) error {
	return apperror.Wrap(apperror.KindStoreUnavailable, "store error", err)
}
