package company

import (
	"context"
	"fmt"
	"time"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/validator"
)

var (
	ErrNotFound   = apperror.New(apperror.KindNotFound, "company not found")
	ErrCapability = apperror.New(apperror.KindCapabilityDenied, "capability denied")
	ErrBadTaxID   = apperror.New(apperror.KindInvariantViolation, "tax identifier does not match the jurisdiction's format")
)

type Repository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	Update(ctx context.Context, company *domain.Company) error
	List(ctx context.Context, limit, offset int) ([]domain.Company, error)
}

type GeoReader interface {
	CountryByID(ctx context.Context, id int64) (*domain.Country, error)
}

type Service struct {
	companies Repository
	geo       GeoReader
	clock     func() time.Time
}

func NewService(companies Repository, geo GeoReader) *Service {
	return &Service{companies: companies, geo: geo, clock: time.Now}
}

func (s *Service) Create(ctx context.Context, p domain.Principal, company *domain.Company) (*domain.Company, error) {
	if !p.Can(domain.CapCompanyWrite) {
		return nil, ErrCapability
	}
	if errs := validator.Validate(company); errs != nil {
		return nil, apperror.New(apperror.KindInvariantViolation, fmt.Sprintf("validation failed: %v", errs))
	}
	if err := s.checkTaxID(ctx, company); err != nil {
		return nil, err
	}

	company.ID = 0
	company.CreatedAt = s.clock()
	company.UpdatedAt = company.CreatedAt
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, storeErr(err)
	}
	return company, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if company == nil {
		return nil, ErrNotFound
	}
	return company, nil
}

func (s *Service) Update(ctx context.Context, p domain.Principal, id int64, updated *domain.Company) (*domain.Company, error) {
	if !p.Can(domain.CapCompanyWrite) {
		return nil, ErrCapability
	}

	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if company == nil {
		return nil, ErrNotFound
	}

	company.Name = updated.Name
	company.TaxID = updated.TaxID
	company.TaxIDVerified = updated.TaxIDVerified
	company.AddressLine = updated.AddressLine
	company.CityID = updated.CityID
	company.StateID = updated.StateID
	company.CountryID = updated.CountryID
	company.UpdatedAt = s.clock()

	if errs := validator.Validate(company); errs != nil {
		return nil, apperror.New(apperror.KindInvariantViolation, fmt.Sprintf("validation failed: %v", errs))
	}
	if err := s.checkTaxID(ctx, company); err != nil {
		return nil, err
	}

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, storeErr(err)
	}
	return company, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Company, error) {
	companies, err := s.companies.List(ctx, limit, offset)
	if err != nil {
		return nil, storeErr(err)
	}
	return companies, nil
}

func (s *Service) checkTaxID(ctx context.Context, company *domain.Company) error {
	if company.TaxID == "" {
		return nil
	}
	iso := ""
	if company.CountryID != nil {
		country, err := s.geo.CountryByID(ctx, *company.CountryID)
		if err == nil && country != nil {
			iso = country.ISOCode
		}
	}
	if !ValidTaxID(iso, company.TaxID) {
		return ErrBadTaxID
	}
	return nil
}

func storeErr(err error) error {
	return apperror.Wrap(apperror.KindStoreUnavailable, "store error", err)
}
