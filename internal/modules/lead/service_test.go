package lead

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/repository"
)

// Mock repositories
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	args := m.Called(ctx, l)
	if l != nil && l.ID == 0 {
		l.ID = 101 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateVersioned(ctx context.Context, l *domain.Lead, expectedVersion int64) error {
	args := m.Called(ctx, l, expectedVersion)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, f repository.LeadFilter) ([]domain.Lead, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) ReplaceContacts(ctx context.Context, leadID int64, contactIDs []int64) error {
	args := m.Called(ctx, leadID, contactIDs)
	return args.Error(0)
}

func (m *MockLeadRepository) Contacts(ctx context.Context, leadID int64) ([]domain.Contact, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *MockLeadRepository) LeadIDsByContact(ctx context.Context, contactID int64) ([]int64, error) {
	args := m.Called(ctx, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockCompanyReader struct {
	mock.Mock
}

func (m *MockCompanyReader) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

type MockContactReader struct {
	mock.Mock
}

func (m *MockContactReader) GetByIDs(ctx context.Context, ids []int64) ([]domain.Contact, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func newTestService(leads *MockLeadRepository, companies *MockCompanyReader, contacts *MockContactReader) *Service {
	s := NewService(leads, companies, contacts)
	s.clock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func principalFor(id int64, role domain.Role) domain.Principal {
	return domain.NewPrincipal(id, string(role), domain.CapabilitiesFor(role))
}

var salesPrincipal = principalFor(7, domain.RoleSales)

func TestService_Create_TenderRequiresDetails(t *testing.T) {
	s := newTestService(new(MockLeadRepository), new(MockCompanyReader), new(MockContactReader))

	_, err := s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title:       "Airport expansion",
		LeadSubType: "TENDER",
		CompanyID:   1,
	})
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
}

func TestService_Create_NonTenderRejectsTenderBlock(t *testing.T) {
	s := newTestService(new(MockLeadRepository), new(MockCompanyReader), new(MockContactReader))

	_, err := s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title:       "Plain deal",
		LeadSubType: "NON_TENDER",
		CompanyID:   1,
		TenderDetails: &TenderDetailsDTO{
			TenderID: "T-1", Authority: "NIC", BidDueDate: "2099-01-01",
		},
	})
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
}

func TestService_Create_BidDueDateMustBeFuture(t *testing.T) {
	s := newTestService(new(MockLeadRepository), new(MockCompanyReader), new(MockContactReader))

	_, err := s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title:       "Late tender",
		LeadSubType: "TENDER",
		CompanyID:   1,
		TenderDetails: &TenderDetailsDTO{
			TenderID: "T-1", Authority: "NIC", BidDueDate: "2026-02-01",
		},
	})
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
}

func TestService_Create_SubTypeSpellings(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockCompanies := new(MockCompanyReader)
	s := newTestService(mockLeads, mockCompanies, new(MockContactReader))

	mockCompanies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1}, nil)
	mockLeads.On("Create", mock.Anything, mock.Anything).Return(nil)

	// snake_case alone is accepted
	v, err := s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title: "Snake", LeadSubTypeSnake: "NON_TENDER", CompanyID: 1,
	})
	assert.NoError(t, err)
	assert.Equal(t, "NON_TENDER", v.LeadSubType)
	assert.Equal(t, "NON_TENDER", v.LeadSubTypeSnake)

	// disagreement is an error
	_, err = s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title: "Both", LeadSubType: "TENDER", LeadSubTypeSnake: "NON_TENDER", CompanyID: 1,
	})
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))

	// unknown token is an error
	_, err = s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title: "Odd", LeadSubType: "tender", CompanyID: 1,
	})
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
}

func TestService_Create_ScoresAtBirth(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockCompanies := new(MockCompanyReader)
	mockContacts := new(MockContactReader)
	s := newTestService(mockLeads, mockCompanies, mockContacts)

	mockCompanies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1, TaxIDVerified: true}, nil)
	mockContacts.On("GetByIDs", mock.Anything, []int64{5}).Return([]domain.Contact{
		{ID: 5, IsDecisionMaker: true, InfluencePct: 80},
	}, nil)
	mockLeads.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockLeads.On("ReplaceContacts", mock.Anything, mock.Anything, []int64{5}).Return(nil)

	v, err := s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title:           "Metro tender",
		LeadSubType:     "TENDER",
		CompanyID:       1,
		ExpectedRevenue: 5_000_000,
		Priority:        "HIGH",
		ContactIDs:      []int64{5},
		TenderDetails: &TenderDetailsDTO{
			TenderID: "T-77", Authority: "NIC", BidDueDate: "2026-06-01",
		},
	})
	assert.NoError(t, err)
	// 25 decision maker + 15 revenue + 15 tender + 10 verified tax + 10 priority
	assert.Equal(t, 75, v.Score)
	assert.Equal(t, string(domain.LeadNew), v.Status)
	assert.Equal(t, int64(1), v.Version)
	mockLeads.AssertExpectations(t)
}

func TestService_Create_InfluenceSumOverflow(t *testing.T) {
	mockCompanies := new(MockCompanyReader)
	mockContacts := new(MockContactReader)
	s := newTestService(new(MockLeadRepository), mockCompanies, mockContacts)

	mockCompanies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1}, nil)
	mockContacts.On("GetByIDs", mock.Anything, []int64{1, 2}).Return([]domain.Contact{
		{ID: 1, IsDecisionMaker: true, InfluencePct: 60},
		{ID: 2, IsDecisionMaker: true, InfluencePct: 50},
	}, nil)

	_, err := s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title: "Crowded", LeadSubType: "NON_TENDER", CompanyID: 1, ContactIDs: []int64{1, 2},
	})
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
}

func TestService_Create_MissingContact(t *testing.T) {
	mockCompanies := new(MockCompanyReader)
	mockContacts := new(MockContactReader)
	s := newTestService(new(MockLeadRepository), mockCompanies, mockContacts)

	mockCompanies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1}, nil)
	mockContacts.On("GetByIDs", mock.Anything, []int64{1, 99}).Return([]domain.Contact{{ID: 1}}, nil)

	_, err := s.Create(context.Background(), salesPrincipal, &LeadCreate{
		Title: "Ghost contact", LeadSubType: "NON_TENDER", CompanyID: 1, ContactIDs: []int64{1, 99},
	})
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestService_Create_CapabilityDenied(t *testing.T) {
	s := newTestService(new(MockLeadRepository), new(MockCompanyReader), new(MockContactReader))
	reviewer := principalFor(9, domain.RoleReviewer)

	_, err := s.Create(context.Background(), reviewer, &LeadCreate{
		Title: "Nope", LeadSubType: "NON_TENDER", CompanyID: 1,
	})
	assert.ErrorIs(t, err, ErrCapability)
}

func TestService_Update_ConvertedIsImmutable(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	s := newTestService(mockLeads, new(MockCompanyReader), new(MockContactReader))

	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadConverted, Version: 4,
	}, nil)

	title := "New title"
	_, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Version: 4, Title: &title})
	assert.ErrorIs(t, err, ErrImmutable)
}

func TestService_Update_VersionConflict(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	s := newTestService(mockLeads, new(MockCompanyReader), new(MockContactReader))

	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadQualified, SubType: domain.SubTypeNonTender, Version: 4,
	}, nil)

	title := "Stale write"
	_, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Version: 3, Title: &title})
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestService_Update_StoreVersionConflict(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockCompanies := new(MockCompanyReader)
	s := newTestService(mockLeads, mockCompanies, new(MockContactReader))

	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadContacted, SubType: domain.SubTypeNonTender,
		CompanyID: 1, Version: 2,
	}, nil)
	mockLeads.On("Contacts", mock.Anything, int64(1)).Return([]domain.Contact{}, nil)
	mockCompanies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1}, nil)
	mockLeads.On("UpdateVersioned", mock.Anything, mock.Anything, int64(2)).
		Return(repository.ErrVersionConflict)

	title := "Raced"
	_, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Version: 2, Title: &title})
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestService_Update_AutoRevertOnScoreDrop(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockCompanies := new(MockCompanyReader)
	mockContacts := new(MockContactReader)
	s := newTestService(mockLeads, mockCompanies, mockContacts)

	// QUALIFIED at 50 thanks to a decision maker; the patch drops the contact
	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadQualified, SubType: domain.SubTypeNonTender,
		CompanyID: 1, ExpectedRevenue: 2_000_000, Priority: domain.PriorityHigh,
		Score: 50, Version: 3,
	}, nil)
	mockContacts.On("GetByIDs", mock.Anything, []int64{8}).Return([]domain.Contact{
		{ID: 8, IsDecisionMaker: false, InfluencePct: 10},
	}, nil)
	mockCompanies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1}, nil)
	mockLeads.On("UpdateVersioned", mock.Anything, mock.Anything, int64(3)).Return(nil)
	mockLeads.On("ReplaceContacts", mock.Anything, int64(1), []int64{8}).Return(nil)

	ids := []int64{8}
	v, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Version: 3, ContactIDs: &ids})
	assert.NoError(t, err)
	// 15 revenue + 10 priority = 25, below the revert threshold
	assert.Equal(t, 25, v.Score)
	assert.Equal(t, string(domain.LeadContacted), v.Status)
	assert.Equal(t, int64(4), v.Version)
}

func TestService_Update_PatchAwayTenderClearsBlock(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockCompanies := new(MockCompanyReader)
	s := newTestService(mockLeads, mockCompanies, new(MockContactReader))

	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadContacted, SubType: domain.SubTypeTender,
		Tender:    &domain.TenderDetails{TenderID: "T-1", Authority: "NIC", BidDueDate: "2099-01-01"},
		CompanyID: 1, Version: 1,
	}, nil)
	mockLeads.On("Contacts", mock.Anything, int64(1)).Return([]domain.Contact{}, nil)
	mockCompanies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1}, nil)
	mockLeads.On("UpdateVersioned", mock.Anything, mock.Anything, int64(1)).Return(nil)

	st := "NON_TENDER"
	v, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Version: 1, LeadSubType: &st})
	assert.NoError(t, err)
	assert.Equal(t, "NON_TENDER", v.LeadSubType)
	assert.Nil(t, v.TenderDetails)
}

func TestService_Update_ExplicitIllegalTransition(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	s := newTestService(mockLeads, new(MockCompanyReader), new(MockContactReader))

	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadNew, SubType: domain.SubTypeNonTender, Version: 1,
	}, nil)

	status := "CONVERSION_REQUESTED"
	_, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Version: 1, Status: &status})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestService_Update_CannotRequestConversionViaStatus(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	s := newTestService(mockLeads, new(MockCompanyReader), new(MockContactReader))

	// QUALIFIED -> CONVERSION_REQUESTED is a legal transition, but only the
	// review queue may take it: a plain edit would skip the queued request
	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadQualified, SubType: domain.SubTypeNonTender, Version: 2,
	}, nil)

	status := "CONVERSION_REQUESTED"
	_, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Version: 2, Status: &status})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
	mockLeads.AssertNotCalled(t, "UpdateVersioned", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update_CannotConvertViaStatus(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	s := newTestService(mockLeads, new(MockCompanyReader), new(MockContactReader))

	// an approved lead converts through the converter, which creates the
	// opportunity; setting CONVERTED by hand would leave none behind
	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadConversionApproved, SubType: domain.SubTypeNonTender, Version: 5,
	}, nil)

	status := "CONVERTED"
	_, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Version: 5, Status: &status})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
	mockLeads.AssertNotCalled(t, "UpdateVersioned", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update_MissingVersionIsValidationError(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	s := newTestService(mockLeads, new(MockCompanyReader), new(MockContactReader))

	title := "No version supplied"
	_, err := s.Update(context.Background(), salesPrincipal, 1, &LeadPatch{Title: &title})
	assert.Equal(t, apperror.KindInvariantViolation, apperror.KindOf(err))
	mockLeads.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_RescoreForContact(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockCompanies := new(MockCompanyReader)
	s := newTestService(mockLeads, mockCompanies, new(MockContactReader))

	mockLeads.On("LeadIDsByContact", mock.Anything, int64(3)).Return([]int64{1, 2}, nil)
	mockLeads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Lead{
		ID: 1, Status: domain.LeadContacted, SubType: domain.SubTypeNonTender,
		CompanyID: 1, Score: 25, Version: 2,
	}, nil)
	// converted leads are skipped untouched
	mockLeads.On("GetByID", mock.Anything, int64(2)).Return(&domain.Lead{
		ID: 2, Status: domain.LeadConverted, Version: 9,
	}, nil)
	mockLeads.On("Contacts", mock.Anything, int64(1)).Return([]domain.Contact{
		{ID: 3, IsDecisionMaker: true, InfluencePct: 70},
	}, nil)
	mockCompanies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1}, nil)
	mockLeads.On("UpdateVersioned", mock.Anything, mock.MatchedBy(func(l *domain.Lead) bool {
		return l.ID == 1 && l.Score == 25 && l.Version == 3
	}), int64(2)).Return(nil)

	err := s.RescoreForContact(context.Background(), 3)
	assert.NoError(t, err)
	mockLeads.AssertExpectations(t)
}

func TestService_Get_NotFound(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	s := newTestService(mockLeads, new(MockCompanyReader), new(MockContactReader))

	mockLeads.On("GetByID", mock.Anything, int64(404)).Return(nil, nil)

	_, err := s.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}
