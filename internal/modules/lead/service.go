package lead

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/validator"
	"crmcore/internal/repository"
)

type Service struct {
	leads     LeadRepository
	companies CompanyReader
	contacts  ContactReader
	clock     func() time.Time
}

func NewService(leads LeadRepository, companies CompanyReader, contacts ContactReader) *Service {
	return &Service{
		leads:     leads,
		companies: companies,
		contacts:  contacts,
		clock:     time.Now,
	}
}

func (s *Service) Create(ctx context.Context, p domain.Principal, req *LeadCreate) (*LeadView, error) {
	if !p.Can(domain.CapLeadWrite) {
		return nil, ErrCapability
	}

	if errs := validator.Validate(req); errs != nil {
		return nil, apperror.New(apperror.KindInvariantViolation, fmt.Sprintf("validation failed: %v", errs))
	}

	subType, err := req.SubType()
	if err != nil {
		return nil, err
	}

	tender, err := s.checkTender(subType, req.TenderDetails, true)
	if err != nil {
		return nil, err
	}

	priority, err := parsePriority(req.Priority)
	if err != nil {
		return nil, err
	}

	if req.ConvertBy != "" {
		if _, err := time.Parse("2006-01-02", req.ConvertBy); err != nil {
			return nil, apperror.New(apperror.KindInvariantViolation, "convert_by is not an ISO-8601 date")
		}
	}

	company, err := s.companies.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, storeErr(err)
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	contacts, err := s.loadContacts(ctx, req.ContactIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	l := &domain.Lead{
		Title:              req.Title,
		Source:             req.Source,
		SubType:            subType,
		Products:           req.Products,
		CompanyID:          req.CompanyID,
		ExpectedRevenue:    req.ExpectedRevenue,
		Currency:           req.Currency,
		ConvertBy:          req.ConvertBy,
		Tender:             tender,
		Priority:           priority,
		QualificationNotes: req.QualificationNotes,
		Status:             domain.LeadNew,
		ConversionStatus:   domain.ConversionNone,
		Competitors:        req.Competitors,
		Clauses:            req.Clauses,
		ImportantDates:     req.ImportantDates,
		OwnerID:            p.UserID,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	l.Score = Score(ScoreInput{Lead: l, Contacts: contacts, Company: company, Now: now})

	if err := s.leads.Create(ctx, l); err != nil {
		return nil, storeErr(err)
	}
	if len(req.ContactIDs) > 0 {
		if err := s.leads.ReplaceContacts(ctx, l.ID, req.ContactIDs); err != nil {
			return nil, storeErr(err)
		}
	}

	return NewLeadView(l, contacts), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*LeadView, error) {
	l, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if l == nil {
		return nil, ErrLeadNotFound
	}
	contacts, err := s.leads.Contacts(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return NewLeadView(l, contacts), nil
}

func (s *Service) List(ctx context.Context, f repository.LeadFilter) ([]*LeadView, error) {
	leads, err := s.leads.List(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	views := make([]*LeadView, 0, len(leads))
	for i := range leads {
		views = append(views, NewLeadView(&leads[i], nil))
	}
	return views, nil
}

// Update applies a patch under optimistic concurrency, recomputes the score
// and re-checks every invariant the patch can touch.
func (s *Service) Update(ctx context.Context, p domain.Principal, id int64, patch *LeadPatch) (*LeadView, error) {
	if !p.Can(domain.CapLeadWrite) {
		return nil, ErrCapability
	}

	if errs := validator.Validate(patch); errs != nil {
		return nil, apperror.New(apperror.KindInvariantViolation, fmt.Sprintf("validation failed: %v", errs))
	}

	l, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if l == nil {
		return nil, ErrLeadNotFound
	}
	if l.IsConverted() {
		return nil, ErrImmutable
	}
	if patch.Version != l.Version {
		return nil, ErrVersionConflict
	}

	if err := s.applyPatch(l, patch); err != nil {
		return nil, err
	}

	if _, err := s.checkTender(l.SubType, tenderDTO(l.Tender), false); err != nil {
		return nil, err
	}

	// explicit status change goes through the declarative table; the
	// conversion states are off limits here, they are reached through the
	// review queue and the converter which do the accompanying writes
	if patch.Status != nil {
		to := domain.LeadStatus(*patch.Status)
		if !EditableTarget(to) {
			return nil, apperror.New(apperror.KindInvalidTransition,
				"status "+string(to)+" cannot be set directly")
		}
		if err := Transition(l, to, p); err != nil {
			return nil, err
		}
	}

	contactIDs, err := s.effectiveContactIDs(ctx, l.ID, patch)
	if err != nil {
		return nil, err
	}
	contacts, err := s.loadContacts(ctx, contactIDs)
	if err != nil {
		return nil, err
	}

	company, err := s.companies.GetByID(ctx, l.CompanyID)
	if err != nil {
		return nil, storeErr(err)
	}

	now := s.clock()
	l.Score = Score(ScoreInput{Lead: l, Contacts: contacts, Company: company, Now: now})
	ApplyAutoRevert(l)

	expected := l.Version
	l.Version++
	l.UpdatedAt = now
	if err := s.leads.UpdateVersioned(ctx, l, expected); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrVersionConflict
		}
		return nil, storeErr(err)
	}

	if patch.ContactIDs != nil {
		if err := s.leads.ReplaceContacts(ctx, l.ID, *patch.ContactIDs); err != nil {
			return nil, storeErr(err)
		}
	}

	return NewLeadView(l, contacts), nil
}

// RescoreForContact recomputes the stored score of every lead whose contact
// set includes the mutated contact.
func (s *Service) RescoreForContact(ctx context.Context, contactID int64) error {
	ids, err := s.leads.LeadIDsByContact(ctx, contactID)
	if err != nil {
		return storeErr(err)
	}
	for _, id := range ids {
		l, err := s.leads.GetByID(ctx, id)
		if err != nil {
			return storeErr(err)
		}
		if l == nil || l.IsConverted() {
			continue
		}

		contacts, err := s.leads.Contacts(ctx, id)
		if err != nil {
			return storeErr(err)
		}
		company, err := s.companies.GetByID(ctx, l.CompanyID)
		if err != nil {
			return storeErr(err)
		}

		l.Score = Score(ScoreInput{Lead: l, Contacts: contacts, Company: company, Now: s.clock()})
		ApplyAutoRevert(l)

		expected := l.Version
		l.Version++
		l.UpdatedAt = s.clock()
		if err := s.leads.UpdateVersioned(ctx, l, expected); err != nil {
			return storeErr(err)
		}
	}
	return nil
}

func (s *Service) applyPatch(l *domain.Lead, patch *LeadPatch) error {
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Source != nil {
		l.Source = *patch.Source
	}
	if patch.LeadSubType != nil || patch.LeadSubTypeSnake != nil {
		camel, snake := "", ""
		if patch.LeadSubType != nil {
			camel = *patch.LeadSubType
		}
		if patch.LeadSubTypeSnake != nil {
			snake = *patch.LeadSubTypeSnake
		}
		st, err := resolveSubType(camel, snake)
		if err != nil {
			return err
		}
		l.SubType = st
		if !st.IsTender() {
			l.Tender = nil
		}
	}
	if patch.Products != nil {
		l.Products = *patch.Products
	}
	if patch.ExpectedRevenue != nil {
		if *patch.ExpectedRevenue < 0 {
			return apperror.New(apperror.KindInvariantViolation, "expected_revenue must be >= 0")
		}
		l.ExpectedRevenue = *patch.ExpectedRevenue
	}
	if patch.Currency != nil {
		l.Currency = *patch.Currency
	}
	if patch.ConvertBy != nil {
		if *patch.ConvertBy != "" {
			if _, err := time.Parse("2006-01-02", *patch.ConvertBy); err != nil {
				return apperror.New(apperror.KindInvariantViolation, "convert_by is not an ISO-8601 date")
			}
		}
		l.ConvertBy = *patch.ConvertBy
	}
	if patch.TenderDetails != nil {
		l.Tender = &domain.TenderDetails{
			TenderID:   patch.TenderDetails.TenderID,
			Authority:  patch.TenderDetails.Authority,
			BidDueDate: patch.TenderDetails.BidDueDate,
		}
	}
	if patch.Priority != nil {
		pr, err := parsePriority(*patch.Priority)
		if err != nil {
			return err
		}
		l.Priority = pr
	}
	if patch.QualificationNotes != nil {
		l.QualificationNotes = *patch.QualificationNotes
	}
	if patch.Competitors != nil {
		l.Competitors = *patch.Competitors
	}
	if patch.Clauses != nil {
		l.Clauses = *patch.Clauses
	}
	if patch.ImportantDates != nil {
		l.ImportantDates = *patch.ImportantDates
	}
	return nil
}

// checkTender validates the tender block against the sub-type. The
// future-date rule applies at creation only.
func (s *Service) checkTender(subType domain.LeadSubType, tender *TenderDetailsDTO, atCreation bool) (*domain.TenderDetails, error) {
	if subType.IsTender() {
		if tender == nil {
			return nil, apperror.New(apperror.KindInvariantViolation,
				"tender sub-types require tenderDetails")
		}
		if errs := validator.Validate(tender); errs != nil {
			return nil, apperror.New(apperror.KindInvariantViolation,
				fmt.Sprintf("invalid tenderDetails: %v", errs))
		}
		due, err := time.Parse("2006-01-02", tender.BidDueDate)
		if err != nil {
			return nil, apperror.New(apperror.KindInvariantViolation,
				"bidDueDate is not an ISO-8601 date")
		}
		if atCreation && !due.After(s.clock()) {
			return nil, apperror.New(apperror.KindInvariantViolation,
				"bidDueDate must be in the future")
		}
		return &domain.TenderDetails{
			TenderID:   tender.TenderID,
			Authority:  tender.Authority,
			BidDueDate: tender.BidDueDate,
		}, nil
	}

	if tender != nil && (tender.TenderID != "" || tender.Authority != "" || tender.BidDueDate != "") {
		return nil, apperror.New(apperror.KindInvariantViolation,
			"NON_TENDER leads must not carry a tender block")
	}
	return nil, nil
}

// loadContacts resolves the contact set and enforces the decision-maker
// influence-sum invariant.
func (s *Service) loadContacts(ctx context.Context, ids []int64) ([]domain.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	contacts, err := s.contacts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(contacts) != len(ids) {
		return nil, ErrContactNotFound
	}

	sum := 0
	for _, c := range contacts {
		if c.IsDecisionMaker {
			sum += c.InfluencePct
		}
	}
	if sum > 100 {
		return nil, apperror.New(apperror.KindInvariantViolation,
			"decision-maker influence exceeds 100 percent")
	}
	return contacts, nil
}

func (s *Service) effectiveContactIDs(ctx context.Context, leadID int64, patch *LeadPatch) ([]int64, error) {
	if patch.ContactIDs != nil {
		return *patch.ContactIDs, nil
	}
	contacts, err := s.leads.Contacts(ctx, leadID)
	if err != nil {
		return nil, storeErr(err)
	}
	ids := make([]int64, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func tenderDTO(t *domain.TenderDetails) *TenderDetailsDTO {
	if t == nil || (t.TenderID == "" && t.Authority == "" && t.BidDueDate == "") {
		return nil
	}
	return &TenderDetailsDTO{
		TenderID:   t.TenderID,
		Authority:  t.Authority,
		BidDueDate: t.BidDueDate,
	}
}

func parsePriority(raw string) (domain.LeadPriority, error) {
	switch domain.LeadPriority(raw) {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
		return domain.LeadPriority(raw), nil
	case "":
		return domain.PriorityMedium, nil
	}
	return "", apperror.New(apperror.KindInvariantViolation, "unknown priority "+raw)
}

func storeErr(err error) error {
	return apperror.Wrap(apperror.KindStoreUnavailable, "store error", err)
}
