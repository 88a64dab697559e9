package lead

import (
	"context"
	"errors"
	"time"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/events"
	"crmcore/internal/repository"
)

// Converter atomically promotes an approved lead into an opportunity.
type Converter struct {
	store repository.ConversionStore
	opps  OpportunityReader
	sink  events.Sink
	clock func() time.Time
}

func NewConverter(store repository.ConversionStore, opps OpportunityReader, sink events.Sink) *Converter {
	return &Converter{
		store: store,
		opps:  opps,
		sink:  sink,
		clock: time.Now,
	}
}

// Convert runs the promotion in a single transaction: re-verify the
// precondition under the lead's version, allocate the next pot-id,
// materialize the opportunity at the initial pipeline stage and mark the
// lead CONVERTED. A lead that already carries an opportunity_ref returns the
// existing opportunity with no writes at all.
func (cv *Converter) Convert(ctx context.Context, p domain.Principal, leadID int64, name, notes string) (*domain.Opportunity, error) {
	if !p.Can(domain.CapLeadConvert) {
		return nil, ErrCapability
	}

	var result *domain.Opportunity
	var created bool
	err := cv.store.Transact(ctx, func(tx repository.ConversionTx) error {
		l, err := tx.GetLead(ctx, leadID)
		if err != nil {
			return storeErr(err)
		}
		if l == nil {
			return ErrLeadNotFound
		}

		// idempotence: detect a finished conversion before any write
		if l.OpportunityID != nil {
			existing, err := cv.opps.GetByID(ctx, *l.OpportunityID)
			if err != nil {
				return storeErr(err)
			}
			if existing == nil {
				return apperror.New(apperror.KindInternal, "dangling opportunity reference")
			}
			result = existing
			return nil
		}

		if l.Status != domain.LeadConversionApproved {
			return ErrNotApproved
		}

		contacts, err := tx.LeadContacts(ctx, leadID)
		if err != nil {
			return storeErr(err)
		}

		opp := &domain.Opportunity{
			Name:             name,
			LeadID:           l.ID,
			CompanyID:        l.CompanyID,
			PrimaryContactID: primaryContact(contacts),
			Amount:           l.ExpectedRevenue,
			Currency:         l.Currency,
			CloseDate:        l.ConvertBy,
			Stage:            domain.StageProspect,
			Status:           domain.OpportunityOpen,
			Probability:      10,
			Notes:            notes,
			CreatedAt:        cv.clock(),
			UpdatedAt:        cv.clock(),
		}
		if opp.Name == "" {
			opp.Name = l.Title
		}

		// pot-id allocation gets exactly one internal retry on conflict
		for attempt := 0; ; attempt++ {
			potID, err := tx.AllocatePotID(ctx)
			if err != nil {
				return storeErr(err)
			}
			opp.PotID = potID

			err = tx.CreateOpportunity(ctx, opp)
			if err == nil {
				break
			}
			if errors.Is(err, repository.ErrDuplicateKey) && attempt == 0 {
				continue
			}
			if errors.Is(err, repository.ErrDuplicateKey) {
				return apperror.New(apperror.KindConflict, "lead already converted")
			}
			return storeErr(err)
		}

		if err := tx.MarkLeadConverted(ctx, l.ID, l.Version, opp.ID); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return ErrVersionConflict
			}
			return storeErr(err)
		}

		result = opp
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		cv.sink.Emit(ctx, events.New(events.LeadConverted, cv.clock(), map[string]any{
			"lead_id":        leadID,
			"opportunity_id": result.ID,
			"principal_id":   p.UserID,
		}))
	}

	return result, nil
}

// primaryContact picks the decision-maker with the highest influence, ties
// broken by the lowest contact id.
func primaryContact(contacts []domain.Contact) *int64 {
	var best *domain.Contact
	for i := range contacts {
		c := &contacts[i]
		if !c.IsDecisionMaker {
			continue
		}
		if best == nil || c.InfluencePct > best.InfluencePct ||
			(c.InfluencePct == best.InfluencePct && c.ID < best.ID) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	id := best.ID
	return &id
}
