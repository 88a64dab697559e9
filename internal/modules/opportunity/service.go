package opportunity

import (
	"context"
	"time"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/repository"
)

var (
	ErrNotFound   = apperror.New(apperror.KindNotFound, "opportunity not found")
	ErrCapability = apperror.New(apperror.KindCapabilityDenied, "capability denied")
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Opportunity, error)
	Update(ctx context.Context, opp *domain.Opportunity) error
	List(ctx context.Context, f repository.OpportunityFilter) ([]domain.Opportunity, error)
}

type Service struct {
	opps  Repository
	clock func() time.Time
}

func NewService(opps Repository) *Service {
	return &Service{opps: opps, clock: time.Now}
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Opportunity, error) {
	opp, err := s.opps.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if opp == nil {
		return nil, ErrNotFound
	}
	return opp, nil
}

func (s *Service) List(ctx context.Context, f repository.OpportunityFilter) ([]domain.Opportunity, error) {
	opps, err := s.opps.List(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	return opps, nil
}

// AdvanceStage moves an opportunity through the pipeline. The incoming stage
// data is merged over what previous stages recorded, then the gating rules
// of the catalog decide. Probability is always re-derived from the target
// stage, and Won/Lost status follows the terminal stages.
func (s *Service) AdvanceStage(ctx context.Context, p domain.Principal, id int64, stage domain.Stage, stageData map[string]any, notes string) (*domain.Opportunity, error) {
	if !p.Can(domain.CapOpportunityWrite) {
		return nil, ErrCapability
	}

	opp, err := s.opps.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if opp == nil {
		return nil, ErrNotFound
	}

	merged := make(map[string]any, len(opp.StageData)+len(stageData))
	for k, v := range opp.StageData {
		merged[k] = v
	}
	for k, v := range stageData {
		merged[k] = v
	}

	today := s.clock().Format("2006-01-02")
	if err := CheckAdvance(opp.Stage, stage, merged, today); err != nil {
		return nil, err
	}

	info, _ := Catalog(stage)
	opp.Stage = stage
	opp.Probability = info.Probability
	opp.Status = StatusFor(stage)
	opp.StageData = merged
	if notes != "" {
		opp.Notes = notes
	}
	if info.TerminalWon {
		if v, ok := merged["close_date"].(string); ok && v != "" {
			opp.CloseDate = v
		}
	}
	opp.UpdatedAt = s.clock()

	if err := s.opps.Update(ctx, opp); err != nil {
		return nil, storeErr(err)
	}
	return opp, nil
}

func storeErr(err error) error {
	return apperror.Wrap(apperror.KindStoreUnavailable, "store error", err)
}
