package lead

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
)

// bindStrict decodes the body rejecting unknown keys, so the invariants stay
// checkable against a closed schema.
func bindStrict(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperror.Wrap(apperror.KindInvariantViolation, "invalid request body", err)
	}
	return nil
}

type TenderDetailsDTO struct {
	TenderID   string `json:"tenderId" validate:"required,min=2,max=100"`
	Authority  string `json:"authority" validate:"required,min=2,max=200"`
	BidDueDate string `json:"bidDueDate" validate:"required"`
}

// LeadCreate accepts the sub-type under either spelling; camelCase wins when
// both are present and must not disagree with the snake_case one.
type LeadCreate struct {
	Title              string                 `json:"title" validate:"required,min=2,max=200"`
	Source             string                 `json:"source"`
	LeadSubType        string                 `json:"leadSubType"`
	LeadSubTypeSnake   string                 `json:"lead_sub_type"`
	Products           []string               `json:"products"`
	CompanyID          int64                  `json:"company_id" validate:"required"`
	ExpectedRevenue    float64                `json:"expected_revenue" validate:"gte=0"`
	Currency           string                 `json:"currency"`
	ConvertBy          string                 `json:"convert_by"`
	TenderDetails      *TenderDetailsDTO      `json:"tenderDetails"`
	Priority           string                 `json:"priority"`
	QualificationNotes string                 `json:"qualification_notes"`
	ContactIDs         []int64                `json:"contact_ids"`
	Competitors        []string               `json:"competitors"`
	Clauses            []string               `json:"clauses"`
	ImportantDates     []domain.ImportantDate `json:"important_dates"`
}

func resolveSubType(camel, snake string) (domain.LeadSubType, error) {
	if camel != "" && snake != "" && camel != snake {
		return "", apperror.New(apperror.KindInvariantViolation,
			"leadSubType and lead_sub_type disagree")
	}
	raw := camel
	if raw == "" {
		raw = snake
	}
	st := domain.LeadSubType(raw)
	if !domain.ValidSubType(st) {
		return "", apperror.New(apperror.KindInvariantViolation,
			"unknown lead sub-type "+raw)
	}
	return st, nil
}

func (r *LeadCreate) SubType() (domain.LeadSubType, error) {
	return resolveSubType(r.LeadSubType, r.LeadSubTypeSnake)
}

// LeadPatch updates a subset of fields. Version is mandatory: writes are
// read-then-conditionally-update on it.
type LeadPatch struct {
	Version            int64                   `json:"version" validate:"required"`
	Title              *string                 `json:"title"`
	Source             *string                 `json:"source"`
	LeadSubType        *string                 `json:"leadSubType"`
	LeadSubTypeSnake   *string                 `json:"lead_sub_type"`
	Products           *[]string               `json:"products"`
	ExpectedRevenue    *float64                `json:"expected_revenue"`
	Currency           *string                 `json:"currency"`
	ConvertBy          *string                 `json:"convert_by"`
	TenderDetails      *TenderDetailsDTO       `json:"tenderDetails"`
	Priority           *string                 `json:"priority"`
	QualificationNotes *string                 `json:"qualification_notes"`
	Status             *string                 `json:"status"`
	ContactIDs         *[]int64                `json:"contact_ids"`
	Competitors        *[]string               `json:"competitors"`
	Clauses            *[]string               `json:"clauses"`
	ImportantDates     *[]domain.ImportantDate `json:"important_dates"`
}

// LeadView emits the sub-type under both spellings for backward clients.
type LeadView struct {
	ID                 int64                  `json:"id"`
	Title              string                 `json:"title"`
	Source             string                 `json:"source,omitempty"`
	LeadSubType        string                 `json:"leadSubType"`
	LeadSubTypeSnake   string                 `json:"lead_sub_type"`
	Products           []string               `json:"products,omitempty"`
	CompanyID          int64                  `json:"company_id"`
	ExpectedRevenue    float64                `json:"expected_revenue"`
	Currency           string                 `json:"currency,omitempty"`
	ConvertBy          string                 `json:"convert_by,omitempty"`
	TenderDetails      *TenderDetailsDTO      `json:"tenderDetails,omitempty"`
	Priority           string                 `json:"priority,omitempty"`
	QualificationNotes string                 `json:"qualification_notes,omitempty"`
	Score              int                    `json:"score"`
	Status             string                 `json:"status"`
	ConversionStatus   string                 `json:"conversion_status"`
	Competitors        []string               `json:"competitors,omitempty"`
	Clauses            []string               `json:"clauses,omitempty"`
	ImportantDates     []domain.ImportantDate `json:"important_dates,omitempty"`
	OpportunityID      *int64                 `json:"opportunity_id,omitempty"`
	OwnerID            int64                  `json:"owner_id"`
	Version            int64                  `json:"version"`
	Contacts           []domain.Contact       `json:"contacts,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

func NewLeadView(l *domain.Lead, contacts []domain.Contact) *LeadView {
	v := &LeadView{
		ID:                 l.ID,
		Title:              l.Title,
		Source:             l.Source,
		LeadSubType:        string(l.SubType),
		LeadSubTypeSnake:   string(l.SubType),
		Products:           l.Products,
		CompanyID:          l.CompanyID,
		ExpectedRevenue:    l.ExpectedRevenue,
		Currency:           l.Currency,
		ConvertBy:          l.ConvertBy,
		Priority:           string(l.Priority),
		QualificationNotes: l.QualificationNotes,
		Score:              l.Score,
		Status:             string(l.Status),
		ConversionStatus:   string(l.ConversionStatus),
		Competitors:        l.Competitors,
		Clauses:            l.Clauses,
		ImportantDates:     l.ImportantDates,
		OpportunityID:      l.OpportunityID,
		OwnerID:            l.OwnerID,
		Version:            l.Version,
		Contacts:           contacts,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
	if l.Tender.Complete() {
		v.TenderDetails = &TenderDetailsDTO{
			TenderID:   l.Tender.TenderID,
			Authority:  l.Tender.Authority,
			BidDueDate: l.Tender.BidDueDate,
		}
	}
	return v
}

type ConvertRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}
