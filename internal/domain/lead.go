package domain

import "time"

type LeadStatus string

// Canonical status tokens are upper-case; unknown or mixed-case incoming
// tokens are rejected at the boundary.
const (
	LeadNew                 LeadStatus = "NEW"
	LeadContacted           LeadStatus = "CONTACTED"
	LeadQualified           LeadStatus = "QUALIFIED"
	LeadConversionRequested LeadStatus = "CONVERSION_REQUESTED"
	LeadConversionApproved  LeadStatus = "CONVERSION_APPROVED"
	LeadConverted           LeadStatus = "CONVERTED"
	LeadDisqualified        LeadStatus = "DISQUALIFIED"
)

type ConversionSubStatus string

const (
	ConversionNone     ConversionSubStatus = "NONE"
	ConversionPending  ConversionSubStatus = "PENDING"
	ConversionApproved ConversionSubStatus = "APPROVED"
	ConversionRejected ConversionSubStatus = "REJECTED"
)

type LeadSubType string

const (
	SubTypeTender     LeadSubType = "TENDER"
	SubTypePreTender  LeadSubType = "PRE_TENDER"
	SubTypePostTender LeadSubType = "POST_TENDER"
	SubTypeNonTender  LeadSubType = "NON_TENDER"
)

// IsTender reports whether the sub-type carries a tender block.
func (t LeadSubType) IsTender() bool {
	return t == SubTypeTender || t == SubTypePreTender || t == SubTypePostTender
}

func ValidSubType(t LeadSubType) bool {
	switch t {
	case SubTypeTender, SubTypePreTender, SubTypePostTender, SubTypeNonTender:
		return true
	}
	return false
}

type LeadPriority string

const (
	PriorityLow    LeadPriority = "LOW"
	PriorityMedium LeadPriority = "MEDIUM"
	PriorityHigh   LeadPriority = "HIGH"
)

// TenderDetails is the government-bid metadata triplet. BidDueDate is an
// ISO-8601 date string; it must be in the future at lead creation.
type TenderDetails struct {
	TenderID   string `json:"tenderId" gorm:"column:tender_ref"`
	Authority  string `json:"authority" gorm:"column:authority"`
	BidDueDate string `json:"bidDueDate" gorm:"column:bid_due_date"`
}

func (t *TenderDetails) Complete() bool {
	return t != nil && t.TenderID != "" && t.Authority != "" && t.BidDueDate != ""
}

type ImportantDate struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// Lead is the aggregate root of the conversion workflow. Version implements
// optimistic concurrency: every write reads then conditionally updates.
type Lead struct {
	ID                 int64           `json:"id" gorm:"primaryKey"`
	Title              string          `json:"title" validate:"required,min=2,max=200"`
	Source             string          `json:"source,omitempty"`
	SubType            LeadSubType     `json:"lead_sub_type" gorm:"column:sub_type"`
	Products           []string        `json:"products,omitempty" gorm:"serializer:json"`
	CompanyID          int64           `json:"company_id" gorm:"index"`
	ExpectedRevenue    float64         `json:"expected_revenue" validate:"gte=0"`
	Currency           string          `json:"currency"`
	ConvertBy          string          `json:"convert_by"`
	Tender             *TenderDetails  `json:"tenderDetails,omitempty" gorm:"embedded"`
	Priority           LeadPriority    `json:"priority"`
	QualificationNotes string          `json:"qualification_notes,omitempty" gorm:"type:text"`
	Score              int             `json:"score"`
	Status             LeadStatus      `json:"status" gorm:"index"`
	ConversionStatus   ConversionSubStatus `json:"conversion_status"`
	Competitors        []string        `json:"competitors,omitempty" gorm:"serializer:json"`
	Clauses            []string        `json:"clauses,omitempty" gorm:"serializer:json"`
	ImportantDates     []ImportantDate `json:"important_dates,omitempty" gorm:"serializer:json"`
	OpportunityID      *int64          `json:"opportunity_id,omitempty" gorm:"column:opportunity_ref"`
	OwnerID            int64           `json:"owner_id" gorm:"index"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (l *Lead) IsConverted() bool { return l.Status == LeadConverted }

// LeadContact orders the contact set on a lead.
type LeadContact struct {
	ID        int64 `json:"id" gorm:"primaryKey"`
	LeadID    int64 `json:"lead_id" gorm:"index:idx_lead_contact,unique"`
	ContactID int64 `json:"contact_id" gorm:"index:idx_lead_contact,unique"`
	Position  int   `json:"position"`
}

type ConversionDecision string

const (
	DecisionPending  ConversionDecision = "PENDING"
	DecisionApproved ConversionDecision = "APPROVED"
	DecisionRejected ConversionDecision = "REJECTED"
)

// ConversionRequest records one promotion attempt. Lifecycle:
// PENDING -> APPROVED | REJECTED, terminal. At most one PENDING request may
// exist per lead; the store enforces that with a partial unique index.
type ConversionRequest struct {
	ID              int64              `json:"id" gorm:"primaryKey"`
	LeadID          int64              `json:"lead_id" gorm:"index"`
	RequesterID     int64              `json:"requester_id" gorm:"index"`
	RequestedAt     time.Time          `json:"requested_at"`
	Notes           string             `json:"notes,omitempty" gorm:"type:text"`
	Decision        ConversionDecision `json:"decision" gorm:"index"`
	ReviewerID      *int64             `json:"reviewer_id,omitempty" gorm:"index"`
	DecidedAt       *time.Time         `json:"decided_at,omitempty"`
	ReviewerComment string             `json:"reviewer_comment,omitempty" gorm:"type:text"`
}
