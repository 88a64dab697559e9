package domain

import "time"

type Stage string

const (
	StageProspect      Stage = "L1_Prospect"
	StageQualification Stage = "L2_Qualification"
	StageProposal      Stage = "L3_Proposal"
	StageNegotiation   Stage = "L4_Negotiation"
	StageWon           Stage = "L5_Won"
	StageLost          Stage = "L5_Lost"
)

type OpportunityStatus string

const (
	OpportunityOpen OpportunityStatus = "Open"
	OpportunityWon  OpportunityStatus = "Won"
	OpportunityLost OpportunityStatus = "Lost"
)

// Opportunity is created only by the conversion coordinator. LeadID is
// unique across all opportunities: a lead converts at most once.
type Opportunity struct {
	ID               int64             `json:"id" gorm:"primaryKey"`
	PotID            string            `json:"pot_id" gorm:"uniqueIndex"`
	Name             string            `json:"name"`
	LeadID           int64             `json:"lead_id"`
	CompanyID        int64             `json:"company_id" gorm:"index"`
	PrimaryContactID *int64            `json:"primary_contact_id,omitempty"`
	Amount           float64           `json:"amount"`
	Currency         string            `json:"currency"`
	CloseDate        string            `json:"close_date"`
	Stage            Stage             `json:"stage"`
	Status           OpportunityStatus `json:"status"`
	Probability      int               `json:"probability"`
	StageData        map[string]any    `json:"stage_data,omitempty" gorm:"serializer:json"`
	Notes            string            `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// OpportunityCounter is the single-row pot-id source, read with a row lock
// inside the conversion transaction. Gaps are tolerated on rollback.
type OpportunityCounter struct {
	ID      int64 `gorm:"primaryKey"`
	LastPot int64 `gorm:"column:last_pot"`
}
