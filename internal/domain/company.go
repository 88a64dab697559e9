package domain

import "time"

type Company struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" validate:"required,min=2,max=200"`
	TaxID         string    `json:"tax_id,omitempty"`
	TaxIDVerified bool      `json:"tax_id_verified"`
	AddressLine   string    `json:"address_line,omitempty"`
	CityID        *int64    `json:"city_id,omitempty"`
	StateID       *int64    `json:"state_id,omitempty"`
	CountryID     *int64    `json:"country_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Contact struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	CompanyID       int64     `json:"company_id" gorm:"index" validate:"required"`
	FirstName       string    `json:"first_name" validate:"required"`
	LastName        string    `json:"last_name,omitempty"`
	Designation     string    `json:"designation,omitempty"`
	Email           string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string    `json:"phone,omitempty"`
	IsDecisionMaker bool      `json:"is_decision_maker"`
	InfluencePct    int       `json:"influence_pct" validate:"gte=0,lte=100"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
