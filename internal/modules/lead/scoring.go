package lead

import (
	"time"

	"crmcore/internal/domain"
)

// Qualification scoring. The weights are a fixed contract: the score is a
// pure function of the inputs and is recomputed on every lead write and on
// any contact-set mutation. The caller stores the result on the lead.
const (
	weightDecisionMaker   = 25 // a decision-maker contact with influence >= 50
	weightRevenueLarge    = 15 // expected revenue >= 1,000,000
	weightRevenueVeryLarge = 25 // expected revenue >= 10,000,000, replaces the +15
	weightTenderComplete  = 15 // TENDER sub-type with a fully populated tender block
	weightConvertBySoon   = 15 // convert-by date within 60 days
	weightVerifiedTaxID   = 10 // company carries a verified tax identifier
	weightHighPriority    = 10 // priority HIGH

	revenueLargeThreshold     = 1_000_000
	revenueVeryLargeThreshold = 10_000_000
	convertByWindowDays       = 60
	decisionMakerInfluenceMin = 50
)

type ScoreInput struct {
	Lead     *domain.Lead
	Contacts []domain.Contact
	Company  *domain.Company
	Now      time.Time
}

// Score computes the 0-100 qualification score.
func Score(in ScoreInput) int {
	score := 0

	for _, c := range in.Contacts {
		if c.IsDecisionMaker && c.InfluencePct >= decisionMakerInfluenceMin {
			score += weightDecisionMaker
			break
		}
	}

	switch {
	case in.Lead.ExpectedRevenue >= revenueVeryLargeThreshold:
		score += weightRevenueVeryLarge
	case in.Lead.ExpectedRevenue >= revenueLargeThreshold:
		score += weightRevenueLarge
	}

	if in.Lead.SubType == domain.SubTypeTender && in.Lead.Tender.Complete() {
		score += weightTenderComplete
	}

	if convertBySoon(in.Lead.ConvertBy, in.Now) {
		score += weightConvertBySoon
	}

	if in.Company != nil && in.Company.TaxIDVerified {
		score += weightVerifiedTaxID
	}

	if in.Lead.Priority == domain.PriorityHigh {
		score += weightHighPriority
	}

	if score > 100 {
		score = 100
	}
	return score
}

func convertBySoon(convertBy string, now time.Time) bool {
	d, err := time.Parse("2006-01-02", convertBy)
	if err != nil {
		return false
	}
	// calendar day of the caller's clock, compared in UTC like the parsed
	// date; truncating the absolute time would shift the day boundary by
	// the zone offset
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return false
	}
	return !d.After(today.AddDate(0, 0, convertByWindowDays))
}
