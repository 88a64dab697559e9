package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to domain.LeadStatus
		cap      domain.Capability
		ok       bool
	}{
		{domain.LeadNew, domain.LeadContacted, domain.CapLeadWrite, true},
		{domain.LeadNew, domain.LeadQualified, domain.CapLeadWrite, true},
		{domain.LeadNew, domain.LeadDisqualified, domain.CapLeadWrite, true},
		{domain.LeadContacted, domain.LeadQualified, domain.CapLeadWrite, true},
		{domain.LeadQualified, domain.LeadContacted, domain.CapLeadWrite, true},
		{domain.LeadDisqualified, domain.LeadQualified, domain.CapLeadWrite, true},
		{domain.LeadQualified, domain.LeadConversionRequested, domain.CapLeadConvertRequest, true},
		{domain.LeadConversionRequested, domain.LeadConversionApproved, domain.CapLeadReview, true},
		{domain.LeadConversionRequested, domain.LeadQualified, domain.CapLeadReview, true},
		{domain.LeadConversionApproved, domain.LeadConverted, domain.CapLeadConvert, true},

		{domain.LeadNew, domain.LeadConversionRequested, "", false},
		{domain.LeadContacted, domain.LeadConversionRequested, "", false},
		{domain.LeadNew, domain.LeadConverted, "", false},
		{domain.LeadQualified, domain.LeadConverted, "", false},
		{domain.LeadQualified, domain.LeadConversionApproved, "", false},
		{domain.LeadConversionRequested, domain.LeadConverted, "", false},
		{domain.LeadConversionApproved, domain.LeadQualified, "", false},
		{domain.LeadConverted, domain.LeadQualified, "", false},
		{domain.LeadConverted, domain.LeadContacted, "", false},
	}
	for _, c := range cases {
		cap, ok := CanTransition(c.from, c.to)
		assert.Equal(t, c.ok, ok, "%s -> %s", c.from, c.to)
		if c.ok {
			assert.Equal(t, c.cap, cap, "%s -> %s", c.from, c.to)
		}
	}
}

func TestTransitionRequiresCapability(t *testing.T) {
	sales := principalFor(1, domain.RoleSales)
	reviewer := principalFor(2, domain.RoleReviewer)

	l := &domain.Lead{Status: domain.LeadConversionRequested}
	err := Transition(l, domain.LeadConversionApproved, sales)
	assert.Equal(t, apperror.KindCapabilityDenied, apperror.KindOf(err))
	assert.Equal(t, domain.LeadConversionRequested, l.Status)

	err = Transition(l, domain.LeadConversionApproved, reviewer)
	assert.NoError(t, err)
	assert.Equal(t, domain.LeadConversionApproved, l.Status)
}

func TestTransitionIllegal(t *testing.T) {
	admin := principalFor(1, domain.RoleAdmin)
	l := &domain.Lead{Status: domain.LeadNew}

	err := Transition(l, domain.LeadConverted, admin)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
	assert.Equal(t, domain.LeadNew, l.Status)
}

func TestTransitionConvertedIsImmutable(t *testing.T) {
	admin := principalFor(1, domain.RoleAdmin)
	l := &domain.Lead{Status: domain.LeadConverted}

	err := Transition(l, domain.LeadQualified, admin)
	assert.ErrorIs(t, err, ErrImmutable)
}

func TestApplyAutoRevert(t *testing.T) {
	l := &domain.Lead{Status: domain.LeadQualified, Score: 39}
	ApplyAutoRevert(l)
	assert.Equal(t, domain.LeadContacted, l.Status)

	l = &domain.Lead{Status: domain.LeadQualified, Score: 40}
	ApplyAutoRevert(l)
	assert.Equal(t, domain.LeadQualified, l.Status)

	// the rule never fires outside QUALIFIED
	for _, s := range []domain.LeadStatus{
		domain.LeadNew,
		domain.LeadContacted,
		domain.LeadConversionRequested,
		domain.LeadConversionApproved,
		domain.LeadConverted,
		domain.LeadDisqualified,
	} {
		l = &domain.Lead{Status: s, Score: 0}
		ApplyAutoRevert(l)
		assert.Equal(t, s, l.Status, "status %s", s)
	}
}
