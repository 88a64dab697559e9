package domain

import "time"

type Role string

const (
	RoleSales    Role = "sales"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// Capability tags gate core operations. Assignment is external to the core;
// the gate only consumes them.
type Capability string

const (
	CapLeadWrite          Capability = "lead:write"
	CapLeadConvertRequest Capability = "lead:convert_request"
	CapLeadReview         Capability = "lead:review"
	CapLeadConvert        Capability = "lead:convert"
	CapOpportunityWrite   Capability = "opportunity:write"
	CapCompanyWrite       Capability = "company:write"
)

var RoleCapabilities = map[Role][]Capability{
	RoleSales: {
		CapLeadWrite,
		CapLeadConvertRequest,
		CapLeadConvert,
		CapOpportunityWrite,
		CapCompanyWrite,
	},
	RoleReviewer: {
		CapLeadReview,
	},
	RoleAdmin: {
		CapLeadWrite,
		CapLeadConvertRequest,
		CapLeadReview,
		CapLeadConvert,
		CapOpportunityWrite,
		CapCompanyWrite,
	},
}

// CapabilitiesFor returns the tags for a role as strings, for JWT claims.
func CapabilitiesFor(role Role) []string {
	caps := RoleCapabilities[role]
	out := make([]string, 0, len(caps))
	for _, c := range caps {
		out = append(out, string(c))
	}
	return out
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated actor a request carries into the core.
type Principal struct {
	UserID       int64
	Role         Role
	Capabilities map[Capability]bool
}

func NewPrincipal(userID int64, role string, capabilities []string) Principal {
	caps := make(map[Capability]bool, len(capabilities))
	for _, c := range capabilities {
		caps[Capability(c)] = true
	}
	return Principal{UserID: userID, Role: Role(role), Capabilities: caps}
}

func (p Principal) Can(c Capability) bool { return p.Capabilities[c] }
