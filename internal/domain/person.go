package domain

import (
	"strings"
	"time"
)

// Role is the kind of account a person holds
type Role string

const (
	RoleRegisteredUser Role = "REGISTERED_USER"
	RoleEventOrganizer Role = "EVENT_ORGANIZER"
	RoleSpaceRenter    Role = "SPACE_RENTER"
)

// ParseRole accepts any casing of a known role
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleRegisteredUser, RoleEventOrganizer, RoleSpaceRenter:
		return r, true
	}
	return "", false
}

// Identity is the authenticated principal handed to every operation
type Identity struct {
	UserID   string
	Username string
	Role     Role
}

// Is reports whether the identity holds role
func (i Identity) Is(role Role) bool {
	return i.Role == role
}

// Person is the shared record for all account kinds. Exactly one of the
// role-specific parts is set, matching Role.
type Person struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Preferences *Preferences      `json:"preferences,omitempty"`
	Organizer   *OrganizerProfile `json:"organizer,omitempty"`
	Renter      *RenterProfile    `json:"renter,omitempty"`
}

// Preferences drive suggestions for registered users
type Preferences struct {
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	CityID   string   `json:"city_id,omitempty"`
	City     *City    `json:"city,omitempty"`
}

// HasPriceRange is true only when both bounds are set
func (p *Preferences) HasPriceRange() bool {
	return p != nil && p.MinPrice != nil && p.MaxPrice != nil
}

type OrganizerProfile struct {
	MobilePhone      string   `json:"mobile_phone,omitempty"`
	OrganizationName string   `json:"organization_name,omitempty"`
	AverageRating    *float64 `json:"average_rating"`
}

type RenterProfile struct {
	MobilePhone string `json:"mobile_phone,omitempty"`
}

// NewPerson builds the base record with the variant matching the role
func NewPerson(identity Identity) *Person {
	p := &Person{
		ID:       identity.UserID,
		Username: identity.Username,
		Role:     identity.Role,
	}
	switch identity.Role {
	case RoleRegisteredUser:
		p.Preferences = &Preferences{}
	case RoleEventOrganizer:
		p.Organizer = &OrganizerProfile{}
	case RoleSpaceRenter:
		p.Renter = &RenterProfile{}
	}
	return p
}
