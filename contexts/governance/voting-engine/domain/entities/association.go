package entities

import (
	"strings"

	"kvorum/internal/shared/validation"
)

// Association is the condominium association profile consumed when building
// the decision package. Membership and ownership records live in an external
// registry.
type Association struct {
	AssociationID  string
	Name           string
	ShortName      string
	Address        string
	Edrpou         string
	OrganizerName  string
	OrganizerEmail string
	OrganizerPhone string
	LegalOwnerName string
}

// ValidateAssociation checks the structural rules for an association
// profile and reports every violation at once.
func ValidateAssociation(a Association) error {
	var c validation.Collector
	c.CheckLen("name", a.Name, 3, 200)
	c.CheckLen("short_name", a.ShortName, 2, 80)
	c.CheckLen("address", a.Address, 5, 300)
	if !validation.IsEdrpou(strings.TrimSpace(a.Edrpou)) {
		c.Add("edrpou", "must be exactly 8 digits")
	}
	c.CheckLen("organizer_name", a.OrganizerName, 2, 200)
	if !validation.IsEmail(a.OrganizerEmail) {
		c.Add("organizer_email", "must be a valid email address")
	}
	if _, ok := validation.NormalizePhone(a.OrganizerPhone); !ok {
		c.Add("organizer_phone", "must be +380 followed by 9 digits")
	}
	return c.Err()
}
