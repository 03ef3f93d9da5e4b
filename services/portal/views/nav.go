package views

import "carenest/services/portal/models"

type NavLink struct {
	Label  string
	Path   string
	Active bool
}

// NavLinks returns the navbar entries for role with the one matching
// current marked active. Unauthenticated visitors get no navbar.
func NavLinks(role models.Role, authenticated bool, current string) []NavLink {
	if !authenticated || role == "" {
		return nil
	}
	links := []NavLink{{Label: "Dashboard", Path: role.HomePath()}}
	switch role {
	case models.RoleAdmin:
		links = append(links, NavLink{Label: "Verify Caregivers", Path: "/admin/verify-caregivers"})
	case models.RoleCareseeker:
		links = append(links,
			NavLink{Label: "Find Caregiver", Path: "/careseeker/find-caregiver"},
			NavLink{Label: "My Bookings", Path: "/careseeker/bookings"},
		)
	case models.RoleCaregiver:
		links = append(links,
			NavLink{Label: "Booking Requests", Path: "/caregiver/booking-requests"},
			NavLink{Label: "Documents", Path: "/caregiver/upload-documents"},
		)
	}
	if role != models.RoleAdmin {
		links = append(links, NavLink{Label: "Profile", Path: "/profile"})
	}
	for i := range links {
		links[i].Active = links[i].Path == current
	}
	return links
}

// Avatar is the small profile picture with the verified tick.
type Avatar struct {
	Name     string
	ImageURL string
	Verified bool
}

func (a Avatar) Initial() string { return Initial(a.Name) }

func ProfileAvatar(p *models.Profile) Avatar {
	if p == nil {
		return Avatar{}
	}
	return Avatar{Name: p.Username, ImageURL: p.ProfileImage, Verified: p.IsVerified()}
}

// CaregiverAvatar is used in the directory, where every entry is approved
// unless the server says otherwise.
func CaregiverAvatar(c models.Caregiver) Avatar {
	a := Avatar{Name: c.Username, Verified: c.VerificationStatus == "" || c.VerificationStatus == string(models.VerificationApproved)}
	if c.ProfileImage != nil {
		a.ImageURL = *c.ProfileImage
	}
	return a
}

func VerificationAvatar(r models.VerificationRequest) Avatar {
	a := Avatar{Name: r.Username, Verified: r.VerificationStatus == models.VerificationApproved}
	if r.ProfileImage != nil {
		a.ImageURL = *r.ProfileImage
	}
	return a
}
