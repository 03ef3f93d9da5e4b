package views

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carenest/services/portal/models"
)

func labels(links []NavLink) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Label
	}
	return out
}

func TestNavLinks(t *testing.T) {
	assert.Nil(t, NavLinks(models.RoleAdmin, false, "/"))

	assert.Equal(t, []string{"Dashboard", "Verify Caregivers"},
		labels(NavLinks(models.RoleAdmin, true, "/admin/dashboard")))
	assert.Equal(t, []string{"Dashboard", "Find Caregiver", "My Bookings", "Profile"},
		labels(NavLinks(models.RoleCareseeker, true, "")))
	assert.Equal(t, []string{"Dashboard", "Booking Requests", "Documents", "Profile"},
		labels(NavLinks(models.RoleCaregiver, true, "")))

	links := NavLinks(models.RoleCareseeker, true, "/careseeker/bookings")
	for _, l := range links {
		assert.Equal(t, l.Path == "/careseeker/bookings", l.Active, l.Label)
	}
}

func TestAvatars(t *testing.T) {
	approved := string(models.VerificationApproved)
	img := "/media/a.png"

	p := ProfileAvatar(&models.Profile{Username: "asha", VerificationStatus: &approved})
	assert.True(t, p.Verified)
	assert.Equal(t, "A", p.Initial())

	c := CaregiverAvatar(models.Caregiver{Username: "bina", ProfileImage: &img})
	assert.True(t, c.Verified)
	assert.Equal(t, img, c.ImageURL)

	r := VerificationAvatar(models.VerificationRequest{Username: "chandra", VerificationStatus: models.VerificationPending})
	assert.False(t, r.Verified)

	assert.Equal(t, Avatar{}, ProfileAvatar(nil))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1 hour", FormatDuration(1))
	assert.Equal(t, "3 hours", FormatDuration(3))
	assert.Equal(t, "?", Initial("  "))
	assert.Equal(t, "Ä", Initial("äsha"))
	assert.Equal(t, "Pending", Title("pending"))
	assert.Empty(t, Title(""))
}
