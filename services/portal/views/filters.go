package views

import (
	"slices"
	"strings"

	"carenest/services/portal/models"
)

// ParseStatusFilter maps the status tab query value onto a state. The queue
// opens on the pending tab.
func ParseStatusFilter(raw string) models.VerificationState {
	s := models.VerificationState(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return models.VerificationPending
	}
	return s
}

// FilterVerifications keeps requests in the given state whose username or
// email contains search, case-insensitively.
func FilterVerifications(list []models.VerificationRequest, status models.VerificationState, search string) []models.VerificationRequest {
	q := strings.ToLower(search)
	out := make([]models.VerificationRequest, 0, len(list))
	for _, r := range list {
		if r.VerificationStatus != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(r.Username), q) &&
			!strings.Contains(strings.ToLower(r.Email), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func CountByStatus(list []models.VerificationRequest) StatusCounts {
	var c StatusCounts
	for _, r := range list {
		switch r.VerificationStatus {
		case models.VerificationPending:
			c.Pending++
		case models.VerificationApproved:
			c.Approved++
		case models.VerificationRejected:
			c.Rejected++
		}
	}
	return c
}

// FilterCaregivers applies the directory's text search (username, email or
// any service type) and the exact service filter. Empty values match all.
func FilterCaregivers(list []models.Caregiver, query, service string) []models.Caregiver {
	q := strings.ToLower(query)
	out := make([]models.Caregiver, 0, len(list))
	for _, c := range list {
		if q != "" && !caregiverMatches(c, q) {
			continue
		}
		if service != "" && !slices.Contains(c.ServiceTypes, service) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func caregiverMatches(c models.Caregiver, q string) bool {
	if strings.Contains(strings.ToLower(c.Username), q) || strings.Contains(strings.ToLower(c.Email), q) {
		return true
	}
	for _, s := range c.ServiceTypes {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// SplitBookings separates pending requests from the rest and reports whether
// any booking is already accepted.
func SplitBookings(list []models.Booking) (pending, others []models.Booking, hasAccepted bool) {
	for _, b := range list {
		if b.Status == models.BookingPending {
			pending = append(pending, b)
		} else {
			others = append(others, b)
		}
		if b.Status == models.BookingAccepted {
			hasAccepted = true
		}
	}
	return pending, others, hasAccepted
}

// Recent returns at most n bookings from the head of the list.
func Recent(list []models.Booking, n int) []models.Booking {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
