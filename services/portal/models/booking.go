package models

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
)

var Relationships = []string{"Self", "Father", "Mother", "Spouse", "Grandparent", "Other"}

type Booking struct {
	ID                    int64         `json:"id"`
	FamilyName            string        `json:"family_name"`
	FamilyProfileImage    *string       `json:"family_profile_image,omitempty"`
	CaregiverName         string        `json:"caregiver_name"`
	ServiceTypes          []string      `json:"service_types,omitempty"`
	PersonName            string        `json:"person_name,omitempty"`
	PersonAge             *int          `json:"person_age,omitempty"`
	Date                  string        `json:"date"`
	StartTime             string        `json:"start_time,omitempty"`
	DurationHours         int           `json:"duration_hours"`
	EmergencyContactName  string        `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string        `json:"emergency_contact_phone,omitempty"`
	AdditionalInfo        string        `json:"additional_info,omitempty"`
	Notes                 string        `json:"notes,omitempty"`
	Status                BookingStatus `json:"status"`
	CreatedAt             string        `json:"created_at"`
}

// CreateBookingRequest is the body POSTed to the bookings root.
type CreateBookingRequest struct {
	Caregiver             int64    `json:"caregiver"`
	ServiceTypes          []string `json:"service_types"`
	PersonName            string   `json:"person_name"`
	PersonAge             int      `json:"person_age"`
	Date                  string   `json:"date"`
	StartTime             string   `json:"start_time"`
	DurationHours         int      `json:"duration_hours"`
	EmergencyContactPhone string   `json:"emergency_contact_phone"`
	AdditionalInfo        string   `json:"additional_info,omitempty"`
}

type RespondBookingRequest struct {
	Status BookingStatus `json:"status"`
}

// Caregiver is an entry of the verified caregiver directory.
type Caregiver struct {
	UserID             int64    `json:"user_id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	ServiceTypes       []string `json:"service_types"`
	TrainingAuthority  string   `json:"training_authority,omitempty"`
	CertificationYear  *int     `json:"certification_year,omitempty"`
	AvailableHours     string   `json:"available_hours"`
	ProfileImage       *string  `json:"profile_image,omitempty"`
	Bio                *string  `json:"bio,omitempty"`
	Gender             *string  `json:"gender,omitempty"`
	VerificationStatus string   `json:"verification_status,omitempty"`
	Address            *string  `json:"address,omitempty"`
}

// FallbackProfile builds the profile card shown when the full profile
// cannot be fetched.
func (c Caregiver) FallbackProfile() *Profile {
	approved := string(VerificationApproved)
	p := &Profile{
		Username:           c.Username,
		Email:              c.Email,
		Role:               RoleCaregiver,
		VerificationStatus: &approved,
		CaregiverDetails: &CaregiverDetails{
			ServiceTypes:      c.ServiceTypes,
			TrainingAuthority: c.TrainingAuthority,
			CertificationYear: c.CertificationYear,
			AvailableHours:    c.AvailableHours,
		},
	}
	if c.ProfileImage != nil {
		p.ProfileImage = *c.ProfileImage
	}
	if c.Bio != nil {
		p.CaregiverDetails.Bio = *c.Bio
	}
	if c.Gender != nil {
		p.CaregiverDetails.Gender = *c.Gender
	}
	return p
}
