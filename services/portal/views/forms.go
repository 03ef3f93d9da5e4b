package views

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"carenest/services/portal/models"
	apperrors "carenest/shared/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("positive_int", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n > 0
	})
	_ = v.RegisterValidation("cert_year", func(fl validator.FieldLevel) bool {
		raw := strings.TrimSpace(fl.Field().String())
		if raw == "" {
			return true
		}
		n, err := strconv.Atoi(raw)
		return err == nil && n >= minCertificationYear && n <= maxCertificationYear
	})
	return v
}

// firstMessage validates s and maps the first failing field onto its
// message. Fields are checked in declaration order.
func firstMessage(s any, messages map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewInternalError("form validation failed", err)
	}
	fe := verrs[0]
	msg, ok := messages[fe.Field()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return apperrors.NewValidationError(msg, map[string]string{
		"field": fe.Field(),
		"tag":   fe.Tag(),
	})
}

const DefaultDurationHours = 2

// BookingForm is the booking modal. PersonName holds the relationship
// choice.
type BookingForm struct {
	ServiceTypes          []string `form:"service_types" json:"service_types" validate:"min=1"`
	PersonName            string   `form:"person_name" json:"person_name" validate:"required"`
	PersonAge             string   `form:"person_age" json:"person_age" validate:"positive_int"`
	Date                  string   `form:"date" json:"date" validate:"required"`
	StartTime             string   `form:"start_time" json:"start_time" validate:"required"`
	EmergencyContactPhone string   `form:"emergency_contact_phone" json:"emergency_contact_phone" validate:"required"`
	DurationHours         int      `form:"duration_hours" json:"duration_hours" validate:"min=1"`
	EmergencyContactName  string   `form:"emergency_contact_name" json:"emergency_contact_name"`
	AdditionalInfo        string   `form:"additional_info" json:"additional_info"`
}

var bookingMessages = map[string]string{
	"ServiceTypes":          "Please select at least one service",
	"PersonName":            "Please select the relationship",
	"PersonAge":             "Please enter a valid age",
	"Date":                  "Please select a date",
	"StartTime":             "Please select a start time",
	"EmergencyContactPhone": "Please enter emergency contact phone number",
	"DurationHours":         "Please select a duration",
}

func NewBookingForm() BookingForm {
	return BookingForm{DurationHours: DefaultDurationHours}
}

// Validate returns the first problem as a validation AppError.
func (f *BookingForm) Validate() error {
	f.EmergencyContactPhone = strings.TrimSpace(f.EmergencyContactPhone)
	return firstMessage(f, bookingMessages)
}

// Request builds the body for the bookings root. Call after Validate.
func (f BookingForm) Request(caregiverID int64) models.CreateBookingRequest {
	age, _ := strconv.Atoi(strings.TrimSpace(f.PersonAge))
	return models.CreateBookingRequest{
		Caregiver:             caregiverID,
		ServiceTypes:          f.ServiceTypes,
		PersonName:            f.PersonName,
		PersonAge:             age,
		Date:                  f.Date,
		StartTime:             f.StartTime,
		DurationHours:         f.DurationHours,
		EmergencyContactPhone: strings.TrimSpace(f.EmergencyContactPhone),
		AdditionalInfo:        strings.TrimSpace(f.AdditionalInfo),
	}
}

func (f BookingForm) HasService(s string) bool {
	for _, v := range f.ServiceTypes {
		if v == s {
			return true
		}
	}
	return false
}

// MinBookingDate is today, the earliest selectable date.
func MinBookingDate(now time.Time) string {
	return now.Format(time.DateOnly)
}

const (
	minCertificationYear = 1900
	maxCertificationYear = 2100
)

// ProfileForm carries the edit form. The caregiver fields are ignored for
// other roles.
type ProfileForm struct {
	Phone             string   `form:"phone" json:"phone"`
	Address           string   `form:"address" json:"address"`
	ServiceTypes      []string `form:"service_types" json:"service_types"`
	TrainingAuthority string   `form:"training_authority" json:"training_authority"`
	CertificationYear string   `form:"certification_year" json:"certification_year" validate:"cert_year"`
	AvailableHours    string   `form:"available_hours" json:"available_hours"`
	Bio               string   `form:"bio" json:"bio"`
	Gender            string   `form:"gender" json:"gender" validate:"omitempty,oneof=male female prefer_not_to_say"`
}

var profileMessages = map[string]string{
	"CertificationYear": fmt.Sprintf("Certification year must be between %d and %d", minCertificationYear, maxCertificationYear),
	"Gender":            "Please select a valid gender",
}

// ProfileFormFrom seeds the edit form from the loaded profile.
func ProfileFormFrom(p *models.Profile) ProfileForm {
	if p == nil {
		return ProfileForm{}
	}
	f := ProfileForm{Phone: p.Phone, Address: p.Address}
	if d := p.CaregiverDetails; d != nil {
		f.ServiceTypes = d.ServiceTypes
		f.TrainingAuthority = d.TrainingAuthority
		f.AvailableHours = d.AvailableHours
		f.Bio = d.Bio
		f.Gender = d.Gender
		if d.CertificationYear != nil {
			f.CertificationYear = strconv.Itoa(*d.CertificationYear)
		}
	}
	return f
}

func (f *ProfileForm) Validate() error {
	return firstMessage(f, profileMessages)
}

func (f ProfileForm) Update(image *models.Upload) models.ProfileUpdate {
	return models.ProfileUpdate{Phone: f.Phone, Address: f.Address, Image: image}
}

// Details builds the caregiver PATCH body. A blank year is sent as null.
func (f ProfileForm) Details() models.CaregiverDetails {
	d := models.CaregiverDetails{
		ServiceTypes:      f.ServiceTypes,
		TrainingAuthority: f.TrainingAuthority,
		AvailableHours:    f.AvailableHours,
		Bio:               f.Bio,
		Gender:            f.Gender,
	}
	if raw := strings.TrimSpace(f.CertificationYear); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			d.CertificationYear = &n
		}
	}
	return d
}

func (f ProfileForm) HasService(s string) bool {
	for _, v := range f.ServiceTypes {
		if v == s {
			return true
		}
	}
	return false
}
