package models

// ServiceTypes is the fixed catalogue caregivers pick from and careseekers
// request.
var ServiceTypes = []string{
	"Elderly Companionship",
	"Daily Living Assistance",
	"Personal Care Support",
	"Medication Reminders",
	"Meal Preparation",
	"Mobility Assistance",
	"Light Household Help",
	"Basic Health Monitoring",
}

type ServiceGuide struct {
	Name        string
	Description string
}

var ServicesGuide = []ServiceGuide{
	{Name: "Elderly Companionship", Description: "Support and companionship for older adults."},
	{Name: "Daily Living Assistance", Description: "Help with daily tasks such as dressing and mobility."},
	{Name: "Meal Preparation", Description: "Assistance with cooking and meal planning."},
	{Name: "Medication Reminders", Description: "Support to ensure medications are taken on time."},
	{Name: "Light Household Help", Description: "Basic cleaning and household assistance."},
	{Name: "Personal Care Support", Description: "Help with hygiene and personal care needs."},
}

var Genders = []string{"male", "female"}

type Profile struct {
	Email              string            `json:"email"`
	Username           string            `json:"username"`
	Role               Role              `json:"role"`
	Phone              string            `json:"phone"`
	Address            string            `json:"address"`
	ProfileImage       string            `json:"profile_image"`
	AverageRating      *float64          `json:"average_rating,omitempty"`
	VerificationStatus *string           `json:"verification_status,omitempty"`
	CaregiverDetails   *CaregiverDetails `json:"caregiver_details,omitempty"`
}

func (p *Profile) IsVerified() bool {
	return p != nil && p.VerificationStatus != nil && *p.VerificationStatus == string(VerificationApproved)
}

type CaregiverDetails struct {
	ServiceTypes      []string `json:"service_types"`
	TrainingAuthority string   `json:"training_authority"`
	CertificationYear *int     `json:"certification_year"`
	AvailableHours    string   `json:"available_hours"`
	Bio               string   `json:"bio"`
	Gender            string   `json:"gender"`
}

// ProfileUpdate carries the common fields sent as multipart to profile/.
type ProfileUpdate struct {
	Phone   string
	Address string
	Image   *Upload
}

// Upload is a file staged for a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
