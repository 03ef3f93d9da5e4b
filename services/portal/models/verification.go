package models

type VerificationState string

const (
	VerificationPending  VerificationState = "pending"
	VerificationApproved VerificationState = "approved"
	VerificationRejected VerificationState = "rejected"
)

func (s VerificationState) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

type VerificationRequest struct {
	ID                  int64             `json:"id"`
	UserID              int64             `json:"user_id"`
	Email               string            `json:"email"`
	Username            string            `json:"username"`
	ProfileImage        *string           `json:"profile_image"`
	VerificationStatus  VerificationState `json:"verification_status"`
	RejectionReason     *string           `json:"rejection_reason"`
	UploadedAt          string            `json:"uploaded_at"`
	VerifiedByEmail     *string           `json:"verified_by_email"`
	CitizenshipFrontURL *string           `json:"citizenship_front_url"`
	CitizenshipBackURL  *string           `json:"citizenship_back_url"`
	CertificateURL      *string           `json:"certificate_url"`
}

// Document is one uploaded image shown in the admin carousel.
type Document struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Documents lists the present documents in display order.
func (r VerificationRequest) Documents() []Document {
	var docs []Document
	add := func(u *string, label string) {
		if u != nil && *u != "" {
			docs = append(docs, Document{URL: *u, Label: label})
		}
	}
	add(r.CitizenshipFrontURL, "Citizenship Front")
	add(r.CitizenshipBackURL, "Citizenship Back")
	add(r.CertificateURL, "Certificate")
	return docs
}

// VerificationStatus is the caregiver's own view of their submission. A nil
// VerificationStatus field means nothing was uploaded yet.
type VerificationStatus struct {
	VerificationStatus  *VerificationState `json:"verification_status"`
	RejectionReason     *string            `json:"rejection_reason"`
	CitizenshipFrontURL *string            `json:"citizenship_front_url"`
	CitizenshipBackURL  *string            `json:"citizenship_back_url"`
	CertificateURL      *string            `json:"certificate_url"`
	CanReupload         bool               `json:"can_reupload"`
	Message             string             `json:"message,omitempty"`
}

// State is the submission state, empty when nothing was uploaded.
func (s *VerificationStatus) State() string {
	if s == nil || s.VerificationStatus == nil {
		return ""
	}
	return string(*s.VerificationStatus)
}

// CanUpload reports whether the upload form should be offered.
func (s *VerificationStatus) CanUpload() bool {
	return s == nil || s.VerificationStatus == nil || s.CanReupload
}

type VerificationDecision struct {
	VerificationStatus VerificationState `json:"verification_status"`
	RejectionReason    string            `json:"rejection_reason,omitempty"`
}

// DocumentSet is the three files a caregiver submits together.
type DocumentSet struct {
	CitizenshipFront *Upload
	CitizenshipBack  *Upload
	Certificate      *Upload
}
