package views

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"carenest/services/portal/models"
	apperrors "carenest/shared/errors"
)

const MaxDocumentSize = 5 << 20

var allowedDocumentTypes = []string{"image/jpeg", "image/png", "application/pdf"}

const missingDocumentsMessage = "Please upload all required documents (Citizenship Front, Citizenship Back, and Certificate)"

// ValidateDocument sniffs the upload and enforces the type and size limits.
// On success the upload's ContentType is set to the detected type.
func ValidateDocument(u *models.Upload) error {
	m := mimetype.Detect(u.Data)
	allowed := false
	for _, t := range allowedDocumentTypes {
		if m.Is(t) {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.NewValidationError("Only PDF, JPEG, PNG files are allowed", map[string]string{
			"file":     u.Filename,
			"detected": m.String(),
		})
	}
	if err := CheckDocumentSize(u.Filename, int64(len(u.Data))); err != nil {
		return err
	}
	u.ContentType = m.String()
	return nil
}

// CheckDocumentSize enforces MaxDocumentSize. Uploads call it on the
// multipart header before the file is read.
func CheckDocumentSize(filename string, size int64) error {
	if size <= MaxDocumentSize {
		return nil
	}
	return apperrors.NewValidationError(
		fmt.Sprintf("File size must be less than 5MB. Current size: %.2fMB", float64(size)/(1024*1024)),
		map[string]string{"file": filename},
	)
}

// ValidateDocumentSet requires all three files and checks each one.
func ValidateDocumentSet(set models.DocumentSet) error {
	files := []*models.Upload{set.CitizenshipFront, set.CitizenshipBack, set.Certificate}
	for _, f := range files {
		if f == nil || len(f.Data) == 0 {
			return apperrors.NewValidationError(missingDocumentsMessage, nil)
		}
	}
	for _, f := range files {
		if err := ValidateDocument(f); err != nil {
			return err
		}
	}
	return nil
}
