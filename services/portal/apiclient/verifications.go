package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"carenest/services/portal/models"
)

// Verifications wraps the verifications/ endpoints. Every call is
// authenticated.
type Verifications struct {
	c *Client
}

func NewVerifications(c *Client) *Verifications {
	return &Verifications{c: c}
}

// Status returns the caregiver's own submission. When nothing was uploaded
// the returned VerificationStatus field is nil.
func (v *Verifications) Status(ctx context.Context, ts oauth2.TokenSource) (*models.VerificationStatus, error) {
	var out models.VerificationStatus
	if err := v.c.Do(ctx, ts, Request{Method: http.MethodGet, Path: "status/"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (v *Verifications) UploadDocuments(ctx context.Context, ts oauth2.TokenSource, docs models.DocumentSet) (*models.MessageResponse, error) {
	form := &MultipartForm{Files: []File{
		{Field: "citizenship_front", Upload: docs.CitizenshipFront},
		{Field: "citizenship_back", Upload: docs.CitizenshipBack},
		{Field: "certificate", Upload: docs.Certificate},
	}}
	var out models.MessageResponse
	if err := v.c.Do(ctx, ts, Request{Method: http.MethodPost, Path: "upload-document/", Form: form}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminList fetches every verification request regardless of status. The
// server answers either a bare array or a {"results": [...]} envelope.
func (v *Verifications) AdminList(ctx context.Context, ts oauth2.TokenSource) ([]models.VerificationRequest, error) {
	var raw json.RawMessage
	q := url.Values{"all": []string{"true"}}
	if err := v.c.Do(ctx, ts, Request{Method: http.MethodGet, Path: "admin/list/", Query: q}, &raw); err != nil {
		return nil, err
	}
	return decodeVerificationList(raw)
}

func decodeVerificationList(raw json.RawMessage) ([]models.VerificationRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []models.VerificationRequest
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode verification list: %w", err)
		}
		return list, nil
	}
	var envelope struct {
		Results []models.VerificationRequest `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode verification list: %w", err)
	}
	return envelope.Results, nil
}

func (v *Verifications) AdminDecide(ctx context.Context, ts oauth2.TokenSource, id int64, decision models.VerificationDecision) error {
	return v.c.Do(ctx, ts, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("admin/%d/verify/", id),
		Body:   decision,
	}, nil)
}
