package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"carenest/services/portal/models"
)

// Identity wraps the user/ endpoints: registration, login, OTP, password
// reset and profiles.
type Identity struct {
	c *Client
}

func NewIdentity(c *Client) *Identity {
	return &Identity{c: c}
}

func (i *Identity) Register(ctx context.Context, dto models.RegisterDTO) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := i.c.Do(ctx, nil, Request{Method: http.MethodPost, Path: "register/", Body: dto, Public: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *Identity) VerifyOTP(ctx context.Context, dto models.VerifyOTPDTO) error {
	return i.c.Do(ctx, nil, Request{Method: http.MethodPost, Path: "verify-otp/", Body: dto, Public: true}, nil)
}

func (i *Identity) Login(ctx context.Context, dto models.LoginDTO) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := i.c.Do(ctx, nil, Request{Method: http.MethodPost, Path: "login/", Body: dto, Public: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *Identity) SendResetPasswordEmail(ctx context.Context, dto models.PasswordResetEmailDTO) error {
	return i.c.Do(ctx, nil, Request{
		Method: http.MethodPost,
		Path:   "send-reset-password-email/",
		Body:   dto,
		Public: true,
	}, nil)
}

// ResetPassword takes uid and token unescaped; Do escapes the path once.
func (i *Identity) ResetPassword(ctx context.Context, uid, token string, dto models.PasswordResetDTO) error {
	return i.c.Do(ctx, nil, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("reset-password/%s/%s/", uid, token),
		Body:   dto,
		Public: true,
	}, nil)
}

func (i *Identity) GetProfile(ctx context.Context, ts oauth2.TokenSource) (*models.Profile, error) {
	var out models.Profile
	if err := i.c.Do(ctx, ts, Request{Method: http.MethodGet, Path: "profile/"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends the common fields as multipart so the optional image
// can ride along.
func (i *Identity) UpdateProfile(ctx context.Context, ts oauth2.TokenSource, upd models.ProfileUpdate) error {
	form := &MultipartForm{
		Fields: []Field{
			{Name: "phone", Value: upd.Phone},
			{Name: "address", Value: upd.Address},
		},
	}
	if upd.Image != nil {
		form.Files = append(form.Files, File{Field: "profile_image", Upload: upd.Image})
	}
	return i.c.Do(ctx, ts, Request{Method: http.MethodPatch, Path: "profile/", Form: form}, nil)
}

func (i *Identity) UpdateCaregiverProfile(ctx context.Context, ts oauth2.TokenSource, details models.CaregiverDetails) error {
	if details.ServiceTypes == nil {
		details.ServiceTypes = []string{}
	}
	return i.c.Do(ctx, ts, Request{Method: http.MethodPatch, Path: "profile/caregiver/", Body: details}, nil)
}

// GetUserProfile is the admin read of another user's profile. The booking
// page also uses it for the caregiver preview.
func (i *Identity) GetUserProfile(ctx context.Context, ts oauth2.TokenSource, userID int64) (*models.Profile, error) {
	var out models.Profile
	path := fmt.Sprintf("admin/profile/%d/", userID)
	if err := i.c.Do(ctx, ts, Request{Method: http.MethodGet, Path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
