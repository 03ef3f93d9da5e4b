package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"carenest/services/portal/apiclient"
	"carenest/services/portal/middleware"
	"carenest/services/portal/models"
	"carenest/services/portal/views"
	apperrors "carenest/shared/errors"
)

const profileSaveFailed = "Failed to update profile"

type ProfileHandler struct {
	base
	identity *apiclient.Identity
}

func NewProfileHandler(identity *apiclient.Identity, logger *slog.Logger, eh *apperrors.ErrorHandler) *ProfileHandler {
	return &ProfileHandler{
		base:     newBase(logger, eh, "profile"),
		identity: identity,
	}
}

type ProfileView struct {
	Profile   views.Resource[*models.Profile] `json:"profile"`
	Editable  bool                            `json:"editable"`
	Editing   bool                            `json:"editing"`
	Caregiver bool                            `json:"caregiver"`
	Form      views.ProfileForm               `json:"form"`
	Avatar    views.Avatar                    `json:"-"`
	Services  []string                        `json:"-"`
	Guide     []models.ServiceGuide           `json:"-"`
}

func (h *ProfileHandler) selfView(c *gin.Context, editing bool) ProfileView {
	ts := h.tokens(c)
	res := views.Fetch(c.Request.Context(), "Failed to load profile", func(ctx context.Context) (*models.Profile, error) {
		return h.identity.GetProfile(ctx, ts)
	})
	caregiver := middleware.SessionFrom(c).Role() == models.RoleCaregiver
	view := ProfileView{
		Profile:   res,
		Editable:  true,
		Editing:   editing && !res.Failed(),
		Caregiver: caregiver,
		Form:      views.ProfileFormFrom(res.Data),
		Avatar:    views.ProfileAvatar(res.Data),
		Services:  models.ServiceTypes,
	}
	if caregiver {
		view.Guide = models.ServicesGuide
	}
	return view
}

// Show renders the caller's own profile; ?mode=edit opens the form.
func (h *ProfileHandler) Show(c *gin.Context) {
	view := h.selfView(c, c.Query("mode") == "edit")
	h.render(c, http.StatusOK, "profile.html", h.page(c, "Profile", view))
}

// Save patches the common fields, then the caregiver details, then reloads.
// A failure at either step reports the same message; nothing is rolled back.
func (h *ProfileHandler) Save(c *gin.Context) {
	var form views.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.Error(middleware.BodyTooLarge(err))
			return
		}
		c.Error(apperrors.NewBadRequestError("Invalid profile form"))
		return
	}

	editAgain := func(status int, msg string) {
		view := h.selfView(c, true)
		view.Form = form
		p := h.page(c, "Profile", view)
		p.Error = msg
		h.render(c, status, "profile.html", p)
	}

	caregiver := middleware.SessionFrom(c).Role() == models.RoleCaregiver
	if caregiver {
		if err := form.Validate(); err != nil {
			appErr, _ := apperrors.As(err)
			h.errorHandler.LogError(c.Request.Context(), h.log(c), err)
			msg := profileSaveFailed
			if appErr != nil {
				msg = appErr.Message
			}
			editAgain(http.StatusUnprocessableEntity, msg)
			return
		}
	}

	image, err := readUpload(c, "profile_image", nil)
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	ts := h.tokens(c)
	if err := h.identity.UpdateProfile(ctx, ts, form.Update(image)); err != nil {
		h.errorHandler.LogError(ctx, h.log(c), apiclient.ToAppError(err, profileSaveFailed))
		editAgain(http.StatusBadGateway, profileSaveFailed)
		return
	}
	if caregiver {
		if err := h.identity.UpdateCaregiverProfile(ctx, ts, form.Details()); err != nil {
			h.errorHandler.LogError(ctx, h.log(c), apiclient.ToAppError(err, profileSaveFailed))
			editAgain(http.StatusBadGateway, profileSaveFailed)
			return
		}
	}

	h.log(c).InfoContext(ctx, "Profile updated")
	h.redirect(c, "/profile", success("Profile updated successfully!"))
}

// AdminShow is the read-only view of another user's profile.
func (h *ProfileHandler) AdminShow(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	ts := h.tokens(c)
	res := views.Fetch(c.Request.Context(), "Failed to load profile", func(ctx context.Context) (*models.Profile, error) {
		return h.identity.GetUserProfile(ctx, ts, userID)
	})
	view := ProfileView{
		Profile:   res,
		Caregiver: res.Data != nil && res.Data.Role == models.RoleCaregiver,
		Avatar:    views.ProfileAvatar(res.Data),
	}
	h.render(c, http.StatusOK, "profile.html", h.page(c, "Profile", view))
}
