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

const recentBookings = 5

type DashboardHandler struct {
	base
	identity      *apiclient.Identity
	bookings      *apiclient.Bookings
	verifications *apiclient.Verifications
}

func NewDashboardHandler(
	identity *apiclient.Identity,
	bookings *apiclient.Bookings,
	verifications *apiclient.Verifications,
	logger *slog.Logger,
	eh *apperrors.ErrorHandler,
) *DashboardHandler {
	return &DashboardHandler{
		base:          newBase(logger, eh, "dashboard"),
		identity:      identity,
		bookings:      bookings,
		verifications: verifications,
	}
}

type CareseekerDashboardView struct {
	Bookings views.Resource[[]models.Booking] `json:"bookings"`
}

func (h *DashboardHandler) Careseeker(c *gin.Context) {
	ts := h.tokens(c)
	res := views.Fetch(c.Request.Context(), "Failed to load bookings", func(ctx context.Context) ([]models.Booking, error) {
		list, err := h.bookings.ListBookings(ctx, ts)
		return views.Recent(list, recentBookings), err
	})
	h.render(c, http.StatusOK, "careseeker_dashboard.html", h.page(c, "Dashboard", CareseekerDashboardView{Bookings: res}))
}

type CaregiverDashboardView struct {
	Profile           views.Resource[*models.Profile] `json:"profile"`
	ShowVerifyModal   bool                            `json:"show_verify_modal"`
	VerificationState string                          `json:"verification_state"`
}

// Caregiver shows the verification prompt once per session while the
// caregiver is not approved.
func (h *DashboardHandler) Caregiver(c *gin.Context) {
	ctx := c.Request.Context()
	ts := h.tokens(c)
	res := views.Fetch(ctx, "Failed to load profile", func(ctx context.Context) (*models.Profile, error) {
		return h.identity.GetProfile(ctx, ts)
	})

	view := CaregiverDashboardView{Profile: res}
	if p := res.Data; p != nil && p.VerificationStatus != nil {
		view.VerificationState = *p.VerificationStatus
	}

	if !res.Failed() && !res.Data.IsVerified() {
		sess := middleware.SessionFrom(c)
		shown, err := sess.VerificationModalShown(ctx)
		if err != nil {
			h.log(c).WarnContext(ctx, "Failed to read modal flag", slog.Any("error", err))
		} else if !shown {
			view.ShowVerifyModal = true
			if err := sess.MarkVerificationModalShown(ctx); err != nil {
				h.log(c).WarnContext(ctx, "Failed to store modal flag", slog.Any("error", err))
			}
		}
	}

	h.render(c, http.StatusOK, "caregiver_dashboard.html", h.page(c, "Dashboard", view))
}

type AdminDashboardView struct {
	Counts views.Resource[views.StatusCounts] `json:"counts"`
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	ts := h.tokens(c)
	res := views.Fetch(c.Request.Context(), "Failed to load verification requests", func(ctx context.Context) (views.StatusCounts, error) {
		list, err := h.verifications.AdminList(ctx, ts)
		return views.CountByStatus(list), err
	})
	h.render(c, http.StatusOK, "admin_dashboard.html", h.page(c, "Dashboard", AdminDashboardView{Counts: res}))
}
