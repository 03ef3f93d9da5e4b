package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carenest/services/portal/apiclient"
	"carenest/services/portal/models"
	"carenest/services/portal/views"
	apperrors "carenest/shared/errors"
)

type BookingHandler struct {
	base
	identity *apiclient.Identity
	bookings *apiclient.Bookings
	now      func() time.Time
}

func NewBookingHandler(
	identity *apiclient.Identity,
	bookings *apiclient.Bookings,
	logger *slog.Logger,
	eh *apperrors.ErrorHandler,
) *BookingHandler {
	return &BookingHandler{
		base:     newBase(logger, eh, "booking"),
		identity: identity,
		bookings: bookings,
		now:      time.Now,
	}
}

type caregiverFilter struct {
	Query    string `form:"q" json:"q"`
	Service  string `form:"service" json:"service"`
	Location string `form:"location" json:"location"`
	Gender   string `form:"gender" json:"gender"`
}

type FindCaregiverView struct {
	Filter     caregiverFilter                    `json:"filter"`
	Caregivers views.Resource[[]models.Caregiver] `json:"caregivers"`
	Services   []string                           `json:"-"`
	Genders    []string                           `json:"-"`
}

// FindCaregiver forwards location and gender to the directory and applies
// the text and service filters locally.
func (h *BookingHandler) FindCaregiver(c *gin.Context) {
	var f caregiverFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.Error(apperrors.NewBadRequestError("Invalid filter"))
		return
	}

	ts := h.tokens(c)
	res := views.Fetch(c.Request.Context(), "Failed to load caregivers", func(ctx context.Context) ([]models.Caregiver, error) {
		list, err := h.bookings.ListCaregivers(ctx, ts, f.Location, f.Gender)
		return views.FilterCaregivers(list, f.Query, f.Service), err
	})

	view := FindCaregiverView{
		Filter:     f,
		Caregivers: res,
		Services:   models.ServiceTypes,
		Genders:    models.Genders,
	}
	h.render(c, http.StatusOK, "find_caregiver.html", h.page(c, "Find caregiver", view))
}

func (h *BookingHandler) findCaregiver(ctx context.Context, c *gin.Context, userID int64) (*models.Caregiver, error) {
	list, err := h.bookings.ListCaregivers(ctx, h.tokens(c), "", "")
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].UserID == userID {
			return &list[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("Caregiver not found")
}

type CaregiverProfileView struct {
	Profile  *models.Profile `json:"profile"`
	Fallback bool            `json:"fallback"`
}

// CaregiverProfile shows the full profile, falling back to the directory
// entry when the profile endpoint refuses.
func (h *BookingHandler) CaregiverProfile(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	profile, err := h.identity.GetUserProfile(ctx, h.tokens(c), userID)
	if err == nil {
		h.render(c, http.StatusOK, "caregiver_profile.html", h.page(c, "Caregiver profile", CaregiverProfileView{Profile: profile}))
		return
	}
	h.log(c).DebugContext(ctx, "Profile fetch failed, using directory entry",
		slog.Int64("user_id", userID), slog.Any("error", err))

	cg, err := h.findCaregiver(ctx, c, userID)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			c.Error(appErr)
		} else {
			c.Error(apiclient.ToAppError(err, "Failed to load caregiver"))
		}
		return
	}
	view := CaregiverProfileView{Profile: cg.FallbackProfile(), Fallback: true}
	h.render(c, http.StatusOK, "caregiver_profile.html", h.page(c, "Caregiver profile", view))
}

var bookingDurations = []int{1, 2, 3, 4, 5, 6, 7, 8}

type BookingFormView struct {
	Caregiver     *models.Caregiver `json:"caregiver"`
	CaregiverID   int64             `json:"caregiver_id"`
	Form          views.BookingForm `json:"form"`
	Services      []string          `json:"-"`
	Relationships []string          `json:"-"`
	Durations     []int             `json:"-"`
	MinDate       string            `json:"min_date"`
}

func (h *BookingHandler) formView(c *gin.Context, userID int64, form views.BookingForm) BookingFormView {
	view := BookingFormView{
		CaregiverID:   userID,
		Form:          form,
		Services:      models.ServiceTypes,
		Relationships: models.Relationships,
		Durations:     bookingDurations,
		MinDate:       views.MinBookingDate(h.now()),
	}
	cg, err := h.findCaregiver(c.Request.Context(), c, userID)
	if err != nil {
		h.log(c).WarnContext(c.Request.Context(), "Caregiver lookup failed",
			slog.Int64("user_id", userID), slog.Any("error", err))
	}
	view.Caregiver = cg
	return view
}

func (h *BookingHandler) BookingForm(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	view := h.formView(c, userID, views.NewBookingForm())
	h.render(c, http.StatusOK, "booking_form.html", h.page(c, "Book caregiver", view))
}

// CreateBooking validates the form and sends exactly one booking request
// when it passes.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	form := views.NewBookingForm()
	if err := c.ShouldBind(&form); err != nil {
		c.Error(apperrors.NewBadRequestError("Invalid booking form"))
		return
	}

	if err := form.Validate(); err != nil {
		h.renderInvalid(c, "booking_form.html", h.page(c, "Book caregiver", h.formView(c, userID, form)), err)
		return
	}

	ctx := c.Request.Context()
	if err := h.bookings.CreateBooking(ctx, h.tokens(c), form.Request(userID)); err != nil {
		msg := apiclient.MessageOr(err, "Booking failed")
		h.renderUpstream(c, "booking_form.html", h.page(c, "Book caregiver", h.formView(c, userID, form)), err, msg)
		return
	}

	h.log(c).InfoContext(ctx, "Booking requested", slog.Int64("caregiver_id", userID))
	h.redirect(c, "/careseeker/find-caregiver", success("Booking request sent successfully"))
}

type BookingsView struct {
	Bookings views.Resource[[]models.Booking] `json:"bookings"`
}

func (h *BookingHandler) CareseekerBookings(c *gin.Context) {
	ts := h.tokens(c)
	res := views.Fetch(c.Request.Context(), "Failed to load bookings", func(ctx context.Context) ([]models.Booking, error) {
		return h.bookings.ListBookings(ctx, ts)
	})
	h.render(c, http.StatusOK, "careseeker_bookings.html", h.page(c, "My bookings", BookingsView{Bookings: res}))
}

type BookingRequestsView struct {
	Pending     []models.Booking `json:"pending"`
	Others      []models.Booking `json:"others"`
	HasAccepted bool             `json:"has_accepted"`
}

// BookingRequests lists incoming requests. A failed fetch shows an empty
// list.
func (h *BookingHandler) BookingRequests(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.bookings.ListBookings(ctx, h.tokens(c))
	if err != nil {
		h.errorHandler.LogError(ctx, h.log(c), apiclient.ToAppError(err, "Failed to load bookings"))
		list = nil
	}
	pending, others, hasAccepted := views.SplitBookings(list)
	view := BookingRequestsView{Pending: pending, Others: others, HasAccepted: hasAccepted}
	h.render(c, http.StatusOK, "booking_requests.html", h.page(c, "Booking requests", view))
}

// Respond forwards accept or reject. The one-accepted-booking rule is only
// enforced by the disabled button.
func (h *BookingHandler) Respond(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	status := models.BookingStatus(c.PostForm("status"))
	if status != models.BookingAccepted && status != models.BookingRejected {
		h.redirect(c, "/caregiver/booking-requests", failure("Failed to update booking"))
		return
	}

	ctx := c.Request.Context()
	if err := h.bookings.RespondBooking(ctx, h.tokens(c), id, status); err != nil {
		h.errorHandler.LogError(ctx, h.log(c), apiclient.ToAppError(err, "Failed to update booking"))
		h.redirect(c, "/caregiver/booking-requests", failure(apiclient.MessageOr(err, "Failed to update booking")))
		return
	}

	h.log(c).InfoContext(ctx, "Booking answered", slog.Int64("booking_id", id), slog.String("status", string(status)))
	h.redirect(c, "/caregiver/booking-requests", nil)
}
