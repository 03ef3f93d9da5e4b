package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"carenest/services/portal/apiclient"
	"carenest/services/portal/models"
	"carenest/services/portal/views"
	apperrors "carenest/shared/errors"
)

const verifyQueuePath = "/admin/verify-caregivers"

type VerificationHandler struct {
	base
	identity      *apiclient.Identity
	verifications *apiclient.Verifications
}

func NewVerificationHandler(
	identity *apiclient.Identity,
	verifications *apiclient.Verifications,
	logger *slog.Logger,
	eh *apperrors.ErrorHandler,
) *VerificationHandler {
	return &VerificationHandler{
		base:          newBase(logger, eh, "verification"),
		identity:      identity,
		verifications: verifications,
	}
}

// ---- caregiver side ----

type UploadView struct {
	Status    views.Resource[*models.VerificationStatus] `json:"status"`
	Documents []models.Document                          `json:"documents"`
	CanUpload bool                                       `json:"can_upload"`
}

func (h *VerificationHandler) uploadView(c *gin.Context) UploadView {
	ts := h.tokens(c)
	res := views.Fetch(c.Request.Context(), "Failed to load verification status", func(ctx context.Context) (*models.VerificationStatus, error) {
		return h.verifications.Status(ctx, ts)
	})
	view := UploadView{Status: res, CanUpload: res.Data.CanUpload()}
	if s := res.Data; s != nil {
		view.Documents = models.VerificationRequest{
			CitizenshipFrontURL: s.CitizenshipFrontURL,
			CitizenshipBackURL:  s.CitizenshipBackURL,
			CertificateURL:      s.CertificateURL,
		}.Documents()
	}
	return view
}

func (h *VerificationHandler) UploadPage(c *gin.Context) {
	h.render(c, http.StatusOK, "upload_documents.html", h.page(c, "Document verification", h.uploadView(c)))
}

func (h *VerificationHandler) Upload(c *gin.Context) {
	var set models.DocumentSet
	var err error
	for field, dst := range map[string]**models.Upload{
		"citizenship_front": &set.CitizenshipFront,
		"citizenship_back":  &set.CitizenshipBack,
		"certificate":       &set.Certificate,
	} {
		if *dst, err = readUpload(c, field, views.CheckDocumentSize); err != nil {
			if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.ErrorTypeValidation {
				h.renderInvalid(c, "upload_documents.html", h.page(c, "Document verification", h.uploadView(c)), err)
				return
			}
			c.Error(err)
			return
		}
	}

	if err := views.ValidateDocumentSet(set); err != nil {
		h.renderInvalid(c, "upload_documents.html", h.page(c, "Document verification", h.uploadView(c)), err)
		return
	}

	resp, err := h.verifications.UploadDocuments(c.Request.Context(), h.tokens(c), set)
	if err != nil {
		p := h.page(c, "Document verification", h.uploadView(c))
		h.renderUpstream(c, "upload_documents.html", p, err, apiclient.MessageOr(err, "Upload failed"))
		return
	}

	msg := "All documents uploaded successfully!"
	if resp != nil && resp.Message != "" {
		msg = resp.Message
	}
	h.redirect(c, "/caregiver/upload-documents", success(msg))
}

// ---- admin side ----

type queueState struct {
	Status models.VerificationState `json:"status"`
	Search string                   `json:"search"`
	Page   int                      `json:"page"`
}

func readQueueState(c *gin.Context) queueState {
	return queueState{
		Status: views.ParseStatusFilter(c.Request.FormValue("status")),
		Search: strings.TrimSpace(c.Request.FormValue("q")),
		Page:   views.ParsePage(c.Request.FormValue("page")),
	}
}

// URL is the queue address for this state, or for another page of it.
func (s queueState) URL(page int) string {
	q := url.Values{}
	q.Set("status", string(s.Status))
	if s.Search != "" {
		q.Set("q", s.Search)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	return verifyQueuePath + "?" + q.Encode()
}

// Tab is the address of a status tab. Switching tabs keeps the search and
// starts on page one.
func (s queueState) Tab(status models.VerificationState) string {
	return queueState{Status: status, Search: s.Search}.URL(1)
}

type QueueView struct {
	State        queueState                                             `json:"state"`
	Statuses     []models.VerificationState                             `json:"-"`
	Counts       views.StatusCounts                                     `json:"counts"`
	Requests     views.Resource[views.Page[models.VerificationRequest]] `json:"requests"`
	Confirm      *models.VerificationRequest                            `json:"confirm,omitempty"`
	Reject       *models.VerificationRequest                            `json:"reject,omitempty"`
	RejectReason string                                                 `json:"reject_reason,omitempty"`
	RejectError  string                                                 `json:"reject_error,omitempty"`
}

var queueStatuses = []models.VerificationState{
	models.VerificationPending,
	models.VerificationApproved,
	models.VerificationRejected,
}

// loadQueue fetches the whole list once and derives the visible page.
func (h *VerificationHandler) loadQueue(c *gin.Context, state queueState) (*QueueView, views.Resource[[]models.VerificationRequest]) {
	ts := h.tokens(c)
	all := views.Fetch(c.Request.Context(), "Failed to load verification requests", func(ctx context.Context) ([]models.VerificationRequest, error) {
		return h.verifications.AdminList(ctx, ts)
	})

	filtered := views.FilterVerifications(all.Data, state.Status, state.Search)
	page := views.Paginate(filtered, state.Page, views.PageSize)
	state.Page = page.Number

	return &QueueView{
		State:    state,
		Statuses: queueStatuses,
		Counts:   views.CountByStatus(all.Data),
		Requests: views.Resource[views.Page[models.VerificationRequest]]{Data: page, Err: all.Err},
	}, all
}

// queueUnavailable renders the queue with the list error when the dialog
// target cannot be looked up. It reports whether it rendered.
func (h *VerificationHandler) queueUnavailable(c *gin.Context, view *QueueView, all views.Resource[[]models.VerificationRequest]) bool {
	if !all.Failed() {
		return false
	}
	h.renderUpstream(c, "verify_caregivers.html", h.page(c, "Verify caregivers", view), all.Cause(), all.Err)
	return true
}

func findRequest(list []models.VerificationRequest, id int64) *models.VerificationRequest {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func (h *VerificationHandler) Queue(c *gin.Context) {
	view, _ := h.loadQueue(c, readQueueState(c))
	h.render(c, http.StatusOK, "verify_caregivers.html", h.page(c, "Verify caregivers", view))
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperrors.NewBadRequestError("Invalid " + name))
		return 0, false
	}
	return id, true
}

// Approve needs an explicit confirm=yes. Without it the confirmation dialog
// is rendered and nothing is sent.
func (h *VerificationHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	state := readQueueState(c)

	if c.PostForm("confirm") != "yes" {
		view, all := h.loadQueue(c, state)
		if h.queueUnavailable(c, view, all) {
			return
		}
		view.Confirm = findRequest(all.Data, id)
		if view.Confirm == nil {
			c.Error(apperrors.NewNotFoundError("Verification request not found"))
			return
		}
		h.render(c, http.StatusOK, "verify_caregivers.html", h.page(c, "Verify caregivers", view))
		return
	}

	decision := models.VerificationDecision{VerificationStatus: models.VerificationApproved}
	if err := h.verifications.AdminDecide(c.Request.Context(), h.tokens(c), id, decision); err != nil {
		h.errorHandler.LogError(c.Request.Context(), h.log(c), apiclient.ToAppError(err, "Approval failed"))
		h.redirect(c, state.URL(state.Page), failure(apiclient.MessageOr(err, "Approval failed")))
		return
	}

	h.log(c).InfoContext(c.Request.Context(), "Verification approved", slog.Int64("verification_id", id))
	h.redirect(c, state.URL(state.Page), success("Verification approved successfully"))
}

// Reject needs a non-blank reason; a blank one re-opens the dialog with a
// message and nothing is sent.
func (h *VerificationHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	state := readQueueState(c)
	reason := c.PostForm("rejection_reason")

	if strings.TrimSpace(reason) == "" {
		view, all := h.loadQueue(c, state)
		if h.queueUnavailable(c, view, all) {
			return
		}
		view.Reject = findRequest(all.Data, id)
		if view.Reject == nil {
			c.Error(apperrors.NewNotFoundError("Verification request not found"))
			return
		}
		view.RejectError = "Please provide a rejection reason"
		h.errorHandler.LogError(c.Request.Context(), h.log(c),
			apperrors.NewValidationError(view.RejectError, map[string]string{"field": "rejection_reason"}))
		h.render(c, http.StatusUnprocessableEntity, "verify_caregivers.html", h.page(c, "Verify caregivers", view))
		return
	}

	decision := models.VerificationDecision{
		VerificationStatus: models.VerificationRejected,
		RejectionReason:    reason,
	}
	if err := h.verifications.AdminDecide(c.Request.Context(), h.tokens(c), id, decision); err != nil {
		h.errorHandler.LogError(c.Request.Context(), h.log(c), apiclient.ToAppError(err, "Rejection failed"))
		h.redirect(c, state.URL(state.Page), failure(apiclient.MessageOr(err, "Rejection failed")))
		return
	}

	h.log(c).InfoContext(c.Request.Context(), "Verification rejected", slog.Int64("verification_id", id))
	h.redirect(c, state.URL(state.Page), success("Verification rejected"))
}

type DocumentsView struct {
	Request  models.VerificationRequest `json:"request"`
	Carousel views.Carousel             `json:"carousel"`
	Back     string                     `json:"-"`
}

func (h *VerificationHandler) Documents(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	list, err := h.verifications.AdminList(c.Request.Context(), h.tokens(c))
	if err != nil {
		c.Error(apiclient.ToAppError(err, "Failed to load verification requests"))
		return
	}
	req := findRequest(list, id)
	if req == nil {
		c.Error(apperrors.NewNotFoundError("Verification request not found"))
		return
	}

	index, _ := strconv.Atoi(c.Query("index"))
	carousel := views.NewCarousel(req.Documents(), index)
	if carousel.Empty() {
		c.Error(apperrors.NewNotFoundError("No documents uploaded"))
		return
	}

	view := DocumentsView{Request: *req, Carousel: carousel, Back: readQueueState(c).URL(1)}
	h.render(c, http.StatusOK, "documents.html", h.page(c, "Documents", view))
}

type ProfilePreviewView struct {
	Request models.VerificationRequest      `json:"request"`
	Profile views.Resource[*models.Profile] `json:"profile"`
}

// ProfilePreview shows the profile of the caregiver behind a verification
// request.
func (h *VerificationHandler) ProfilePreview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ts := h.tokens(c)

	list, err := h.verifications.AdminList(c.Request.Context(), ts)
	if err != nil {
		c.Error(apiclient.ToAppError(err, "Failed to load verification requests"))
		return
	}
	req := findRequest(list, id)
	if req == nil {
		c.Error(apperrors.NewNotFoundError("Verification request not found"))
		return
	}

	res := views.Fetch(c.Request.Context(), "Failed to load profile", func(ctx context.Context) (*models.Profile, error) {
		return h.identity.GetUserProfile(ctx, ts, req.UserID)
	})
	h.render(c, http.StatusOK, "profile_preview.html", h.page(c, "Caregiver profile", ProfilePreviewView{Request: *req, Profile: res}))
}
