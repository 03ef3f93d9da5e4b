package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenest/services/portal/models"
	"carenest/services/portal/session"
	config "carenest/shared"
	base "carenest/shared/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstreamCall struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// fakeAPI stands in for the CareNest REST server.
type fakeAPI struct {
	mu            sync.Mutex
	calls         []upstreamCall
	verifications []models.VerificationRequest
	listDown      bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{verifications: []models.VerificationRequest{
		{ID: 1, UserID: 11, Username: "asha", Email: "asha@example.com", VerificationStatus: models.VerificationPending},
		{ID: 2, UserID: 12, Username: "bina", Email: "bina@example.com", VerificationStatus: models.VerificationPending},
		{ID: 3, UserID: 13, Username: "chandra", Email: "chandra@example.com", VerificationStatus: models.VerificationApproved},
	}}
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last(method, path string) (upstreamCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method == method && f.calls[i].Path == path {
			return f.calls[i], true
		}
	}
	return upstreamCall{}, false
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, upstreamCall{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: string(body)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	write := func(status int, v any) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/user/login/":
		var dto models.LoginDTO
		_ = json.Unmarshal(body, &dto)
		role := models.Role(strings.SplitN(dto.Email, "@", 2)[0])
		if !role.Valid() || dto.Password != "secret" {
			write(http.StatusBadRequest, map[string]string{"error": "Invalid credentials"})
			return
		}
		write(http.StatusOK, models.LoginResponse{
			Message: "Login successful",
			Email:   dto.Email,
			Token:   models.TokenPair{Access: "access-" + string(role), Refresh: "refresh"},
			Role:    role,
			UserID:  42,
		})

	case r.Method == http.MethodGet && r.URL.Path == "/api/verifications/admin/list/":
		f.mu.Lock()
		list := append([]models.VerificationRequest(nil), f.verifications...)
		down := f.listDown
		f.mu.Unlock()
		if down {
			write(http.StatusInternalServerError, map[string]string{"error": "Database unavailable"})
			return
		}
		write(http.StatusOK, map[string]any{"results": list})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/verifications/admin/"):
		var id int64
		if _, err := fmt.Sscanf(r.URL.Path, "/api/verifications/admin/%d/verify/", &id); err != nil {
			write(http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		var d models.VerificationDecision
		_ = json.Unmarshal(body, &d)
		f.mu.Lock()
		for i := range f.verifications {
			if f.verifications[i].ID == id {
				f.verifications[i].VerificationStatus = d.VerificationStatus
			}
		}
		f.mu.Unlock()
		write(http.StatusOK, map[string]string{"message": "updated"})

	case r.Method == http.MethodGet && r.URL.Path == "/api/bookings/caregivers/":
		write(http.StatusOK, []models.Caregiver{
			{UserID: 7, Username: "asha", ServiceTypes: []string{"Meal Preparation"}},
		})

	case r.Method == http.MethodPost && r.URL.Path == "/api/bookings/":
		write(http.StatusCreated, map[string]string{"message": "created"})

	case r.Method == http.MethodGet && r.URL.Path == "/api/user/profile/":
		pending := string(models.VerificationPending)
		write(http.StatusOK, models.Profile{
			Username:           "giver",
			Email:              "caregiver@example.com",
			Role:               models.RoleCaregiver,
			VerificationStatus: &pending,
			CaregiverDetails:   &models.CaregiverDetails{ServiceTypes: []string{"Meal Preparation"}},
		})

	case r.Method == http.MethodPatch && (r.URL.Path == "/api/user/profile/" || r.URL.Path == "/api/user/profile/caregiver/"):
		write(http.StatusOK, map[string]string{"message": "updated"})

	case r.Method == http.MethodGet && r.URL.Path == "/api/verifications/status/":
		write(http.StatusOK, map[string]any{"verification_status": nil, "can_reupload": false})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/user/admin/profile/"):
		if r.URL.Path != "/api/user/admin/profile/12/" {
			write(http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
			return
		}
		write(http.StatusOK, models.Profile{Username: "bina", Email: "bina@example.com", Role: models.RoleCaregiver})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/bookings/"):
		write(http.StatusOK, map[string]string{"message": "updated"})

	case r.Method == http.MethodGet && r.URL.Path == "/api/bookings/list/":
		write(http.StatusOK, []models.Booking{})

	default:
		write(http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
}

func newTestServer(t *testing.T) (*Server, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		App: config.AppConfig{Name: "carenest-portal", Environment: "development", Version: "test"},
		API: config.APIConfig{BaseURL: upstream.URL + "/api", Timeout: 5 * time.Second},
		Session: config.SessionConfig{
			Backend:    "memory",
			CookieName: "carenest_session",
			Secret:     "test-secret-that-is-at-least-32-chars",
			TTL:        time.Hour,
		},
		HTTP: config.HTTPConfig{MaxUploadSize: 16 << 20},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	bs, err := base.NewBaseServer("portal", cfg, log)
	require.NoError(t, err)
	srv, err := NewServer(bs, session.NewMemoryStorage())
	require.NoError(t, err)
	return srv, api
}

// browser keeps the session cookie between requests.
type browser struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	if form == nil {
		return b.doRaw(method, path, "", nil)
	}
	return b.doRaw(method, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (b *browser) doRaw(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.h.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "carenest_session" {
			b.cookie = c
		}
	}
	return w
}

func loginAs(t *testing.T, srv *Server, role models.Role) *browser {
	t.Helper()
	b := &browser{t: t, h: srv.Router()}
	w := b.do(http.MethodPost, "/login", url.Values{
		"email":    {string(role) + "@example.com"},
		"password": {"secret"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, role.HomePath(), w.Header().Get("Location"))
	return b
}

type pageEnvelope[T any] struct {
	Title         string        `json:"title"`
	Authenticated bool          `json:"authenticated"`
	Role          models.Role   `json:"role"`
	Flash         *models.Flash `json:"flash"`
	Error         string        `json:"error"`
	Data          T             `json:"data"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) pageEnvelope[T] {
	t.Helper()
	var p pageEnvelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p), w.Body.String())
	return p
}

type queueData struct {
	Counts struct {
		Pending  int `json:"pending"`
		Approved int `json:"approved"`
		Rejected int `json:"rejected"`
	} `json:"counts"`
	Requests struct {
		Data struct {
			Items []models.VerificationRequest `json:"items"`
			Page  int                          `json:"page"`
		} `json:"data"`
	} `json:"requests"`
	Confirm     *models.VerificationRequest `json:"confirm"`
	Reject      *models.VerificationRequest `json:"reject"`
	RejectError string                      `json:"reject_error"`
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var h HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.True(t, h.Healthy)
	assert.Equal(t, "UP", h.Services["session_storage"])
}

func TestLoginRedirectsByRole(t *testing.T) {
	srv, api := newTestServer(t)

	for _, role := range []models.Role{models.RoleAdmin, models.RoleCaregiver, models.RoleCareseeker} {
		t.Run(string(role), func(t *testing.T) {
			loginAs(t, srv, role)
		})
	}

	call, ok := api.last(http.MethodPost, "/api/user/login/")
	require.True(t, ok)
	assert.Empty(t, call.Auth)
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	b := &browser{t: t, h: srv.Router()}

	w := b.do(http.MethodPost, "/login", url.Values{"email": {"admin@example.com"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	p := decode[map[string]any](t, w)
	assert.Equal(t, "Invalid credentials", p.Error)
	assert.False(t, p.Authenticated)
}

func TestLoginLockout(t *testing.T) {
	srv, api := newTestServer(t)
	b := &browser{t: t, h: srv.Router()}
	form := url.Values{"email": {"admin@example.com"}, "password": {"wrong"}}

	for i := 0; i < 5; i++ {
		b.do(http.MethodPost, "/login", form)
	}
	w := b.do(http.MethodPost, "/login", form)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, decode[map[string]any](t, w).Error, "Too many login attempts")
	assert.Equal(t, 5, api.count(http.MethodPost, "/api/user/login/"))
}

func TestGuardsRedirectToLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	anon := &browser{t: t, h: srv.Router()}
	w := anon.do(http.MethodGet, "/admin/verify-caregivers", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	seeker := loginAs(t, srv, models.RoleCareseeker)
	for _, path := range []string{"/admin/dashboard", "/caregiver/booking-requests"} {
		w := seeker.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}

	admin := loginAs(t, srv, models.RoleAdmin)
	w = admin.do(http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	b := loginAs(t, srv, models.RoleCareseeker)

	w := b.do(http.MethodPost, "/logout", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = b.do(http.MethodGet, "/careseeker/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLoginIssuesFreshSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	b := &browser{t: t, h: srv.Router()}

	b.do(http.MethodGet, "/login", nil)
	require.NotNil(t, b.cookie)
	planted := b.cookie

	w := b.do(http.MethodPost, "/login", url.Values{
		"email":    {"admin@example.com"},
		"password": {"secret"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.NotNil(t, b.cookie)
	assert.NotEqual(t, planted.Value, b.cookie.Value)

	w = b.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	other := &browser{t: t, h: srv.Router(), cookie: planted}
	w = other.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogoutIssuesFreshSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	b := loginAs(t, srv, models.RoleAdmin)
	before := b.cookie

	b.do(http.MethodPost, "/logout", url.Values{})
	assert.NotEqual(t, before.Value, b.cookie.Value)

	replay := &browser{t: t, h: srv.Router(), cookie: before}
	w := replay.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestVerificationQueuePaginates(t *testing.T) {
	srv, api := newTestServer(t)
	api.verifications = nil
	for i := 1; i <= 7; i++ {
		api.verifications = append(api.verifications, models.VerificationRequest{
			ID: int64(i), Username: fmt.Sprintf("cg%d", i), VerificationStatus: models.VerificationPending,
		})
	}
	admin := loginAs(t, srv, models.RoleAdmin)

	w := admin.do(http.MethodGet, "/admin/verify-caregivers?status=pending&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[queueData](t, w)
	assert.Equal(t, 2, p.Data.Requests.Data.Page)
	assert.Len(t, p.Data.Requests.Data.Items, 2)
	assert.Equal(t, 7, p.Data.Counts.Pending)

	w = admin.do(http.MethodGet, "/admin/verify-caregivers?page=9", nil)
	assert.Equal(t, 2, decode[queueData](t, w).Data.Requests.Data.Page)
}

func TestRejectRequiresReason(t *testing.T) {
	srv, api := newTestServer(t)
	admin := loginAs(t, srv, models.RoleAdmin)

	w := admin.do(http.MethodPost, "/admin/verify-caregivers/1/reject", url.Values{"rejection_reason": {"   "}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	p := decode[queueData](t, w)
	assert.Equal(t, "Please provide a rejection reason", p.Data.RejectError)
	require.NotNil(t, p.Data.Reject)
	assert.Equal(t, int64(1), p.Data.Reject.ID)
	assert.Zero(t, api.count(http.MethodPut, "/api/verifications/admin/1/verify/"))
}

func TestRejectSendsOnceAndRefreshes(t *testing.T) {
	srv, api := newTestServer(t)
	admin := loginAs(t, srv, models.RoleAdmin)

	w := admin.do(http.MethodPost, "/admin/verify-caregivers/1/reject", url.Values{
		"rejection_reason": {"Certificate is unreadable"},
		"status":           {"pending"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, api.count(http.MethodPut, "/api/verifications/admin/1/verify/"))

	call, _ := api.last(http.MethodPut, "/api/verifications/admin/1/verify/")
	assert.Equal(t, "Bearer access-admin", call.Auth)
	assert.Contains(t, call.Body, `"verification_status":"rejected"`)
	assert.Contains(t, call.Body, `"rejection_reason":"Certificate is unreadable"`)

	listsBefore := api.count(http.MethodGet, "/api/verifications/admin/list/")
	w = admin.do(http.MethodGet, w.Header().Get("Location"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[queueData](t, w)

	assert.Equal(t, listsBefore+1, api.count(http.MethodGet, "/api/verifications/admin/list/"))
	require.NotNil(t, p.Flash)
	assert.Equal(t, "Verification rejected", p.Flash.Message)
	assert.Equal(t, 1, p.Data.Counts.Pending)
	assert.Equal(t, 1, p.Data.Counts.Rejected)
	for _, r := range p.Data.Requests.Data.Items {
		assert.NotEqual(t, int64(1), r.ID)
	}

	// the banner is shown once
	w = admin.do(http.MethodGet, "/admin/verify-caregivers", nil)
	assert.Nil(t, decode[queueData](t, w).Flash)
}

func TestApproveNeedsConfirmation(t *testing.T) {
	srv, api := newTestServer(t)
	admin := loginAs(t, srv, models.RoleAdmin)

	w := admin.do(http.MethodPost, "/admin/verify-caregivers/2/approve", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[queueData](t, w)
	require.NotNil(t, p.Data.Confirm)
	assert.Equal(t, "bina", p.Data.Confirm.Username)
	assert.Zero(t, api.count(http.MethodPut, "/api/verifications/admin/2/verify/"))

	w = admin.do(http.MethodPost, "/admin/verify-caregivers/2/approve", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, api.count(http.MethodPut, "/api/verifications/admin/2/verify/"))
	call, _ := api.last(http.MethodPut, "/api/verifications/admin/2/verify/")
	assert.Contains(t, call.Body, `"verification_status":"approved"`)
	assert.NotContains(t, call.Body, "rejection_reason")
}

func bookingForm() url.Values {
	return url.Values{
		"service_types":           {"Meal Preparation"},
		"person_name":             {"Mother"},
		"person_age":              {"70"},
		"date":                    {"2026-11-02"},
		"start_time":              {"09:00"},
		"duration_hours":          {"3"},
		"emergency_contact_phone": {"9800000000"},
	}
}

func TestVerificationDialogsReportListFailure(t *testing.T) {
	srv, api := newTestServer(t)
	api.listDown = true
	admin := loginAs(t, srv, models.RoleAdmin)

	w := admin.do(http.MethodPost, "/admin/verify-caregivers/1/approve", url.Values{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database unavailable", decode[map[string]any](t, w).Error)

	w = admin.do(http.MethodPost, "/admin/verify-caregivers/1/reject", url.Values{"rejection_reason": {"  "}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database unavailable", decode[map[string]any](t, w).Error)

	assert.Zero(t, api.count(http.MethodPut, "/api/verifications/admin/1/verify/"))
}

func TestCreateBookingInvalidSendsNothing(t *testing.T) {
	srv, api := newTestServer(t)
	seeker := loginAs(t, srv, models.RoleCareseeker)

	form := bookingForm()
	form.Set("person_age", "0")
	w := seeker.do(http.MethodPost, "/careseeker/find-caregiver/7/book", form)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Please enter a valid age", decode[map[string]any](t, w).Error)
	assert.Zero(t, api.count(http.MethodPost, "/api/bookings/"))
}

func TestCreateBookingSendsOnce(t *testing.T) {
	srv, api := newTestServer(t)
	seeker := loginAs(t, srv, models.RoleCareseeker)

	w := seeker.do(http.MethodPost, "/careseeker/find-caregiver/7/book", bookingForm())

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/careseeker/find-caregiver", w.Header().Get("Location"))
	assert.Equal(t, 1, api.count(http.MethodPost, "/api/bookings/"))

	call, _ := api.last(http.MethodPost, "/api/bookings/")
	var req models.CreateBookingRequest
	require.NoError(t, json.Unmarshal([]byte(call.Body), &req))
	assert.Equal(t, int64(7), req.Caregiver)
	assert.Equal(t, 70, req.PersonAge)
	assert.Equal(t, 3, req.DurationHours)
	assert.Equal(t, []string{"Meal Preparation"}, req.ServiceTypes)
	assert.Equal(t, "Bearer access-careseeker", call.Auth)

	w = seeker.do(http.MethodGet, "/careseeker/find-caregiver", nil)
	p := decode[map[string]any](t, w)
	require.NotNil(t, p.Flash)
	assert.Equal(t, "Booking request sent successfully", p.Flash.Message)
}

func TestLoginPageRendersHTML(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Accept", "text/html")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<form method="post" action="/login"`)
	assert.Contains(t, w.Body.String(), "Log in · CareNest")
}

func TestCaregiverVerificationModalShownOnce(t *testing.T) {
	srv, _ := newTestServer(t)
	giver := loginAs(t, srv, models.RoleCaregiver)

	type dashboard struct {
		ShowVerifyModal   bool   `json:"show_verify_modal"`
		VerificationState string `json:"verification_state"`
	}

	first := decode[dashboard](t, giver.do(http.MethodGet, "/caregiver/dashboard", nil))
	assert.True(t, first.Data.ShowVerifyModal)
	assert.Equal(t, "pending", first.Data.VerificationState)

	second := decode[dashboard](t, giver.do(http.MethodGet, "/caregiver/dashboard", nil))
	assert.False(t, second.Data.ShowVerifyModal)

	// a new login shows it again
	giver.do(http.MethodPost, "/logout", url.Values{})
	again := loginAs(t, srv, models.RoleCaregiver)
	assert.True(t, decode[dashboard](t, again.do(http.MethodGet, "/caregiver/dashboard", nil)).Data.ShowVerifyModal)
}

func TestUploadRequiresAllDocuments(t *testing.T) {
	srv, api := newTestServer(t)
	giver := loginAs(t, srv, models.RoleCaregiver)

	w := giver.do(http.MethodPost, "/caregiver/upload-documents", url.Values{})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t,
		"Please upload all required documents (Citizenship Front, Citizenship Back, and Certificate)",
		decode[map[string]any](t, w).Error)
	assert.Zero(t, api.count(http.MethodPost, "/api/verifications/upload-document/"))
}

func multipartFiles(t *testing.T, files map[string][]byte) (string, *bytes.Buffer) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".pdf")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), body
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	srv, api := newTestServer(t)
	giver := loginAs(t, srv, models.RoleCaregiver)

	ct, body := multipartFiles(t, map[string][]byte{"certificate": make([]byte, 17<<20)})
	w := giver.doRaw(http.MethodPost, "/caregiver/upload-documents", ct, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Upload is too large. The limit is 16MB", decode[map[string]any](t, w).Error)
	assert.Zero(t, api.count(http.MethodPost, "/api/verifications/upload-document/"))
}

func TestUploadRejectsOversizedDocument(t *testing.T) {
	srv, api := newTestServer(t)
	giver := loginAs(t, srv, models.RoleCaregiver)

	ct, body := multipartFiles(t, map[string][]byte{"certificate": make([]byte, 6<<20)})
	w := giver.doRaw(http.MethodPost, "/caregiver/upload-documents", ct, body)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "File size must be less than 5MB. Current size: 6.00MB", decode[map[string]any](t, w).Error)
	assert.Zero(t, api.count(http.MethodPost, "/api/verifications/upload-document/"))
}

func TestProfileSaveRejectsOversizedBody(t *testing.T) {
	srv, api := newTestServer(t)
	seeker := loginAs(t, srv, models.RoleCareseeker)

	ct, body := multipartFiles(t, map[string][]byte{"profile_image": make([]byte, 17<<20)})
	w := seeker.doRaw(http.MethodPost, "/profile", ct, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, api.count(http.MethodPatch, "/api/user/profile/"))
}

func TestProfileSave(t *testing.T) {
	srv, api := newTestServer(t)
	giver := loginAs(t, srv, models.RoleCaregiver)

	w := giver.do(http.MethodPost, "/profile", url.Values{"phone": {"98"}, "certification_year": {"1850"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Certification year must be between 1900 and 2100", decode[map[string]any](t, w).Error)
	assert.Zero(t, api.count(http.MethodPatch, "/api/user/profile/"))

	w = giver.do(http.MethodPost, "/profile", url.Values{
		"phone":              {"9800000000"},
		"address":            {"Lalitpur"},
		"service_types":      {"Meal Preparation", "Mobility Assistance"},
		"certification_year": {"2020"},
		"gender":             {"female"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile", w.Header().Get("Location"))
	assert.Equal(t, 1, api.count(http.MethodPatch, "/api/user/profile/"))
	assert.Equal(t, 1, api.count(http.MethodPatch, "/api/user/profile/caregiver/"))

	call, _ := api.last(http.MethodPatch, "/api/user/profile/caregiver/")
	assert.Contains(t, call.Body, `"certification_year":2020`)
	assert.Contains(t, call.Body, `"service_types":["Meal Preparation","Mobility Assistance"]`)

	p := decode[map[string]any](t, giver.do(http.MethodGet, "/profile", nil))
	require.NotNil(t, p.Flash)
	assert.Equal(t, "Profile updated successfully!", p.Flash.Message)
}

func TestProfilePreviewResolvesUser(t *testing.T) {
	srv, api := newTestServer(t)
	admin := loginAs(t, srv, models.RoleAdmin)

	type preview struct {
		Request models.VerificationRequest `json:"request"`
		Profile struct {
			Data *models.Profile `json:"data"`
		} `json:"profile"`
	}

	w := admin.do(http.MethodGet, "/admin/verify-caregivers/2/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[preview](t, w)
	assert.Equal(t, int64(12), p.Data.Request.UserID)
	require.NotNil(t, p.Data.Profile.Data)
	assert.Equal(t, "bina", p.Data.Profile.Data.Username)
	assert.Equal(t, 1, api.count(http.MethodGet, "/api/user/admin/profile/12/"))

	w = admin.do(http.MethodGet, "/admin/verify-caregivers/99/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaregiverProfileFallsBackToDirectory(t *testing.T) {
	srv, _ := newTestServer(t)
	seeker := loginAs(t, srv, models.RoleCareseeker)

	type profileView struct {
		Profile  *models.Profile `json:"profile"`
		Fallback bool            `json:"fallback"`
	}

	w := seeker.do(http.MethodGet, "/careseeker/find-caregiver/7/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[profileView](t, w)
	assert.True(t, p.Data.Fallback)
	require.NotNil(t, p.Data.Profile)
	assert.Equal(t, "asha", p.Data.Profile.Username)
	assert.True(t, p.Data.Profile.IsVerified())

	w = seeker.do(http.MethodGet, "/careseeker/find-caregiver/8/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondToBooking(t *testing.T) {
	srv, api := newTestServer(t)
	giver := loginAs(t, srv, models.RoleCaregiver)

	w := giver.do(http.MethodPost, "/caregiver/booking-requests/5/respond", url.Values{"status": {"maybe"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Zero(t, api.count(http.MethodPut, "/api/bookings/5/respond/"))

	w = giver.do(http.MethodPost, "/caregiver/booking-requests/5/respond", url.Values{"status": {"accepted"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/caregiver/booking-requests", w.Header().Get("Location"))
	assert.Equal(t, 1, api.count(http.MethodPut, "/api/bookings/5/respond/"))

	call, _ := api.last(http.MethodPut, "/api/bookings/5/respond/")
	assert.JSONEq(t, `{"status":"accepted"}`, call.Body)
}
