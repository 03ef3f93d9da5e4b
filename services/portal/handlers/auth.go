package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"carenest/services/portal/apiclient"
	"carenest/services/portal/middleware"
	"carenest/services/portal/models"
	"carenest/services/portal/throttle"
	apperrors "carenest/shared/errors"
)

type AuthHandler struct {
	base
	identity *apiclient.Identity
	limiter  throttle.Limiter
}

// NewAuthHandler builds the auth pages. A nil limiter disables login
// throttling.
func NewAuthHandler(identity *apiclient.Identity, limiter throttle.Limiter, logger *slog.Logger, eh *apperrors.ErrorHandler) *AuthHandler {
	return &AuthHandler{
		base:     newBase(logger, eh, "auth"),
		identity: identity,
		limiter:  limiter,
	}
}

type SignupView struct {
	Form  models.RegisterDTO `json:"form"`
	Roles []models.Role      `json:"roles"`
}

var signupRoles = []models.Role{models.RoleCareseeker, models.RoleCaregiver}

func (h *AuthHandler) SignupPage(c *gin.Context) {
	view := SignupView{Form: models.RegisterDTO{Role: models.RoleCareseeker}, Roles: signupRoles}
	h.render(c, http.StatusOK, "signup.html", h.page(c, "Sign up", view))
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var dto models.RegisterDTO
	if err := c.ShouldBind(&dto); err != nil {
		c.Error(apperrors.NewBadRequestError("Invalid signup form"))
		return
	}
	if dto.Role != models.RoleCaregiver {
		dto.Role = models.RoleCareseeker
	}

	_, err := h.identity.Register(c.Request.Context(), dto)
	if err != nil {
		dto.Password = ""
		p := h.page(c, "Sign up", SignupView{Form: dto, Roles: signupRoles})
		h.renderUpstream(c, "signup.html", p, err, apiclient.FieldErrorOr(err, "Signup failed"))
		return
	}

	h.log(c).InfoContext(c.Request.Context(), "Account registered", slog.String("role", string(dto.Role)))
	c.Redirect(http.StatusSeeOther, "/verify-otp?email="+url.QueryEscape(dto.Email))
}

type VerifyOTPView struct {
	Email string `json:"email"`
}

func (h *AuthHandler) VerifyOTPPage(c *gin.Context) {
	h.render(c, http.StatusOK, "verify_otp.html", h.page(c, "Verify email", VerifyOTPView{Email: c.Query("email")}))
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var dto models.VerifyOTPDTO
	if err := c.ShouldBind(&dto); err != nil {
		c.Error(apperrors.NewBadRequestError("Invalid verification form"))
		return
	}

	if err := h.identity.VerifyOTP(c.Request.Context(), dto); err != nil {
		p := h.page(c, "Verify email", VerifyOTPView{Email: dto.Email})
		h.renderUpstream(c, "verify_otp.html", p, err, apiclient.MessageOr(err, "Invalid or expired OTP"))
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

type LoginView struct {
	Email string `json:"email"`
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", h.page(c, "Log in", LoginView{}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var dto models.LoginDTO
	if err := c.ShouldBind(&dto); err != nil {
		c.Error(apperrors.NewBadRequestError("Invalid login form"))
		return
	}

	ctx := c.Request.Context()
	if !h.allowLogin(c, dto.Email) {
		return
	}

	resp, err := h.identity.Login(ctx, dto)
	if err != nil {
		h.recordLoginFailure(c, dto.Email, err)
		p := h.page(c, "Log in", LoginView{Email: dto.Email})
		h.renderUpstream(c, "login.html", p, err, apiclient.MessageOr(err, "Invalid email or password"))
		return
	}
	if h.limiter != nil {
		if err := h.limiter.Reset(ctx, dto.Email); err != nil {
			h.log(c).WarnContext(ctx, "Failed to reset login attempts", slog.Any("error", err))
		}
	}

	sess, err := middleware.RotateSession(c)
	if err != nil {
		c.Error(apperrors.NewStorageError("Failed to start session", err))
		return
	}
	if err := sess.Login(ctx, resp.Token, resp.Role, resp.UserID); err != nil {
		c.Error(apperrors.NewStorageError("Failed to save session", err))
		return
	}

	h.log(c).InfoContext(ctx, "User logged in",
		slog.Int64("user_id", resp.UserID),
		slog.String("role", string(resp.Role)),
	)
	c.Redirect(http.StatusSeeOther, resp.Role.HomePath())
}

// allowLogin renders the lockout message and returns false once an email
// has used up its attempts. Limiter errors let the attempt through.
func (h *AuthHandler) allowLogin(c *gin.Context, email string) bool {
	if h.limiter == nil {
		return true
	}
	ctx := c.Request.Context()
	allowed, retryAfter, err := h.limiter.Check(ctx, email)
	if err != nil {
		h.log(c).WarnContext(ctx, "Login throttle unavailable", slog.Any("error", err))
		return true
	}
	if allowed {
		return true
	}

	msg := fmt.Sprintf("Too many login attempts, try again in %s", retryAfter.Round(time.Second))
	h.log(c).WarnContext(ctx, "Login locked out", slog.Duration("retry_after", retryAfter))
	c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
	p := h.page(c, "Log in", LoginView{Email: email})
	p.Error = msg
	h.render(c, http.StatusTooManyRequests, "login.html", p)
	return false
}

// recordLoginFailure counts rejected credentials. Transport failures and
// server errors are not the caller's fault and are not counted.
func (h *AuthHandler) recordLoginFailure(c *gin.Context, email string, err error) {
	if h.limiter == nil {
		return
	}
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode == 0 || apiErr.StatusCode >= http.StatusInternalServerError {
		return
	}
	if err := h.limiter.Fail(c.Request.Context(), email); err != nil {
		h.log(c).WarnContext(c.Request.Context(), "Failed to record login attempt", slog.Any("error", err))
	}
}

type ForgotPasswordView struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPasswordPage(c *gin.Context) {
	h.render(c, http.StatusOK, "forgot_password.html", h.page(c, "Forgot password", ForgotPasswordView{}))
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var dto models.PasswordResetEmailDTO
	if err := c.ShouldBind(&dto); err != nil {
		c.Error(apperrors.NewBadRequestError("Invalid email"))
		return
	}

	p := h.page(c, "Forgot password", ForgotPasswordView{Email: dto.Email})
	if err := h.identity.SendResetPasswordEmail(c.Request.Context(), dto); err != nil {
		h.renderUpstream(c, "forgot_password.html", p, err, "Unable to send reset email")
		return
	}
	p.Flash = success("Password reset link sent to your email.")
	h.render(c, http.StatusOK, "forgot_password.html", p)
}

type ResetPasswordView struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

type resetPasswordForm struct {
	Password string `form:"password" json:"password"`
	Confirm  string `form:"confirm" json:"confirm"`
}

func (h *AuthHandler) ResetPasswordPage(c *gin.Context) {
	view := ResetPasswordView{UID: c.Param("uid"), Token: c.Param("token")}
	h.render(c, http.StatusOK, "reset_password.html", h.page(c, "Reset password", view))
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	view := ResetPasswordView{UID: c.Param("uid"), Token: c.Param("token")}

	var form resetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		c.Error(apperrors.NewBadRequestError("Invalid reset form"))
		return
	}
	if strings.TrimSpace(form.Password) == "" || form.Password != form.Confirm {
		h.renderInvalid(c, "reset_password.html", h.page(c, "Reset password", view),
			apperrors.NewValidationError("Passwords do not match", nil))
		return
	}

	err := h.identity.ResetPassword(c.Request.Context(), view.UID, view.Token, models.PasswordResetDTO{Password: form.Password})
	if err != nil {
		h.renderUpstream(c, "reset_password.html", h.page(c, "Reset password", view), err, "Invalid or expired reset link")
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.SessionFrom(c); sess != nil {
		if err := sess.Logout(c.Request.Context()); err != nil {
			h.log(c).WarnContext(c.Request.Context(), "Logout failed", slog.Any("error", err))
		}
	}
	if _, err := middleware.RotateSession(c); err != nil {
		h.log(c).WarnContext(c.Request.Context(), "Session rotation failed", slog.Any("error", err))
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
