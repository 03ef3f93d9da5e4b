package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"carenest/services/portal/models"
	"carenest/services/portal/session"
	apperrors "carenest/shared/errors"
	"carenest/shared/logger"
)

const (
	sessionKey        = "session"
	sessionManagerKey = "session_manager"
)

// LoadSession opens the browser's session and restores it from storage.
// A storage failure leaves the session loading; the guard renders the
// placeholder for protected pages.
func LoadSession(mgr *session.Manager, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := mgr.Open(c.Writer, c.Request)
		if err != nil {
			c.Error(apperrors.NewInternalError("Failed to open session", err))
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		if err := sess.Restore(ctx); err != nil {
			logger.FromContext(ctx, log).WarnContext(ctx, "Session restore failed",
				slog.String("session_id", sess.ID()),
				slog.Any("error", err),
			)
		} else if uid := sess.UserID(); uid != "" {
			l := logger.FromContext(ctx, log).With(slog.String(logger.UserIDKey, uid))
			c.Request = c.Request.WithContext(logger.ToContext(ctx, l))
		}

		c.Set(sessionKey, sess)
		c.Set(sessionManagerKey, mgr)
		c.Next()
	}
}

// SessionFrom returns the session LoadSession attached, or nil.
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// RotateSession replaces the request's session with a fresh one under a new
// cookie. Later SessionFrom calls return the new session.
func RotateSession(c *gin.Context) (*session.Session, error) {
	v, ok := c.Get(sessionManagerKey)
	mgr, _ := v.(*session.Manager)
	if !ok || mgr == nil {
		return nil, errors.New("session manager not attached")
	}
	sess, err := mgr.Rotate(c.Request.Context(), c.Writer, SessionFrom(c))
	if err != nil {
		return nil, err
	}
	c.Set(sessionKey, sess)
	return sess, nil
}

// RequireRole admits authenticated sessions whose role is in roles. An empty
// roles list admits any authenticated session. Both failures go to /login.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil || sess.Loading() {
			c.Header("Retry-After", "1")
			c.String(http.StatusServiceUnavailable, "Loading...")
			c.Abort()
			return
		}

		if !sess.IsAuthenticated() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		if len(roles) == 0 {
			c.Next()
			return
		}
		role := sess.Role()
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}
