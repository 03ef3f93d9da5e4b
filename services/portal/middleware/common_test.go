package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "carenest/shared/errors"
)

func limited(max int64) *gin.Engine {
	r := gin.New()
	r.Use(GinErrorMiddleware(apperrors.NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	r.POST("/upload", LimitBody(max), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			if IsBodyTooLarge(err) {
				c.Error(BodyTooLarge(err))
				return
			}
			c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func post(r http.Handler, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", body))
	return w
}

func TestLimitBody(t *testing.T) {
	r := limited(2 << 20)

	w := post(r, bytes.NewReader(make([]byte, 1<<20)))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = post(r, bytes.NewReader(make([]byte, 3<<20)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "The limit is 2MB")
}

func TestLimitBodyWithoutContentLength(t *testing.T) {
	r := limited(2 << 20)

	// io.MultiReader hides the length, so the cut-off happens while reading.
	w := post(r, io.MultiReader(bytes.NewReader(make([]byte, 3<<20))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestLimitBodyDisabled(t *testing.T) {
	w := post(limited(0), bytes.NewReader(make([]byte, 3<<20)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
