package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"golang.org/x/oauth2"

	"carenest/services/portal/apiclient"
	"carenest/services/portal/middleware"
	"carenest/services/portal/models"
	"carenest/services/portal/views"
	apperrors "carenest/shared/errors"
	"carenest/shared/logger"
)

// Page is the envelope every template receives. JSON clients get the same
// value minus the navigation.
type Page struct {
	Title         string          `json:"title"`
	Nav           []views.NavLink `json:"-"`
	Authenticated bool            `json:"authenticated"`
	Role          models.Role     `json:"role,omitempty"`
	Flash         *models.Flash   `json:"flash,omitempty"`
	Error         string          `json:"error,omitempty"`
	Data          any             `json:"data,omitempty"`
}

type base struct {
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

func newBase(log *slog.Logger, eh *apperrors.ErrorHandler, name string) base {
	return base{logger: log.With(slog.String("handler", name)), errorHandler: eh}
}

func (b base) log(c *gin.Context) *slog.Logger {
	return logger.FromContext(c.Request.Context(), b.logger)
}

// tokens is the session's bearer token source for upstream calls.
func (b base) tokens(c *gin.Context) oauth2.TokenSource {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil
	}
	return sess.TokenSource(c.Request.Context())
}

func (b base) page(c *gin.Context, title string, data any) *Page {
	p := &Page{Title: title, Data: data}
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return p
	}
	p.Authenticated = sess.IsAuthenticated()
	p.Role = sess.Role()
	p.Nav = views.NavLinks(p.Role, p.Authenticated, c.Request.URL.Path)

	flash, err := sess.PopFlash(c.Request.Context())
	if err != nil {
		b.log(c).WarnContext(c.Request.Context(), "Failed to read flash", slog.Any("error", err))
	}
	p.Flash = flash
	return p
}

func (b base) render(c *gin.Context, status int, name string, p *Page) {
	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: name,
		HTMLData: p,
		JSONData: p,
	})
}

// renderInvalid re-renders a form page with the validation message.
func (b base) renderInvalid(c *gin.Context, name string, p *Page, err error) {
	if appErr, ok := apperrors.As(err); ok {
		p.Error = appErr.Message
		b.errorHandler.LogError(c.Request.Context(), b.log(c), appErr)
	} else {
		p.Error = err.Error()
	}
	b.render(c, http.StatusUnprocessableEntity, name, p)
}

// renderUpstream re-renders a page after a failed upstream call. msg is the
// banner text; the status mirrors the upstream failure.
func (b base) renderUpstream(c *gin.Context, name string, p *Page, err error, msg string) {
	appErr := apiclient.ToAppError(err, msg)
	b.errorHandler.LogError(c.Request.Context(), b.log(c), appErr)
	p.Error = msg
	b.render(c, appErr.StatusCode, name, p)
}

// redirect stores an optional flash and sends the browser to path.
func (b base) redirect(c *gin.Context, path string, flash *models.Flash) {
	if flash != nil {
		if sess := middleware.SessionFrom(c); sess != nil {
			if err := sess.SetFlash(c.Request.Context(), *flash); err != nil {
				b.log(c).WarnContext(c.Request.Context(), "Failed to store flash", slog.Any("error", err))
			}
		}
	}
	c.Redirect(http.StatusSeeOther, path)
}

func success(msg string) *models.Flash {
	return &models.Flash{Kind: models.FlashSuccess, Message: msg}
}

func failure(msg string) *models.Flash {
	return &models.Flash{Kind: models.FlashError, Message: msg}
}

// readUpload loads an optional multipart file. A missing file is nil.
// check, when set, vets the declared size before anything is read.
func readUpload(c *gin.Context, field string, check func(filename string, size int64) error) (*models.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if middleware.IsBodyTooLarge(err) {
		return nil, middleware.BodyTooLarge(err)
	}
	if err != nil {
		return nil, apperrors.NewBadRequestError("Invalid file upload")
	}
	if check != nil {
		if err := check(fh.Filename, fh.Size); err != nil {
			return nil, err
		}
	}
	return loadFile(fh)
}

func loadFile(fh *multipart.FileHeader) (*models.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to read upload", err)
	}
	return &models.Upload{
		Filename:    fh.Filename,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}
