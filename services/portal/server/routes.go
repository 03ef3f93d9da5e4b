package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenest/services/portal/handlers"
	"carenest/services/portal/middleware"
	"carenest/services/portal/models"
	"carenest/services/portal/templates"
	"carenest/services/portal/throttle"
)

func (s *Server) setupRoutes() error {
	s.router = gin.New()
	if s.Config.HTTP.MaxUploadSize > 0 {
		s.router.MaxMultipartMemory = s.Config.HTTP.MaxUploadSize
	}

	tmpl, err := templates.Load()
	if err != nil {
		return err
	}
	s.router.SetHTMLTemplate(tmpl)

	s.router.Use(
		middleware.RequestLogger(s.Logger),
		middleware.GinErrorMiddleware(s.errorHandler),
		middleware.Recovery(s.Logger),
	)

	s.router.GET("/health", s.handleHealth)
	s.router.StaticFS("/static", http.FS(templates.Static()))

	pages := s.router.Group("/", middleware.LoadSession(s.sessions, s.Logger))

	s.setupAuthRoutes(pages)
	s.setupCareseekerRoutes(pages)
	s.setupCaregiverRoutes(pages)
	s.setupAdminRoutes(pages)
	s.setupProfileRoutes(pages)

	s.Logger.Info("Routes configured successfully")
	return nil
}

func (s *Server) setupAuthRoutes(r *gin.RouterGroup) {
	h := handlers.NewAuthHandler(s.identity, s.loginLimiter(), s.Logger, s.errorHandler)

	r.GET("/", h.SignupPage)
	r.POST("/", h.Signup)
	r.GET("/verify-otp", h.VerifyOTPPage)
	r.POST("/verify-otp", h.VerifyOTP)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/forgot-password", h.ForgotPasswordPage)
	r.POST("/forgot-password", h.ForgotPassword)
	r.GET("/reset-password/:uid/:token", h.ResetPasswordPage)
	r.POST("/reset-password/:uid/:token", h.ResetPassword)
	r.POST("/logout", h.Logout)

	s.Logger.Debug("Auth routes registered")
}

// loginLimiter shares counters through Redis when it is attached.
func (s *Server) loginLimiter() throttle.Limiter {
	if s.RedisMgr != nil {
		return throttle.NewRedisLimiter(s.RedisMgr.GetClient(), throttle.MaxLoginAttempts, throttle.LockoutDuration)
	}
	return throttle.NewMemoryLimiter(throttle.MaxLoginAttempts, throttle.LockoutDuration)
}

func (s *Server) setupCareseekerRoutes(r *gin.RouterGroup) {
	dash := handlers.NewDashboardHandler(s.identity, s.bookings, s.verifications, s.Logger, s.errorHandler)
	h := handlers.NewBookingHandler(s.identity, s.bookings, s.Logger, s.errorHandler)

	g := r.Group("/careseeker", middleware.RequireRole(models.RoleCareseeker))
	g.GET("/dashboard", dash.Careseeker)
	g.GET("/find-caregiver", h.FindCaregiver)
	g.GET("/find-caregiver/:userId/profile", h.CaregiverProfile)
	g.GET("/find-caregiver/:userId/book", h.BookingForm)
	g.POST("/find-caregiver/:userId/book", h.CreateBooking)
	g.GET("/bookings", h.CareseekerBookings)

	s.Logger.Debug("Careseeker routes registered")
}

func (s *Server) setupCaregiverRoutes(r *gin.RouterGroup) {
	dash := handlers.NewDashboardHandler(s.identity, s.bookings, s.verifications, s.Logger, s.errorHandler)
	bookings := handlers.NewBookingHandler(s.identity, s.bookings, s.Logger, s.errorHandler)
	verify := handlers.NewVerificationHandler(s.identity, s.verifications, s.Logger, s.errorHandler)

	g := r.Group("/caregiver", middleware.RequireRole(models.RoleCaregiver))
	g.GET("/dashboard", dash.Caregiver)
	g.GET("/upload-documents", verify.UploadPage)
	g.POST("/upload-documents", middleware.LimitBody(s.Config.HTTP.MaxUploadSize), verify.Upload)
	g.GET("/booking-requests", bookings.BookingRequests)
	g.POST("/booking-requests/:id/respond", bookings.Respond)

	s.Logger.Debug("Caregiver routes registered")
}

func (s *Server) setupAdminRoutes(r *gin.RouterGroup) {
	dash := handlers.NewDashboardHandler(s.identity, s.bookings, s.verifications, s.Logger, s.errorHandler)
	verify := handlers.NewVerificationHandler(s.identity, s.verifications, s.Logger, s.errorHandler)
	profile := handlers.NewProfileHandler(s.identity, s.Logger, s.errorHandler)

	g := r.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	g.GET("/dashboard", dash.Admin)
	g.GET("/profile/:userId", profile.AdminShow)
	g.GET("/verify-caregivers", verify.Queue)
	g.POST("/verify-caregivers/:id/approve", verify.Approve)
	g.POST("/verify-caregivers/:id/reject", verify.Reject)
	g.GET("/verify-caregivers/:id/documents", verify.Documents)
	g.GET("/verify-caregivers/:id/profile", verify.ProfilePreview)

	s.Logger.Debug("Admin routes registered")
}

func (s *Server) setupProfileRoutes(r *gin.RouterGroup) {
	h := handlers.NewProfileHandler(s.identity, s.Logger, s.errorHandler)

	g := r.Group("/profile", middleware.RequireRole(models.RoleCareseeker, models.RoleCaregiver))
	g.GET("", h.Show)
	g.POST("", middleware.LimitBody(s.Config.HTTP.MaxUploadSize), h.Save)

	s.Logger.Debug("Profile routes registered")
}
