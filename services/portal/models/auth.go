package models

type Role string

const (
	RoleCareseeker Role = "careseeker"
	RoleCaregiver  Role = "caregiver"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCareseeker, RoleCaregiver, RoleAdmin:
		return true
	}
	return false
}

// HomePath is the dashboard a role lands on after login. Unknown roles fall
// back to the careseeker dashboard.
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleCaregiver:
		return "/caregiver/dashboard"
	default:
		return "/careseeker/dashboard"
	}
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RegisterDTO struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     Role   `json:"role" form:"role"`
}

type VerifyOTPDTO struct {
	Email string `json:"email" form:"email"`
	OTP   string `json:"otp" form:"otp"`
}

type LoginDTO struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Message string    `json:"message"`
	Email   string    `json:"email"`
	Token   TokenPair `json:"token"`
	Role    Role      `json:"role"`
	UserID  int64     `json:"user_id"`
}

type PasswordResetEmailDTO struct {
	Email string `json:"email" form:"email"`
}

type PasswordResetDTO struct {
	Password string `json:"password" form:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
