package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
)

// ErrorResponse represents a generic error payload. Message is always set;
// Error carries diagnostic detail only where an endpoint exposes it.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with the trace ID from context.
func NewErrorResponse(c *gin.Context, message string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Message: message,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserPayload is the account view returned by signup and login. It never
// carries the password hash. CompanyName and Image serialize as explicit
// nulls so clients can rely on the keys being present.
type UserPayload struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Role             string     `json:"role"`
	CompanyName      *string    `json:"companyName"`
	Image            *string    `json:"image"`
	EmailVerifiedAt  *time.Time `json:"emailVerifiedAt"`
	MobileVerifiedAt *time.Time `json:"mobileVerifiedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func newUserPayload(account domain.Account) UserPayload {
	return UserPayload{
		ID:               account.ID,
		Name:             account.Name,
		Username:         account.Username,
		Email:            account.Email,
		Phone:            account.Phone,
		Role:             string(account.Role),
		CompanyName:      account.CompanyName,
		Image:            account.Image,
		EmailVerifiedAt:  account.EmailVerifiedAt,
		MobileVerifiedAt: account.MobileVerifiedAt,
		CreatedAt:        account.CreatedAt,
	}
}

// SignupRequest defines the account creation payload. Validation happens in
// the usecase layer so its messages reach the client verbatim.
type SignupRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
	IsAgent      bool   `json:"isAgent"`
	CompanyName  string `json:"companyName"`
	ImageLink    string `json:"imageLink"`
}

// SignupResponse is returned after a successful account creation.
type SignupResponse struct {
	Message string      `json:"message"`
	User    UserPayload `json:"user"`
}

// LoginRequest defines the login payload. Type selects the strategy; the
// other fields are read per strategy.
type LoginRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	OTP      string `json:"otp"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Message string      `json:"message"`
	User    UserPayload `json:"user"`
}

// CheckUserRequest asks whether an account exists for an email or mobile
// number.
type CheckUserRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// CheckUserView is the reduced account view in check-user responses.
type CheckUserView struct {
	ID             string `json:"id"`
	EmailVerified  bool   `json:"emailVerified"`
	MobileVerified bool   `json:"mobileVerified"`
}

// CheckUserResponse reports account existence and the queried channel's
// verification state.
type CheckUserResponse struct {
	Exists   bool          `json:"exists"`
	Verified bool          `json:"verified"`
	User     CheckUserView `json:"user"`
}

// CheckUserMissingResponse is returned when no account matches.
type CheckUserMissingResponse struct {
	Message string `json:"message"`
	Exists  bool   `json:"exists"`
}

// CheckVerificationRequest asks whether an OTP may be sent to a channel.
type CheckVerificationRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// CheckVerificationResponse reports whether OTP delivery is allowed.
type CheckVerificationResponse struct {
	Message    string `json:"message"`
	CanSendOTP bool   `json:"canSendOTP"`
}

// CheckUniqueRequest asks whether a value is still claimable for a field.
type CheckUniqueRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// CheckUniqueResponse reports claimability of the value.
type CheckUniqueResponse struct {
	IsUnique bool `json:"isUnique"`
}

// DevOTPResponse exposes the development OTP code, development mode only.
type DevOTPResponse struct {
	Code string `json:"code"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
