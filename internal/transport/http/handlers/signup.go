package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/infra/telemetry"
	"github.com/thegrihome/realty-platform-iam/internal/usecase"
)

// SignupHandler exposes the account creation endpoint.
type SignupHandler struct {
	signup     *usecase.SignupService
	dispatcher NotificationDispatcher
	metrics    *telemetry.Provider
}

func NewSignupHandler(signup *usecase.SignupService, dispatcher NotificationDispatcher, metrics *telemetry.Provider) *SignupHandler {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &SignupHandler{
		signup:     signup,
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

// RegisterRoutes binds the signup endpoint.
func (h *SignupHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/signup", h.Signup)
}

var signupErrors = errorMapping{
	{err: usecase.ErrMissingRequiredFields, status: http.StatusBadRequest, message: "All required fields must be provided"},
	{err: usecase.ErrCompanyNameRequired, status: http.StatusBadRequest, message: "Company name is required for agents"},
	{err: usecase.ErrUsernameTooShort, status: http.StatusBadRequest, message: "Username must be at least 3 characters long"},
	{err: usecase.ErrInvalidEmail, status: http.StatusBadRequest, message: "Invalid email format"},
	{err: usecase.ErrInvalidMobile, status: http.StatusBadRequest, message: "Please enter a valid mobile number"},
	{err: usecase.ErrUsernameTaken, status: http.StatusConflict, message: "Username already exists"},
	{err: usecase.ErrEmailTaken, status: http.StatusConflict, message: "Email already registered"},
	{err: usecase.ErrMobileTaken, status: http.StatusConflict, message: "Mobile number already registered"},
}

// Signup godoc
// @Summary Create a new account
// @Description Creates an account with both contact channels unverified. Username conflicts on existence; email and mobile conflict only against verified holders.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup request"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/signup [post]
func (h *SignupHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "All required fields must be provided"))
		return
	}

	account, err := h.signup.CreateAccount(c.Request.Context(), usecase.SignupInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
		IsAgent:      req.IsAgent,
		CompanyName:  req.CompanyName,
		ImageLink:    req.ImageLink,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.AccountCreated()
	h.dispatchWelcome(c.Request.Context(), account)

	c.JSON(http.StatusCreated, SignupResponse{
		Message: "User created successfully",
		User:    newUserPayload(account),
	})
}

// respondError translates usecase sentinels and database unique violations
// into API responses. The insert only races the username index; verified
// email and phone conflicts are rechecked here for completeness.
func (h *SignupHandler) respondError(c *gin.Context, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_accounts_username":
			c.JSON(http.StatusConflict, NewErrorResponse(c, "Username already exists"))
		case "uq_accounts_email_verified":
			c.JSON(http.StatusConflict, NewErrorResponse(c, "Email already registered"))
		case "uq_accounts_phone_verified":
			c.JSON(http.StatusConflict, NewErrorResponse(c, "Mobile number already registered"))
		default:
			c.JSON(http.StatusConflict, NewErrorResponse(c, "Account already exists"))
		}
		return
	}

	signupErrors.respond(c, err)
}

func (h *SignupHandler) dispatchWelcome(ctx context.Context, account domain.Account) {
	_ = h.dispatcher.SendSignupWelcome(ctx, SignupNotification{
		Username: account.Username,
		Email:    account.Email,
		Phone:    account.Phone,
		Role:     string(account.Role),
	})
}
