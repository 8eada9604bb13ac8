package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/infra/telemetry"
	"github.com/thegrihome/realty-platform-iam/internal/usecase"
)

// LoginHandler exposes the multi-strategy login endpoint.
type LoginHandler struct {
	login   *usecase.LoginService
	metrics *telemetry.Provider
}

func NewLoginHandler(login *usecase.LoginService, metrics *telemetry.Provider) *LoginHandler {
	return &LoginHandler{login: login, metrics: metrics}
}

// RegisterRoutes binds the login endpoint.
func (h *LoginHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
}

var loginErrors = errorMapping{
	{err: usecase.ErrLoginTypeMissing, status: http.StatusBadRequest, message: "Login type is required"},
	{err: usecase.ErrLoginTypeInvalid, status: http.StatusBadRequest, message: "Invalid login type"},
	{err: usecase.ErrUsernamePasswordRequired, status: http.StatusBadRequest, message: "Username and password are required"},
	{err: usecase.ErrEmailOTPRequired, status: http.StatusBadRequest, message: "Email and OTP are required"},
	{err: usecase.ErrMobileOTPRequired, status: http.StatusBadRequest, message: "Mobile number and OTP are required"},
	{err: usecase.ErrInvalidCredentials, status: http.StatusUnauthorized, message: "Invalid username/email or password"},
	{err: usecase.ErrEmailNotFound, status: http.StatusUnauthorized, message: "Email not found"},
	{err: usecase.ErrMobileNotFound, status: http.StatusUnauthorized, message: "Mobile number not registered. Please sign up first."},
	{err: usecase.ErrInvalidOTP, status: http.StatusUnauthorized, message: "Invalid OTP"},
}

// Login godoc
// @Summary Authenticate an account
// @Description Authenticates with one of three strategies selected by type: username-password, email-otp, or mobile-otp. A successful OTP login stamps the channel verified.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *LoginHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Login type is required"))
		return
	}

	outcome, err := h.login.Login(c.Request.Context(), usecase.LoginInput{
		Type:     req.Type,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Mobile:   req.Mobile,
		OTP:      req.OTP,
	})
	if err != nil {
		h.metrics.LoginAttempt(strategyLabel(req.Type), "failure")
		h.respondError(c, err)
		return
	}

	h.metrics.LoginAttempt(string(outcome.Strategy), "success")
	if outcome.VerifiedChannel != nil {
		h.metrics.ChannelVerified(string(*outcome.VerifiedChannel))
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    newUserPayload(outcome.Account),
	})
}

// respondError maps usecase sentinels to API responses. A unique violation
// on the verification stamp means another account claimed the channel
// between lookup and update; the loser reports a conflict.
func (h *LoginHandler) respondError(c *gin.Context, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_accounts_phone_verified":
			c.JSON(http.StatusConflict, NewErrorResponse(c, "Mobile number already registered"))
		default:
			c.JSON(http.StatusConflict, NewErrorResponse(c, "Email already registered"))
		}
		return
	}

	loginErrors.respond(c, err)
}

func strategyLabel(rawType string) string {
	if loginType, ok := domain.ParseLoginType(strings.TrimSpace(rawType)); ok {
		return string(loginType)
	}
	return "unknown"
}
