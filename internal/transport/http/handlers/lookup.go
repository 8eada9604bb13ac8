package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/usecase"
)

// LookupHandler exposes the read-only existence, verification, and
// uniqueness checks.
type LookupHandler struct {
	lookup     *usecase.LookupService
	dispatcher NotificationDispatcher
	// exposeErrors echoes internal error detail on check-unique failures.
	// Enabled outside production only.
	exposeErrors bool
}

func NewLookupHandler(lookup *usecase.LookupService, dispatcher NotificationDispatcher, exposeErrors bool) *LookupHandler {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &LookupHandler{
		lookup:       lookup,
		dispatcher:   dispatcher,
		exposeErrors: exposeErrors,
	}
}

// RegisterRoutes binds the lookup endpoints.
func (h *LookupHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/check-user", h.CheckUser)
	r.POST("/check-verification", h.CheckVerification)
	r.POST("/check-unique", h.CheckUnique)
}

// CheckUser godoc
// @Summary Check whether an account exists
// @Description Resolves an account by email or mobile number and reports whether that channel is verified.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CheckUserRequest true "Check user request"
// @Success 200 {object} CheckUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} CheckUserMissingResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/check-user [post]
func (h *LookupHandler) CheckUser(c *gin.Context) {
	var req CheckUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Type and value are required"))
		return
	}

	req.Type = strings.TrimSpace(req.Type)
	req.Value = strings.TrimSpace(req.Value)
	if req.Type == "" || req.Value == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Type and value are required"))
		return
	}

	channel, ok := domain.ParseVerificationChannel(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Invalid type"))
		return
	}

	result, err := h.lookup.CheckUser(c.Request.Context(), channel, req.Value)
	if err != nil {
		if errors.Is(err, usecase.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, CheckUserMissingResponse{
				Message: "User not found. Please sign up first.",
				Exists:  false,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Internal server error"))
		return
	}

	c.JSON(http.StatusOK, CheckUserResponse{
		Exists:   true,
		Verified: result.Verified,
		User: CheckUserView{
			ID:             result.Account.ID,
			EmailVerified:  result.Account.EmailVerifiedAt != nil,
			MobileVerified: result.Account.MobileVerifiedAt != nil,
		},
	})
}

// CheckVerification godoc
// @Summary Check whether an OTP may be sent
// @Description Reports whether the channel is verified and OTP delivery is allowed. Unregistered values yield 404; unverified ones yield 400.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CheckVerificationRequest true "Check verification request"
// @Success 200 {object} CheckVerificationResponse
// @Failure 400 {object} CheckVerificationResponse
// @Failure 404 {object} CheckVerificationResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/check-verification [post]
func (h *LookupHandler) CheckVerification(c *gin.Context) {
	var req CheckVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Type and value are required"))
		return
	}

	req.Type = strings.TrimSpace(req.Type)
	req.Value = strings.TrimSpace(req.Value)
	if req.Type == "" || req.Value == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Type and value are required"))
		return
	}

	channel, ok := domain.ParseVerificationChannel(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Invalid type"))
		return
	}

	if err := h.lookup.CheckVerification(c.Request.Context(), channel, req.Value); err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailNotRegistered):
			c.JSON(http.StatusNotFound, CheckVerificationResponse{Message: "Email not registered", CanSendOTP: false})
		case errors.Is(err, usecase.ErrMobileNotRegistered):
			c.JSON(http.StatusNotFound, CheckVerificationResponse{Message: "Mobile number not registered", CanSendOTP: false})
		case errors.Is(err, usecase.ErrEmailNotVerified):
			c.JSON(http.StatusBadRequest, CheckVerificationResponse{Message: "Email not verified. Please verify in your profile first.", CanSendOTP: false})
		case errors.Is(err, usecase.ErrMobileNotVerified):
			c.JSON(http.StatusBadRequest, CheckVerificationResponse{Message: "Mobile number not verified. Please verify in your profile first.", CanSendOTP: false})
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Internal server error"))
		}
		return
	}

	_ = h.dispatcher.SendOTPRequested(c.Request.Context(), OTPRequestNotification{
		Channel:     string(channel),
		Destination: req.Value,
	})

	c.JSON(http.StatusOK, CheckVerificationResponse{Message: "Can send OTP", CanSendOTP: true})
}

// CheckUnique godoc
// @Summary Check whether a value is still claimable
// @Description Reports whether a username, email, or mobile number can still be claimed. Email and mobile are exclusive only among verified holders.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CheckUniqueRequest true "Check unique request"
// @Success 200 {object} CheckUniqueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/check-unique [post]
func (h *LookupHandler) CheckUnique(c *gin.Context) {
	var req CheckUniqueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Field and value are required"))
		return
	}

	req.Field = strings.TrimSpace(req.Field)
	req.Value = strings.TrimSpace(req.Value)
	if req.Field == "" || req.Value == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Field and value are required"))
		return
	}

	field, ok := domain.ParseUniqueField(req.Field)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Invalid field"))
		return
	}

	isUnique, err := h.lookup.CheckUnique(c.Request.Context(), field, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Invalid email format"))
		case errors.Is(err, usecase.ErrInvalidMobile):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Please enter a valid mobile number"))
		default:
			resp := NewErrorResponse(c, "Internal server error")
			if h.exposeErrors {
				resp.Error = err.Error()
			}
			c.JSON(http.StatusInternalServerError, resp)
		}
		return
	}

	c.JSON(http.StatusOK, CheckUniqueResponse{IsUnique: isUnique})
}
