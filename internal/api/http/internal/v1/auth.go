package v1

import (
	"errors"
	"net/http"

	"github.com/vibe-gaming/publisher/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")

	auth.POST("/registration", h.attemptThrottleMiddleware, h.registration)
	auth.POST("/registration-confirmation", h.attemptThrottleMiddleware, h.registrationConfirmation)
	auth.POST("/registration-email-resending", h.attemptThrottleMiddleware, h.registrationEmailResending)
	auth.POST("/login", h.attemptThrottleMiddleware, h.login)
	auth.POST("/password-recovery", h.attemptThrottleMiddleware, h.passwordRecovery)
	auth.POST("/new-password", h.attemptThrottleMiddleware, h.newPassword)

	auth.POST("/refresh-token", h.refreshToken)
	auth.POST("/logout", h.logout)
	auth.GET("/me", h.userIdentityMiddleware, h.me)
}

type registrationInput struct {
	Login    string `json:"login" binding:"required,min=3,max=10,login"`
	Password string `json:"password" binding:"required,min=6,max=20"`
	Email    string `json:"email" binding:"required,email"`
}

type confirmationInput struct {
	Code string `json:"code" binding:"required"`
}

type emailInput struct {
	Email string `json:"email" binding:"required,email"`
}

type loginInput struct {
	LoginOrEmail string `json:"loginOrEmail" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

type newPasswordInput struct {
	NewPassword  string `json:"newPassword" binding:"required,min=6,max=20"`
	RecoveryCode string `json:"recoveryCode" binding:"required"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type meResponse struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}

// @Summary Registration
// @Tags Auth
// @Description Creates an unconfirmed user and sends a confirmation code to the email
// @ModuleID registration
// @Accept  json
// @Produce  json
// @Param input body registrationInput true "registration info"
// @Success 204
// @Failure 400 {object} ValidationErrorStruct
// @Failure 429
// @Failure 500
// @Router /auth/registration [post]
func (h *Handler) registration(c *gin.Context) {
	var input registrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	err := h.services.Auth.Register(c.Request.Context(), service.RegisterInput{
		Login:    input.Login,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoginTaken):
			fieldErrorsResponse(c, ValidationError{FieldKey: "login", ErrorMessage: LoginAlreadyTakenMessage})
		case errors.Is(err, service.ErrEmailTaken):
			fieldErrorsResponse(c, ValidationError{FieldKey: "email", ErrorMessage: EmailAlreadyTakenMessage})
		default:
			internalErrorResponse(c, "registration failed", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Registration confirmation
// @Tags Auth
// @Description Confirms the email with the code from the confirmation letter
// @ModuleID registrationConfirmation
// @Accept  json
// @Produce  json
// @Param input body confirmationInput true "confirmation code"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 429
// @Failure 500
// @Router /auth/registration-confirmation [post]
func (h *Handler) registrationConfirmation(c *gin.Context) {
	var input confirmationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Codes.Confirm(c.Request.Context(), input.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrCodeNotFound):
			errorResponse(c, ConfirmationCodeNotFoundCode)
		case errors.Is(err, service.ErrCodeExpired):
			errorResponse(c, ConfirmationCodeExpiredCode)
		case errors.Is(err, service.ErrAlreadyConfirmed):
			errorResponse(c, EmailAlreadyConfirmedCode)
		default:
			internalErrorResponse(c, "registration confirmation failed", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Resend confirmation email
// @Tags Auth
// @Description Issues a new confirmation code for an unconfirmed user
// @ModuleID registrationEmailResending
// @Accept  json
// @Produce  json
// @Param input body emailInput true "email"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 429
// @Failure 500
// @Router /auth/registration-email-resending [post]
func (h *Handler) registrationEmailResending(c *gin.Context) {
	var input emailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Codes.Resend(c.Request.Context(), input.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			errorResponse(c, UserNotFoundCode)
		case errors.Is(err, service.ErrAlreadyConfirmed):
			errorResponse(c, EmailAlreadyConfirmedCode)
		default:
			internalErrorResponse(c, "resend confirmation failed", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Login
// @Tags Auth
// @Description Returns an access token and sets the refresh token cookie of a new device
// @ModuleID login
// @Accept  json
// @Produce  json
// @Param input body loginInput true "credentials"
// @Success 200 {object} accessTokenResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401
// @Failure 429
// @Failure 500
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	tokens, err := h.services.Auth.Login(c.Request.Context(), service.LoginInput{
		LoginOrEmail: input.LoginOrEmail,
		Password:     input.Password,
		UserAgent:    c.Request.UserAgent(),
		IP:           c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		internalErrorResponse(c, "login failed", err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken, tokens.RefreshExpiresAt)
	c.JSON(http.StatusOK, accessTokenResponse{AccessToken: tokens.AccessToken})
}

// @Summary Refresh token
// @Tags Auth
// @Description Rotates the refresh token cookie and returns a new access token
// @ModuleID refreshToken
// @Produce  json
// @Success 200 {object} accessTokenResponse
// @Failure 401
// @Failure 500
// @Router /auth/refresh-token [post]
func (h *Handler) refreshToken(c *gin.Context) {
	token, err := c.Cookie(h.config.Cookie.Name)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	tokens, err := h.services.Auth.Refresh(c.Request.Context(), token, c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		internalErrorResponse(c, "refresh token failed", err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken, tokens.RefreshExpiresAt)
	c.JSON(http.StatusOK, accessTokenResponse{AccessToken: tokens.AccessToken})
}

// @Summary Logout
// @Tags Auth
// @Description Terminates the device session of the refresh token cookie
// @ModuleID logout
// @Success 204
// @Failure 401
// @Failure 500
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	token, err := c.Cookie(h.config.Cookie.Name)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		internalErrorResponse(c, "logout failed", err)
		return
	}

	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// @Summary Current user
// @Tags Auth
// @ModuleID me
// @Produce  json
// @Success 200 {object} meResponse
// @Failure 401
// @Security UserAuth
// @Router /auth/me [get]
func (h *Handler) me(c *gin.Context) {
	user, err := getUser(c)
	if err != nil {
		internalErrorResponse(c, "get user from context failed", err)
		return
	}

	c.JSON(http.StatusOK, meResponse{
		Email:  user.Email,
		Login:  user.Login,
		UserID: user.ID.String(),
	})
}

// @Summary Password recovery
// @Tags Auth
// @Description Sends a recovery code if the email belongs to a user; the response is the same either way
// @ModuleID passwordRecovery
// @Accept  json
// @Param input body emailInput true "email"
// @Success 204
// @Failure 400 {object} ValidationErrorStruct
// @Failure 429
// @Failure 500
// @Router /auth/password-recovery [post]
func (h *Handler) passwordRecovery(c *gin.Context) {
	var input emailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Codes.RequestRecovery(c.Request.Context(), input.Email); err != nil {
		internalErrorResponse(c, "password recovery failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary New password
// @Tags Auth
// @Description Sets a new password with a recovery code; the code can be used once
// @ModuleID newPassword
// @Accept  json
// @Param input body newPasswordInput true "new password and recovery code"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 429
// @Failure 500
// @Router /auth/new-password [post]
func (h *Handler) newPassword(c *gin.Context) {
	var input newPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Codes.ConsumeRecovery(c.Request.Context(), input.RecoveryCode, input.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidRecoveryCode) {
			errorResponse(c, InvalidRecoveryCodeCode)
			return
		}
		internalErrorResponse(c, "set new password failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}
