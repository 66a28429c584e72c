package handlers

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"college-reclaim/database"
	"college-reclaim/email"
	"college-reclaim/models"
)

// Register handles user registration.
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login handles email/password authentication.
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondWithTokens(c, user)
}

// OAuthLogin handles login with a provider-verified profile.
func (h *Handlers) OAuthLogin(c *gin.Context) {
	var req models.OAuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.auth.OAuthLogin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondWithTokens(c, user)
}

// RefreshToken handles token refresh.
func (h *Handlers) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	userID, err := h.auth.ValidateRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid refresh token"})
		return
	}

	token, refreshToken, err := h.auth.GenerateTokenPair(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{
		Token:        token,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    3600,
	})
}

// Logout invalidates the caller's access token.
func (h *Handlers) Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	token := c.GetString("token")
	if userID == "" || token == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	// Logout succeeds even if the token was already gone
	if err := h.auth.InvalidateToken(c.Request.Context(), userID, token); err != nil {
		log.WithError(err).Warn("Failed to invalidate token on logout")
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "logged out successfully"})
}

// Me returns the authenticated user's profile.
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ForgotPassword issues a reset code. The response is identical whether or
// not the email is registered, to avoid account probing.
func (h *Handlers) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.auth.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			respondError(c, err)
			return
		}
	} else {
		code, err := h.auth.IssueOTP(c.Request.Context(), user.ID, models.OTPPurposeReset)
		if err != nil {
			respondError(c, err)
			return
		}
		msg := email.PasswordOTP(code, false)
		if err := h.mailer.Send(c.Request.Context(), user.Email, msg.Subject, msg.PlainText, msg.HTML); err != nil {
			log.WithError(err).Warnf("Failed to send reset code to %s", user.Email)
		}
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "if the address is registered, a code has been sent"})
}

// ResetPassword completes the OTP reset flow.
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "password updated"})
}

func (h *Handlers) respondWithTokens(c *gin.Context, user *models.User) {
	token, refreshToken, err := h.auth.GenerateTokenPair(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{
		Token:        token,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		User:         user,
	})
}
