package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-billing/internal/domain"
)

type Handler struct{ service *Service }

func NewHandler(s *Service) *Handler { return &Handler{service: s} }

func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": "username and password are required"})
		return
	}
	token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"status": domain.StatusError, "message": err.Error()})
		return
	case err != nil:
		h.service.log.Error("login_failed", err, map[string]any{"username": req.Username})
		c.JSON(http.StatusInternalServerError, gin.H{"status": domain.StatusError, "message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, domain.LoginResponse{Token: token})
}

func (h *Handler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": "invalid request body"})
		return
	}
	err := h.service.Signup(c.Request.Context(), req.Username, req.Password, req.ConfirmPassword)
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": err.Error()})
		return
	case errors.Is(err, ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"status": domain.StatusError, "message": err.Error()})
		return
	case err != nil:
		h.service.log.Error("signup_failed", err, map[string]any{"username": req.Username})
		c.JSON(http.StatusInternalServerError, gin.H{"status": domain.StatusError, "message": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": domain.StatusSuccess, "message": "Signup successful! Please log in."})
}

// ChangeCredentials serves the account form for the user behind the token.
func (h *Handler) ChangeCredentials(c *gin.Context) {
	username := c.GetString(UserKey)
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"status": domain.StatusError, "message": "login required"})
		return
	}
	var req domain.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CurrentPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": "current_password is required"})
		return
	}
	token, err := h.service.ChangeCredentials(c.Request.Context(), username, req.CurrentPassword, req.NewUsername, req.NewPassword)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusForbidden, gin.H{"status": domain.StatusError, "message": "current password is incorrect"})
		return
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": err.Error()})
		return
	case errors.Is(err, ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"status": domain.StatusError, "message": err.Error()})
		return
	case err != nil:
		h.service.log.Error("credentials_change_failed", err, map[string]any{"username": username})
		c.JSON(http.StatusInternalServerError, gin.H{"status": domain.StatusError, "message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.StatusSuccess, "token": token})
}
