package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wikibeerdia/backend/internal/services"
	"github.com/wikibeerdia/backend/pkg/errors"
	"github.com/wikibeerdia/backend/pkg/metrics"
	"github.com/wikibeerdia/backend/pkg/response"
)

// AuthHandler exposes signup, login, and email verification.
type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewBadRequest("invalid JSON payload"))
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		appErr := errors.FromError(err)
		if appErr.StatusCode == http.StatusUnprocessableEntity {
			metrics.Signups.WithLabelValues("rejected").Inc()
		} else {
			metrics.Signups.WithLabelValues("error").Inc()
		}
		response.Error(c, err)
		return
	}

	metrics.Signups.WithLabelValues("created").Inc()
	response.Success(c, http.StatusCreated, user)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewBadRequest("invalid JSON payload"))
		return
	}

	result, err := h.accounts.Authenticate(c.Request.Context(), services.AuthenticateInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		Remember:   req.RememberMe,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, result)
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.accounts.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		metrics.EmailVerifications.WithLabelValues("error").Inc()
		response.Error(c, err)
		return
	}

	if result.Result {
		metrics.EmailVerifications.WithLabelValues("verified").Inc()
	} else {
		metrics.EmailVerifications.WithLabelValues("invalid").Inc()
	}

	// Expected misses are data, not errors: always 200 with the tagged result.
	response.Success(c, http.StatusOK, result)
}
