package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gyansort/gyansort-api/internal/models"
	"github.com/gyansort/gyansort-api/internal/service"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
	"github.com/gyansort/gyansort-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// RegisterStudent godoc
// @Summary Register a student
// @Description Create a student account and return a token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/register/ [post]
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	h.register(c, models.RoleStudent)
}

// RegisterInstructor godoc
// @Summary Register an instructor
// @Description Create an instructor account pending verification
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructors/register/ [post]
func (h *AuthHandler) RegisterInstructor(c *gin.Context) {
	h.register(c, models.RoleInstructor)
}

func (h *AuthHandler) register(c *gin.Context, role models.UserRole) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup payload"))
		return
	}

	res, err := h.service.Register(c.Request.Context(), role, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// LoginStudent godoc
// @Summary Authenticate a student
// @Description Authenticate by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /students/login/ [post]
func (h *AuthHandler) LoginStudent(c *gin.Context) {
	h.login(c, models.RoleStudent)
}

// LoginInstructor godoc
// @Summary Authenticate an instructor
// @Description Authenticate by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /instructors/login/ [post]
func (h *AuthHandler) LoginInstructor(c *gin.Context) {
	h.login(c, models.RoleInstructor)
}

func (h *AuthHandler) login(c *gin.Context, role models.UserRole) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), role, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchange refresh token for a rotated token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RefreshRequest true "Refresh payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /token/refresh/ [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid refresh payload"))
		return
	}

	res, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Get current identity
// @Description Returns the claims of the authenticated user
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/ [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	}, nil)
}
