package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gyansort/gyansort-api/internal/models"
	"github.com/gyansort/gyansort-api/internal/service"
	appErrors "github.com/gyansort/gyansort-api/pkg/errors"
	"github.com/gyansort/gyansort-api/pkg/response"
)

// ForumHandler wires HTTP endpoints to the forum service.
type ForumHandler struct {
	service *service.ForumService
}

// NewForumHandler creates a new handler.
func NewForumHandler(svc *service.ForumService) *ForumHandler {
	return &ForumHandler{service: svc}
}

// List godoc
// @Summary List forums
// @Description Returns all active forums
// @Tags Forums
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /forums/ [get]
func (h *ForumHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// Instructors see only the forums they created, matching the
	// dashboard behavior students never hit.
	if claims.Role == models.RoleInstructor && c.Query("mine") == "true" {
		forums, err := h.service.ListByCreator(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, forums, nil)
		return
	}

	forums, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, forums, nil)
}

// Get godoc
// @Summary Get forum
// @Description Returns one forum by id
// @Tags Forums
// @Produce json
// @Param id path string true "Forum ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forums/{id}/ [get]
func (h *ForumHandler) Get(c *gin.Context) {
	forum, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, forum, nil)
}

// Create godoc
// @Summary Create forum
// @Description Creates a forum owned by the authenticated instructor
// @Tags Forums
// @Accept json
// @Produce json
// @Param payload body models.CreateForumRequest true "Forum payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /forums/ [post]
func (h *ForumHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateForumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid forum payload"))
		return
	}

	forum, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, forum)
}

// Delete godoc
// @Summary Delete forum
// @Description Deactivates a forum owned by the authenticated instructor
// @Tags Forums
// @Produce json
// @Param id path string true "Forum ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forums/{id}/ [delete]
func (h *ForumHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Join godoc
// @Summary Join forum
// @Description Adds the authenticated student to a forum
// @Tags Forums
// @Produce json
// @Param id path string true "Forum ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /forums/{id}/join/ [post]
func (h *ForumHandler) Join(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.Join(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Leave godoc
// @Summary Leave forum
// @Description Deactivates the authenticated student's membership
// @Tags Forums
// @Produce json
// @Param id path string true "Forum ID"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forums/{id}/leave/ [post]
func (h *ForumHandler) Leave(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Leave(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Participants godoc
// @Summary List participants
// @Description Returns active participants of a forum
// @Tags Forums
// @Produce json
// @Param forum query string true "Forum ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /forums/participants/ [get]
func (h *ForumHandler) Participants(c *gin.Context) {
	forumID := c.Query("forum")
	if forumID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "forum query parameter is required"))
		return
	}

	participants, err := h.service.Participants(c.Request.Context(), forumID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, participants, nil)
}

// Messages godoc
// @Summary List messages
// @Description Returns a forum's messages visible to the caller
// @Tags Forums
// @Produce json
// @Param forum query string true "Forum ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /forums/messages/ [get]
func (h *ForumHandler) Messages(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	forumID := c.Query("forum")
	if forumID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "forum query parameter is required"))
		return
	}

	messages, err := h.service.Messages(c.Request.Context(), claims, forumID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, messages, nil)
}

// PostMessage godoc
// @Summary Post message
// @Description Posts a message to a forum the caller belongs to
// @Tags Forums
// @Accept json
// @Produce json
// @Param payload body models.CreateMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /forums/messages/ [post]
func (h *ForumHandler) PostMessage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	msg, err := h.service.PostMessage(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, msg)
}

// CreateAttachment godoc
// @Summary Attach file
// @Description Registers an uploaded file against a forum message
// @Tags Forums
// @Accept json
// @Produce json
// @Param payload body models.CreateAttachmentRequest true "Attachment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /forums/attachments/ [post]
func (h *ForumHandler) CreateAttachment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attachment payload"))
		return
	}

	att, err := h.service.CreateAttachment(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, att)
}

// Attachments godoc
// @Summary List attachments
// @Description Returns attachments for one message
// @Tags Forums
// @Produce json
// @Param message query string true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /forums/attachments/ [get]
func (h *ForumHandler) Attachments(c *gin.Context) {
	messageID := c.Query("message")
	if messageID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "message query parameter is required"))
		return
	}

	atts, err := h.service.Attachments(c.Request.Context(), messageID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, atts, nil)
}
