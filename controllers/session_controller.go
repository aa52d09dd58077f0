package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/questionnaire"
	"github.com/vnkhanh/checkout-survey/services"
)

// SessionHandler cho embed "mỏng": mọi chuyển trạng thái chạy phía server.
type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) respond(c *gin.Context, status int, view *services.SessionView, err error) {
	switch {
	case err == nil:
		c.JSON(status, view)
	case errors.Is(err, questionnaire.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Session không tồn tại hoặc đã hết hạn"})
	case errors.Is(err, services.ErrMissingOrderID):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, questionnaire.ErrTerminal), errors.Is(err, questionnaire.ErrNoSurvey):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, questionnaire.ErrWrongType), errors.Is(err, questionnaire.ErrUnknownOption):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	default:
		logger.WithError(err).Error("questionnaire session")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể xử lý session"})
	}
}

// POST /api/proxy/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	var in services.StartSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	view, err := h.sessions.Start(c.Request.Context(), in)
	h.respond(c, http.StatusCreated, view, err)
}

// GET /api/proxy/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

type chooseReq struct {
	OptionID uint `json:"optionId" binding:"required"`
}

// POST /api/proxy/sessions/:id/choose
func (h *SessionHandler) Choose(c *gin.Context) {
	var req chooseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	view, err := h.sessions.Choose(c.Request.Context(), c.Param("id"), req.OptionID)
	h.respond(c, http.StatusOK, view, err)
}

type toggleReq struct {
	OptionIDs []uint `json:"optionIds"`
}

// POST /api/proxy/sessions/:id/toggle
func (h *SessionHandler) Toggle(c *gin.Context) {
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	view, err := h.sessions.Toggle(c.Request.Context(), c.Param("id"), req.OptionIDs)
	h.respond(c, http.StatusOK, view, err)
}

type textReq struct {
	Text string `json:"text"`
}

// POST /api/proxy/sessions/:id/text
func (h *SessionHandler) SetText(c *gin.Context) {
	var req textReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	view, err := h.sessions.SetText(c.Request.Context(), c.Param("id"), req.Text)
	h.respond(c, http.StatusOK, view, err)
}

// POST /api/proxy/sessions/:id/advance
func (h *SessionHandler) Advance(c *gin.Context) {
	view, err := h.sessions.Advance(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

// POST /api/proxy/sessions/:id/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	view, err := h.sessions.Previous(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

// DELETE /api/proxy/sessions/:id
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.sessions.Close(c.Request.Context(), c.Param("id")); err != nil {
		h.respond(c, http.StatusOK, nil, err)
		return
	}
	c.Status(http.StatusNoContent)
}
