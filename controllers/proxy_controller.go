package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/questionnaire"
	"github.com/vnkhanh/checkout-survey/services"
)

// ProxyHandler phục vụ embed checkout (không cần đăng nhập).
type ProxyHandler struct {
	surveys   *services.SurveyService
	responses *services.ResponseService
}

func NewProxyHandler(surveys *services.SurveyService, responses *services.ResponseService) *ProxyHandler {
	return &ProxyHandler{surveys: surveys, responses: responses}
}

// GET /api/proxy/surveys
func (h *ProxyHandler) ListSurveys(c *gin.Context) {
	surveys, err := h.surveys.List(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("proxy: list surveys")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch surveys"})
		return
	}
	if len(surveys) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No surveys found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"surveys": surveys})
}

// POST /api/proxy/responses: upsert theo (shopDomain, orderId).
func (h *ProxyHandler) SubmitResponse(c *gin.Context) {
	var sub questionnaire.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	_, err := h.responses.Upsert(c.Request.Context(), sub)
	if errors.Is(err, services.ErrMissingOrderID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	if err != nil {
		logger.WithFields(logrus.Fields{
			"shop":     sub.ShopDomain,
			"order_id": sub.OrderID,
		}).WithError(err).Error("proxy: store response")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to process the request.",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Action successfully called. Data received and stored!",
		"receivedData": sub,
	})
}
