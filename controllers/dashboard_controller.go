package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/middleware"
	"github.com/vnkhanh/checkout-survey/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	stats     *services.StatsService
}

func NewDashboardHandler(dashboard *services.DashboardService, stats *services.StatsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, stats: stats}
}

// GET /api/admin/responses?search=&sort=&status=&from=&to=&page=&limit=
func (h *DashboardHandler) List(c *gin.Context) {
	from, err := parseTime(c.Query("from"), false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "from không hợp lệ"})
		return
	}
	to, err := parseTime(c.Query("to"), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "to không hợp lệ"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))

	result, err := h.dashboard.List(c.Request.Context(), services.ResponseQuery{
		Shop:   middleware.ShopFrom(c),
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Status: c.Query("status"),
		From:   from,
		To:     to,
		Page:   page,
		Limit:  limit,
	})
	if errors.Is(err, services.ErrInvalidFilter) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		logger.WithError(err).Error("dashboard: list responses")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy danh sách phản hồi"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/admin/responses/:id
func (h *DashboardHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rec, err := h.dashboard.Get(c.Request.Context(), middleware.ShopFrom(c), id)
	if errors.Is(err, services.ErrResponseNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Phản hồi không tồn tại"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("dashboard: get response")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy phản hồi"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DELETE /api/admin/responses/:id
func (h *DashboardHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	err := h.dashboard.Delete(c.Request.Context(), middleware.ShopFrom(c), id)
	if errors.Is(err, services.ErrResponseNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Phản hồi không tồn tại"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("dashboard: delete response")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể xoá phản hồi"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/admin/surveys/:id/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	st, err := h.stats.Survey(c.Request.Context(), middleware.ShopFrom(c), id)
	if errors.Is(err, services.ErrSurveyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Survey không tồn tại"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("dashboard: stats")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tính thống kê"})
		return
	}
	c.JSON(http.StatusOK, st)
}
