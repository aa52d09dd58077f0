package controllers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/middleware"
	"github.com/vnkhanh/checkout-survey/models"
	"github.com/vnkhanh/checkout-survey/services"
)

type ExportHandler struct {
	exports *services.ExportService
}

func NewExportHandler(exports *services.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

type exportReq struct {
	Format string `json:"format"`
	Search string `json:"search"`
	Status string `json:"status"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// POST /api/admin/exports
func (h *ExportHandler) Create(c *gin.Context) {
	var req exportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Payload không hợp lệ"})
		return
	}
	from, err := parseTime(req.From, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "from không hợp lệ"})
		return
	}
	to, err := parseTime(req.To, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "to không hợp lệ"})
		return
	}

	job, err := h.exports.Create(c.Request.Context(), middleware.ShopFrom(c), services.ExportRequest{
		Format: req.Format,
		Search: req.Search,
		Status: req.Status,
		From:   from,
		To:     to,
	})
	if errors.Is(err, services.ErrUnsupportedFormat) || errors.Is(err, services.ErrInvalidFilter) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		logger.WithError(err).Error("export: create job")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo job export"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.JobID,
		"status": job.Status,
	})
}

// GET /api/admin/exports/:job_id: job xong thì trả file, chưa xong thì trả trạng thái.
// Client muốn metadata (public_url) gửi Accept: application/json.
func (h *ExportHandler) Get(c *gin.Context) {
	job, err := h.exports.Get(c.Request.Context(), middleware.ShopFrom(c), c.Param("job_id"))
	if errors.Is(err, services.ErrExportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Job không tìm thấy"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("export: get job")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}

	if job.Status == models.ExportDone && job.FilePath != nil && c.GetHeader("Accept") != gin.MIMEJSON {
		c.Header("Content-Type", services.ContentType(job.Format))
		c.FileAttachment(*job.FilePath, filepath.Base(*job.FilePath))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":     job.JobID,
		"status":     job.Status,
		"format":     job.Format,
		"public_url": job.PublicURL,
		"error":      job.ErrorMsg,
	})
}
