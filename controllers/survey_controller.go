package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/services"
)

// SurveyHandler: trình dựng survey cho admin.
type SurveyHandler struct {
	surveys *services.SurveyService
}

func NewSurveyHandler(surveys *services.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveys: surveys}
}

// GET /api/admin/surveys
func (h *SurveyHandler) List(c *gin.Context) {
	surveys, err := h.surveys.List(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("list surveys")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy danh sách survey"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"surveys": surveys})
}

// GET /api/admin/surveys/:id
func (h *SurveyHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	survey, err := h.surveys.Get(c.Request.Context(), id)
	if errors.Is(err, services.ErrSurveyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Survey không tồn tại"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("get survey")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy survey"})
		return
	}
	c.JSON(http.StatusOK, survey)
}

// saveSurveyReq nhận cả tên trường của form builder cũ (quizTitle, frenchSurveyId).
type saveSurveyReq struct {
	QuizTitle       string                   `json:"quizTitle"`
	Title           string                   `json:"title"`
	Questions       []services.QuestionInput `json:"questions"`
	SurveyID        *uint                    `json:"surveyId"`
	IsFrenchVersion bool                     `json:"isFrenchVersion"`
	FrenchSurveyID  *uint                    `json:"frenchSurveyId"`
}

func (r saveSurveyReq) input() services.SaveSurveyInput {
	title := r.QuizTitle
	if title == "" {
		title = r.Title
	}
	return services.SaveSurveyInput{
		SurveyID:        r.SurveyID,
		Title:           title,
		Questions:       r.Questions,
		IsFrenchVersion: r.IsFrenchVersion,
		LinkedSurveyID:  r.FrenchSurveyID,
	}
}

func optionalUint(s string) (*uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return nil, errors.New("id không hợp lệ: " + s)
	}
	v := uint(n)
	return &v, nil
}

// bindSaveSurvey đọc JSON body hoặc form (questions là chuỗi JSON).
func bindSaveSurvey(c *gin.Context) (saveSurveyReq, error) {
	var req saveSurveyReq
	if c.ContentType() == gin.MIMEJSON {
		err := c.ShouldBindJSON(&req)
		return req, err
	}

	req.QuizTitle = c.PostForm("quizTitle")
	if raw := c.PostForm("questions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Questions); err != nil {
			return req, err
		}
	}
	var err error
	if req.SurveyID, err = optionalUint(c.PostForm("surveyId")); err != nil {
		return req, err
	}
	if req.FrenchSurveyID, err = optionalUint(c.PostForm("frenchSurveyId")); err != nil {
		return req, err
	}
	req.IsFrenchVersion = c.PostForm("isFrenchVersion") == "true"
	return req, nil
}

// POST /api/admin/surveys: tạo mới, hoặc thay toàn bộ khi có surveyId.
func (h *SurveyHandler) Save(c *gin.Context) {
	req, err := bindSaveSurvey(c)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}

	survey, err := h.surveys.Save(c.Request.Context(), req.input())
	switch {
	case errors.Is(err, services.ErrInvalidSurvey):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Failed to save survey.", "error": err.Error()})
		return
	case errors.Is(err, services.ErrSurveyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Failed to save survey.", "error": err.Error()})
		return
	case err != nil:
		logger.WithError(err).Error("save survey")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save survey."})
		return
	}

	status := http.StatusCreated
	if req.SurveyID != nil {
		status = http.StatusOK
	}
	c.JSON(status, survey)
}

// DELETE /api/admin/surveys/:id: xoá dây chuyền rồi chuyển về danh sách.
func (h *SurveyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	err := h.surveys.Delete(c.Request.Context(), id)
	if errors.Is(err, services.ErrSurveyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Survey không tồn tại"})
		return
	}
	if err != nil {
		logger.WithError(err).WithField("survey_id", id).Error("delete survey")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete survey."})
		return
	}
	c.Redirect(http.StatusSeeOther, "/api/admin/surveys")
}
