package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/checkout-survey/models"
)

const (
	StatusComplete     = "complete"
	StatusPartial      = "partial"
	StatusNotSubmitted = "not_submitted"

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ParseStatus chấp nhận cả tên cũ của bộ lọc ("incomplete", "partially").
func ParseStatus(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "complete", "completed":
		return StatusComplete, true
	case "partial", "partially":
		return StatusPartial, true
	case "not_submitted", "incomplete":
		return StatusNotSubmitted, true
	}
	return "", false
}

// Classify xếp loại một phản hồi theo số câu đã trả lời so với tổng số câu hỏi.
// Bản ghi đã tới trạng thái kết thúc (kể cả thoát sớm) được tính là hoàn tất.
func Classify(answered, total int, terminal bool) string {
	switch {
	case answered == 0:
		return StatusNotSubmitted
	case terminal, total > 0 && answered >= total:
		return StatusComplete
	}
	return StatusPartial
}

// ShopScopes: domain của shop cùng hai biến thể có hậu tố ngôn ngữ mà embed cũ ghi vào.
func ShopScopes(shop string) []string {
	shop = strings.TrimSuffix(strings.TrimSpace(shop), "/")
	return []string{shop, shop + "/en", shop + "/fr"}
}

type ResponseQuery struct {
	Shop   string
	Search string
	Sort   string
	Status string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

type ResponseRow struct {
	models.ResponseRecord
	Status         string `json:"status"`
	TotalQuestions int    `json:"totalQuestions"`
}

type ResponsePage struct {
	Items      []ResponseRow `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// DashboardService đọc phản hồi cho trang quản trị.
type DashboardService struct {
	db      *gorm.DB
	surveys *SurveyService
}

func NewDashboardService(db *gorm.DB, surveys *SurveyService) *DashboardService {
	return &DashboardService{db: db, surveys: surveys}
}

func orderClause(sort string) string {
	switch sort {
	case "email-asc":
		return "email ASC, id ASC"
	case "email-desc":
		return "email DESC, id DESC"
	case "date-asc":
		return "created_at ASC, id ASC"
	}
	return "created_at DESC, id DESC"
}

// Filter trả về mọi dòng khớp bộ lọc, đã xếp loại, chưa phân trang.
func (s *DashboardService) Filter(ctx context.Context, q ResponseQuery) ([]ResponseRow, error) {
	status, ok := ParseStatus(q.Status)
	if !ok {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, q.Status)
	}

	tx := s.db.WithContext(ctx).Model(&models.ResponseRecord{}).
		Where("shop_domain IN ?", ShopScopes(q.Shop))
	if term := strings.TrimSpace(q.Search); term != "" {
		tx = tx.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at <= ?", *q.To)
	}

	var records []models.ResponseRecord
	if err := tx.Order(orderClause(q.Sort)).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	counts, err := s.surveys.QuestionCounts(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ResponseRow, 0, len(records))
	for _, r := range records {
		total := counts[r.SurveyTitle]
		row := ResponseRow{
			ResponseRecord: r,
			TotalQuestions: total,
			Status:         Classify(len(r.Answers), total, r.Terminal()),
		}
		if status != "" && row.Status != status {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// List: Filter + phân trang (mặc định 10 dòng mỗi trang).
func (s *DashboardService) List(ctx context.Context, q ResponseQuery) (*ResponsePage, error) {
	rows, err := s.Filter(ctx, q)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}

	return &ResponsePage{
		Items:      rows[start:end],
		Total:      len(rows),
		Page:       page,
		Limit:      limit,
		TotalPages: (len(rows) + limit - 1) / limit,
	}, nil
}

func (s *DashboardService) Get(ctx context.Context, shop string, id uint) (*models.ResponseRecord, error) {
	var rec models.ResponseRecord
	err := s.db.WithContext(ctx).Where("shop_domain IN ?", ShopScopes(shop)).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResponseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get response %d: %w", id, err)
	}
	return &rec, nil
}

func (s *DashboardService) Delete(ctx context.Context, shop string, id uint) error {
	res := s.db.WithContext(ctx).Where("shop_domain IN ?", ShopScopes(shop)).Delete(&models.ResponseRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete response %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrResponseNotFound
	}
	return nil
}
