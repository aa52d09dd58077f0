package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/checkout-survey/metrics"
	"github.com/vnkhanh/checkout-survey/models"
	"github.com/vnkhanh/checkout-survey/questionnaire"
)

// ResponseService ghi phản hồi của người mua: một bản ghi cho mỗi (shop, order).
type ResponseService struct {
	db      *gorm.DB
	metrics *metrics.Collector
}

func NewResponseService(db *gorm.DB, m *metrics.Collector) *ResponseService {
	return &ResponseService{db: db, metrics: m}
}

// Upsert kiểm tra mọi questionTitle rồi tạo hoặc ghi đè bản ghi theo
// (shopDomain, orderId). Chỉ cần một tiêu đề lạ là cả lô thất bại.
func (s *ResponseService) Upsert(ctx context.Context, sub questionnaire.Submission) (*models.ResponseRecord, error) {
	orderID := strings.TrimSpace(sub.OrderID)
	if orderID == "" {
		s.metrics.RecordUpsert("invalid")
		return nil, ErrMissingOrderID
	}

	answers := sub.Answers
	if answers == nil {
		answers = []models.ResponseAnswer{}
	}

	var rec models.ResponseRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTitles(tx, answers); err != nil {
			return err
		}

		rec = models.ResponseRecord{
			ShopDomain:     sub.ShopDomain,
			OrderID:        orderID,
			Email:          sub.Email,
			SurveyTitle:    sub.SurveyTitle,
			Answers:        answers,
			TerminalReason: string(sub.TerminalReason),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_domain"}, {Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "survey_title", "answers", "terminal_reason", "updated_at"}),
		}).Create(&rec).Error
		if err != nil {
			return err
		}
		return tx.Where("shop_domain = ? AND order_id = ?", rec.ShopDomain, rec.OrderID).First(&rec).Error
	})
	if err != nil {
		if errors.Is(err, ErrUnknownQuestion) {
			s.metrics.RecordUpsert("unknown_question")
			return nil, err
		}
		s.metrics.RecordUpsert("error")
		return nil, fmt.Errorf("upsert response %s/%s: %w", sub.ShopDomain, orderID, err)
	}
	s.metrics.RecordUpsert("ok")
	return &rec, nil
}

// Persist cho phép dùng ResponseService trực tiếp làm questionnaire.Persister
// (session phía server không cần đi vòng qua HTTP).
func (s *ResponseService) Persist(ctx context.Context, sub questionnaire.Submission) error {
	_, err := s.Upsert(ctx, sub)
	return err
}

func checkTitles(tx *gorm.DB, answers []models.ResponseAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	titles := make([]string, 0, len(answers))
	for _, a := range answers {
		titles = append(titles, a.QuestionTitle)
	}

	var found []string
	if err := tx.Model(&models.Question{}).Distinct("text").Where("text IN ?", titles).Pluck("text", &found).Error; err != nil {
		return err
	}
	known := make(map[string]bool, len(found))
	for _, t := range found {
		known[t] = true
	}
	for _, t := range titles {
		if !known[t] {
			return fmt.Errorf("%w: question with title %q not found in the database", ErrUnknownQuestion, t)
		}
	}
	return nil
}
