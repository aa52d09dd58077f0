package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vnkhanh/checkout-survey/models"
)

// SurveyService quản lý định nghĩa survey (survey → câu hỏi → lựa chọn).
type SurveyService struct {
	db *gorm.DB
}

func NewSurveyService(db *gorm.DB) *SurveyService {
	return &SurveyService{db: db}
}

type OptionInput struct {
	Text        string `json:"text"`
	HaveTextBox bool   `json:"haveTextBox"`
}

// QuestionInput nhận cả trường type mới lẫn bộ cờ cũ của form builder.
type QuestionInput struct {
	Text          string        `json:"text"`
	Type          string        `json:"type"`
	IsMultiChoice bool          `json:"isMultiChoice"`
	IsConditional bool          `json:"isConditional"`
	IsTextBox     bool          `json:"isTextBox"`
	Options       []OptionInput `json:"options"`
	Answers       []OptionInput `json:"answers"`
}

// ResolveType: type tường minh thắng; không có thì suy ra từ bộ cờ.
func (q QuestionInput) ResolveType() (models.QuestionType, error) {
	if strings.TrimSpace(q.Type) != "" {
		return models.ParseQuestionType(q.Type)
	}
	return models.TypeFromFlags(q.IsMultiChoice, q.IsConditional, q.IsTextBox), nil
}

func (q QuestionInput) options() []OptionInput {
	if len(q.Options) > 0 {
		return q.Options
	}
	return q.Answers
}

type SaveSurveyInput struct {
	SurveyID        *uint
	Title           string
	Questions       []QuestionInput
	IsFrenchVersion bool
	LinkedSurveyID  *uint
}

func preloadTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") })
}

// List trả về mọi survey kèm câu hỏi và lựa chọn.
func (s *SurveyService) List(ctx context.Context) ([]models.Survey, error) {
	var surveys []models.Survey
	if err := preloadTree(s.db.WithContext(ctx)).Order("id ASC").Find(&surveys).Error; err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return surveys, nil
}

func (s *SurveyService) Get(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := preloadTree(s.db.WithContext(ctx)).First(&survey, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get survey %d: %w", id, err)
	}
	return &survey, nil
}

// Save tạo mới, hoặc thay toàn bộ câu hỏi/lựa chọn của survey đã có.
// Tất cả nằm trong một transaction.
func (s *SurveyService) Save(ctx context.Context, in SaveSurveyInput) (*models.Survey, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidSurvey)
	}
	language := models.LanguageNative
	if in.IsFrenchVersion {
		language = models.LanguageTranslated
	}
	questions, err := buildQuestions(in.Questions, language)
	if err != nil {
		return nil, err
	}

	var saved models.Survey
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.LinkedSurveyID != nil {
			if in.SurveyID != nil && *in.LinkedSurveyID == *in.SurveyID {
				return fmt.Errorf("%w: survey cannot link to itself", ErrInvalidSurvey)
			}
			var n int64
			if err := tx.Model(&models.Survey{}).Where("id = ?", *in.LinkedSurveyID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: linked survey %d", ErrSurveyNotFound, *in.LinkedSurveyID)
			}
		}

		if in.SurveyID != nil {
			if err := tx.First(&saved, *in.SurveyID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrSurveyNotFound
				}
				return err
			}
			if err := deleteQuestions(tx, saved.ID); err != nil {
				return err
			}
			saved.Title = title
			saved.Language = language
			saved.LinkedSurveyID = in.LinkedSurveyID
			if err := tx.Model(&saved).Select("title", "language", "linked_survey_id").Updates(&saved).Error; err != nil {
				return err
			}
		} else {
			saved = models.Survey{Title: title, Language: language, LinkedSurveyID: in.LinkedSurveyID}
			if err := tx.Create(&saved).Error; err != nil {
				return err
			}
		}

		for i := range questions {
			questions[i].SurveyID = saved.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSurveyNotFound) || errors.Is(err, ErrInvalidSurvey) {
			return nil, err
		}
		return nil, fmt.Errorf("save survey: %w", err)
	}
	return s.Get(ctx, saved.ID)
}

// Delete xoá survey cùng câu hỏi và lựa chọn. Bản dịch trỏ tới survey này bị gỡ liên kết.
func (s *SurveyService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var survey models.Survey
		if err := tx.First(&survey, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSurveyNotFound
			}
			return err
		}
		if err := deleteQuestions(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Survey{}).Where("linked_survey_id = ?", id).
			Update("linked_survey_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&survey).Error
	})
	if err != nil && !errors.Is(err, ErrSurveyNotFound) {
		return fmt.Errorf("delete survey %d: %w", id, err)
	}
	return err
}

// QuestionCounts: số câu hỏi theo tiêu đề survey, dùng để phân loại phản hồi.
func (s *SurveyService) QuestionCounts(ctx context.Context) (map[string]int, error) {
	type row struct {
		Title string
		Total int
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table("surveys").
		Select("surveys.title AS title, COUNT(questions.id) AS total").
		Joins("LEFT JOIN questions ON questions.survey_id = surveys.id").
		Group("surveys.id, surveys.title").
		Order("surveys.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("question counts: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		if _, ok := out[r.Title]; !ok {
			out[r.Title] = r.Total
		}
	}
	return out, nil
}

func deleteQuestions(tx *gorm.DB, surveyID uint) error {
	sub := tx.Model(&models.Question{}).Select("id").Where("survey_id = ?", surveyID)
	if err := tx.Where("question_id IN (?)", sub).Delete(&models.AnswerOption{}).Error; err != nil {
		return err
	}
	return tx.Where("survey_id = ?", surveyID).Delete(&models.Question{}).Error
}

func buildQuestions(in []QuestionInput, language string) ([]models.Question, error) {
	out := make([]models.Question, 0, len(in))
	for i, q := range in {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrInvalidSurvey, i+1)
		}
		t, err := q.ResolveType()
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidSurvey, i+1, err)
		}

		var opts []models.AnswerOption
		switch t {
		case models.Conditional:
			opts = models.ConditionalOptions(language)
		case models.FreeText:
			opts = nil
		default:
			for j, o := range q.options() {
				if strings.TrimSpace(o.Text) == "" {
					continue
				}
				opts = append(opts, models.AnswerOption{
					Text:        strings.TrimSpace(o.Text),
					HasFollowUp: o.HaveTextBox,
					Position:    j,
				})
			}
		}
		out = append(out, models.Question{
			Text:     text,
			Position: i,
			Type:     t,
			Options:  opts,
		})
	}
	return out, nil
}
