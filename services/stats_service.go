package services

import (
	"context"
	"fmt"

	"github.com/vnkhanh/checkout-survey/models"
	"github.com/vnkhanh/checkout-survey/questionnaire"
)

const OtherLabel = "Other"

type AnswerCount struct {
	Answer string `json:"answer"`
	Count  int    `json:"count"`
}

type QuestionStats struct {
	QuestionID   uint                `json:"questionId"`
	Text         string              `json:"text"`
	Type         models.QuestionType `json:"type"`
	Responses    int                 `json:"responses"`
	AnswersCount []AnswerCount       `json:"answersCount"`
	// Văn bản tự do: câu free-text hoặc phần other(...) của lựa chọn có ô nhập.
	Texts []string `json:"texts,omitempty"`
}

type SurveyStats struct {
	SurveyID   uint            `json:"surveyId"`
	Title      string          `json:"title"`
	TotalUsers int             `json:"totalUsers"`
	Questions  []QuestionStats `json:"questions"`
}

// StatsService gom số liệu cho biểu đồ; việc vẽ do frontend đảm nhiệm.
type StatsService struct {
	surveys   *SurveyService
	dashboard *DashboardService
}

func NewStatsService(surveys *SurveyService, dashboard *DashboardService) *StatsService {
	return &StatsService{surveys: surveys, dashboard: dashboard}
}

func (s *StatsService) Survey(ctx context.Context, shop string, surveyID uint) (*SurveyStats, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	rows, err := s.dashboard.Filter(ctx, ResponseQuery{Shop: shop, Sort: "date-asc"})
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	records := make([]models.ResponseRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.ResponseRecord)
	}
	return Aggregate(survey, records), nil
}

// Aggregate đếm câu trả lời theo từng câu hỏi, khớp bằng tiêu đề câu hỏi.
// Câu multi-choice được tách theo dấu phẩy; mọi segment other(...) gộp vào "Other".
func Aggregate(survey *models.Survey, records []models.ResponseRecord) *SurveyStats {
	out := &SurveyStats{
		SurveyID:   survey.ID,
		Title:      survey.Title,
		TotalUsers: len(records),
		Questions:  make([]QuestionStats, 0, len(survey.Questions)),
	}

	for _, q := range survey.Questions {
		qs := QuestionStats{QuestionID: q.ID, Text: q.Text, Type: q.Type}
		counts := map[string]int{}
		var order []string
		for _, o := range q.Options {
			if _, seen := counts[o.Text]; !seen {
				counts[o.Text] = 0
				order = append(order, o.Text)
			}
		}
		bump := func(label string) {
			if _, seen := counts[label]; !seen {
				order = append(order, label)
			}
			counts[label]++
		}

		for _, r := range records {
			answer, ok := findAnswer(r.Answers, q.Text)
			if !ok || answer == "" {
				continue
			}
			qs.Responses++

			if q.Type == models.FreeText {
				if text, isOther := questionnaire.DecodeOther(answer); isOther {
					answer = text
				}
				qs.Texts = append(qs.Texts, answer)
				continue
			}

			segments := []string{answer}
			if q.Type == models.MultiChoice {
				segments = questionnaire.SplitAnswer(answer)
			}
			for _, seg := range segments {
				if text, isOther := questionnaire.DecodeOther(seg); isOther {
					bump(OtherLabel)
					if text != "" {
						qs.Texts = append(qs.Texts, text)
					}
					continue
				}
				bump(seg)
			}
		}

		if q.Type != models.FreeText {
			qs.AnswersCount = make([]AnswerCount, 0, len(order))
			for _, label := range order {
				qs.AnswersCount = append(qs.AnswersCount, AnswerCount{Answer: label, Count: counts[label]})
			}
		}
		out.Questions = append(out.Questions, qs)
	}
	return out
}

func findAnswer(answers []models.ResponseAnswer, title string) (string, bool) {
	for _, a := range answers {
		if a.QuestionTitle == title {
			return a.Answer, true
		}
	}
	return "", false
}
