package models

import "time"

const (
	LanguageNative     = "en"
	LanguageTranslated = "fr"
)

type Survey struct {
	ID             uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title          string     `gorm:"column:title;size:255;not null;index" json:"title"`
	Language       string     `gorm:"column:language;size:8;not null;default:'en'" json:"language"`
	LinkedSurveyID *uint      `gorm:"column:linked_survey_id" json:"linkedSurveyId"`
	Questions      []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Survey) TableName() string {
	return "surveys"
}

// IsTranslated: survey bản dịch (tiếng Pháp).
func (s *Survey) IsTranslated() bool {
	return s.Language == LanguageTranslated
}

type Question struct {
	ID       uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyID uint           `gorm:"column:survey_id;not null;index" json:"surveyId"`
	Text     string         `gorm:"column:text;type:text;not null" json:"text"`
	Position int            `gorm:"column:position;default:0" json:"position"`
	Type     QuestionType   `gorm:"column:type;size:20;not null;default:'single_choice'" json:"type"`
	Options  []AnswerOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers"`
}

func (Question) TableName() string {
	return "questions"
}

// Option tìm lựa chọn theo id, nil nếu không thuộc câu hỏi.
func (q *Question) Option(id uint) *AnswerOption {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

type AnswerOption struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID  uint   `gorm:"column:question_id;not null;index" json:"questionId"`
	Text        string `gorm:"column:text;type:text;not null" json:"text"`
	HasFollowUp bool   `gorm:"column:has_follow_up;default:false" json:"haveTextBox"`
	Position    int    `gorm:"column:position;default:0" json:"position"`
}

func (AnswerOption) TableName() string {
	return "answer_options"
}

// ConditionalOptions sinh hai lựa chọn cố định cho câu hỏi có/không.
func ConditionalOptions(language string) []AnswerOption {
	if language == LanguageTranslated {
		return []AnswerOption{{Text: "Oui", Position: 0}, {Text: "Non", Position: 1}}
	}
	return []AnswerOption{{Text: "Yes", Position: 0}, {Text: "No", Position: 1}}
}
