package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResponseAnswer là một câu trả lời đã chụp lại tiêu đề câu hỏi tại thời điểm gửi.
type ResponseAnswer struct {
	QuestionTitle  string `json:"questionTitle"`
	QuestionNumber int    `json:"questionNumber"`
	Answer         string `json:"answer"`
}

// ResponseRecord: một phản hồi của người mua, duy nhất theo (shop_domain, order_id).
type ResponseRecord struct {
	ID          uint                                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ShopDomain  string                              `gorm:"column:shop_domain;size:255;not null;uniqueIndex:idx_response_shop_order" json:"shopDomain"`
	OrderID     string                              `gorm:"column:order_id;size:255;not null;uniqueIndex:idx_response_shop_order" json:"orderId"`
	Email       string                              `gorm:"column:email;size:255;index" json:"email"`
	SurveyTitle string                              `gorm:"column:survey_title;size:255" json:"surveyTitle"`
	Answers     datatypes.JSONSlice[ResponseAnswer] `gorm:"column:answers" json:"answers"`

	// "" khi người mua còn đang trả lời, "completed" hoặc "early_exit".
	TerminalReason string `gorm:"column:terminal_reason;size:20" json:"terminalReason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (ResponseRecord) TableName() string {
	return "response_records"
}

// Terminal: người mua đã đi tới trạng thái kết thúc (hoàn tất hoặc thoát sớm).
func (r *ResponseRecord) Terminal() bool {
	return r.TerminalReason != ""
}
