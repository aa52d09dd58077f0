package models

import (
	"fmt"
	"strings"
)

// QuestionType là loại câu hỏi; mỗi câu hỏi có đúng một loại.
type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	Conditional  QuestionType = "conditional"
	FreeText     QuestionType = "free_text"
)

func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultiChoice, Conditional, FreeText:
		return true
	}
	return false
}

// HasOptions: chỉ các loại lựa chọn mới có AnswerOption do admin nhập.
func (t QuestionType) HasOptions() bool {
	return t == SingleChoice || t == MultiChoice
}

// ParseQuestionType chấp nhận cả tên cũ kiểu "MULTIPLE_CHOICE", "text", ...
func ParseQuestionType(s string) (QuestionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "single_choice", "choice":
		return SingleChoice, nil
	case "multi", "multi_choice", "multiple_choice", "multichoice":
		return MultiChoice, nil
	case "conditional", "yes_no", "true_false":
		return Conditional, nil
	case "free_text", "text", "textbox", "fill_blank":
		return FreeText, nil
	}
	return "", fmt.Errorf("loại câu hỏi không hợp lệ: %q", s)
}

// TypeFromFlags chuyển bộ cờ boolean cũ (isMultiChoice/isConditional/isTextBox)
// thành một loại duy nhất. Bật nhiều cờ cùng lúc thì các cờ tự triệt tiêu nhau
// và câu hỏi trở thành single_choice.
func TypeFromFlags(multi, conditional, text bool) QuestionType {
	switch {
	case multi && !conditional && !text:
		return MultiChoice
	case conditional && !multi && !text:
		return Conditional
	case text && !multi && !conditional:
		return FreeText
	}
	return SingleChoice
}

// Flags trả lại bộ cờ cũ cho client đời trước.
func (t QuestionType) Flags() (multi, conditional, text bool) {
	return t == MultiChoice, t == Conditional, t == FreeText
}
