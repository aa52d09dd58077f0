package models

import "encoding/json"

// questionJSON giữ thêm bộ cờ cũ để embed checkout đời trước vẫn đọc được.
type questionJSON struct {
	ID            uint           `json:"id"`
	SurveyID      uint           `json:"surveyId"`
	Text          string         `json:"text"`
	Position      int            `json:"position"`
	Type          QuestionType   `json:"type"`
	IsMultiChoice bool           `json:"isMultiChoice"`
	IsConditional bool           `json:"isConditional"`
	IsTextBox     bool           `json:"isTextBox"`
	Options       []AnswerOption `json:"answers"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	multi, cond, text := q.Type.Flags()
	opts := q.Options
	if opts == nil {
		opts = []AnswerOption{}
	}
	return json.Marshal(questionJSON{
		ID:            q.ID,
		SurveyID:      q.SurveyID,
		Text:          q.Text,
		Position:      q.Position,
		Type:          q.Type,
		IsMultiChoice: multi,
		IsConditional: cond,
		IsTextBox:     text,
		Options:       opts,
	})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t := raw.Type
	if !t.Valid() {
		t = TypeFromFlags(raw.IsMultiChoice, raw.IsConditional, raw.IsTextBox)
	}
	*q = Question{
		ID:       raw.ID,
		SurveyID: raw.SurveyID,
		Text:     raw.Text,
		Position: raw.Position,
		Type:     t,
		Options:  raw.Options,
	}
	return nil
}
