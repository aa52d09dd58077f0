package questionnaire

import (
	"strings"

	"github.com/vnkhanh/checkout-survey/models"
)

// Selector mô tả survey mà embed checkout được cấu hình để hiển thị.
type Selector struct {
	Title  string
	Locale string
}

// LanguageOf: "fr", "fr-CA", "fr_FR" -> fr; mọi locale khác -> en.
func LanguageOf(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if l == models.LanguageTranslated || strings.HasPrefix(l, "fr-") || strings.HasPrefix(l, "fr_") {
		return models.LanguageTranslated
	}
	return models.LanguageNative
}

func languageOfSurvey(s *models.Survey) string {
	if s.Language == "" {
		return models.LanguageNative
	}
	return s.Language
}

// Select chọn survey theo tiêu đề; nếu có locale thì survey phải đúng ngôn
// ngữ, hoặc dùng bản liên kết của nó. Không khớp thì trả nil (không phải lỗi).
func Select(surveys []models.Survey, sel Selector) *models.Survey {
	var base *models.Survey
	for i := range surveys {
		if surveys[i].Title != sel.Title {
			continue
		}
		if sel.Locale == "" {
			return &surveys[i]
		}
		if languageOfSurvey(&surveys[i]) == LanguageOf(sel.Locale) {
			return &surveys[i]
		}
		if base == nil {
			base = &surveys[i]
		}
	}
	if base == nil {
		return nil
	}

	lang := LanguageOf(sel.Locale)
	for i := range surveys {
		s := &surveys[i]
		if s.ID == base.ID {
			continue
		}
		linked := (base.LinkedSurveyID != nil && *base.LinkedSurveyID == s.ID) ||
			(s.LinkedSurveyID != nil && *s.LinkedSurveyID == base.ID)
		if linked && languageOfSurvey(s) == lang {
			return s
		}
	}
	return nil
}
