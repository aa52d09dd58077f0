package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/checkout-survey/models"
)

func uintPtr(v uint) *uint { return &v }

func linkedSurveys() []models.Survey {
	return []models.Survey{
		{ID: 1, Title: "After checkout", Language: models.LanguageNative},
		{ID: 2, Title: "Après l'achat", Language: models.LanguageTranslated, LinkedSurveyID: uintPtr(1)},
		{ID: 3, Title: "Holiday", Language: models.LanguageNative},
	}
}

func TestLanguageOf(t *testing.T) {
	assert.Equal(t, "fr", LanguageOf("fr"))
	assert.Equal(t, "fr", LanguageOf("fr-CA"))
	assert.Equal(t, "fr", LanguageOf("FR_fr"))
	assert.Equal(t, "en", LanguageOf("en-US"))
	assert.Equal(t, "en", LanguageOf("de"))
	assert.Equal(t, "en", LanguageOf(""))
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		sel    Selector
		wantID uint
	}{
		{"title only", Selector{Title: "Holiday"}, 3},
		{"matching language", Selector{Title: "After checkout", Locale: "en-US"}, 1},
		{"linked translation", Selector{Title: "After checkout", Locale: "fr-CA"}, 2},
		{"reverse link", Selector{Title: "Après l'achat", Locale: "en"}, 1},
		{"no match", Selector{Title: "Missing"}, 0},
		{"no translation", Selector{Title: "Holiday", Locale: "fr"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(linkedSurveys(), tt.sel)
			if tt.wantID == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
