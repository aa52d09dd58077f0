package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/checkout-survey/models"
)

func TestSaveCreatesTree(t *testing.T) {
	svc := NewSurveyService(setupTestDB(t))
	s := seedSurvey(t, svc)

	require.Len(t, s.Questions, 3)
	assert.Equal(t, models.LanguageNative, s.Language)

	q0 := s.Questions[0]
	assert.Equal(t, models.SingleChoice, q0.Type)
	require.Len(t, q0.Options, 3)
	assert.True(t, q0.Options[2].HasFollowUp)

	q1 := s.Questions[1]
	assert.Equal(t, models.Conditional, q1.Type)
	require.Len(t, q1.Options, 2)
	assert.Equal(t, "Yes", q1.Options[0].Text)
	assert.Equal(t, "No", q1.Options[1].Text)

	assert.Equal(t, models.MultiChoice, s.Questions[2].Type)
}

func TestSaveResolvesQuestionTypes(t *testing.T) {
	svc := NewSurveyService(setupTestDB(t))
	s, err := svc.Save(context.Background(), SaveSurveyInput{
		Title: "Types",
		Questions: []QuestionInput{
			{Text: "both flags", IsMultiChoice: true, IsTextBox: true, Options: []OptionInput{{Text: "a"}}},
			{Text: "text", IsTextBox: true, Options: []OptionInput{{Text: "ignored"}}},
			{Text: "explicit", Type: "multi_choice", Answers: []OptionInput{{Text: "x"}, {Text: " "}}},
			{Text: "conditional ignores options", IsConditional: true, Options: []OptionInput{{Text: "Maybe"}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.SingleChoice, s.Questions[0].Type)
	assert.Equal(t, models.FreeText, s.Questions[1].Type)
	assert.Empty(t, s.Questions[1].Options)
	assert.Equal(t, models.MultiChoice, s.Questions[2].Type)
	assert.Len(t, s.Questions[2].Options, 1)
	require.Len(t, s.Questions[3].Options, 2)
	assert.Equal(t, "Yes", s.Questions[3].Options[0].Text)
}

func TestSaveFrenchVersionLinks(t *testing.T) {
	svc := NewSurveyService(setupTestDB(t))
	en := seedSurvey(t, svc)

	fr, err := svc.Save(context.Background(), SaveSurveyInput{
		Title:           "Après l'achat",
		IsFrenchVersion: true,
		LinkedSurveyID:  &en.ID,
		Questions:       []QuestionInput{{Text: "Achèteriez-vous encore ?", IsConditional: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.LanguageTranslated, fr.Language)
	require.NotNil(t, fr.LinkedSurveyID)
	assert.Equal(t, en.ID, *fr.LinkedSurveyID)
	assert.Equal(t, "Oui", fr.Questions[0].Options[0].Text)
	assert.Equal(t, "Non", fr.Questions[0].Options[1].Text)

	missing := uint(999)
	_, err = svc.Save(context.Background(), SaveSurveyInput{Title: "x", LinkedSurveyID: &missing})
	assert.ErrorIs(t, err, ErrSurveyNotFound)
}

func TestSaveUpdateReplacesQuestions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSurveyService(db)
	s := seedSurvey(t, svc)

	updated, err := svc.Save(context.Background(), SaveSurveyInput{
		SurveyID:  &s.ID,
		Title:     "Renamed",
		Questions: []QuestionInput{{Text: "Only one", Options: []OptionInput{{Text: "A"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, s.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Title)
	require.Len(t, updated.Questions, 1)

	var nq, no int64
	db.Model(&models.Question{}).Count(&nq)
	db.Model(&models.AnswerOption{}).Count(&no)
	assert.Equal(t, int64(1), nq)
	assert.Equal(t, int64(1), no)
}

func TestSaveValidation(t *testing.T) {
	svc := NewSurveyService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveSurveyInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidSurvey)

	_, err = svc.Save(ctx, SaveSurveyInput{Title: "t", Questions: []QuestionInput{{Text: ""}}})
	assert.ErrorIs(t, err, ErrInvalidSurvey)

	_, err = svc.Save(ctx, SaveSurveyInput{Title: "t", Questions: []QuestionInput{{Text: "q", Type: "ranking"}}})
	assert.ErrorIs(t, err, ErrInvalidSurvey)

	id := uint(42)
	_, err = svc.Save(ctx, SaveSurveyInput{SurveyID: &id, Title: "t"})
	assert.ErrorIs(t, err, ErrSurveyNotFound)
}

func TestDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSurveyService(db)
	ctx := context.Background()
	s := seedSurvey(t, svc)
	other := seedSurvey(t, svc)

	fr, err := svc.Save(ctx, SaveSurveyInput{Title: "fr", IsFrenchVersion: true, LinkedSurveyID: &s.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, s.ID))

	_, err = svc.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSurveyNotFound)

	var nq, no int64
	db.Model(&models.Question{}).Count(&nq)
	db.Model(&models.AnswerOption{}).Count(&no)
	assert.Equal(t, int64(len(other.Questions)), nq)
	assert.Equal(t, int64(8), no)

	got, err := svc.Get(ctx, fr.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LinkedSurveyID)

	assert.ErrorIs(t, svc.Delete(ctx, s.ID), ErrSurveyNotFound)
}

func TestListAndQuestionCounts(t *testing.T) {
	svc := NewSurveyService(setupTestDB(t))
	ctx := context.Background()
	seedSurvey(t, svc)
	_, err := svc.Save(ctx, SaveSurveyInput{Title: "Empty"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "How was your experience?", list[0].Questions[0].Text)

	counts, err := svc.QuestionCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Post purchase": 3, "Empty": 0}, counts)
}
