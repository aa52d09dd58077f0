package questionnaire

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/checkout-survey/models"
)

type recorder struct {
	mu   sync.Mutex
	subs []Submission
}

func (r *recorder) Persist(_ context.Context, s Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, s)
	return nil
}

func (r *recorder) all() []Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Submission(nil), r.subs...)
}

func (r *recorder) last(t *testing.T) Submission {
	t.Helper()
	subs := r.all()
	require.NotEmpty(t, subs, "expected at least one persisted submission")
	return subs[len(subs)-1]
}

// testSurvey: Q1 single (Good, Bad, Other*), Q2 conditional, Q3 multi
// (Price, Quality, Other*), Q4 free text. * = follow-up text box.
func testSurvey() *models.Survey {
	return &models.Survey{
		ID:       1,
		Title:    "Post purchase",
		Language: models.LanguageNative,
		Questions: []models.Question{
			{ID: 10, Text: "How was your experience?", Position: 0, Type: models.SingleChoice, Options: []models.AnswerOption{
				{ID: 1, Text: "Good", Position: 0},
				{ID: 2, Text: "Bad", Position: 1},
				{ID: 3, Text: "Other", Position: 2, HasFollowUp: true},
			}},
			{ID: 11, Text: "Would you buy again?", Position: 1, Type: models.Conditional, Options: []models.AnswerOption{
				{ID: 4, Text: "Yes", Position: 0},
				{ID: 5, Text: "No", Position: 1},
			}},
			{ID: 12, Text: "Why did you buy?", Position: 2, Type: models.MultiChoice, Options: []models.AnswerOption{
				{ID: 6, Text: "Price", Position: 0},
				{ID: 7, Text: "Quality", Position: 1},
				{ID: 8, Text: "Other", Position: 2, HasFollowUp: true},
			}},
			{ID: 13, Text: "Anything else?", Position: 3, Type: models.FreeText},
		},
	}
}

func testMeta() Meta {
	return Meta{ShopDomain: "shop.myshopify.com", Email: "a@b.co", OrderID: "gid://shopify/Order/1"}
}

func TestSingleChoiceAdvancesOneQuestion(t *testing.T) {
	rec := &recorder{}
	m := New(testSurvey(), testMeta(), rec)

	require.NoError(t, m.Choose(1))

	assert.Equal(t, 1, m.Index())
	assert.Equal(t, NotTerminal, m.Terminal())
	a, ok := m.Answer(0)
	require.True(t, ok)
	assert.Equal(t, "Good", a)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "Post purchase", rec.last(t).SurveyTitle)
}

func TestConditionalNoEndsEarly(t *testing.T) {
	rec := &recorder{}
	m := New(testSurvey(), testMeta(), rec)

	require.NoError(t, m.Choose(1))
	require.NoError(t, m.Choose(5))

	assert.Equal(t, EarlyExit, m.Terminal())
	assert.Equal(t, 1, m.Index())
	assert.Nil(t, m.Current())

	sub := rec.last(t)
	assert.Equal(t, EarlyExit, sub.TerminalReason)
	assert.Equal(t, []models.ResponseAnswer{
		{QuestionTitle: "How was your experience?", QuestionNumber: 1, Answer: "Good"},
		{QuestionTitle: "Would you buy again?", QuestionNumber: 2, Answer: "No"},
	}, sub.Answers)

	assert.ErrorIs(t, m.Choose(4), ErrTerminal)
	assert.ErrorIs(t, m.Advance(), ErrTerminal)
	assert.Len(t, rec.all(), 2)
}

func TestConditionalNegativeIsCaseInsensitive(t *testing.T) {
	s := testSurvey()
	s.Language = models.LanguageTranslated
	s.Questions[1].Options = []models.AnswerOption{{ID: 4, Text: "Oui"}, {ID: 5, Text: "NON", Position: 1}}
	m := New(s, testMeta(), nil)

	require.NoError(t, m.Choose(1))
	require.NoError(t, m.Choose(5))
	assert.Equal(t, EarlyExit, m.Terminal())
}

func TestMultiChoiceFollowUpText(t *testing.T) {
	rec := &recorder{}
	m := New(testSurvey(), testMeta(), rec)
	require.NoError(t, m.Choose(1))
	require.NoError(t, m.Choose(4))
	require.Equal(t, 2, m.Index())

	require.NoError(t, m.Toggle([]uint{6, 8}))
	a, _ := m.Answer(2)
	assert.Equal(t, "Price", a, "follow-up option is omitted while its text is empty")

	require.NoError(t, m.SetText("Cold weather"))
	a, _ = m.Answer(2)
	assert.Equal(t, "Price,other(Cold weather)", a)
	assert.Equal(t, 2, m.Index(), "multi-choice never auto-advances")

	sub := rec.last(t)
	require.Len(t, sub.Answers, 3)
	assert.Equal(t, models.ResponseAnswer{QuestionTitle: "Why did you buy?", QuestionNumber: 3, Answer: "Price,other(Cold weather)"}, sub.Answers[2])
}

func TestMultiChoiceKeepsOptionOrder(t *testing.T) {
	m := New(testSurvey(), testMeta(), nil)
	require.NoError(t, m.Choose(1))
	require.NoError(t, m.Choose(4))

	require.NoError(t, m.Toggle([]uint{7, 6, 7}))
	a, _ := m.Answer(2)
	assert.Equal(t, "Price,Quality", a)
	assert.Equal(t, []uint{7, 6}, m.Selection())

	assert.ErrorIs(t, m.Toggle([]uint{1}), ErrUnknownOption)
	assert.ErrorIs(t, m.Choose(6), ErrWrongType)
}

func TestSingleChoiceFollowUpStays(t *testing.T) {
	rec := &recorder{}
	m := New(testSurvey(), testMeta(), rec)

	require.NoError(t, m.Choose(3))
	assert.Equal(t, 0, m.Index())
	a, _ := m.Answer(0)
	assert.Equal(t, "Other", a)

	require.NoError(t, m.SetText("Shipping was slow"))
	a, _ = m.Answer(0)
	assert.Equal(t, "other(Shipping was slow)", a)

	require.NoError(t, m.Advance())
	assert.Equal(t, 1, m.Index())
	assert.Empty(t, m.PendingText())
	assert.Len(t, rec.all(), 3)
}

func TestFreeTextAndCompletion(t *testing.T) {
	rec := &recorder{}
	m := New(testSurvey(), testMeta(), rec)
	require.NoError(t, m.Choose(2))
	require.NoError(t, m.Choose(4))
	require.NoError(t, m.Toggle([]uint{7}))
	require.NoError(t, m.Advance())
	require.Equal(t, 3, m.Index())

	assert.ErrorIs(t, m.Choose(1), ErrWrongType)
	require.NoError(t, m.SetText("Thanks"))
	a, _ := m.Answer(3)
	assert.Equal(t, "other(Thanks)", a)

	require.NoError(t, m.Advance())
	assert.Equal(t, Completed, m.Terminal())
	assert.True(t, m.Done())

	sub := rec.last(t)
	assert.Equal(t, Completed, sub.TerminalReason)
	require.Len(t, sub.Answers, 4)
	assert.Equal(t, 4, sub.Answers[3].QuestionNumber)
}

func TestPersistedPayloadsGrow(t *testing.T) {
	rec := &recorder{}
	m := New(testSurvey(), testMeta(), rec)
	require.NoError(t, m.Choose(1))
	require.NoError(t, m.Choose(4))
	require.NoError(t, m.Toggle([]uint{6, 8}))
	require.NoError(t, m.SetText("Cold weather"))
	require.NoError(t, m.Advance())
	require.NoError(t, m.SetText("fine"))
	require.NoError(t, m.Advance())

	subs := rec.all()
	require.NotEmpty(t, subs)
	for i := 1; i < len(subs); i++ {
		prev := map[int]bool{}
		for _, a := range subs[i-1].Answers {
			prev[a.QuestionNumber] = true
		}
		cur := map[int]bool{}
		for _, a := range subs[i].Answers {
			cur[a.QuestionNumber] = true
		}
		for n := range prev {
			assert.True(t, cur[n], "submission %d dropped question %d", i, n)
		}
	}
}

func TestPreviousDoesNotPersist(t *testing.T) {
	rec := &recorder{}
	m := New(testSurvey(), testMeta(), rec)
	require.NoError(t, m.Choose(1))
	require.NoError(t, m.Choose(4))
	require.NoError(t, m.Toggle([]uint{6}))
	n := len(rec.all())

	require.NoError(t, m.Previous())
	assert.Equal(t, 1, m.Index())
	assert.Empty(t, m.Selection())
	assert.Len(t, rec.all(), n)

	a, ok := m.Answer(2)
	assert.True(t, ok, "answers survive a rewind")
	assert.Equal(t, "Price", a)
}

func TestMissingSurveyStaysLoading(t *testing.T) {
	rec := &recorder{}
	m := New(nil, testMeta(), rec)

	assert.True(t, m.Loading())
	assert.Nil(t, m.Current())
	assert.ErrorIs(t, m.Choose(1), ErrNoSurvey)
	assert.ErrorIs(t, m.Toggle([]uint{1}), ErrNoSurvey)
	assert.ErrorIs(t, m.SetText("x"), ErrNoSurvey)
	assert.ErrorIs(t, m.Advance(), ErrNoSurvey)
	assert.Empty(t, rec.all())
}

func TestSnapshotRestore(t *testing.T) {
	rec := &recorder{}
	m := New(testSurvey(), testMeta(), rec)
	require.NoError(t, m.Choose(1))
	require.NoError(t, m.Choose(4))
	require.NoError(t, m.Toggle([]uint{8}))

	r := Restore(m.Snapshot(), rec)
	assert.Equal(t, 2, r.Index())
	assert.Equal(t, []uint{8}, r.Selection())

	require.NoError(t, r.SetText("Gift"))
	a, _ := r.Answer(2)
	assert.Equal(t, "other(Gift)", a)
	a, _ = m.Answer(2)
	assert.Equal(t, "", a, "restored machine does not share answers with the original")
}

func TestNewSortsByPosition(t *testing.T) {
	s := testSurvey()
	s.Questions[0], s.Questions[3] = s.Questions[3], s.Questions[0]
	m := New(s, testMeta(), nil)
	require.NotNil(t, m.Current())
	assert.Equal(t, "How was your experience?", m.Current().Text)
}
