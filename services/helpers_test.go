package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vnkhanh/checkout-survey/config"
	"github.com/vnkhanh/checkout-survey/models"
)

const testShop = "shop.myshopify.com"

// setupTestDB mở một sqlite riêng cho từng test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() { _ = config.CloseDB(db) })
	return db
}

// seedSurvey: "Post purchase" với 3 câu hỏi (single, conditional, multi).
func seedSurvey(t *testing.T, svc *SurveyService) *models.Survey {
	t.Helper()
	s, err := svc.Save(context.Background(), SaveSurveyInput{
		Title: "Post purchase",
		Questions: []QuestionInput{
			{Text: "How was your experience?", Options: []OptionInput{{Text: "Good"}, {Text: "Bad"}, {Text: "Other", HaveTextBox: true}}},
			{Text: "Would you buy again?", IsConditional: true},
			{Text: "Why did you buy?", IsMultiChoice: true, Options: []OptionInput{{Text: "Price"}, {Text: "Quality"}, {Text: "Other", HaveTextBox: true}}},
		},
	})
	require.NoError(t, err)
	return s
}

func seedRecord(t *testing.T, db *gorm.DB, rec models.ResponseRecord) models.ResponseRecord {
	t.Helper()
	if rec.Answers == nil {
		rec.Answers = []models.ResponseAnswer{}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, db.Create(&rec).Error)
	return rec
}

func answers(pairs ...string) []models.ResponseAnswer {
	out := make([]models.ResponseAnswer, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.ResponseAnswer{QuestionTitle: pairs[i], QuestionNumber: i/2 + 1, Answer: pairs[i+1]})
	}
	return out
}
