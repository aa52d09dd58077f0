package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vnkhanh/checkout-survey/metrics"
	"github.com/vnkhanh/checkout-survey/models"
	"github.com/vnkhanh/checkout-survey/questionnaire"
)

type StartSessionInput struct {
	ShopDomain  string `json:"shopDomain"`
	Email       string `json:"email"`
	OrderID     string `json:"orderId"`
	SurveyTitle string `json:"surveyTitle"`
	Locale      string `json:"locale"`
}

// SessionView là những gì embed cần để vẽ câu hỏi hiện tại.
type SessionView struct {
	ID          string                  `json:"id"`
	Loading     bool                    `json:"loading"`
	Index       int                     `json:"index"`
	Total       int                     `json:"total"`
	Terminal    string                  `json:"terminal,omitempty"`
	Question    *models.Question        `json:"question,omitempty"`
	Selection   []uint                  `json:"selection"`
	PendingText string                  `json:"pendingText"`
	Answers     []models.ResponseAnswer `json:"answers"`
}

// SessionService chạy questionnaire.Machine phía server, trạng thái nằm trong SessionStore.
type SessionService struct {
	surveys *SurveyService
	store   questionnaire.SessionStore
	persist questionnaire.Persister
	metrics *metrics.Collector
}

func NewSessionService(surveys *SurveyService, store questionnaire.SessionStore, p questionnaire.Persister, m *metrics.Collector) *SessionService {
	return &SessionService{surveys: surveys, store: store, persist: p, metrics: m}
}

// Start chọn survey theo tiêu đề + locale. Không có survey phù hợp thì phiên
// vẫn được tạo nhưng ở trạng thái loading.
func (s *SessionService) Start(ctx context.Context, in StartSessionInput) (*SessionView, error) {
	if in.OrderID == "" {
		return nil, ErrMissingOrderID
	}
	surveys, err := s.surveys.List(ctx)
	if err != nil {
		return nil, err
	}
	survey := questionnaire.Select(surveys, questionnaire.Selector{Title: in.SurveyTitle, Locale: in.Locale})

	m := questionnaire.New(survey, questionnaire.Meta{
		ShopDomain: in.ShopDomain,
		Email:      in.Email,
		OrderID:    in.OrderID,
	}, s.persist)

	id := uuid.New().String()
	st := m.Snapshot()
	if err := s.store.Put(ctx, id, &st); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	s.metrics.SessionStarted()
	return viewOf(id, m), nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*SessionView, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return viewOf(id, questionnaire.Restore(*st, nil)), nil
}

// Close xoá phiên; phiên chưa kết thúc thì coi như bị bỏ dở.
func (s *SessionService) Close(ctx context.Context, id string) error {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if st.Terminal == questionnaire.NotTerminal {
		s.metrics.SessionAbandoned()
	}
	return nil
}

func (s *SessionService) Choose(ctx context.Context, id string, optionID uint) (*SessionView, error) {
	return s.apply(ctx, id, "choose", func(m *questionnaire.Machine) error { return m.Choose(optionID) })
}

func (s *SessionService) Toggle(ctx context.Context, id string, optionIDs []uint) (*SessionView, error) {
	return s.apply(ctx, id, "toggle", func(m *questionnaire.Machine) error { return m.Toggle(optionIDs) })
}

func (s *SessionService) SetText(ctx context.Context, id, text string) (*SessionView, error) {
	return s.apply(ctx, id, "text", func(m *questionnaire.Machine) error { return m.SetText(text) })
}

func (s *SessionService) Advance(ctx context.Context, id string) (*SessionView, error) {
	return s.apply(ctx, id, "advance", func(m *questionnaire.Machine) error { return m.Advance() })
}

func (s *SessionService) Previous(ctx context.Context, id string) (*SessionView, error) {
	return s.apply(ctx, id, "previous", func(m *questionnaire.Machine) error { return m.Previous() })
}

// apply: load → chạy input → lưu lại. Hai request song song trên cùng phiên
// có thể ghi đè nhau; embed gửi input tuần tự nên chấp nhận.
func (s *SessionService) apply(ctx context.Context, id, action string, fn func(*questionnaire.Machine) error) (*SessionView, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m := questionnaire.Restore(*st, s.persist)
	wasDone := m.Done()

	if err := fn(m); err != nil {
		s.metrics.RecordStep(action, "rejected")
		return nil, err
	}
	s.metrics.RecordStep(action, "ok")
	if !wasDone && m.Done() {
		s.metrics.SessionFinished()
	}

	next := m.Snapshot()
	if err := s.store.Put(ctx, id, &next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return viewOf(id, m), nil
}

func viewOf(id string, m *questionnaire.Machine) *SessionView {
	v := &SessionView{
		ID:          id,
		Loading:     m.Loading(),
		Index:       m.Index(),
		Terminal:    string(m.Terminal()),
		Question:    m.Current(),
		Selection:   m.Selection(),
		PendingText: m.PendingText(),
		Answers:     m.Payload().Answers,
	}
	if v.Selection == nil {
		v.Selection = []uint{}
	}
	if sv := m.Survey(); sv != nil {
		v.Total = len(sv.Questions)
	}
	return v
}
