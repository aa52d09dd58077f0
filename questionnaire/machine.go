package questionnaire

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/models"
)

type TerminalReason string

const (
	NotTerminal TerminalReason = ""
	Completed   TerminalReason = "completed"
	EarlyExit   TerminalReason = "early_exit"
)

var (
	ErrNoSurvey      = errors.New("questionnaire: no survey to show")
	ErrTerminal      = errors.New("questionnaire: questionnaire already finished")
	ErrWrongType     = errors.New("questionnaire: input does not match question type")
	ErrUnknownOption = errors.New("questionnaire: option does not belong to current question")
)

// Meta là ngữ cảnh đơn hàng gắn với một lượt trả lời.
type Meta struct {
	ShopDomain  string `json:"shopDomain"`
	Email       string `json:"email"`
	OrderID     string `json:"orderId"`
	SurveyTitle string `json:"surveyTitle"`
}

// Submission là payload gửi lên server: luôn chứa toàn bộ câu trả lời tích luỹ.
type Submission struct {
	ShopDomain     string                  `json:"shopDomain"`
	Email          string                  `json:"email"`
	SurveyTitle    string                  `json:"surveyTitle"`
	OrderID        string                  `json:"orderId"`
	Answers        []models.ResponseAnswer `json:"answers"`
	TerminalReason TerminalReason          `json:"terminalReason,omitempty"`
}

// State là trạng thái có thể tuần tự hoá của Machine (dùng cho session phía server).
type State struct {
	Survey      *models.Survey `json:"survey"`
	Meta        Meta           `json:"meta"`
	Index       int            `json:"index"`
	Answers     map[int]string `json:"answers"`
	Selection   []uint         `json:"selection,omitempty"`
	PendingText string         `json:"pendingText,omitempty"`
	Terminal    TerminalReason `json:"terminal,omitempty"`
}

// Machine dẫn người mua qua từng câu hỏi. Mọi bước có ghi nhận đều gửi toàn bộ
// câu trả lời hiện có cho Persister.
type Machine struct {
	survey  *models.Survey
	meta    Meta
	persist Persister

	index       int
	answers     map[int]string
	selection   []uint
	pendingText string
	terminal    TerminalReason
}

// New tạo machine. survey == nil nghĩa là chưa có gì để hiển thị: machine
// ở trạng thái loading mãi và không bao giờ persist.
func New(survey *models.Survey, meta Meta, p Persister) *Machine {
	if survey != nil && meta.SurveyTitle == "" {
		meta.SurveyTitle = survey.Title
	}
	if survey != nil {
		sortQuestions(survey)
	}
	return &Machine{
		survey:  survey,
		meta:    meta,
		persist: p,
		answers: map[int]string{},
	}
}

// Restore dựng lại machine từ State đã lưu.
func Restore(st State, p Persister) *Machine {
	m := New(st.Survey, st.Meta, p)
	m.index = st.Index
	if st.Answers != nil {
		for k, v := range st.Answers {
			m.answers[k] = v
		}
	}
	m.selection = append([]uint(nil), st.Selection...)
	m.pendingText = st.PendingText
	m.terminal = st.Terminal
	return m
}

// Snapshot chụp trạng thái hiện tại để lưu vào SessionStore.
func (m *Machine) Snapshot() State {
	answers := make(map[int]string, len(m.answers))
	for k, v := range m.answers {
		answers[k] = v
	}
	return State{
		Survey:      m.survey,
		Meta:        m.meta,
		Index:       m.index,
		Answers:     answers,
		Selection:   append([]uint(nil), m.selection...),
		PendingText: m.pendingText,
		Terminal:    m.terminal,
	}
}

func (m *Machine) Loading() bool { return m.survey == nil }

func (m *Machine) Index() int { return m.index }

func (m *Machine) Terminal() TerminalReason { return m.terminal }

func (m *Machine) Done() bool { return m.terminal != NotTerminal }

func (m *Machine) Survey() *models.Survey { return m.survey }

func (m *Machine) Selection() []uint { return append([]uint(nil), m.selection...) }

func (m *Machine) PendingText() string { return m.pendingText }

// Current trả về câu hỏi đang hiển thị, nil khi loading hoặc đã kết thúc.
func (m *Machine) Current() *models.Question {
	if m.survey == nil || m.terminal != NotTerminal {
		return nil
	}
	if m.index < 0 || m.index >= len(m.survey.Questions) {
		return nil
	}
	return &m.survey.Questions[m.index]
}

// Answer trả về câu trả lời đã ghi cho câu hỏi thứ idx (0-based).
func (m *Machine) Answer(idx int) (string, bool) {
	a, ok := m.answers[idx]
	return a, ok
}

// Choose chọn một lựa chọn cho câu single-choice hoặc conditional.
func (m *Machine) Choose(optionID uint) error {
	q, err := m.ready()
	if err != nil {
		return err
	}
	if q.Type != models.SingleChoice && q.Type != models.Conditional {
		return ErrWrongType
	}
	opt := q.Option(optionID)
	if opt == nil {
		return ErrUnknownOption
	}
	m.selection = []uint{opt.ID}

	if q.Type == models.Conditional {
		m.answers[m.index] = opt.Text
		if IsNegative(opt.Text) {
			m.terminal = EarlyExit
			m.flush()
			return nil
		}
		m.step()
		m.flush()
		return nil
	}

	if opt.HasFollowUp {
		m.answers[m.index] = m.followUpAnswer(opt)
		m.flush()
		return nil
	}
	m.answers[m.index] = opt.Text
	m.step()
	m.flush()
	return nil
}

// Toggle thay toàn bộ tập lựa chọn của câu multi-choice. Không tự chuyển câu.
func (m *Machine) Toggle(optionIDs []uint) error {
	q, err := m.ready()
	if err != nil {
		return err
	}
	if q.Type != models.MultiChoice {
		return ErrWrongType
	}
	seen := make(map[uint]bool, len(optionIDs))
	selection := make([]uint, 0, len(optionIDs))
	for _, id := range optionIDs {
		if q.Option(id) == nil {
			return ErrUnknownOption
		}
		if !seen[id] {
			seen[id] = true
			selection = append(selection, id)
		}
	}
	m.selection = selection
	m.answers[m.index] = m.multiAnswer(q)
	m.flush()
	return nil
}

// SetText cập nhật văn bản tự do: câu free-text, hoặc phần "other" của lựa
// chọn có follow-up.
func (m *Machine) SetText(text string) error {
	q, err := m.ready()
	if err != nil {
		return err
	}
	switch q.Type {
	case models.FreeText:
		m.pendingText = text
		m.answers[m.index] = EncodeOther(text)
		m.flush()
	case models.MultiChoice:
		m.pendingText = text
		if m.followUpSelected(q) != nil {
			m.answers[m.index] = m.multiAnswer(q)
			m.flush()
		}
	case models.SingleChoice:
		m.pendingText = text
		if opt := m.followUpSelected(q); opt != nil {
			m.answers[m.index] = m.followUpAnswer(opt)
			m.flush()
		}
	default:
		return ErrWrongType
	}
	return nil
}

// Advance là thao tác "next/submit" tường minh. Ở câu cuối thì kết thúc.
func (m *Machine) Advance() error {
	if _, err := m.ready(); err != nil {
		return err
	}
	m.step()
	m.flush()
	return nil
}

// Previous chỉ lùi trạng thái cục bộ; dữ liệu đã gửi lên server giữ nguyên.
func (m *Machine) Previous() error {
	if _, err := m.ready(); err != nil {
		return err
	}
	if m.index > 0 {
		m.index--
		m.resetInput()
	}
	return nil
}

// Payload dựng submission từ toàn bộ câu trả lời, theo thứ tự câu hỏi.
func (m *Machine) Payload() Submission {
	sub := Submission{
		ShopDomain:     m.meta.ShopDomain,
		Email:          m.meta.Email,
		SurveyTitle:    m.meta.SurveyTitle,
		OrderID:        m.meta.OrderID,
		Answers:        []models.ResponseAnswer{},
		TerminalReason: m.terminal,
	}
	if m.survey == nil {
		return sub
	}
	idx := make([]int, 0, len(m.answers))
	for i := range m.answers {
		if i >= 0 && i < len(m.survey.Questions) {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	for _, i := range idx {
		sub.Answers = append(sub.Answers, models.ResponseAnswer{
			QuestionTitle:  m.survey.Questions[i].Text,
			QuestionNumber: i + 1,
			Answer:         m.answers[i],
		})
	}
	return sub
}

func (m *Machine) ready() (*models.Question, error) {
	if m.survey == nil {
		return nil, ErrNoSurvey
	}
	if m.terminal != NotTerminal {
		return nil, ErrTerminal
	}
	q := m.Current()
	if q == nil {
		return nil, ErrNoSurvey
	}
	return q, nil
}

// step chuyển sang câu kế tiếp, hoặc đánh dấu completed ở câu cuối.
func (m *Machine) step() {
	if m.index >= len(m.survey.Questions)-1 {
		m.terminal = Completed
		return
	}
	m.index++
	m.resetInput()
}

func (m *Machine) resetInput() {
	m.selection = nil
	m.pendingText = ""
}

func (m *Machine) multiAnswer(q *models.Question) string {
	selected := make(map[uint]bool, len(m.selection))
	for _, id := range m.selection {
		selected[id] = true
	}
	parts := make([]string, 0, len(m.selection))
	for i := range q.Options {
		opt := &q.Options[i]
		if !selected[opt.ID] {
			continue
		}
		if opt.HasFollowUp {
			if m.pendingText != "" {
				parts = append(parts, EncodeOther(m.pendingText))
			}
			continue
		}
		parts = append(parts, opt.Text)
	}
	return strings.Join(parts, Separator)
}

func (m *Machine) followUpAnswer(opt *models.AnswerOption) string {
	if m.pendingText == "" {
		return opt.Text
	}
	return EncodeOther(m.pendingText)
}

func (m *Machine) followUpSelected(q *models.Question) *models.AnswerOption {
	for _, id := range m.selection {
		if opt := q.Option(id); opt != nil && opt.HasFollowUp {
			return opt
		}
	}
	return nil
}

func (m *Machine) flush() {
	if m.persist == nil {
		return
	}
	sub := m.Payload()
	if err := m.persist.Persist(context.Background(), sub); err != nil {
		logger.WithFields(logrus.Fields{
			"shop":     sub.ShopDomain,
			"order_id": sub.OrderID,
			"answers":  len(sub.Answers),
		}).WithError(err).Warn("questionnaire: persist failed")
	}
}

func sortQuestions(s *models.Survey) {
	sort.SliceStable(s.Questions, func(i, j int) bool {
		return s.Questions[i].Position < s.Questions[j].Position
	})
	for i := range s.Questions {
		opts := s.Questions[i].Options
		sort.SliceStable(opts, func(a, b int) bool { return opts[a].Position < opts[b].Position })
	}
}
