package questionnaire

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vnkhanh/checkout-survey/models"
)

// RunTerminal hỏi từng câu qua in/out cho tới khi machine kết thúc, hết input
// hoặc ctx bị huỷ. Gõ "b" để quay lại câu trước.
func RunTerminal(ctx context.Context, m *Machine, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	readLine := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}

	if m.Loading() {
		fmt.Fprintln(out, "No survey is available for this order.")
		return nil
	}

	for !m.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		q := m.Current()
		printQuestion(out, m.Index(), len(m.Survey().Questions), q)

		var prompt string
		switch q.Type {
		case models.MultiChoice:
			prompt = "Choose one or more (e.g. 1,3): "
		case models.FreeText:
			prompt = "Your answer: "
		default:
			prompt = "Choose: "
		}
		line, ok := readLine(prompt)
		if !ok {
			return sc.Err()
		}
		if line == "b" {
			_ = m.Previous()
			continue
		}

		if err := answer(m, q, line, readLine); err != nil {
			if err == io.EOF {
				return sc.Err()
			}
			fmt.Fprintf(out, "  %v\n", err)
		}
	}

	switch m.Terminal() {
	case EarlyExit:
		fmt.Fprintln(out, "Thanks, that's all we needed.")
	default:
		fmt.Fprintln(out, "Survey completed. Thank you for your feedback!")
	}
	return nil
}

func printQuestion(out io.Writer, idx, total int, q *models.Question) {
	fmt.Fprintf(out, "\n[%d/%d] %s\n", idx+1, total, q.Text)
	for i, o := range q.Options {
		suffix := ""
		if o.HasFollowUp {
			suffix = " (please specify)"
		}
		fmt.Fprintf(out, "  %d) %s%s\n", i+1, o.Text, suffix)
	}
}

func pick(q *models.Question, token string) (*models.AnswerOption, error) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || n < 1 || n > len(q.Options) {
		return nil, fmt.Errorf("invalid choice %q", token)
	}
	return &q.Options[n-1], nil
}

func answer(m *Machine, q *models.Question, line string, readLine func(string) (string, bool)) error {
	followUp := func() error {
		text, ok := readLine("Please specify: ")
		if !ok {
			return io.EOF
		}
		return m.SetText(text)
	}

	switch q.Type {
	case models.FreeText:
		if line != "" {
			if err := m.SetText(line); err != nil {
				return err
			}
		}
		return m.Advance()

	case models.MultiChoice:
		var ids []uint
		hasFollowUp := false
		for _, tok := range strings.Split(line, ",") {
			if strings.TrimSpace(tok) == "" {
				continue
			}
			opt, err := pick(q, tok)
			if err != nil {
				return err
			}
			ids = append(ids, opt.ID)
			hasFollowUp = hasFollowUp || opt.HasFollowUp
		}
		if err := m.Toggle(ids); err != nil {
			return err
		}
		if hasFollowUp {
			if err := followUp(); err != nil {
				return err
			}
		}
		return m.Advance()

	default:
		opt, err := pick(q, line)
		if err != nil {
			return err
		}
		if err := m.Choose(opt.ID); err != nil {
			return err
		}
		if q.Type == models.SingleChoice && opt.HasFollowUp {
			if err := followUp(); err != nil {
				return err
			}
			return m.Advance()
		}
		return nil
	}
}
