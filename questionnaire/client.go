package questionnaire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vnkhanh/checkout-survey/models"
)

// SurveySource trả về toàn bộ định nghĩa survey; việc lọc do phía gọi làm.
type SurveySource interface {
	FetchSurveys(ctx context.Context) ([]models.Survey, error)
}

// Client gọi các endpoint public (/api/proxy/...) của server. Base URL luôn
// lấy từ cấu hình.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type surveysResponse struct {
	Surveys []models.Survey `json:"surveys"`
	Error   string          `json:"error"`
}

// FetchSurveys: 404 "No surveys found" được coi là danh sách rỗng.
func (c *Client) FetchSurveys(ctx context.Context) ([]models.Survey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/proxy/surveys", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch surveys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	var body surveysResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("fetch surveys: decode: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch surveys: status %d: %s", resp.StatusCode, body.Error)
	}
	return body.Surveys, nil
}

// Persist gửi submission tích luỹ tới endpoint upsert.
func (c *Client) Persist(ctx context.Context, s Submission) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/proxy/responses", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("submit response: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
