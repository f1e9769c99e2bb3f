package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cerbyl-session-service/internal/domain"
)

// GradeRequest is the payload sent to the grading service: everything it
// needs to score a finished session authoritatively.
type GradeRequest struct {
	UserID         string            `json:"user_id"`
	Questions      []domain.Question `json:"questions"`
	Answers        map[string]string `json:"answers"`
	ElapsedSeconds int               `json:"elapsed_seconds"`
}

// AnalysisRequest asks the performance-analysis service for a second pass
// over an authoritative grading breakdown.
type AnalysisRequest struct {
	UserID         string                  `json:"user_id"`
	Results        []domain.QuestionResult `json:"results"`
	ElapsedSeconds int                     `json:"elapsed_seconds"`
}

// Client talks to the remote grading and analysis services.
type Client struct {
	httpClient  *http.Client
	gradeURL    string
	analysisURL string
}

// NewClient builds a client for the given endpoints. analysisURL may be empty,
// in which case Analyze always fails and reconciliation simply omits analysis.
func NewClient(gradeURL, analysisURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		gradeURL:    gradeURL,
		analysisURL: analysisURL,
	}
}

// Grade submits the captured answers for authoritative scoring. Any transport
// error or non-2xx status is an error; the caller falls back to local grading.
func (c *Client) Grade(ctx context.Context, req GradeRequest) (domain.GradingResult, error) {
	var result domain.GradingResult
	if err := c.post(ctx, c.gradeURL, req, &result); err != nil {
		return domain.GradingResult{}, fmt.Errorf("grading service: %w", err)
	}
	return result, nil
}

// Analyze requests the optional performance analysis. Failures here are
// expected to be tolerated by the caller.
func (c *Client) Analyze(ctx context.Context, req AnalysisRequest) (domain.PerformanceAnalysis, error) {
	var analysis domain.PerformanceAnalysis
	if c.analysisURL == "" {
		return analysis, fmt.Errorf("analysis service not configured")
	}
	if err := c.post(ctx, c.analysisURL, req, &analysis); err != nil {
		return domain.PerformanceAnalysis{}, fmt.Errorf("analysis service: %w", err)
	}
	return analysis, nil
}

func (c *Client) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
