package grading

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cerbyl-session-service/internal/domain"
)

func TestClientGrade(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.UserID != "u1" || req.ElapsedSeconds != 42 {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(domain.GradingResult{
			TotalQuestions: 1,
			CorrectCount:   1,
			Percentage:     100,
			Breakdown:      []domain.QuestionResult{{IsCorrect: true}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	result, err := client.Grade(context.Background(), GradeRequest{
		UserID:         "u1",
		Answers:        map[string]string{"q1": "A"},
		ElapsedSeconds: 42,
	})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.CorrectCount != 1 || result.Percentage != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClientGradeNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	if _, err := client.Grade(context.Background(), GradeRequest{UserID: "u1"}); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestClientAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.PerformanceAnalysis{
			AvgTimePerQuestion: 12.5,
			WeakTopics:         []string{"Geography"},
		})
	}))
	defer server.Close()

	client := NewClient("http://unused", server.URL, time.Second)
	analysis, err := client.Analyze(context.Background(), AnalysisRequest{UserID: "u1"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.AvgTimePerQuestion != 12.5 || len(analysis.WeakTopics) != 1 {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
}

func TestClientAnalyzeUnconfigured(t *testing.T) {
	client := NewClient("http://unused", "", time.Second)
	if _, err := client.Analyze(context.Background(), AnalysisRequest{}); err == nil {
		t.Fatalf("expected error when analysis endpoint is not configured")
	}
}
