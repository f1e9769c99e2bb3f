package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cerbyl-session-service/internal/app"
	"cerbyl-session-service/internal/domain"
	"cerbyl-session-service/internal/grading"
	"cerbyl-session-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.ResultArchive) {
	t.Helper()

	gradeBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req grading.GradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result := grading.GradeLocally(req.Questions, req.Answers)
		_ = json.NewEncoder(w).Encode(result)
	}))
	t.Cleanup(gradeBackend.Close)

	configs := memory.NewConfigStore()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": sampleQuiz(),
	}), time.Minute)
	archive := memory.NewResultArchive()
	grader := grading.NewClient(gradeBackend.URL, "", time.Second)
	service := app.NewSessionService(configs, quizzes, grader, archive)

	mux := http.NewServeMux()
	mux.Handle("/sessions", NewSetupHandler(service))
	mux.HandleFunc("/ws", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, archive
}

func TestSessionFlowOverWebSocket(t *testing.T) {
	server, archive := newTestServer(t)

	setup := map[string]any{
		"user_id": "u1",
		"quiz_id": "quiz-1",
		"mode":    "sequential",
	}
	body, _ := json.Marshal(setup)
	resp, err := http.Post(server.URL+"/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial state snapshot.
	typ, payload := readNext(conn, t, "state")
	if typ != "state" {
		t.Fatalf("expected state, got %s", typ)
	}
	if payload["phase"] != "in_progress" {
		t.Fatalf("expected in_progress, got %v", payload["phase"])
	}

	// Answer the only question and submit via last-question next.
	writeMsg(conn, t, map[string]any{"type": "select", "payload": map[string]any{"option": 1}})
	if typ, payload = readNext(conn, t, "state"); payload["selected"] != float64(1) {
		t.Fatalf("expected highlight 1, got %v", payload["selected"])
	}

	writeMsg(conn, t, map[string]any{"type": "next"})

	resultSeen := false
	for i := 0; i < 5; i++ {
		typ, payload = readNext(conn, t, "")
		if typ == "result" {
			resultSeen = true
			break
		}
	}
	if !resultSeen {
		t.Fatalf("expected result message")
	}
	result, ok := payload["result"].(map[string]any)
	if !ok {
		t.Fatalf("malformed result payload: %v", payload)
	}
	if result["correct_count"] != float64(1) {
		t.Fatalf("expected 1 correct, got %v", result["correct_count"])
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(archive.Records()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if records := archive.Records(); len(records) != 1 || records[0].UserID != "u1" {
		t.Fatalf("expected archived session, got %+v", archive.Records())
	}
}

func TestMissingConfigurationClosesWithError(t *testing.T) {
	server, _ := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?userId=stranger"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	typ, payload := readNext(conn, t, "error")
	if typ != "error" || payload["code"] != "no_configuration" {
		t.Fatalf("expected no_configuration error, got %s %v", typ, payload)
	}
}

func TestInvalidEventKeepsSessionAlive(t *testing.T) {
	server, _ := newTestServer(t)

	setup, _ := json.Marshal(map[string]any{"user_id": "u2", "quiz_id": "quiz-1", "mode": "sequential"})
	resp, err := http.Post(server.URL+"/sessions", "application/json", bytes.NewReader(setup))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	resp.Body.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u2"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "state")

	// Next without a selection is rejected in sequential mode.
	writeMsg(conn, t, map[string]any{"type": "next"})
	if typ, _ := readNext(conn, t, "error"); typ != "error" {
		t.Fatalf("expected error, got %s", typ)
	}

	// The session is still usable afterwards.
	writeMsg(conn, t, map[string]any{"type": "select", "payload": map[string]any{"option": 0}})
	if typ, _ := readNext(conn, t, "state"); typ != "state" {
		t.Fatalf("expected state, got %s", typ)
	}
}

func writeMsg(conn *websocket.Conn, t *testing.T, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Topic: "Geography",
		Questions: []domain.Question{
			{
				ID:      "q1",
				Prompt:  "What is the capital of France?",
				Kind:    domain.KindMultipleChoice,
				Options: domain.OptionList{"A) London", "B) Paris", "C) Berlin"},
				Answer:  "B) Paris",
			},
		},
	}
}
