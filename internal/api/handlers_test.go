package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Psianturi/flexifit/internal/coach"
	"github.com/Psianturi/flexifit/internal/gateway"
	"github.com/Psianturi/flexifit/internal/models"
)

// mockCoach returns canned values and records the arguments it saw.
type mockCoach struct {
	negotiateResult *coach.NegotiationResult
	negotiateErr    error
	negotiateReq    coach.NegotiationRequest

	progressSummary coach.ProgressSummary

	motivation    string
	motivationErr error
	motivationReq struct {
		goal string
		rate float64
	}

	persona    coach.Persona
	personaErr error
	personaReq coach.PersonaRequest
}

func (m *mockCoach) Negotiate(_ context.Context, req coach.NegotiationRequest) (*coach.NegotiationResult, error) {
	m.negotiateReq = req
	return m.negotiateResult, m.negotiateErr
}

func (m *mockCoach) Progress(_ context.Context, goal string, _ []models.ChatMessage, _ string) coach.ProgressSummary {
	m.progressSummary.Goal = goal
	return m.progressSummary
}

func (m *mockCoach) WeeklyMotivation(_ context.Context, goal string, rate float64, _ []coach.DayCompletion, _ string) (string, error) {
	m.motivationReq.goal = goal
	m.motivationReq.rate = rate
	return m.motivation, m.motivationErr
}

func (m *mockCoach) Persona(_ context.Context, req coach.PersonaRequest) (coach.Persona, error) {
	m.personaReq = req
	return m.persona, m.personaErr
}

func (m *mockCoach) PromptVersion() string { return "v1" }

func setupRouter(svc CoachService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewHandler(svc, HealthInfo{
		Provider:       "gemini",
		Model:          "gemini-2.0-flash",
		RetryEnabled:   true,
		RetryThreshold: 3,
	}, logger).RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestRootAndHealth(t *testing.T) {
	router := setupRouter(&mockCoach{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("root: expected 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "healthy" {
		t.Fatalf("unexpected root body: %v", body)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["provider"] != "gemini" || body["prompt_version"] != "v1" {
		t.Fatalf("unexpected health body: %v", body)
	}
	evals, ok := body["evals"].(map[string]any)
	if !ok {
		t.Fatalf("health body missing evals: %v", body)
	}
	empathy, ok := evals["empathy_score"].(map[string]any)
	if !ok || empathy["retry_enabled"] != true {
		t.Fatalf("unexpected evals block: %v", evals)
	}
}

func TestChatValidation(t *testing.T) {
	router := setupRouter(&mockCoach{})

	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed json", `{not json`, "invalid request body"},
		{"blank message", `{"user_message": "   ", "current_goal": "run"}`, "message cannot be empty"},
		{"missing goal", `{"user_message": "hi"}`, "goal must be set"},
		{"blank goal", `{"user_message": "hi", "current_goal": "  "}`, "goal must be set"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, router, "/chat", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if body := decodeBody(t, w); body["error"] != tc.wantErr {
				t.Fatalf("expected error %q, got %v", tc.wantErr, body["error"])
			}
		})
	}
}

func TestChatSuccess(t *testing.T) {
	score, initial := 4, 2
	mock := &mockCoach{negotiateResult: &coach.NegotiationResult{
		Reply:               "That sounds hard, let's shrink it.",
		DealMade:            true,
		DealLabel:           "one pushup",
		EmpathyScore:        &score,
		InitialEmpathyScore: &initial,
		EmpathyRationale:    "validates first",
		RetryUsed:           true,
	}}
	router := setupRouter(mock)

	w := postJSON(t, router, "/chat", `{
		"user_message": "I'm too tired",
		"current_goal": "exercise daily",
		"chat_history": [{"role": "user", "text": "hello"}],
		"language": "en"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["response"] != "That sounds hard, let's shrink it." {
		t.Fatalf("unexpected response: %v", body["response"])
	}
	if body["deal_made"] != true || body["deal_label"] != "one pushup" {
		t.Fatalf("unexpected deal fields: %v", body)
	}
	if body["empathy_score"] != float64(4) || body["initial_empathy_score"] != float64(2) {
		t.Fatalf("unexpected scores: %v", body)
	}
	if body["retry_used"] != true || body["prompt_version"] != "v1" {
		t.Fatalf("unexpected metadata: %v", body)
	}

	if mock.negotiateReq.Goal != "exercise daily" || len(mock.negotiateReq.History) != 1 {
		t.Fatalf("request not forwarded: %+v", mock.negotiateReq)
	}
}

func TestChatUnscoredResultHasNullFields(t *testing.T) {
	mock := &mockCoach{negotiateResult: &coach.NegotiationResult{Reply: "ok"}}
	router := setupRouter(mock)

	w := postJSON(t, router, "/chat", `{"user_message": "hi", "current_goal": "run"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	for _, key := range []string{"deal_label", "empathy_score", "empathy_rationale", "initial_empathy_score"} {
		v, present := body[key]
		if !present || v != nil {
			t.Fatalf("expected %s to be null, got %v (present=%v)", key, v, present)
		}
	}
	if body["retry_used"] != false || body["deal_made"] != false {
		t.Fatalf("unexpected flags: %v", body)
	}
}

func TestChatUpstreamErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"timeout", gateway.ErrTimeout, http.StatusGatewayTimeout, "AI response timeout. Please try again."},
		{"auth", gateway.ErrAuth, http.StatusUnauthorized, "AI authentication failed. Check API key."},
		{"upstream", &gateway.UpstreamError{Message: "quota exceeded"}, http.StatusInternalServerError, "AI processing failed: quota exceeded"},
		{"unknown", io.ErrUnexpectedEOF, http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(&mockCoach{negotiateErr: tc.err})
			w := postJSON(t, router, "/chat", `{"user_message": "hi", "current_goal": "run"}`)
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}
			if body := decodeBody(t, w); body["error"] != tc.wantMsg {
				t.Fatalf("expected %q, got %v", tc.wantMsg, body["error"])
			}
		})
	}
}

func TestProgressEnvelope(t *testing.T) {
	mock := &mockCoach{progressSummary: coach.ProgressSummary{
		TotalChats:         4,
		MicroHabitsOffered: 2,
		CompletionRate:     40,
		LastInteraction:    "recent",
		Insights:           "- keep going",
	}}
	router := setupRouter(mock)

	w := postJSON(t, router, "/progress", `{"current_goal": "read", "chat_history": []}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "success" {
		t.Fatalf("unexpected status: %v", body["status"])
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data envelope: %v", body)
	}
	if data["goal"] != "read" || data["completion_rate"] != float64(40) || data["insights"] != "- keep going" {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestProgressRequiresGoal(t *testing.T) {
	router := setupRouter(&mockCoach{})
	w := postJSON(t, router, "/progress", `{"chat_history": []}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestWeeklyMotivation(t *testing.T) {
	mock := &mockCoach{motivation: "Keep the streak alive!"}
	router := setupRouter(mock)

	w := postJSON(t, router, "/progress/motivation", `{
		"goal": "run",
		"completion_rate_7d": 250,
		"last7_days": [{"date": "2025-01-01", "done": true}]
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	if data["motivation"] != "Keep the streak alive!" {
		t.Fatalf("unexpected motivation: %v", data)
	}
	if mock.motivationReq.rate != 100 {
		t.Fatalf("rate should be clamped to 100, got %v", mock.motivationReq.rate)
	}
}

func TestWeeklyMotivationFallsBackOnError(t *testing.T) {
	router := setupRouter(&mockCoach{motivationErr: gateway.ErrTimeout})

	w := postJSON(t, router, "/progress/motivation", `{"goal": "run"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("motivation errors must not surface, got %d", w.Code)
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["motivation"] != coach.FallbackMotivation {
		t.Fatalf("expected fallback, got %v", data["motivation"])
	}
}

func TestWeeklyMotivationBlankOutputFallsBack(t *testing.T) {
	router := setupRouter(&mockCoach{motivation: "   "})

	w := postJSON(t, router, "/progress/motivation", `{"goal": "run"}`)
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["motivation"] != coach.FallbackMotivation {
		t.Fatalf("expected fallback, got %v", data["motivation"])
	}
}

func TestPersonaEndpoint(t *testing.T) {
	mock := &mockCoach{persona: coach.Persona{
		ArchetypeTitle: "The Relentless Wolf",
		Description:    "You keep going.",
		AvatarID:       "WORKOUT_WOLF",
		PowerLevel:     83,
	}}
	router := setupRouter(mock)

	w := postJSON(t, router, "/persona", `{
		"current_goal": "run",
		"completion_rate_7d": -10,
		"streak": 99999,
		"language": "en"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["avatar_id"] != "WORKOUT_WOLF" || data["power_level"] != float64(83) {
		t.Fatalf("unexpected persona: %v", data)
	}

	if mock.personaReq.CompletionRate7d != 0 {
		t.Fatalf("rate should be clamped to 0, got %v", mock.personaReq.CompletionRate7d)
	}
	if mock.personaReq.Streak != 3650 {
		t.Fatalf("streak should be clamped to 3650, got %d", mock.personaReq.Streak)
	}
}

func TestPersonaFailure(t *testing.T) {
	router := setupRouter(&mockCoach{personaErr: gateway.ErrTimeout})

	w := postJSON(t, router, "/persona", `{"current_goal": "run"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "persona generation failed" {
		t.Fatalf("unexpected error body: %v", body)
	}
}
