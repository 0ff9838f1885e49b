package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/intervox/intervox/internal/interview"
	"github.com/intervox/intervox/internal/storage"
)

var _ interview.EventSink = (*Hub)(nil)

type fakeGateway struct {
	mu           sync.Mutex
	questions    []interview.Question
	generateErr  error
	evaluation   interview.Evaluation
	evaluateErr  error
	skills       []interview.Skill
	evaluateCall int
}

func (f *fakeGateway) GenerateQuestions(ctx context.Context, req interview.GenerationRequest) ([]interview.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.questions, f.generateErr
}

func (f *fakeGateway) EvaluateAnswer(ctx context.Context, req interview.EvaluationRequest) (interview.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluateCall++
	return f.evaluation, f.evaluateErr
}

func (f *fakeGateway) ExtractSkills(ctx context.Context, jobDescription string, lang interview.UILanguage) ([]interview.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.skills, nil
}

func (f *fakeGateway) OpenRealtimeTranscription(ctx context.Context, lang interview.UILanguage, handlers interview.RealtimeHandlers) (interview.RealtimeSession, error) {
	return nil, fmt.Errorf("no realtime in tests")
}

func (f *fakeGateway) SynthesizeSpeech(ctx context.Context, text string, lang interview.UILanguage) ([]byte, error) {
	return nil, nil
}

func testQuestions(n int) []interview.Question {
	qs := make([]interview.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, interview.Question{
			ID:       fmt.Sprintf("q%d", i+1),
			Text:     fmt.Sprintf("Question %d?", i+1),
			Category: "General",
		})
	}
	return qs
}

func newTestServer(t *testing.T, gw *fakeGateway) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	hub := NewHub()
	svc := interview.NewService(gw, store, store, nil, hub)
	ts := httptest.NewServer(Handler(hub, svc, store, nil))
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeView(t *testing.T, resp *http.Response) interviewView {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var view interviewView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

func TestStartInterview(t *testing.T) {
	gw := &fakeGateway{questions: testQuestions(3)}
	ts, _ := newTestServer(t, gw)

	resp := postJSON(t, ts.URL+"/api/interview/start", startRequest{
		LanguageID: "go",
		Technology: "Go",
		Difficulty: "senior",
		UILanguage: "en",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	view := decodeView(t, resp)
	if view.State != interview.StateActive {
		t.Errorf("expected active state, got %s", view.State)
	}
	if view.Total != 3 || view.CurrentIndex != 0 {
		t.Errorf("expected 3 questions at index 0, got total %d index %d", view.Total, view.CurrentIndex)
	}
	if view.Question == nil || view.Question.ID != "q1" {
		t.Errorf("expected first question presented, got %+v", view.Question)
	}
}

func TestStartRequiresTechnology(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGateway{questions: testQuestions(1)})

	resp := postJSON(t, ts.URL+"/api/interview/start", startRequest{})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestStartGenerationFailure(t *testing.T) {
	gw := &fakeGateway{questions: nil}
	ts, _ := newTestServer(t, gw)

	resp := postJSON(t, ts.URL+"/api/interview/start", startRequest{Technology: "Go"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 on empty generation, got %d", resp.StatusCode)
	}
}

func TestAnswerAndProceedToCompletion(t *testing.T) {
	gw := &fakeGateway{
		questions:  testQuestions(2),
		evaluation: interview.Evaluation{Feedback: "Good.", Score: 80},
	}
	ts, store := newTestServer(t, gw)

	resp := postJSON(t, ts.URL+"/api/interview/start", startRequest{Technology: "Go"})
	_ = resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = postJSON(t, ts.URL+"/api/interview/answer", map[string]string{"text": "My answer."})
		view := decodeView(t, resp)
		if view.State != interview.StateFeedback {
			t.Fatalf("q%d: expected feedback state, got %s", i+1, view.State)
		}
		if view.Evaluation == nil || view.Evaluation.Score != 80 {
			t.Fatalf("q%d: expected evaluation with score 80, got %+v", i+1, view.Evaluation)
		}

		resp = postJSON(t, ts.URL+"/api/interview/proceed", nil)
		view = decodeView(t, resp)
		if i == 0 && view.State != interview.StateActive {
			t.Fatalf("expected active after first proceed, got %s", view.State)
		}
		if i == 1 && view.State != interview.StateCompleted {
			t.Fatalf("expected completed after last proceed, got %s", view.State)
		}
	}

	results, err := store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(results))
	}
	if results[0].OverallScore != 80 {
		t.Errorf("expected overall score 80, got %d", results[0].OverallScore)
	}
}

func TestEmptyAnswerRejected(t *testing.T) {
	gw := &fakeGateway{questions: testQuestions(1)}
	ts, _ := newTestServer(t, gw)

	resp := postJSON(t, ts.URL+"/api/interview/start", startRequest{Technology: "Go"})
	_ = resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/interview/answer", map[string]string{"text": "   "})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty answer, got %d", resp.StatusCode)
	}
}

func TestProceedWithoutFeedbackConflicts(t *testing.T) {
	gw := &fakeGateway{questions: testQuestions(1)}
	ts, _ := newTestServer(t, gw)

	resp := postJSON(t, ts.URL+"/api/interview/start", startRequest{Technology: "Go"})
	_ = resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/interview/proceed", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for proceed without evaluation, got %d", resp.StatusCode)
	}
}

func TestSaveThenResume(t *testing.T) {
	gw := &fakeGateway{
		questions:  testQuestions(3),
		evaluation: interview.Evaluation{Score: 70},
	}
	ts, store := newTestServer(t, gw)

	resp := postJSON(t, ts.URL+"/api/interview/start", startRequest{Technology: "Go"})
	_ = resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/interview/answer", map[string]string{"text": "Answer one."})
	_ = resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/interview/proceed", nil)
	_ = resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/interview/save", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on save, got %d", resp.StatusCode)
	}

	snap, err := store.LoadSnapshot()
	if err != nil || snap == nil {
		t.Fatalf("expected saved snapshot, got %+v err %v", snap, err)
	}

	resp = postJSON(t, ts.URL+"/api/interview/cancel", nil)
	_ = resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/interview/resume", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on resume, got %d", resp.StatusCode)
	}
	view := decodeView(t, resp)
	if view.State != interview.StateActive {
		t.Errorf("expected active after resume, got %s", view.State)
	}
	if view.CurrentIndex != 1 {
		t.Errorf("expected resume at index 1, got %d", view.CurrentIndex)
	}
	if len(view.Responses) != 1 {
		t.Errorf("expected 1 restored response, got %d", len(view.Responses))
	}
}

func TestResumeWithoutSnapshot(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGateway{})

	resp := postJSON(t, ts.URL+"/api/interview/resume", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without snapshot, got %d", resp.StatusCode)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	ts, store := newTestServer(t, &fakeGateway{})

	_ = store.PrependResult(interview.Result{Language: "Go", OverallScore: 75})

	resp, err := http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatalf("GET history failed: %v", err)
	}
	var results []interview.Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	_ = resp.Body.Close()
	if len(results) != 1 || results[0].Language != "Go" {
		t.Fatalf("expected one Go result, got %+v", results)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/history", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE history failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on clear, got %d", resp.StatusCode)
	}

	remaining, _ := store.ListResults()
	if len(remaining) != 0 {
		t.Fatalf("expected empty history, got %d", len(remaining))
	}
}

func TestSkillsEndpoint(t *testing.T) {
	gw := &fakeGateway{skills: []interview.Skill{
		{ID: "react", Name: map[string]string{"en": "React"}},
	}}
	ts, _ := newTestServer(t, gw)

	resp := postJSON(t, ts.URL+"/api/skills", map[string]string{
		"jobDescription": "Frontend role using React.",
		"uiLanguage":     "en",
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var skills []interview.Skill
	if err := json.NewDecoder(resp.Body).Decode(&skills); err != nil {
		t.Fatalf("decode skills: %v", err)
	}
	if len(skills) != 1 || skills[0].ID != "react" {
		t.Fatalf("expected react skill, got %+v", skills)
	}
}

func TestVisitCounter(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGateway{})

	for i := 0; i < 2; i++ {
		resp := postJSON(t, ts.URL+"/api/visit", map[string]string{"sessionId": "tab-1"})
		var payload map[string]int
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("decode visit: %v", err)
		}
		_ = resp.Body.Close()
		if payload["count"] != 1 {
			t.Fatalf("expected count 1 for repeat session, got %d", payload["count"])
		}
	}

	resp := postJSON(t, ts.URL+"/api/visit", map[string]string{"sessionId": "tab-2"})
	var payload map[string]int
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	_ = resp.Body.Close()
	if payload["count"] != 2 {
		t.Fatalf("expected count 2 for new session, got %d", payload["count"])
	}
}

func TestStatusReportsWarnings(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := interview.NewService(&fakeGateway{}, store, store, nil, nil)
	ts := httptest.NewServer(Handler(NewHub(), svc, store, []string{"audio device unavailable"}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET status failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		Warnings        []string `json:"warnings"`
		ResumeAvailable bool     `json:"resumeAvailable"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(payload.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %+v", payload.Warnings)
	}
	if payload.ResumeAvailable {
		t.Error("expected no resume available in fresh store")
	}
}
