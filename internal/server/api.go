package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/intervox/intervox/internal/interview"
)

// VisitStore tracks the landing-page visit counter.
type VisitStore interface {
	RecordVisit(sessionID string) (int, error)
	VisitCount() (int, error)
}

type startRequest struct {
	LanguageID     string `json:"languageId"`
	Technology     string `json:"technology"`
	Difficulty     string `json:"difficulty"`
	UILanguage     string `json:"uiLanguage"`
	JobDescription string `json:"jobDescription"`
	QuestionCount  int    `json:"questionCount"`
}

type interviewView struct {
	State        interview.State       `json:"state"`
	CurrentIndex int                   `json:"currentIndex"`
	Total        int                   `json:"total"`
	Question     *interview.Question   `json:"question,omitempty"`
	Answer       string                `json:"answer"`
	Interim      string                `json:"interim,omitempty"`
	Evaluation   *interview.Evaluation `json:"evaluation,omitempty"`
	Result       *interview.Result     `json:"result,omitempty"`
	Responses    []interview.Response  `json:"responses"`
	Listening    bool                  `json:"listening"`
	Speaking     bool                  `json:"speaking"`
	VoiceEnabled bool                  `json:"voiceEnabled"`
}

func registerAPIRoutes(mux *http.ServeMux, svc *interview.Service, visits VisitStore, warnings []string) {
	mux.HandleFunc("POST /api/interview/start", func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
			return
		}
		if strings.TrimSpace(req.Technology) == "" {
			writeJSONError(w, http.StatusBadRequest, "technology is required")
			return
		}

		params := interview.Params{
			LanguageID:     req.LanguageID,
			Technology:     req.Technology,
			Difficulty:     parseDifficulty(req.Difficulty),
			UILanguage:     parseUILanguage(req.UILanguage),
			JobDescription: req.JobDescription,
			QuestionCount:  req.QuestionCount,
		}

		ctrl, err := svc.Start(r.Context(), params)
		if err != nil {
			if errors.Is(err, interview.ErrGenerationFailed) {
				writeJSONError(w, http.StatusBadGateway, err.Error())
				return
			}
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("start interview: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, viewOf(ctrl))
	})

	mux.HandleFunc("POST /api/interview/resume", func(w http.ResponseWriter, r *http.Request) {
		ctrl, err := svc.Resume(r.Context())
		if err != nil {
			if errors.Is(err, interview.ErrNoSavedSession) {
				writeJSONError(w, http.StatusNotFound, err.Error())
				return
			}
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("resume interview: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, viewOf(ctrl))
	})

	mux.HandleFunc("GET /api/interview", func(w http.ResponseWriter, r *http.Request) {
		ctrl := svc.Current()
		if ctrl == nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"state":           interview.StateIdle,
				"resumeAvailable": svc.ResumeAvailable(),
			})
			return
		}
		writeJSON(w, http.StatusOK, viewOf(ctrl))
	})

	mux.HandleFunc("POST /api/interview/answer", func(w http.ResponseWriter, r *http.Request) {
		ctrl := svc.Current()
		if ctrl == nil {
			writeJSONError(w, http.StatusNotFound, "no interview in progress")
			return
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
			return
		}

		if err := ctrl.SubmitAnswer(r.Context(), req.Text); err != nil {
			writeJSONError(w, statusForControllerError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewOf(ctrl))
	})

	mux.HandleFunc("POST /api/interview/proceed", func(w http.ResponseWriter, r *http.Request) {
		ctrl := svc.Current()
		if ctrl == nil {
			writeJSONError(w, http.StatusNotFound, "no interview in progress")
			return
		}
		if err := ctrl.Proceed(); err != nil {
			writeJSONError(w, statusForControllerError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewOf(ctrl))
	})

	mux.HandleFunc("POST /api/interview/save", func(w http.ResponseWriter, r *http.Request) {
		ctrl := svc.Current()
		if ctrl == nil {
			writeJSONError(w, http.StatusNotFound, "no interview in progress")
			return
		}
		if err := ctrl.SaveProgress(); err != nil {
			writeJSONError(w, statusForControllerError(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/interview/cancel", func(w http.ResponseWriter, r *http.Request) {
		ctrl := svc.Current()
		if ctrl == nil {
			writeJSONError(w, http.StatusNotFound, "no interview in progress")
			return
		}
		ctrl.Cancel()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/interview/listen", func(w http.ResponseWriter, r *http.Request) {
		ctrl := svc.Current()
		if ctrl == nil {
			writeJSONError(w, http.StatusNotFound, "no interview in progress")
			return
		}
		// The capture session outlives this request; its lifetime is bounded
		// by the next toggle, not by the HTTP connection.
		if err := ctrl.ToggleListening(context.Background()); err != nil {
			writeJSONError(w, statusForControllerError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"listening": ctrl.Listening()})
	})

	mux.HandleFunc("POST /api/interview/voice", func(w http.ResponseWriter, r *http.Request) {
		ctrl := svc.Current()
		if ctrl == nil {
			writeJSONError(w, http.StatusNotFound, "no interview in progress")
			return
		}

		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
			return
		}
		ctrl.SetVoiceEnabled(req.Enabled)
		writeJSON(w, http.StatusOK, map[string]bool{"voiceEnabled": ctrl.VoiceEnabled()})
	})

	mux.HandleFunc("GET /api/history", func(w http.ResponseWriter, r *http.Request) {
		results, err := svc.History()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list history: %v", err))
			return
		}
		if results == nil {
			results = []interview.Result{}
		}
		writeJSON(w, http.StatusOK, results)
	})

	mux.HandleFunc("DELETE /api/history", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearHistory(); err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("clear history: %v", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/skills", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobDescription string `json:"jobDescription"`
			UILanguage     string `json:"uiLanguage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			writeJSONError(w, http.StatusBadRequest, "jobDescription is required")
			return
		}

		skills, err := svc.ExtractSkills(r.Context(), req.JobDescription, parseUILanguage(req.UILanguage))
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, fmt.Sprintf("extract skills: %v", err))
			return
		}
		if skills == nil {
			skills = []interview.Skill{}
		}
		writeJSON(w, http.StatusOK, skills)
	})

	mux.HandleFunc("POST /api/visit", func(w http.ResponseWriter, r *http.Request) {
		if visits == nil {
			writeJSON(w, http.StatusOK, map[string]int{"count": 0})
			return
		}

		var req struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
			return
		}

		count, err := visits.RecordVisit(req.SessionID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("record visit: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		ws := warnings
		if ws == nil {
			ws = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"warnings":        ws,
			"resumeAvailable": svc.ResumeAvailable(),
		})
	})
}

func viewOf(ctrl *interview.Controller) interviewView {
	view := interviewView{
		State:        ctrl.State(),
		CurrentIndex: ctrl.CurrentIndex(),
		Total:        len(ctrl.Questions()),
		Answer:       ctrl.Answer(),
		Interim:      ctrl.Interim(),
		Responses:    ctrl.Responses(),
		Listening:    ctrl.Listening(),
		Speaking:     ctrl.Speaking(),
		VoiceEnabled: ctrl.VoiceEnabled(),
	}
	if view.Responses == nil {
		view.Responses = []interview.Response{}
	}
	if q, ok := ctrl.CurrentQuestion(); ok {
		view.Question = &q
	}
	if eval, ok := ctrl.Evaluation(); ok {
		view.Evaluation = &eval
	}
	if res, ok := ctrl.Result(); ok {
		view.Result = &res
	}
	return view
}

func statusForControllerError(err error) int {
	switch {
	case errors.Is(err, interview.ErrEmptyAnswer):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrEvaluationPending),
		errors.Is(err, interview.ErrInvalidState),
		errors.Is(err, interview.ErrSessionOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func parseDifficulty(s string) interview.Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "junior":
		return interview.DifficultyJunior
	case "senior":
		return interview.DifficultySenior
	default:
		return interview.DifficultyMid
	}
}

func parseUILanguage(s string) interview.UILanguage {
	if strings.EqualFold(strings.TrimSpace(s), "ar") {
		return interview.LangArabic
	}
	return interview.LangEnglish
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
