package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/intervox/intervox/internal/interview"
)

// stripFences removes a surrounding markdown code fence from a model reply.
// Providers without native JSON output occasionally wrap their answer in one.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseQuestions(raw string) ([]interview.Question, error) {
	cleaned := stripFences(raw)

	var questions []interview.Question
	if err := json.Unmarshal([]byte(cleaned), &questions); err == nil {
		return questions, nil
	}

	var wrapped struct {
		Questions []interview.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, fmt.Errorf("parse questions: %w (raw: %s)", err, raw)
	}
	return wrapped.Questions, nil
}

func parseEvaluation(raw string) (interview.Evaluation, error) {
	cleaned := stripFences(raw)

	// Score arrives as a JSON number; some models emit fractions.
	var payload struct {
		Feedback     string   `json:"feedback"`
		Positives    []string `json:"positives"`
		Improvements []string `json:"improvements"`
		Score        float64  `json:"score"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return interview.Evaluation{}, fmt.Errorf("parse evaluation: %w (raw: %s)", err, raw)
	}

	score := int(payload.Score + 0.5)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return interview.Evaluation{
		Feedback:     payload.Feedback,
		Positives:    payload.Positives,
		Improvements: payload.Improvements,
		Score:        score,
	}, nil
}

func parseSkills(raw string) ([]interview.Skill, error) {
	cleaned := stripFences(raw)

	var skills []interview.Skill
	if err := json.Unmarshal([]byte(cleaned), &skills); err == nil {
		return skills, nil
	}

	var wrapped struct {
		Skills []interview.Skill `json:"skills"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, fmt.Errorf("parse skills: %w (raw: %s)", err, raw)
	}
	return wrapped.Skills, nil
}
