package gateway

import (
	"fmt"
	"strings"

	"github.com/intervox/intervox/internal/interview"
)

func langInstruction(lang interview.UILanguage) string {
	if lang == interview.LangArabic {
		return "Return all text in Arabic."
	}
	return "Return all text in English."
}

func buildGenerationPrompt(req interview.GenerationRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d professional technical interview questions for a %s level %s developer. %s\n",
		req.Count, req.Difficulty, req.Technology, langInstruction(req.UILanguage))

	if req.JobDescription != "" {
		sb.WriteString("\nTailor the questions specifically to the requirements, skills, and responsibilities mentioned in this Job Description:\n")
		fmt.Fprintf(&sb, "%q\n", req.JobDescription)
	}

	sb.WriteString("\nRespond ONLY with a JSON object of the form ")
	sb.WriteString(`{"questions": [{"id": "<unique id>", "text": "<question>", "category": "<topic>"}]}`)
	sb.WriteString(" or a bare JSON array of those question objects.\n")
	return sb.String()
}

func buildEvaluationPrompt(req interview.EvaluationRequest) string {
	context := fmt.Sprintf("%s %s interview.", req.Difficulty, req.Technology)
	if req.JobDescription != "" {
		context += fmt.Sprintf(" The interview is based on this Job Description: %q", req.JobDescription)
	}

	langLine := "Provide feedback in English."
	if req.UILanguage == interview.LangArabic {
		langLine = "Provide feedback in Arabic."
	}

	var sb strings.Builder
	sb.WriteString("Evaluate the following interview answer.\n")
	fmt.Fprintf(&sb, "Question: %q\n", req.QuestionText)
	fmt.Fprintf(&sb, "User Answer: %q\n", req.AnswerText)
	fmt.Fprintf(&sb, "Context: %s\n", context)
	sb.WriteString(langLine + "\n")
	sb.WriteString("Provide constructive feedback, the answer's technical strengths, concrete areas for improvement, and a score from 0 to 100.\n")
	sb.WriteString("\nRespond ONLY with a JSON object:\n")
	sb.WriteString(`{"feedback": "<constructive feedback>", "positives": ["<strength>"], "improvements": ["<growth area>"], "score": <0-100>}`)
	sb.WriteString("\n")
	return sb.String()
}

func buildSkillsPrompt(jobDescription string, lang interview.UILanguage) string {
	descLine := "Return descriptions in English."
	if lang == interview.LangArabic {
		descLine = "Return descriptions in Arabic."
	}

	var sb strings.Builder
	sb.WriteString("Analyze the following Job Description and extract exactly the main programming languages, frameworks, and technical tools mentioned.\n")
	sb.WriteString("For each tool/language:\n")
	sb.WriteString("1. Provide a unique ID.\n")
	sb.WriteString("2. Provide names in both English and Arabic.\n")
	sb.WriteString("3. Choose a representative emoji icon.\n")
	sb.WriteString("4. Write a short description in both languages.\n\n")
	fmt.Fprintf(&sb, "Job Description:\n%q\n\n", jobDescription)
	sb.WriteString(descLine + "\n")
	sb.WriteString("\nRespond ONLY with a JSON object of the form ")
	sb.WriteString(`{"skills": [{"id": "<id>", "name": {"en": "...", "ar": "..."}, "icon": "<emoji>", "description": {"en": "...", "ar": "..."}}]}`)
	sb.WriteString(" or a bare JSON array of those skill objects.\n")
	return sb.String()
}

// buildReadoutText wraps a question for the TTS model so it is read to the
// candidate rather than answered.
func buildReadoutText(question string, lang interview.UILanguage) string {
	if lang == interview.LangArabic {
		return "اقرأ هذا السؤال للمرشح بوضوح: " + question
	}
	return "Read this interview question clearly to the candidate: " + question
}
