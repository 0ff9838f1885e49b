package gdrive

import (
	"strings"
	"testing"
	"time"

	"github.com/intervox/intervox/internal/interview"
)

func TestDailyReportSummarizesMatchingDay(t *testing.T) {
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	results := []interview.Result{
		{Date: day, Language: "Go", OverallScore: 80},
		{Date: day.Add(2 * time.Hour), Language: "Go", OverallScore: 60},
		{Date: day.AddDate(0, 0, -1), Language: "Go", OverallScore: 10},
	}

	rep := DailyReport("2026-03-14", strings.NewReader("# report"), results)
	if rep.Sessions != 2 {
		t.Errorf("expected 2 sessions for the day, got %d", rep.Sessions)
	}
	if rep.AvgScore != 70 {
		t.Errorf("expected average 70, got %d", rep.AvgScore)
	}
}

func TestDailyReportEmptyDay(t *testing.T) {
	rep := DailyReport("2026-03-14", strings.NewReader(""), nil)
	if rep.Sessions != 0 || rep.AvgScore != 0 {
		t.Errorf("expected empty summary, got %+v", rep)
	}
}

func TestDocName(t *testing.T) {
	tests := []struct {
		name string
		rep  Report
		want string
	}{
		{"no sessions", Report{Date: "2026-03-14"}, "Interview report 2026-03-14"},
		{"with summary", Report{Date: "2026-03-14", Sessions: 3, AvgScore: 72}, "Interview report 2026-03-14 (3 sessions, avg 72/100)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := docName(tt.rep); got != tt.want {
				t.Errorf("docName() = %q, want %q", got, tt.want)
			}
		})
	}
}
