package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/intervox/intervox/internal/interview"
)

// Writer exports completed interviews as markdown reports, one file per day.
type Writer struct {
	dir string
	mu  sync.Mutex
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Append writes a report section for one completed interview to the day's
// file. Reports accumulate; a second interview on the same day appends below
// the first.
func (w *Writer) Append(result interview.Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", w.dir, err)
	}

	date := result.Date.Format("2006-01-02")
	path := filepath.Join(w.dir, date+".md")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(FormatReport(result)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func (w *Writer) CurrentPath() string {
	date := time.Now().Format("2006-01-02")
	return filepath.Join(w.dir, date+".md")
}

// OpenCurrent opens today's report for reading. The caller owns the handle.
func (w *Writer) OpenCurrent() (io.ReadCloser, error) {
	return os.Open(w.CurrentPath())
}

// FormatReport renders one completed interview as a markdown section.
func FormatReport(result interview.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Interview (%s)\n\n", result.Language, result.Difficulty)
	fmt.Fprintf(&b, "- Date: %s\n", result.Date.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Overall score: %d/100\n\n", result.OverallScore)

	for i, resp := range result.Responses {
		fmt.Fprintf(&b, "## Q%d: %s\n\n", i+1, resp.QuestionText)
		fmt.Fprintf(&b, "**Answer:** %s\n\n", resp.UserAnswer)
		fmt.Fprintf(&b, "**Score:** %d/100\n\n", resp.Score)
		if resp.Feedback != "" {
			fmt.Fprintf(&b, "%s\n\n", resp.Feedback)
		}
		for _, p := range resp.Positives {
			fmt.Fprintf(&b, "- 👍 %s\n", p)
		}
		for _, imp := range resp.Improvements {
			fmt.Fprintf(&b, "- 🔧 %s\n", imp)
		}
		if len(resp.Positives) > 0 || len(resp.Improvements) > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString("---\n\n")
	return b.String()
}
