package gdrive

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/intervox/intervox/internal/interview"
)

// Report is one day's markdown report together with the session summary used
// to title the remote document.
type Report struct {
	Date     string
	Sessions int
	AvgScore int
	Body     io.Reader
}

// DailyReport pairs a report body with the summary of that day's completed
// interviews. Results from other days are ignored.
func DailyReport(date string, body io.Reader, results []interview.Result) Report {
	rep := Report{Date: date, Body: body}
	sum := 0
	for _, r := range results {
		if r.Date.Format("2006-01-02") != date {
			continue
		}
		rep.Sessions++
		sum += r.OverallScore
	}
	if rep.Sessions > 0 {
		rep.AvgScore = sum / rep.Sessions
	}
	return rep
}

func docName(rep Report) string {
	if rep.Sessions == 0 {
		return fmt.Sprintf("Interview report %s", rep.Date)
	}
	return fmt.Sprintf("Interview report %s (%d sessions, avg %d/100)", rep.Date, rep.Sessions, rep.AvgScore)
}

// Syncer mirrors daily interview reports into a Drive folder as Google Docs.
// Each date maps to one remote document, updated in place on re-sync so the
// title tracks the day's session count.
type Syncer struct {
	service  *drive.Service
	folderID string
	fileIDs  map[string]string
	mu       sync.Mutex
}

func NewSyncer(ctx context.Context, credPath, folderID string) (*Syncer, error) {
	creds, err := os.ReadFile(credPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	config, err := google.CredentialsFromJSONWithTypeAndParams(ctx, creds, google.ServiceAccount, google.CredentialsParams{Scopes: []string{drive.DriveFileScope}})
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithCredentials(config))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Syncer{
		service:  svc,
		folderID: folderID,
		fileIDs:  make(map[string]string),
	}, nil
}

// Sync uploads the report body, converting the markdown into a Google Doc.
func (s *Syncer) Sync(rep Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := docName(rep)
	media := googleapi.ContentType("text/markdown")

	if fileID, ok := s.fileIDs[rep.Date]; ok {
		_, err := s.service.Files.Update(fileID, &drive.File{Name: name}).Media(rep.Body, media).Do()
		if err != nil {
			return fmt.Errorf("drive update: %w", err)
		}
		return nil
	}

	doc, err := s.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.document",
		Parents:  []string{s.folderID},
	}).Media(rep.Body, media).Do()
	if err != nil {
		return fmt.Errorf("drive create: %w", err)
	}

	s.fileIDs[rep.Date] = doc.Id
	return nil
}
