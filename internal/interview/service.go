package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoSavedSession is returned when a resume is requested but no snapshot
// is on record.
var ErrNoSavedSession = errors.New("no saved interview to resume")

// Service owns the single live interview. Starting a new interview cancels
// whatever was running; at most one controller is active at a time.
type Service struct {
	gateway   Gateway
	snapshots SnapshotStore
	history   HistoryStore
	voice     Voice
	sink      EventSink

	mu      sync.Mutex
	current *Controller
}

func NewService(gateway Gateway, snapshots SnapshotStore, history HistoryStore, voice Voice, sink EventSink) *Service {
	return &Service{
		gateway:   gateway,
		snapshots: snapshots,
		history:   history,
		voice:     voice,
		sink:      sink,
	}
}

// Start begins a fresh interview with the given parameters, replacing any
// session in progress.
func (s *Service) Start(ctx context.Context, params Params) (*Controller, error) {
	return s.start(ctx, params, nil)
}

// Resume continues the saved interview. The snapshot's own parameters win
// over whatever the caller last used.
func (s *Service) Resume(ctx context.Context) (*Controller, error) {
	snap, err := s.snapshots.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil, ErrNoSavedSession
	}

	params := Params{
		LanguageID:     snap.LanguageID,
		Technology:     snap.Technology,
		Difficulty:     snap.Difficulty,
		UILanguage:     snap.UILanguage,
		JobDescription: snap.JobDescription,
	}
	return s.start(ctx, params, snap)
}

func (s *Service) start(ctx context.Context, params Params, resume *Snapshot) (*Controller, error) {
	s.mu.Lock()
	if s.current != nil {
		s.current.Cancel()
	}
	ctrl := NewController(params, s.gateway, s.snapshots, s.history, s.voice, s.sink)
	s.current = ctrl
	s.mu.Unlock()

	if err := ctrl.Start(ctx, resume); err != nil {
		return ctrl, err
	}
	return ctrl, nil
}

// Current returns the live controller, or nil when no interview has started.
func (s *Service) Current() *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ResumeAvailable reports whether a saved in-progress interview exists.
func (s *Service) ResumeAvailable() bool {
	snap, err := s.snapshots.LoadSnapshot()
	return err == nil && snap != nil
}

// ExtractSkills analyzes a job description through the gateway.
func (s *Service) ExtractSkills(ctx context.Context, jobDescription string, lang UILanguage) ([]Skill, error) {
	return s.gateway.ExtractSkills(ctx, jobDescription, lang)
}

// History lists completed interviews, most recent first.
func (s *Service) History() ([]Result, error) {
	return s.history.ListResults()
}

// ClearHistory wipes the result log.
func (s *Service) ClearHistory() error {
	return s.history.ClearHistory()
}
