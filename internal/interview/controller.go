package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// State is the controller's primary progression state. Listening and speaking
// are orthogonal flags that may overlap with Active and FeedbackShown.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateActive     State = "active"
	StateSubmitting State = "submitting"
	StateFeedback   State = "feedback"
	StateCompleted  State = "completed"
	StateCanceled   State = "canceled"
	StateFailed     State = "failed"
)

const defaultQuestionCount = 5

// Params configure a new interview session.
type Params struct {
	LanguageID     string
	Technology     string
	Difficulty     Difficulty
	UILanguage     UILanguage
	JobDescription string
	QuestionCount  int
}

// Controller drives a single interview session: question progression, answer
// submission, asynchronous evaluation, the optional voice pipeline, and
// save/resume. It owns the question list, current index and response
// accumulator exclusively for the session's lifetime.
type Controller struct {
	gateway   Gateway
	snapshots SnapshotStore
	history   HistoryStore
	voice     Voice
	sink      EventSink

	mu           sync.Mutex
	params       Params
	state        State
	questions    []Question
	responses    []Response
	currentIndex int
	answer       string
	interim      string
	eval         *Evaluation
	result       *Result

	listening    bool
	speaking     bool
	voiceEnabled bool
	rt           RealtimeSession

	// epoch is bumped on cancel and on terminal transitions; in-flight
	// evaluation and playback results carrying an older epoch are discarded.
	epoch int
	// captureID identifies the currently open capture session so callbacks
	// from an already-replaced session are ignored.
	captureID int
	// playbackID identifies the current read-out so an interrupted playback
	// goroutine cannot clear a newer playback's speaking flag.
	playbackID int
}

// NewController wires a controller. voice and sink may be nil, which disables
// the audio pipeline and event delivery respectively.
func NewController(params Params, gateway Gateway, snapshots SnapshotStore, history HistoryStore, voice Voice, sink EventSink) *Controller {
	if params.QuestionCount <= 0 {
		params.QuestionCount = defaultQuestionCount
	}
	return &Controller{
		gateway:      gateway,
		snapshots:    snapshots,
		history:      history,
		voice:        voice,
		sink:         sink,
		params:       params,
		state:        StateIdle,
		voiceEnabled: voice != nil,
	}
}

// Start brings the controller into Active. With a resume snapshot the session
// continues at the snapshot's index with its persisted questions and
// responses, skipping generation. Otherwise questions are generated; an empty
// result leaves the controller in Failed and returns ErrGenerationFailed.
func (c *Controller) Start(ctx context.Context, resume *Snapshot) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrInvalidState
	}

	if resume != nil {
		c.params.LanguageID = resume.LanguageID
		if resume.Technology != "" {
			c.params.Technology = resume.Technology
		}
		c.params.Difficulty = resume.Difficulty
		if resume.UILanguage != "" {
			c.params.UILanguage = resume.UILanguage
		}
		c.params.JobDescription = resume.JobDescription
		c.questions = append([]Question(nil), resume.Questions...)
		c.responses = append([]Response(nil), resume.Responses...)
		c.currentIndex = resume.CurrentIndex
		c.state = StateActive
		c.presentCurrentLocked()
		c.mu.Unlock()
		return nil
	}

	c.state = StateLoading
	req := GenerationRequest{
		Technology:     c.params.Technology,
		Difficulty:     c.params.Difficulty,
		UILanguage:     c.params.UILanguage,
		Count:          c.params.QuestionCount,
		JobDescription: c.params.JobDescription,
	}
	c.mu.Unlock()

	questions, err := c.gateway.GenerateQuestions(ctx, req)

	c.mu.Lock()
	if c.state != StateLoading {
		c.mu.Unlock()
		return ErrSessionOver
	}
	if err != nil || len(questions) == 0 {
		c.state = StateFailed
		c.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		return ErrGenerationFailed
	}

	c.questions = questions
	c.currentIndex = 0
	c.state = StateActive
	c.presentCurrentLocked()
	c.speakCurrentLocked()
	c.mu.Unlock()
	return nil
}

// SubmitAnswer sends the candidate's answer for evaluation. It is valid only
// in Active with non-blank input; a second call while an evaluation is
// outstanding is rejected. Capture and playback are stopped as a side effect.
// The gateway's fail-soft contract means the controller always reaches
// FeedbackShown, even when the provider errors.
func (c *Controller) SubmitAnswer(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyAnswer
	}

	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return ErrEvaluationPending
	case StateActive:
	case StateCompleted, StateCanceled, StateFailed:
		c.mu.Unlock()
		return ErrSessionOver
	default:
		c.mu.Unlock()
		return ErrInvalidState
	}

	rt := c.stopCaptureLocked()
	c.stopSpeakingLocked()

	question := c.questions[c.currentIndex]
	c.answer = trimmed
	c.state = StateSubmitting
	epoch := c.epoch
	req := EvaluationRequest{
		QuestionText:   question.Text,
		AnswerText:     trimmed,
		Technology:     c.params.Technology,
		Difficulty:     c.params.Difficulty,
		UILanguage:     c.params.UILanguage,
		JobDescription: c.params.JobDescription,
	}
	c.mu.Unlock()
	closeSession(rt)

	eval, err := c.gateway.EvaluateAnswer(ctx, req)
	if err != nil {
		eval = FallbackEvaluation(c.params.UILanguage)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.state != StateSubmitting {
		// The session moved on (canceled) while the request was in flight.
		return nil
	}
	c.eval = &eval
	c.state = StateFeedback
	if c.sink != nil {
		c.sink.EvaluationReady(c.currentIndex, eval)
	}
	return nil
}

// Proceed materializes the current evaluation into a Response and either
// advances to the next question or completes the session. It is a strict
// no-op outside FeedbackShown.
func (c *Controller) Proceed() error {
	c.mu.Lock()
	if c.state != StateFeedback || c.eval == nil {
		c.mu.Unlock()
		return ErrInvalidState
	}

	question := c.questions[c.currentIndex]
	c.responses = append(c.responses, Response{
		QuestionID:   question.ID,
		QuestionText: question.Text,
		UserAnswer:   c.answer,
		Feedback:     c.eval.Feedback,
		Positives:    c.eval.Positives,
		Improvements: c.eval.Improvements,
		Score:        c.eval.Score,
	})
	c.answer = ""
	c.interim = ""
	c.eval = nil

	if c.currentIndex >= len(c.questions)-1 {
		return c.completeLocked()
	}

	c.currentIndex++
	c.state = StateActive
	c.presentCurrentLocked()
	c.speakCurrentLocked()
	c.mu.Unlock()
	return nil
}

// completeLocked finishes the session: the in-progress snapshot is deleted,
// the result is prepended to history, and completion is signaled. Unlocks c.mu.
func (c *Controller) completeLocked() error {
	c.state = StateCompleted
	c.epoch++
	rt := c.stopCaptureLocked()
	c.stopSpeakingLocked()

	res := NewResult(c.params, c.responses)
	c.result = &res
	sink := c.sink
	c.mu.Unlock()
	closeSession(rt)

	var firstErr error
	if err := c.snapshots.ClearSnapshot(); err != nil {
		firstErr = fmt.Errorf("clear snapshot: %w", err)
	}
	if err := c.history.PrependResult(res); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("record result: %w", err)
	}
	if sink != nil {
		sink.SessionCompleted(res)
	}
	return firstErr
}

// SaveProgress overwrites the single persisted snapshot slot with the current
// session state. Safe to call repeatedly; does not change controller state.
func (c *Controller) SaveProgress() error {
	c.mu.Lock()
	switch c.state {
	case StateCompleted, StateCanceled, StateFailed:
		c.mu.Unlock()
		return ErrSessionOver
	}
	snap := Snapshot{
		LanguageID:     c.params.LanguageID,
		Technology:     c.params.Technology,
		Difficulty:     c.params.Difficulty,
		UILanguage:     c.params.UILanguage,
		JobDescription: c.params.JobDescription,
		CurrentIndex:   c.currentIndex,
		Responses:      append([]Response(nil), c.responses...),
		Questions:      append([]Question(nil), c.questions...),
		Timestamp:      time.Now().UTC(),
	}
	sink := c.sink
	c.mu.Unlock()

	if err := c.snapshots.SaveSnapshot(snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if sink != nil {
		sink.ProgressSaved(snap.Timestamp)
	}
	return nil
}

// Cancel abandons the session: capture and playback stop, any in-flight
// evaluation result is discarded, and the persisted snapshot is left intact
// so the session can be resumed later.
func (c *Controller) Cancel() {
	c.mu.Lock()
	rt := c.stopCaptureLocked()
	c.stopSpeakingLocked()
	switch c.state {
	case StateCompleted, StateCanceled, StateFailed:
	default:
		c.state = StateCanceled
		c.epoch++
	}
	c.mu.Unlock()
	closeSession(rt)
}

// ToggleListening opens the realtime capture channel if closed, or closes it
// if open. Closing discards any uncommitted interim transcript.
func (c *Controller) ToggleListening(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateCompleted, StateCanceled, StateFailed:
		c.mu.Unlock()
		return ErrSessionOver
	}
	if c.listening {
		rt := c.stopCaptureLocked()
		c.mu.Unlock()
		closeSession(rt)
		return nil
	}
	if c.voice == nil {
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.captureID++
	id := c.captureID
	lang := c.params.UILanguage
	c.mu.Unlock()

	handlers := RealtimeHandlers{
		OnPartialTranscript: func(text string) { c.appendInterim(id, text) },
		OnTurnComplete:      func() { c.commitInterim(id) },
		OnError:             func(error) { c.captureLost(id) },
		OnClose:             func() { c.captureLost(id) },
	}

	session, err := c.gateway.OpenRealtimeTranscription(ctx, lang, handlers)
	if err != nil {
		return fmt.Errorf("open realtime transcription: %w", err)
	}
	if err := c.voice.StartCapture(session); err != nil {
		_ = session.Close()
		return fmt.Errorf("start capture: %w", err)
	}

	c.mu.Lock()
	if c.captureID != id || c.listening {
		// Replaced or raced while connecting; release the fresh session.
		c.voice.StopCapture()
		c.mu.Unlock()
		closeSession(session)
		return nil
	}
	c.rt = session
	c.listening = true
	if c.sink != nil {
		c.sink.ListeningChanged(true)
	}
	c.mu.Unlock()
	return nil
}

// SetVoiceEnabled toggles question read-out. Disabling stops any current playback.
func (c *Controller) SetVoiceEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voiceEnabled = enabled && c.voice != nil
	if !c.voiceEnabled {
		c.stopSpeakingLocked()
	}
}

func (c *Controller) appendInterim(id int, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.captureID != id || !c.listening {
		return
	}
	c.interim += text
	if c.sink != nil {
		c.sink.PartialTranscript(c.interim)
	}
}

// commitInterim folds the interim accumulator into the committed answer at a
// turn boundary, space-joined when the answer is non-empty.
func (c *Controller) commitInterim(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.captureID != id {
		return
	}
	if c.interim == "" {
		return
	}
	if c.answer != "" {
		c.answer += " "
	}
	c.answer += c.interim
	c.interim = ""
}

// captureLost handles an error or remote close of the realtime channel: the
// capture is forced closed and listening resets. No retry; the caller must
// explicitly reopen.
func (c *Controller) captureLost(id int) {
	c.mu.Lock()
	if c.captureID != id || !c.listening {
		c.mu.Unlock()
		return
	}
	rt := c.stopCaptureLocked()
	c.mu.Unlock()
	closeSession(rt)
}

// stopCaptureLocked tears down capture state and discards any interim
// transcript not yet committed at a turn boundary. It returns the detached
// realtime session instead of closing it: providers may dispatch the close
// callback synchronously on the closing goroutine, so the caller must call
// Close only after releasing c.mu.
func (c *Controller) stopCaptureLocked() RealtimeSession {
	c.captureID++
	rt := c.rt
	c.rt = nil
	if c.voice != nil {
		c.voice.StopCapture()
	}
	c.interim = ""
	if c.listening {
		c.listening = false
		if c.sink != nil {
			c.sink.ListeningChanged(false)
		}
	}
	return rt
}

func closeSession(rt RealtimeSession) {
	if rt != nil {
		_ = rt.Close()
	}
}

func (c *Controller) stopSpeakingLocked() {
	c.playbackID++
	if c.voice != nil {
		c.voice.StopSpeaking()
	}
	if c.speaking {
		c.speaking = false
		if c.sink != nil {
			c.sink.SpeakingChanged(false)
		}
	}
}

func (c *Controller) presentCurrentLocked() {
	if c.sink != nil && c.currentIndex < len(c.questions) {
		c.sink.QuestionPresented(c.currentIndex, len(c.questions), c.questions[c.currentIndex])
	}
}

// speakCurrentLocked kicks off question read-out as a detached task. Playback
// failure is observed only through the event sink; it never blocks or fails
// the state transition that triggered it.
func (c *Controller) speakCurrentLocked() {
	if !c.voiceEnabled || c.voice == nil || c.currentIndex >= len(c.questions) {
		return
	}
	text := c.questions[c.currentIndex].Text
	lang := c.params.UILanguage
	epoch := c.epoch

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		audio, err := c.gateway.SynthesizeSpeech(ctx, text, lang)
		if err != nil || len(audio) == 0 {
			if err != nil && c.sink != nil {
				c.sink.PlaybackFailed(err)
			}
			return
		}

		c.mu.Lock()
		if c.epoch != epoch || !c.voiceEnabled {
			c.mu.Unlock()
			return
		}
		c.speaking = true
		c.playbackID++
		pid := c.playbackID
		sink := c.sink
		c.mu.Unlock()
		if sink != nil {
			sink.SpeakingChanged(true)
		}

		playErr := c.voice.Speak(ctx, audio)

		// Only the playback that set the flag may clear it; an interrupted
		// read-out must not mask a newer one that is already playing.
		c.mu.Lock()
		cleared := c.playbackID == pid && c.speaking
		if cleared {
			c.speaking = false
		}
		c.mu.Unlock()
		if playErr != nil && sink != nil {
			sink.PlaybackFailed(playErr)
		}
		if cleared && sink != nil {
			sink.SpeakingChanged(false)
		}
	}()
}

// State returns the primary progression state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentIndex returns the index of the question being presented.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex
}

// CurrentQuestion returns the question at the current index, if any.
func (c *Controller) CurrentQuestion() (Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentIndex < 0 || c.currentIndex >= len(c.questions) {
		return Question{}, false
	}
	return c.questions[c.currentIndex], true
}

// Questions returns a copy of the session's question list.
func (c *Controller) Questions() []Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Question(nil), c.questions...)
}

// Responses returns a copy of the responses recorded so far.
func (c *Controller) Responses() []Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Response(nil), c.responses...)
}

// Answer returns the committed answer text, including voice turns already
// folded in.
func (c *Controller) Answer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answer
}

// Interim returns the uncommitted live transcript.
func (c *Controller) Interim() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interim
}

// Evaluation returns the transient evaluation while in FeedbackShown.
func (c *Controller) Evaluation() (Evaluation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eval == nil {
		return Evaluation{}, false
	}
	return *c.eval, true
}

// Result returns the completed session's result once in Completed.
func (c *Controller) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Result{}, false
	}
	return *c.result, true
}

// Listening reports whether the capture channel is open.
func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Speaking reports whether question audio is currently playing.
func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// VoiceEnabled reports whether question read-out is enabled.
func (c *Controller) VoiceEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voiceEnabled
}
