package interview

import "errors"

// ErrGenerationFailed is returned by Start when the gateway produces zero
// questions. The session never enters Active in that case.
var ErrGenerationFailed = errors.New("question generation returned no questions")

// ErrEmptyAnswer is returned by SubmitAnswer for empty or whitespace-only input.
var ErrEmptyAnswer = errors.New("answer is empty")

// ErrEvaluationPending is returned by SubmitAnswer while a previous
// evaluation for the same question is still outstanding.
var ErrEvaluationPending = errors.New("evaluation already in progress")

// ErrInvalidState is returned when an operation is not valid in the
// controller's current state.
var ErrInvalidState = errors.New("operation not valid in current state")

// ErrSessionOver is returned by operations invoked after the session has
// completed or been canceled.
var ErrSessionOver = errors.New("session is over")
