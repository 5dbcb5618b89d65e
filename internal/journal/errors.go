package journal

import "errors"

// Failure kinds for the recording-to-entry pipeline. Remote-call failures are
// distinguished by which step failed so callers can decide whether a failure
// is hard (aborts the run) or soft (degrades gracefully).
var (
	ErrTranscriptionFailed   = errors.New("transcription failed")
	ErrClassificationFailed  = errors.New("mood classification failed")
	ErrGenerationFailed      = errors.New("response generation failed")
	ErrImageGenerationFailed = errors.New("image generation failed")
	ErrPersistenceFailed     = errors.New("entry persistence failed")
)
