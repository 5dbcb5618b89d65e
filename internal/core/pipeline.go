package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"voicejournal/internal/ai"
	"voicejournal/internal/journal"
	"voicejournal/internal/store"
)

var (
	ErrRecordingActive = errors.New("a recording is already active, stop it first")
	ErrPipelineBusy    = errors.New("a journal entry is still being processed")
	ErrNotRecording    = errors.New("no active recording")
	ErrNoImageChoice   = errors.New("no persisted entry awaiting an image")
	ErrImageInFlight   = errors.New("image generation already in flight")
	ErrEntryNotFound   = errors.New("entry not found")
)

// EntryStore is the persistence gateway the pipeline writes entries through.
// Every operation is scoped to the owning user.
type EntryStore interface {
	CreateEntry(entry *journal.Entry) error
	GetEntryByID(entryID string, userID int64) (*journal.Entry, error)
	UpdateEntryMetadata(entryID string, userID int64, metadata journal.Metadata) error
	ListEntries(userID int64, filter store.ListFilter) ([]journal.Entry, error)
	MoodCounts(userID int64) (map[journal.Mood]int, error)
}

// Options tune pipeline policy.
type Options struct {
	// MoodFallbackOnError persists entries with the fallback mood when
	// classification fails, instead of aborting the run.
	MoodFallbackOnError bool
}

// JournalService owns the record → reflect → save pipeline. It sequences
// audio capture, transcription, mood classification, conversational reply and
// persistence, holding one session per user.
type JournalService struct {
	entries     EntryStore
	chat        ai.ChatProvider
	transcriber ai.Transcriber
	imager      ai.ImageGenerator
	opts        Options
	log         zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewJournalService(entries EntryStore, chat ai.ChatProvider, transcriber ai.Transcriber, imager ai.ImageGenerator, opts Options, log zerolog.Logger) *JournalService {
	return &JournalService{
		entries:     entries,
		chat:        chat,
		transcriber: transcriber,
		imager:      imager,
		opts:        opts,
		log:         log.With().Str("component", "pipeline").Logger(),
		sessions:    make(map[int64]*session),
	}
}

// StartRecording opens a fresh recording session for the user. Starting while
// a recording is active is rejected; starting while a prior run is processing
// is rejected; starting from any other state discards the old session.
func (svc *JournalService) StartRecording(userID int64) (Status, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if s, ok := svc.sessions[userID]; ok {
		switch s.state {
		case StateRecording:
			return Status{}, ErrRecordingActive
		case StateProcessing:
			return Status{}, ErrPipelineBusy
		}
	}

	s := newSession()
	svc.sessions[userID] = s
	svc.log.Info().Int64("user_id", userID).Msg("recording started")
	return s.status(), nil
}

// AppendAudio buffers one audio fragment for the active recording. Fragments
// are kept in delivery order.
func (svc *JournalService) AppendAudio(userID int64, chunk []byte, mimeType string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, ok := svc.sessions[userID]
	if !ok || s.state != StateRecording {
		return ErrNotRecording
	}
	if len(chunk) > 0 {
		buf := make([]byte, len(chunk))
		copy(buf, chunk)
		s.chunks = append(s.chunks, buf)
	}
	if mimeType != "" {
		s.mimeType = mimeType
	}
	return nil
}

// StopResult is returned once a recording has been processed and persisted.
type StopResult struct {
	EntryID    string       `json:"entry_id"`
	Transcript string       `json:"transcript"`
	Response   string       `json:"ai_response"`
	Mood       journal.Mood `json:"mood"`
	// MoodDegraded reports that classification failed and the fallback
	// label was persisted instead.
	MoodDegraded bool `json:"mood_degraded,omitempty"`
}

// StopRecording finalizes the captured audio and runs the pipeline:
// transcription, then mood classification and reply generation concurrently,
// then entry creation. Hard failures (transcription, generation, persistence)
// move the session to the error state; classification failure degrades to the
// fallback mood when that policy is enabled.
func (svc *JournalService) StopRecording(ctx context.Context, userID int64) (StopResult, error) {
	svc.mu.Lock()
	s, ok := svc.sessions[userID]
	if !ok || s.state != StateRecording {
		svc.mu.Unlock()
		return StopResult{}, ErrNotRecording
	}
	s.state = StateProcessing
	audio, mimeType := s.finalizeAudio()
	history := append([]ai.Message(nil), s.history...)
	svc.mu.Unlock()

	result, err := svc.process(ctx, userID, audio, mimeType, history)
	if err != nil {
		svc.failSession(userID, s, err)
		return StopResult{}, err
	}

	svc.mu.Lock()
	s.transcript = result.Transcript
	s.response = result.Response
	s.mood = result.Mood
	s.entryID = result.EntryID
	s.history = append(history,
		ai.Message{Role: ai.RoleUser, Content: result.Transcript},
		ai.Message{Role: ai.RoleAssistant, Content: result.Response},
	)
	s.state = StateAwaitingImage
	s.lastError = ""
	svc.mu.Unlock()

	svc.log.Info().
		Int64("user_id", userID).
		Str("entry_id", result.EntryID).
		Str("mood", string(result.Mood)).
		Bool("mood_degraded", result.MoodDegraded).
		Msg("journal entry persisted")
	return result, nil
}

func (svc *JournalService) process(ctx context.Context, userID int64, audio []byte, mimeType string, history []ai.Message) (StopResult, error) {
	transcript, err := svc.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return StopResult{}, err
	}

	history = append(history, ai.Message{Role: ai.RoleUser, Content: transcript})

	// Mood classification and reply generation are independent; run them
	// concurrently and join before constructing the entry.
	var (
		response     string
		mood         journal.Mood
		moodDegraded bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		response, err = svc.chat.Reply(gctx, history)
		return err
	})
	g.Go(func() error {
		label, err := svc.chat.ClassifyMood(gctx, transcript)
		if err != nil {
			if !svc.opts.MoodFallbackOnError {
				return err
			}
			svc.log.Warn().Err(err).Int64("user_id", userID).
				Str("fallback", string(journal.FallbackMood)).
				Msg("mood classification failed, persisting with fallback")
			mood = journal.FallbackMood
			moodDegraded = true
			return nil
		}
		mood = journal.NormalizeMood(label)
		return nil
	})
	if err := g.Wait(); err != nil {
		return StopResult{}, err
	}

	entry := &journal.Entry{
		UserID:     userID,
		Transcript: transcript,
		AIResponse: response,
		Mood:       mood,
	}
	if err := svc.entries.CreateEntry(entry); err != nil {
		return StopResult{}, fmt.Errorf("%w: %v", journal.ErrPersistenceFailed, err)
	}

	return StopResult{
		EntryID:      entry.ID,
		Transcript:   transcript,
		Response:     response,
		Mood:         mood,
		MoodDegraded: moodDegraded,
	}, nil
}

// GenerateImage renders an illustration for the just-persisted entry and
// attaches it to the entry's metadata. Failure leaves the entry and the
// session intact so the user can retry.
func (svc *JournalService) GenerateImage(ctx context.Context, userID int64) (string, error) {
	svc.mu.Lock()
	s, ok := svc.sessions[userID]
	if !ok || s.state != StateAwaitingImage {
		svc.mu.Unlock()
		return "", ErrNoImageChoice
	}
	if s.imageInFlight {
		svc.mu.Unlock()
		return "", ErrImageInFlight
	}
	s.imageInFlight = true
	prompt := ai.ImagePrompt(s.transcript)
	entryID := s.entryID
	svc.mu.Unlock()

	imageURL, err := svc.generateAndAttach(ctx, userID, entryID, prompt)

	svc.mu.Lock()
	s.imageInFlight = false
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.imageURL = imageURL
		s.state = StateDone
		s.lastError = ""
	}
	svc.mu.Unlock()

	if err != nil {
		svc.log.Warn().Err(err).Int64("user_id", userID).Str("entry_id", entryID).Msg("image step failed, entry unchanged")
		return "", err
	}
	svc.log.Info().Int64("user_id", userID).Str("entry_id", entryID).Msg("image attached to entry")
	return imageURL, nil
}

func (svc *JournalService) generateAndAttach(ctx context.Context, userID int64, entryID, prompt string) (string, error) {
	img, err := svc.imager.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	imageURL := img.DataURL()
	if err := svc.entries.UpdateEntryMetadata(entryID, userID, journal.Metadata{ImageURL: imageURL}); err != nil {
		return "", fmt.Errorf("%w: %v", journal.ErrPersistenceFailed, err)
	}
	return imageURL, nil
}

// ResetSession discards the user's session. Resetting while a run is being
// processed is rejected rather than silently interleaved.
func (svc *JournalService) ResetSession(userID int64) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, ok := svc.sessions[userID]
	if !ok {
		return nil
	}
	if s.state == StateProcessing {
		return ErrPipelineBusy
	}
	delete(svc.sessions, userID)
	svc.log.Info().Int64("user_id", userID).Msg("session reset")
	return nil
}

// SessionStatus reports the user's session snapshot; a user without a session
// is idle.
func (svc *JournalService) SessionStatus(userID int64) Status {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, ok := svc.sessions[userID]
	if !ok {
		return Status{State: StateIdle}
	}
	return s.status()
}

// ListEntries returns the user's persisted entries through the gateway.
func (svc *JournalService) ListEntries(userID int64, filter store.ListFilter) ([]journal.Entry, error) {
	entries, err := svc.entries.ListEntries(userID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", journal.ErrPersistenceFailed, err)
	}
	return entries, nil
}

// GetEntry returns one of the user's entries, or ErrEntryNotFound.
func (svc *JournalService) GetEntry(userID int64, entryID string) (*journal.Entry, error) {
	entry, err := svc.entries.GetEntryByID(entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", journal.ErrPersistenceFailed, err)
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

func (svc *JournalService) failSession(userID int64, s *session, cause error) {
	svc.mu.Lock()
	s.state = StateError
	s.lastError = cause.Error()
	svc.mu.Unlock()
	svc.log.Error().Err(cause).Int64("user_id", userID).Msg("pipeline run failed")
}
